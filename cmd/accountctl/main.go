// Command accountctl manages the Account Service session and the
// user's alerts and virtual trades from the terminal.
//
// Usage:
//
//	accountctl [-config FILE] COMMAND [ARGS]
//
// Commands: signup, login, logout, whoami, alerts, add-alert, rm-alert,
// trades, add-trade.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/account"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/config"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/credstore"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to local development config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: accountctl [-config FILE] COMMAND [ARGS]")
		fmt.Fprintln(os.Stderr, "commands: signup login logout whoami alerts add-alert rm-alert trades add-trade")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accountctl: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, closeDB, err := credstore.Open(cfg.Credentials.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accountctl: %v\n", err)
		os.Exit(1)
	}
	defer closeDB()

	store := credstore.New(db)
	client := account.NewClient(
		cfg.API.BaseURL,
		account.WithLogger(logger),
		account.WithTimeout(cfg.API.Timeout),
	)
	sessions := session.NewManager(store, client, cfg.Credentials.TokenTTL, logger)

	if err := run(ctx, args, sessions, client); err != nil {
		fmt.Fprintf(os.Stderr, "accountctl: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func run(ctx context.Context, args []string, sessions *session.Manager, client *account.Client) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		username := fs.String("username", "", "account username")
		password := fs.String("password", "", "account password")
		fs.Parse(rest)

		profile, err := sessions.Signup(ctx, *email, *username, *password)
		if err != nil {
			return err
		}
		fmt.Printf("created account %q (%s); now run: accountctl login\n", profile.Username, profile.Email)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(rest)

		if err := sessions.Login(ctx, *email, *password); err != nil {
			return err
		}
		if user := sessions.User(); user != nil {
			fmt.Printf("logged in as %q\n", user.Username)
		}
		return nil

	case "logout":
		sessions.Logout(ctx)
		fmt.Println("logged out")
		return nil

	case "whoami":
		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		profile, err := client.Me(ctx, token)
		if err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "session invalid; run: accountctl login"))
		}
		fmt.Printf("%s <%s> (id %d)\n", profile.Username, profile.Email, profile.ID)
		return nil

	case "alerts":
		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		alerts, err := client.Alerts(ctx, token)
		if err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "could not list alerts"))
		}
		for _, a := range alerts {
			fmt.Printf("%d\t%s\tmin spread %s%%\tactive=%v\n", a.ID, a.CryptoPair, a.MinSpread, a.IsActive)
		}
		return nil

	case "add-alert":
		fs := flag.NewFlagSet("add-alert", flag.ExitOnError)
		pair := fs.String("pair", "", "trading pair (e.g., BTC/USDT)")
		minSpread := fs.String("min-spread", "", "minimum spread percent")
		fs.Parse(rest)

		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		spread, err := decimal.NewFromString(*minSpread)
		if err != nil {
			return fmt.Errorf("invalid -min-spread %q: %w", *minSpread, err)
		}
		alert, err := client.CreateAlert(ctx, token, account.AlertRequest{
			CryptoPair: *pair,
			MinSpread:  spread,
		})
		if err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "could not create alert"))
		}
		fmt.Printf("created alert %d for %s\n", alert.ID, alert.CryptoPair)
		return nil

	case "rm-alert":
		fs := flag.NewFlagSet("rm-alert", flag.ExitOnError)
		id := fs.Int64("id", 0, "alert id")
		fs.Parse(rest)

		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		if err := client.DeleteAlert(ctx, token, *id); err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "could not delete alert"))
		}
		fmt.Printf("deleted alert %d\n", *id)
		return nil

	case "trades":
		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		trades, err := client.Trades(ctx, token)
		if err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "could not list trades"))
		}
		for _, tr := range trades {
			pl := "-"
			if tr.ProfitLoss != nil {
				pl = tr.ProfitLoss.String()
			}
			fmt.Printf("%d\t%s\tentry %s\tqty %s\tp/l %s\t%s\n",
				tr.ID, tr.CryptoPair, tr.EntryPrice, tr.Quantity, pl, tr.Status)
		}
		return nil

	case "add-trade":
		fs := flag.NewFlagSet("add-trade", flag.ExitOnError)
		pair := fs.String("pair", "", "trading pair (e.g., BTC/USDT)")
		entry := fs.String("entry", "", "entry price")
		quantity := fs.String("quantity", "", "quantity")
		fs.Parse(rest)

		token, err := requireToken(ctx, sessions)
		if err != nil {
			return err
		}
		entryPrice, err := decimal.NewFromString(*entry)
		if err != nil {
			return fmt.Errorf("invalid -entry %q: %w", *entry, err)
		}
		qty, err := decimal.NewFromString(*quantity)
		if err != nil {
			return fmt.Errorf("invalid -quantity %q: %w", *quantity, err)
		}
		trade, err := client.CreateTrade(ctx, token, account.TradeRequest{
			CryptoPair: *pair,
			EntryPrice: entryPrice,
			Quantity:   qty,
		})
		if err != nil {
			return fmt.Errorf("%s", account.ErrorMessage(err, "could not create trade"))
		}
		fmt.Printf("opened trade %d for %s\n", trade.ID, trade.CryptoPair)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireToken restores the session and returns its token, failing when
// no valid credential is stored.
func requireToken(ctx context.Context, sessions *session.Manager) (string, error) {
	sessions.Restore(ctx)
	token := sessions.Token()
	if token == "" {
		return "", fmt.Errorf("not logged in; run: accountctl login -email ... -password ...")
	}
	return token, nil
}
