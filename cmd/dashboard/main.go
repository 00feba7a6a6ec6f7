package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/account"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/config"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/credstore"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/feed"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/model"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/session"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to local development config)")
	email := flag.String("email", "", "log in with this email before watching the feed")
	password := flag.String("password", "", "password for -email")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting dashboard",
		"version", version.Version,
		"commit", version.Commit,
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"feed_url", cfg.Feed.URL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the credential store
	db, closeDB, err := credstore.Open(cfg.Credentials.DataDir)
	if err != nil {
		logger.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	store := credstore.New(db)
	client := account.NewClient(
		cfg.API.BaseURL,
		account.WithLogger(logger),
		account.WithTimeout(cfg.API.Timeout),
	)

	// Restore the session from the stored credential
	sessions := session.NewManager(store, client, cfg.Credentials.TokenTTL, logger)
	sessions.Restore(ctx)

	if *email != "" {
		if err := sessions.Login(ctx, *email, *password); err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
	}

	if user := sessions.User(); user != nil {
		logger.Info("authenticated", "username", user.Username, "email", user.Email)
	} else {
		logger.Info("running unauthenticated; use -email/-password or accountctl login")
	}

	// Start the feed
	feeds := feed.NewManager(feed.ManagerConfig{
		URL:           cfg.Feed.URL,
		ReconnectWait: cfg.Feed.ReconnectWait,
		BufferSize:    cfg.Feed.BufferSize,
		PingTimeout:   cfg.Feed.PingTimeout,
		WriteTimeout:  cfg.Feed.WriteTimeout,
	}, logger)

	if err := feeds.Start(ctx); err != nil {
		logger.Error("failed to start feed", "error", err)
		os.Exit(1)
	}
	defer feeds.Stop()

	snapshots, unsubscribe := feeds.Subscribe()
	defer unsubscribe()

	logger.Info("dashboard running", "feed_url", cfg.Feed.URL)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down...")
			return

		case snap := <-snapshots:
			if !snap.Connected {
				logger.Info("feed disconnected, reconnecting...")
				continue
			}
			logTopOpportunities(logger, snap.Opportunities)
		}
	}
}

// loadConfig loads the config file, or the local-development defaults
// when no file is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

// logTopOpportunities logs the best few opportunities from a snapshot.
// The service sends them sorted by spread, highest first.
func logTopOpportunities(logger *slog.Logger, opportunities []model.Opportunity) {
	const top = 3

	logger.Info("opportunities updated", "count", len(opportunities))
	for i, opp := range opportunities {
		if i >= top {
			break
		}
		logger.Info("opportunity",
			"pair", opp.Pair,
			"buy", opp.BuyExchange,
			"sell", opp.SellExchange,
			"buy_price", opp.BuyPrice,
			"sell_price", opp.SellPrice,
			"spread_pct", opp.SpreadPercentage,
			"confidence", opp.ConfidenceScore,
		)
	}
}
