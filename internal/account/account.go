package account

import (
	"context"
	"fmt"
	"net/url"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/model"
	"github.com/shopspring/decimal"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AlertRequest is the payload for creating or updating an alert.
type AlertRequest struct {
	CryptoPair string          `json:"crypto_pair"`
	MinSpread  decimal.Decimal `json:"min_spread"`
}

// TradeRequest is the payload for opening a virtual trade.
type TradeRequest struct {
	CryptoPair string          `json:"crypto_pair"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Signup registers a new account and returns the created profile. It
// does not establish a session; callers log in afterwards.
func (c *Client) Signup(ctx context.Context, email, username, password string) (*model.Profile, error) {
	var profile model.Profile
	req := signupRequest{Email: email, Username: username, Password: password}
	if err := c.postJSON(ctx, "/signup", "", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login exchanges credentials for a bearer token. The token endpoint is
// form-encoded with the email passed as the username field.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp tokenResponse
	if err := c.postForm(ctx, "/token", form, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me returns the profile behind the given bearer token.
func (c *Client) Me(ctx context.Context, token string) (*model.Profile, error) {
	var profile model.Profile
	if err := c.getJSON(ctx, "/me", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateAlert creates a spread alert for the authenticated user.
func (c *Client) CreateAlert(ctx context.Context, token string, req AlertRequest) (*model.Alert, error) {
	var alert model.Alert
	if err := c.postJSON(ctx, "/alerts", token, req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Alerts lists the authenticated user's alerts.
func (c *Client) Alerts(ctx context.Context, token string) ([]model.Alert, error) {
	var alerts []model.Alert
	if err := c.getJSON(ctx, "/alerts", token, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// UpdateAlert replaces an alert's pair and threshold.
func (c *Client) UpdateAlert(ctx context.Context, token string, id int64, req AlertRequest) (*model.Alert, error) {
	var alert model.Alert
	if err := c.putJSON(ctx, fmt.Sprintf("/alerts/%d", id), token, req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeleteAlert removes an alert.
func (c *Client) DeleteAlert(ctx context.Context, token string, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/alerts/%d", id), token)
}

// CreateTrade opens a virtual trade for the authenticated user.
func (c *Client) CreateTrade(ctx context.Context, token string, req TradeRequest) (*model.Trade, error) {
	var trade model.Trade
	if err := c.postJSON(ctx, "/trades", token, req, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// Trades lists the authenticated user's virtual trades.
func (c *Client) Trades(ctx context.Context, token string) ([]model.Trade, error) {
	var trades []model.Trade
	if err := c.getJSON(ctx, "/trades", token, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
