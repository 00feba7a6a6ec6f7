package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Time is a timestamp as sent by the backend. The Market Data Service
// emits naive ISO 8601 (datetime.utcnow().isoformat(), no zone suffix),
// while other producers use RFC 3339, so both forms must decode.
type Time struct {
	time.Time
}

// Accepted layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ParseTime parses a wire timestamp. Naive timestamps are taken as UTC.
func ParseTime(s string) (Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{t.UTC()}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

// -----------------------------------------------------------------------------
// Market Data Types
// -----------------------------------------------------------------------------

// Opportunity is one arbitrage signal between two exchanges for one
// trading pair. Values are trusted as produced by the Market Data
// Service; no cross-field invariant is enforced client-side.
type Opportunity struct {
	Pair             string          `json:"pair"`              // Trading pair (e.g., "BTC/USDT")
	BuyExchange      string          `json:"buy_exchange"`      // Exchange with the lower price
	SellExchange     string          `json:"sell_exchange"`     // Exchange with the higher price
	BuyPrice         decimal.Decimal `json:"buy_price"`         // Quote on the buy side
	SellPrice        decimal.Decimal `json:"sell_price"`        // Quote on the sell side
	SpreadPercentage decimal.Decimal `json:"spread_percentage"` // Signed spread percent
	PotentialProfit  decimal.Decimal `json:"potential_profit"`  // Estimated profit percent
	ConfidenceScore  decimal.Decimal `json:"confidence_score"`  // 0-100
	Timestamp        Time            `json:"timestamp"`
}

// Snapshot is the current state of the opportunity feed: the full
// ordered sequence from the most recently processed update, plus
// channel liveness. Replaced wholesale, never merged.
type Snapshot struct {
	Opportunities []Opportunity
	Connected     bool
}

// -----------------------------------------------------------------------------
// Account Service Types
// -----------------------------------------------------------------------------

// Profile is an authenticated user's account record.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Alert is a user-configured spread alert.
type Alert struct {
	ID         int64           `json:"id"`
	CryptoPair string          `json:"crypto_pair"`
	MinSpread  decimal.Decimal `json:"min_spread"`
	IsActive   bool            `json:"is_active"`
}

// Trade is a virtual (paper) trade tracked against live prices.
type Trade struct {
	ID         int64            `json:"id"`
	CryptoPair string           `json:"crypto_pair"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  *decimal.Decimal `json:"exit_price"`
	Quantity   decimal.Decimal  `json:"quantity"`
	ProfitLoss *decimal.Decimal `json:"profit_loss"`
	Status     string           `json:"status"` // "open" or "closed"
}
