// Package model defines shared data types used across the arbitrage
// tracker client.
//
// Conventions:
//   - Prices, spreads and scores: decimal.Decimal, as produced by the
//     Market Data Service (trusted, not validated cross-field)
//   - Timestamps: model.Time, tolerant of RFC 3339 and naive ISO 8601
//   - JSON tags mirror the wire format (snake_case)
package model
