// Package feed implements the market-data push channel.
//
// The Feed Manager:
//   - Maintains a single WebSocket connection to the Market Data Service
//   - Reconnects forever on a fixed delay, one attempt outstanding at a time
//   - Replaces the opportunity snapshot wholesale on every "update" message
//   - Drops and logs unrecognized or undecodable payloads
//
// The fixed delay with no backoff and no retry ceiling mirrors the
// reference behavior for a trusted, usually-available backend.
package feed
