// Package account implements the Account Service REST client: signup,
// token-based login, profile lookup, and the alert/trade CRUD endpoints
// consumed by the view layer.
//
// Failures surface as *APIError carrying the server's "detail" message;
// callers normalize it with ErrorMessage and a per-operation fallback.
package account
