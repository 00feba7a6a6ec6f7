// Package credstore implements the durable client-local Credential
// Store: a bearer token with an expiry window, surviving restarts.
//
// The store is backed by a badger database through the bvkgo/kv
// interface so tests can substitute an in-memory database. The Session
// Manager is the only component that reads or writes it.
package credstore
