// Package session implements the Session Manager: process-wide
// authentication state backed by the Credential Store and the Account
// Service.
//
// The manager fails closed: any validation failure, whether an auth
// rejection or an unreachable server, clears the stored credential and
// degrades to the anonymous state. Only login and signup surface errors
// to callers; everything else is observable through state alone.
package session
