package credstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

// tokenKey is the fixed key holding the credential record.
const tokenKey = "/session/token"

// credential is the stored record. Gob-encoded.
type credential struct {
	Token     string
	ExpiresAt time.Time
}

// Store is a durable store for a single bearer credential.
type Store struct {
	db kv.Database

	// now is replaceable for expiry tests.
	now func() time.Time
}

// New creates a Store over the given database.
func New(db kv.Database) *Store {
	return &Store{db: db, now: time.Now}
}

// Open opens the badger-backed credential database in dataDir. The
// returned close function must be called at process teardown.
func Open(dataDir string) (kv.Database, func() error, error) {
	isGoodKey := func(k string) bool {
		return path.IsAbs(k) && k == path.Clean(k)
	}

	bopts := badger.DefaultOptions(dataDir).WithLogger(nil)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open credential database: %w", err)
	}
	return kvbadger.New(bdb, isGoodKey), bdb.Close, nil
}

// Token returns the stored token. Returns os.ErrNotExist when no token
// is stored or the stored token has passed its expiry window; expired
// records are removed on read.
func (s *Store) Token(ctx context.Context) (string, error) {
	var cred credential
	err := kv.WithReader(ctx, s.db, func(ctx context.Context, r kv.Reader) error {
		value, err := r.Get(ctx, tokenKey)
		if err != nil {
			return err
		}
		if err := gob.NewDecoder(value).Decode(&cred); err != nil {
			return fmt.Errorf("could not gob-decode credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if !cred.ExpiresAt.After(s.now()) {
		// Expired credentials are as good as absent.
		if err := s.RemoveToken(ctx); err != nil {
			return "", err
		}
		return "", os.ErrNotExist
	}
	return cred.Token, nil
}

// SetToken stores the token with the given expiry window, replacing any
// previous credential.
func (s *Store) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	cred := credential{
		Token:     token,
		ExpiresAt: s.now().Add(ttl),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&cred); err != nil {
		return fmt.Errorf("could not gob-encode credential: %w", err)
	}

	return kv.WithReadWriter(ctx, s.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, tokenKey, &buf)
	})
}

// RemoveToken deletes the stored credential. Removing an absent
// credential is not an error.
func (s *Store) RemoveToken(ctx context.Context) error {
	err := kv.WithReadWriter(ctx, s.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Delete(ctx, tokenKey)
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
