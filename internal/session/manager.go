package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvkgo/topic"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/account"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/credstore"
	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/model"
)

// Fallback messages when the server's rejection carries no detail.
const (
	loginFallback  = "Login failed"
	signupFallback = "Signup failed"
)

// State is the authentication state visible to the view layer.
// User is set only while Token is set and validated. Loading is true
// from construction until the initial Restore resolves, then false for
// the rest of the process lifetime.
type State struct {
	Token   string
	User    *model.Profile
	Loading bool
}

// Anonymous reports whether no validated session is present.
func (s State) Anonymous() bool {
	return s.Token == ""
}

// Manager owns the session state. It is the only component that reads
// or writes the Credential Store.
type Manager struct {
	store    *credstore.Store
	client   *account.Client
	tokenTTL time.Duration
	logger   *slog.Logger

	updates *topic.Topic[State]

	mu    sync.Mutex
	state State
}

// NewManager creates a session manager in the loading state. Call
// Restore once at process start to resolve it.
func NewManager(store *credstore.Store, client *account.Client, tokenTTL time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		client:   client,
		tokenTTL: tokenTTL,
		logger:   logger,
		updates:  topic.New[State](),
		state:    State{Loading: true},
	}
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the current bearer token, empty when anonymous.
func (m *Manager) Token() string {
	return m.State().Token
}

// User returns the validated profile, nil when anonymous.
func (m *Manager) User() *model.Profile {
	return m.State().User
}

// Loading reports whether the initial restore is still unresolved.
func (m *Manager) Loading() bool {
	return m.State().Loading
}

// Subscribe returns a channel of state updates and a cancel function.
// The most recent state is delivered first.
func (m *Manager) Subscribe() (<-chan State, func()) {
	sub, ch, _ := m.updates.Subscribe(1, true /* includeRecent */)
	return ch, sub.Unsubscribe
}

// update applies fn to the state under lock and publishes the result.
func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	state := m.state
	m.mu.Unlock()

	m.updates.Send(state)
}

// Restore reads the stored credential and, when present, validates it
// against the Account Service. With no stored credential the session
// resolves immediately to anonymous. Called once at process start.
func (m *Manager) Restore(ctx context.Context) {
	token, err := m.store.Token(ctx)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("could not read credential store", "error", err)
		}
		m.update(func(s *State) { s.Loading = false })
		return
	}

	m.update(func(s *State) { s.Token = token })
	m.validate(ctx, token)
}

// validate resolves the profile behind token. Any failure is treated
// uniformly as "session invalid": the credential is removed and the
// state degrades to anonymous.
func (m *Manager) validate(ctx context.Context, token string) {
	profile, err := m.client.Me(ctx, token)
	if err != nil {
		m.logger.Warn("session validation failed", "error", err)
		if rmErr := m.store.RemoveToken(ctx); rmErr != nil {
			m.logger.Warn("could not remove stored credential", "error", rmErr)
		}
		m.update(func(s *State) {
			s.Token = ""
			s.User = nil
			s.Loading = false
		})
		return
	}

	m.update(func(s *State) {
		s.User = profile
		s.Loading = false
	})
}

// Login exchanges credentials for a token, persists it with the
// configured expiry window, and validates it to populate the profile.
// A rejection surfaces as an error whose message is the server's detail
// or a fixed fallback; a validation failure after a successful token
// exchange degrades silently to anonymous.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		return errors.New(account.ErrorMessage(err, loginFallback))
	}

	if err := m.store.SetToken(ctx, token, m.tokenTTL); err != nil {
		// The session still works for this process; it just won't
		// survive a restart.
		m.logger.Warn("could not persist credential", "error", err)
	}

	m.update(func(s *State) { s.Token = token })
	m.validate(ctx, token)
	return nil
}

// Signup registers a new account and returns the created profile. No
// session is established; callers follow up with Login.
func (m *Manager) Signup(ctx context.Context, email, username, password string) (*model.Profile, error) {
	profile, err := m.client.Signup(ctx, email, username, password)
	if err != nil {
		return nil, errors.New(account.ErrorMessage(err, signupFallback))
	}
	return profile, nil
}

// Logout clears the stored credential and the in-memory session. It
// involves no server call and always succeeds.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.RemoveToken(ctx); err != nil {
		m.logger.Warn("could not remove stored credential", "error", err)
	}
	m.update(func(s *State) {
		s.Token = ""
		s.User = nil
	})
}
