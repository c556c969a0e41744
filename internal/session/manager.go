package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Manager owns at most one authenticated session at a time and notifies
// listeners about login, logout and ledger changes.
type Manager struct {
	wallet    Wallet
	directory Directory
	now       func() time.Time
	logger    *logger.Logger

	mu        sync.Mutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithDirectory enables caching of the user directory
func WithDirectory(d Directory) ManagerOption {
	return func(m *Manager) {
		m.directory = d
	}
}

// WithClock overrides the time source used for token expiry and placeholders
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager backed by the given wallet service
func NewManager(wallet Wallet, log *logger.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		wallet:    wallet,
		now:       time.Now,
		logger:    log.Component("session"),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers a listener and returns a function that removes it
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Register creates a new account. It does not log in.
func (m *Manager) Register(ctx context.Context, email, password string) (*ledger.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := m.wallet.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if m.directory != nil {
		if err := m.directory.Invalidate(ctx); err != nil {
			m.logger.Warn("failed to invalidate user directory", "error", err)
		}
	}

	m.logger.Info("account registered", "email", user.Email)
	return user, nil
}

// Login authenticates and starts a fresh session, replacing any existing one.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	auth, err := m.wallet.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	l, err := ledger.New(auth.User, ledger.WithClock(m.now), ledger.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}

	s := &Session{
		manager: m,
		token:   auth.Token,
		ledger:  l,
		logger:  m.logger.WithField("user_email", auth.User.Email),
	}
	if exp, ok := tokenExpiry(auth.Token); ok {
		s.expiresAt = exp
	}

	m.mu.Lock()
	previous := m.current
	m.current = s
	m.mu.Unlock()

	if previous != nil {
		previous.close()
		m.emit(Event{Type: EventLoggedOut, User: previous.User(), Reason: ReasonUser})
	}

	s.logger.Info("logged in")
	m.emit(Event{Type: EventLoggedIn, User: s.User()})
	return s, nil
}

// Logout discards the current session. It is a no-op when logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s != nil {
		m.teardown(s, ReasonUser)
	}
}

// Current returns the active session
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotAuthenticated
	}
	return m.current, nil
}

// teardown ends s if it is still the current session
func (m *Manager) teardown(s *Session, reason LogoutReason) {
	m.mu.Lock()
	if m.current != s {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.mu.Unlock()

	s.close()
	s.logger.Info("logged out", "reason", reason)
	m.emit(Event{Type: EventLoggedOut, User: s.User(), Reason: reason})
}

func (m *Manager) emit(ev Event) {
	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// tokenExpiry reads the exp claim without verifying the signature.
// The client never holds the signing key.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
