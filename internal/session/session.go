package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/infra/gateway/walletapi"
	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Session is the state of one login: the access token and the user's ledger.
// Mutating operations are exclusive; a second concurrent call gets ErrBusy.
type Session struct {
	manager   *Manager
	token     string
	expiresAt time.Time
	logger    *logger.Logger

	op sync.Mutex

	state  sync.RWMutex
	ledger *ledger.Ledger
	closed bool
}

// User returns the session's user with the last confirmed balance
func (s *Session) User() ledger.User {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.ledger.CurrentUser()
}

// Balance returns the last server-confirmed balance
func (s *Session) Balance() decimal.Decimal {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.ledger.Balance()
}

// History returns the transaction history, newest first
func (s *Session) History() []ledger.Transaction {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.ledger.History()
}

// Entries returns the history classified for display
func (s *Session) Entries() []ledger.Entry {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.ledger.Entries()
}

// ExpiresAt returns the token expiry, or the zero time for opaque tokens
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Transfer sends amount to recipient. The transfer is shown as pending
// until the server answers; a remote error leaves it pending.
// A transfer the server recorded as failed is returned with ErrTransferFailed.
func (s *Session) Transfer(ctx context.Context, recipient ledger.User, amount decimal.Decimal) (*ledger.Transaction, error) {
	if !s.op.TryLock() {
		return nil, ErrBusy
	}
	defer s.op.Unlock()

	token, err := s.authorize()
	if err != nil {
		return nil, err
	}

	s.state.Lock()
	placeholder, err := s.ledger.ApplyOptimisticTransfer(amount, &recipient)
	s.state.Unlock()
	if err != nil {
		return nil, err
	}
	s.changed()

	log := s.logger.WithFields(map[string]interface{}{
		"placeholder_id": placeholder.ID,
		"amount":         amount.String(),
	})
	log.Debug("transfer submitted")

	confirmed, err := s.manager.wallet.CreateTransfer(ctx, token, recipient.Email, amount)
	if err != nil {
		return nil, s.remoteFailed(err)
	}

	s.state.Lock()
	err = s.ledger.ReconcileTransfer(*confirmed)
	stale := s.ledger.BalanceStale()
	s.state.Unlock()
	if err != nil {
		log.Error("failed to reconcile transfer", "tx_id", confirmed.ID, "error", err)
		return nil, fmt.Errorf("reconcile transfer %s: %w", confirmed.ID, err)
	}
	s.changed()

	if stale {
		if err := s.refreshProfile(ctx, token); err != nil {
			log.Warn("balance refresh after transfer failed", "error", err)
		}
	}

	if confirmed.Status == ledger.StatusFailed {
		log.Info("transfer failed", "tx_id", confirmed.ID)
		return confirmed, ErrTransferFailed
	}
	log.Info("transfer confirmed", "tx_id", confirmed.ID)
	return confirmed, nil
}

// LoadBalance adds funds and adopts the server's resulting balance
func (s *Session) LoadBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !s.op.TryLock() {
		return decimal.Zero, ErrBusy
	}
	defer s.op.Unlock()

	token, err := s.authorize()
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, ledger.ErrInvalidAmount
	}

	user, err := s.manager.wallet.LoadBalance(ctx, token, amount)
	if err != nil {
		return decimal.Zero, s.remoteFailed(err)
	}

	s.state.Lock()
	err = s.ledger.ApplyLoadBalance(user.Balance)
	s.state.Unlock()
	if err != nil {
		return decimal.Zero, err
	}
	s.changed()

	s.logger.Info("balance loaded", "amount", amount.String(), "balance", user.Balance.String())
	return user.Balance, nil
}

// RefreshHistory replaces the history with the server's transaction list
func (s *Session) RefreshHistory(ctx context.Context) error {
	if !s.op.TryLock() {
		return ErrBusy
	}
	defer s.op.Unlock()

	token, err := s.authorize()
	if err != nil {
		return err
	}

	txs, err := s.manager.wallet.ListTransactions(ctx, token)
	if err != nil {
		return s.remoteFailed(err)
	}

	s.state.Lock()
	s.ledger.MergeHistory(txs)
	s.state.Unlock()
	s.changed()
	return nil
}

// RefreshProfile adopts the server's current balance for the user
func (s *Session) RefreshProfile(ctx context.Context) error {
	if !s.op.TryLock() {
		return ErrBusy
	}
	defer s.op.Unlock()

	token, err := s.authorize()
	if err != nil {
		return err
	}
	return s.refreshProfile(ctx, token)
}

// Recipients lists the users the current user can send to, filtered by a
// case-insensitive email substring. An empty search returns everyone.
func (s *Session) Recipients(ctx context.Context, search string) ([]ledger.User, error) {
	token, err := s.authorize()
	if err != nil {
		return nil, err
	}

	users, err := s.directory(ctx, token)
	if err != nil {
		return nil, err
	}

	me := s.User()
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]ledger.User, 0, len(users))
	for _, u := range users {
		if u.SameIdentity(me) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// FindRecipient returns the user with exactly this email
func (s *Session) FindRecipient(ctx context.Context, email string) (ledger.User, error) {
	users, err := s.Recipients(ctx, email)
	if err != nil {
		return ledger.User{}, err
	}
	target := ledger.User{Email: strings.TrimSpace(email)}
	for _, u := range users {
		if u.SameIdentity(target) {
			return u, nil
		}
	}
	return ledger.User{}, fmt.Errorf("%w: %s", ErrUnknownRecipient, email)
}

func (s *Session) directory(ctx context.Context, token string) ([]ledger.User, error) {
	dir := s.manager.directory
	if dir != nil {
		users, ok, err := dir.Get(ctx)
		if err != nil {
			s.logger.Warn("user directory cache unavailable", "error", err)
		} else if ok {
			return withoutBalances(users), nil
		}
	}

	users, err := s.manager.wallet.ListUsers(ctx, token)
	if err != nil {
		return nil, s.remoteFailed(err)
	}
	// The server reveals the caller's own balance; the directory is shared
	// between accounts.
	users = withoutBalances(users)

	if dir != nil {
		if err := dir.Set(ctx, users); err != nil {
			s.logger.Warn("failed to cache user directory", "error", err)
		}
	}
	return users, nil
}

func withoutBalances(users []ledger.User) []ledger.User {
	out := make([]ledger.User, len(users))
	for i, u := range users {
		u.Balance = decimal.Decimal{}
		out[i] = u
	}
	return out
}

func (s *Session) refreshProfile(ctx context.Context, token string) error {
	user, err := s.manager.wallet.Profile(ctx, token)
	if err != nil {
		return s.remoteFailed(err)
	}

	s.state.Lock()
	err = s.ledger.ApplyLoadBalance(user.Balance)
	s.state.Unlock()
	if err != nil {
		return err
	}
	s.changed()
	return nil
}

// authorize returns the token if the session is still usable. An expired
// token ends the session without contacting the server.
func (s *Session) authorize() (string, error) {
	s.state.RLock()
	closed := s.closed
	s.state.RUnlock()
	if closed {
		return "", ErrNotAuthenticated
	}

	if !s.expiresAt.IsZero() && !s.manager.now().Before(s.expiresAt) {
		s.manager.teardown(s, ReasonExpired)
		return "", ErrSessionExpired
	}
	return s.token, nil
}

// remoteFailed ends the session on a 401 and returns err unchanged
func (s *Session) remoteFailed(err error) error {
	if walletapi.IsUnauthorized(err) {
		s.manager.teardown(s, ReasonUnauthorized)
	}
	return err
}

func (s *Session) changed() {
	s.manager.emit(Event{Type: EventLedgerChanged, User: s.User()})
}

func (s *Session) close() {
	s.state.Lock()
	s.closed = true
	s.state.Unlock()
}
