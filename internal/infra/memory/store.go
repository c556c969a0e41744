// Package memory holds the sandbox's users and transactions in process memory.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/platform/user"
)

type ctxKey string

const txContextKey ctxKey = "memory_tx"

// Store is a mutex-guarded in-memory database shared by the repositories
type Store struct {
	mu sync.RWMutex

	users   map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	txs     []*transfer.Transaction
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// RunInTx runs fn holding the store's write lock. Repository calls made with
// the context passed to fn reuse that lock. If fn returns an error every write
// it made is rolled back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fmt.Errorf("transaction already in progress")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[uuid.UUID]*user.User, len(s.users))
	for id, u := range s.users {
		users[id] = copyUser(u)
	}
	byEmail := maps.Clone(s.byEmail)
	txCount := len(s.txs)

	if err := fn(context.WithValue(ctx, txContextKey, s)); err != nil {
		s.users = users
		s.byEmail = byEmail
		s.txs = s.txs[:txCount]
		return err
	}
	return nil
}

// inTx reports whether ctx carries a transaction on this store. Another
// store's transaction does not hold s.mu.
func (s *Store) inTx(ctx context.Context) bool {
	held, ok := ctx.Value(txContextKey).(*Store)
	return ok && held == s
}

func (s *Store) read(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyUser(u *user.User) *user.User {
	c := *u
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		c.LastLoginAt = &at
	}
	return &c
}

func copyTransaction(tx *transfer.Transaction) *transfer.Transaction {
	c := *tx
	if tx.SenderBalanceAfter != nil {
		b := *tx.SenderBalanceAfter
		c.SenderBalanceAfter = &b
	}
	return &c
}
