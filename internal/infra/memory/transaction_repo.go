package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
)

// TransactionRepository implements transfer.Repository
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a transaction repository backed by store
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create appends a transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *transfer.Transaction) error {
	defer r.store.write(ctx)()

	r.store.txs = append(r.store.txs, copyTransaction(tx))
	return nil
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transfer.Transaction, error) {
	defer r.store.read(ctx)()

	var out []*transfer.Transaction
	for i := len(r.store.txs) - 1; i >= 0; i-- {
		if tx := r.store.txs[i]; tx.Involves(userID) {
			out = append(out, copyTransaction(tx))
		}
	}
	slices.SortStableFunc(out, func(a, b *transfer.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
