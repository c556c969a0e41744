package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
)

// TransactionRepository implements transfer.Repository on PostgreSQL
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create inserts a transfer record
func (r *TransactionRepository) Create(ctx context.Context, tx *transfer.Transaction) error {
	_, err := r.store.q(ctx).Exec(ctx, `
		INSERT INTO transactions (id, amount, status, sender_id, receiver_id, sender_balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tx.ID, tx.Amount, string(tx.Status), tx.SenderID, tx.ReceiverID, tx.SenderBalanceAfter, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByUser returns the transactions a user sent or received, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transfer.Transaction, error) {
	rows, err := r.store.q(ctx).Query(ctx, `
		SELECT id, amount, status, sender_id, receiver_id, sender_balance_after, created_at
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transfer.Transaction
	for rows.Next() {
		var tx transfer.Transaction
		var status string
		if err := rows.Scan(&tx.ID, &tx.Amount, &status, &tx.SenderID, &tx.ReceiverID, &tx.SenderBalanceAfter, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Status = transfer.Status(status)
		tx.CreatedAt = tx.CreatedAt.UTC()
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
