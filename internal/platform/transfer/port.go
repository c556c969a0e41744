package transfer

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores transfer records
type Repository interface {
	// Create stores a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// ListByUser returns the transactions a user sent or received, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
}
