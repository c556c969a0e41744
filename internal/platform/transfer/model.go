package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/platform/user"
)

// Status of a recorded transfer. The sandbox settles synchronously, so a
// stored transfer is never pending.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Transaction is one transfer attempt between two accounts
type Transaction struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	Status     Status
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	CreatedAt  time.Time

	// SenderBalanceAfter is set on successful transfers only
	SenderBalanceAfter *decimal.Decimal
}

// Record is a transaction with the two parties resolved
type Record struct {
	Transaction
	Sender   *user.User
	Receiver *user.User
}

// Involves reports whether userID sent or received the transaction
func (t *Transaction) Involves(userID uuid.UUID) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}
