package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a transfer
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// IsFinal reports whether no further transition is possible
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// CanTransitionTo allows pending -> success and pending -> failed only.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsFinal()
}

// User is a wallet holder. Balance is never negative.
type User struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

// SameIdentity compares users by email, the identity used for direction.
// The comparison is exact; the server is the one normalising addresses.
func (u User) SameIdentity(other User) bool {
	return u.Email == other.Email
}

// Transaction is a transfer between two users. Everything except Status is
// immutable once created.
type Transaction struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId"`
	Sender     *User           `json:"sender,omitempty"`
	Receiver   *User           `json:"receiver,omitempty"`

	// SenderBalanceAfter is the sender's balance once the server applied the
	// transfer. Only present on server-confirmed records.
	SenderBalanceAfter *decimal.Decimal `json:"senderBalanceAfter,omitempty"`
}

// IsPlaceholder reports whether the transaction is a local optimistic entry.
func (t Transaction) IsPlaceholder() bool {
	return IsPlaceholderID(t.ID)
}

// clone copies the transaction including its snapshots, so callers holding
// the copy cannot reach ledger state.
func (t Transaction) clone() Transaction {
	c := t
	if t.Sender != nil {
		s := *t.Sender
		c.Sender = &s
	}
	if t.Receiver != nil {
		r := *t.Receiver
		c.Receiver = &r
	}
	if t.SenderBalanceAfter != nil {
		b := *t.SenderBalanceAfter
		c.SenderBalanceAfter = &b
	}
	return c
}

const placeholderPrefix = "local-"

// NewPlaceholderID returns an id outside the server's id space.
func NewPlaceholderID() string {
	return placeholderPrefix + uuid.NewString()
}

// IsPlaceholderID reports whether id was generated by NewPlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}
