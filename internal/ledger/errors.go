package ledger

import (
	"errors"
	"fmt"
)

// Validation errors. These are raised locally and never reach the remote service.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingRecipient  = errors.New("recipient is required")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrNegativeBalance   = errors.New("balance cannot be negative")
)

// Data errors
var (
	ErrMissingParty        = errors.New("transaction is missing a party snapshot")
	ErrUnexpectedStatus    = errors.New("unexpected transaction status")
	ErrInvalidTransition   = errors.New("invalid transaction status transition")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMissingServerID     = errors.New("confirmed transaction has no server id")
)

// MissingPartyError reports which snapshot a transaction record lacks.
// It matches ErrMissingParty with errors.Is.
type MissingPartyError struct {
	TransactionID string
	Party         string // "sender" or "receiver"
}

func (e *MissingPartyError) Error() string {
	return fmt.Sprintf("transaction %s: missing %s snapshot", e.TransactionID, e.Party)
}

// Is makes errors.Is(err, ErrMissingParty) hold.
func (e *MissingPartyError) Is(target error) bool {
	return target == ErrMissingParty
}

// IsValidation reports whether err is a local input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrMissingRecipient) ||
		errors.Is(err, ErrSelfTransfer) ||
		errors.Is(err, ErrNegativeBalance)
}
