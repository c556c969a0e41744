package transfer

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrSenderNotFound   = errors.New("sender not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrSelfTransfer     = errors.New("cannot transfer to yourself")
)
