package handler

import (
	"errors"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/platform/user"
	apperrors "github.com/kislikjeka/walletclient/internal/shared/errors"
)

// describe maps service errors to API errors
func describe(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, user.ErrInvalidEmail):
		return apperrors.Validation("invalid email address")
	case errors.Is(err, user.ErrPasswordTooShort):
		return apperrors.Validation("password must be at least 8 characters")
	case errors.Is(err, user.ErrUserAlreadyExists):
		return apperrors.Conflict("user with this email already exists")
	case errors.Is(err, user.ErrInvalidPassword):
		return apperrors.Unauthorized("invalid email or password")
	case errors.Is(err, user.ErrInvalidAmount), errors.Is(err, transfer.ErrInvalidAmount):
		return apperrors.Validation("amount must be greater than zero")
	case errors.Is(err, user.ErrNegativeBalance):
		return apperrors.Validation("balance cannot be negative")
	case errors.Is(err, transfer.ErrReceiverNotFound):
		return apperrors.NotFound("receiver")
	case errors.Is(err, transfer.ErrSelfTransfer):
		return apperrors.Validation("cannot transfer to yourself")
	case errors.Is(err, transfer.ErrSenderNotFound), errors.Is(err, user.ErrUserNotFound):
		return apperrors.Unauthorized("account no longer exists")
	}
	return apperrors.Internal("internal server error", err)
}
