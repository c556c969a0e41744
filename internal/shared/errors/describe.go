package errors

import (
	"errors"

	"github.com/kislikjeka/walletclient/internal/infra/gateway/walletapi"
	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/internal/session"
)

// Describe turns any error from the wallet client into a user-facing AppError.
// It returns nil for a nil error and passes an AppError through unchanged.
func Describe(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return Wrap(err, ErrCodeValidation, "Amount must be greater than zero")
	case errors.Is(err, ledger.ErrMissingRecipient):
		return Wrap(err, ErrCodeValidation, "Choose a recipient")
	case errors.Is(err, ledger.ErrSelfTransfer):
		return Wrap(err, ErrCodeValidation, "You cannot send money to yourself")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return Wrap(err, ErrCodeInsufficientBalance, "Insufficient funds")
	case errors.Is(err, ledger.ErrNegativeBalance):
		return Wrap(err, ErrCodeValidation, "Balance cannot be negative")
	case errors.Is(err, session.ErrMissingCredentials):
		return Wrap(err, ErrCodeValidation, "Email and password are required")
	case errors.Is(err, session.ErrUnknownRecipient):
		return Wrap(err, ErrCodeNotFound, "No user with that email")
	case errors.Is(err, session.ErrNotAuthenticated):
		return Wrap(err, ErrCodeUnauthorized, "Please log in")
	case errors.Is(err, session.ErrSessionExpired):
		return Wrap(err, ErrCodeSessionExpired, "Your session has expired, please log in again")
	case errors.Is(err, session.ErrBusy):
		return &AppError{Code: ErrCodeBusy, Message: "Please wait for the current operation to finish", Retryable: true, Err: err}
	case errors.Is(err, session.ErrTransferFailed):
		return Wrap(err, ErrCodeTransferFailed, "The transfer was declined")
	}

	var remote *walletapi.RemoteError
	if errors.As(err, &remote) {
		return describeRemote(remote)
	}

	return Internal("Something went wrong", err)
}

func describeRemote(e *walletapi.RemoteError) *AppError {
	appErr := &AppError{Retryable: e.Retryable(), Err: e}
	switch e.Kind {
	case walletapi.KindNetwork:
		appErr.Code, appErr.Message = ErrCodeNetwork, "Cannot reach the wallet service"
	case walletapi.KindTimeout:
		appErr.Code, appErr.Message = ErrCodeTimeout, "The wallet service did not respond in time"
	case walletapi.KindUnauthorized:
		appErr.Code, appErr.Message = ErrCodeUnauthorized, "Please log in"
	case walletapi.KindRateLimited:
		appErr.Code, appErr.Message = ErrCodeRateLimited, "Too many requests, try again shortly"
	case walletapi.KindRejected:
		appErr.Code, appErr.Message = ErrCodeRejected, "The request was rejected"
		if e.Message != "" {
			appErr.Message = e.Message
		}
	case walletapi.KindServer:
		appErr.Code, appErr.Message = ErrCodeUpstream, "The wallet service failed"
	default:
		appErr.Code, appErr.Message = ErrCodeMalformed, "Unexpected response from the wallet service"
	}
	return appErr
}
