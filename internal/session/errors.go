package session

import "errors"

var (
	// ErrNotAuthenticated is returned when there is no active session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when the access token has expired locally
	ErrSessionExpired = errors.New("session expired")

	// ErrBusy is returned when another operation on the session is still in flight
	ErrBusy = errors.New("another operation is in progress")

	// ErrMissingCredentials is returned when email or password is empty
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrTransferFailed is returned alongside a transfer the server recorded as failed
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnknownRecipient is returned when no user matches the requested email
	ErrUnknownRecipient = errors.New("unknown recipient")
)

// IsAuthError reports whether err means the user has to log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired)
}
