package walletapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed remote call
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindTimeout      ErrorKind = "timeout"
	KindUnauthorized ErrorKind = "unauthorized"
	KindRateLimited  ErrorKind = "rate_limited"
	KindRejected     ErrorKind = "rejected"
	KindServer       ErrorKind = "server"
	KindMalformed    ErrorKind = "malformed"
)

// RemoteError is returned for every failed call to the wallet API.
type RemoteError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("wallet api %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same call may succeed if the user tries again.
// Nothing is retried automatically.
func (e *RemoteError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimited, KindServer:
		return true
	}
	return false
}

// IsUnauthorized checks if an error is (or wraps) a 401 from the wallet API
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// KindOf returns the kind of a RemoteError, or "" for any other error
func KindOf(err error) ErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == 401:
		return KindUnauthorized
	case code == 429:
		return KindRateLimited
	case code >= 400 && code < 500:
		return KindRejected
	default:
		return KindServer
	}
}
