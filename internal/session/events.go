package session

import "github.com/kislikjeka/walletclient/internal/ledger"

// EventType identifies a session event
type EventType string

const (
	EventLoggedIn      EventType = "logged_in"
	EventLoggedOut     EventType = "logged_out"
	EventLedgerChanged EventType = "ledger_changed"
)

// LogoutReason says why a session ended
type LogoutReason string

const (
	ReasonUser         LogoutReason = "user"
	ReasonUnauthorized LogoutReason = "unauthorized"
	ReasonExpired      LogoutReason = "expired"
)

// Event is delivered to every subscriber when session state changes.
// Reason is set only for EventLoggedOut.
type Event struct {
	Type   EventType
	User   ledger.User
	Reason LogoutReason
}

// Listener receives session events synchronously
type Listener func(Event)
