package ledger

import (
	"github.com/kislikjeka/walletclient/pkg/money"
)

// Direction of a transaction relative to the current user
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	// DirectionUnknown is only used for display when a record cannot be classified.
	DirectionUnknown Direction = "unknown"
)

// ClassifyDirection returns outgoing when currentUser is the sender and
// incoming otherwise. Identity is the email address, not the id.
func ClassifyDirection(tx Transaction, currentUser User) (Direction, error) {
	if tx.Sender == nil {
		return DirectionUnknown, &MissingPartyError{TransactionID: tx.ID, Party: "sender"}
	}
	if currentUser.SameIdentity(*tx.Sender) {
		return DirectionOutgoing, nil
	}
	return DirectionIncoming, nil
}

// DisplayAmount renders the amount with a sign for the given direction.
// Unknown directions render the bare magnitude.
func DisplayAmount(tx Transaction, dir Direction) string {
	switch dir {
	case DirectionIncoming:
		return money.Signed(tx.Amount, false)
	case DirectionOutgoing:
		return money.Signed(tx.Amount, true)
	default:
		return tx.Amount.String()
	}
}

// DescribeCounterparty names the other side of the transfer.
func DescribeCounterparty(tx Transaction, dir Direction) string {
	switch {
	case dir == DirectionIncoming && tx.Sender != nil:
		return "Received from: " + tx.Sender.Email
	case dir == DirectionOutgoing && tx.Receiver != nil:
		return "Sent to " + tx.Receiver.Email
	default:
		return "Unknown counterparty"
	}
}

// Entry is a transaction prepared for rendering
type Entry struct {
	Transaction  Transaction
	Direction    Direction
	Amount       string
	Counterparty string
}
