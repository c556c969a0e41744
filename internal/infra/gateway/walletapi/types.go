package walletapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/ledger"
)

const statusSuccess = "success"

// envelope wraps every response body
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) reason() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// flexID accepts ids encoded either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type transferRequest struct {
	ReceiverEmail string      `json:"receiverEmail"`
	Amount        json.Number `json:"amount"`
}

type loadBalanceRequest struct {
	Amount json.Number `json:"amount"`
}

type loginData struct {
	AccessToken string   `json:"access_token"`
	User        *userDTO `json:"user"`
}

type userDTO struct {
	ID      flexID          `json:"id"`
	Email   string          `json:"email"`
	Name    string          `json:"name,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

func (u *userDTO) toUser() ledger.User {
	return ledger.User{
		ID:      string(u.ID),
		Email:   u.Email,
		Balance: u.Balance,
	}
}

type transactionDTO struct {
	ID                 flexID           `json:"id"`
	Amount             decimal.Decimal  `json:"amount"`
	Status             string           `json:"status"`
	CreatedAt          *time.Time       `json:"createdAt"`
	Date               string           `json:"date,omitempty"`
	SenderID           flexID           `json:"senderId"`
	ReceiverID         flexID           `json:"receiverId"`
	Sender             *userDTO         `json:"sender"`
	Receiver           *userDTO         `json:"receiver"`
	SenderBalanceAfter *decimal.Decimal `json:"senderBalanceAfter"`
}

func (t *transactionDTO) toTransaction() (ledger.Transaction, error) {
	status := ledger.Status(t.Status)
	if !status.IsValid() {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: unknown status %q", t.ID, t.Status)
	}

	tx := ledger.Transaction{
		ID:                 string(t.ID),
		Amount:             t.Amount,
		Status:             status,
		SenderID:           string(t.SenderID),
		ReceiverID:         string(t.ReceiverID),
		SenderBalanceAfter: t.SenderBalanceAfter,
	}

	switch {
	case t.CreatedAt != nil:
		tx.CreatedAt = t.CreatedAt.UTC()
	case t.Date != "":
		at, err := time.Parse(time.RFC3339, t.Date)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("transaction %s: invalid date %q", t.ID, t.Date)
		}
		tx.CreatedAt = at.UTC()
	}

	if t.Sender != nil {
		s := t.Sender.toUser()
		tx.Sender = &s
		if tx.SenderID == "" {
			tx.SenderID = s.ID
		}
	}
	if t.Receiver != nil {
		r := t.Receiver.toUser()
		tx.Receiver = &r
		if tx.ReceiverID == "" {
			tx.ReceiverID = r.ID
		}
	}

	return tx, nil
}
