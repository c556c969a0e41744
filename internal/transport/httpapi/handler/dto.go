package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/platform/user"
)

// UserResponse is a user without credentials
type UserResponse struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse is one transfer as the wallet app reads it
type TransactionResponse struct {
	ID                 string           `json:"id"`
	Amount             decimal.Decimal  `json:"amount"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
	SenderID           string           `json:"senderId"`
	ReceiverID         string           `json:"receiverId"`
	Sender             *UserResponse    `json:"sender"`
	Receiver           *UserResponse    `json:"receiver"`
	SenderBalanceAfter *decimal.Decimal `json:"senderBalanceAfter,omitempty"`
}

// LoginResponse carries the access token
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user"`
}

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TransferRequest is the body of POST /transactions
type TransferRequest struct {
	ReceiverEmail string          `json:"receiverEmail"`
	Amount        decimal.Decimal `json:"amount"`
}

// LoadBalanceRequest is the body of POST /users/load-balance
type LoadBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func toUserResponse(u *user.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:      u.ID.String(),
		Email:   u.Email,
		Balance: u.Balance,
	}
}

// toPublicUser hides the balance of anyone but the caller
func toPublicUser(u *user.User, viewer uuid.UUID) *UserResponse {
	resp := toUserResponse(u)
	if resp != nil && u.ID != viewer {
		resp.Balance = decimal.Zero
	}
	return resp
}

// toTransactionResponse renders rec for viewer. Only the sender sees
// senderBalanceAfter.
func toTransactionResponse(rec *transfer.Record, viewer uuid.UUID) TransactionResponse {
	resp := TransactionResponse{
		ID:         rec.ID.String(),
		Amount:     rec.Amount,
		Status:     string(rec.Status),
		CreatedAt:  rec.CreatedAt,
		SenderID:   rec.SenderID.String(),
		ReceiverID: rec.ReceiverID.String(),
		Sender:     toPublicUser(rec.Sender, viewer),
		Receiver:   toPublicUser(rec.Receiver, viewer),
	}
	if rec.SenderID == viewer {
		resp.SenderBalanceAfter = rec.SenderBalanceAfter
	}
	return resp
}
