package session

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/infra/gateway/walletapi"
	"github.com/kislikjeka/walletclient/internal/ledger"
)

// Wallet is the remote wallet service used by a session
type Wallet interface {
	Authenticate(ctx context.Context, email, password string) (*walletapi.AuthResult, error)
	Register(ctx context.Context, email, password string) (*ledger.User, error)
	CreateTransfer(ctx context.Context, token, recipientEmail string, amount decimal.Decimal) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, token string) ([]ledger.Transaction, error)
	LoadBalance(ctx context.Context, token string, amount decimal.Decimal) (*ledger.User, error)
	ListUsers(ctx context.Context, token string) ([]ledger.User, error)
	Profile(ctx context.Context, token string) (*ledger.User, error)
}

// Directory caches the list of registered users
type Directory interface {
	Get(ctx context.Context) ([]ledger.User, bool, error)
	Set(ctx context.Context, users []ledger.User) error
	Invalidate(ctx context.Context) error
}
