package session_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/kislikjeka/walletclient/internal/infra/gateway/walletapi"
	"github.com/kislikjeka/walletclient/internal/ledger"
)

type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) Authenticate(ctx context.Context, email, password string) (*walletapi.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*walletapi.AuthResult), args.Error(1)
}

func (m *MockWallet) Register(ctx context.Context, email, password string) (*ledger.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.User), args.Error(1)
}

func (m *MockWallet) CreateTransfer(ctx context.Context, token, recipientEmail string, amount decimal.Decimal) (*ledger.Transaction, error) {
	args := m.Called(ctx, token, recipientEmail, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockWallet) ListTransactions(ctx context.Context, token string) ([]ledger.Transaction, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockWallet) LoadBalance(ctx context.Context, token string, amount decimal.Decimal) (*ledger.User, error) {
	args := m.Called(ctx, token, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.User), args.Error(1)
}

func (m *MockWallet) ListUsers(ctx context.Context, token string) ([]ledger.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.User), args.Error(1)
}

func (m *MockWallet) Profile(ctx context.Context, token string) (*ledger.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.User), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Get(ctx context.Context) ([]ledger.User, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]ledger.User), args.Bool(1), args.Error(2)
}

func (m *MockDirectory) Set(ctx context.Context, users []ledger.User) error {
	return m.Called(ctx, users).Error(0)
}

func (m *MockDirectory) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
