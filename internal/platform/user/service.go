package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Service handles account registration, login and balance top-ups
type Service struct {
	repo           Repository
	tx             TxManager
	initialBalance decimal.Decimal
	now            func() time.Time
	logger         *logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithInitialBalance sets the balance new accounts start with
func WithInitialBalance(amount decimal.Decimal) Option {
	return func(s *Service) {
		s.initialBalance = amount
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new user service
func NewService(repo Repository, tx TxManager, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tx:     tx,
		now:    time.Now,
		logger: log.Component("user_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with the configured initial balance
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	return s.RegisterWithBalance(ctx, email, password, s.initialBalance)
}

// RegisterWithBalance creates an account with an explicit opening balance
func (s *Service) RegisterWithBalance(ctx context.Context, email, password string, balance decimal.Decimal) (*User, error) {
	now := s.now().UTC()
	u := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.ValidateEmail(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if err == ErrUserAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Login authenticates a user with email and password
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if err == ErrUserNotFound {
			// Don't reveal that the user doesn't exist
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := u.CheckPassword(password); err != nil {
		return nil, err
	}

	u.UpdateLastLogin(s.now().UTC())
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Warn("failed to update last login", "user_id", u.ID, "error", err)
	}

	return u, nil
}

// LoadBalance credits amount to the user and returns the updated account
func (s *Service) LoadBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*User, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var u *User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u.Credit(amount, s.now().UTC())
		if err := s.repo.Update(ctx, u); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("balance loaded", "user_id", u.ID, "amount", amount.String(), "balance", u.Balance.String())
	return u, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// List returns every user
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}
