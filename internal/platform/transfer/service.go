package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/platform/user"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Service moves funds between accounts
type Service struct {
	users  user.Repository
	txs    Repository
	tx     user.TxManager
	now    func() time.Time
	logger *logger.Logger
}

// NewService creates a new transfer service
func NewService(users user.Repository, txs Repository, tx user.TxManager, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		txs:    txs,
		tx:     tx,
		now:    time.Now,
		logger: log.Component("transfer_service"),
	}
}

// SetClock overrides the time source (useful for testing)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Transfer moves amount from senderID to the account registered under
// receiverEmail. When the sender cannot cover the amount, a failed
// transaction is recorded and returned without an error.
func (s *Service) Transfer(ctx context.Context, senderID uuid.UUID, receiverEmail string, amount decimal.Decimal) (*Record, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var rec *Record
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sender, err := s.users.GetByID(ctx, senderID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return ErrSenderNotFound
			}
			return fmt.Errorf("failed to load sender: %w", err)
		}

		receiver, err := s.users.GetByEmail(ctx, user.NormalizeEmail(receiverEmail))
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return ErrReceiverNotFound
			}
			return fmt.Errorf("failed to load receiver: %w", err)
		}

		if sender.ID == receiver.ID {
			return ErrSelfTransfer
		}

		now := s.now().UTC()
		tx := &Transaction{
			ID:         uuid.New(),
			Amount:     amount,
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			CreatedAt:  now,
		}

		if err := sender.Debit(amount, now); err != nil {
			tx.Status = StatusFailed
		} else {
			receiver.Credit(amount, now)
			if err := s.users.Update(ctx, sender); err != nil {
				return fmt.Errorf("failed to debit sender: %w", err)
			}
			if err := s.users.Update(ctx, receiver); err != nil {
				return fmt.Errorf("failed to credit receiver: %w", err)
			}
			balance := sender.Balance
			tx.Status = StatusSuccess
			tx.SenderBalanceAfter = &balance
		}

		if err := s.txs.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to record transfer: %w", err)
		}

		rec = &Record{Transaction: *tx, Sender: sender, Receiver: receiver}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer recorded",
		"tx_id", rec.ID,
		"status", rec.Status,
		"sender_id", rec.SenderID,
		"receiver_id", rec.ReceiverID,
		"amount", amount.String(),
	)
	return rec, nil
}

// List returns the user's transactions, newest first, with both parties resolved
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Record, error) {
	txs, err := s.txs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	cache := make(map[uuid.UUID]*user.User)
	resolve := func(id uuid.UUID) (*user.User, error) {
		if u, ok := cache[id]; ok {
			return u, nil
		}
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		cache[id] = u
		return u, nil
	}

	out := make([]*Record, 0, len(txs))
	for _, tx := range txs {
		sender, err := resolve(tx.SenderID)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: sender: %w", tx.ID, err)
		}
		receiver, err := resolve(tx.ReceiverID)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: receiver: %w", tx.ID, err)
		}
		out = append(out, &Record{Transaction: *tx, Sender: sender, Receiver: receiver})
	}
	return out, nil
}
