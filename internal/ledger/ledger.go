package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Ledger is the client-side view of one user's balance and transaction
// history for the lifetime of a session.
//
// History holds at most one entry per id, newest first. Optimistic transfers
// are prepended as pending placeholders and later replaced by the server's
// record. The balance only ever takes server-confirmed values.
//
// A Ledger is not safe for concurrent use. Its owner must make sure that at
// most one mutating call runs at a time.
type Ledger struct {
	currentUser  User
	history      []Transaction
	balanceStale bool

	now    func() time.Time
	logger *logger.Logger
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the time source used for placeholder timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLogger sets the logger used to report data-integrity faults.
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) {
		l.logger = log.Component("ledger")
	}
}

// New creates a ledger for the authenticated user with an empty history.
func New(currentUser User, opts ...Option) (*Ledger, error) {
	if currentUser.Balance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	l := &Ledger{
		currentUser: currentUser,
		now:         time.Now,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CurrentUser returns a copy of the session's user
func (l *Ledger) CurrentUser() User {
	return l.currentUser
}

// Balance returns the last server-confirmed balance
func (l *Ledger) Balance() decimal.Decimal {
	return l.currentUser.Balance
}

// BalanceStale reports that a transfer succeeded without the server
// supplying the resulting balance. The owner should refresh the profile.
func (l *Ledger) BalanceStale() bool {
	return l.balanceStale
}

// History returns a copy of the transaction history, newest first
func (l *Ledger) History() []Transaction {
	out := make([]Transaction, len(l.history))
	for i, tx := range l.history {
		out[i] = tx.clone()
	}
	return out
}

// Pending returns the optimistic entries still awaiting confirmation,
// oldest first.
func (l *Ledger) Pending() []Transaction {
	var out []Transaction
	for i := len(l.history) - 1; i >= 0; i-- {
		tx := l.history[i]
		if tx.IsPlaceholder() && tx.Status == StatusPending {
			out = append(out, tx.clone())
		}
	}
	return out
}

// ApplyOptimisticTransfer validates a transfer against local state and
// prepends a pending placeholder for it. The balance is left untouched until
// the server confirms the transfer.
func (l *Ledger) ApplyOptimisticTransfer(amount decimal.Decimal, recipient *User) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if recipient == nil || recipient.Email == "" {
		return Transaction{}, ErrMissingRecipient
	}
	if l.currentUser.SameIdentity(*recipient) {
		return Transaction{}, ErrSelfTransfer
	}
	if amount.GreaterThan(l.currentUser.Balance) {
		return Transaction{}, fmt.Errorf("%w: balance %s, requested %s",
			ErrInsufficientFunds, l.currentUser.Balance, amount)
	}

	sender := l.currentUser
	receiver := *recipient
	tx := Transaction{
		ID:         NewPlaceholderID(),
		Amount:     amount,
		Status:     StatusPending,
		CreatedAt:  l.now().UTC(),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Sender:     &sender,
		Receiver:   &receiver,
	}

	l.history = append([]Transaction{tx}, l.history...)
	return tx.clone(), nil
}

// ReconcileTransfer merges the server's answer for a submitted transfer.
//
// The oldest pending placeholder with the same receiver and amount is
// replaced by a successful record, and the balance becomes the
// server-supplied SenderBalanceAfter. A failed record only removes the
// placeholder. A record whose id is already in history replaces that entry,
// unless that entry already holds a different final status.
func (l *Ledger) ReconcileTransfer(serverTx Transaction) error {
	if !serverTx.Status.IsFinal() {
		return fmt.Errorf("%w: %q", ErrUnexpectedStatus, serverTx.Status)
	}
	if serverTx.Status == StatusSuccess && (serverTx.ID == "" || IsPlaceholderID(serverTx.ID)) {
		return ErrMissingServerID
	}

	confirmed := serverTx.clone()

	// A record already in history (from a refresh or an earlier confirmation)
	// is updated in place. A placeholder re-applied after that refresh stands
	// for the same transfer and goes away.
	if existing := l.indexByID(confirmed.ID); existing >= 0 {
		current := l.history[existing].Status
		if current.IsFinal() && current != confirmed.Status {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, confirmed.Status)
		}
		l.history[existing] = confirmed
		if placeholder := l.oldestMatchingPlaceholder(confirmed); placeholder >= 0 {
			l.removeAt(placeholder)
		}
		if confirmed.Status == StatusSuccess {
			return l.applyConfirmedBalance(confirmed)
		}
		return nil
	}

	placeholder := l.oldestMatchingPlaceholder(confirmed)
	if confirmed.Status == StatusFailed {
		if placeholder >= 0 {
			l.removeAt(placeholder)
		}
		return nil
	}

	if placeholder >= 0 {
		l.history[placeholder] = confirmed
	} else {
		l.insertSorted(confirmed)
	}
	return l.applyConfirmedBalance(confirmed)
}

// ApplyLoadBalance replaces the balance with the server-confirmed value.
func (l *Ledger) ApplyLoadBalance(newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return ErrNegativeBalance
	}
	l.currentUser.Balance = newBalance
	l.balanceStale = false
	return nil
}

// MergeHistory replaces the history with the server's list: duplicates by id
// are dropped (first one wins) and entries are ordered newest first. Any
// optimistic entry still pending is discarded.
func (l *Ledger) MergeHistory(serverTxs []Transaction) {
	seen := make(map[string]struct{}, len(serverTxs))
	merged := make([]Transaction, 0, len(serverTxs))
	for _, tx := range serverTxs {
		if _, dup := seen[tx.ID]; dup {
			continue
		}
		seen[tx.ID] = struct{}{}
		merged = append(merged, tx.clone())
	}

	slices.SortStableFunc(merged, func(a, b Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if dropped := len(l.Pending()); dropped > 0 {
		l.logger.Debug("history merge dropped optimistic entries", "count", dropped)
	}
	l.history = merged
}

// UpdateStatus moves a pending transaction to a final status.
func (l *Ledger) UpdateStatus(id string, status Status) error {
	idx := l.indexByID(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	current := l.history[idx].Status
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}
	l.history[idx].Status = status
	return nil
}

// Present classifies a transaction for display. A record that cannot be
// classified is shown with DirectionUnknown instead of failing.
func (l *Ledger) Present(tx Transaction) Entry {
	dir, err := ClassifyDirection(tx, l.currentUser)
	if err != nil {
		l.logger.Warn("transaction cannot be classified", "tx_id", tx.ID, "error", err)
		dir = DirectionUnknown
	}
	return Entry{
		Transaction:  tx.clone(),
		Direction:    dir,
		Amount:       DisplayAmount(tx, dir),
		Counterparty: DescribeCounterparty(tx, dir),
	}
}

// Entries presents the whole history, newest first
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.history))
	for i, tx := range l.history {
		out[i] = l.Present(tx)
	}
	return out
}

func (l *Ledger) applyConfirmedBalance(tx Transaction) error {
	if !l.isSender(tx) {
		return nil
	}
	if tx.SenderBalanceAfter == nil {
		l.balanceStale = true
		l.logger.Warn("confirmed transfer without sender balance", "tx_id", tx.ID)
		return nil
	}
	return l.ApplyLoadBalance(*tx.SenderBalanceAfter)
}

func (l *Ledger) isSender(tx Transaction) bool {
	if tx.Sender != nil {
		return l.currentUser.SameIdentity(*tx.Sender)
	}
	return tx.SenderID != "" && tx.SenderID == l.currentUser.ID
}

// oldestMatchingPlaceholder scans from the end because history is newest first.
func (l *Ledger) oldestMatchingPlaceholder(tx Transaction) int {
	for i := len(l.history) - 1; i >= 0; i-- {
		candidate := l.history[i]
		if !candidate.IsPlaceholder() || candidate.Status != StatusPending {
			continue
		}
		if !candidate.Amount.Equal(tx.Amount) {
			continue
		}
		if sameReceiver(candidate, tx) {
			return i
		}
	}
	return -1
}

func sameReceiver(placeholder, confirmed Transaction) bool {
	if placeholder.Receiver != nil && confirmed.Receiver != nil {
		return placeholder.Receiver.SameIdentity(*confirmed.Receiver)
	}
	return placeholder.ReceiverID != "" && placeholder.ReceiverID == confirmed.ReceiverID
}

func (l *Ledger) indexByID(id string) int {
	if id == "" {
		return -1
	}
	for i, tx := range l.history {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) removeAt(i int) {
	l.history = slices.Delete(l.history, i, i+1)
}

func (l *Ledger) insertSorted(tx Transaction) {
	i := 0
	for i < len(l.history) && !l.history[i].CreatedAt.Before(tx.CreatedAt) {
		i++
	}
	l.history = slices.Insert(l.history, i, tx)
}
