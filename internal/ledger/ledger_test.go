package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletclient/internal/ledger"
)

var (
	alice = ledger.User{ID: "u-alice", Email: "alice@example.com", Balance: decimal.NewFromInt(100)}
	bob   = ledger.User{ID: "u-bob", Email: "bob@example.com", Balance: decimal.NewFromInt(20)}
	carol = ledger.User{ID: "u-carol", Email: "carol@example.com", Balance: decimal.NewFromInt(5)}
)

var baseTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, user ledger.User) *ledger.Ledger {
	t.Helper()
	clock := baseTime
	l, err := ledger.New(user, ledger.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, err)
	return l
}

func serverTx(id string, sender, receiver ledger.User, amount string, status ledger.Status, at time.Time) ledger.Transaction {
	return ledger.Transaction{
		ID:         id,
		Amount:     dec(amount),
		Status:     status,
		CreatedAt:  at,
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Sender:     &sender,
		Receiver:   &receiver,
	}
}

func withBalanceAfter(tx ledger.Transaction, balance string) ledger.Transaction {
	b := dec(balance)
	tx.SenderBalanceAfter = &b
	return tx
}

func assertUniqueIDs(t *testing.T, history []ledger.Transaction) {
	t.Helper()
	seen := make(map[string]bool)
	for _, tx := range history {
		assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
	}
}

func TestNew_RejectsNegativeBalance(t *testing.T) {
	u := alice
	u.Balance = dec("-1")
	_, err := ledger.New(u)
	assert.ErrorIs(t, err, ledger.ErrNegativeBalance)
}

// =============================================================================
// Optimistic transfers
// =============================================================================

func TestApplyOptimisticTransfer_PrependsPendingPlaceholder(t *testing.T) {
	l := newLedger(t, alice)
	l.MergeHistory([]ledger.Transaction{
		serverTx("srv-1", bob, alice, "10", ledger.StatusSuccess, baseTime.Add(-time.Hour)),
	})

	tx, err := l.ApplyOptimisticTransfer(dec("30"), &bob)
	require.NoError(t, err)

	assert.True(t, tx.IsPlaceholder())
	assert.Equal(t, ledger.StatusPending, tx.Status)
	assert.Equal(t, alice.ID, tx.SenderID)
	assert.Equal(t, bob.ID, tx.ReceiverID)
	assert.Equal(t, "30", tx.Amount.String())

	history := l.History()
	require.Len(t, history, 2)
	assert.Equal(t, tx.ID, history[0].ID)
	assert.True(t, l.Balance().Equal(dec("100")), "balance must wait for confirmation")
}

func TestApplyOptimisticTransfer_Validation(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		recipient *ledger.User
		wantErr   error
	}{
		{"zero amount", "0", &bob, ledger.ErrInvalidAmount},
		{"negative amount", "-5", &bob, ledger.ErrInvalidAmount},
		{"no recipient", "10", nil, ledger.ErrMissingRecipient},
		{"recipient without email", "10", &ledger.User{ID: "x"}, ledger.ErrMissingRecipient},
		{"self transfer", "10", &alice, ledger.ErrSelfTransfer},
		{"insufficient funds", "150", &bob, ledger.ErrInsufficientFunds},
		{"just over balance", "100.01", &bob, ledger.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, alice)

			_, err := l.ApplyOptimisticTransfer(dec(tt.amount), tt.recipient)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, ledger.IsValidation(err))
			assert.Empty(t, l.History())
			assert.True(t, l.Balance().Equal(dec("100")))
		})
	}
}

func TestApplyOptimisticTransfer_WholeBalanceAllowed(t *testing.T) {
	l := newLedger(t, alice)
	_, err := l.ApplyOptimisticTransfer(dec("100"), &bob)
	assert.NoError(t, err)
}

func TestApplyOptimisticTransfer_ReturnsCopy(t *testing.T) {
	l := newLedger(t, alice)
	tx, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)

	tx.Receiver.Email = "mallory@example.com"
	assert.Equal(t, bob.Email, l.History()[0].Receiver.Email)
}

// =============================================================================
// Reconciliation
// =============================================================================

func TestReconcileTransfer_SuccessReplacesPlaceholderAndSetsBalance(t *testing.T) {
	l := newLedger(t, alice)

	placeholder, err := l.ApplyOptimisticTransfer(dec("30"), &bob)
	require.NoError(t, err)
	assert.True(t, l.Balance().Equal(dec("100")))

	confirmed := withBalanceAfter(
		serverTx("srv-42", alice, bob, "30", ledger.StatusSuccess, baseTime.Add(time.Minute)), "70")
	require.NoError(t, l.ReconcileTransfer(confirmed))

	assert.True(t, l.Balance().Equal(dec("70")))
	assert.False(t, l.BalanceStale())

	history := l.History()
	require.Len(t, history, 1)
	assert.Equal(t, "srv-42", history[0].ID)
	assert.Equal(t, ledger.StatusSuccess, history[0].Status)
	assert.NotEqual(t, placeholder.ID, history[0].ID)
	assert.Empty(t, l.Pending())
}

func TestReconcileTransfer_FailedRemovesPlaceholder(t *testing.T) {
	l := newLedger(t, alice)

	_, err := l.ApplyOptimisticTransfer(dec("30"), &bob)
	require.NoError(t, err)

	failed := serverTx("srv-43", alice, bob, "30", ledger.StatusFailed, baseTime)
	require.NoError(t, l.ReconcileTransfer(failed))

	assert.Empty(t, l.History())
	assert.True(t, l.Balance().Equal(dec("100")))
}

func TestReconcileTransfer_ReplacesOldestMatchingPlaceholder(t *testing.T) {
	l := newLedger(t, alice)

	first, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)
	other, err := l.ApplyOptimisticTransfer(dec("10"), &carol)
	require.NoError(t, err)
	second, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)

	confirmed := withBalanceAfter(
		serverTx("srv-1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)), "90")
	require.NoError(t, l.ReconcileTransfer(confirmed))

	ids := make([]string, 0)
	for _, tx := range l.History() {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{second.ID, other.ID, "srv-1"}, ids)
	assert.NotContains(t, ids, first.ID)
}

func TestReconcileTransfer_AmountMustMatch(t *testing.T) {
	l := newLedger(t, alice)

	placeholder, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)

	confirmed := withBalanceAfter(
		serverTx("srv-1", alice, bob, "11", ledger.StatusSuccess, baseTime.Add(time.Minute)), "89")
	require.NoError(t, l.ReconcileTransfer(confirmed))

	history := l.History()
	require.Len(t, history, 2)
	assert.Equal(t, "srv-1", history[0].ID)
	assert.Equal(t, placeholder.ID, history[1].ID)
}

func TestReconcileTransfer_WithoutPlaceholderUpsertsByID(t *testing.T) {
	l := newLedger(t, alice)
	existing := serverTx("srv-1", alice, bob, "30", ledger.StatusPending, baseTime)
	l.MergeHistory([]ledger.Transaction{
		existing,
		serverTx("srv-0", bob, alice, "5", ledger.StatusSuccess, baseTime.Add(-time.Hour)),
	})

	confirmed := withBalanceAfter(
		serverTx("srv-1", alice, bob, "30", ledger.StatusSuccess, baseTime), "70")
	require.NoError(t, l.ReconcileTransfer(confirmed))
	require.NoError(t, l.ReconcileTransfer(confirmed))

	history := l.History()
	require.Len(t, history, 2)
	assert.Equal(t, "srv-1", history[0].ID)
	assert.Equal(t, ledger.StatusSuccess, history[0].Status)
	assertUniqueIDs(t, history)
}

func TestReconcileTransfer_KnownIDRemovesReappliedPlaceholder(t *testing.T) {
	l := newLedger(t, alice)

	_, err := l.ApplyOptimisticTransfer(dec("30"), &bob)
	require.NoError(t, err)
	inFlight := l.Pending()
	require.Len(t, inFlight, 1)

	confirmed := withBalanceAfter(
		serverTx("s1", alice, bob, "30", ledger.StatusSuccess, baseTime.Add(time.Minute)), "70")
	l.MergeHistory([]ledger.Transaction{confirmed})
	for _, tx := range inFlight {
		_, err := l.ApplyOptimisticTransfer(tx.Amount, tx.Receiver)
		require.NoError(t, err)
	}
	require.Len(t, l.Pending(), 1)

	require.NoError(t, l.ReconcileTransfer(confirmed))

	history := l.History()
	require.Len(t, history, 1)
	assert.Equal(t, "s1", history[0].ID)
	assert.Equal(t, ledger.StatusSuccess, history[0].Status)
	assert.Empty(t, l.Pending())
	assert.True(t, l.Balance().Equal(dec("70")))
}

func TestReconcileTransfer_KnownIDKeepsFinalStatus(t *testing.T) {
	l := newLedger(t, alice)
	l.MergeHistory([]ledger.Transaction{
		serverTx("s1", alice, bob, "30", ledger.StatusSuccess, baseTime),
	})

	err := l.ReconcileTransfer(serverTx("s1", alice, bob, "30", ledger.StatusFailed, baseTime))
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)

	history := l.History()
	require.Len(t, history, 1)
	assert.Equal(t, ledger.StatusSuccess, history[0].Status)

	require.NoError(t, l.ReconcileTransfer(serverTx("s1", alice, bob, "30", ledger.StatusSuccess, baseTime)))
}

func TestReconcileTransfer_NoPlaceholderInsertsByDate(t *testing.T) {
	l := newLedger(t, alice)
	l.MergeHistory([]ledger.Transaction{
		serverTx("new", bob, alice, "1", ledger.StatusSuccess, baseTime.Add(2*time.Hour)),
		serverTx("old", bob, alice, "1", ledger.StatusSuccess, baseTime),
	})

	confirmed := withBalanceAfter(
		serverTx("mid", alice, bob, "30", ledger.StatusSuccess, baseTime.Add(time.Hour)), "70")
	require.NoError(t, l.ReconcileTransfer(confirmed))

	var ids []string
	for _, tx := range l.History() {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestReconcileTransfer_MissingSenderBalanceMarksStale(t *testing.T) {
	l := newLedger(t, alice)
	_, err := l.ApplyOptimisticTransfer(dec("30"), &bob)
	require.NoError(t, err)

	confirmed := serverTx("srv-1", alice, bob, "30", ledger.StatusSuccess, baseTime)
	require.NoError(t, l.ReconcileTransfer(confirmed))

	assert.True(t, l.Balance().Equal(dec("100")), "client must not recompute the balance")
	assert.True(t, l.BalanceStale())

	require.NoError(t, l.ApplyLoadBalance(dec("70")))
	assert.False(t, l.BalanceStale())
}

func TestReconcileTransfer_RejectsNonFinalStatus(t *testing.T) {
	l := newLedger(t, alice)

	err := l.ReconcileTransfer(serverTx("srv-1", alice, bob, "1", ledger.StatusPending, baseTime))
	assert.ErrorIs(t, err, ledger.ErrUnexpectedStatus)

	err = l.ReconcileTransfer(serverTx("srv-1", alice, bob, "1", ledger.Status("weird"), baseTime))
	assert.ErrorIs(t, err, ledger.ErrUnexpectedStatus)
}

func TestReconcileTransfer_RejectsMissingServerID(t *testing.T) {
	l := newLedger(t, alice)

	err := l.ReconcileTransfer(serverTx("", alice, bob, "1", ledger.StatusSuccess, baseTime))
	assert.ErrorIs(t, err, ledger.ErrMissingServerID)

	err = l.ReconcileTransfer(serverTx(ledger.NewPlaceholderID(), alice, bob, "1", ledger.StatusSuccess, baseTime))
	assert.ErrorIs(t, err, ledger.ErrMissingServerID)
}

func TestReconcileTransfer_IncomingDoesNotTouchBalance(t *testing.T) {
	l := newLedger(t, alice)

	incoming := withBalanceAfter(
		serverTx("srv-9", bob, alice, "5", ledger.StatusSuccess, baseTime), "15")
	require.NoError(t, l.ReconcileTransfer(incoming))

	assert.True(t, l.Balance().Equal(dec("100")))
	assert.Len(t, l.History(), 1)
}

// =============================================================================
// Balance loads and history merge
// =============================================================================

func TestApplyLoadBalance(t *testing.T) {
	l := newLedger(t, alice)

	require.NoError(t, l.ApplyLoadBalance(dec("250.75")))
	assert.Equal(t, "250.75", l.Balance().String())

	assert.ErrorIs(t, l.ApplyLoadBalance(dec("-1")), ledger.ErrNegativeBalance)
	assert.Equal(t, "250.75", l.Balance().String())
}

func TestMergeHistory_SortsNewestFirstAndDedupes(t *testing.T) {
	l := newLedger(t, alice)

	l.MergeHistory([]ledger.Transaction{
		serverTx("a", alice, bob, "1", ledger.StatusSuccess, baseTime),
		serverTx("c", alice, bob, "3", ledger.StatusSuccess, baseTime.Add(2*time.Hour)),
		serverTx("b", bob, alice, "2", ledger.StatusFailed, baseTime.Add(time.Hour)),
		serverTx("a", alice, bob, "99", ledger.StatusSuccess, baseTime.Add(3*time.Hour)),
	})

	history := l.History()
	require.Len(t, history, 3)
	assert.Equal(t, "c", history[0].ID)
	assert.Equal(t, "b", history[1].ID)
	assert.Equal(t, "a", history[2].ID)
	assert.Equal(t, "1", history[2].Amount.String(), "first occurrence wins")
}

func TestMergeHistory_IsIdempotent(t *testing.T) {
	l := newLedger(t, alice)
	list := []ledger.Transaction{
		serverTx("a", alice, bob, "1", ledger.StatusSuccess, baseTime),
		serverTx("b", bob, alice, "2", ledger.StatusSuccess, baseTime),
		serverTx("c", alice, carol, "3", ledger.StatusFailed, baseTime.Add(time.Minute)),
	}

	l.MergeHistory(list)
	first := l.History()
	l.MergeHistory(list)
	assert.Equal(t, first, l.History())
}

func TestMergeHistory_DropsOptimisticEntries(t *testing.T) {
	l := newLedger(t, alice)
	_, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)
	require.Len(t, l.Pending(), 1)

	l.MergeHistory([]ledger.Transaction{
		serverTx("a", bob, alice, "1", ledger.StatusSuccess, baseTime),
	})

	assert.Empty(t, l.Pending())
	assert.Len(t, l.History(), 1)
}

func TestHistory_NoDuplicateIDsAcrossOperations(t *testing.T) {
	l := newLedger(t, alice)

	for i := 0; i < 3; i++ {
		_, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
		require.NoError(t, err)
	}
	assertUniqueIDs(t, l.History())

	require.NoError(t, l.ReconcileTransfer(withBalanceAfter(
		serverTx("s1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)), "90")))
	require.NoError(t, l.ReconcileTransfer(withBalanceAfter(
		serverTx("s1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)), "90")))
	require.NoError(t, l.ReconcileTransfer(
		serverTx("s2", alice, bob, "10", ledger.StatusFailed, baseTime.Add(time.Minute))))
	assertUniqueIDs(t, l.History())

	l.MergeHistory([]ledger.Transaction{
		serverTx("s1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)),
		serverTx("s1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)),
	})
	_, err := l.ApplyOptimisticTransfer(dec("10"), &bob)
	require.NoError(t, err)
	require.NoError(t, l.ReconcileTransfer(withBalanceAfter(
		serverTx("s1", alice, bob, "10", ledger.StatusSuccess, baseTime.Add(time.Minute)), "90")))
	assertUniqueIDs(t, l.History())
}

func TestPending_OldestFirst(t *testing.T) {
	l := newLedger(t, alice)
	first, err := l.ApplyOptimisticTransfer(dec("1"), &bob)
	require.NoError(t, err)
	second, err := l.ApplyOptimisticTransfer(dec("2"), &carol)
	require.NoError(t, err)

	pending := l.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestUpdateStatus(t *testing.T) {
	l := newLedger(t, alice)
	tx, err := l.ApplyOptimisticTransfer(dec("1"), &bob)
	require.NoError(t, err)

	require.NoError(t, l.UpdateStatus(tx.ID, ledger.StatusFailed))
	assert.Equal(t, ledger.StatusFailed, l.History()[0].Status)

	err = l.UpdateStatus(tx.ID, ledger.StatusSuccess)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)

	err = l.UpdateStatus("missing", ledger.StatusSuccess)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}
