package ledger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

func TestClassifyDirection(t *testing.T) {
	tests := []struct {
		name     string
		sender   ledger.User
		expected ledger.Direction
	}{
		{"current user sends -> outgoing", alice, ledger.DirectionOutgoing},
		{"someone else sends -> incoming", bob, ledger.DirectionIncoming},
		{"same id different email -> incoming", ledger.User{ID: alice.ID, Email: "other@example.com"}, ledger.DirectionIncoming},
		{"same email different id -> outgoing", ledger.User{ID: "u-other", Email: alice.Email}, ledger.DirectionOutgoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := serverTx("t1", tt.sender, carol, "5", ledger.StatusSuccess, baseTime)
			dir, err := ledger.ClassifyDirection(tx, alice)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dir)
		})
	}
}

func TestClassifyDirection_MissingSender(t *testing.T) {
	tx := serverTx("t1", bob, alice, "5", ledger.StatusSuccess, baseTime)
	tx.Sender = nil

	dir, err := ledger.ClassifyDirection(tx, alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrMissingParty)
	assert.Equal(t, ledger.DirectionUnknown, dir)

	var mpe *ledger.MissingPartyError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "t1", mpe.TransactionID)
	assert.Equal(t, "sender", mpe.Party)
	assert.False(t, ledger.IsValidation(err))
}

func TestDisplayAmount(t *testing.T) {
	tests := []struct {
		amount   string
		dir      ledger.Direction
		expected string
	}{
		{"30", ledger.DirectionIncoming, "+30"},
		{"30", ledger.DirectionOutgoing, "-30"},
		{"0.1", ledger.DirectionIncoming, "+0.1"},
		{"1234.5678", ledger.DirectionOutgoing, "-1234.5678"},
		{"30", ledger.DirectionUnknown, "30"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			tx := serverTx("t1", bob, alice, tt.amount, ledger.StatusSuccess, baseTime)
			got := ledger.DisplayAmount(tx, tt.dir)
			assert.Equal(t, tt.expected, got)

			// magnitude is the record's amount, untouched
			if tt.dir != ledger.DirectionUnknown {
				assert.Equal(t, tx.Amount.String(), got[1:])
			}
		})
	}
}

func TestDescribeCounterparty(t *testing.T) {
	in := serverTx("t1", bob, alice, "5", ledger.StatusSuccess, baseTime)
	out := serverTx("t2", alice, bob, "5", ledger.StatusSuccess, baseTime)

	assert.Equal(t, "Received from: bob@example.com", ledger.DescribeCounterparty(in, ledger.DirectionIncoming))
	assert.Equal(t, "Sent to bob@example.com", ledger.DescribeCounterparty(out, ledger.DirectionOutgoing))

	out.Receiver = nil
	assert.Equal(t, "Unknown counterparty", ledger.DescribeCounterparty(out, ledger.DirectionOutgoing))
}

func TestPresent_MissingPartyIsNeutral(t *testing.T) {
	var buf bytes.Buffer
	l, err := ledger.New(alice, ledger.WithLogger(logger.NewWithFormat("development", "json", &buf)))
	require.NoError(t, err)

	broken := serverTx("t-broken", bob, alice, "12", ledger.StatusSuccess, baseTime)
	broken.Sender = nil
	l.MergeHistory([]ledger.Transaction{
		broken,
		serverTx("t-ok", alice, bob, "3", ledger.StatusSuccess, baseTime),
	})

	entries := l.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, ledger.DirectionUnknown, entries[0].Direction)
	assert.Equal(t, "12", entries[0].Amount)
	assert.Equal(t, "Unknown counterparty", entries[0].Counterparty)
	assert.Contains(t, buf.String(), "t-broken")

	assert.Equal(t, ledger.DirectionOutgoing, entries[1].Direction)
	assert.Equal(t, "-3", entries[1].Amount)
	assert.Equal(t, "Sent to bob@example.com", entries[1].Counterparty)
}

func TestStatus(t *testing.T) {
	assert.True(t, ledger.StatusPending.IsValid())
	assert.False(t, ledger.Status("done").IsValid())

	assert.True(t, ledger.StatusPending.CanTransitionTo(ledger.StatusSuccess))
	assert.True(t, ledger.StatusPending.CanTransitionTo(ledger.StatusFailed))
	assert.False(t, ledger.StatusPending.CanTransitionTo(ledger.StatusPending))
	assert.False(t, ledger.StatusSuccess.CanTransitionTo(ledger.StatusFailed))
	assert.False(t, ledger.StatusFailed.CanTransitionTo(ledger.StatusSuccess))
}

func TestPlaceholderIDs(t *testing.T) {
	a := ledger.NewPlaceholderID()
	b := ledger.NewPlaceholderID()

	assert.NotEqual(t, a, b)
	assert.True(t, ledger.IsPlaceholderID(a))
	assert.False(t, ledger.IsPlaceholderID("42"))
	assert.False(t, ledger.IsPlaceholderID("6f1c1f8e-6b43-4a0e-9f5b-7b1d1f0d2a11"))
}
