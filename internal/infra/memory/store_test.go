package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletclient/internal/infra/memory"
	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/platform/user"
)

func newUser(email string, balance int64, createdAt time.Time) *user.User {
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		Balance:      decimal.NewFromInt(balance),
		CreatedAt:    createdAt,
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository(memory.NewStore())
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	bob := newUser("bob@x.io", 0, base.Add(time.Minute))
	alice := newUser("alice@x.io", 10, base)
	require.NoError(t, repo.Create(ctx, bob))
	require.NoError(t, repo.Create(ctx, alice))

	err := repo.Create(ctx, newUser("ALICE@x.io", 0, base))
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)

	got, err := repo.GetByEmail(ctx, " Alice@X.io ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got.Balance = decimal.NewFromInt(999)
	again, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(again.Balance), "returned users are copies")

	again.Balance = decimal.NewFromInt(25)
	require.NoError(t, repo.Update(ctx, again))
	updated, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(updated.Balance))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newUser("ghost@x.io", 0, base)), user.ErrUserNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice@x.io", all[0].Email)
	assert.Equal(t, "bob@x.io", all[1].Email)
}

func TestTransactionRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepository(memory.NewStore())
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	first := &transfer.Transaction{ID: uuid.New(), SenderID: a, ReceiverID: b, CreatedAt: base, Status: transfer.StatusSuccess}
	second := &transfer.Transaction{ID: uuid.New(), SenderID: b, ReceiverID: c, CreatedAt: base.Add(time.Minute), Status: transfer.StatusSuccess}
	third := &transfer.Transaction{ID: uuid.New(), SenderID: c, ReceiverID: a, CreatedAt: base.Add(2 * time.Minute), Status: transfer.StatusFailed}
	for _, tx := range []*transfer.Transaction{first, second, third} {
		require.NoError(t, repo.Create(ctx, tx))
	}

	got, err := repo.ListByUser(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, third.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	none, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_RunInTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	txs := memory.NewTransactionRepository(store)
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	alice := newUser("alice@x.io", 10, base)
	require.NoError(t, users.Create(ctx, alice))

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context) error {
		u, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		u.Balance = decimal.Zero
		require.NoError(t, users.Update(ctx, u))
		require.NoError(t, users.Create(ctx, newUser("bob@x.io", 0, base)))
		require.NoError(t, txs.Create(ctx, &transfer.Transaction{ID: uuid.New(), SenderID: alice.ID, ReceiverID: uuid.New()}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Balance))

	_, err = users.GetByEmail(ctx, "bob@x.io")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	list, err := txs.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_RunInTx_Commits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)

	err := store.RunInTx(ctx, func(ctx context.Context) error {
		return users.Create(ctx, newUser("carol@x.io", 5, time.Now()))
	})
	require.NoError(t, err)

	_, err = users.GetByEmail(ctx, "carol@x.io")
	assert.NoError(t, err)
}

func TestStore_RunInTx_NotReentrant(t *testing.T) {
	store := memory.NewStore()
	err := store.RunInTx(context.Background(), func(ctx context.Context) error {
		return store.RunInTx(ctx, func(context.Context) error { return nil })
	})
	require.Error(t, err)
}

func TestStore_RunInTx_OtherStoreStillLocks(t *testing.T) {
	first := memory.NewStore()
	second := memory.NewStore()
	secondUsers := memory.NewUserRepository(second)

	entered := make(chan struct{})
	release := make(chan struct{})
	held := make(chan error, 1)
	go func() {
		held <- second.RunInTx(context.Background(), func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := first.RunInTx(context.Background(), func(ctx context.Context) error {
		created := make(chan error, 1)
		go func() {
			created <- secondUsers.Create(ctx, newUser("dave@x.io", 0, time.Now()))
		}()

		select {
		case <-created:
			t.Fatal("write to another store skipped its lock")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		require.NoError(t, <-held)
		require.NoError(t, <-created)

		return second.RunInTx(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)

	_, err = secondUsers.GetByEmail(context.Background(), "dave@x.io")
	assert.NoError(t, err)
}
