package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletclient/internal/platform/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by store
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create stores a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	defer r.store.write(ctx)()

	email := user.NormalizeEmail(u.Email)
	if _, exists := r.store.byEmail[email]; exists {
		return user.ErrUserAlreadyExists
	}
	if _, exists := r.store.users[u.ID]; exists {
		return user.ErrUserAlreadyExists
	}

	r.store.users[u.ID] = copyUser(u)
	r.store.byEmail[email] = u.ID
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	defer r.store.read(ctx)()

	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	defer r.store.read(ctx)()

	id, ok := r.store.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return copyUser(r.store.users[id]), nil
}

// Update replaces a stored user. The email cannot change.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	defer r.store.write(ctx)()

	if _, ok := r.store.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.store.users[u.ID] = copyUser(u)
	return nil
}

// List returns every user ordered by creation time
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	defer r.store.read(ctx)()

	out := make([]*user.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, copyUser(u))
	}
	slices.SortFunc(out, func(a, b *user.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Email, b.Email)
	})
	return out, nil
}
