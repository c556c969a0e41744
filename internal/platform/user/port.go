package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user persistence operations
type Repository interface {
	// Create creates a new user; ErrUserAlreadyExists if the email is taken
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates a user
	Update(ctx context.Context, user *User) error

	// List returns every user ordered by creation time
	List(ctx context.Context) ([]*User, error)
}

// TxManager runs fn atomically: either every write inside it is kept or none is
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
