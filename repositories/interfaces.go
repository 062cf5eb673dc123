package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/backoffice/models"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup key
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when saving an account whose user name is taken
	ErrDuplicateAccount = errors.New("account already exists")
)

// AccountRepository is the credential store consumed by the auth core.
// Implementations must honor ctx cancellation and deadlines.
type AccountRepository interface {
	// FindByUsername retrieves an account by its unique user name.
	// Returns ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, userName string) (*models.Account, error)

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// Save inserts a new account. Returns ErrDuplicateAccount when the user name exists.
	Save(ctx context.Context, account *models.Account) error

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Accounts AccountRepository
}
