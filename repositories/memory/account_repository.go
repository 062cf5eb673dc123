// Package memory provides an in-process credential store for local
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/backoffice/models"
	"github.com/upb/backoffice/repositories"
)

// AccountRepository implements repositories.AccountRepository over a map
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.Account
	byUserName map[string]uuid.UUID
}

// NewAccountRepository creates an empty store
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[uuid.UUID]*models.Account),
		byUserName: make(map[string]uuid.UUID),
	}
}

// FindByUsername retrieves an account by user name
func (r *AccountRepository) FindByUsername(ctx context.Context, userName string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUserName[userName]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return clone(r.byID[id]), nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrAccountNotFound, id)
	}
	return clone(account), nil
}

// Save inserts a new account
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUserName[account.UserName]; exists {
		return repositories.ErrDuplicateAccount
	}
	if _, exists := r.byID[account.ID]; exists {
		return repositories.ErrDuplicateAccount
	}

	r.byID[account.ID] = clone(account)
	r.byUserName[account.UserName] = account.ID
	return nil
}

// Ping always succeeds unless ctx is done
func (r *AccountRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func clone(account *models.Account) *models.Account {
	copied := *account
	return &copied
}
