package services

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, userName string) (*models.Account, error) {
	args := m.Called(ctx, userName)
	if account := args.Get(0); account != nil {
		return account.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if account := args.Get(0); account != nil {
		return account.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// countingHasher records how many verifications ran
type countingHasher struct {
	auth.PasswordHasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plaintext, hash string) (bool, error) {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(plaintext, hash)
}
