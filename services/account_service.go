package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/internal/observability"
	"github.com/upb/backoffice/models"
	"github.com/upb/backoffice/repositories"
	"go.uber.org/zap"
)

// SignUpInput carries the fields needed to register an account
type SignUpInput struct {
	UserName    string
	Password    string
	PhoneNumber string
}

// AccountService authenticates credentials against the account store and
// registers new accounts. It holds no per-request state.
type AccountService struct {
	accounts     repositories.AccountRepository
	hasher       auth.PasswordHasher
	storeTimeout time.Duration
	dummyHash    string
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAccountService creates an AccountService. storeTimeout bounds every
// store call; a non-positive value leaves only the caller's deadline.
func NewAccountService(
	accounts repositories.AccountRepository,
	hasher auth.PasswordHasher,
	storeTimeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*AccountService, error) {
	dummyHash, err := newDummyHash(hasher)
	if err != nil {
		return nil, err
	}

	return &AccountService{
		accounts:     accounts,
		hasher:       hasher,
		storeTimeout: storeTimeout,
		dummyHash:    dummyHash,
		metrics:      metrics,
		logger:       logger,
	}, nil
}

// newDummyHash hashes a random value with the configured cost. Unknown user
// names are verified against it so both failure paths do the same work.
func newDummyHash(hasher auth.PasswordHasher) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate dummy credential: %w", err)
	}
	hash, err := hasher.Hash(hex.EncodeToString(b))
	if err != nil {
		return "", fmt.Errorf("failed to hash dummy credential: %w", err)
	}
	return hash, nil
}

// Authenticate verifies userName and password against the store.
// An unknown user name and a wrong password both return ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, userName, password string) (*auth.Principal, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	account, err := s.accounts.FindByUsername(ctx, userName)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			s.metrics.RecordSignIn(observability.OutcomeUnknownUser)
			return nil, ErrInvalidCredentials
		}

		s.metrics.RecordSignIn(observability.OutcomeStoreError)
		s.logger.Error("credential lookup failed", zap.Error(err))
		return nil, WrapUnavailable(ErrStoreUnavailable.Message, err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.metrics.RecordSignIn(observability.OutcomeStoreError)
		s.logger.Error("stored credential is corrupt",
			zap.String("account_id", account.ID.String()),
			zap.Error(err))
		return nil, WrapUnavailable(ErrCorruptCredential.Message, err)
	}
	if !ok {
		s.metrics.RecordSignIn(observability.OutcomeWrongPassword)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordSignIn(observability.OutcomeSuccess)
	return auth.NewPrincipal(account.UserName), nil
}

// SignUp hashes the password, stores a new account and returns its principal
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*auth.Principal, error) {
	if input.UserName == "" {
		s.metrics.RecordSignUp(observability.OutcomeInvalid)
		return nil, NewDomainError(ErrorTypeValidation, ErrInvalidInput.Message, nil).
			WithDetail("userName", "userName is required")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.metrics.RecordSignUp(observability.OutcomeInvalid)
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, NewDomainError(ErrorTypeValidation, ErrInvalidInput.Message, err).
				WithDetail("password", err.Error())
		}
		return nil, WrapInternal("failed to hash password", err)
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	account := models.NewAccount(input.UserName, hash, input.PhoneNumber)
	if err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateAccount) {
			s.metrics.RecordSignUp(observability.OutcomeDuplicate)
			return nil, ErrAccountExists
		}

		s.metrics.RecordSignUp(observability.OutcomeStoreError)
		s.logger.Error("failed to save account", zap.Error(err))
		return nil, WrapUnavailable(ErrStoreUnavailable.Message, err)
	}

	s.metrics.RecordSignUp(observability.OutcomeSuccess)
	s.logger.Info("account created", zap.String("account_id", account.ID.String()))
	return auth.NewPrincipal(account.UserName), nil
}

// FindAccountID returns the id of the account registered under userName
func (s *AccountService) FindAccountID(ctx context.Context, userName string) (uuid.UUID, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	account, err := s.accounts.FindByUsername(ctx, userName)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return uuid.Nil, ErrAccountNotFound
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return uuid.Nil, WrapUnavailable(ErrStoreUnavailable.Message, err)
	}
	return account.ID, nil
}

// GetAccount loads the account stored under id
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("account lookup failed",
			zap.String("account_id", id.String()),
			zap.Error(err))
		return nil, WrapUnavailable(ErrStoreUnavailable.Message, err)
	}
	return account, nil
}

func (s *AccountService) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
