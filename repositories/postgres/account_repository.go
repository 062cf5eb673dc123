package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/backoffice/models"
	"github.com/upb/backoffice/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure
const uniqueViolation = pq.ErrorCode("23505")

const accountColumns = `id, user_name, password_hash, COALESCE(phone_number, ''), created_at, updated_at`

// AccountRepository implements the repositories.AccountRepository interface
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUsername retrieves an account by user name
func (r *AccountRepository) FindByUsername(ctx context.Context, userName string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_name = $1`

	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, userName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Save inserts a new account
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, user_name, password_hash, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.UserName,
		account.PasswordHash,
		account.PhoneNumber,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repositories.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Debug("account created", zap.String("id", account.ID.String()))
	return nil
}

// Ping reports whether the database is reachable
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *AccountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.UserName,
		&account.PasswordHash,
		&account.PhoneNumber,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
