package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a back-office login. The password is held only as a bcrypt hash
// and is never serialized.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserName     string    `json:"userName" db:"user_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	PhoneNumber  string    `json:"phoneNumber,omitempty" db:"phone_number"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new Account with a fresh id
func NewAccount(userName, passwordHash, phoneNumber string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           uuid.New(),
		UserName:     userName,
		PasswordHash: passwordHash,
		PhoneNumber:  phoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
