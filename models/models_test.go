package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	account := NewAccount("alice", "$2a$10$hash", "+57 300 000 0000")

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, "alice", account.UserName)
	assert.Equal(t, "$2a$10$hash", account.PasswordHash)
	assert.Equal(t, "+57 300 000 0000", account.PhoneNumber)
	assert.False(t, account.CreatedAt.IsZero())
	assert.Equal(t, account.CreatedAt, account.UpdatedAt)
}

func TestAccount_TableName(t *testing.T) {
	assert.Equal(t, "accounts", Account{}.TableName())
}

func TestAccount_JSONMarshaling(t *testing.T) {
	account := NewAccount("alice", "$2a$10$secret-hash", "")

	data, err := json.Marshal(account)
	require.NoError(t, err)

	// Password hash should not be in JSON
	assert.NotContains(t, string(data), "secret-hash")
	assert.NotContains(t, string(data), "phoneNumber")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "alice", decoded["userName"])
}
