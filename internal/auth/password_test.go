package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash verifies against its plaintext", func(t *testing.T) {
		hash, err := hasher.Hash("secret123")
		require.NoError(t, err)
		assert.NotContains(t, hash, "secret123")

		ok, err := hasher.Verify("secret123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("same plaintext hashes differently", func(t *testing.T) {
		first, err := hasher.Hash("secret123")
		require.NoError(t, err)
		second, err := hasher.Hash("secret123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("wrong password is a clean mismatch", func(t *testing.T) {
		hash, err := hasher.Hash("secret123")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed hash is a corrupt credential", func(t *testing.T) {
		for _, hash := range []string{"", "plain-text", "$2a$99$invalidcostinvalidcostinvalidcostinvalidcostinvalidco"} {
			ok, err := hasher.Verify("secret123", hash)
			assert.False(t, ok, hash)
			assert.ErrorIs(t, err, ErrCorruptCredential, hash)
		}
	})

	t.Run("empty and oversized plaintexts are rejected", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, ErrEmptyPassword)

		_, err = hasher.Hash(strings.Repeat("a", MaxPasswordBytes+1))
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost())
		assert.Equal(t, bcrypt.MinCost, hasher.Cost())
	})
}

func TestPrincipal(t *testing.T) {
	roles := []string{"staff"}
	p := NewPrincipal("alice", roles...)

	assert.Equal(t, "alice", p.Subject())
	assert.Equal(t, []string{"staff"}, p.Roles())
	assert.Empty(t, NewPrincipal("bob").Roles())

	// Mutating inputs or outputs never reaches the principal
	roles[0] = "admin"
	got := p.Roles()
	got[0] = "root"
	assert.Equal(t, []string{"staff"}, p.Roles())
}
