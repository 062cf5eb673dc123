package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/tokens"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenService_Issue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 250_000_000, time.UTC)
	clock := func() time.Time { return now }

	codec, err := tokens.NewCodec(testSecret, tokens.WithClock(clock))
	require.NoError(t, err)
	svc := NewTokenService(codec, 24*time.Hour, clock)

	t.Run("expiry is issue time plus lifetime", func(t *testing.T) {
		issued, err := svc.Issue(auth.NewPrincipal("alice"))
		require.NoError(t, err)

		want := now.Truncate(time.Second).Add(24 * time.Hour)
		assert.True(t, issued.ExpiresAt.Equal(want), "got %s", issued.ExpiresAt)

		payload, err := codec.Decode(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", payload.Subject)
		assert.True(t, payload.ExpiresAt.Equal(issued.ExpiresAt))
	})

	t.Run("tokens for the same principal differ and each validates", func(t *testing.T) {
		principal := auth.NewPrincipal("alice")
		first, err := svc.Issue(principal)
		require.NoError(t, err)
		second, err := svc.Issue(principal)
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
		_, err = codec.Decode(first.Token)
		assert.NoError(t, err)
		_, err = codec.Decode(second.Token)
		assert.NoError(t, err)
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := svc.Issue(nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		seen := sync.Map{}
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				issued, err := svc.Issue(auth.NewPrincipal("alice"))
				if assert.NoError(t, err) {
					_, dup := seen.LoadOrStore(issued.Token, struct{}{})
					assert.False(t, dup)
				}
			}()
		}
		wg.Wait()
	})
}

func TestTokenService_IssueFractionalLifetime(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	clock := func() time.Time { return now }

	codec, err := tokens.NewCodec(testSecret, tokens.WithClock(clock))
	require.NoError(t, err)
	svc := NewTokenService(codec, 1500*time.Millisecond, clock)

	issued, err := svc.Issue(auth.NewPrincipal("alice"))
	require.NoError(t, err)
	assert.True(t, issued.ExpiresAt.Equal(issuedAt.Add(time.Second)), "got %s", issued.ExpiresAt)

	payload, err := codec.Decode(issued.Token)
	require.NoError(t, err)
	assert.True(t, payload.ExpiresAt.Equal(issued.ExpiresAt))

	t.Run("still valid at the reported expiry", func(t *testing.T) {
		now = issued.ExpiresAt
		_, err := codec.Decode(issued.Token)
		assert.NoError(t, err)
	})

	t.Run("rejected one second after the reported expiry", func(t *testing.T) {
		now = issued.ExpiresAt.Add(time.Second)
		_, err := codec.Decode(issued.Token)
		assert.Error(t, err)
	})
}

func TestNewTokenService_DefaultClock(t *testing.T) {
	codec, err := tokens.NewCodec(testSecret)
	require.NoError(t, err)
	svc := NewTokenService(codec, time.Hour, nil)

	before := time.Now().Truncate(time.Second)
	issued, err := svc.Issue(auth.NewPrincipal("alice"))
	require.NoError(t, err)

	assert.False(t, issued.ExpiresAt.Before(before.Add(time.Hour)))
	assert.False(t, issued.ExpiresAt.After(time.Now().Add(time.Hour)))
}
