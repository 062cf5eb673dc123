package services

import (
	"time"

	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/tokens"
)

// IssuedToken is a freshly signed session token and its expiry
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService issues session tokens with a single configured lifetime.
// It is stateless and safe for concurrent use.
type TokenService struct {
	codec    *tokens.Codec
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a TokenService. now defaults to time.Now when nil.
func NewTokenService(codec *tokens.Codec, lifetime time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		codec:    codec,
		lifetime: lifetime,
		now:      now,
	}
}

// Issue signs a token for principal valid from now until now plus the lifetime
func (s *TokenService) Issue(principal *auth.Principal) (*IssuedToken, error) {
	if principal == nil || principal.Subject() == "" {
		return nil, NewDomainError(ErrorTypeValidation, "principal required", nil)
	}

	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.lifetime).Truncate(time.Second)

	token, err := s.codec.Encode(principal.Subject(), issuedAt, expiresAt)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	return &IssuedToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
