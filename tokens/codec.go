package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMissing is returned when a request carries no usable token
	ErrTokenMissing = errors.New("token missing")

	// ErrInvalidSignature is returned when the signature does not match the
	// payload, or the token cannot be decoded far enough to check it
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when a correctly signed token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidClaims is returned by Encode for an empty subject or an empty validity window
	ErrInvalidClaims = errors.New("invalid token claims")

	// ErrWeakSecret is returned when the signing secret is too short for HS256
	ErrWeakSecret = errors.New("signing secret too short")
)

// MinSecretLength is the minimum signing secret size in bytes
const MinSecretLength = 32

// Payload is the verified content of a session token
type Payload struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Claims is the JSON payload carried inside the token
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 session tokens with a server-held secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Codec
type Option func(*Codec)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a Codec. The secret is copied and never changes afterwards.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
		// Expiry is checked explicitly in Decode so that it only runs after
		// the signature has been verified and uses the injected clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode serializes subject and validity window and signs the result.
// Times are carried at whole-second precision.
func (c *Codec) Encode(subject string, issuedAt, expiresAt time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}
	issuedAt = issuedAt.Truncate(time.Second)
	expiresAt = expiresAt.Truncate(time.Second)
	if !issuedAt.Before(expiresAt) {
		return "", fmt.Errorf("%w: issued-at must precede expiry", ErrInvalidClaims)
	}

	return c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
}

// sign is deterministic: equal claims and secret give an equal signature.
func (c *Codec) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature of tokenString and then its expiry.
// The result depends only on the token, the secret and the current time.
func (c *Codec) Decode(tokenString string) (*Payload, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claim", ErrInvalidSignature)
	}

	if c.now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return &Payload{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
