package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/internal/observability"
	"github.com/upb/backoffice/internal/policy"
	"github.com/upb/backoffice/tokens"
	"github.com/upb/backoffice/utils"
	"go.uber.org/zap"
)

// TokenDecoder verifies a session token and returns its payload
type TokenDecoder interface {
	Decode(token string) (*tokens.Payload, error)
}

// RouteClassifier decides whether a path needs authentication
type RouteClassifier interface {
	Classify(requestPath string) policy.Access
}

// outcome is the terminal state of the filter for one request
type outcome int

const (
	allowPublic outcome = iota
	allowAuthenticated
	rejectMissing
	rejectInvalidSignature
	rejectExpired
)

func (o outcome) reason() string {
	switch o {
	case rejectMissing:
		return observability.ReasonMissing
	case rejectExpired:
		return observability.ReasonExpired
	default:
		return observability.ReasonInvalidSignature
	}
}

// AuthMiddleware authenticates every request against the route policy
type AuthMiddleware struct {
	routes  RouteClassifier
	decoder TokenDecoder
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(routes RouteClassifier, decoder TokenDecoder, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		routes:  routes,
		decoder: decoder,
		metrics: metrics,
		logger:  logger,
	}
}

// Authenticate classifies the route, then for protected routes extracts and
// decodes the bearer token. Every rejection gets the same 401 response.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, principal, err := m.evaluate(r)

		switch result {
		case allowPublic:
			next.ServeHTTP(w, r)
		case allowAuthenticated:
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		default:
			m.metrics.RecordTokenRejection(result.reason())
			m.logger.Warn("request rejected",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("reason", result.reason()),
				zap.Error(err))
			writeUnauthorized(w)
		}
	})
}

// evaluate runs one classification and at most one decode
func (m *AuthMiddleware) evaluate(r *http.Request) (outcome, *auth.Principal, error) {
	if m.routes.Classify(r.URL.Path) == policy.Public {
		return allowPublic, nil, nil
	}

	token := extractBearerToken(r)
	if token == "" {
		return rejectMissing, nil, tokens.ErrTokenMissing
	}

	payload, err := m.decoder.Decode(token)
	switch {
	case err == nil:
		return allowAuthenticated, auth.NewPrincipal(payload.Subject), nil
	case errors.Is(err, tokens.ErrTokenExpired):
		return rejectExpired, nil, err
	case errors.Is(err, tokens.ErrTokenMissing):
		return rejectMissing, nil, err
	default:
		return rejectInvalidSignature, nil, err
	}
}

// RequireAuth rejects requests that reach it without a bound principal
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			m.logger.Error("principal not found in context",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("path", r.URL.Path))
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	_ = utils.WriteUnauthorized(w, "")
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
