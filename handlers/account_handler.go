package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/middleware"
	"github.com/upb/backoffice/models"
	"github.com/upb/backoffice/services"
	"github.com/upb/backoffice/utils"
	"go.uber.org/zap"
)

// maxBodyBytes bounds credential request bodies
const maxBodyBytes = 1 << 16

// SignInRequest represents a sign-in request
type SignInRequest struct {
	UserName string `json:"userName" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest represents an account registration request
type SignUpRequest struct {
	UserName    string `json:"userName" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,maxbytes=72"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
}

// TokenResponse is returned by sign-in and sign-up
type TokenResponse struct {
	Token      string `json:"token"`
	ExpireDate string `json:"expireDate"`
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UserName string `json:"userName"`
}

// AccountIDResponse carries the id of a looked-up account
type AccountIDResponse struct {
	AccountID uuid.UUID `json:"accountId"`
}

// AccountResponse is the public view of a stored account
type AccountResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	UserName  string    `json:"userName"`
}

// AccountService defines the credential operations used by AccountHandler
type AccountService interface {
	Authenticate(ctx context.Context, userName, password string) (*auth.Principal, error)
	SignUp(ctx context.Context, input services.SignUpInput) (*auth.Principal, error)
	FindAccountID(ctx context.Context, userName string) (uuid.UUID, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// TokenIssuer issues session tokens for an authenticated principal
type TokenIssuer interface {
	Issue(principal *auth.Principal) (*services.IssuedToken, error)
}

// AccountHandler handles account HTTP requests
type AccountHandler struct {
	accounts AccountService
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts AccountService, tokens TokenIssuer, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

// HandleSignIn handles POST /api/accounts/signin
func (h *AccountHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req SignInRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal, err := h.accounts.Authenticate(ctx, req.UserName, req.Password)
	if err != nil {
		if h.abandoned(ctx, requestID) {
			return
		}
		h.logger.Info("sign-in rejected",
			zap.String("request_id", requestID),
			zap.String("error_type", string(services.GetErrorType(err))))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.issue(w, r, principal, requestID)
}

// HandleSignUp handles POST /api/accounts/signup
func (h *AccountHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req SignUpRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal, err := h.accounts.SignUp(ctx, services.SignUpInput{
		UserName:    req.UserName,
		Password:    req.Password,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		if h.abandoned(ctx, requestID) {
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	h.issue(w, r, principal, requestID)
}

// HandleMe handles GET /api/accounts/me
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, MeResponse{UserName: principal.Subject()}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleFindAccount handles GET /api/accounts/find?userName=
func (h *AccountHandler) HandleFindAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	userName := r.URL.Query().Get("userName")
	if userName == "" {
		_ = utils.WriteBadRequest(w, "Validation failed", map[string]interface{}{
			"userName": "userName is required",
		})
		return
	}

	id, err := h.accounts.FindAccountID(ctx, userName)
	if err != nil {
		if h.abandoned(ctx, requestID) {
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, AccountIDResponse{AccountID: id}); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// HandleGetAccount handles GET /api/accounts/{id}
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Validation failed", map[string]interface{}{
			"id": "id must be a valid UUID",
		})
		return
	}

	account, err := h.accounts.GetAccount(ctx, id)
	if err != nil {
		if h.abandoned(ctx, requestID) {
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	resp := AccountResponse{AccountID: account.ID, UserName: account.UserName}
	if err := utils.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// decode parses and validates a JSON body, writing a 400 on failure
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.logger.Warn("invalid request body",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

func (h *AccountHandler) issue(w http.ResponseWriter, r *http.Request, principal *auth.Principal, requestID string) {
	issued, err := h.tokens.Issue(principal)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if h.abandoned(r.Context(), requestID) {
		return
	}

	resp := TokenResponse{
		Token:      issued.Token,
		ExpireDate: issued.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if err := utils.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// abandoned reports whether the client has gone away, in which case no response is written
func (h *AccountHandler) abandoned(ctx context.Context, requestID string) bool {
	if ctx.Err() == nil {
		return false
	}
	h.logger.Debug("request context done, skipping response",
		zap.String("request_id", requestID),
		zap.Error(ctx.Err()))
	return true
}
