package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/backoffice/utils"
	"go.uber.org/zap"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StorePinger reports whether the credential store is reachable
type StorePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store   StorePinger
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil store reports healthy.
func NewHealthHandler(store StorePinger, timeout time.Duration, logger *zap.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleHealth handles GET /actuator/health
// Liveness check - always returns 200 if the process is serving
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    statusUp,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /actuator/health/readiness
// Readiness check - validates that the credential store is available
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string)
	status := statusUp
	httpStatus := http.StatusOK

	if err := h.checkStore(ctx); err != nil {
		h.logger.Warn("credential store health check failed", zap.Error(err))
		checks["store"] = statusDown
		status = statusDown
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = statusUp
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	return h.store.Ping(ctx)
}
