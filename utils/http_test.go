package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteOK(w, map[string]string{"status": "UP"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "UP", response.Data.(map[string]interface{})["status"])
}

func TestWriteUnauthorized(t *testing.T) {
	t.Run("default message is stable", func(t *testing.T) {
		first := httptest.NewRecorder()
		second := httptest.NewRecorder()

		require.NoError(t, WriteUnauthorized(first, ""))
		require.NoError(t, WriteUnauthorized(second, ""))

		assert.Equal(t, http.StatusUnauthorized, first.Code)
		assert.Equal(t, `{"error":"unauthorized","message":"Authentication required"}`+"\n", first.Body.String())
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("custom message", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteUnauthorized(w, "Token expired"))

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Token expired", response.Message)
	})
}

func TestWriteErrorHelpers(t *testing.T) {
	details := map[string]interface{}{"userName": "userName is required"}

	tests := []struct {
		name        string
		write       func(http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Validation failed", details) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Validation failed",
			wantDetails: true,
		},
		{
			name:        "not found default message",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "Resource not found",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteConflict(w, "account already exists", nil) },
			wantStatus:  http.StatusConflict,
			wantError:   "conflict",
			wantMessage: "account already exists",
		},
		{
			name:        "internal default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
		{
			name:        "service unavailable default message",
			write:       func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "") },
			wantStatus:  http.StatusServiceUnavailable,
			wantError:   "service_unavailable",
			wantMessage: "Service temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
			if tt.wantDetails {
				assert.Equal(t, "userName is required", response.Details["userName"])
			} else {
				assert.Empty(t, response.Details)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status    int
		wantError string
	}{
		{status: http.StatusBadRequest, wantError: "bad_request"},
		{status: http.StatusUnauthorized, wantError: "unauthorized"},
		{status: http.StatusNotFound, wantError: "not_found"},
		{status: http.StatusMethodNotAllowed, wantError: "method_not_allowed"},
		{status: http.StatusConflict, wantError: "conflict"},
		{status: http.StatusServiceUnavailable, wantError: "service_unavailable"},
		{status: http.StatusTeapot, wantError: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.status, "message", nil))

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantError, response.Error)
		})
	}
}
