package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim-be/internal/domain"
	"moim-be/internal/middleware"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

func TestToAppError_DomainSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   errors.ErrorType
	}{
		{"meeting not found", domain.ErrMeetingNotFound, http.StatusNotFound, errors.ErrorTypeNotFound},
		{"participant not found", domain.ErrParticipantNotFound, http.StatusNotFound, errors.ErrorTypeNotFound},
		{"candidate not found", domain.ErrCandidateNotFound, http.StatusNotFound, errors.ErrorTypeNotFound},
		{"vote not found", domain.ErrVoteNotFound, http.StatusNotFound, errors.ErrorTypeNotFound},
		{"not host", domain.ErrNotHost, http.StatusForbidden, errors.ErrorTypeAuthorization},
		{"already confirmed", domain.ErrAlreadyConfirmed, http.StatusConflict, errors.ErrorTypeConflict},
		{"deadline passed", domain.ErrDeadlinePassed, http.StatusForbidden, errors.ErrorTypeAuthorization},
		{"share code mismatch", domain.ErrShareCodeMismatch, http.StatusUnauthorized, errors.ErrorTypeAuthentication},
		{"unauthorized participant", domain.ErrUnauthorizedParticipant, http.StatusUnauthorized, errors.ErrorTypeAuthentication},
		{"duplicate place candidate", domain.ErrDuplicatePlaceCandidate, http.StatusConflict, errors.ErrorTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

func TestToAppError_WrappedSentinel(t *testing.T) {
	appErr := toAppError(fmt.Errorf("loading meeting: %w", domain.ErrMeetingNotFound))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestToAppError_AppErrorPassthrough(t *testing.T) {
	original := errors.NewValidationError("name is required", map[string]interface{}{"field": "name"})
	appErr := toAppError(original)
	assert.Same(t, original, appErr)
}

func TestToAppError_UnknownError(t *testing.T) {
	appErr := toAppError(fmt.Errorf("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, errors.ErrorTypeInternal, appErr.Type)
}

func TestRespondError_Body(t *testing.T) {
	log, err := logger.New("fatal", "test")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	respondError(rec, log, domain.ErrNotHost)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "authorization", body.Error.Type)
	assert.NotEmpty(t, body.Error.Message)
}

func TestUserIDFromContext(t *testing.T) {
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	// Bare request: no profile attached.
	_, ok := userIDFromContext(req)
	assert.False(t, ok)

	// Provider token profiles carry the provider subject, not an internal id.
	providerCtx := context.WithValue(req.Context(), middleware.UserContextKey, &domain.UserProfile{Sub: "108204231"})
	_, ok = userIDFromContext(req.WithContext(providerCtx))
	assert.False(t, ok)

	sessionCtx := context.WithValue(req.Context(), middleware.UserContextKey, &domain.UserProfile{Sub: userID.String()})
	got, ok := userIDFromContext(req.WithContext(sessionCtx))
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}
