package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// CandidateHandler handles candidate store endpoints
type CandidateHandler struct {
	candidates *service.CandidateService
	logger     *logger.Logger
}

func NewCandidateHandler(candidates *service.CandidateService, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		logger:     log,
	}
}

// AddTime handles POST /api/v1/meetings/{meetingID}/candidates/time
func (h *CandidateHandler) AddTime(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req domain.AddTimeCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	candidate, err := h.candidates.AddTimeCandidate(r.Context(), meetingID, userID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, candidate)
}

// ListTime handles GET /api/v1/meetings/{meetingID}/candidates/time
func (h *CandidateHandler) ListTime(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	candidates, err := h.candidates.ListTimeCandidates(r.Context(), meetingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// RemoveTime handles DELETE /api/v1/candidates/time/{candidateID}
func (h *CandidateHandler) RemoveTime(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	candidateID, err := uuid.Parse(chi.URLParam(r, "candidateID"))
	if err != nil {
		respondError(w, h.logger, errors.NewValidationError("candidateID must be a UUID", nil))
		return
	}

	if err := h.candidates.RemoveTimeCandidate(r.Context(), candidateID, userID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPlace handles POST /api/v1/meetings/{meetingID}/candidates/place
func (h *CandidateHandler) AddPlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req domain.AddPlaceCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	candidate, err := h.candidates.AddPlaceCandidate(r.Context(), meetingID, userID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, candidate)
}

// ListPlace handles GET /api/v1/meetings/{meetingID}/candidates/place
func (h *CandidateHandler) ListPlace(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	candidates, err := h.candidates.ListPlaceCandidates(r.Context(), meetingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// RemovePlace handles DELETE /api/v1/candidates/place/{candidateID}
func (h *CandidateHandler) RemovePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	candidateID := chi.URLParam(r, "candidateID")
	if candidateID == "" {
		respondError(w, h.logger, errors.NewValidationError("candidateID is required", nil))
		return
	}

	if err := h.candidates.RemovePlaceCandidate(r.Context(), candidateID, userID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
