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

// ParticipantHandler handles join and participant maintenance requests
type ParticipantHandler struct {
	access *service.AccessService
	logger *logger.Logger
}

func NewParticipantHandler(access *service.AccessService, log *logger.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		access: access,
		logger: log,
	}
}

// joinRequest is the anonymous half of the identity claim; authenticated
// callers are recognized from their bearer token instead.
type joinRequest struct {
	OAuthKey  string `json:"oauth_key,omitempty"`
	ShareCode string `json:"share_code,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
}

// Join handles POST /api/v1/meetings/{meetingID}/participants. It resolves
// the caller to their participant row, creating it on first contact; calling
// it again returns the same row.
func (h *ParticipantHandler) Join(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	identity := &domain.ParticipantIdentity{
		OAuthKey:  req.OAuthKey,
		ShareCode: req.ShareCode,
		Nickname:  req.Nickname,
	}
	if userID, ok := userIDFromContext(r); ok {
		identity.UserID = &userID
	}

	participant, err := h.access.ResolveParticipant(r.Context(), meetingID, identity)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, participant)
}

// List handles GET /api/v1/meetings/{meetingID}/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	participants, err := h.access.ListParticipants(r.Context(), meetingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"participants": participants,
		"total":        len(participants),
	})
}

func participantIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		return uuid.Nil, errors.NewValidationError("participantID must be a UUID", nil)
	}
	return id, nil
}

// updateParticipantRequest carries the edit plus the anonymous caller's
// credentials; session callers are recognized from their bearer token.
type updateParticipantRequest struct {
	domain.UpdateParticipantRequest
	OAuthKey  string `json:"oauth_key,omitempty"`
	ShareCode string `json:"share_code,omitempty"`
}

// Update handles PATCH /api/v1/participants/{participantID}
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	participantID, err := participantIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req updateParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	identity := identityFromRequest(r, req.OAuthKey, req.ShareCode)
	participant, err := h.access.UpdateParticipant(r.Context(), participantID, identity, &req.UpdateParticipantRequest)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, participant)
}

// Delete handles DELETE /api/v1/participants/{participantID}
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	participantID, err := participantIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	identity, err := removalIdentity(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.access.RemoveParticipant(r.Context(), participantID, identity); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
