package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/service"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// VoteHandler handles the vote ledger endpoints
type VoteHandler struct {
	votes  *service.VoteService
	logger *logger.Logger
}

func NewVoteHandler(votes *service.VoteService, log *logger.Logger) *VoteHandler {
	return &VoteHandler{
		votes:  votes,
		logger: log,
	}
}

// CastTimeVote handles POST /api/v1/participants/{participantID}/votes/time
func (h *VoteHandler) CastTimeVote(w http.ResponseWriter, r *http.Request) {
	participantID, err := participantIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req domain.CastTimeVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	identity := identityFromRequest(r, req.OAuthKey, req.ShareCode)
	result, err := h.votes.CastTimeVote(r.Context(), participantID, identity, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == domain.VoteInserted {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

// CastPlaceVote handles POST /api/v1/participants/{participantID}/votes/place
func (h *VoteHandler) CastPlaceVote(w http.ResponseWriter, r *http.Request) {
	participantID, err := participantIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req domain.CastPlaceVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	identity := identityFromRequest(r, req.OAuthKey, req.ShareCode)
	result, err := h.votes.CastPlaceVote(r.Context(), participantID, identity, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == domain.VoteInserted {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

func voteIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "voteID"))
	if err != nil {
		return uuid.Nil, errors.NewValidationError("voteID must be a UUID", nil)
	}
	return id, nil
}

// voteCredentials is the optional body of vote-removal requests. Anonymous
// callers re-present their provider key and share code here; session
// callers send no body.
type voteCredentials struct {
	OAuthKey  string `json:"oauth_key"`
	ShareCode string `json:"share_code"`
}

func removalIdentity(r *http.Request) (*domain.ParticipantIdentity, error) {
	var creds voteCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil && err != io.EOF {
		return nil, errors.NewValidationError("Invalid request body", nil)
	}
	return identityFromRequest(r, creds.OAuthKey, creds.ShareCode), nil
}

// RemoveTimeVote handles DELETE /api/v1/votes/time/{voteID}
func (h *VoteHandler) RemoveTimeVote(w http.ResponseWriter, r *http.Request) {
	voteID, err := voteIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	identity, err := removalIdentity(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.votes.RemoveTimeVote(r.Context(), voteID, identity); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemovePlaceVote handles DELETE /api/v1/votes/place/{voteID}
func (h *VoteHandler) RemovePlaceVote(w http.ResponseWriter, r *http.Request) {
	voteID, err := voteIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	identity, err := removalIdentity(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.votes.RemovePlaceVote(r.Context(), voteID, identity); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTimeTally handles GET /api/v1/candidates/time/{candidateID}/tally
func (h *VoteHandler) GetTimeTally(w http.ResponseWriter, r *http.Request) {
	candidateID, err := uuid.Parse(chi.URLParam(r, "candidateID"))
	if err != nil {
		respondError(w, h.logger, errors.NewValidationError("candidateID must be a UUID", nil))
		return
	}

	tally, err := h.votes.GetTimeTally(r.Context(), candidateID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tally)
}

// GetPlaceTally handles GET /api/v1/candidates/place/{candidateID}/tally
func (h *VoteHandler) GetPlaceTally(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	if candidateID == "" {
		respondError(w, h.logger, errors.NewValidationError("candidateID is required", nil))
		return
	}

	tally, err := h.votes.GetPlaceTally(r.Context(), candidateID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tally)
}

// ListTimeVotes handles GET /api/v1/candidates/time/{candidateID}/votes
func (h *VoteHandler) ListTimeVotes(w http.ResponseWriter, r *http.Request) {
	candidateID, err := uuid.Parse(chi.URLParam(r, "candidateID"))
	if err != nil {
		respondError(w, h.logger, errors.NewValidationError("candidateID must be a UUID", nil))
		return
	}

	votes, err := h.votes.ListTimeVotes(r.Context(), candidateID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"votes": votes,
		"total": len(votes),
	})
}
