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

// MeetingHandler handles meeting lifecycle requests
type MeetingHandler struct {
	meetings *service.MeetingService
	votes    *service.VoteService
	places   *service.PlaceService
	logger   *logger.Logger
}

func NewMeetingHandler(meetings *service.MeetingService, votes *service.VoteService, places *service.PlaceService, log *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		meetings: meetings,
		votes:    votes,
		places:   places,
		logger:   log,
	}
}

func meetingIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "meetingID"))
	if err != nil {
		return uuid.Nil, errors.NewValidationError("meetingID must be a UUID", nil)
	}
	return id, nil
}

// Create handles POST /api/v1/meetings
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	meeting, err := h.meetings.CreateMeeting(r.Context(), userID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, meeting)
}

// Get handles GET /api/v1/meetings/{meetingID}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	meeting, err := h.meetings.GetMeeting(r.Context(), meetingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// GetByShareCode handles GET /api/v1/meetings/share/{shareCode}
func (h *MeetingHandler) GetByShareCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shareCode")
	if code == "" {
		respondError(w, h.logger, errors.NewValidationError("shareCode is required", nil))
		return
	}

	meeting, err := h.meetings.GetMeetingByShareCode(r.Context(), code)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Update handles PATCH /api/v1/meetings/{meetingID}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req domain.UpdateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	meeting, err := h.meetings.UpdateMeeting(r.Context(), meetingID, userID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Delete handles DELETE /api/v1/meetings/{meetingID}
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.meetings.DeleteMeeting(r.Context(), meetingID, userID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm handles POST /api/v1/meetings/{meetingID}/confirm
func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
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

	var req domain.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, errors.NewValidationError("Invalid request body", nil))
		return
	}

	meeting, err := h.meetings.Confirm(r.Context(), meetingID, userID, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	// Denormalize the confirmed venue for display; failure here does not
	// undo the confirmation.
	if req.ChosenLocation != "" {
		if err := h.places.CacheConfirmedPlace(r.Context(), req.ChosenLocation); err != nil {
			h.logger.WithError(err).WithField("meeting_id", meetingID).Warn("Failed to cache confirmed place")
		}
	}

	respondJSON(w, http.StatusOK, meeting)
}

// Tallies handles GET /api/v1/meetings/{meetingID}/tallies
func (h *MeetingHandler) Tallies(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	timeTallies, placeTallies, err := h.votes.MeetingTallies(r.Context(), meetingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"time_tallies":  timeTallies,
		"place_tallies": placeTallies,
	})
}

// Summaries handles GET /api/v1/meetings (the caller's dashboard)
func (h *MeetingHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, h.logger, errors.NewAuthenticationError("Authentication required"))
		return
	}

	summaries, err := h.meetings.SummariesByUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meetings": summaries,
		"total":    len(summaries),
	})
}
