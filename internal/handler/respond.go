package handler

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/middleware"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps an error to its HTTP shape. Domain sentinels are
// translated first; *AppError passes through; anything else is a 500 with
// the detail kept server-side.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Debug("Request rejected")
	}

	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":    string(appErr.Type),
			"message": appErr.Message,
		},
	}
	if appErr.Details != nil {
		response["error"].(map[string]interface{})["details"] = appErr.Details
	}
	respondJSON(w, appErr.StatusCode, response)
}

func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case goerrors.Is(err, domain.ErrMeetingNotFound):
		return errors.NewNotFoundError("Meeting not found")
	case goerrors.Is(err, domain.ErrParticipantNotFound):
		return errors.NewNotFoundError("Participant not found")
	case goerrors.Is(err, domain.ErrCandidateNotFound):
		return errors.NewNotFoundError("Candidate not found")
	case goerrors.Is(err, domain.ErrVoteNotFound):
		return errors.NewNotFoundError("Vote not found")
	case goerrors.Is(err, domain.ErrUserNotFound):
		return errors.NewNotFoundError("User not found")
	case goerrors.Is(err, domain.ErrNotHost):
		return errors.NewAuthorizationError("Only the meeting host may do this")
	case goerrors.Is(err, domain.ErrAlreadyConfirmed):
		return errors.NewConflictError("Meeting is already confirmed")
	case goerrors.Is(err, domain.ErrDeadlinePassed):
		return errors.NewAuthorizationError("Voting deadline has passed")
	case goerrors.Is(err, domain.ErrShareCodeMismatch):
		return errors.NewAuthenticationError("Share code does not match this meeting")
	case goerrors.Is(err, domain.ErrUnauthorizedParticipant):
		return errors.NewAuthenticationError("Caller does not resolve to a participant")
	case goerrors.Is(err, domain.ErrDuplicatePlaceCandidate):
		return errors.NewConflictError("Place candidate already exists for this meeting")
	}
	return errors.NewInternalError("Internal server error", err)
}

// userIDFromContext extracts the internal user id set by the auth
// middleware. Only session tokens carry an internal id; provider tokens
// resolve to profiles whose subject is not a UUID.
func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	profile, ok := r.Context().Value(middleware.UserContextKey).(*domain.UserProfile)
	if !ok || profile == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(profile.Sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// identityFromRequest builds the caller's identity claim: the session user
// when the auth middleware validated one, otherwise the anonymous
// credentials carried in the request body.
func identityFromRequest(r *http.Request, oauthKey, shareCode string) *domain.ParticipantIdentity {
	if userID, ok := userIDFromContext(r); ok {
		return &domain.ParticipantIdentity{UserID: &userID}
	}
	return &domain.ParticipantIdentity{OAuthKey: oauthKey, ShareCode: shareCode}
}

// profileFromContext extracts the validated token profile, if any.
func profileFromContext(r *http.Request) (*domain.UserProfile, bool) {
	profile, ok := r.Context().Value(middleware.UserContextKey).(*domain.UserProfile)
	return profile, ok && profile != nil
}
