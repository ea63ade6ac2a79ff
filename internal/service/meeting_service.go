package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

const defaultExpectedParticipants = 4

// MeetingService owns the meeting lifecycle: creation with a share code,
// host edits, soft deletion and the terminal confirmation transition.
type MeetingService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	cache        *CacheService
	logger       *logger.Logger
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	cache *CacheService,
	log *logger.Logger,
) *MeetingService {
	return &MeetingService{
		meetings:     meetings,
		participants: participants,
		cache:        cache,
		logger:       log,
	}
}

// generateShareCode returns a random uppercase hex code for invite links.
// 8 hex chars give 32 bits of entropy, plenty against collision at this
// scale; the unique index on share_code is the real guarantee.
func generateShareCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// CreateMeeting creates a meeting with the caller as host and joins the
// caller as its first participant.
func (s *MeetingService) CreateMeeting(ctx context.Context, creatorID uuid.UUID, req *domain.CreateMeetingRequest) (*domain.Meeting, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, errors.NewValidationError("name is required", nil)
	}
	if req.LocationChoiceType != "" && !domain.LocationChoiceType(req.LocationChoiceType).Valid() {
		return nil, errors.NewValidationError("unknown location_choice_type", map[string]interface{}{
			"location_choice_type": req.LocationChoiceType,
		})
	}

	shareCode, err := generateShareCode()
	if err != nil {
		return nil, err
	}

	meeting := &domain.Meeting{
		ID:                       uuid.New(),
		Name:                     strings.TrimSpace(req.Name),
		CreatorID:                creatorID,
		Purpose:                  req.Purpose,
		LocationChoiceType:       domain.LocationChoiceType(req.LocationChoiceType),
		LocationChoiceValue:      req.LocationChoiceValue,
		PreferencePlace:          req.PreferencePlace,
		Deadline:                 req.Deadline,
		ExpectedParticipantCount: req.ExpectedParticipantCount,
		ShareCode:                shareCode,
	}
	if req.IsOnePlace != nil {
		meeting.IsOnePlace = *req.IsOnePlace
	}
	if meeting.ExpectedParticipantCount <= 0 {
		meeting.ExpectedParticipantCount = defaultExpectedParticipants
	}

	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}

	// The host is also a participant, so their votes go through the same
	// ledger as everyone else's.
	if _, _, err := s.participants.JoinByUser(ctx, meeting.ID, creatorID, ""); err != nil {
		s.logger.WithError(err).WithField("meeting_id", meeting.ID).Warn("Failed to join host as participant")
	}

	s.logger.WithFields(map[string]interface{}{
		"meeting_id": meeting.ID,
		"creator_id": creatorID,
	}).Info("Meeting created")

	s.cache.SetMeeting(ctx, meeting)
	s.cache.SetMeetingIDByShareCode(ctx, meeting.ShareCode, meeting.ID)
	return meeting, nil
}

// GetMeeting returns a live meeting, cache-aside.
func (s *MeetingService) GetMeeting(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	if cached := s.cache.GetMeeting(ctx, id); cached != nil {
		return cached, nil
	}

	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	s.cache.SetMeeting(ctx, meeting)
	return meeting, nil
}

// GetMeetingByShareCode resolves an invite link to its meeting.
func (s *MeetingService) GetMeetingByShareCode(ctx context.Context, code string) (*domain.Meeting, error) {
	if code == "" {
		return nil, domain.ErrMeetingNotFound
	}

	if id, ok := s.cache.GetMeetingIDByShareCode(ctx, code); ok {
		return s.GetMeeting(ctx, id)
	}

	meeting, err := s.meetings.GetByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	s.cache.SetMeeting(ctx, meeting)
	s.cache.SetMeetingIDByShareCode(ctx, code, meeting.ID)
	return meeting, nil
}

// UpdateMeeting applies host edits. Only the host may edit, and confirmation
// fields are not reachable through this path.
func (s *MeetingService) UpdateMeeting(ctx context.Context, meetingID, callerID uuid.UUID, req *domain.UpdateMeetingRequest) (*domain.Meeting, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	if !meeting.IsHost(callerID) {
		return nil, domain.ErrNotHost
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errors.NewValidationError("name cannot be empty", nil)
		}
		meeting.Name = strings.TrimSpace(*req.Name)
	}
	if req.Purpose != nil {
		meeting.Purpose = req.Purpose
	}
	if req.IsOnePlace != nil {
		meeting.IsOnePlace = *req.IsOnePlace
	}
	if req.LocationChoiceType != nil {
		if *req.LocationChoiceType != "" && !domain.LocationChoiceType(*req.LocationChoiceType).Valid() {
			return nil, errors.NewValidationError("unknown location_choice_type", nil)
		}
		meeting.LocationChoiceType = domain.LocationChoiceType(*req.LocationChoiceType)
	}
	if req.LocationChoiceValue != nil {
		meeting.LocationChoiceValue = *req.LocationChoiceValue
	}
	if req.PreferencePlace != nil {
		meeting.PreferencePlace = req.PreferencePlace
	}
	if req.Deadline != nil {
		meeting.Deadline = req.Deadline
	}
	if req.ExpectedParticipantCount != nil && *req.ExpectedParticipantCount > 0 {
		meeting.ExpectedParticipantCount = *req.ExpectedParticipantCount
	}

	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, err
	}

	s.cache.InvalidateMeeting(ctx, meetingID, meeting.ShareCode)
	return meeting, nil
}

// DeleteMeeting soft-deletes a meeting. Host only. Votes and candidates are
// kept for audit; the meeting just stops resolving.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID, callerID uuid.UUID) error {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return domain.ErrMeetingNotFound
	}
	if !meeting.IsHost(callerID) {
		return domain.ErrNotHost
	}

	deleted, err := s.meetings.SoftDelete(ctx, meetingID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrMeetingNotFound
	}

	s.cache.InvalidateMeeting(ctx, meetingID, meeting.ShareCode)
	s.logger.WithField("meeting_id", meetingID).Info("Meeting deleted")
	return nil
}

// Confirm performs the Open -> Confirmed transition. Host only. The chosen
// time and place are the host's explicit decision; they are stored alongside
// a snapshot of every tally as it stood at that moment. A meeting confirms
// exactly once: a second attempt is rejected, never merged.
func (s *MeetingService) Confirm(ctx context.Context, meetingID, callerID uuid.UUID, req *domain.ConfirmRequest) (*domain.Meeting, error) {
	if req == nil || (req.ChosenTime == "" && req.ChosenLocation == "") {
		return nil, errors.NewValidationError("chosen_time or chosen_location is required", nil)
	}

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	if !meeting.IsHost(callerID) {
		return nil, domain.ErrNotHost
	}
	if meeting.ConfirmedAt != nil {
		return nil, domain.ErrAlreadyConfirmed
	}

	// Short-lived lock collapses double-submitted confirms before they
	// reach the database. The conditional UPDATE underneath remains the
	// authoritative check.
	if !s.cache.TryConfirmLock(ctx, meetingID) {
		return nil, domain.ErrAlreadyConfirmed
	}

	confirmed, err := s.meetings.Confirm(ctx, meetingID, req.ChosenTime, req.ChosenLocation)
	if err != nil {
		s.cache.ReleaseConfirmLock(ctx, meetingID)
		return nil, err
	}

	s.cache.InvalidateMeeting(ctx, meetingID, meeting.ShareCode)

	s.logger.WithFields(map[string]interface{}{
		"meeting_id":      meetingID,
		"chosen_time":     req.ChosenTime,
		"chosen_location": req.ChosenLocation,
	}).Info("Meeting confirmed")

	return confirmed, nil
}

// SummariesByUser lists the caller's unconfirmed meetings with response
// stats, for the dashboard.
func (s *MeetingService) SummariesByUser(ctx context.Context, userID uuid.UUID) ([]domain.MeetingSummary, error) {
	return s.meetings.SummariesByUser(ctx, userID)
}
