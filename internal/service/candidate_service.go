package service

import (
	"context"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// CandidateService manages the candidate stores. Writes are host-only;
// reads are open to anyone who resolved the meeting.
type CandidateService struct {
	candidates repository.CandidateRepository
	meetings   repository.MeetingRepository
	cache      *CacheService
	logger     *logger.Logger
}

func NewCandidateService(
	candidates repository.CandidateRepository,
	meetings repository.MeetingRepository,
	cache *CacheService,
	log *logger.Logger,
) *CandidateService {
	return &CandidateService{
		candidates: candidates,
		meetings:   meetings,
		cache:      cache,
		logger:     log,
	}
}

func (s *CandidateService) requireHost(ctx context.Context, meetingID, callerID uuid.UUID) (*domain.Meeting, error) {
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
	return meeting, nil
}

// AddTimeCandidate creates a time candidate whose labels start at zero
// votes. Zero counts are part of the tally from the first read.
func (s *CandidateService) AddTimeCandidate(ctx context.Context, meetingID, callerID uuid.UUID, req *domain.AddTimeCandidateRequest) (*domain.TimeCandidate, error) {
	if req == nil || len(req.Labels) == 0 {
		return nil, errors.NewValidationError("at least one time label is required", nil)
	}

	if _, err := s.requireHost(ctx, meetingID, callerID); err != nil {
		return nil, err
	}

	labels := make(map[string]int, len(req.Labels))
	for label := range req.Labels {
		if label == "" {
			return nil, errors.NewValidationError("time labels cannot be empty", nil)
		}
		labels[label] = 0
	}

	candidate := &domain.TimeCandidate{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Labels:    labels,
	}
	if err := s.candidates.CreateTimeCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"meeting_id":   meetingID,
		"candidate_id": candidate.ID,
		"labels":       len(labels),
	}).Info("Time candidate added")

	return candidate, nil
}

// ListTimeCandidates lists a meeting's time candidates with their cached
// tallies.
func (s *CandidateService) ListTimeCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.TimeCandidate, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	return s.candidates.ListTimeCandidates(ctx, meetingID)
}

// RemoveTimeCandidate deletes a candidate. Its votes go with it in the same
// transaction, so no orphan ledger rows survive.
func (s *CandidateService) RemoveTimeCandidate(ctx context.Context, candidateID, callerID uuid.UUID) error {
	candidate, err := s.candidates.GetTimeCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return domain.ErrCandidateNotFound
	}

	meeting, err := s.requireHost(ctx, candidate.MeetingID, callerID)
	if err != nil {
		return err
	}

	deleted, err := s.candidates.DeleteTimeCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrCandidateNotFound
	}

	s.cache.InvalidateTallies(ctx, meeting.ID, []uuid.UUID{candidateID}, nil)
	return nil
}

// AddPlaceCandidate creates a place candidate keyed by its external place
// id. A duplicate id within the meeting is a conflict, not an upsert.
func (s *CandidateService) AddPlaceCandidate(ctx context.Context, meetingID, callerID uuid.UUID, req *domain.AddPlaceCandidateRequest) (*domain.PlaceCandidate, error) {
	if req == nil || req.ID == "" {
		return nil, errors.NewValidationError("place id is required", nil)
	}
	if req.LocationType != "" && !domain.LocationChoiceType(req.LocationType).Valid() {
		return nil, errors.NewValidationError("unknown location_type", nil)
	}

	if _, err := s.requireHost(ctx, meetingID, callerID); err != nil {
		return nil, err
	}

	candidate := &domain.PlaceCandidate{
		ID:               req.ID,
		MeetingID:        meetingID,
		PreferenceSubway: req.PreferenceSubway,
		PreferenceArea:   req.PreferenceArea,
		Food:             req.Food,
		Condition:        req.Condition,
		LocationType:     domain.LocationChoiceType(req.LocationType),
		Recommendation:   req.Recommendation,
	}
	if err := s.candidates.CreatePlaceCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"meeting_id":   meetingID,
		"candidate_id": candidate.ID,
	}).Info("Place candidate added")

	return candidate, nil
}

// ListPlaceCandidates lists a meeting's place candidates.
func (s *CandidateService) ListPlaceCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.PlaceCandidate, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	return s.candidates.ListPlaceCandidates(ctx, meetingID)
}

// RemovePlaceCandidate deletes a place candidate and its votes.
func (s *CandidateService) RemovePlaceCandidate(ctx context.Context, candidateID string, callerID uuid.UUID) error {
	candidate, err := s.candidates.GetPlaceCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return domain.ErrCandidateNotFound
	}

	meeting, err := s.requireHost(ctx, candidate.MeetingID, callerID)
	if err != nil {
		return err
	}

	deleted, err := s.candidates.DeletePlaceCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrCandidateNotFound
	}

	s.cache.InvalidateTallies(ctx, meeting.ID, nil, []string{candidateID})
	return nil
}
