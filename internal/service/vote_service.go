package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/errors"
	"moim-be/pkg/logger"
)

// VoteService guards the vote ledger. It resolves the participant and
// meeting, enforces the voting deadline, and delegates the actual write to
// the repository, which recomputes the tally inside the same transaction.
type VoteService struct {
	votes           repository.VoteRepository
	candidates      repository.CandidateRepository
	participants    repository.ParticipantRepository
	meetings        repository.MeetingRepository
	cache           *CacheService
	logger          *logger.Logger
	enforceDeadline bool
}

func NewVoteService(
	votes repository.VoteRepository,
	candidates repository.CandidateRepository,
	participants repository.ParticipantRepository,
	meetings repository.MeetingRepository,
	cache *CacheService,
	log *logger.Logger,
	enforceDeadline bool,
) *VoteService {
	return &VoteService{
		votes:           votes,
		candidates:      candidates,
		participants:    participants,
		meetings:        meetings,
		cache:           cache,
		logger:          log,
		enforceDeadline: enforceDeadline,
	}
}

// checkVotingOpen loads the participant and its meeting, verifies the caller
// actually is that participant, and rejects the write when the deadline has
// passed. Every ledger write funnels through here.
func (s *VoteService) checkVotingOpen(ctx context.Context, participantID uuid.UUID, identity *domain.ParticipantIdentity) (*domain.Participant, *domain.Meeting, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant == nil {
		return nil, nil, domain.ErrParticipantNotFound
	}

	meeting, err := s.meetings.GetByID(ctx, participant.MeetingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if meeting == nil {
		return nil, nil, domain.ErrMeetingNotFound
	}

	if err := authorizeParticipant(meeting, participant, identity); err != nil {
		return nil, nil, err
	}

	if s.enforceDeadline && meeting.Deadline != nil && time.Now().After(*meeting.Deadline) {
		return nil, nil, domain.ErrDeadlinePassed
	}
	return participant, meeting, nil
}

// CastTimeVote submits or changes a participant's vote on a time candidate.
// A repeated cast for the same (participant, candidate) pair overwrites the
// previous vote; the returned outcome tells which happened.
func (s *VoteService) CastTimeVote(ctx context.Context, participantID uuid.UUID, identity *domain.ParticipantIdentity, req *domain.CastTimeVoteRequest) (*domain.TimeVoteResult, error) {
	if req == nil || req.CandidateID == uuid.Nil {
		return nil, errors.NewValidationError("candidate_id is required", nil)
	}

	participant, meeting, err := s.checkVotingOpen(ctx, participantID, identity)
	if err != nil {
		return nil, err
	}

	candidate, err := s.candidates.GetTimeCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load time candidate: %w", err)
	}
	if candidate == nil || candidate.MeetingID != participant.MeetingID {
		// A candidate from another meeting is indistinguishable from a
		// missing one to this caller.
		return nil, domain.ErrCandidateNotFound
	}

	label := req.TimeLabel
	if label == "" {
		if len(candidate.Labels) != 1 {
			return nil, errors.NewValidationError("time_label is required", nil)
		}
		for l := range candidate.Labels {
			label = l
		}
	} else if _, ok := candidate.Labels[label]; !ok {
		return nil, errors.NewValidationError("time_label is not offered by this candidate", map[string]interface{}{
			"time_label": label,
		})
	}

	result, err := s.votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participantID,
		TimeCandidateID: req.CandidateID,
		TimeLabel:       label,
		IsAvailable:     req.IsAvailable,
		Memo:            req.Memo,
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetTimeTally(ctx, &result.Tally)
	s.cache.InvalidateTallies(ctx, meeting.ID, nil, nil)

	s.logger.WithFields(map[string]interface{}{
		"meeting_id":     meeting.ID,
		"participant_id": participantID,
		"candidate_id":   req.CandidateID,
		"outcome":        result.Outcome,
	}).Info("Time vote recorded")

	return result, nil
}

// RemoveTimeVote retracts a vote and refreshes the candidate tally. Only the
// vote's owner may retract it.
func (s *VoteService) RemoveTimeVote(ctx context.Context, voteID uuid.UUID, identity *domain.ParticipantIdentity) error {
	vote, err := s.votes.GetTimeVote(ctx, voteID)
	if err != nil {
		return err
	}
	if _, _, err := s.checkVotingOpen(ctx, vote.ParticipantID, identity); err != nil {
		return err
	}

	tally, err := s.votes.RemoveTimeVote(ctx, voteID)
	if err != nil {
		return err
	}
	s.cache.SetTimeTally(ctx, tally)
	return nil
}

// GetTimeTally returns the aggregate for a time candidate, cache-aside.
func (s *VoteService) GetTimeTally(ctx context.Context, candidateID uuid.UUID) (*domain.TimeTally, error) {
	if cached := s.cache.GetTimeTally(ctx, candidateID); cached != nil {
		return cached, nil
	}

	tally, err := s.votes.GetTimeTally(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	s.cache.SetTimeTally(ctx, tally)
	return tally, nil
}

// ListTimeVotes returns the raw ledger rows for a candidate.
func (s *VoteService) ListTimeVotes(ctx context.Context, candidateID uuid.UUID) ([]domain.TimeVote, error) {
	return s.votes.ListTimeVotes(ctx, candidateID)
}

// CastPlaceVote is the place-candidate counterpart of CastTimeVote.
func (s *VoteService) CastPlaceVote(ctx context.Context, participantID uuid.UUID, identity *domain.ParticipantIdentity, req *domain.CastPlaceVoteRequest) (*domain.PlaceVoteResult, error) {
	if req == nil || req.CandidateID == "" {
		return nil, errors.NewValidationError("candidate_id is required", nil)
	}

	participant, meeting, err := s.checkVotingOpen(ctx, participantID, identity)
	if err != nil {
		return nil, err
	}

	candidate, err := s.candidates.GetPlaceCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load place candidate: %w", err)
	}
	if candidate == nil || candidate.MeetingID != participant.MeetingID {
		return nil, domain.ErrCandidateNotFound
	}

	result, err := s.votes.CastPlaceVote(ctx, &domain.PlaceVote{
		ParticipantID:    participantID,
		PlaceCandidateID: req.CandidateID,
		IsAvailable:      req.IsAvailable,
		Memo:             req.Memo,
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetPlaceTally(ctx, &result.Tally)
	s.cache.InvalidateTallies(ctx, meeting.ID, nil, nil)

	s.logger.WithFields(map[string]interface{}{
		"meeting_id":     meeting.ID,
		"participant_id": participantID,
		"candidate_id":   req.CandidateID,
		"outcome":        result.Outcome,
	}).Info("Place vote recorded")

	return result, nil
}

// RemovePlaceVote retracts a place vote and refreshes the candidate tally.
// Only the participant who cast the vote may retract it.
func (s *VoteService) RemovePlaceVote(ctx context.Context, voteID uuid.UUID, identity *domain.ParticipantIdentity) error {
	vote, err := s.votes.GetPlaceVote(ctx, voteID)
	if err != nil {
		return err
	}
	if _, _, err := s.checkVotingOpen(ctx, vote.ParticipantID, identity); err != nil {
		return err
	}
	tally, err := s.votes.RemovePlaceVote(ctx, voteID)
	if err != nil {
		return err
	}
	s.cache.SetPlaceTally(ctx, tally)
	return nil
}

// GetPlaceTally returns the aggregate for a place candidate, cache-aside.
func (s *VoteService) GetPlaceTally(ctx context.Context, candidateID string) (*domain.PlaceTally, error) {
	if cached := s.cache.GetPlaceTally(ctx, candidateID); cached != nil {
		return cached, nil
	}

	tally, err := s.votes.GetPlaceTally(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	s.cache.SetPlaceTally(ctx, tally)
	return tally, nil
}

// MeetingTallies returns every candidate tally for a meeting, time and
// place, for the host's decision view.
func (s *VoteService) MeetingTallies(ctx context.Context, meetingID uuid.UUID) ([]domain.CandidateTally, []domain.PlaceTally, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if meeting == nil {
		return nil, nil, domain.ErrMeetingNotFound
	}

	timeTallies, err := s.votes.MeetingTimeTallies(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}
	placeTallies, err := s.votes.MeetingPlaceTallies(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}
	return timeTallies, placeTallies, nil
}
