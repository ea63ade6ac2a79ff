package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"moim-be/internal/domain"
	"moim-be/internal/repository"
	"moim-be/pkg/logger"
)

// AccessService is the access guard for participant-scoped operations.
// Every caller must resolve to a participant row before touching votes,
// through exactly one of two paths: an authenticated user reference, or an
// anonymous provider key accompanied by the meeting's share code.
type AccessService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	cache        *CacheService
	logger       *logger.Logger
}

func NewAccessService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	cache *CacheService,
	log *logger.Logger,
) *AccessService {
	return &AccessService{
		meetings:     meetings,
		participants: participants,
		cache:        cache,
		logger:       log,
	}
}

// ResolveParticipant maps the caller's identity claim to the participant row
// for the meeting, creating it on first contact. Join is idempotent: the
// same identity always resolves to the same row.
//
// The share code check is a case-sensitive exact match against the live
// meeting. A mismatch is an authentication failure, not a lookup miss.
func (s *AccessService) ResolveParticipant(ctx context.Context, meetingID uuid.UUID, identity *domain.ParticipantIdentity) (*domain.Participant, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorizedParticipant
	}

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}

	switch {
	case identity.UserID != nil:
		participant, created, err := s.participants.JoinByUser(ctx, meetingID, *identity.UserID, identity.Nickname)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.WithFields(map[string]interface{}{
				"meeting_id": meetingID,
				"user_id":    *identity.UserID,
			}).Info("Authenticated participant joined meeting")
		}
		return participant, nil

	case identity.OAuthKey != "":
		if identity.ShareCode == "" || identity.ShareCode != meeting.ShareCode {
			return nil, domain.ErrShareCodeMismatch
		}
		participant, created, err := s.participants.JoinByOAuthKey(ctx, meetingID, identity.OAuthKey, identity.Nickname)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.WithField("meeting_id", meetingID).Info("Anonymous participant joined meeting")
		}
		return participant, nil
	}

	return nil, domain.ErrUnauthorizedParticipant
}

// authorizeParticipant verifies that the identity claims the participant row
// itself: a session user bound to the row, or the row's provider key together
// with the meeting's live share code. This is the precondition for every vote
// ledger write.
func authorizeParticipant(meeting *domain.Meeting, participant *domain.Participant, identity *domain.ParticipantIdentity) error {
	if identity == nil {
		return domain.ErrUnauthorizedParticipant
	}
	if identity.UserID != nil {
		if participant.UserID != nil && *participant.UserID == *identity.UserID {
			return nil
		}
		return domain.ErrUnauthorizedParticipant
	}
	if identity.OAuthKey != "" && participant.OAuthKey == identity.OAuthKey {
		if identity.ShareCode == "" || identity.ShareCode != meeting.ShareCode {
			return domain.ErrShareCodeMismatch
		}
		return nil
	}
	return domain.ErrUnauthorizedParticipant
}

// authorizeParticipantOrHost additionally lets the meeting host through, for
// participant management (the host may drop anyone from their meeting).
func authorizeParticipantOrHost(meeting *domain.Meeting, participant *domain.Participant, identity *domain.ParticipantIdentity) error {
	if identity != nil && identity.UserID != nil && meeting.IsHost(*identity.UserID) {
		return nil
	}
	return authorizeParticipant(meeting, participant, identity)
}

// loadParticipantMeeting resolves a participant row together with its live
// meeting.
func (s *AccessService) loadParticipantMeeting(ctx context.Context, id uuid.UUID) (*domain.Participant, *domain.Meeting, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if participant == nil {
		return nil, nil, domain.ErrParticipantNotFound
	}
	meeting, err := s.meetings.GetByID(ctx, participant.MeetingID)
	if err != nil {
		return nil, nil, err
	}
	if meeting == nil {
		return nil, nil, domain.ErrMeetingNotFound
	}
	return participant, meeting, nil
}

// GetParticipant returns a participant row by id.
func (s *AccessService) GetParticipant(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, domain.ErrParticipantNotFound
	}
	return participant, nil
}

// ListParticipants returns all participants of a live meeting.
func (s *AccessService) ListParticipants(ctx context.Context, meetingID uuid.UUID) ([]domain.Participant, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, domain.ErrMeetingNotFound
	}
	return s.participants.ListByMeeting(ctx, meetingID)
}

// UpdateParticipant applies response-flag and preference edits. Only the
// participant themself or the meeting host may change the row.
func (s *AccessService) UpdateParticipant(ctx context.Context, id uuid.UUID, identity *domain.ParticipantIdentity, req *domain.UpdateParticipantRequest) (*domain.Participant, error) {
	participant, meeting, err := s.loadParticipantMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipantOrHost(meeting, participant, identity); err != nil {
		return nil, err
	}
	return s.participants.Update(ctx, id, req)
}

// RemoveParticipant deletes a participant; their votes cascade and the
// affected tallies are refreshed in the same transaction. Allowed for the
// participant themself and for the meeting host.
func (s *AccessService) RemoveParticipant(ctx context.Context, id uuid.UUID, identity *domain.ParticipantIdentity) error {
	participant, meeting, err := s.loadParticipantMeeting(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeParticipantOrHost(meeting, participant, identity); err != nil {
		return err
	}

	deleted, err := s.participants.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrParticipantNotFound
	}

	// Every tally the participant touched moved; drop the meeting
	// leaderboard and let the short per-candidate TTL age out the rest.
	s.cache.InvalidateTallies(ctx, participant.MeetingID, nil, nil)
	return nil
}

// IsHost reports whether userID created the meeting.
func (s *AccessService) IsHost(ctx context.Context, meetingID, userID uuid.UUID) (bool, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return false, err
	}
	if meeting == nil {
		return false, domain.ErrMeetingNotFound
	}
	return meeting.IsHost(userID), nil
}
