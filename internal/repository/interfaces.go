package repository

import (
	"context"

	"moim-be/internal/domain"

	"github.com/google/uuid"
)

// MeetingRepository defines the interface for meeting data operations
type MeetingRepository interface {
	// Create inserts a new meeting
	Create(ctx context.Context, meeting *domain.Meeting) error

	// GetByID retrieves a meeting by ID. Soft-deleted meetings are treated
	// as absent and return (nil, nil).
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)

	// GetByShareCode retrieves a live meeting by its share code
	// (case-sensitive exact match)
	GetByShareCode(ctx context.Context, code string) (*domain.Meeting, error)

	// Update persists host edits to a meeting
	Update(ctx context.Context, meeting *domain.Meeting) error

	// SoftDelete marks a meeting deleted; reports whether a row changed
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// Confirm performs the terminal Open -> Confirmed transition: it
	// snapshots the current tallies and sets the confirmation fields in one
	// transaction. Returns domain.ErrMeetingNotFound or
	// domain.ErrAlreadyConfirmed when the transition is not possible.
	Confirm(ctx context.Context, id uuid.UUID, chosenTime, chosenLocation string) (*domain.Meeting, error)

	// SummariesByUser lists unconfirmed meetings the user hosts or joined,
	// with participant response stats
	SummariesByUser(ctx context.Context, userID uuid.UUID) ([]domain.MeetingSummary, error)
}

// ParticipantRepository defines the interface for participant data operations
type ParticipantRepository interface {
	// GetByID retrieves a participant by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)

	// ListByMeeting lists all participants of a meeting
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Participant, error)

	// JoinByUser finds or creates the participant row bound to an
	// authenticated user for a meeting. The bool reports creation.
	JoinByUser(ctx context.Context, meetingID, userID uuid.UUID, nickname string) (*domain.Participant, bool, error)

	// JoinByOAuthKey finds or creates the participant row for an anonymous
	// provider key. Idempotent per (meeting, key).
	JoinByOAuthKey(ctx context.Context, meetingID uuid.UUID, oauthKey, nickname string) (*domain.Participant, bool, error)

	// Update applies response-flag and preference updates
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdateParticipantRequest) (*domain.Participant, error)

	// Delete removes a participant; votes cascade
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CandidateRepository defines the interface for candidate data operations
type CandidateRepository interface {
	CreateTimeCandidate(ctx context.Context, candidate *domain.TimeCandidate) error
	GetTimeCandidate(ctx context.Context, id uuid.UUID) (*domain.TimeCandidate, error)
	ListTimeCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.TimeCandidate, error)

	// DeleteTimeCandidate removes a candidate and its votes in one
	// transaction; reports whether a row changed
	DeleteTimeCandidate(ctx context.Context, id uuid.UUID) (bool, error)

	// CreatePlaceCandidate inserts a place candidate; a duplicate external
	// id for the meeting returns domain.ErrDuplicatePlaceCandidate
	CreatePlaceCandidate(ctx context.Context, candidate *domain.PlaceCandidate) error
	GetPlaceCandidate(ctx context.Context, id string) (*domain.PlaceCandidate, error)
	ListPlaceCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.PlaceCandidate, error)
	DeletePlaceCandidate(ctx context.Context, id string) (bool, error)
}

// VoteRepository defines the interface for the vote ledger and tally engine.
// Every write recomputes the affected candidate's tally from the ledger rows
// inside the same transaction, under a row lock on the candidate.
type VoteRepository interface {
	// CastTimeVote upserts the unique (participant, candidate) vote row and
	// refreshes the candidate tally. Duplicate submissions overwrite.
	CastTimeVote(ctx context.Context, vote *domain.TimeVote) (*domain.TimeVoteResult, error)

	// GetTimeVote returns a single ledger row by id
	GetTimeVote(ctx context.Context, voteID uuid.UUID) (*domain.TimeVote, error)

	// RemoveTimeVote deletes a vote and returns the refreshed tally
	RemoveTimeVote(ctx context.Context, voteID uuid.UUID) (*domain.TimeTally, error)

	// GetTimeTally returns the current aggregate for a time candidate,
	// entries ordered by count descending
	GetTimeTally(ctx context.Context, candidateID uuid.UUID) (*domain.TimeTally, error)

	// ListTimeVotes returns the ledger rows for a candidate
	ListTimeVotes(ctx context.Context, candidateID uuid.UUID) ([]domain.TimeVote, error)

	// CastPlaceVote is the place-candidate counterpart of CastTimeVote
	CastPlaceVote(ctx context.Context, vote *domain.PlaceVote) (*domain.PlaceVoteResult, error)

	// GetPlaceVote returns a single place ledger row by id
	GetPlaceVote(ctx context.Context, voteID uuid.UUID) (*domain.PlaceVote, error)

	// RemovePlaceVote deletes a place vote and returns the refreshed tally
	RemovePlaceVote(ctx context.Context, voteID uuid.UUID) (*domain.PlaceTally, error)

	// GetPlaceTally returns the available/unavailable counts for a place
	// candidate
	GetPlaceTally(ctx context.Context, candidateID string) (*domain.PlaceTally, error)

	// MeetingTimeTallies returns all time-candidate tallies for a meeting,
	// ordered descending by best count, ties broken by earliest-created
	// candidate
	MeetingTimeTallies(ctx context.Context, meetingID uuid.UUID) ([]domain.CandidateTally, error)

	// MeetingPlaceTallies returns all place-candidate tallies for a meeting
	MeetingPlaceTallies(ctx context.Context, meetingID uuid.UUID) ([]domain.PlaceTally, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpsertByOAuth finds or creates a user by (provider, oauth id) and
	// refreshes profile fields
	UpsertByOAuth(ctx context.Context, user *domain.User) error
}

// PlaceRepository defines the interface for the confirmed-venue cache
type PlaceRepository interface {
	Upsert(ctx context.Context, place *domain.Place) error
	GetByID(ctx context.Context, id string) (*domain.Place, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Meeting     MeetingRepository
	Participant ParticipantRepository
	Candidate   CandidateRepository
	Vote        VoteRepository
	User        UserRepository
	Place       PlaceRepository
}
