package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteOutcome tags whether a cast created a new vote row or overwrote an
// existing one. "Vote again" always means "change your vote": the unique
// (participant, candidate) constraint is absorbed as an update, never
// surfaced as a conflict.
type VoteOutcome string

const (
	VoteInserted VoteOutcome = "inserted"
	VoteUpdated  VoteOutcome = "updated"
)

// TimeVote is one participant's answer for one time candidate. At most one
// row exists per (participant, candidate) pair.
type TimeVote struct {
	ID              uuid.UUID `json:"id"`
	ParticipantID   uuid.UUID `json:"participant_id"`
	TimeCandidateID uuid.UUID `json:"time_candidate_id"`
	TimeLabel       string    `json:"time_label"`
	IsAvailable     bool      `json:"is_available"`
	Memo            string    `json:"memo,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PlaceVote is one participant's answer for one place candidate. At most one
// row exists per (participant, candidate) pair.
type PlaceVote struct {
	ID               uuid.UUID `json:"id"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	PlaceCandidateID string    `json:"place_candidate_id"`
	IsAvailable      bool      `json:"is_available"`
	Memo             string    `json:"memo,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CastTimeVoteRequest submits or changes a time vote. Anonymous callers
// re-present their provider key and the share code; session callers are
// recognized from their bearer token.
type CastTimeVoteRequest struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	TimeLabel   string    `json:"time_label"`
	IsAvailable bool      `json:"is_available"`
	Memo        string    `json:"memo,omitempty"`
	OAuthKey    string    `json:"oauth_key,omitempty"`
	ShareCode   string    `json:"share_code,omitempty"`
}

// CastPlaceVoteRequest submits or changes a place vote.
type CastPlaceVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	IsAvailable bool   `json:"is_available"`
	Memo        string `json:"memo,omitempty"`
	OAuthKey    string `json:"oauth_key,omitempty"`
	ShareCode   string `json:"share_code,omitempty"`
}

// TimeVoteResult is returned after a time vote write: the stored row, the
// insert/update outcome, and the tally refreshed in the same transaction.
type TimeVoteResult struct {
	Vote    TimeVote    `json:"vote"`
	Outcome VoteOutcome `json:"outcome"`
	Tally   TimeTally   `json:"tally"`
}

// PlaceVoteResult is the place-vote counterpart of TimeVoteResult.
type PlaceVoteResult struct {
	Vote    PlaceVote   `json:"vote"`
	Outcome VoteOutcome `json:"outcome"`
	Tally   PlaceTally  `json:"tally"`
}
