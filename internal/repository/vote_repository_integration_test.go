//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim-be/internal/domain"
	"moim-be/pkg/database"
)

// These tests run against a real database prepared with
// `go run ./cmd/migrate up`:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository
func integrationDB(t *testing.T) *database.PostgresDB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.NewPostgresDB(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// seedVotingMeeting inserts a host, a meeting, one time candidate and two
// anonymous participants, and tears everything down again after the test.
func seedVotingMeeting(t *testing.T, db *database.PostgresDB, label string) (candidateID uuid.UUID, participants [2]uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	hostID := uuid.New()
	meetingID := uuid.New()
	candidateID = uuid.New()

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, oauth_provider, oauth_id) VALUES ($1, 'google', $2)`,
		hostID, "it-"+hostID.String())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, meetingID)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, hostID)
	})

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO meetings (id, name, creator_id, share_code) VALUES ($1, $2, $3, $4)`,
		meetingID, "integration meeting", hostID, "IT-"+meetingID.String())
	require.NoError(t, err)

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO time_candidates (id, meeting_id, labels) VALUES ($1, $2, $3)`,
		candidateID, meetingID, map[string]int{label: 0})
	require.NoError(t, err)

	for i := range participants {
		participants[i] = uuid.New()
		_, err = db.Pool.Exec(ctx,
			`INSERT INTO participants (id, meeting_id, oauth_key) VALUES ($1, $2, $3)`,
			participants[i], meetingID, "anon-"+participants[i].String())
		require.NoError(t, err)
	}
	return candidateID, participants
}

func TestIntegrationCastTimeVote_DistinctRowsPerParticipant(t *testing.T) {
	db := integrationDB(t)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	const label = "25.11.11.09:00"
	candidateID, participants := seedVotingMeeting(t, db, label)

	first, err := votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participants[0],
		TimeCandidateID: candidateID,
		TimeLabel:       label,
		IsAvailable:     true,
	})
	require.NoError(t, err)
	second, err := votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participants[1],
		TimeCandidateID: candidateID,
		TimeLabel:       label,
		IsAvailable:     true,
	})
	require.NoError(t, err)

	// Each participant's cast must land as its own row with its own key.
	assert.Equal(t, domain.VoteInserted, first.Outcome)
	assert.Equal(t, domain.VoteInserted, second.Outcome)
	assert.NotEqual(t, uuid.Nil, first.Vote.ID)
	assert.NotEqual(t, uuid.Nil, second.Vote.ID)
	assert.NotEqual(t, first.Vote.ID, second.Vote.ID)

	assert.Equal(t, 2, second.Tally.Counts()[label])

	rows, err := votes.ListTimeVotes(ctx, candidateID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestIntegrationCastTimeVote_UpsertKeepsRowIdentity(t *testing.T) {
	db := integrationDB(t)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	const label = "25.11.11.14:00"
	candidateID, participants := seedVotingMeeting(t, db, label)

	first, err := votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participants[0],
		TimeCandidateID: candidateID,
		TimeLabel:       label,
		IsAvailable:     true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.VoteInserted, first.Outcome)

	second, err := votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participants[0],
		TimeCandidateID: candidateID,
		TimeLabel:       label,
		IsAvailable:     false,
	})
	require.NoError(t, err)

	// The overwrite keeps the original row and its id.
	assert.Equal(t, domain.VoteUpdated, second.Outcome)
	assert.Equal(t, first.Vote.ID, second.Vote.ID)
	assert.Equal(t, 0, second.Tally.Counts()[label])

	rows, err := votes.ListTimeVotes(ctx, candidateID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestIntegrationRemoveTimeVote_RefreshesStoredTally(t *testing.T) {
	db := integrationDB(t)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	const label = "25.11.12.18:00"
	candidateID, participants := seedVotingMeeting(t, db, label)

	result, err := votes.CastTimeVote(ctx, &domain.TimeVote{
		ParticipantID:   participants[0],
		TimeCandidateID: candidateID,
		TimeLabel:       label,
		IsAvailable:     true,
	})
	require.NoError(t, err)

	got, err := votes.GetTimeVote(ctx, result.Vote.ID)
	require.NoError(t, err)
	assert.Equal(t, participants[0], got.ParticipantID)

	tally, err := votes.RemoveTimeVote(ctx, result.Vote.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tally.Counts()[label])

	// The stored aggregate on the candidate row was refreshed too.
	stored, err := votes.GetTimeTally(ctx, candidateID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Counts()[label])

	_, err = votes.GetTimeVote(ctx, result.Vote.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
	_, err = votes.RemoveTimeVote(ctx, result.Vote.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
}
