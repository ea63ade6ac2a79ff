package repository

import (
	"context"
	"fmt"
	"sort"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// voteRepository is the vote ledger and tally engine. Tallies are derived,
// never hand-edited: the only path to a new aggregate is replaying the vote
// rows for the candidate, and every ledger write runs that replay inside the
// same transaction under a row lock on the candidate. Votes for different
// candidates proceed independently.
type voteRepository struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) VoteRepository {
	return &voteRepository{db: db}
}

// CastTimeVote upserts the unique (participant, candidate) vote row and
// refreshes the candidate's tally. A repeated submission overwrites the
// prior vote; the unique constraint is never surfaced to the caller.
func (r *voteRepository) CastTimeVote(ctx context.Context, vote *domain.TimeVote) (*domain.TimeVoteResult, error) {
	var result domain.TimeVoteResult

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// Lock the candidate row first. This is the per-candidate critical
		// section: concurrent casts for the same candidate serialize here.
		var candidateMeeting uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT meeting_id FROM time_candidates WHERE id = $1 FOR UPDATE`,
			vote.TimeCandidateID).Scan(&candidateMeeting)
		if err == pgx.ErrNoRows {
			return domain.ErrCandidateNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock time candidate: %w", err)
		}

		// Cross-meeting references are invalid.
		var participantMeeting uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT meeting_id FROM participants WHERE id = $1`,
			vote.ParticipantID).Scan(&participantMeeting)
		if err == pgx.ErrNoRows {
			return domain.ErrParticipantNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get participant: %w", err)
		}
		if participantMeeting != candidateMeeting {
			return domain.ErrParticipantNotFound
		}

		query := `
			INSERT INTO time_votes (id, participant_id, time_candidate_id, time_label, is_available, memo)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (participant_id, time_candidate_id)
			DO UPDATE SET time_label = EXCLUDED.time_label,
			              is_available = EXCLUDED.is_available,
			              memo = EXCLUDED.memo,
			              updated_at = now()
			RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
		`

		// Fresh id for the insert arm; RETURNING hands back the stored id
		// when the row already existed.
		vote.ID = uuid.New()
		var inserted bool
		err = tx.QueryRow(ctx, query,
			vote.ID,
			vote.ParticipantID,
			vote.TimeCandidateID,
			vote.TimeLabel,
			vote.IsAvailable,
			vote.Memo,
		).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt, &inserted)
		if err != nil {
			return fmt.Errorf("failed to upsert time vote: %w", err)
		}

		tally, err := refreshTimeTally(ctx, tx, vote.TimeCandidateID)
		if err != nil {
			return err
		}

		result.Vote = *vote
		result.Outcome = domain.VoteUpdated
		if inserted {
			result.Outcome = domain.VoteInserted
		}
		result.Tally = *tally
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTimeVote returns a single ledger row by id
func (r *voteRepository) GetTimeVote(ctx context.Context, voteID uuid.UUID) (*domain.TimeVote, error) {
	var v domain.TimeVote
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, participant_id, time_candidate_id, time_label, is_available, memo, created_at, updated_at
		FROM time_votes
		WHERE id = $1
	`, voteID).Scan(&v.ID, &v.ParticipantID, &v.TimeCandidateID, &v.TimeLabel,
		&v.IsAvailable, &v.Memo, &v.CreatedAt, &v.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time vote: %w", err)
	}
	return &v, nil
}

// RemoveTimeVote deletes a vote and refreshes the tally in one transaction
func (r *voteRepository) RemoveTimeVote(ctx context.Context, voteID uuid.UUID) (*domain.TimeTally, error) {
	var tally *domain.TimeTally
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var candidateID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT time_candidate_id FROM time_votes WHERE id = $1`, voteID).Scan(&candidateID)
		if err == pgx.ErrNoRows {
			return domain.ErrVoteNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get time vote: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM time_votes WHERE id = $1`, voteID); err != nil {
			return fmt.Errorf("failed to delete time vote: %w", err)
		}

		tally, err = refreshTimeTally(ctx, tx, candidateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

// GetTimeTally returns the cached aggregate for a time candidate. The cache
// is recomputed transactionally on every ledger write, so a read after an
// acknowledged vote reflects that vote.
func (r *voteRepository) GetTimeTally(ctx context.Context, candidateID uuid.UUID) (*domain.TimeTally, error) {
	var labels map[string]int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT labels FROM time_candidates WHERE id = $1`, candidateID).Scan(&labels)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time tally: %w", err)
	}

	return &domain.TimeTally{
		CandidateID: candidateID,
		Entries:     sortedEntries(labels),
	}, nil
}

// ListTimeVotes returns the ledger rows for a candidate
func (r *voteRepository) ListTimeVotes(ctx context.Context, candidateID uuid.UUID) ([]domain.TimeVote, error) {
	query := `
		SELECT id, participant_id, time_candidate_id, time_label, is_available, memo, created_at, updated_at
		FROM time_votes
		WHERE time_candidate_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.TimeVote
	for rows.Next() {
		var v domain.TimeVote
		err := rows.Scan(&v.ID, &v.ParticipantID, &v.TimeCandidateID, &v.TimeLabel,
			&v.IsAvailable, &v.Memo, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, nil
}

// CastPlaceVote is the place-candidate counterpart of CastTimeVote
func (r *voteRepository) CastPlaceVote(ctx context.Context, vote *domain.PlaceVote) (*domain.PlaceVoteResult, error) {
	var result domain.PlaceVoteResult

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var candidateMeeting uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT meeting_id FROM place_candidates WHERE id = $1 FOR UPDATE`,
			vote.PlaceCandidateID).Scan(&candidateMeeting)
		if err == pgx.ErrNoRows {
			return domain.ErrCandidateNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock place candidate: %w", err)
		}

		var participantMeeting uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT meeting_id FROM participants WHERE id = $1`,
			vote.ParticipantID).Scan(&participantMeeting)
		if err == pgx.ErrNoRows {
			return domain.ErrParticipantNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get participant: %w", err)
		}
		if participantMeeting != candidateMeeting {
			return domain.ErrParticipantNotFound
		}

		query := `
			INSERT INTO place_votes (id, participant_id, place_candidate_id, is_available, memo)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (participant_id, place_candidate_id)
			DO UPDATE SET is_available = EXCLUDED.is_available,
			              memo = EXCLUDED.memo,
			              updated_at = now()
			RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
		`

		vote.ID = uuid.New()
		var inserted bool
		err = tx.QueryRow(ctx, query,
			vote.ID,
			vote.ParticipantID,
			vote.PlaceCandidateID,
			vote.IsAvailable,
			vote.Memo,
		).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt, &inserted)
		if err != nil {
			return fmt.Errorf("failed to upsert place vote: %w", err)
		}

		tally, err := refreshPlaceTally(ctx, tx, vote.PlaceCandidateID)
		if err != nil {
			return err
		}

		result.Vote = *vote
		result.Outcome = domain.VoteUpdated
		if inserted {
			result.Outcome = domain.VoteInserted
		}
		result.Tally = *tally
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPlaceVote returns a single place ledger row by id
func (r *voteRepository) GetPlaceVote(ctx context.Context, voteID uuid.UUID) (*domain.PlaceVote, error) {
	var v domain.PlaceVote
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, participant_id, place_candidate_id, is_available, memo, created_at, updated_at
		FROM place_votes
		WHERE id = $1
	`, voteID).Scan(&v.ID, &v.ParticipantID, &v.PlaceCandidateID,
		&v.IsAvailable, &v.Memo, &v.CreatedAt, &v.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place vote: %w", err)
	}
	return &v, nil
}

// RemovePlaceVote deletes a place vote and refreshes the tally
func (r *voteRepository) RemovePlaceVote(ctx context.Context, voteID uuid.UUID) (*domain.PlaceTally, error) {
	var tally *domain.PlaceTally
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var candidateID string
		err := tx.QueryRow(ctx,
			`SELECT place_candidate_id FROM place_votes WHERE id = $1`, voteID).Scan(&candidateID)
		if err == pgx.ErrNoRows {
			return domain.ErrVoteNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get place vote: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM place_votes WHERE id = $1`, voteID); err != nil {
			return fmt.Errorf("failed to delete place vote: %w", err)
		}

		tally, err = refreshPlaceTally(ctx, tx, candidateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

// GetPlaceTally returns the cached aggregate for a place candidate
func (r *voteRepository) GetPlaceTally(ctx context.Context, candidateID string) (*domain.PlaceTally, error) {
	var tally domain.PlaceTally
	tally.CandidateID = candidateID
	err := r.db.Pool.QueryRow(ctx,
		`SELECT available_count, unavailable_count FROM place_candidates WHERE id = $1`,
		candidateID).Scan(&tally.Available, &tally.Unavailable)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place tally: %w", err)
	}
	return &tally, nil
}

// MeetingTimeTallies returns all time-candidate tallies for a meeting,
// ordered descending by best count with ties broken by earliest-created
// candidate, so callers can implement selection deterministically.
func (r *voteRepository) MeetingTimeTallies(ctx context.Context, meetingID uuid.UUID) ([]domain.CandidateTally, error) {
	return meetingTimeTallies(ctx, r.db.Pool, meetingID)
}

// MeetingPlaceTallies returns all place-candidate tallies for a meeting
func (r *voteRepository) MeetingPlaceTallies(ctx context.Context, meetingID uuid.UUID) ([]domain.PlaceTally, error) {
	return meetingPlaceTallies(ctx, r.db.Pool, meetingID)
}

// refreshTimeTally is the single choke point for time-tally updates: it
// locks the candidate, replays the ledger, and writes the recomputed
// aggregate back to the candidate row. Label keys defined on the candidate
// survive with a zero count when no available votes remain, so a flipped
// vote decrements instead of leaving a stale increment.
func refreshTimeTally(ctx context.Context, q querier, candidateID uuid.UUID) (*domain.TimeTally, error) {
	var labels map[string]int
	err := q.QueryRow(ctx,
		`SELECT labels FROM time_candidates WHERE id = $1 FOR UPDATE`, candidateID).Scan(&labels)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock time candidate: %w", err)
	}

	counts := make(map[string]int, len(labels))
	for label := range labels {
		counts[label] = 0
	}

	rows, err := q.Query(ctx, `
		SELECT time_label, COUNT(*) FILTER (WHERE is_available)
		FROM time_votes
		WHERE time_candidate_id = $1
		GROUP BY time_label
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay time votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[label] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to replay time votes: %w", err)
	}

	if _, err := q.Exec(ctx,
		`UPDATE time_candidates SET labels = $2, updated_at = now() WHERE id = $1`,
		candidateID, counts); err != nil {
		return nil, fmt.Errorf("failed to store time tally: %w", err)
	}

	return &domain.TimeTally{
		CandidateID: candidateID,
		Entries:     sortedEntries(counts),
	}, nil
}

// refreshPlaceTally replays the place-vote ledger for one candidate and
// writes the recomputed counts back to the candidate row.
func refreshPlaceTally(ctx context.Context, q querier, candidateID string) (*domain.PlaceTally, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT true FROM place_candidates WHERE id = $1 FOR UPDATE`, candidateID).Scan(&exists)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock place candidate: %w", err)
	}

	tally := domain.PlaceTally{CandidateID: candidateID}
	err = q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_available),
		       COUNT(*) FILTER (WHERE NOT is_available)
		FROM place_votes
		WHERE place_candidate_id = $1
	`, candidateID).Scan(&tally.Available, &tally.Unavailable)
	if err != nil {
		return nil, fmt.Errorf("failed to replay place votes: %w", err)
	}

	if _, err := q.Exec(ctx, `
		UPDATE place_candidates
		SET available_count = $2, unavailable_count = $3, updated_at = now()
		WHERE id = $1
	`, candidateID, tally.Available, tally.Unavailable); err != nil {
		return nil, fmt.Errorf("failed to store place tally: %w", err)
	}

	return &tally, nil
}

func meetingTimeTallies(ctx context.Context, q querier, meetingID uuid.UUID) ([]domain.CandidateTally, error) {
	rows, err := q.Query(ctx,
		`SELECT id, labels, created_at FROM time_candidates WHERE meeting_id = $1 ORDER BY created_at`,
		meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time tallies: %w", err)
	}
	defer rows.Close()

	var tallies []domain.CandidateTally
	for rows.Next() {
		var t domain.CandidateTally
		var labels map[string]int
		if err := rows.Scan(&t.CandidateID, &labels, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time tally: %w", err)
		}
		t.Entries = sortedEntries(labels)
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list time tallies: %w", err)
	}

	// Best count descending; creation order (already ascending from the
	// query) breaks ties.
	sort.SliceStable(tallies, func(i, j int) bool {
		return bestCount(tallies[i]) > bestCount(tallies[j])
	})
	return tallies, nil
}

func meetingPlaceTallies(ctx context.Context, q querier, meetingID uuid.UUID) ([]domain.PlaceTally, error) {
	rows, err := q.Query(ctx, `
		SELECT id, available_count, unavailable_count
		FROM place_candidates
		WHERE meeting_id = $1
		ORDER BY created_at
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list place tallies: %w", err)
	}
	defer rows.Close()

	var tallies []domain.PlaceTally
	for rows.Next() {
		var t domain.PlaceTally
		if err := rows.Scan(&t.CandidateID, &t.Available, &t.Unavailable); err != nil {
			return nil, fmt.Errorf("failed to scan place tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// sortedEntries orders a label->count map by count descending, label
// ascending for equal counts.
func sortedEntries(counts map[string]int) []domain.TallyEntry {
	entries := make([]domain.TallyEntry, 0, len(counts))
	for label, n := range counts {
		entries = append(entries, domain.TallyEntry{Label: label, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}

func bestCount(t domain.CandidateTally) int {
	if len(t.Entries) == 0 {
		return 0
	}
	return t.Entries[0].Count
}
