package repository

import (
	"context"
	"fmt"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type participantRepository struct {
	db *database.PostgresDB
}

func NewParticipantRepository(db *database.PostgresDB) ParticipantRepository {
	return &participantRepository{db: db}
}

const participantColumns = `
	id, meeting_id, user_id, oauth_key, nickname, is_invited, has_responded,
	preference_place, created_at, updated_at
`

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(
		&p.ID,
		&p.MeetingID,
		&p.UserID,
		&p.OAuthKey,
		&p.Nickname,
		&p.IsInvited,
		&p.HasResponded,
		&p.PreferencePlace,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a participant by ID
func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	participant, err := scanParticipant(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participant, nil
}

// ListByMeeting lists all participants of a meeting
func (r *participantRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE meeting_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, nil
}

// JoinByUser finds or creates the participant bound to an authenticated user.
// The partial unique index on (meeting_id, user_id) makes the join
// idempotent: a second join returns the same row, not a duplicate.
func (r *participantRepository) JoinByUser(ctx context.Context, meetingID, userID uuid.UUID, nickname string) (*domain.Participant, bool, error) {
	query := `
		INSERT INTO participants (id, meeting_id, user_id, nickname)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id, user_id) WHERE user_id IS NOT NULL
		DO UPDATE SET updated_at = now()
		RETURNING ` + participantColumns + `, (xmax = 0) AS inserted
	`

	return r.scanJoin(r.db.Pool.QueryRow(ctx, query, uuid.New(), meetingID, userID, nickname))
}

// JoinByOAuthKey finds or creates the participant row for an anonymous
// provider key, keyed on (meeting, provider key).
func (r *participantRepository) JoinByOAuthKey(ctx context.Context, meetingID uuid.UUID, oauthKey, nickname string) (*domain.Participant, bool, error) {
	query := `
		INSERT INTO participants (id, meeting_id, oauth_key, nickname)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id, oauth_key) WHERE oauth_key <> ''
		DO UPDATE SET updated_at = now()
		RETURNING ` + participantColumns + `, (xmax = 0) AS inserted
	`

	return r.scanJoin(r.db.Pool.QueryRow(ctx, query, uuid.New(), meetingID, oauthKey, nickname))
}

func (r *participantRepository) scanJoin(row pgx.Row) (*domain.Participant, bool, error) {
	var p domain.Participant
	var inserted bool
	err := row.Scan(
		&p.ID,
		&p.MeetingID,
		&p.UserID,
		&p.OAuthKey,
		&p.Nickname,
		&p.IsInvited,
		&p.HasResponded,
		&p.PreferencePlace,
		&p.CreatedAt,
		&p.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to join participant: %w", err)
	}
	return &p, inserted, nil
}

// Update applies the only mutations a participant accepts after creation
func (r *participantRepository) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateParticipantRequest) (*domain.Participant, error) {
	query := `
		UPDATE participants
		SET nickname = COALESCE($2, nickname),
		    has_responded = COALESCE($3, has_responded),
		    is_invited = COALESCE($4, is_invited),
		    preference_place = COALESCE($5, preference_place),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + participantColumns

	participant, err := scanParticipant(r.db.Pool.QueryRow(ctx, query,
		id, req.Nickname, req.HasResponded, req.IsInvited, req.PreferencePlace))
	if err == pgx.ErrNoRows {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	return participant, nil
}

// Delete removes a participant. Its votes cascade through the foreign keys,
// so the tallies of every candidate the participant voted on are recomputed
// in the same transaction.
func (r *participantRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		timeCandidates, err := collectIDs[uuid.UUID](ctx, tx,
			`SELECT DISTINCT time_candidate_id FROM time_votes WHERE participant_id = $1`, id)
		if err != nil {
			return err
		}
		placeCandidates, err := collectIDs[string](ctx, tx,
			`SELECT DISTINCT place_candidate_id FROM place_votes WHERE participant_id = $1`, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		deleted = tag.RowsAffected() > 0

		for _, candidateID := range timeCandidates {
			if _, err := refreshTimeTally(ctx, tx, candidateID); err != nil {
				return err
			}
		}
		for _, candidateID := range placeCandidates {
			if _, err := refreshPlaceTally(ctx, tx, candidateID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func collectIDs[T any](ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []T
	for rows.Next() {
		var id T
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
