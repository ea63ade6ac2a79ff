package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type meetingRepository struct {
	db *database.PostgresDB
}

func NewMeetingRepository(db *database.PostgresDB) MeetingRepository {
	return &meetingRepository{db: db}
}

const meetingColumns = `
	id, name, creator_id, purpose, is_one_place, location_choice_type,
	location_choice_value, preference_place, deadline,
	expected_participant_count, share_code, confirmed_time,
	confirmed_location, confirmed_at, created_at, updated_at, deleted_at
`

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.CreatorID,
		&m.Purpose,
		&m.IsOnePlace,
		&m.LocationChoiceType,
		&m.LocationChoiceValue,
		&m.PreferencePlace,
		&m.Deadline,
		&m.ExpectedParticipantCount,
		&m.ShareCode,
		&m.ConfirmedTime,
		&m.ConfirmedLocation,
		&m.ConfirmedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meetings (
			id, name, creator_id, purpose, is_one_place, location_choice_type,
			location_choice_value, preference_place, deadline,
			expected_participant_count, share_code
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		meeting.ID,
		meeting.Name,
		meeting.CreatorID,
		meeting.Purpose,
		meeting.IsOnePlace,
		meeting.LocationChoiceType,
		meeting.LocationChoiceValue,
		meeting.PreferencePlace,
		meeting.Deadline,
		meeting.ExpectedParticipantCount,
		meeting.ShareCode,
	).Scan(&meeting.CreatedAt, &meeting.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// GetByID retrieves a meeting by ID, skipping soft-deleted rows
func (r *meetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 AND deleted_at IS NULL`

	meeting, err := scanMeeting(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

// GetByShareCode retrieves a live meeting by its share code. The match is
// case-sensitive by construction: share_code is a plain text equality.
func (r *meetingRepository) GetByShareCode(ctx context.Context, code string) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE share_code = $1 AND deleted_at IS NULL`

	meeting, err := scanMeeting(r.db.Pool.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting by share code: %w", err)
	}
	return meeting, nil
}

// Update persists host edits. Confirmation fields are not touched here; the
// only path to them is Confirm.
func (r *meetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		UPDATE meetings
		SET name = $2, purpose = $3, is_one_place = $4,
		    location_choice_type = $5, location_choice_value = $6,
		    preference_place = $7, deadline = $8,
		    expected_participant_count = $9, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		meeting.ID,
		meeting.Name,
		meeting.Purpose,
		meeting.IsOnePlace,
		meeting.LocationChoiceType,
		meeting.LocationChoiceValue,
		meeting.PreferencePlace,
		meeting.Deadline,
		meeting.ExpectedParticipantCount,
	).Scan(&meeting.UpdatedAt)

	if err == pgx.ErrNoRows {
		return domain.ErrMeetingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	return nil
}

// SoftDelete marks a meeting cancelled. Participants, candidates and votes
// stay in place; hard relational cascade applies only on hard delete.
func (r *meetingRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE meetings SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete meeting: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Confirm performs the Open -> Confirmed transition. The tally snapshot and
// the confirmation fields are written in one transaction so the recorded
// vote state is exactly what the host saw. The conditional update rejects
// re-confirmation instead of overwriting.
func (r *meetingRepository) Confirm(ctx context.Context, id uuid.UUID, chosenTime, chosenLocation string) (*domain.Meeting, error) {
	var confirmed *domain.Meeting

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		timeTallies, err := meetingTimeTallies(ctx, tx, id)
		if err != nil {
			return err
		}
		placeTallies, err := meetingPlaceTallies(ctx, tx, id)
		if err != nil {
			return err
		}

		snapshot, err := json.Marshal(domain.ConfirmationSnapshot{
			TakenAt:      time.Now().UTC(),
			TimeTallies:  timeTallies,
			PlaceTallies: placeTallies,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal confirmation snapshot: %w", err)
		}

		query := `
			UPDATE meetings
			SET confirmed_time = $2, confirmed_location = $3,
			    confirmed_at = now(), confirm_snapshot = $4, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL AND confirmed_at IS NULL
			RETURNING ` + meetingColumns

		confirmed, err = scanMeeting(tx.QueryRow(ctx, query, id, chosenTime, chosenLocation, snapshot))
		if err == pgx.ErrNoRows {
			// Distinguish a missing meeting from a terminal one.
			var confirmedAt *time.Time
			checkErr := tx.QueryRow(ctx,
				`SELECT confirmed_at FROM meetings WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&confirmedAt)
			if checkErr == pgx.ErrNoRows {
				return domain.ErrMeetingNotFound
			}
			if checkErr != nil {
				return fmt.Errorf("failed to check meeting state: %w", checkErr)
			}
			return domain.ErrAlreadyConfirmed
		}
		if err != nil {
			return fmt.Errorf("failed to confirm meeting: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// SummariesByUser lists the user's unconfirmed meetings (hosted or joined)
// with participant response stats computed in a single grouped query.
func (r *meetingRepository) SummariesByUser(ctx context.Context, userID uuid.UUID) ([]domain.MeetingSummary, error) {
	query := `
		SELECT DISTINCT ON (m.id)
		       m.id, m.name, m.purpose, m.creator_id, m.deadline,
		       m.expected_participant_count, m.creator_id = $1 AS is_host,
		       COALESCE(s.total, 0), COALESCE(s.responded, 0)
		FROM meetings m
		LEFT JOIN participants p ON p.meeting_id = m.id AND p.user_id = $1
		LEFT JOIN (
			SELECT meeting_id,
			       COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE has_responded) AS responded
			FROM participants
			GROUP BY meeting_id
		) s ON s.meeting_id = m.id
		WHERE m.deleted_at IS NULL
		  AND m.confirmed_at IS NULL
		  AND (m.creator_id = $1 OR p.user_id = $1)
		ORDER BY m.id, m.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.MeetingSummary
	for rows.Next() {
		var s domain.MeetingSummary
		var purpose []string
		err := rows.Scan(
			&s.ID,
			&s.Title,
			&purpose,
			&s.CreatorID,
			&s.Deadline,
			&s.ExpectedParticipantCount,
			&s.IsHost,
			&s.ParticipantStats.Total,
			&s.ParticipantStats.Responded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting summary: %w", err)
		}
		if len(purpose) > 0 {
			s.Purpose = purpose[0]
		}
		s.Status = domain.MeetingOpen
		summaries = append(summaries, s)
	}

	return summaries, nil
}
