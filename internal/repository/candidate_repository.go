package repository

import (
	"context"
	"fmt"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type candidateRepository struct {
	db *database.PostgresDB
}

func NewCandidateRepository(db *database.PostgresDB) CandidateRepository {
	return &candidateRepository{db: db}
}

// CreateTimeCandidate inserts a time candidate with its initial label map
func (r *candidateRepository) CreateTimeCandidate(ctx context.Context, candidate *domain.TimeCandidate) error {
	query := `
		INSERT INTO time_candidates (id, meeting_id, labels)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		candidate.ID,
		candidate.MeetingID,
		candidate.Labels,
	).Scan(&candidate.CreatedAt, &candidate.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create time candidate: %w", err)
	}
	return nil
}

// GetTimeCandidate retrieves a time candidate by ID
func (r *candidateRepository) GetTimeCandidate(ctx context.Context, id uuid.UUID) (*domain.TimeCandidate, error) {
	var c domain.TimeCandidate
	query := `SELECT id, meeting_id, labels, created_at, updated_at FROM time_candidates WHERE id = $1`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.MeetingID, &c.Labels, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time candidate: %w", err)
	}
	return &c, nil
}

// ListTimeCandidates lists a meeting's time candidates in creation order
func (r *candidateRepository) ListTimeCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.TimeCandidate, error) {
	query := `
		SELECT id, meeting_id, labels, created_at, updated_at
		FROM time_candidates
		WHERE meeting_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.TimeCandidate
	for rows.Next() {
		var c domain.TimeCandidate
		if err := rows.Scan(&c.ID, &c.MeetingID, &c.Labels, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// DeleteTimeCandidate removes a candidate and its votes as one unit. The
// foreign key cascades the votes inside the same statement, so a partial
// cascade is never observable.
func (r *candidateRepository) DeleteTimeCandidate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM time_candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete time candidate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreatePlaceCandidate inserts a place candidate. The external place id is
// the natural key: a duplicate for the meeting is a conflict, not an upsert.
func (r *candidateRepository) CreatePlaceCandidate(ctx context.Context, candidate *domain.PlaceCandidate) error {
	query := `
		INSERT INTO place_candidates (
			id, meeting_id, preference_subway, preference_area, food,
			condition, location_type, recommendation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		candidate.ID,
		candidate.MeetingID,
		candidate.PreferenceSubway,
		candidate.PreferenceArea,
		candidate.Food,
		candidate.Condition,
		candidate.LocationType,
		candidate.Recommendation,
	).Scan(&candidate.CreatedAt, &candidate.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePlaceCandidate
		}
		return fmt.Errorf("failed to create place candidate: %w", err)
	}
	return nil
}

const placeCandidateColumns = `
	id, meeting_id, preference_subway, preference_area, food, condition,
	location_type, recommendation, available_count, unavailable_count,
	created_at, updated_at
`

func scanPlaceCandidate(row pgx.Row) (*domain.PlaceCandidate, error) {
	var c domain.PlaceCandidate
	err := row.Scan(
		&c.ID,
		&c.MeetingID,
		&c.PreferenceSubway,
		&c.PreferenceArea,
		&c.Food,
		&c.Condition,
		&c.LocationType,
		&c.Recommendation,
		&c.AvailableCount,
		&c.UnavailableCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetPlaceCandidate retrieves a place candidate by its external id
func (r *candidateRepository) GetPlaceCandidate(ctx context.Context, id string) (*domain.PlaceCandidate, error) {
	query := `SELECT ` + placeCandidateColumns + ` FROM place_candidates WHERE id = $1`

	candidate, err := scanPlaceCandidate(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place candidate: %w", err)
	}
	return candidate, nil
}

// ListPlaceCandidates lists a meeting's place candidates in creation order
func (r *candidateRepository) ListPlaceCandidates(ctx context.Context, meetingID uuid.UUID) ([]domain.PlaceCandidate, error) {
	query := `SELECT ` + placeCandidateColumns + ` FROM place_candidates WHERE meeting_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list place candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.PlaceCandidate
	for rows.Next() {
		c, err := scanPlaceCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// DeletePlaceCandidate removes a place candidate and its votes as one unit
func (r *candidateRepository) DeletePlaceCandidate(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM place_candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete place candidate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
