package repository

import (
	"context"
	"fmt"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type placeRepository struct {
	db *database.PostgresDB
}

func NewPlaceRepository(db *database.PostgresDB) PlaceRepository {
	return &placeRepository{db: db}
}

// Upsert stores or refreshes the denormalized copy of an external venue
func (r *placeRepository) Upsert(ctx context.Context, place *domain.Place) error {
	query := `
		INSERT INTO places (id, name, category, address, latitude, longitude, phone, place_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name,
		              category = EXCLUDED.category,
		              address = EXCLUDED.address,
		              latitude = EXCLUDED.latitude,
		              longitude = EXCLUDED.longitude,
		              phone = EXCLUDED.phone,
		              place_url = EXCLUDED.place_url,
		              updated_at = now()
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		place.ID,
		place.Name,
		place.Category,
		place.Address,
		place.Latitude,
		place.Longitude,
		place.Phone,
		place.PlaceURL,
	).Scan(&place.CreatedAt, &place.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert place: %w", err)
	}
	return nil
}

// GetByID retrieves a cached place by its external id
func (r *placeRepository) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	var p domain.Place
	query := `
		SELECT id, name, category, address, latitude, longitude, phone, place_url,
		       created_at, updated_at
		FROM places
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Address,
		&p.Latitude,
		&p.Longitude,
		&p.Phone,
		&p.PlaceURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return &p, nil
}
