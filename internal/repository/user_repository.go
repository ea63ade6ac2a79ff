package repository

import (
	"context"
	"fmt"

	"moim-be/internal/domain"
	"moim-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	query := `
		SELECT id, email, nickname, profile_image_url, oauth_provider, oauth_id,
		       is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Nickname,
		&u.ProfileImageURL,
		&u.OAuthProvider,
		&u.OAuthID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpsertByOAuth finds or creates a user by (provider, oauth id) and refreshes
// the profile fields from the provider's latest claims.
func (r *userRepository) UpsertByOAuth(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, nickname, profile_image_url, oauth_provider, oauth_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (oauth_provider, oauth_id)
		DO UPDATE SET email = EXCLUDED.email,
		              nickname = EXCLUDED.nickname,
		              profile_image_url = EXCLUDED.profile_image_url,
		              updated_at = now()
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Nickname,
		user.ProfileImageURL,
		user.OAuthProvider,
		user.OAuthID,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
