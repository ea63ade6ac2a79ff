package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS place_votes CASCADE`,
		`DROP TABLE IF EXISTS time_votes CASCADE`,
		`DROP TABLE IF EXISTS place_candidates CASCADE`,
		`DROP TABLE IF EXISTS time_candidates CASCADE`,
		`DROP TABLE IF EXISTS participants CASCADE`,
		`DROP TABLE IF EXISTS places CASCADE`,
		`DROP TABLE IF EXISTS meetings CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			profile_image_url TEXT NOT NULL DEFAULT '',
			oauth_provider TEXT NOT NULL,
			oauth_id TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (oauth_provider, oauth_id)
		)`,

		`CREATE TABLE IF NOT EXISTS meetings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			creator_id UUID NOT NULL REFERENCES users(id),
			purpose JSONB NOT NULL DEFAULT '[]'::jsonb,
			is_one_place BOOLEAN NOT NULL DEFAULT FALSE,
			location_choice_type TEXT NOT NULL DEFAULT '',
			location_choice_value TEXT NOT NULL DEFAULT '',
			preference_place JSONB NOT NULL DEFAULT '{}'::jsonb,
			deadline TIMESTAMPTZ,
			expected_participant_count INTEGER NOT NULL DEFAULT 4,
			share_code TEXT NOT NULL,
			confirmed_time TEXT NOT NULL DEFAULT '',
			confirmed_location TEXT NOT NULL DEFAULT '',
			confirmed_at TIMESTAMPTZ,
			confirm_snapshot JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_meetings_share_code
			ON meetings(share_code) WHERE deleted_at IS NULL`,

		`CREATE INDEX IF NOT EXISTS idx_meetings_creator ON meetings(creator_id)`,

		`CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			meeting_id UUID NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			oauth_key TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			is_invited BOOLEAN NOT NULL DEFAULT FALSE,
			has_responded BOOLEAN NOT NULL DEFAULT FALSE,
			preference_place JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		// One participant row per identity per meeting, for each join path.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_meeting_user
			ON participants(meeting_id, user_id) WHERE user_id IS NOT NULL`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_meeting_oauth_key
			ON participants(meeting_id, oauth_key) WHERE oauth_key <> ''`,

		`CREATE TABLE IF NOT EXISTS time_candidates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			meeting_id UUID NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
			labels JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_time_candidates_meeting ON time_candidates(meeting_id)`,

		`CREATE TABLE IF NOT EXISTS time_votes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
			time_candidate_id UUID NOT NULL REFERENCES time_candidates(id) ON DELETE CASCADE,
			time_label TEXT NOT NULL,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			memo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (participant_id, time_candidate_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_time_votes_candidate ON time_votes(time_candidate_id)`,

		// Place candidates keep the external place id as their primary key,
		// so a venue proposed anywhere lives as exactly one row and a second
		// proposal for it is a conflict.
		`CREATE TABLE IF NOT EXISTS place_candidates (
			id TEXT NOT NULL,
			meeting_id UUID NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
			preference_subway JSONB NOT NULL DEFAULT '[]'::jsonb,
			preference_area JSONB NOT NULL DEFAULT '[]'::jsonb,
			food JSONB NOT NULL DEFAULT '{}'::jsonb,
			condition JSONB NOT NULL DEFAULT '{}'::jsonb,
			location_type TEXT NOT NULL DEFAULT '',
			recommendation JSONB NOT NULL DEFAULT '{}'::jsonb,
			available_count INTEGER NOT NULL DEFAULT 0,
			unavailable_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_place_candidates_meeting ON place_candidates(meeting_id)`,

		`CREATE TABLE IF NOT EXISTS place_votes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
			place_candidate_id TEXT NOT NULL REFERENCES place_candidates(id) ON DELETE CASCADE,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			memo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (participant_id, place_candidate_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_place_votes_candidate ON place_votes(place_candidate_id)`,

		`CREATE TABLE IF NOT EXISTS places (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			place_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO users (id, email, nickname, oauth_provider, oauth_id)
		 VALUES ('00000000-0000-0000-0000-000000000001', 'host@example.com', '모임장', 'google', 'seed-host')
		 ON CONFLICT (oauth_provider, oauth_id) DO NOTHING`,

		`INSERT INTO meetings (id, name, creator_id, purpose, share_code, expected_participant_count)
		 VALUES ('00000000-0000-0000-0000-000000000010', '핼러윈 모임', '00000000-0000-0000-0000-000000000001',
		         '["저녁 식사"]'::jsonb, 'SEEDC0DE', 4)
		 ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO participants (meeting_id, user_id)
		 VALUES ('00000000-0000-0000-0000-000000000010', '00000000-0000-0000-0000-000000000001')
		 ON CONFLICT (meeting_id, user_id) WHERE user_id IS NOT NULL DO NOTHING`,

		`INSERT INTO time_candidates (id, meeting_id, labels)
		 VALUES ('00000000-0000-0000-0000-000000000020', '00000000-0000-0000-0000-000000000010',
		         '{"25.11.11.09:00": 0, "25.11.11.14:00": 0}'::jsonb)
		 ON CONFLICT (id) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}
	return nil
}
