package repositories

import (
	"context"
	"errors"
	"fmt"

	"arrival-route-service/internal/platform/db"
)

// Initialize the Postgres schema used by the destination repository and the route cache.
func InitSchema(ctx context.Context, q db.Querier) error {
	if q == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		key TEXT PRIMARY KEY,
		coordinates JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_fetched_at
	ON route_cache(fetched_at);
	`

	statements := []string{
		createDestinationsQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the destinations table from a JSON or YAML dataset file.
// Existing rows with the same title are updated in place.
func SeedFromFile(ctx context.Context, q db.Querier, path string) (int, error) {
	if q == nil {
		return 0, errors.New("seed destinations: DB is nil")
	}

	rows, err := LoadDestinations(path)
	if err != nil {
		return 0, fmt.Errorf("seed destinations: %w", err)
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed destinations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
	INSERT INTO destinations (
		title,
		description,
		photo_url,
		lat,
		lon
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (title) DO UPDATE
	SET description = EXCLUDED.description,
		photo_url = EXCLUDED.photo_url,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`

	for _, d := range rows {
		if _, err := tx.Exec(ctx, query, d.Title, d.Description, d.PhotoURL, d.Lat, d.Lon); err != nil {
			return 0, fmt.Errorf("seed destinations: insert title=%q: %w", d.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("seed destinations: commit tx: %w", err)
	}

	return len(rows), nil
}
