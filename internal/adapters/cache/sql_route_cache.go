package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/db"

	"github.com/jackc/pgx/v5"
)

// SQLRouteCache is a Postgres-backed cache for origin->destination route geometries.
// Entries older than ttl are treated as misses; a zero ttl never expires.
type SQLRouteCache struct {
	DB  db.Querier
	ttl time.Duration
	now func() time.Time
}

func NewSQLRouteCache(q db.Querier, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: q, ttl: ttl, now: time.Now}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (domain.Route, bool, error) {
	if s.DB == nil {
		return domain.Route{}, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT coordinates, fetched_at
	FROM route_cache
	WHERE key = $1;
	`

	var raw []byte
	var fetchedAt time.Time
	err := s.DB.QueryRow(ctx, q, key).Scan(&raw, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Route{}, false, nil
	}
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(fetchedAt) > s.ttl {
		return domain.Route{}, false, nil
	}

	var coords []domain.Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return domain.Route{}, false, fmt.Errorf("get route cache: decode coordinates: %w", err)
	}
	return domain.Route{Coordinates: coords}, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, route domain.Route) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	coords := route.Coordinates
	if coords == nil {
		coords = []domain.Coordinates{}
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("insert route cache: encode coordinates: %w", err)
	}

	q := `
	INSERT INTO route_cache (key, coordinates, fetched_at)
	VALUES ($1, $2::jsonb, $3)
	ON CONFLICT (key) DO UPDATE
	SET coordinates = EXCLUDED.coordinates,
		fetched_at = EXCLUDED.fetched_at;
	`
	if _, err := s.DB.Exec(ctx, q, key, string(raw), s.now().UTC()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
