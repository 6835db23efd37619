package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"arrival-route-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func TestSQLRouteCacheGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewSQLRouteCache(mock, 10*time.Minute)
	c.now = func() time.Time { return now }

	mock.ExpectQuery(`SELECT coordinates, fetched_at\s+FROM route_cache`).
		WithArgs("route:hit").
		WillReturnRows(pgxmock.NewRows([]string{"coordinates", "fetched_at"}).
			AddRow([]byte(`[{"lat":1.5,"lon":2.5}]`), now.Add(-time.Minute)))

	route, ok, err := c.Get(context.Background(), "route:hit")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(route.Coordinates) != 1 || route.Coordinates[0] != (domain.Coordinates{Lat: 1.5, Lon: 2.5}) {
		t.Fatalf("unexpected route %+v", route)
	}

	mock.ExpectQuery(`SELECT coordinates, fetched_at\s+FROM route_cache`).
		WithArgs("route:stale").
		WillReturnRows(pgxmock.NewRows([]string{"coordinates", "fetched_at"}).
			AddRow([]byte(`[]`), now.Add(-time.Hour)))

	if _, ok, err := c.Get(context.Background(), "route:stale"); err != nil || ok {
		t.Fatalf("expected stale miss, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(`SELECT coordinates, fetched_at\s+FROM route_cache`).
		WithArgs("route:none").
		WillReturnError(pgx.ErrNoRows)

	if _, ok, err := c.Get(context.Background(), "route:none"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(`SELECT coordinates, fetched_at\s+FROM route_cache`).
		WithArgs("route:err").
		WillReturnError(errors.New("boom"))

	if _, _, err := c.Get(context.Background(), "route:err"); err == nil {
		t.Fatalf("expected query error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLRouteCachePut(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewSQLRouteCache(mock, 0)
	c.now = func() time.Time { return now }

	mock.ExpectExec(`INSERT INTO route_cache`).
		WithArgs("route:a", `[{"lat":1,"lon":2}]`, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	route := domain.Route{Coordinates: []domain.Coordinates{{Lat: 1, Lon: 2}}}
	if err := c.Put(context.Background(), "route:a", route); err != nil {
		t.Fatalf("put: %v", err)
	}

	mock.ExpectExec(`INSERT INTO route_cache`).
		WithArgs("route:b", `[]`, now).
		WillReturnError(errors.New("down"))

	if err := c.Put(context.Background(), "route:b", domain.Route{}); err == nil {
		t.Fatalf("expected exec error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLRouteCacheNilDB(t *testing.T) {
	c := NewSQLRouteCache(nil, 0)
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error")
	}
	if err := c.Put(context.Background(), "k", domain.Route{}); err == nil {
		t.Fatalf("expected error")
	}
}
