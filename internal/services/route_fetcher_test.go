package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"arrival-route-service/internal/adapters/routing"
	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/logging"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type providerFunc func(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error)

func (f providerFunc) Route(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	return f(ctx, origin, destination)
}

func TestRouteFetcherTagsEpoch(t *testing.T) {
	dest := domain.Destination{Title: "Park", Lat: -23.5874, Lon: -46.6576}
	origin := domain.Position{Lat: -23.4974, Lon: -46.6576}

	f := NewRouteFetcher(&routing.MockProvider{StraightLine: true}, time.Second, logging.Discard())
	res := f.Fetch(context.Background(), origin, dest, 7)

	if res.Epoch != 7 || res.Err != nil || res.Route == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Route.Coordinates) != 2 {
		t.Fatalf("expected a 2-point route, got %d", len(res.Route.Coordinates))
	}
	if res.Route.Coordinates[0] != origin.Coordinates() || res.Route.Coordinates[1] != dest.Coordinates() {
		t.Fatalf("expected (lat, lon) order, got %+v", res.Route.Coordinates)
	}
}

func TestRouteFetcherTimeout(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, _, _ domain.Coordinates) (domain.Route, error) {
		<-ctx.Done()
		return domain.Route{}, ctx.Err()
	})

	f := NewRouteFetcher(slow, 20*time.Millisecond, logging.Discard())
	res := f.Fetch(context.Background(), domain.Position{}, domain.Destination{}, 1)

	if res.Route != nil {
		t.Fatalf("expected no route")
	}
	if !domain.IsFetchErrorKind(res.Err, domain.NetworkError) {
		t.Fatalf("error = %v, want network error", res.Err)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", res.Err)
	}
}

func TestRouteFetcherKeepsFetchErrorKind(t *testing.T) {
	f := NewRouteFetcher(routing.NewMockProvider(nil), 0, logging.Discard())
	res := f.Fetch(context.Background(), domain.Position{Lat: 1}, domain.Destination{}, 2)

	if !domain.IsFetchErrorKind(res.Err, domain.EmptyRoute) {
		t.Fatalf("error = %v, want empty route", res.Err)
	}
	if res.Epoch != 2 {
		t.Fatalf("epoch = %d, want 2", res.Epoch)
	}
}

func TestRouteFetcherLogsFailureAtDebugOnly(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	failing := providerFunc(func(ctx context.Context, _, _ domain.Coordinates) (domain.Route, error) {
		return domain.Route{}, domain.NewFetchError(domain.NetworkError, errors.New("connection refused"))
	})

	res := NewRouteFetcher(failing, time.Second, log).Fetch(context.Background(), domain.Position{}, domain.Destination{}, 3)
	if !domain.IsFetchErrorKind(res.Err, domain.NetworkError) {
		t.Fatalf("error = %v, want network error", res.Err)
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if entries[0].Level != logrus.DebugLevel {
		t.Fatalf("level = %s, want debug", entries[0].Level)
	}
	if entries[0].Data["epoch"] != uint64(3) {
		t.Fatalf("epoch field = %v, want 3", entries[0].Data["epoch"])
	}
}
