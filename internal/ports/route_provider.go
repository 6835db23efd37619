package ports

import (
	"context"

	"arrival-route-service/internal/domain"
)

// Contract for retrieving a driving route between two coordinates.
// Implementations return coordinates in (lat, lon) order and report failures as *domain.FetchError.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error)
}

// Optional persistent store used to avoid repeated routing-service calls.
type RouteCache interface {
	// Return the cached route for key; ok is false on a miss.
	Get(ctx context.Context, key string) (route domain.Route, ok bool, err error)
	Put(ctx context.Context, key string, route domain.Route) error
}
