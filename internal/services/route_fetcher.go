package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"

	"github.com/sirupsen/logrus"
)

const DefaultRouteTimeout = 10 * time.Second

// RouteResult is what a fetch posts back to the orchestrator loop.
// Exactly one of Route and Err is set.
type RouteResult struct {
	Epoch uint64
	Route *domain.Route
	Err   error
}

// RouteFetcher requests a route for one origin and tags the outcome with its epoch.
type RouteFetcher struct {
	provider ports.RouteProvider
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewRouteFetcher(provider ports.RouteProvider, timeout time.Duration, log logrus.FieldLogger) *RouteFetcher {
	if timeout <= 0 {
		timeout = DefaultRouteTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RouteFetcher{provider: provider, timeout: timeout, log: log}
}

// Fetch never returns a bare error: anything that is not already a *domain.FetchError
// is reported as a NetworkError. Failures are logged at debug level only; the provider
// times the call and the orchestrator reports the outcome.
func (f *RouteFetcher) Fetch(
	ctx context.Context,
	origin domain.Position,
	dest domain.Destination,
	epoch uint64,
) RouteResult {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	route, err := f.provider.Route(ctx, origin.Coordinates(), dest.Coordinates())
	if err != nil {
		var fe *domain.FetchError
		if !errors.As(err, &fe) {
			err = domain.NewFetchError(domain.NetworkError, fmt.Errorf("fetch route: %w", err))
		}
		f.log.WithError(err).WithFields(logrus.Fields{
			"epoch":       epoch,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("route fetch returned an error")
		return RouteResult{Epoch: epoch, Err: err}
	}

	return RouteResult{Epoch: epoch, Route: &route}
}
