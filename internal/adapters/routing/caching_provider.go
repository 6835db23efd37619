package routing

import (
	"context"
	"fmt"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CachingProvider decorates a RouteProvider with a persistent cache and collapses
// identical concurrent lookups into a single upstream call.
//
// Cache failures are logged and never fail a lookup.
//
// The shared upstream call runs detached from any one caller's context, bounded by
// flightTimeout. Each caller stops waiting when its own context is done.
type CachingProvider struct {
	next          ports.RouteProvider
	cache         ports.RouteCache
	group         singleflight.Group
	flightTimeout time.Duration
	log           logrus.FieldLogger
}

const DefaultFlightTimeout = 30 * time.Second

func NewCachingProvider(next ports.RouteProvider, cache ports.RouteCache, log logrus.FieldLogger) *CachingProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachingProvider{next: next, cache: cache, flightTimeout: DefaultFlightTimeout, log: log}
}

// CacheKey rounds both endpoints to 5 decimal places (about 1 m) so jittering fixes share entries.
func CacheKey(origin, destination domain.Coordinates) string {
	return fmt.Sprintf(
		"route:%.5f,%.5f;%.5f,%.5f",
		origin.Lat, origin.Lon, destination.Lat, destination.Lon,
	)
}

func (c *CachingProvider) Route(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (domain.Route, error) {
	key := CacheKey(origin, destination)

	if c.cache != nil {
		route, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.WithError(err).WithField("key", key).Warn("route cache read failed")
		} else if ok {
			return route, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()

		route, err := c.next.Route(flightCtx, origin, destination)
		if err != nil {
			return nil, err
		}

		if c.cache != nil {
			if err := c.cache.Put(flightCtx, key, route); err != nil {
				c.log.WithError(err).WithField("key", key).Warn("route cache write failed")
			}
		}
		return route, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.Route{}, domain.NewFetchError(domain.NetworkError, fmt.Errorf("route lookup: %w", ctx.Err()))
	case res = <-ch:
	}
	if res.Err != nil {
		return domain.Route{}, res.Err
	}

	// Callers sharing a flight must not share the backing array.
	route := res.Val.(domain.Route)
	return *route.Clone(), nil
}
