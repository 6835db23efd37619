package routing

import (
	"context"
	"fmt"

	"arrival-route-service/internal/domain"
)

type MockPair struct {
	From, To domain.Coordinates
	Route    domain.Route
}

// MockProvider answers from a fixed table of origin/destination pairs.
// With StraightLine set, unknown pairs get a two-point route instead of an error,
// which is what the offline mode (ROUTING_PROVIDER=mock) uses.
type MockProvider struct {
	m            map[string]domain.Route
	StraightLine bool
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]domain.Route, len(pairs))
	for _, p := range pairs {
		m[CacheKey(p.From, p.To)] = p.Route
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) Route(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return domain.Route{}, domain.NewFetchError(domain.NetworkError, err)
	}

	r, ok := p.m[CacheKey(origin, destination)]
	if ok {
		return *r.Clone(), nil
	}

	if p.StraightLine {
		return domain.Route{Coordinates: []domain.Coordinates{origin, destination}}, nil
	}

	return domain.Route{}, domain.NewFetchError(
		domain.EmptyRoute,
		fmt.Errorf("missing pair %v -> %v", origin, destination),
	)
}
