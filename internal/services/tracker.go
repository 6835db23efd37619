package services

import (
	"errors"
	"fmt"
	"sync"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"

	"go.uber.org/atomic"
)

// PositionTracker turns a LocationSource into a cancellable push subscription.
type PositionTracker struct {
	source ports.LocationSource
	opts   ports.WatchOptions
}

func NewPositionTracker(source ports.LocationSource, opts ports.WatchOptions) *PositionTracker {
	return &PositionTracker{source: source, opts: opts}
}

// Subscription is an active watch. Callbacks stop as soon as Cancel returns,
// even if the source delivers late.
type Subscription struct {
	handle    ports.WatchHandle
	cancelled *atomic.Bool
	once      sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		if s.handle != nil {
			s.handle.Cancel()
		}
	})
}

func (s *Subscription) Cancelled() bool {
	return s.cancelled.Load()
}

// Subscribe starts watching. Every fix reaches onPosition and every failure reaches
// onError exactly once; failures do not end the subscription.
func (t *PositionTracker) Subscribe(
	onPosition func(domain.Position),
	onError func(domain.LocationError),
) (*Subscription, error) {
	if t.source == nil {
		return nil, errors.New("subscribe: location source is nil")
	}
	if onPosition == nil || onError == nil {
		return nil, errors.New("subscribe: both callbacks are required")
	}

	sub := &Subscription{cancelled: atomic.NewBool(false)}

	handle, err := t.source.Watch(
		func(p domain.Position) {
			if sub.cancelled.Load() {
				return
			}
			onPosition(p)
		},
		func(e domain.LocationError) {
			if sub.cancelled.Load() {
				return
			}
			onError(e)
		},
		t.opts,
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe: watch location source: %w", err)
	}
	sub.handle = handle

	return sub, nil
}
