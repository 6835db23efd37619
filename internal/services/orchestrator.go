package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const eventBuffer = 64

type OrchestratorConfig struct {
	// SessionID is generated when empty.
	SessionID string

	Destinations ports.DestinationRepository
	Source       ports.LocationSource
	Provider     ports.RouteProvider

	// Optional collaborators; nil ones are skipped.
	Publisher ports.SnapshotPublisher
	Sound     ports.SoundPlayer
	Display   ports.CelebrationDisplay

	ThresholdMeters float64
	RouteTimeout    time.Duration
	Logger          logrus.FieldLogger
	Now             func() time.Time
}

type eventKind int

const (
	eventPosition eventKind = iota
	eventLocationError
	eventRouteResult
)

type event struct {
	kind   eventKind
	pos    domain.Position
	locErr domain.LocationError
	result RouteResult
}

// Orchestrator runs one arrival session.
//
// All session state (last fix, route, epoch) is owned by the Run goroutine. Location
// callbacks and fetch completions are posted to it as events. Readers on other
// goroutines use Snapshot.
type Orchestrator struct {
	sessionID   string
	dest        domain.Destination
	tracker     *PositionTracker
	evaluator   *ProximityEvaluator
	celebration *CelebrationController
	fetcher     *RouteFetcher
	publisher   ports.SnapshotPublisher
	sound       ports.SoundPlayer
	display     ports.CelebrationDisplay
	log         logrus.FieldLogger
	now         func() time.Time

	events  chan event
	stopped chan struct{}
	running *atomic.Bool
	fetches sync.WaitGroup

	snapshot *atomic.Pointer[domain.Snapshot]

	// Loop-owned.
	epoch    uint64
	last     *domain.Position
	distance *float64
	route    *domain.Route

	// observeResult is called by the loop after each route result is handled.
	observeResult func(res RouteResult, applied bool)
}

// NewOrchestrator loads the destination (the first entry of the dataset) and prepares
// the initial snapshot. An empty dataset is an error.
func NewOrchestrator(ctx context.Context, cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Destinations == nil {
		return nil, errors.New("new orchestrator: destination repository is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("new orchestrator: location source is required")
	}
	if cfg.Provider == nil {
		return nil, errors.New("new orchestrator: route provider is required")
	}

	destinations, err := cfg.Destinations.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("new orchestrator: load destinations: %w", err)
	}
	if len(destinations) == 0 {
		return nil, errors.New("new orchestrator: destination dataset is empty")
	}
	dest := destinations[0]

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("session_id", sessionID)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	evaluator := NewProximityEvaluator(cfg.ThresholdMeters)
	celebration := NewCelebrationController(evaluator, sessionID, dest)
	celebration.now = now

	o := &Orchestrator{
		sessionID:   sessionID,
		dest:        dest,
		tracker:     NewPositionTracker(cfg.Source, ports.WatchOptions{HighAccuracy: true}),
		evaluator:   evaluator,
		celebration: celebration,
		fetcher:     NewRouteFetcher(cfg.Provider, cfg.RouteTimeout, log),
		publisher:   cfg.Publisher,
		sound:       cfg.Sound,
		display:     cfg.Display,
		log:         log,
		now:         now,
		events:      make(chan event, eventBuffer),
		stopped:     make(chan struct{}),
		running:     atomic.NewBool(false),
		snapshot:    &atomic.Pointer[domain.Snapshot]{},
	}
	o.storeSnapshot()

	return o, nil
}

func (o *Orchestrator) SessionID() string { return o.sessionID }

func (o *Orchestrator) Destination() domain.Destination { return o.dest }

// Snapshot returns the latest published state. Safe from any goroutine.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	return *o.snapshot.Load()
}

// Run subscribes to the location source and processes events until ctx is cancelled.
// A session runs once; a second call is an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return errors.New("run orchestrator: already started")
	}

	sub, err := o.tracker.Subscribe(o.postPosition, o.postLocationError)
	if err != nil {
		close(o.stopped)
		return fmt.Errorf("run orchestrator: %w", err)
	}

	o.log.WithFields(logrus.Fields{
		"destination":      o.dest.Title,
		"threshold_meters": o.evaluator.Threshold(),
	}).Info("session started")

	defer func() {
		sub.Cancel()
		close(o.stopped)
		o.fetches.Wait()
		o.log.Info("session stopped")
	}()

	o.publish(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-o.events:
			switch ev.kind {
			case eventPosition:
				o.handlePosition(ctx, ev.pos)
			case eventLocationError:
				o.handleLocationError(ev.locErr)
			case eventRouteResult:
				applied := o.applyResult(ctx, ev.result)
				if o.observeResult != nil {
					o.observeResult(ev.result, applied)
				}
			}
		}
	}
}

func (o *Orchestrator) post(ev event) {
	select {
	case o.events <- ev:
	case <-o.stopped:
	}
}

func (o *Orchestrator) postPosition(p domain.Position) {
	o.post(event{kind: eventPosition, pos: p})
}

func (o *Orchestrator) postLocationError(e domain.LocationError) {
	o.post(event{kind: eventLocationError, locErr: e})
}

// handlePosition advances the epoch only when the coordinates move; an unchanged fix
// keeps the in-flight fetch current.
func (o *Orchestrator) handlePosition(ctx context.Context, pos domain.Position) {
	distance := o.evaluator.Evaluate(pos, o.dest)

	if ev, ok := o.celebration.TryTrigger(distance); ok {
		o.celebrate(ctx, ev)
	}

	changed := o.last == nil || !o.last.SameCoordinates(pos)
	o.last = &pos
	o.distance = &distance

	if changed {
		o.epoch++
		o.startFetch(ctx, pos, o.epoch)
	}

	o.publish(ctx)
}

func (o *Orchestrator) startFetch(ctx context.Context, origin domain.Position, epoch uint64) {
	o.fetches.Add(1)
	go func() {
		defer o.fetches.Done()
		res := o.fetcher.Fetch(ctx, origin, o.dest, epoch)
		o.post(event{kind: eventRouteResult, result: res})
	}()
}

// applyResult reports whether the result replaced the route.
func (o *Orchestrator) applyResult(ctx context.Context, res RouteResult) bool {
	if res.Epoch != o.epoch {
		o.log.WithFields(logrus.Fields{
			"result_epoch":  res.Epoch,
			"current_epoch": o.epoch,
		}).Debug("discarding stale route result")
		return false
	}

	if res.Err != nil {
		entry := o.log.WithError(res.Err).WithField("epoch", res.Epoch)
		var fe *domain.FetchError
		if errors.As(res.Err, &fe) {
			entry = entry.WithField("kind", fe.Kind.String())
		}
		entry.Warn("route fetch failed, keeping previous route")
		return false
	}

	o.route = res.Route
	o.publish(ctx)
	return true
}

func (o *Orchestrator) handleLocationError(e domain.LocationError) {
	o.log.WithFields(logrus.Fields{
		"kind": e.Kind.String(),
		"at":   e.At,
	}).WithError(e).Warn("location error")
}

func (o *Orchestrator) celebrate(ctx context.Context, ev domain.CelebrationEvent) {
	o.log.WithFields(logrus.Fields{
		"destination":     ev.Destination,
		"distance_meters": ev.DistanceMeters,
	}).Info("arrived at destination")

	if o.sound != nil {
		if err := o.sound.Play(ctx); err != nil {
			o.log.WithError(err).Warn("sound player failed")
		}
	}
	if o.display != nil {
		if err := o.display.Celebrate(ctx, ev.Particles, ev.Recycle); err != nil {
			o.log.WithError(err).Warn("celebration display failed")
		}
	}
}

func (o *Orchestrator) storeSnapshot() domain.Snapshot {
	s := domain.Snapshot{
		SessionID:   o.sessionID,
		Destination: o.dest,
		Route:       o.route.Clone(),
		Celebration: o.celebration.State(),
		Epoch:       o.epoch,
		UpdatedAt:   o.now(),
	}
	if o.last != nil {
		p := *o.last
		s.Position = &p
	}
	if o.distance != nil {
		d := *o.distance
		s.DistanceMeters = &d
	}

	o.snapshot.Store(&s)
	return s
}

func (o *Orchestrator) publish(ctx context.Context) {
	s := o.storeSnapshot()
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, s); err != nil {
		o.log.WithError(err).Warn("publish snapshot failed")
	}
}
