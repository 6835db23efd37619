package services

import (
	"time"

	"arrival-route-service/internal/domain"

	"go.uber.org/atomic"
)

// CelebrationController owns the Idle -> Triggered transition for one session.
// TryTrigger is safe for concurrent use and yields at most one event.
type CelebrationController struct {
	evaluator   *ProximityEvaluator
	sessionID   string
	destination string
	triggered   *atomic.Bool
	triggeredAt *atomic.Time
	now         func() time.Time
}

func NewCelebrationController(evaluator *ProximityEvaluator, sessionID string, dest domain.Destination) *CelebrationController {
	if evaluator == nil {
		evaluator = NewProximityEvaluator(DefaultProximityThresholdMeters)
	}
	return &CelebrationController{
		evaluator:   evaluator,
		sessionID:   sessionID,
		destination: dest.Title,
		triggered:   atomic.NewBool(false),
		triggeredAt: atomic.NewTime(time.Time{}),
		now:         time.Now,
	}
}

func (c *CelebrationController) TryTrigger(distanceMeters float64) (domain.CelebrationEvent, bool) {
	if !c.evaluator.ShouldTrigger(distanceMeters, c.triggered.Load()) {
		return domain.CelebrationEvent{}, false
	}
	if !c.triggered.CompareAndSwap(false, true) {
		return domain.CelebrationEvent{}, false
	}

	at := c.now()
	c.triggeredAt.Store(at)

	return domain.CelebrationEvent{
		SessionID:      c.sessionID,
		Destination:    c.destination,
		DistanceMeters: distanceMeters,
		TriggeredAt:    at,
		Particles:      domain.CelebrationParticles,
		Recycle:        domain.CelebrationRecycle,
	}, true
}

// State may briefly report Triggered without TriggeredAt while the winner is still recording it.
func (c *CelebrationController) State() domain.CelebrationState {
	if !c.triggered.Load() {
		return domain.CelebrationState{}
	}

	st := domain.CelebrationState{Triggered: true}
	if at := c.triggeredAt.Load(); !at.IsZero() {
		st.TriggeredAt = &at
	}
	return st
}
