package stream

import (
	"context"
	"time"

	"arrival-route-service/internal/domain"
)

// DefaultSoundCue is the arrival sound the browser client plays.
const DefaultSoundCue = "arrival"

// Publisher turns orchestrator callbacks into stream messages for one session.
// It implements ports.SnapshotPublisher, ports.SoundPlayer and ports.CelebrationDisplay.
type Publisher struct {
	hub       *Hub
	sessionID string
	cue       string
	now       func() time.Time
}

func NewPublisher(hub *Hub, sessionID string) *Publisher {
	return &Publisher{hub: hub, sessionID: sessionID, cue: DefaultSoundCue, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, s domain.Snapshot) error {
	b, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	p.hub.Broadcast(ctx, p.sessionID, b)
	return nil
}

func (p *Publisher) Play(ctx context.Context) error {
	b, err := encode(TypeSound, p.sessionID, p.now(), SoundData{Cue: p.cue})
	if err != nil {
		return err
	}
	p.hub.Broadcast(ctx, p.sessionID, b)
	return nil
}

func (p *Publisher) Celebrate(ctx context.Context, particles int, recycle bool) error {
	b, err := encode(TypeCelebration, p.sessionID, p.now(), CelebrationData{Particles: particles, Recycle: recycle})
	if err != nil {
		return err
	}
	p.hub.Broadcast(ctx, p.sessionID, b)
	return nil
}
