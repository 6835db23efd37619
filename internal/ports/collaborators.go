package ports

import (
	"context"

	"arrival-route-service/internal/domain"
)

// Audio collaborator. Play is invoked at most once per session.
type SoundPlayer interface {
	Play(ctx context.Context) error
}

// Visual celebration collaborator.
type CelebrationDisplay interface {
	Celebrate(ctx context.Context, particles int, recycle bool) error
}

// Renderer collaborator receiving every state change.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot domain.Snapshot) error
}
