package domain

import "time"

const (
	// Particle count requested from the visual celebration collaborator.
	CelebrationParticles = 200
	// Celebration playback runs once and is never recycled.
	CelebrationRecycle = false
)

// CelebrationState has a single legal transition: Idle (Triggered=false) to Triggered.
// It never resets within a session.
type CelebrationState struct {
	Triggered   bool       `json:"triggered"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// The one-shot signal emitted on first arrival within the proximity threshold.
type CelebrationEvent struct {
	SessionID      string    `json:"session_id"`
	Destination    string    `json:"destination"`
	DistanceMeters float64   `json:"distance_meters"`
	TriggeredAt    time.Time `json:"triggered_at"`
	Particles      int       `json:"particles"`
	Recycle        bool      `json:"recycle"`
}
