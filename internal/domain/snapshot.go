package domain

import "time"

// Snapshot is the state republished to the renderer after every change.
// Pointer fields are nil until the corresponding value exists.
type Snapshot struct {
	SessionID      string           `json:"session_id"`
	Destination    Destination      `json:"destination"`
	Position       *Position        `json:"position,omitempty"`
	DistanceMeters *float64         `json:"distance_meters,omitempty"`
	Route          *Route           `json:"route,omitempty"`
	Celebration    CelebrationState `json:"celebration"`
	Epoch          uint64           `json:"epoch"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
