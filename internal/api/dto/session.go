package dto

import (
	"time"

	"arrival-route-service/internal/domain"
)

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type DestinationResponse struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type PositionResponse struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	CapturedAt time.Time `json:"captured_at"`
}

type CelebrationResponse struct {
	Triggered   bool       `json:"triggered"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

type SessionResponse struct {
	SessionID      string               `json:"session_id"`
	Destination    DestinationResponse  `json:"destination"`
	Position       *PositionResponse    `json:"position"`
	DistanceMeters *float64             `json:"distance_meters"`
	Route          []CoordinateResponse `json:"route"`
	Celebration    CelebrationResponse  `json:"celebration"`
	Epoch          uint64               `json:"epoch"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// SessionFromSnapshot maps a snapshot to its wire form. A missing route is encoded as null.
func SessionFromSnapshot(s domain.Snapshot) SessionResponse {
	res := SessionResponse{
		SessionID: s.SessionID,
		Destination: DestinationResponse{
			Title:       s.Destination.Title,
			Description: s.Destination.Description,
			PhotoURL:    s.Destination.PhotoURL,
			Lat:         s.Destination.Lat,
			Lon:         s.Destination.Lon,
		},
		DistanceMeters: s.DistanceMeters,
		Celebration: CelebrationResponse{
			Triggered:   s.Celebration.Triggered,
			TriggeredAt: s.Celebration.TriggeredAt,
		},
		Epoch:     s.Epoch,
		UpdatedAt: s.UpdatedAt,
	}

	if s.Position != nil {
		res.Position = &PositionResponse{
			Lat:        s.Position.Lat,
			Lon:        s.Position.Lon,
			CapturedAt: s.Position.CapturedAt,
		}
	}

	if s.Route != nil {
		res.Route = make([]CoordinateResponse, 0, len(s.Route.Coordinates))
		for _, c := range s.Route.Coordinates {
			res.Route = append(res.Route, CoordinateResponse{Lat: c.Lat, Lon: c.Lon})
		}
	}

	return res
}
