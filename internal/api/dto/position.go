package dto

import "time"

// PositionRequest carries either a fix (lat, lon, captured_at) or a failure (error, message).
type PositionRequest struct {
	Lat        *float64   `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon        *float64   `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	CapturedAt *time.Time `json:"captured_at"`
	Error      string     `json:"error"`
	Message    string     `json:"message"`
}

type AcceptedResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
}
