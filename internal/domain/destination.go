package domain

// Represents the fixed target location and its display metadata.
// Destinations are supplied by an external dataset and are read-only for the core.
type Destination struct {
	Title       string  `json:"title" yaml:"title" validate:"required"`
	Description string  `json:"description" yaml:"description"`
	PhotoURL    string  `json:"photo_url" yaml:"photo_url" validate:"omitempty,url"`
	Lat         float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

func (d Destination) Coordinates() Coordinates {
	return Coordinates{Lat: d.Lat, Lon: d.Lon}
}
