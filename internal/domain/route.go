package domain

// Represents a driving path from the current position to the destination.
// A Route is replaced wholesale on every accepted fetch and is never appended to.
// The zero value (no coordinates) is a valid but empty path; "no route yet" is a nil *Route.
type Route struct {
	Coordinates []Coordinates `json:"coordinates"`
}

// Clone returns a deep copy so published snapshots never alias loop-owned state.
func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	out := make([]Coordinates, len(r.Coordinates))
	copy(out, r.Coordinates)
	return &Route{Coordinates: out}
}
