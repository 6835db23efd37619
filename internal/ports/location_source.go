package ports

import "arrival-route-service/internal/domain"

// Options passed to a location source when a watch starts.
type WatchOptions struct {
	HighAccuracy bool
}

// Opaque handle returned by Watch; Cancel stops further delivery and is safe to call twice.
type WatchHandle interface {
	Cancel()
}

// Contract for a continuous location source.
// Cadence and accuracy are decided by the source. A failure is reported through onError
// and does not end the watch.
type LocationSource interface {
	Watch(
		onPosition func(domain.Position),
		onError func(domain.LocationError),
		opts WatchOptions,
	) (WatchHandle, error)
}
