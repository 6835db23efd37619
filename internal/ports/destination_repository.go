package ports

import (
	"context"

	"arrival-route-service/internal/domain"
)

// Port: a boundary for retrieving the ordered destination dataset.
type DestinationRepository interface {
	// Retrieve all destinations in dataset order.
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
}
