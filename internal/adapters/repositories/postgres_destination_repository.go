package repositories

import (
	"context"
	"errors"
	"fmt"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/db"
)

// Postgres-backed implementation of the DestinationRepository port.
type PostgresDestinationRepository struct{ DB db.Querier }

func NewPostgresDestinationRepository(q db.Querier) *PostgresDestinationRepository {
	return &PostgresDestinationRepository{DB: q}
}

// Return all destinations stored in the database, in insertion order.
func (p *PostgresDestinationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if p.DB == nil {
		return nil, errors.New("postgres destination repository: DB is nil")
	}

	query := `
	SELECT
		title,
		description,
		photo_url,
		lat,
		lon
	FROM destinations
	ORDER BY id;
	`
	rows, err := p.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	destinations := make([]domain.Destination, 0, 8)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.Title, &d.Description, &d.PhotoURL, &d.Lat, &d.Lon); err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		destinations = append(destinations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return destinations, nil
}
