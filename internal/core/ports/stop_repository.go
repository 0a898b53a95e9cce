package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
)

// StopRepository defines the persistence contract for stop aggregates.
type StopRepository interface {
	// AddAll persists new stops of one route.
	AddAll(ctx context.Context, stops []*stop.Stop) error

	// Get retrieves a stop by id. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error)

	// GetAllByRoute returns the stops of a route ordered by sequence.
	// Inside a transaction the rows are locked until commit. Callers lock the
	// route row first with RouteRepository.GetForUpdate.
	GetAllByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error)

	// ListByRoute returns the stops of a route ordered by sequence without locking them.
	ListByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error)

	// SaveSequence assigns sequence i+1 to orderedIDs[i]. Only sequences change.
	SaveSequence(ctx context.Context, routeID kernel.UUID, orderedIDs []kernel.UUID) error

	// Update persists a stop if its stored version still equals stop.Version().
	// Returns errs.ConcurrencyConflictError when another writer got there first.
	Update(ctx context.Context, aggregate *stop.Stop) error
}
