// Package ports defines the persistence contracts of the delivery domain.
// Adapters under internal/adapters/out implement them; use cases depend only on
// these interfaces.
package ports

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates.
type RouteRepository interface {
	// Add persists a new route.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists status and optimisation changes of an existing route.
	Update(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route by id. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetForUpdate retrieves a route and locks its row until the transaction ends.
	// Every command that changes a route or the stops of a route takes this lock
	// first, so writers of one route are serialised and always lock in the same order.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetUnoptimizedOn returns the Planned routes scheduled for day that were never optimised.
	// Used by the scheduled optimisation job.
	GetUnoptimizedOn(ctx context.Context, day time.Time) ([]*route.Route, error)
}
