package commands

import (
	"context"
	"errors"
	"fmt"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
)

// OptimizeScheduledRoutesResult summarises a batch run.
type OptimizeScheduledRoutesResult struct {
	Optimized []kernel.UUID
	// Skipped routes have fewer than two geocoded stops.
	Skipped []kernel.UUID
}

type routeOptimizer interface {
	Handle(ctx context.Context, cmd OptimizeRouteCommand) (services.Plan, error)
}

// OptimizeScheduledRoutesCommandHandler lists the day's unoptimised routes and
// optimises each one in its own transaction, so one bad route does not block
// the rest.
type OptimizeScheduledRoutesCommandHandler struct {
	uowFactory UoWFactory
	optimize   routeOptimizer
}

func NewOptimizeScheduledRoutesCommandHandler(
	uowFactory UoWFactory,
	optimize *OptimizeRouteCommandHandler,
) OptimizeScheduledRoutesCommandHandler {
	return OptimizeScheduledRoutesCommandHandler{
		uowFactory: uowFactory,
		optimize:   optimize,
	}
}

// Handle returns what was done. Failures other than insufficient data are
// joined into the returned error after all routes were attempted.
func (h *OptimizeScheduledRoutesCommandHandler) Handle(
	ctx context.Context,
	cmd OptimizeScheduledRoutesCommand,
) (OptimizeScheduledRoutesResult, error) {
	var result OptimizeScheduledRoutesResult

	if err := cmd.Validate(); err != nil {
		return result, err
	}

	ids, err := h.pendingRoutes(ctx, cmd)
	if err != nil {
		return result, err
	}

	var failures []error
	for _, id := range ids {
		optimizeCmd, cmdErr := NewOptimizeRouteCommand(id, services.StartAtFirstStop())
		if cmdErr != nil {
			return result, cmdErr
		}

		_, optErr := h.optimize.Handle(ctx, optimizeCmd)
		switch {
		case optErr == nil:
			result.Optimized = append(result.Optimized, id)
		case errors.Is(optErr, services.ErrInsufficientData):
			result.Skipped = append(result.Skipped, id)
		default:
			failures = append(failures, fmt.Errorf("route %s: %w", id, optErr))
		}
	}

	return result, errors.Join(failures...)
}

func (h *OptimizeScheduledRoutesCommandHandler) pendingRoutes(
	ctx context.Context,
	cmd OptimizeScheduledRoutesCommand,
) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routes, err := uow.RouteRepository().GetUnoptimizedOn(ctx, cmd.Day())
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(routes))
	for _, r := range routes {
		ids = append(ids, r.ID())
	}

	return ids, uow.Commit(ctx)
}
