package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/clock"
)

// OptimizeRouteCommandHandler rewrites the sequence numbers of a route's stops
// with the RouteOptimizer result and records the total distance on the route.
//
// The stops are read and rewritten inside one transaction; the repository locks
// them on read, so two optimisations of the same route cannot interleave and a
// failure leaves the previous sequence intact.
type OptimizeRouteCommandHandler struct {
	uowFactory UoWFactory
	optimizer  services.RouteOptimizer
	clock      clock.Clock
}

// NewOptimizeRouteCommandHandler creates an OptimizeRouteCommandHandler.
func NewOptimizeRouteCommandHandler(
	uowFactory UoWFactory,
	optimizer services.RouteOptimizer,
	clk clock.Clock,
) OptimizeRouteCommandHandler {
	return OptimizeRouteCommandHandler{
		uowFactory: uowFactory,
		optimizer:  optimizer,
		clock:      clk,
	}
}

// Handle returns the applied plan. A route with fewer than two geocoded stops
// fails with services.ErrInsufficientData and nothing is written.
func (h *OptimizeRouteCommandHandler) Handle(ctx context.Context, cmd OptimizeRouteCommand) (services.Plan, error) {
	if err := cmd.Validate(); err != nil {
		return services.Plan{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Plan{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()
	stopRepo := uow.StopRepository()

	r, err := routeRepo.GetForUpdate(ctx, cmd.RouteID())
	if err != nil {
		return services.Plan{}, err
	}

	stops, err := stopRepo.GetAllByRoute(ctx, r.ID())
	if err != nil {
		return services.Plan{}, err
	}

	plan, err := h.optimizer.Optimize(stops, cmd.Start())
	if err != nil {
		return services.Plan{}, err
	}

	if err = r.MarkOptimized(plan.TotalDistanceKm, h.clock.Now()); err != nil {
		return services.Plan{}, err
	}

	if err = stopRepo.SaveSequence(ctx, r.ID(), plan.OrderedStopIDs); err != nil {
		return services.Plan{}, err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return services.Plan{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Plan{}, err
	}

	return plan, nil
}
