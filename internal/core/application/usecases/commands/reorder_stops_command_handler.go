package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
)

// ReorderStopsCommandHandler applies a manual stop order. The supplied ids must
// match the route's stops exactly, otherwise services.ErrInvalidStopSet is
// returned and nothing changes.
type ReorderStopsCommandHandler struct {
	uowFactory UoWFactory
	optimizer  services.RouteOptimizer
}

// NewReorderStopsCommandHandler creates a handler that applies a manual stop order
// validated by optimizer.
func NewReorderStopsCommandHandler(uowFactory UoWFactory, optimizer services.RouteOptimizer) ReorderStopsCommandHandler {
	return ReorderStopsCommandHandler{
		uowFactory: uowFactory,
		optimizer:  optimizer,
	}
}

// Handle locks the route, checks the order covers every stop exactly once and
// persists the new sequence numbers.
func (h *ReorderStopsCommandHandler) Handle(ctx context.Context, cmd ReorderStopsCommand) (services.Plan, error) {
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

	r, err := uow.RouteRepository().GetForUpdate(ctx, cmd.RouteID())
	if err != nil {
		return services.Plan{}, err
	}

	stopRepo := uow.StopRepository()
	stops, err := stopRepo.GetAllByRoute(ctx, r.ID())
	if err != nil {
		return services.Plan{}, err
	}

	plan, err := h.optimizer.Reorder(stops, cmd.OrderedIDs())
	if err != nil {
		return services.Plan{}, err
	}

	if err = stopRepo.SaveSequence(ctx, r.ID(), plan.OrderedStopIDs); err != nil {
		return services.Plan{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Plan{}, err
	}

	return plan, nil
}
