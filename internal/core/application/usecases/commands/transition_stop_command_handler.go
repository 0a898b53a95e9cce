package commands

import (
	"context"

	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
)

// TransitionStopCommandHandler moves one stop through its lifecycle and keeps the
// owning route's status in step: the first visited stop starts the route and the
// last finished stop completes it.
//
// The route row is locked before any stop is written, the same order the
// optimisation handlers use, so transitions of one route run one after another.
// The stop is written with an optimistic version check; a concurrent change to
// the same stop surfaces as errs.ConcurrencyConflictError.
type TransitionStopCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.StopLifecycle
}

// NewTransitionStopCommandHandler creates a TransitionStopCommandHandler.
func NewTransitionStopCommandHandler(uowFactory UoWFactory, lifecycle services.StopLifecycle) TransitionStopCommandHandler {
	return TransitionStopCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
	}
}

// Handle returns the stop status after the transition.
func (h *TransitionStopCommandHandler) Handle(ctx context.Context, cmd TransitionStopCommand) (stop.Status, error) {
	if err := cmd.Validate(); err != nil {
		return stop.Unknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return stop.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()
	routeRepo := uow.RouteRepository()

	s, err := stopRepo.Get(ctx, cmd.StopID())
	if err != nil {
		return stop.Unknown, err
	}

	r, err := routeRepo.GetForUpdate(ctx, s.RouteID())
	if err != nil {
		return stop.Unknown, err
	}

	status, err := h.lifecycle.Transition(s, cmd.Event(), cmd.Payload())
	if err != nil {
		return status, err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return stop.Unknown, err
	}

	changed, err := h.advanceRoute(ctx, stopRepo, r, s)
	if err != nil {
		return stop.Unknown, err
	}

	if changed {
		if err = routeRepo.Update(ctx, r); err != nil {
			return stop.Unknown, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return stop.Unknown, err
	}

	return status, nil
}

func (h *TransitionStopCommandHandler) advanceRoute(
	ctx context.Context,
	stopRepo ports.StopRepository,
	r *route.Route,
	changedStop *stop.Stop,
) (bool, error) {
	changed := false

	if r.Status() == route.Planned {
		if err := r.Start(); err != nil {
			return false, err
		}
		changed = true
	}

	if !changedStop.Status().IsFinal() {
		return changed, nil
	}

	// The route lock keeps sibling statuses stable, so no row locks are needed here.
	stops, err := stopRepo.ListByRoute(ctx, r.ID())
	if err != nil {
		return false, err
	}
	for _, other := range stops {
		if other.IsEqual(changedStop) {
			continue
		}
		if !other.Status().IsFinal() {
			return changed, nil
		}
	}

	if err = r.Complete(); err != nil {
		return false, err
	}
	return true, nil
}
