package commands

import (
	"context"

	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
)

// CreateRouteCommandHandler stores a new Planned route and its Pending stops in
// one transaction.
type CreateRouteCommandHandler struct {
	uowFactory UoWFactory
}

// NewCreateRouteCommandHandler creates a CreateRouteCommandHandler.
func NewCreateRouteCommandHandler(uowFactory UoWFactory) CreateRouteCommandHandler {
	return CreateRouteCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle builds the aggregates, numbering stops 1..N in command order.
func (h *CreateRouteCommandHandler) Handle(ctx context.Context, cmd CreateRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	r, err := route.NewRoute(cmd.RouteID(), cmd.ScheduledDate(), cmd.DriverID())
	if err != nil {
		return err
	}

	stops := make([]*stop.Stop, 0, len(cmd.Stops()))
	for i, item := range cmd.Stops() {
		s, stopErr := stop.NewStop(item.ID, r.ID(), i+1, item.Location, item.Contact, item.AgeRestricted)
		if stopErr != nil {
			return stopErr
		}
		stops = append(stops, s)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}

	if len(stops) > 0 {
		if err = uow.StopRepository().AddAll(ctx, stops); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
