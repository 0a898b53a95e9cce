package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/guard"
)

var ErrOptimizeRouteCommandIsNotConstructed = errors.New(
	"OptimizeRouteCommand must be created via NewOptimizeRouteCommand constructor",
)

// OptimizeRouteCommand asks for a nearest-neighbour ordering of a route's stops.
//
// Example:
//
//	cmd, err := NewOptimizeRouteCommand(routeID, services.StartAtFirstStop())
//	plan, err := handler.Handle(ctx, cmd)
//	fmt.Printf("%d stops, %.2f km", len(plan.OrderedStopIDs), plan.TotalDistanceKm)
type OptimizeRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	start   services.StartPoint

	guard guard.ConstructorGuard
}

// NewOptimizeRouteCommand builds the command. routeID must be a constructed UUID;
// start is taken as given and checked against the route's stops by the optimizer.
func NewOptimizeRouteCommand(routeID kernel.UUID, start services.StartPoint) (OptimizeRouteCommand, error) {
	cmd := OptimizeRouteCommand{
		start: start,
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setRouteID(routeID); err != nil {
		return OptimizeRouteCommand{}, err
	}

	return cmd, nil
}

// Validate reports ErrOptimizeRouteCommandIsNotConstructed for zero-value commands.
func (c OptimizeRouteCommand) Validate() error {
	return c.guard.Validate(ErrOptimizeRouteCommandIsNotConstructed)
}

// RouteID returns the route whose stops are reordered.
func (c OptimizeRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

// Start returns where the nearest-neighbour walk begins.
func (c OptimizeRouteCommand) Start() services.StartPoint {
	return c.start
}

func (c *OptimizeRouteCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}
