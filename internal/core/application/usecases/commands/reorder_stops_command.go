package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrReorderStopsCommandIsNotConstructed = errors.New(
	"ReorderStopsCommand must be created via NewReorderStopsCommand constructor",
)

// ReorderStopsCommand replaces a route's stop order with one chosen by hand.
// The ids are checked against the stored stops by the handler.
type ReorderStopsCommand struct { //nolint:recvcheck //using for validation
	routeID    kernel.UUID
	orderedIDs []kernel.UUID

	guard guard.ConstructorGuard
}

// NewReorderStopsCommand builds the command. orderedIDs is checked against the
// route's stops when the command is handled.
func NewReorderStopsCommand(routeID kernel.UUID, orderedIDs []kernel.UUID) (ReorderStopsCommand, error) {
	cmd := ReorderStopsCommand{
		orderedIDs: append([]kernel.UUID(nil), orderedIDs...),
		guard:      guard.NewConstructorGuard(),
	}

	if err := cmd.setRouteID(routeID); err != nil {
		return ReorderStopsCommand{}, err
	}

	return cmd, nil
}

func (c ReorderStopsCommand) Validate() error {
	return c.guard.Validate(ErrReorderStopsCommandIsNotConstructed)
}

func (c ReorderStopsCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c ReorderStopsCommand) OrderedIDs() []kernel.UUID {
	return c.orderedIDs
}

func (c *ReorderStopsCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}
