package commands

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrCreateRouteCommandIsNotConstructed = errors.New(
	"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
)

// NewRouteStop describes one stop of a route being created. Stops are
// sequenced in slice order.
type NewRouteStop struct {
	ID            kernel.UUID
	Location      *kernel.Location
	Contact       stop.Contact
	AgeRestricted bool
}

// CreateRouteCommand registers a route together with its Pending stops.
//
// Example:
//
//	loc, _ := kernel.NewLocation(51.5074, -0.1278)
//	cmd, err := NewCreateRouteCommand(kernel.NewUUID(), day, nil, []NewRouteStop{
//	    {ID: kernel.NewUUID(), Location: &loc, Contact: stop.NewContact("Ada", "", "1 Main St")},
//	})
type CreateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID       kernel.UUID
	scheduledDate time.Time
	driverID      *kernel.UUID
	stops         []NewRouteStop

	guard guard.ConstructorGuard
}

// NewCreateRouteCommand validates the route id, the date and every stop id.
// Stop ids must be unique.
func NewCreateRouteCommand(
	routeID kernel.UUID,
	scheduledDate time.Time,
	driverID *kernel.UUID,
	stops []NewRouteStop,
) (CreateRouteCommand, error) {
	cmd := CreateRouteCommand{
		driverID: driverID,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setScheduledDate(scheduledDate),
		cmd.setStops(stops),
	); err != nil {
		return CreateRouteCommand{}, err
	}

	return cmd, nil
}

func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func (c CreateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c CreateRouteCommand) ScheduledDate() time.Time {
	return c.scheduledDate
}

func (c CreateRouteCommand) DriverID() *kernel.UUID {
	return c.driverID
}

func (c CreateRouteCommand) Stops() []NewRouteStop {
	return c.stops
}

func (c *CreateRouteCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}

func (c *CreateRouteCommand) setScheduledDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("scheduledDate")
	}
	c.scheduledDate = date
	return nil
}

func (c *CreateRouteCommand) setStops(stops []NewRouteStop) error {
	seen := make(map[kernel.UUID]bool, len(stops))
	for i, s := range stops {
		if err := s.ID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("stops[%d].id", i), err)
		}
		if seen[s.ID] {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("stops[%d].id", i),
				fmt.Errorf("%s is listed twice", s.ID),
			)
		}
		seen[s.ID] = true
	}
	c.stops = append([]NewRouteStop(nil), stops...)
	return nil
}
