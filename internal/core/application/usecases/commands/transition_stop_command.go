package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/guard"
)

var ErrTransitionStopCommandIsNotConstructed = errors.New(
	"TransitionStopCommand must be created via NewTransitionStopCommand constructor",
)

// TransitionStopCommand applies Arrive, Deliver or Fail to a stop.
//
// Example:
//
//	cmd, err := NewTransitionStopCommand(stopID, stop.Deliver, services.TransitionPayload{
//	    PhotoRefs: []string{"photos/door.jpg"},
//	})
//	status, err := handler.Handle(ctx, cmd)
type TransitionStopCommand struct { //nolint:recvcheck //using for validation
	stopID  kernel.UUID
	event   stop.Event
	payload services.TransitionPayload

	guard guard.ConstructorGuard
}

// NewTransitionStopCommand builds a transition request for one stop. payload is
// only inspected by the events that use it: evidence for Deliver, a reason for Fail.
func NewTransitionStopCommand(
	stopID kernel.UUID,
	event stop.Event,
	payload services.TransitionPayload,
) (TransitionStopCommand, error) {
	cmd := TransitionStopCommand{
		payload: payload,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setStopID(stopID),
		cmd.setEvent(event),
	); err != nil {
		return TransitionStopCommand{}, err
	}

	return cmd, nil
}

func (c TransitionStopCommand) Validate() error {
	return c.guard.Validate(ErrTransitionStopCommandIsNotConstructed)
}

func (c TransitionStopCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c TransitionStopCommand) Event() stop.Event {
	return c.event
}

func (c TransitionStopCommand) Payload() services.TransitionPayload {
	return c.payload
}

func (c *TransitionStopCommand) setStopID(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	c.stopID = stopID
	return nil
}

func (c *TransitionStopCommand) setEvent(event stop.Event) error {
	if _, err := stop.ParseEvent(event.String()); err != nil {
		return err
	}
	c.event = event
	return nil
}
