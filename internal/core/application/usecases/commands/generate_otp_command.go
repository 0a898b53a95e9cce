package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGenerateOtpCommandIsNotConstructed = errors.New(
	"GenerateOtpCommand must be created via NewGenerateOtpCommand constructor",
)

// GenerateOtpCommand issues a new passcode for a stop.
type GenerateOtpCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGenerateOtpCommand builds the command for stopID.
func NewGenerateOtpCommand(stopID kernel.UUID) (GenerateOtpCommand, error) {
	cmd := GenerateOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setStopID(stopID); err != nil {
		return GenerateOtpCommand{}, err
	}

	return cmd, nil
}

func (c GenerateOtpCommand) Validate() error {
	return c.guard.Validate(ErrGenerateOtpCommandIsNotConstructed)
}

func (c GenerateOtpCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c *GenerateOtpCommand) setStopID(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	c.stopID = stopID
	return nil
}
