package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrVerifyOtpCommandIsNotConstructed = errors.New(
	"VerifyOtpCommand must be created via NewVerifyOtpCommand constructor",
)

// VerifyOtpCommand checks a passcode typed in by the driver.
type VerifyOtpCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID
	code   string

	guard guard.ConstructorGuard
}

// NewVerifyOtpCommand trims code and rejects it when blank.
func NewVerifyOtpCommand(stopID kernel.UUID, code string) (VerifyOtpCommand, error) {
	cmd := VerifyOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setStopID(stopID),
		cmd.setCode(code),
	); err != nil {
		return VerifyOtpCommand{}, err
	}

	return cmd, nil
}

func (c VerifyOtpCommand) Validate() error {
	return c.guard.Validate(ErrVerifyOtpCommandIsNotConstructed)
}

func (c VerifyOtpCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c VerifyOtpCommand) Code() string {
	return c.code
}

func (c *VerifyOtpCommand) setStopID(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	c.stopID = stopID
	return nil
}

// setCode only requires a value; a malformed code is reported as a mismatch.
func (c *VerifyOtpCommand) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	c.code = code
	return nil
}
