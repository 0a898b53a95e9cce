package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrCaptureEvidenceCommandIsNotConstructed = errors.New(
	"CaptureEvidenceCommand must be created via NewCaptureEvidenceCommand constructor",
)

// CaptureEvidenceCommand records proof of delivery ahead of the Deliver transition.
// Whether the references are sufficient is decided by the EvidenceGate.
type CaptureEvidenceCommand struct { //nolint:recvcheck //using for validation
	stopID       kernel.UUID
	signatureRef string
	photoRefs    []string

	guard guard.ConstructorGuard
}

// NewCaptureEvidenceCommand builds the command. Blank references are dropped by
// the evidence gate, not here.
func NewCaptureEvidenceCommand(stopID kernel.UUID, signatureRef string, photoRefs []string) (CaptureEvidenceCommand, error) {
	cmd := CaptureEvidenceCommand{
		signatureRef: signatureRef,
		photoRefs:    append([]string(nil), photoRefs...),
		guard:        guard.NewConstructorGuard(),
	}

	if err := cmd.setStopID(stopID); err != nil {
		return CaptureEvidenceCommand{}, err
	}

	return cmd, nil
}

func (c CaptureEvidenceCommand) Validate() error {
	return c.guard.Validate(ErrCaptureEvidenceCommandIsNotConstructed)
}

func (c CaptureEvidenceCommand) StopID() kernel.UUID {
	return c.stopID
}

func (c CaptureEvidenceCommand) SignatureRef() string {
	return c.signatureRef
}

func (c CaptureEvidenceCommand) PhotoRefs() []string {
	return c.photoRefs
}

func (c *CaptureEvidenceCommand) setStopID(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	c.stopID = stopID
	return nil
}
