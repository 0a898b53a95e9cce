package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
)

// CaptureEvidenceCommandHandler stores signature and photo references on a stop.
type CaptureEvidenceCommandHandler struct {
	uowFactory StopUoWFactory
	gate       services.EvidenceGate
}

// NewCaptureEvidenceCommandHandler creates a CaptureEvidenceCommandHandler.
func NewCaptureEvidenceCommandHandler(uowFactory StopUoWFactory, gate services.EvidenceGate) CaptureEvidenceCommandHandler {
	return CaptureEvidenceCommandHandler{
		uowFactory: uowFactory,
		gate:       gate,
	}
}

// Handle stores proof of delivery on a stop that is not yet final.
func (h *CaptureEvidenceCommandHandler) Handle(ctx context.Context, cmd CaptureEvidenceCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()

	s, err := stopRepo.Get(ctx, cmd.StopID())
	if err != nil {
		return err
	}

	if err = h.gate.Capture(s, cmd.SignatureRef(), cmd.PhotoRefs()); err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
