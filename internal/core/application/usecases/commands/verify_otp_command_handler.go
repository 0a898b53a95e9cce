package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
)

// VerifyOtpCommandHandler checks a passcode and persists the verified flag.
// Failed attempts (stop.ErrExpiredToken, stop.ErrCodeMismatch,
// stop.ErrNoCodeGenerated) write nothing.
type VerifyOtpCommandHandler struct {
	uowFactory StopUoWFactory
	verifier   services.OtpVerifier
}

// NewVerifyOtpCommandHandler creates a VerifyOtpCommandHandler.
func NewVerifyOtpCommandHandler(uowFactory StopUoWFactory, verifier services.OtpVerifier) VerifyOtpCommandHandler {
	return VerifyOtpCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
	}
}

// Handle checks the supplied code against the stop's current OTP and records
// the verification.
func (h *VerifyOtpCommandHandler) Handle(ctx context.Context, cmd VerifyOtpCommand) error {
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

	if err = h.verifier.Verify(s, cmd.Code()); err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
