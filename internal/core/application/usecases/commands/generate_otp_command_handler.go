package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// GenerateOtpResult is the passcode to hand to the recipient and its expiry.
type GenerateOtpResult struct {
	Code      string
	ExpiresAt time.Time
}

// GenerateOtpCommandHandler issues a passcode and stores it on the stop,
// replacing any earlier one.
type GenerateOtpCommandHandler struct {
	uowFactory StopUoWFactory
	verifier   services.OtpVerifier
}

// NewGenerateOtpCommandHandler creates a GenerateOtpCommandHandler.
func NewGenerateOtpCommandHandler(uowFactory StopUoWFactory, verifier services.OtpVerifier) GenerateOtpCommandHandler {
	return GenerateOtpCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
	}
}

// Handle issues a fresh code for the stop, replacing any earlier one.
func (h *GenerateOtpCommandHandler) Handle(ctx context.Context, cmd GenerateOtpCommand) (GenerateOtpResult, error) {
	if err := cmd.Validate(); err != nil {
		return GenerateOtpResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GenerateOtpResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()

	s, err := stopRepo.Get(ctx, cmd.StopID())
	if err != nil {
		return GenerateOtpResult{}, err
	}

	code, expiresAt, err := h.verifier.Generate(s)
	if err != nil {
		return GenerateOtpResult{}, err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return GenerateOtpResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return GenerateOtpResult{}, err
	}

	return GenerateOtpResult{Code: code, ExpiresAt: expiresAt}, nil
}
