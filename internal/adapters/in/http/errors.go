package http

import (
	"errors"
	"net/http"

	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/errs"
)

// statusFor maps domain and validation errors to HTTP status codes.
// Specific domain errors are checked before the generic errs sentinels they may wrap.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stop.ErrExpiredToken):
		return http.StatusGone
	case errors.Is(err, services.ErrInsufficientData),
		errors.Is(err, services.ErrInvalidStopSet),
		errors.Is(err, stop.ErrMissingEvidence),
		errors.Is(err, stop.ErrOtpNotVerified),
		errors.Is(err, stop.ErrCodeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stop.ErrInvalidTransition),
		errors.Is(err, stop.ErrStopIsFinal),
		errors.Is(err, stop.ErrNoCodeGenerated),
		errors.Is(err, errs.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// otpResult labels an OTP verification outcome for metrics.
func otpResult(err error) string {
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, stop.ErrExpiredToken):
		return "expired"
	case errors.Is(err, stop.ErrCodeMismatch):
		return "mismatch"
	case errors.Is(err, stop.ErrNoCodeGenerated):
		return "no_code"
	default:
		return "error"
	}
}
