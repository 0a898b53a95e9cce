package stop

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

const (
	// OtpCodeLength is the number of decimal digits in a passcode.
	OtpCodeLength = 6
	// OtpCodeMin is the smallest generated passcode.
	OtpCodeMin = 100000
	// OtpCodeMax is the largest generated passcode.
	OtpCodeMax = 999999
	// DefaultOtpTTL is how long a generated passcode stays valid.
	DefaultOtpTTL = 15 * time.Minute
)

var (
	// ErrNoCodeGenerated is returned when verification is attempted before any code was generated.
	ErrNoCodeGenerated = errors.New("no OTP code has been generated for this stop")
	// ErrExpiredToken is returned when the stored code is older than its TTL.
	ErrExpiredToken = errors.New("OTP code has expired")
	// ErrCodeMismatch is returned when the supplied code differs from the stored one.
	ErrCodeMismatch = errors.New("OTP code does not match")
	// ErrOtpNotVerified is returned when an age-restricted stop is delivered without a verified code.
	ErrOtpNotVerified = errors.New("OTP verification is required for age-restricted stops")
	// ErrOtpIsNotConstructed is returned when an Otp was not built with NewOtp or RestoreOtp.
	ErrOtpIsNotConstructed = errors.New("Otp must be created via NewOtp or RestoreOtp constructors")
)

// Otp is a one-time passcode issued to a stop. It is an immutable value object:
// verification returns a new Otp rather than mutating the receiver.
type Otp struct {
	code        string
	generatedAt time.Time
	verified    bool
	verifiedAt  *time.Time
	guard       guard.ConstructorGuard
}

// NewOtp wraps a freshly generated code. The code must be exactly six decimal digits.
func NewOtp(code string, generatedAt time.Time) (Otp, error) {
	if err := validateOtpCode(code); err != nil {
		return Otp{}, err
	}
	if generatedAt.IsZero() {
		return Otp{}, errs.NewValueIsRequiredError("generatedAt")
	}

	return Otp{
		code:        code,
		generatedAt: generatedAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// RestoreOtp rebuilds a persisted passcode, keeping the verification invariant:
// a verified code carries a verifiedAt no earlier than generatedAt.
func RestoreOtp(code string, generatedAt time.Time, verified bool, verifiedAt *time.Time) (Otp, error) {
	otp, err := NewOtp(code, generatedAt)
	if err != nil {
		return Otp{}, err
	}

	if verified {
		if verifiedAt == nil || verifiedAt.Before(generatedAt) {
			return Otp{}, errs.NewValueIsInvalidErrorWithCause(
				"verifiedAt",
				errors.New("verified OTP must have verifiedAt not earlier than generatedAt"),
			)
		}
		at := *verifiedAt
		otp.verified = true
		otp.verifiedAt = &at
	}

	return otp, nil
}

// Validate reports whether the Otp was produced by a constructor.
func (o Otp) Validate() error {
	return o.guard.Validate(ErrOtpIsNotConstructed)
}

// Code returns the six-digit passcode.
func (o Otp) Code() string {
	return o.code
}

// GeneratedAt returns when the passcode was issued.
func (o Otp) GeneratedAt() time.Time {
	return o.generatedAt
}

// ExpiresAt returns the last instant at which the passcode is still accepted.
func (o Otp) ExpiresAt(ttl time.Duration) time.Time {
	return o.generatedAt.Add(ttl)
}

// IsVerified reports whether the passcode was successfully verified.
func (o Otp) IsVerified() bool {
	return o.verified
}

// VerifiedAt returns the verification time, or nil if not verified.
func (o Otp) VerifiedAt() *time.Time {
	if o.verifiedAt == nil {
		return nil
	}
	at := *o.verifiedAt
	return &at
}

// verify checks supplied against the stored code. Expiry is checked before the
// code itself, so an expired code never reveals whether a guess was right.
func (o Otp) verify(supplied string, now time.Time, ttl time.Duration) (Otp, error) {
	if now.Sub(o.generatedAt) > ttl {
		return o, fmt.Errorf("%w: generated at %s, valid for %s",
			ErrExpiredToken, o.generatedAt.Format(time.RFC3339), ttl)
	}

	if subtle.ConstantTimeCompare([]byte(o.code), []byte(supplied)) != 1 {
		return o, ErrCodeMismatch
	}

	// a clock that stepped backwards must not break verifiedAt >= generatedAt
	verifiedAt := now
	if verifiedAt.Before(o.generatedAt) {
		verifiedAt = o.generatedAt
	}

	verified := o
	verified.verified = true
	verified.verifiedAt = &verifiedAt
	return verified, nil
}

func validateOtpCode(code string) error {
	if len(code) != OtpCodeLength {
		return errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("must be %d digits", OtpCodeLength))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("must be %d digits", OtpCodeLength))
		}
	}
	return nil
}
