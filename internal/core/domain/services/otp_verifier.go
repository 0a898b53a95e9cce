package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/clock"
)

// CodeSource produces passcodes in [stop.OtpCodeMin, stop.OtpCodeMax].
type CodeSource interface {
	NextCode() (int, error)
}

// CodeSourceFunc adapts a function to CodeSource.
type CodeSourceFunc func() (int, error)

func (f CodeSourceFunc) NextCode() (int, error) {
	return f()
}

// CryptoCodeSource draws uniformly distributed passcodes from crypto/rand.
type CryptoCodeSource struct{}

func (CryptoCodeSource) NextCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(stop.OtpCodeMax-stop.OtpCodeMin+1))
	if err != nil {
		return 0, fmt.Errorf("generate otp code: %w", err)
	}
	return stop.OtpCodeMin + int(n.Int64()), nil
}

// OtpVerifier issues and checks the one-time passcodes required to hand over
// age-restricted goods.
//
// Business rules:
//   - Codes are six digits, uniformly drawn from 100000..999999
//   - Generating again replaces the previous code and clears its verification
//   - A code is accepted until ttl has elapsed since generation, inclusive
//   - Expiry is reported before a mismatch
type OtpVerifier struct {
	clock  clock.Clock
	source CodeSource
	ttl    time.Duration
}

// NewOtpVerifier creates an OtpVerifier. A non-positive ttl selects stop.DefaultOtpTTL
// and a nil source selects CryptoCodeSource.
func NewOtpVerifier(clk clock.Clock, source CodeSource, ttl time.Duration) OtpVerifier {
	if ttl <= 0 {
		ttl = stop.DefaultOtpTTL
	}
	if source == nil {
		source = CryptoCodeSource{}
	}
	return OtpVerifier{clock: clk, source: source, ttl: ttl}
}

// TTL returns how long generated codes stay valid.
func (v OtpVerifier) TTL() time.Duration {
	return v.ttl
}

// Generate issues a fresh code for s and returns it with its expiry time.
// The code is returned to the caller for out-of-band delivery to the recipient.
func (v OtpVerifier) Generate(s *stop.Stop) (string, time.Time, error) {
	if err := s.Validate(); err != nil {
		return "", time.Time{}, err
	}

	n, err := v.source.NextCode()
	if err != nil {
		return "", time.Time{}, err
	}
	if n < stop.OtpCodeMin || n > stop.OtpCodeMax {
		return "", time.Time{}, fmt.Errorf("code source returned %d outside [%d, %d]", n, stop.OtpCodeMin, stop.OtpCodeMax)
	}

	otp, err := stop.NewOtp(strconv.Itoa(n), v.clock.Now())
	if err != nil {
		return "", time.Time{}, err
	}
	if err = s.IssueOtp(otp); err != nil {
		return "", time.Time{}, err
	}

	return otp.Code(), otp.ExpiresAt(v.ttl), nil
}

// Verify checks code against the passcode stored on s.
func (v OtpVerifier) Verify(s *stop.Stop, code string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return s.VerifyOtp(code, v.clock.Now(), v.ttl)
}
