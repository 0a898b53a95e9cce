package services

import (
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/clock"
)

// EvidenceGate records proof of delivery on a stop. A signature reference, one
// or more photo references, or both are required.
type EvidenceGate struct {
	clock clock.Clock
}

// NewEvidenceGate creates an EvidenceGate stamping captures with clk.
func NewEvidenceGate(clk clock.Clock) EvidenceGate {
	return EvidenceGate{clock: clk}
}

// Capture stores the references on s. It fails with stop.ErrMissingEvidence when
// nothing usable is supplied and with stop.ErrStopIsFinal for finished stops.
func (g EvidenceGate) Capture(s *stop.Stop, signatureRef string, photoRefs []string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	evidence, err := stop.NewEvidence(signatureRef, photoRefs, g.clock.Now())
	if err != nil {
		return err
	}

	return s.CaptureEvidence(evidence)
}
