package services

import (
	"strings"

	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/clock"
)

// TransitionPayload carries the optional data that accompanies a transition.
type TransitionPayload struct {
	// SignatureRef and PhotoRefs are captured as evidence before Deliver is applied.
	SignatureRef string
	PhotoRefs    []string
	// Reason is required by Fail.
	Reason string
}

func (p TransitionPayload) hasEvidence() bool {
	if strings.TrimSpace(p.SignatureRef) != "" {
		return true
	}
	for _, ref := range p.PhotoRefs {
		if strings.TrimSpace(ref) != "" {
			return true
		}
	}
	return false
}

// StopLifecycle drives a stop through Pending, Arrived, Delivered and Failed.
// The transition table lives in the stop package; this service adds the
// evidence capture that may ride along with a Deliver request.
//
// Example usage:
//
//	lifecycle := services.NewStopLifecycle(clock.NewSystem(), gate)
//	status, err := lifecycle.Transition(s, stop.Deliver, services.TransitionPayload{
//	    SignatureRef: "signatures/4711.png",
//	})
type StopLifecycle struct {
	clock clock.Clock
	gate  EvidenceGate
}

// NewStopLifecycle creates a StopLifecycle.
func NewStopLifecycle(clk clock.Clock, gate EvidenceGate) StopLifecycle {
	return StopLifecycle{clock: clk, gate: gate}
}

// Transition applies event to s and returns the resulting status.
// On error s keeps its status; evidence is only captured for transitions the
// table accepts.
func (l StopLifecycle) Transition(s *stop.Stop, event stop.Event, payload TransitionPayload) (stop.Status, error) {
	if err := s.Validate(); err != nil {
		return stop.Unknown, err
	}

	if _, err := s.Status().Next(event); err != nil {
		return s.Status(), err
	}

	if event == stop.Deliver && payload.hasEvidence() {
		if err := l.gate.Capture(s, payload.SignatureRef, payload.PhotoRefs); err != nil {
			return s.Status(), err
		}
	}

	return s.Apply(event, payload.Reason, l.clock.Now())
}
