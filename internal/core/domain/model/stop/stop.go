package stop

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	// ErrStopIsNotConstructed is returned when a Stop was not built with NewStop or RestoreStop.
	ErrStopIsNotConstructed = errors.New("Stop must be created via NewStop or RestoreStop constructors")
	// ErrStopIsFinal is returned when OTP or evidence operations target a Delivered or Failed stop.
	ErrStopIsFinal = errors.New("stop is already in a final status")
	// ErrFailureReasonIsRequired is returned when Fail is applied without a reason.
	ErrFailureReasonIsRequired = errs.NewValueIsRequiredError("reason")
)

// Stop is one delivery address on a route and the aggregate root of its delivery lifecycle.
//
// Stop follows these invariants:
//   - Sequence is 1-based
//   - Location is either absent or a complete, valid coordinate
//   - Status only changes through Apply, which consults the transition table
//   - Delivered implies captured evidence, plus a verified OTP when age-restricted
//   - Failed implies a non-empty failure reason
//
// Version is the optimistic-lock counter maintained by the persistence adapter.
type Stop struct {
	id            kernel.UUID
	routeID       kernel.UUID
	sequence      int
	location      *kernel.Location
	contact       Contact
	ageRestricted bool
	status        Status
	otp           *Otp
	evidence      *Evidence
	arrivedAt     *time.Time
	completedAt   *time.Time
	failureReason string
	version       int
	guard         guard.ConstructorGuard
}

// NewStop creates a Pending stop. location may be nil for stops that were not geocoded.
//
// Example:
//
//	loc, _ := kernel.NewLocation(51.5074, -0.1278)
//	s, err := stop.NewStop(kernel.NewUUID(), routeID, 1, &loc,
//	    stop.NewContact("Ada", "+44 20 7946 0000", "1 Main St"), false)
func NewStop(
	id kernel.UUID,
	routeID kernel.UUID,
	sequence int,
	location *kernel.Location,
	contact Contact,
	ageRestricted bool,
) (*Stop, error) {
	s := &Stop{
		contact:       contact,
		ageRestricted: ageRestricted,
		status:        Pending,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setRouteID(routeID),
		s.setSequence(sequence),
		s.setLocation(location),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Snapshot carries the persisted state of a stop into RestoreStop.
type Snapshot struct {
	ID            kernel.UUID
	RouteID       kernel.UUID
	Sequence      int
	Location      *kernel.Location
	Contact       Contact
	AgeRestricted bool
	Status        Status
	Otp           *Otp
	Evidence      *Evidence
	ArrivedAt     *time.Time
	CompletedAt   *time.Time
	FailureReason string
	Version       int
}

// RestoreStop rebuilds a stop from storage and re-checks the lifecycle invariants,
// so a corrupted row cannot produce a Delivered stop without proof.
func RestoreStop(snapshot Snapshot) (*Stop, error) {
	s := &Stop{
		contact:       snapshot.Contact,
		ageRestricted: snapshot.AgeRestricted,
		otp:           snapshot.Otp,
		evidence:      snapshot.Evidence,
		arrivedAt:     snapshot.ArrivedAt,
		completedAt:   snapshot.CompletedAt,
		failureReason: snapshot.FailureReason,
		version:       snapshot.Version,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(snapshot.ID),
		s.setRouteID(snapshot.RouteID),
		s.setSequence(snapshot.Sequence),
		s.setLocation(snapshot.Location),
		s.setStatus(snapshot.Status),
	); err != nil {
		return nil, err
	}

	if err := s.checkFinalInvariants(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate reports whether the Stop was produced by a constructor.
func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

// IsEqual compares stops by identifier.
func (s *Stop) IsEqual(other *Stop) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the stop identifier.
func (s *Stop) ID() kernel.UUID {
	return s.id
}

// RouteID returns the identifier of the owning route.
func (s *Stop) RouteID() kernel.UUID {
	return s.routeID
}

// Sequence returns the 1-based visiting position within the route.
func (s *Stop) Sequence() int {
	return s.sequence
}

// Location returns the stop coordinate, or nil when the stop is not geocoded.
func (s *Stop) Location() *kernel.Location {
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

// HasLocation reports whether the stop is geocoded.
func (s *Stop) HasLocation() bool {
	return s.location != nil
}

// Contact returns the recipient details.
func (s *Stop) Contact() Contact {
	return s.contact
}

// IsAgeRestricted reports whether delivery needs OTP verification.
func (s *Stop) IsAgeRestricted() bool {
	return s.ageRestricted
}

// Status returns the lifecycle status.
func (s *Stop) Status() Status {
	return s.status
}

// Otp returns the current passcode, or nil if none was generated.
func (s *Stop) Otp() *Otp {
	if s.otp == nil {
		return nil
	}
	otp := *s.otp
	return &otp
}

// IsOtpVerified reports whether the current passcode was verified.
func (s *Stop) IsOtpVerified() bool {
	return s.otp != nil && s.otp.IsVerified()
}

// Evidence returns the captured proof of delivery, or nil.
func (s *Stop) Evidence() *Evidence {
	if s.evidence == nil {
		return nil
	}
	ev := *s.evidence
	return &ev
}

// IsEvidenceCaptured reports whether proof of delivery was recorded.
func (s *Stop) IsEvidenceCaptured() bool {
	return s.evidence != nil
}

// ArrivedAt returns when the driver arrived, or nil.
func (s *Stop) ArrivedAt() *time.Time {
	return s.arrivedAt
}

// CompletedAt returns when the stop reached a final status, or nil.
func (s *Stop) CompletedAt() *time.Time {
	return s.completedAt
}

// FailureReason returns the reason recorded by Fail.
func (s *Stop) FailureReason() string {
	return s.failureReason
}

// Version returns the optimistic-lock counter the stop was loaded with.
func (s *Stop) Version() int {
	return s.version
}

// Resequence sets the 1-based visiting position. Only route optimisation and
// explicit reordering call it; status and location are untouched.
func (s *Stop) Resequence(sequence int) error {
	return s.setSequence(sequence)
}

// IssueOtp stores a freshly generated passcode, replacing any previous one and
// clearing its verification.
func (s *Stop) IssueOtp(otp Otp) error {
	if err := otp.Validate(); err != nil {
		return err
	}
	if s.status.IsFinal() {
		return fmt.Errorf("%w: %s", ErrStopIsFinal, s.status)
	}

	s.otp = &otp
	return nil
}

// VerifyOtp checks supplied against the stored passcode at time now.
// On failure the stored passcode and its verified flag are left unchanged.
func (s *Stop) VerifyOtp(supplied string, now time.Time, ttl time.Duration) error {
	if s.status.IsFinal() {
		return fmt.Errorf("%w: %s", ErrStopIsFinal, s.status)
	}
	if s.otp == nil {
		return ErrNoCodeGenerated
	}

	verified, err := s.otp.verify(strings.TrimSpace(supplied), now, ttl)
	if err != nil {
		return err
	}

	s.otp = &verified
	return nil
}

// CaptureEvidence records proof of delivery, replacing earlier evidence.
func (s *Stop) CaptureEvidence(evidence Evidence) error {
	if err := evidence.Validate(); err != nil {
		return err
	}
	if s.status.IsFinal() {
		return fmt.Errorf("%w: %s", ErrStopIsFinal, s.status)
	}

	s.evidence = &evidence
	return nil
}

// Apply moves the stop along the transition table and records the timestamps
// tied to the transition. reason is only used by Fail.
//
// Preconditions are re-checked on every call:
//   - the (status, event) pair must exist in the transition table
//   - Deliver needs captured evidence and, for age-restricted stops, a verified OTP
//   - Fail needs a non-blank reason
//
// On error the stop is unchanged.
func (s *Stop) Apply(event Event, reason string, now time.Time) (Status, error) {
	next, err := s.status.Next(event)
	if err != nil {
		return s.status, err
	}

	switch event {
	case Arrive:
		s.arrivedAt = &now
	case Deliver:
		if err = s.checkDeliverable(); err != nil {
			return s.status, err
		}
		s.completedAt = &now
	case Fail:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return s.status, ErrFailureReasonIsRequired
		}
		s.failureReason = reason
		s.completedAt = &now
	case EventUnknown:
		return s.status, &InvalidTransitionError{From: s.status, Event: event}
	}

	s.status = next
	return next, nil
}

func (s *Stop) checkDeliverable() error {
	if s.evidence == nil {
		return ErrMissingEvidence
	}
	if s.ageRestricted && !s.IsOtpVerified() {
		return ErrOtpNotVerified
	}
	return nil
}

func (s *Stop) checkFinalInvariants() error {
	switch s.status { //nolint:exhaustive // only final statuses carry extra invariants
	case Delivered:
		if err := s.checkDeliverable(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("status", err)
		}
	case Failed:
		if strings.TrimSpace(s.failureReason) == "" {
			return errs.NewValueIsInvalidErrorWithCause("status", ErrFailureReasonIsRequired)
		}
	}
	return nil
}

func (s *Stop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Stop) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	s.routeID = routeID
	return nil
}

func (s *Stop) setSequence(sequence int) error {
	if sequence < 1 {
		return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not greater than 0", sequence))
	}
	s.sequence = sequence
	return nil
}

func (s *Stop) setLocation(location *kernel.Location) error {
	if location == nil {
		s.location = nil
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	s.location = &loc
	return nil
}

func (s *Stop) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	s.status = status
	return nil
}
