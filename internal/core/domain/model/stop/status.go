package stop

import (
	"errors"
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// ErrInvalidTransition is the sentinel behind every InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid stop transition")

// Status is the lifecycle state of a stop.
//
// State transitions:
//
//	Pending ──Arrive──> Arrived ──Deliver──> Delivered
//	   │                   │
//	   └──────Fail─────────┴──────Fail─────> Failed
//
// Delivered and Failed are final.
type Status int

const (
	// Unknown catches uninitialised Status values.
	Unknown Status = iota
	// Pending is the initial status of every stop.
	Pending
	// Arrived means the driver reported arrival at the stop.
	Arrived
	// Delivered means the delivery completed with the required proof.
	Delivered
	// Failed means the delivery was abandoned with a reason.
	Failed
)

// Event is a driver- or dispatcher-issued lifecycle signal.
type Event int

const (
	// EventUnknown catches uninitialised Event values.
	EventUnknown Event = iota
	// Arrive signals that the driver reached the stop.
	Arrive
	// Deliver signals that the goods were handed over.
	Deliver
	// Fail signals that the delivery cannot be completed.
	Fail
)

// transitions is the single source of truth for allowed (status, event) pairs.
// Pairs missing from the table are illegal.
var transitions = map[Status]map[Event]Status{ //nolint:gochecknoglobals // immutable lookup table
	Pending: {
		Arrive: Arrived,
		Fail:   Failed,
	},
	Arrived: {
		Deliver: Delivered,
		Fail:    Failed,
	},
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Arrived:   "Arrived",
		Delivered: "Delivered",
		Failed:    "Failed",
	}
}

func getEventStrings() map[Event]string {
	return map[Event]string{
		EventUnknown: "Unknown",
		Arrive:       "Arrive",
		Deliver:      "Deliver",
		Fail:         "Fail",
	}
}

// Validate rejects Unknown and out-of-range values, e.g. corrupted database rows.
func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsFinal reports whether no event is accepted from s.
func (s Status) IsFinal() bool {
	return s == Delivered || s == Failed
}

// Next looks up the status reached by applying e to s.
// Undefined pairs, including every event on a final status, yield *InvalidTransitionError.
func (s Status) Next(e Event) (Status, error) {
	next, ok := transitions[s][e]
	if !ok {
		return Unknown, &InvalidTransitionError{From: s, Event: e}
	}
	return next, nil
}

func (e Event) String() string {
	if str, ok := getEventStrings()[e]; ok {
		return str
	}
	return "Unknown"
}

// ParseEvent maps the case-insensitive event names used on the wire to Event values.
func ParseEvent(s string) (Event, error) {
	for e, name := range getEventStrings() {
		if e != EventUnknown && strings.EqualFold(strings.TrimSpace(s), name) {
			return e, nil
		}
	}
	return EventUnknown, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not one of Arrive, Deliver, Fail", s))
}

// InvalidTransitionError reports an event that the current status does not accept.
type InvalidTransitionError struct {
	From  Status
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s does not accept %s", ErrInvalidTransition, e.From, e.Event)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
