package route

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status is the lifecycle state of a route.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota
	// Planned routes have not been started by the driver.
	Planned
	// InProgress routes have at least one stop visited.
	InProgress
	// Completed routes have every stop delivered or failed.
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Planned:    "Planned",
		InProgress: "InProgress",
		Completed:  "Completed",
	}
}

// Validate rejects Unknown and values outside the enum.
func (s Status) Validate() error {
	if s <= Unknown || s > Completed {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Start transitions Planned to InProgress. Starting an InProgress route is a no-op.
func (s Status) Start() (Status, error) {
	if s != Planned && s != InProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start", s.String()),
		)
	}
	return InProgress, nil
}

// Complete transitions Planned or InProgress to Completed.
func (s Status) Complete() (Status, error) {
	if s != Planned && s != InProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}
	return Completed, nil
}
