package commands

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrOptimizeScheduledRoutesCommandIsNotConstructed = errors.New(
	"OptimizeScheduledRoutesCommand must be created via NewOptimizeScheduledRoutesCommand constructor",
)

// OptimizeScheduledRoutesCommand optimises every Planned, never-optimised route of a day.
// It is issued by the scheduled optimisation job.
type OptimizeScheduledRoutesCommand struct { //nolint:recvcheck //using for validation
	day time.Time

	guard guard.ConstructorGuard
}

func NewOptimizeScheduledRoutesCommand(day time.Time) (OptimizeScheduledRoutesCommand, error) {
	if day.IsZero() {
		return OptimizeScheduledRoutesCommand{}, errs.NewValueIsRequiredError("day")
	}
	return OptimizeScheduledRoutesCommand{
		day:   route.TruncateToDay(day),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c OptimizeScheduledRoutesCommand) Validate() error {
	return c.guard.Validate(ErrOptimizeScheduledRoutesCommandIsNotConstructed)
}

// Day returns the scheduled date at midnight UTC.
func (c OptimizeScheduledRoutesCommand) Day() time.Time {
	return c.day
}
