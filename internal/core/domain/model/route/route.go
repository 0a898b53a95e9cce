package route

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrRouteIsNotConstructed is returned when a Route was not built with NewRoute or RestoreRoute.
var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or RestoreRoute constructors")

// Route is the aggregate root for one driver-day of deliveries.
//
// Route follows these invariants:
//   - Must have a valid identifier and a scheduled date
//   - The scheduled date is truncated to midnight UTC
//   - optimizedAt and totalDistanceKm are set together by MarkOptimized
//   - Completed routes cannot be re-optimised
type Route struct {
	id              kernel.UUID
	scheduledDate   time.Time
	driverID        *kernel.UUID
	status          Status
	optimizedAt     *time.Time
	totalDistanceKm float64
	guard           guard.ConstructorGuard
}

// NewRoute creates a Planned route. driverID is an external reference and may be nil.
//
// Example:
//
//	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
//	r, err := route.NewRoute(kernel.NewUUID(), day, nil)
func NewRoute(id kernel.UUID, scheduledDate time.Time, driverID *kernel.UUID) (*Route, error) {
	r := &Route{
		status: Planned,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setScheduledDate(scheduledDate),
		r.setDriverID(driverID),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRoute rebuilds a route from storage.
func RestoreRoute(
	id kernel.UUID,
	scheduledDate time.Time,
	driverID *kernel.UUID,
	status Status,
	optimizedAt *time.Time,
	totalDistanceKm float64,
) (*Route, error) {
	r := &Route{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setScheduledDate(scheduledDate),
		r.setDriverID(driverID),
		r.setStatus(status),
		r.setOptimization(optimizedAt, totalDistanceKm),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate reports whether the Route was produced by a constructor.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

// IsEqual compares routes by identifier.
func (r *Route) IsEqual(other *Route) bool {
	return other != nil && r.id.IsEqual(other.id)
}

// ID returns the route identifier.
func (r *Route) ID() kernel.UUID {
	return r.id
}

// ScheduledDate returns the delivery day at midnight UTC.
func (r *Route) ScheduledDate() time.Time {
	return r.scheduledDate
}

// DriverID returns the assigned driver, or nil.
func (r *Route) DriverID() *kernel.UUID {
	return r.driverID
}

// Status returns the current route status. It is derived from stop outcomes
// and only ever moves forward.
func (r *Route) Status() Status {
	return r.status
}

// OptimizedAt returns when the stop order was last computed, or nil if never.
func (r *Route) OptimizedAt() *time.Time {
	return r.optimizedAt
}

// IsOptimized reports whether an optimisation result was recorded.
func (r *Route) IsOptimized() bool {
	return r.optimizedAt != nil
}

// TotalDistanceKm returns the distance of the latest optimised sequence.
func (r *Route) TotalDistanceKm() float64 {
	return r.totalDistanceKm
}

// MarkOptimized records the result of an optimisation run.
func (r *Route) MarkOptimized(totalDistanceKm float64, at time.Time) error {
	if r.status == Completed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s route cannot be optimized", r.status),
		)
	}
	return r.setOptimization(&at, totalDistanceKm)
}

// Start marks the route as being driven.
func (r *Route) Start() error {
	next, err := r.status.Start()
	if err != nil {
		return err
	}
	r.status = next
	return nil
}

// Complete closes the route after its last stop reached a final status.
func (r *Route) Complete() error {
	next, err := r.status.Complete()
	if err != nil {
		return err
	}
	r.status = next
	return nil
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setScheduledDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("scheduledDate")
	}
	r.scheduledDate = TruncateToDay(date)
	return nil
}

func (r *Route) setDriverID(driverID *kernel.UUID) error {
	if driverID == nil {
		r.driverID = nil
		return nil
	}
	if err := driverID.Validate(); err != nil {
		return err
	}
	id := *driverID
	r.driverID = &id
	return nil
}

func (r *Route) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	r.status = status
	return nil
}

func (r *Route) setOptimization(at *time.Time, totalDistanceKm float64) error {
	if math.IsNaN(totalDistanceKm) || totalDistanceKm < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"totalDistanceKm",
			fmt.Errorf("%v is not a non-negative distance", totalDistanceKm),
		)
	}
	if at == nil {
		if totalDistanceKm != 0 {
			return errs.NewValueIsInvalidErrorWithCause(
				"optimizedAt",
				errors.New("distance recorded without optimisation time"),
			)
		}
		r.optimizedAt = nil
		r.totalDistanceKm = 0
		return nil
	}
	t := at.UTC()
	r.optimizedAt = &t
	r.totalDistanceKm = totalDistanceKm
	return nil
}

// TruncateToDay converts t to UTC and drops the time of day.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
