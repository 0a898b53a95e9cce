// Package queries holds the read side: handlers that query the database
// directly and return flat read models instead of aggregates.
package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

// GeohashPrecision is the cell size reported for every stop, roughly 150 m across.
const GeohashPrecision = 7

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery loads a route with its stops in visiting order.
type GetRouteQuery struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

func (q GetRouteQuery) RouteID() kernel.UUID {
	return q.routeID
}

// GetRouteQueryResponse is the route read model.
type GetRouteQueryResponse struct {
	ID              kernel.UUID
	ScheduledDate   time.Time
	DriverID        *kernel.UUID
	Status          string
	OptimizedAt     *time.Time
	TotalDistanceKm float64
	Stops           []RouteStopView
}

// RouteStopView is one stop of GetRouteQueryResponse. The passcode itself is never exposed.
type RouteStopView struct {
	ID               kernel.UUID
	Sequence         int
	Location         *kernel.Location
	Geohash          string
	ContactName      string
	ContactPhone     string
	Address          string
	AgeRestricted    bool
	Status           string
	OtpIssued        bool
	OtpVerified      bool
	EvidenceCaptured bool
	ArrivedAt        *time.Time
	CompletedAt      *time.Time
	FailureReason    string
	Version          int
}
