// Package routerepo persists route aggregates with GORM.
package routerepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// RouteDTO is the row layout of the routes table.
type RouteDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ScheduledDate   time.Time  `gorm:"type:date;not null;index"`
	DriverID        *uuid.UUID `gorm:"type:uuid;index"`
	Status          int        `gorm:"not null;index"`
	OptimizedAt     *time.Time
	TotalDistanceKm float64 `gorm:"type:double precision;not null;default:0"`
}

// TableName overrides GORM's pluralisation.
func (RouteDTO) TableName() string {
	return "routes"
}

func fromDomain(aggregate *route.Route) RouteDTO {
	var driverID *uuid.UUID
	if id := aggregate.DriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	return RouteDTO{
		ID:              aggregate.ID().Bytes(),
		ScheduledDate:   aggregate.ScheduledDate(),
		DriverID:        driverID,
		Status:          int(aggregate.Status()),
		OptimizedAt:     aggregate.OptimizedAt(),
		TotalDistanceKm: aggregate.TotalDistanceKm(),
	}
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	var optimizedAt *time.Time
	if dto.OptimizedAt != nil {
		at := dto.OptimizedAt.UTC()
		optimizedAt = &at
	}

	return route.RestoreRoute(
		id,
		dto.ScheduledDate,
		driverID,
		route.Status(dto.Status),
		optimizedAt,
		dto.TotalDistanceKm,
	)
}
