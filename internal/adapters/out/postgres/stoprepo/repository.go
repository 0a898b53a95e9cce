package stoprepo

import (
	"context"
	"errors"
	"fmt"

	"lastmile/internal/adapters/out/postgres/pgerr"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStopRepository implements ports.StopRepository using GORM.
type GormStopRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormStopRepository creates a new GORM stop repository.
func NewGormStopRepository(db *gorm.DB, tracker aggregateTracker) *GormStopRepository {
	return &GormStopRepository{
		db:      db,
		tracker: tracker,
	}
}

// AddAll inserts the stops in one batch.
func (r *GormStopRepository) AddAll(ctx context.Context, stops []*stop.Stop) error {
	if len(stops) == 0 {
		return nil
	}

	dtos := make([]StopDTO, 0, len(stops))
	for _, s := range stops {
		if err := s.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(s))
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&dtos).Error; err != nil {
		return err
	}

	for _, s := range stops {
		r.tracker.TrackAggregate(s.ID(), s)
	}
	return nil
}

// Get retrieves a stop by ID.
func (r *GormStopRepository) Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto StopDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stop", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllByRoute returns the stops of a route ordered by sequence and locks the rows FOR UPDATE.
func (r *GormStopRepository) GetAllByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error) {
	stops, err := r.listByRoute(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), routeID)
	if err != nil {
		return nil, pgerr.Conflict(err, "route", routeID.String(), 0)
	}
	return stops, nil
}

// ListByRoute returns the stops of a route ordered by sequence without row locks.
func (r *GormStopRepository) ListByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error) {
	return r.listByRoute(r.db.WithContext(ctx), routeID)
}

func (r *GormStopRepository) listByRoute(db *gorm.DB, routeID kernel.UUID) ([]*stop.Stop, error) {
	if err := routeID.Validate(); err != nil {
		return nil, err
	}

	var dtos []StopDTO
	err := db.
		Where("route_id = ?", routeID.Bytes()).
		Order("sequence").
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	stops := make([]*stop.Stop, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}

	return stops, nil
}

// SaveSequence assigns sequence i+1 to orderedIDs[i].
// orderedIDs must name every stop of the route exactly once.
func (r *GormStopRepository) SaveSequence(ctx context.Context, routeID kernel.UUID, orderedIDs []kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&StopDTO{}).Where("route_id = ?", routeID.Bytes()).Count(&total).Error; err != nil {
		return err
	}
	if int(total) != len(orderedIDs) {
		return errs.NewValueIsInvalidErrorWithCause(
			"stopIds",
			fmt.Errorf("route %s has %d stops, got %d ids", routeID, total, len(orderedIDs)),
		)
	}

	for i, id := range orderedIDs {
		result := db.Model(&StopDTO{}).
			Where("id = ? AND route_id = ?", id.Bytes(), routeID.Bytes()).
			Update("sequence", i+1)
		if result.Error != nil {
			return pgerr.Conflict(result.Error, "stop", id.String(), 0)
		}
		if result.RowsAffected == 0 {
			return errs.NewObjectNotFoundError("stop", id.String())
		}
	}

	return nil
}

// Update writes the lifecycle columns if the stored version still matches.
func (r *GormStopRepository) Update(ctx context.Context, aggregate *stop.Stop) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&StopDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(dto.lifecycleColumns())
	if result.Error != nil {
		return pgerr.Conflict(result.Error, "stop", aggregate.ID().String(), aggregate.Version())
	}

	if result.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&StopDTO{}).Where("id = ?", dto.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return errs.NewObjectNotFoundError("stop", aggregate.ID().String())
		}
		return errs.NewConcurrencyConflictError("stop", aggregate.ID().String(), aggregate.Version())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
