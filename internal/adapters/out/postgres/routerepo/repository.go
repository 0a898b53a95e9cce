package routerepo

import (
	"context"
	"errors"
	"time"

	"lastmile/internal/adapters/out/postgres/pgerr"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// GormRouteRepository implements ports.RouteRepository using GORM.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRouteRepository creates a new GORM route repository.
func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new route.
func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes status and optimisation columns of an existing route.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RouteDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"status":            dto.Status,
			"optimized_at":      dto.OptimizedAt,
			"total_distance_km": dto.TotalDistanceKm,
		})
	if result.Error != nil {
		return pgerr.Conflict(result.Error, "route", aggregate.ID().String(), 0)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a route by ID.
func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	return r.load(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a route and holds a row lock on it until the transaction ends.
func (r *GormRouteRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	rt, err := r.load(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
	if err != nil {
		return nil, pgerr.Conflict(err, "route", id.String(), 0)
	}
	return rt, nil
}

func (r *GormRouteRepository) load(db *gorm.DB, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetUnoptimizedOn returns Planned routes of the given calendar day that have no optimisation yet.
func (r *GormRouteRepository) GetUnoptimizedOn(ctx context.Context, day time.Time) ([]*route.Route, error) {
	var dtos []RouteDTO
	err := r.db.WithContext(ctx).
		Where("scheduled_date = CAST(? AS date)", route.TruncateToDay(day).Format(dateLayout)).
		Where("status = ? AND optimized_at IS NULL", int(route.Planned)).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	routes := make([]*route.Route, 0, len(dtos))
	for _, dto := range dtos {
		rt, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}

	return routes, nil
}
