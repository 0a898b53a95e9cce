// Package postgres provides the GORM-backed unit of work.
//
// A unit of work owns at most one transaction at a time. Repositories obtained
// from it run inside that transaction while it is open and against the plain
// connection otherwise.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.RouteRepository().Add(ctx, r); err != nil {
//	    return err
//	}
//	if err := uow.StopRepository().AddAll(ctx, stops); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Each goroutine must use its own UnitOfWork.
package postgres

import (
	"context"

	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/adapters/out/postgres/stoprepo"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/metrics"

	"gorm.io/gorm"
)

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates GormUnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

// FactoryOption configures a GormUnitOfWorkFactory.
type FactoryOption func(*GormUnitOfWorkFactory)

// WithMetrics counts the aggregate writes of every committed transaction.
func WithMetrics(m *metrics.Metrics) FactoryOption {
	return func(f *GormUnitOfWorkFactory) {
		f.metrics = m
	}
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB, opts ...FactoryOption) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{db: db}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		metrics:           f.metrics,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records the
// aggregates written through its repositories. Writes are reported once the
// transaction commits; a rollback forgets them.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	metrics           *metrics.Metrics
	trackedAggregates []trackedAggregate
}

// Begin opens a transaction. Calling it again while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalises the open transaction.
// Returns gorm.ErrInvalidTransaction when none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.resetTracked()
		return err
	}

	uow.reportCommitted()
	return nil
}

// Rollback discards the open transaction.
// Returns gorm.ErrInvalidTransaction when none is open, which callers deferring
// it after Commit ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.resetTracked()
	return err
}

// RouteRepository returns a route repository bound to the current transaction, if any.
func (uow *GormUnitOfWork) RouteRepository() ports.RouteRepository {
	return routerepo.NewGormRouteRepository(uow.conn(), uow)
}

// StopRepository returns a stop repository bound to the current transaction, if any.
func (uow *GormUnitOfWork) StopRepository() ports.StopRepository {
	return stoprepo.NewGormStopRepository(uow.conn(), uow)
}

// TrackAggregate records an aggregate written through this unit of work.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) reportCommitted() {
	if uow.metrics != nil {
		for _, tracked := range uow.trackedAggregates {
			uow.metrics.CommittedWrites.WithLabelValues(aggregateName(tracked.Aggregate)).Inc()
		}
	}
	uow.resetTracked()
}

func (uow *GormUnitOfWork) resetTracked() {
	uow.trackedAggregates = uow.trackedAggregates[:0]
}

func aggregateName(aggregate any) string {
	switch aggregate.(type) {
	case *route.Route:
		return "route"
	case *stop.Stop:
		return "stop"
	default:
		return "other"
	}
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
