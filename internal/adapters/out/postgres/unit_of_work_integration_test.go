package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/adapters/out/postgres/stoprepo"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/clock"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work against a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	metrics   *metrics.Metrics
	factory   ports.UnitOfWorkFactory
}

// commandUoWFactory hands the GORM unit of work to the command handlers.
type commandUoWFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f commandUoWFactory) Create() commands.UoW {
	return f.factory.Create()
}

var workday = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&routerepo.RouteDTO{}, &stoprepo.StopDTO{}))

}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE routes, stops CASCADE").Error)

	suite.metrics = metrics.NewMetrics("test")
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(suite.db, postgres_adapter.WithMetrics(suite.metrics))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestFactoryCreatesSeparateInstances() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2)
	suite.NotNil(uow1.RouteRepository())
	suite.NotNil(uow1.StopRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "second Begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitAndRollbackWithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRouteAndStopsCommitTogether() {
	ctx := context.Background()
	r, stops := suite.newRouteWithStops(3)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.StopRepository().AddAll(ctx, stops))
	suite.Require().NoError(uow.Commit(ctx))

	suite.InDelta(1, testutil.ToFloat64(suite.metrics.CommittedWrites.WithLabelValues("route")), 1e-9)
	suite.InDelta(3, testutil.ToFloat64(suite.metrics.CommittedWrites.WithLabelValues("stop")), 1e-9)

	reader := suite.factory.Create()
	got, err := reader.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.True(r.ID().IsEqual(got.ID()))

	gotStops, err := reader.StopRepository().GetAllByRoute(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Len(gotStops, 3)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackDiscardsRouteAndStops() {
	ctx := context.Background()
	r, stops := suite.newRouteWithStops(2)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.StopRepository().AddAll(ctx, stops))
	suite.Require().NoError(uow.Rollback(ctx))
	suite.Equal(0, testutil.CollectAndCount(suite.metrics.CommittedWrites))

	reader := suite.factory.Create()
	_, err := reader.RouteRepository().Get(ctx, r.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = reader.StopRepository().Get(ctx, stops[0].ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUncommittedWorkIsIsolated() {
	ctx := context.Background()
	r1, _ := suite.newRouteWithStops(0)
	r2, _ := suite.newRouteWithStops(0)

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.RouteRepository().Add(ctx, r1))
	suite.Require().NoError(uow2.RouteRepository().Add(ctx, r2))

	_, err := uow1.RouteRepository().Get(ctx, r2.ID())
	suite.Require().Error(err, "uow1 must not see uncommitted r2")
	_, err = uow2.RouteRepository().Get(ctx, r1.ID())
	suite.Require().Error(err, "uow2 must not see uncommitted r1")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	reader := suite.factory.Create()
	_, err = reader.RouteRepository().Get(ctx, r1.ID())
	suite.Require().NoError(err)
	_, err = reader.RouteRepository().Get(ctx, r2.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRepositoriesWorkWithoutTransaction() {
	ctx := context.Background()
	r, _ := suite.newRouteWithStops(0)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))

	got, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.Planned, got.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDeliveryWorkflowInOneTransaction() {
	ctx := context.Background()
	r, stops := suite.newRouteWithStops(1)

	setup := suite.factory.Create()
	suite.Require().NoError(setup.RouteRepository().Add(ctx, r))
	suite.Require().NoError(setup.StopRepository().AddAll(ctx, stops))

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	s, err := uow.StopRepository().Get(ctx, stops[0].ID())
	suite.Require().NoError(err)
	_, err = s.Apply(stop.Arrive, "", now)
	suite.Require().NoError(err)
	evidence, err := stop.NewEvidence("sig-1", nil, now)
	suite.Require().NoError(err)
	suite.Require().NoError(s.CaptureEvidence(evidence))
	_, err = s.Apply(stop.Deliver, "", now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(uow.StopRepository().Update(ctx, s))

	rt, err := uow.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(rt.Start())
	suite.Require().NoError(rt.Complete())
	suite.Require().NoError(uow.RouteRepository().Update(ctx, rt))

	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	gotStop, err := reader.StopRepository().Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal(stop.Delivered, gotStop.Status())
	suite.Equal(1, gotStop.Version())

	gotRoute, err := reader.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.Completed, gotRoute.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOptimizeWaitsForRouteLockAndSeesCompletion() {
	ctx := context.Background()
	r, stops := suite.newRouteWithStops(2)
	suite.addRoute(r, stops)

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	defer func() { _ = holder.Rollback(ctx) }()
	locked, err := holder.RouteRepository().GetForUpdate(ctx, r.ID())
	suite.Require().NoError(err)

	optimize := commands.NewOptimizeRouteCommandHandler(
		commandUoWFactory{factory: suite.factory}, services.NewRouteOptimizer(), clock.NewFixed(workday))
	cmd, err := commands.NewOptimizeRouteCommand(r.ID(), services.StartAtFirstStop())
	suite.Require().NoError(err)

	done := make(chan error, 1)
	go func() {
		_, handleErr := optimize.Handle(ctx, cmd)
		done <- handleErr
	}()
	suite.waitForLockWaiters(1)

	for _, s := range stops {
		current, getErr := holder.StopRepository().Get(ctx, s.ID())
		suite.Require().NoError(getErr)
		_, applyErr := current.Apply(stop.Fail, "closed", workday)
		suite.Require().NoError(applyErr)
		suite.Require().NoError(holder.StopRepository().Update(ctx, current))
	}
	suite.Require().NoError(locked.Start())
	suite.Require().NoError(locked.Complete())
	suite.Require().NoError(holder.RouteRepository().Update(ctx, locked))
	suite.Require().NoError(holder.Commit(ctx))

	suite.Require().ErrorIs(suite.await(done), errs.ErrValueIsInvalid)

	got, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.Completed, got.Status())
	suite.Nil(got.OptimizedAt())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionTakesRouteLockBeforeStopLock() {
	ctx := context.Background()
	r, stops := suite.newRouteWithStops(2)
	suite.addRoute(r, stops)

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	defer func() { _ = holder.Rollback(ctx) }()
	_, err := holder.RouteRepository().GetForUpdate(ctx, r.ID())
	suite.Require().NoError(err)

	clk := clock.NewFixed(workday)
	transition := commands.NewTransitionStopCommandHandler(
		commandUoWFactory{factory: suite.factory},
		services.NewStopLifecycle(clk, services.NewEvidenceGate(clk)))
	cmd, err := commands.NewTransitionStopCommand(stops[0].ID(), stop.Arrive, services.TransitionPayload{})
	suite.Require().NoError(err)

	done := make(chan error, 1)
	go func() {
		_, handleErr := transition.Handle(ctx, cmd)
		done <- handleErr
	}()
	suite.waitForLockWaiters(1)

	// The waiting transition holds no stop lock, so a stop-only writer is not blocked.
	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	writer := suite.factory.Create()
	suite.Require().NoError(writer.Begin(writeCtx))
	current, err := writer.StopRepository().Get(writeCtx, stops[0].ID())
	suite.Require().NoError(err)
	evidence, err := stop.NewEvidence("sig-1", nil, workday)
	suite.Require().NoError(err)
	suite.Require().NoError(current.CaptureEvidence(evidence))
	suite.Require().NoError(writer.StopRepository().Update(writeCtx, current))
	suite.Require().NoError(writer.Commit(writeCtx))

	suite.Require().NoError(holder.Commit(ctx))

	suite.Require().ErrorIs(suite.await(done), errs.ErrConcurrencyConflict)

	got, err := suite.factory.Create().StopRepository().Get(ctx, stops[0].ID())
	suite.Require().NoError(err)
	suite.Equal(stop.Pending, got.Status())
	suite.True(got.IsEvidenceCaptured())
	suite.Equal(1, got.Version())
}

func (suite *UnitOfWorkIntegrationTestSuite) addRoute(r *route.Route, stops []*stop.Stop) {
	ctx := context.Background()
	setup := suite.factory.Create()
	suite.Require().NoError(setup.RouteRepository().Add(ctx, r))
	suite.Require().NoError(setup.StopRepository().AddAll(ctx, stops))
}

// waitForLockWaiters blocks until n sessions wait on a row lock.
func (suite *UnitOfWorkIntegrationTestSuite) waitForLockWaiters(n int) {
	suite.Require().Eventually(func() bool {
		var waiting int64
		err := suite.db.Raw(
			"SELECT count(*) FROM pg_stat_activity WHERE wait_event_type = 'Lock' AND datname = current_database()",
		).Scan(&waiting).Error
		return err == nil && waiting >= int64(n)
	}, 5*time.Second, 20*time.Millisecond)
}

func (suite *UnitOfWorkIntegrationTestSuite) await(done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		suite.FailNow("handler did not finish after the route lock was released")
		return nil
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) newRouteWithStops(n int) (*route.Route, []*stop.Stop) {
	r, err := route.NewRoute(kernel.NewUUID(), time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), nil)
	suite.Require().NoError(err)

	stops := make([]*stop.Stop, 0, n)
	for i := range n {
		loc, locErr := kernel.NewLocation(51.5+float64(i)/100, -0.12)
		suite.Require().NoError(locErr)
		s, stopErr := stop.NewStop(kernel.NewUUID(), r.ID(), i+1, &loc, stop.NewContact("Ada", "", "1 Main St"), false)
		suite.Require().NoError(stopErr)
		stops = append(stops, s)
	}
	return r, stops
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
