package routerepo_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

var scheduledDay = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

type RouteRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *routerepo.GormRouteRepository
	tracker    *MockAggregateTracker
}

func (suite *RouteRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&routerepo.RouteDTO{}))
}

func (suite *RouteRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE routes CASCADE").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = routerepo.NewGormRouteRepository(suite.db, suite.tracker)
}

func (suite *RouteRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RouteRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()
	driverID := kernel.NewUUID()
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay.Add(15*time.Hour), &driverID)
	suite.Require().NoError(err)

	suite.tracker.On("TrackAggregate", r.ID(), r).Once()
	suite.Require().NoError(suite.repository.Add(ctx, r))

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.True(r.ID().IsEqual(got.ID()))
	suite.True(scheduledDay.Equal(got.ScheduledDate()))
	suite.Require().NotNil(got.DriverID())
	suite.True(driverID.IsEqual(*got.DriverID()))
	suite.Equal(route.Planned, got.Status())
	suite.False(got.IsOptimized())
	suite.InDelta(0.0, got.TotalDistanceKm(), 1e-9)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestAddWithoutDriver() {
	ctx := context.Background()
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay, nil)
	suite.Require().NoError(err)

	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, r))

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Nil(got.DriverID())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestAddDuplicateFails() {
	ctx := context.Background()
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay, nil)
	suite.Require().NoError(err)

	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, r))
	suite.Require().Error(suite.repository.Add(ctx, r))
}

func (suite *RouteRepositoryIntegrationTestSuite) TestUpdatePersistsOptimisationAndStatus() {
	ctx := context.Background()
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay, nil)
	suite.Require().NoError(err)

	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, r))

	optimizedAt := time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC)
	suite.Require().NoError(r.MarkOptimized(9.09, optimizedAt))
	suite.Require().NoError(r.Start())
	suite.Require().NoError(suite.repository.Update(ctx, r))

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.InProgress, got.Status())
	suite.Require().NotNil(got.OptimizedAt())
	suite.True(optimizedAt.Equal(*got.OptimizedAt()))
	suite.InDelta(9.09, got.TotalDistanceKm(), 1e-9)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestUpdateMissingRoute() {
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay, nil)
	suite.Require().NoError(err)

	err = suite.repository.Update(context.Background(), r)
	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetNotFound() {
	id := kernel.NewUUID()

	_, err := suite.repository.Get(context.Background(), id)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Contains(err.Error(), id.String())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetRejectsZeroID() {
	_, err := suite.repository.Get(context.Background(), kernel.UUID{})
	suite.Require().ErrorIs(err, kernel.ErrUUIDIsNotConstructed)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetForUpdate() {
	ctx := context.Background()
	r, err := route.NewRoute(kernel.NewUUID(), scheduledDay, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, r))

	tx := suite.db.Begin()
	defer tx.Rollback()
	got, err := routerepo.NewGormRouteRepository(tx, suite.tracker).GetForUpdate(ctx, r.ID())

	suite.Require().NoError(err)
	suite.True(r.ID().IsEqual(got.ID()))
	suite.Equal(route.Planned, got.Status())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetForUpdateNotFound() {
	_, err := suite.repository.GetForUpdate(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetForUpdate(context.Background(), kernel.UUID{})
	suite.Require().ErrorIs(err, kernel.ErrUUIDIsNotConstructed)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetUnoptimizedOn() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	pending := suite.addRoute(scheduledDay)
	pendingToo := suite.addRoute(scheduledDay)

	optimized := suite.addRoute(scheduledDay)
	suite.Require().NoError(optimized.MarkOptimized(1.5, scheduledDay.Add(time.Hour)))
	suite.Require().NoError(suite.repository.Update(ctx, optimized))

	started := suite.addRoute(scheduledDay)
	suite.Require().NoError(started.Start())
	suite.Require().NoError(suite.repository.Update(ctx, started))

	suite.addRoute(scheduledDay.AddDate(0, 0, 1))

	got, err := suite.repository.GetUnoptimizedOn(ctx, scheduledDay.Add(13*time.Hour))
	suite.Require().NoError(err)

	gotIDs := make([]string, 0, len(got))
	for _, r := range got {
		gotIDs = append(gotIDs, r.ID().String())
	}
	suite.ElementsMatch([]string{pending.ID().String(), pendingToo.ID().String()}, gotIDs)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetUnoptimizedOnEmptyDay() {
	got, err := suite.repository.GetUnoptimizedOn(context.Background(), scheduledDay)
	suite.Require().NoError(err)
	suite.Empty(got)
}

func (suite *RouteRepositoryIntegrationTestSuite) addRoute(day time.Time) *route.Route {
	r, err := route.NewRoute(kernel.NewUUID(), day, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), r))
	return r
}

func TestRouteRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RouteRepositoryIntegrationTestSuite))
}
