package commands_test

import (
	"context"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) GetUnoptimizedOn(ctx context.Context, day time.Time) ([]*route.Route, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

type MockStopRepository struct{ mock.Mock }

func (m *MockStopRepository) AddAll(ctx context.Context, stops []*stop.Stop) error {
	args := m.Called(ctx, stops)
	return args.Error(0)
}

func (m *MockStopRepository) Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) GetAllByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) ListByRoute(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) SaveSequence(ctx context.Context, routeID kernel.UUID, orderedIDs []kernel.UUID) error {
	args := m.Called(ctx, routeID, orderedIDs)
	return args.Error(0)
}

func (m *MockStopRepository) Update(ctx context.Context, s *stop.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) RouteRepository() ports.RouteRepository {
	args := m.Called()
	return args.Get(0).(ports.RouteRepository)
}

func (m *MockUoW) StopRepository() ports.StopRepository {
	args := m.Called()
	return args.Get(0).(ports.StopRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockStopUoWFactory struct{ mock.Mock }

func (m *MockStopUoWFactory) Create() commands.StopUoW {
	args := m.Called()
	return args.Get(0).(commands.StopUoW)
}
