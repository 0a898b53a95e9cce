package http_test

import (
	"context"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
)

type MockCreateRouteHandler struct{ mock.Mock }

func (m *MockCreateRouteHandler) Handle(ctx context.Context, cmd commands.CreateRouteCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockGetRouteHandler struct{ mock.Mock }

func (m *MockGetRouteHandler) Handle(
	ctx context.Context,
	query queries.GetRouteQuery,
) (*queries.GetRouteQueryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.GetRouteQueryResponse), args.Error(1)
}

type MockOptimizeRouteHandler struct{ mock.Mock }

func (m *MockOptimizeRouteHandler) Handle(ctx context.Context, cmd commands.OptimizeRouteCommand) (services.Plan, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(services.Plan), args.Error(1)
}

type MockReorderStopsHandler struct{ mock.Mock }

func (m *MockReorderStopsHandler) Handle(ctx context.Context, cmd commands.ReorderStopsCommand) (services.Plan, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(services.Plan), args.Error(1)
}

type MockTransitionStopHandler struct{ mock.Mock }

func (m *MockTransitionStopHandler) Handle(ctx context.Context, cmd commands.TransitionStopCommand) (stop.Status, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(stop.Status), args.Error(1)
}

type MockGenerateOtpHandler struct{ mock.Mock }

func (m *MockGenerateOtpHandler) Handle(
	ctx context.Context,
	cmd commands.GenerateOtpCommand,
) (commands.GenerateOtpResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.GenerateOtpResult), args.Error(1)
}

type MockVerifyOtpHandler struct{ mock.Mock }

func (m *MockVerifyOtpHandler) Handle(ctx context.Context, cmd commands.VerifyOtpCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockCaptureEvidenceHandler struct{ mock.Mock }

func (m *MockCaptureEvidenceHandler) Handle(ctx context.Context, cmd commands.CaptureEvidenceCommand) error {
	return m.Called(ctx, cmd).Error(0)
}
