package commands_test

import (
	"errors"
	"testing"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/clock"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTransitionHandler(factory commands.UoWFactory) commands.TransitionStopCommandHandler {
	clk := clock.NewFixed(testNow)
	return commands.NewTransitionStopCommandHandler(factory,
		services.NewStopLifecycle(clk, services.NewEvidenceGate(clk)))
}

func TestNewTransitionStopCommand(t *testing.T) {
	id := kernel.NewUUID()
	payload := services.TransitionPayload{Reason: "gate locked"}

	cmd, err := commands.NewTransitionStopCommand(id, stop.Fail, payload)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.StopID())
	assert.Equal(t, stop.Fail, cmd.Event())
	assert.Equal(t, payload, cmd.Payload())

	_, err = commands.NewTransitionStopCommand(kernel.UUID{}, stop.EventUnknown, payload)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestTransitionStopCommandHandler_Handle_ArriveStartsRoute(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	stops := londonRoute(t, r.ID())
	s := stops[0]
	cmd, err := commands.NewTransitionStopCommand(s.ID(), stop.Arrive, services.TransitionPayload{})
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("StopRepository").Return(stopRepo).Once(),
		uow.On("RouteRepository").Return(routeRepo).Once(),
		stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once(),
		routeRepo.On("GetForUpdate", ctx, r.ID()).Return(r, nil).Once(),
		stopRepo.On("Update", ctx, s).Return(nil).Once(),
		routeRepo.On("Update", ctx, r).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	status, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.Arrived, status)
	assert.Equal(t, testNow, *s.ArrivedAt())
	assert.Equal(t, route.InProgress, r.Status())
	stopRepo.AssertNotCalled(t, "ListByRoute", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	routeRepo.AssertExpectations(t)
}

func TestTransitionStopCommandHandler_Handle_LastStopCompletesRoute(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	require.NoError(t, r.Start())
	first := newTestStop(t, r.ID(), 1, 51.5, -0.1, false)
	_, err := first.Apply(stop.Fail, "closed", testNow)
	require.NoError(t, err)
	last := newTestStop(t, r.ID(), 2, 51.6, -0.1, false)
	_, err = last.Apply(stop.Arrive, "", testNow)
	require.NoError(t, err)

	cmd, err := commands.NewTransitionStopCommand(last.ID(), stop.Deliver,
		services.TransitionPayload{PhotoRefs: []string{"photo/door.jpg"}})
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	stopRepo.On("Get", ctx, last.ID()).Return(last, nil).Once()
	routeRepo.On("GetForUpdate", ctx, r.ID()).Return(r, nil).Once()
	stopRepo.On("Update", ctx, last).Return(nil).Once()
	stopRepo.On("ListByRoute", ctx, r.ID()).Return([]*stop.Stop{first, last}, nil).Once()
	routeRepo.On("Update", ctx, r).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	status, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.Delivered, status)
	assert.True(t, last.IsEvidenceCaptured())
	assert.Equal(t, route.Completed, r.Status())
	routeRepo.AssertExpectations(t)
	stopRepo.AssertExpectations(t)
}

func TestTransitionStopCommandHandler_Handle_RouteStaysInProgress(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	require.NoError(t, r.Start())
	stops := londonRoute(t, r.ID())
	s := stops[1]
	cmd, err := commands.NewTransitionStopCommand(s.ID(), stop.Fail, services.TransitionPayload{Reason: "no access"})
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	routeRepo.On("GetForUpdate", ctx, r.ID()).Return(r, nil).Once()
	stopRepo.On("Update", ctx, s).Return(nil).Once()
	stopRepo.On("ListByRoute", ctx, r.ID()).Return(stops, nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	status, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.Failed, status)
	assert.Equal(t, route.InProgress, r.Status())
	routeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransitionStopCommandHandler_Handle_InvalidTransition(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	s := newTestStop(t, r.ID(), 1, 51.5, -0.1, false)
	cmd, err := commands.NewTransitionStopCommand(s.ID(), stop.Deliver, services.TransitionPayload{SignatureRef: "sig"})
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	routeRepo.On("GetForUpdate", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	status, err := h.Handle(ctx, cmd)

	require.ErrorIs(t, err, stop.ErrInvalidTransition)
	assert.Equal(t, stop.Pending, status)
	stopRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	routeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransitionStopCommandHandler_Handle_ConcurrencyConflict(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	s := newTestStop(t, r.ID(), 1, 51.5, -0.1, false)
	cmd, err := commands.NewTransitionStopCommand(s.ID(), stop.Arrive, services.TransitionPayload{})
	require.NoError(t, err)
	conflict := errs.NewConcurrencyConflictError("stop", s.ID(), s.Version())

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	routeRepo.On("GetForUpdate", ctx, r.ID()).Return(r, nil).Once()
	stopRepo.On("Update", ctx, s).Return(conflict).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransitionStopCommandHandler_Handle_RouteLockConflict(t *testing.T) {
	ctx := t.Context()
	r := newTestRoute(t)
	s := newTestStop(t, r.ID(), 1, 51.5, -0.1, false)
	cmd, err := commands.NewTransitionStopCommand(s.ID(), stop.Arrive, services.TransitionPayload{})
	require.NoError(t, err)
	conflict := errs.NewConcurrencyConflictErrorWithCause("route", r.ID().String(), 0, errors.New("deadlock detected"))

	routeRepo := new(MockRouteRepository)
	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	routeRepo.On("GetForUpdate", ctx, r.ID()).Return(nil, conflict).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newTransitionHandler(factory)
	status, err := h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	assert.Equal(t, stop.Unknown, status)
	assert.Equal(t, stop.Pending, s.Status())
	stopRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
