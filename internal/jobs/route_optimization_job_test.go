package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/jobs"
	"lastmile/internal/pkg/clock"
	"lastmile/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScheduledRoutesHandler struct {
	mock.Mock
}

func (m *MockScheduledRoutesHandler) Handle(
	ctx context.Context,
	cmd commands.OptimizeScheduledRoutesCommand,
) (commands.OptimizeScheduledRoutesResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.OptimizeScheduledRoutesResult), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouteOptimizationJob_RunOnceUsesToday(t *testing.T) {
	now := time.Date(2026, 5, 4, 5, 0, 0, 0, time.UTC)
	handler := new(MockScheduledRoutesHandler)
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.OptimizeScheduledRoutesCommand) bool {
		return cmd.Day().Equal(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	})).Return(commands.OptimizeScheduledRoutesResult{
		Optimized: []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()},
		Skipped:   []kernel.UUID{kernel.NewUUID()},
	}, nil).Once()
	m := metrics.NewMetrics("lastmile")

	job := jobs.NewRouteOptimizationJob(handler, clock.NewFixed(now), "", m, discardLogger())
	job.RunOnce(context.Background())

	handler.AssertExpectations(t)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ScheduledRuns.WithLabelValues("optimized")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScheduledRuns.WithLabelValues("skipped")), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ScheduledRuns.WithLabelValues("failed")), 1e-9)
}

func TestRouteOptimizationJob_RunOnceCountsFailures(t *testing.T) {
	handler := new(MockScheduledRoutesHandler)
	handler.On("Handle", mock.Anything, mock.Anything).Return(commands.OptimizeScheduledRoutesResult{
		Optimized: []kernel.UUID{kernel.NewUUID()},
	}, errors.New("db down")).Once()
	m := metrics.NewMetrics("lastmile")

	job := jobs.NewRouteOptimizationJob(handler, clock.NewFixed(time.Now()), "", m, discardLogger())
	job.RunOnce(context.Background())

	assert.InDelta(t, 1, testutil.ToFloat64(m.ScheduledRuns.WithLabelValues("optimized")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScheduledRuns.WithLabelValues("failed")), 1e-9)
}

func TestRouteOptimizationJob_StartRejectsBadSchedule(t *testing.T) {
	job := jobs.NewRouteOptimizationJob(new(MockScheduledRoutesHandler), clock.NewSystem(), "every morning",
		metrics.NewMetrics("lastmile"), discardLogger())

	require.Error(t, job.Start())
}

func TestRouteOptimizationJob_StartStop(t *testing.T) {
	job := jobs.NewRouteOptimizationJob(new(MockScheduledRoutesHandler), clock.NewSystem(), "0 0 5 * * *",
		metrics.NewMetrics("lastmile"), discardLogger())

	require.NoError(t, job.Start())
	job.Stop()
}

func TestJobManager_DisabledJob(t *testing.T) {
	manager := jobs.NewJobManager(nil, discardLogger())

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}

func TestJobManager_StartFailureIsWrapped(t *testing.T) {
	job := jobs.NewRouteOptimizationJob(new(MockScheduledRoutesHandler), clock.NewSystem(), "bad",
		metrics.NewMetrics("lastmile"), discardLogger())
	manager := jobs.NewJobManager(job, discardLogger())

	err := manager.StartAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "route optimization job")
}
