package jobs

import (
	"context"
	"log/slog"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/pkg/clock"
	"lastmile/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultOptimizationSchedule runs the job at 05:00 every day. The parser expects a seconds field.
const DefaultOptimizationSchedule = "0 0 5 * * *"

type scheduledRoutesHandler interface {
	Handle(ctx context.Context, cmd commands.OptimizeScheduledRoutesCommand) (commands.OptimizeScheduledRoutesResult, error)
}

// RouteOptimizationJob optimises the current day's Planned routes that nobody optimised by hand.
type RouteOptimizationJob struct {
	handler  scheduledRoutesHandler
	clock    clock.Clock
	schedule string
	metrics  *metrics.Metrics
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewRouteOptimizationJob creates the job. An empty schedule falls back to DefaultOptimizationSchedule.
func NewRouteOptimizationJob(
	handler scheduledRoutesHandler,
	clk clock.Clock,
	schedule string,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RouteOptimizationJob {
	if schedule == "" {
		schedule = DefaultOptimizationSchedule
	}
	return &RouteOptimizationJob{
		handler:  handler,
		clock:    clk,
		schedule: schedule,
		metrics:  m,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "route_optimization_job"),
	}
}

// Start registers the schedule and starts the cron runner.
func (j *RouteOptimizationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Route optimization job started", "schedule", j.schedule)
	return nil
}

// Stop stops the cron runner and waits for a running optimisation to finish.
func (j *RouteOptimizationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Route optimization job stopped")
}

// RunOnce optimises today's routes. Failures are logged; the next run retries them.
func (j *RouteOptimizationJob) RunOnce(ctx context.Context) {
	today := j.clock.Now()

	cmd, err := commands.NewOptimizeScheduledRoutesCommand(today)
	if err != nil {
		j.logger.ErrorContext(ctx, "Route optimization job failed", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	j.metrics.ScheduledRuns.WithLabelValues("optimized").Add(float64(len(result.Optimized)))
	j.metrics.ScheduledRuns.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
	if err != nil {
		j.metrics.ScheduledRuns.WithLabelValues("failed").Inc()
		j.logger.ErrorContext(ctx, "Route optimization job failed",
			"day", cmd.Day().Format("2006-01-02"),
			"error", err,
		)
	}

	if len(result.Optimized) > 0 || len(result.Skipped) > 0 {
		j.logger.InfoContext(ctx, "Routes optimized",
			"day", cmd.Day().Format("2006-01-02"),
			"optimized", len(result.Optimized),
			"skipped", len(result.Skipped),
		)
	}
}
