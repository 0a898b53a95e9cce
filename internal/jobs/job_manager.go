package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	routeOptimizationJob *RouteOptimizationJob
	logger               *slog.Logger
}

// NewJobManager creates a job manager. A nil job means scheduled optimisation is disabled.
func NewJobManager(routeOptimizationJob *RouteOptimizationJob, logger *slog.Logger) *JobManager {
	return &JobManager{
		routeOptimizationJob: routeOptimizationJob,
		logger:               logger.With("component", "job_manager"),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if jm.routeOptimizationJob == nil {
		jm.logger.InfoContext(context.Background(), "Scheduled route optimization is disabled")
		return nil
	}

	if err := jm.routeOptimizationJob.Start(); err != nil {
		return fmt.Errorf("failed to start route optimization job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.routeOptimizationJob != nil {
		jm.routeOptimizationJob.Stop()
	}
}
