// Package jobs provides scheduled background tasks built on github.com/robfig/cron/v3.
//
// # Available Jobs
//
// RouteOptimizationJob runs the nearest-neighbour optimiser over the current
// day's Planned routes that were never optimised. Routes with fewer than two
// geocoded stops are skipped. Each route is optimised in its own transaction.
//
// # Usage
//
//	job := jobs.NewRouteOptimizationJob(handler, clock.NewSystem(), "0 0 5 * * *", m, logger)
//	jobManager := jobs.NewJobManager(job, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron format with a leading seconds field.
// Passing a nil job to NewJobManager disables scheduling.
package jobs
