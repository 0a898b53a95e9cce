// Package route contains the Route aggregate: a driver's ordered list of stops
// for one scheduled day.
//
// A Route does not own its stops in memory. Stops reference the route by id and
// are loaded through the stop repository; the route keeps the day-level state:
// status, assigned driver and the result of the latest optimisation.
//
// Status transitions:
//
//	Planned ──> InProgress ──> Completed
//	   │                          ^
//	   └──────────────────────────┘
//
// A route starts when its first stop is arrived at (or failed) and completes
// once every stop reached a final status.
package route
