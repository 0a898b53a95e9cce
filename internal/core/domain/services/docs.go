// Package services holds the domain services of the delivery lifecycle that do
// not belong to a single aggregate.
//
// The package includes:
//   - RouteOptimizer: nearest-neighbour stop ordering and manual reorder validation
//   - OtpVerifier: issuing and checking age-verification passcodes
//   - EvidenceGate: recording signature and photo proof of delivery
//   - StopLifecycle: applying Arrive, Deliver and Fail events to a stop
//
// Services are stateless apart from injected collaborators (clock, random source)
// and never touch persistence.
package services
