// Package stop provides the Stop aggregate: one delivery address on a route
// together with its delivery lifecycle.
//
// The package includes:
//   - Stop: the aggregate root holding sequence, location, contact, OTP and evidence
//   - Status and Event: the lifecycle state machine with an explicit transition table
//   - Otp: the one-time passcode issued for age-restricted deliveries
//   - Evidence: proof of delivery (signature and/or photos)
//
// Key business rules:
//   - Lifecycle is Pending -> Arrived -> Delivered, with Failed reachable from Pending and Arrived
//   - Delivered and Failed are final; every event on them is an InvalidTransitionError
//   - Delivery requires captured evidence, and a verified OTP when the stop is age-restricted
//   - An OTP is six decimal digits and expires a fixed duration after it was generated
package stop
