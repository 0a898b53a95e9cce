// Package kernel provides the domain primitives shared by routes and stops.
//
// The package includes:
//   - UUID: identifier value object with validation and deterministic ordering
//   - Location: latitude/longitude value object and the Haversine DistanceKm
//
// Both are immutable and validated at construction; their zero values fail Validate.
package kernel
