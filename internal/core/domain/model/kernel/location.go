package kernel

import (
	"errors"
	"fmt"
	"math"

	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in decimal degrees.
	LongitudeMax = 180.0

	// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
	EarthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when a Location was not built with NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is a geocoordinate (latitude, longitude in decimal degrees).
// It is an immutable value object: both components are always present and in range,
// so a stop can never carry half a coordinate.
//
// Example:
//
//	loc, err := kernel.NewLocation(51.5074, -0.1278)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(51.507400,-0.127800)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation validates both components and returns the coordinate.
// Out-of-range or NaN components produce errs.ValueIsOutOfRangeError; when both
// are wrong the errors are joined.
func NewLocation(latitude, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewOptionalLocation builds a Location from nullable components. Both nil means
// "not geocoded" and yields nil; exactly one nil is rejected.
func NewOptionalLocation(latitude, longitude *float64) (*Location, error) {
	switch {
	case latitude == nil && longitude == nil:
		return nil, nil //nolint:nilnil // absent coordinate is a valid result
	case latitude == nil:
		return nil, errs.NewValueIsRequiredErrorWithCause("latitude", errors.New("longitude is set without latitude"))
	case longitude == nil:
		return nil, errs.NewValueIsRequiredErrorWithCause("longitude", errors.New("latitude is set without longitude"))
	}

	loc, err := NewLocation(*latitude, *longitude)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Validate reports whether the Location was produced by NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares both components exactly.
func (l Location) IsEqual(other Location) bool {
	return l.latitude == other.latitude && l.longitude == other.longitude
}

// DistanceTo returns the great-circle distance to other in kilometres.
// See DistanceKm.
func (l Location) DistanceTo(other Location) float64 {
	return DistanceKm(l, other)
}

// DistanceKm computes the great-circle distance between a and b in kilometres
// using the Haversine formula with EarthRadiusKm.
//
// The result is symmetric, non-negative and zero for identical points. Range
// checking is NewLocation's job, so there is no error path here.
//
// Example:
//
//	london, _ := kernel.NewLocation(51.5074, -0.1278)
//	paris, _ := kernel.NewLocation(48.8566, 2.3522)
//	km := kernel.DistanceKm(london, paris) // ≈ 343.56
func DistanceKm(a, b Location) float64 {
	lat1 := degreesToRadians(a.latitude)
	lat2 := degreesToRadians(b.latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(b.longitude - a.longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h marginally past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func (l *Location) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}

	l.longitude = longitude
	return nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
