package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/errs"
)

var (
	// ErrInsufficientData is returned when a route has fewer than two geocoded stops.
	// It unwraps to errs.ErrValueIsInvalid.
	ErrInsufficientData = errs.NewValueIsInvalidErrorWithCause(
		"stops",
		errors.New("at least two stops with coordinates are required to optimize a route"),
	)

	// ErrInvalidStopSet is the sentinel behind InvalidStopSetError.
	ErrInvalidStopSet = errors.New("stop ids do not match the route's stops")
)

// InvalidStopSetError lists the differences between a requested order and the route's stops.
type InvalidStopSetError struct {
	Missing   []kernel.UUID
	Unknown   []kernel.UUID
	Duplicate []kernel.UUID
}

func (e *InvalidStopSetError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinIDs(e.Missing))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+joinIDs(e.Unknown))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate "+joinIDs(e.Duplicate))
	}
	if len(parts) == 0 {
		return ErrInvalidStopSet.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidStopSet, strings.Join(parts, "; "))
}

func (e *InvalidStopSetError) Unwrap() error {
	return ErrInvalidStopSet
}

func joinIDs(ids []kernel.UUID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	return strings.Join(s, ", ")
}

type startKind int

const (
	startFirstStop startKind = iota
	startStop
	startDepot
)

// StartPoint selects where the nearest-neighbour walk begins.
// The zero value starts at the first geocoded stop in input order.
type StartPoint struct {
	kind   startKind
	stopID kernel.UUID
	depot  kernel.Location
}

// StartAtFirstStop begins at the first geocoded stop in input order.
func StartAtFirstStop() StartPoint {
	return StartPoint{kind: startFirstStop}
}

// StartAtStop begins at the given stop, which must be geocoded.
func StartAtStop(id kernel.UUID) StartPoint {
	return StartPoint{kind: startStop, stopID: id}
}

// StartAtDepot begins at a coordinate that is not a stop. The leg from the depot
// to the first stop counts towards the total distance.
func StartAtDepot(depot kernel.Location) StartPoint {
	return StartPoint{kind: startDepot, depot: depot}
}

func (p StartPoint) String() string {
	switch p.kind {
	case startStop:
		return "stop " + p.stopID.String()
	case startDepot:
		return "depot " + p.depot.String()
	case startFirstStop:
		return "first stop"
	}
	return "unknown"
}

// Plan is a visiting order for all stops of a route.
type Plan struct {
	// OrderedStopIDs holds every stop id; position i gets sequence i+1.
	OrderedStopIDs []kernel.UUID
	// TotalDistanceKm sums the legs between consecutive geocoded stops, rounded to 0.01 km.
	TotalDistanceKm float64
}

// Apply writes sequences 1..N to stops following the plan.
func (p Plan) Apply(stops []*stop.Stop) error {
	byID := make(map[kernel.UUID]*stop.Stop, len(stops))
	for _, s := range stops {
		byID[s.ID()] = s
	}
	for i, id := range p.OrderedStopIDs {
		s, ok := byID[id]
		if !ok {
			return &InvalidStopSetError{Unknown: []kernel.UUID{id}}
		}
		if err := s.Resequence(i + 1); err != nil {
			return err
		}
	}
	return nil
}

// RouteOptimizer orders a route's stops with a greedy nearest-neighbour walk over
// Haversine distances. The result is a good heuristic, not an optimal tour.
//
// Rules:
//   - Stops without coordinates keep their relative order and go last
//   - At every step the closest unvisited stop is chosen
//   - Equal distances are broken by the lowest stop id
//   - The input order only matters for the default start and for non-geocoded stops
//
// Example usage:
//
//	optimizer := services.NewRouteOptimizer()
//	plan, err := optimizer.Optimize(stops, services.StartAtFirstStop())
//	if errors.Is(err, services.ErrInsufficientData) {
//	    // nothing to optimise
//	}
//	err = plan.Apply(stops)
type RouteOptimizer struct{}

// NewRouteOptimizer creates a RouteOptimizer.
func NewRouteOptimizer() RouteOptimizer {
	return RouteOptimizer{}
}

// Optimize computes a nearest-neighbour order for stops. Stops are not modified.
func (o RouteOptimizer) Optimize(stops []*stop.Stop, start StartPoint) (Plan, error) {
	if err := validateStops(stops); err != nil {
		return Plan{}, err
	}

	var geocoded, rest []*stop.Stop
	for _, s := range stops {
		if s.HasLocation() {
			geocoded = append(geocoded, s)
		} else {
			rest = append(rest, s)
		}
	}

	if len(geocoded) < 2 {
		return Plan{}, ErrInsufficientData
	}

	ordered := make([]kernel.UUID, 0, len(stops))
	visited := make([]bool, len(geocoded))
	total := 0.0

	var current kernel.Location
	switch start.kind {
	case startDepot:
		if err := start.depot.Validate(); err != nil {
			return Plan{}, err
		}
		current = start.depot
	case startStop:
		idx := indexOf(geocoded, start.stopID)
		if idx < 0 {
			return Plan{}, errs.NewValueIsInvalidErrorWithCause(
				"start",
				fmt.Errorf("%s is not a geocoded stop of this route", start.stopID),
			)
		}
		visited[idx] = true
		current = *geocoded[idx].Location()
		ordered = append(ordered, geocoded[idx].ID())
	case startFirstStop:
		visited[0] = true
		current = *geocoded[0].Location()
		ordered = append(ordered, geocoded[0].ID())
	}

	for len(ordered) < len(geocoded) {
		next, distance := o.findNearest(current, geocoded, visited)
		visited[next] = true
		total += distance
		current = *geocoded[next].Location()
		ordered = append(ordered, geocoded[next].ID())
	}

	for _, s := range rest {
		ordered = append(ordered, s.ID())
	}

	return Plan{
		OrderedStopIDs:  ordered,
		TotalDistanceKm: roundKm(total),
	}, nil
}

// Reorder validates a manually chosen order. orderedIDs must contain every stop
// of the route exactly once. The returned plan carries the distance of the
// chosen order over its geocoded stops.
func (o RouteOptimizer) Reorder(stops []*stop.Stop, orderedIDs []kernel.UUID) (Plan, error) {
	if err := validateStops(stops); err != nil {
		return Plan{}, err
	}

	byID := make(map[kernel.UUID]*stop.Stop, len(stops))
	for _, s := range stops {
		byID[s.ID()] = s
	}

	var setErr InvalidStopSetError
	seen := make(map[kernel.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		switch {
		case seen[id]:
			setErr.Duplicate = append(setErr.Duplicate, id)
		case byID[id] == nil:
			setErr.Unknown = append(setErr.Unknown, id)
		}
		seen[id] = true
	}
	for _, s := range stops {
		if !seen[s.ID()] {
			setErr.Missing = append(setErr.Missing, s.ID())
		}
	}
	if len(setErr.Missing)+len(setErr.Unknown)+len(setErr.Duplicate) > 0 {
		return Plan{}, &setErr
	}

	total := 0.0
	var prev *kernel.Location
	for _, id := range orderedIDs {
		loc := byID[id].Location()
		if loc == nil {
			continue
		}
		if prev != nil {
			total += prev.DistanceTo(*loc)
		}
		prev = loc
	}

	return Plan{
		OrderedStopIDs:  append([]kernel.UUID(nil), orderedIDs...),
		TotalDistanceKm: roundKm(total),
	}, nil
}

// findNearest returns the index of the closest unvisited stop. Ties go to the lowest id.
func (o RouteOptimizer) findNearest(from kernel.Location, stops []*stop.Stop, visited []bool) (int, float64) {
	var (
		best         = -1
		bestDistance = math.MaxFloat64
	)

	for i, s := range stops {
		if visited[i] {
			continue
		}

		d := from.DistanceTo(*s.Location())
		if best < 0 || d < bestDistance || (d == bestDistance && s.ID().Less(stops[best].ID())) {
			best = i
			bestDistance = d
		}
	}

	return best, bestDistance
}

func validateStops(stops []*stop.Stop) error {
	seen := make(map[kernel.UUID]bool, len(stops))
	for _, s := range stops {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID()] {
			return &InvalidStopSetError{Duplicate: []kernel.UUID{s.ID()}}
		}
		seen[s.ID()] = true
	}
	return nil
}

func indexOf(stops []*stop.Stop, id kernel.UUID) int {
	for i, s := range stops {
		if s.ID().IsEqual(id) {
			return i
		}
	}
	return -1
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
