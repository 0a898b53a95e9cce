package commands_test

import (
	"testing"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"

	"github.com/stretchr/testify/require"
)

var (
	testDay = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
)

func newTestRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.NewRoute(kernel.NewUUID(), testDay, nil)
	require.NoError(t, err)
	return r
}

func newTestStop(t *testing.T, routeID kernel.UUID, seq int, lat, lon float64, ageRestricted bool) *stop.Stop {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	s, err := stop.NewStop(kernel.NewUUID(), routeID, seq, &loc, stop.NewContact("Ada", "", "1 Main St"), ageRestricted)
	require.NoError(t, err)
	return s
}

// londonRoute returns the stops A, B, C, D in input order.
func londonRoute(t *testing.T, routeID kernel.UUID) []*stop.Stop {
	t.Helper()
	return []*stop.Stop{
		newTestStop(t, routeID, 1, 51.5074, -0.1278, false),
		newTestStop(t, routeID, 2, 51.5155, -0.0922, false),
		newTestStop(t, routeID, 3, 51.4994, -0.1746, false),
		newTestStop(t, routeID, 4, 51.5200, -0.1000, false),
	}
}
