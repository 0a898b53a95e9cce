package queries_test

import (
	"testing"

	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetRouteQuery(t *testing.T) {
	id := kernel.NewUUID()

	query, err := queries.NewGetRouteQuery(id)

	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.True(t, id.IsEqual(query.RouteID()))
}

func TestNewGetRouteQuery_ZeroID(t *testing.T) {
	_, err := queries.NewGetRouteQuery(kernel.UUID{})

	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestGetRouteQuery_ZeroValueIsInvalid(t *testing.T) {
	err := queries.GetRouteQuery{}.Validate()

	require.ErrorIs(t, err, queries.ErrGetRouteQueryIsNotConstructed)
}
