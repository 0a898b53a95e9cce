package http

import (
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// newCreateRouteCommand assigns fresh ids to the route and stops that came without one.
func newCreateRouteCommand(body NewRoute) (commands.CreateRouteCommand, error) {
	routeID, err := optionalID(body.ID)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}

	var driverID *kernel.UUID
	if body.DriverID != nil {
		id, idErr := kernel.UUIDFromBytes(body.DriverID[:])
		if idErr != nil {
			return commands.CreateRouteCommand{}, idErr
		}
		driverID = &id
	}

	stops := make([]commands.NewRouteStop, 0, len(body.Stops))
	for _, in := range body.Stops {
		id, idErr := optionalID(in.ID)
		if idErr != nil {
			return commands.CreateRouteCommand{}, idErr
		}

		location, locErr := kernel.NewOptionalLocation(in.Latitude, in.Longitude)
		if locErr != nil {
			return commands.CreateRouteCommand{}, locErr
		}

		stops = append(stops, commands.NewRouteStop{
			ID:            id,
			Location:      location,
			Contact:       stop.NewContact(in.ContactName, in.ContactPhone, in.Address),
			AgeRestricted: in.AgeRestricted,
		})
	}

	return commands.NewCreateRouteCommand(routeID, body.ScheduledDate.Time, driverID, stops)
}

func optionalID(raw *openapi_types.UUID) (kernel.UUID, error) {
	if raw == nil {
		return kernel.NewUUID(), nil
	}
	return kernel.UUIDFromBytes(raw[:])
}

// startPoint picks the walk start: an explicit stop wins over a depot, and
// neither means the first geocoded stop.
func startPoint(body OptimizeRequest) (services.StartPoint, error) {
	switch {
	case body.StartStopID != nil:
		id, err := kernel.UUIDFromBytes(body.StartStopID[:])
		if err != nil {
			return services.StartPoint{}, err
		}
		return services.StartAtStop(id), nil
	case body.Depot != nil:
		depot, err := kernel.NewLocation(body.Depot.Latitude, body.Depot.Longitude)
		if err != nil {
			return services.StartPoint{}, err
		}
		return services.StartAtDepot(depot), nil
	default:
		return services.StartAtFirstStop(), nil
	}
}

func toPlan(routeID kernel.UUID, plan services.Plan) Plan {
	ids := make([]openapi_types.UUID, 0, len(plan.OrderedStopIDs))
	for _, id := range plan.OrderedStopIDs {
		ids = append(ids, id.Bytes())
	}

	return Plan{
		RouteID:         routeID.Bytes(),
		OrderedStopIDs:  ids,
		TotalDistanceKm: plan.TotalDistanceKm,
	}
}

func toRoute(view *queries.GetRouteQueryResponse) Route {
	out := Route{
		ID:              view.ID.Bytes(),
		ScheduledDate:   openapi_types.Date{Time: view.ScheduledDate},
		Status:          view.Status,
		OptimizedAt:     view.OptimizedAt,
		TotalDistanceKm: view.TotalDistanceKm,
		Stops:           make([]Stop, 0, len(view.Stops)),
	}

	if view.DriverID != nil {
		id := view.DriverID.Bytes()
		out.DriverID = &id
	}

	for _, s := range view.Stops {
		st := Stop{
			ID:               s.ID.Bytes(),
			Sequence:         s.Sequence,
			Geohash:          s.Geohash,
			ContactName:      s.ContactName,
			ContactPhone:     s.ContactPhone,
			Address:          s.Address,
			AgeRestricted:    s.AgeRestricted,
			Status:           s.Status,
			OtpIssued:        s.OtpIssued,
			OtpVerified:      s.OtpVerified,
			EvidenceCaptured: s.EvidenceCaptured,
			ArrivedAt:        s.ArrivedAt,
			CompletedAt:      s.CompletedAt,
			FailureReason:    s.FailureReason,
			Version:          s.Version,
		}
		if s.Location != nil {
			st.Location = &Location{Latitude: s.Location.Latitude(), Longitude: s.Location.Longitude()}
		}
		out.Stops = append(out.Stops, st)
	}

	return out
}
