package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"gorm.io/gorm"
)

// GetRouteQueryHandler reads a route and its stops with raw SQL.
type GetRouteQueryHandler struct {
	db *gorm.DB
}

func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError when the route does not exist.
// Stops are ordered by sequence; stops without coordinates have an empty Geohash.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (*GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	response, err := h.readRoute(db, query.RouteID())
	if err != nil {
		return nil, err
	}

	stops, err := h.readStops(db, query.RouteID())
	if err != nil {
		return nil, err
	}
	response.Stops = stops

	return response, nil
}

func (h GetRouteQueryHandler) readRoute(db *gorm.DB, routeID kernel.UUID) (*GetRouteQueryResponse, error) {
	row := db.Raw(`
		SELECT
			id,
			scheduled_date,
			driver_id,
			status,
			optimized_at,
			total_distance_km
		FROM routes
		WHERE id = ?
	`, routeID.Bytes()).Row()

	var (
		id          uuid.UUID
		driverID    uuid.NullUUID
		status      int
		optimizedAt sql.NullTime
		response    GetRouteQueryResponse
	)
	err := row.Scan(&id, &response.ScheduledDate, &driverID, &status, &optimizedAt, &response.TotalDistanceKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("route", routeID.String())
		}
		return nil, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	if driverID.Valid {
		dID, idErr := kernel.UUIDFromBytes(driverID.UUID[:])
		if idErr != nil {
			return nil, idErr
		}
		response.DriverID = &dID
	}
	response.ScheduledDate = route.TruncateToDay(response.ScheduledDate)
	response.Status = route.Status(status).String()
	response.OptimizedAt = nullTime(optimizedAt)

	return &response, nil
}

func (h GetRouteQueryHandler) readStops(db *gorm.DB, routeID kernel.UUID) ([]RouteStopView, error) {
	rows, err := db.Raw(`
		SELECT
			id,
			sequence,
			latitude,
			longitude,
			contact_name,
			contact_phone,
			contact_address,
			age_restricted,
			status,
			otp_code IS NOT NULL,
			otp_verified,
			evidence_captured,
			arrived_at,
			completed_at,
			failure_reason,
			version
		FROM stops
		WHERE route_id = ?
		ORDER BY sequence, id
	`, routeID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]RouteStopView, 0)
	for rows.Next() {
		var (
			view                 RouteStopView
			id                   uuid.UUID
			latitude, longitude  sql.NullFloat64
			status               int
			arrivedAt, completed sql.NullTime
		)

		err = rows.Scan(
			&id,
			&view.Sequence,
			&latitude,
			&longitude,
			&view.ContactName,
			&view.ContactPhone,
			&view.Address,
			&view.AgeRestricted,
			&status,
			&view.OtpIssued,
			&view.OtpVerified,
			&view.EvidenceCaptured,
			&arrivedAt,
			&completed,
			&view.FailureReason,
			&view.Version,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}

		if latitude.Valid && longitude.Valid {
			loc, locErr := kernel.NewLocation(latitude.Float64, longitude.Float64)
			if locErr != nil {
				return nil, locErr
			}
			view.Location = &loc
			view.Geohash = geohash.EncodeWithPrecision(loc.Latitude(), loc.Longitude(), GeohashPrecision)
		}

		view.Status = stop.Status(status).String()
		view.ArrivedAt = nullTime(arrivedAt)
		view.CompletedAt = nullTime(completed)
		stops = append(stops, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stops, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
