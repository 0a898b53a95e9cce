package http

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type NewStop struct {
	ID            *openapi_types.UUID `json:"id,omitempty"`
	Latitude      *float64            `json:"latitude,omitempty"`
	Longitude     *float64            `json:"longitude,omitempty"`
	ContactName   string              `json:"contactName"`
	ContactPhone  string              `json:"contactPhone"`
	Address       string              `json:"address"`
	AgeRestricted bool                `json:"ageRestricted"`
}

type NewRoute struct {
	ID            *openapi_types.UUID `json:"id,omitempty"`
	ScheduledDate openapi_types.Date  `json:"scheduledDate"`
	DriverID      *openapi_types.UUID `json:"driverId,omitempty"`
	Stops         []NewStop           `json:"stops"`
}

type RouteCreated struct {
	ID openapi_types.UUID `json:"id"`
}

type Stop struct {
	ID               openapi_types.UUID `json:"id"`
	Sequence         int                `json:"sequence"`
	Location         *Location          `json:"location,omitempty"`
	Geohash          string             `json:"geohash,omitempty"`
	ContactName      string             `json:"contactName"`
	ContactPhone     string             `json:"contactPhone"`
	Address          string             `json:"address"`
	AgeRestricted    bool               `json:"ageRestricted"`
	Status           string             `json:"status"`
	OtpIssued        bool               `json:"otpIssued"`
	OtpVerified      bool               `json:"otpVerified"`
	EvidenceCaptured bool               `json:"evidenceCaptured"`
	ArrivedAt        *time.Time         `json:"arrivedAt,omitempty"`
	CompletedAt      *time.Time         `json:"completedAt,omitempty"`
	FailureReason    string             `json:"failureReason,omitempty"`
	Version          int                `json:"version"`
}

type Route struct {
	ID              openapi_types.UUID  `json:"id"`
	ScheduledDate   openapi_types.Date  `json:"scheduledDate"`
	DriverID        *openapi_types.UUID `json:"driverId,omitempty"`
	Status          string              `json:"status"`
	OptimizedAt     *time.Time          `json:"optimizedAt,omitempty"`
	TotalDistanceKm float64             `json:"totalDistanceKm"`
	Stops           []Stop              `json:"stops"`
}

type OptimizeRequest struct {
	StartStopID *openapi_types.UUID `json:"startStopId,omitempty"`
	Depot       *Location           `json:"depot,omitempty"`
}

type ReorderRequest struct {
	StopIDs []openapi_types.UUID `json:"stopIds"`
}

type Plan struct {
	RouteID         openapi_types.UUID   `json:"routeId"`
	OrderedStopIDs  []openapi_types.UUID `json:"orderedStopIds"`
	TotalDistanceKm float64              `json:"totalDistanceKm"`
}

type TransitionRequest struct {
	Event        string   `json:"event"`
	Reason       string   `json:"reason,omitempty"`
	SignatureRef string   `json:"signatureRef,omitempty"`
	PhotoRefs    []string `json:"photoRefs,omitempty"`
}

type StopStatus struct {
	StopID openapi_types.UUID `json:"stopId"`
	Status string             `json:"status"`
}

type Otp struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyOtpRequest struct {
	Code string `json:"code"`
}

type EvidenceRequest struct {
	SignatureRef string   `json:"signatureRef,omitempty"`
	PhotoRefs    []string `json:"photoRefs,omitempty"`
}

type OtpVerification struct {
	Verified bool `json:"verified"`
}

type EvidenceAccepted struct {
	Accepted bool `json:"accepted"`
}
