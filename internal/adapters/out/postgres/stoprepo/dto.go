// Package stoprepo persists stop aggregates with GORM.
//
// Lifecycle writes are guarded by the version column: Update only touches a
// row whose version still matches the loaded aggregate and bumps it by one.
// Sequence is owned by SaveSequence and never written by Update.
package stoprepo

import (
	"time"

	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// StopDTO is the row layout of the stops table.
type StopDTO struct {
	ID       uuid.UUID           `gorm:"type:uuid;primaryKey"`
	RouteID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Route    *routerepo.RouteDTO `gorm:"foreignKey:RouteID;references:ID;constraint:OnDelete:CASCADE"`
	Sequence int                 `gorm:"not null"`

	Latitude  *float64
	Longitude *float64

	ContactName    string
	ContactPhone   string
	ContactAddress string
	AgeRestricted  bool `gorm:"not null;default:false"`

	Status int `gorm:"not null;index"`

	OtpCode        *string `gorm:"type:char(6)"`
	OtpGeneratedAt *time.Time
	OtpVerified    bool `gorm:"not null;default:false"`
	OtpVerifiedAt  *time.Time

	EvidenceCaptured   bool `gorm:"not null;default:false"`
	SignatureRef       string
	PhotoRefs          pq.StringArray `gorm:"type:text[]"`
	EvidenceCapturedAt *time.Time

	ArrivedAt     *time.Time
	CompletedAt   *time.Time
	FailureReason string

	Version int `gorm:"not null;default:0"`
}

// TableName overrides GORM's pluralisation.
func (StopDTO) TableName() string {
	return "stops"
}

func fromDomain(aggregate *stop.Stop) StopDTO {
	dto := StopDTO{
		ID:            aggregate.ID().Bytes(),
		RouteID:       aggregate.RouteID().Bytes(),
		Sequence:      aggregate.Sequence(),
		AgeRestricted: aggregate.IsAgeRestricted(),
		Status:        int(aggregate.Status()),
		ArrivedAt:     aggregate.ArrivedAt(),
		CompletedAt:   aggregate.CompletedAt(),
		FailureReason: aggregate.FailureReason(),
		Version:       aggregate.Version(),
	}

	if loc := aggregate.Location(); loc != nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		dto.Latitude = &lat
		dto.Longitude = &lon
	}

	contact := aggregate.Contact()
	dto.ContactName = contact.Name()
	dto.ContactPhone = contact.Phone()
	dto.ContactAddress = contact.Address()

	if otp := aggregate.Otp(); otp != nil {
		code := otp.Code()
		generatedAt := otp.GeneratedAt()
		dto.OtpCode = &code
		dto.OtpGeneratedAt = &generatedAt
		dto.OtpVerified = otp.IsVerified()
		dto.OtpVerifiedAt = otp.VerifiedAt()
	}

	if evidence := aggregate.Evidence(); evidence != nil {
		capturedAt := evidence.CapturedAt()
		dto.EvidenceCaptured = true
		dto.SignatureRef = evidence.SignatureRef()
		dto.PhotoRefs = evidence.PhotoRefs()
		dto.EvidenceCapturedAt = &capturedAt
	}

	return dto
}

// lifecycleColumns lists everything Update may change. Zero values are written
// explicitly, which a struct-based Updates would skip.
func (dto StopDTO) lifecycleColumns() map[string]any {
	return map[string]any{
		"status":               dto.Status,
		"otp_code":             dto.OtpCode,
		"otp_generated_at":     dto.OtpGeneratedAt,
		"otp_verified":         dto.OtpVerified,
		"otp_verified_at":      dto.OtpVerifiedAt,
		"evidence_captured":    dto.EvidenceCaptured,
		"signature_ref":        dto.SignatureRef,
		"photo_refs":           dto.PhotoRefs,
		"evidence_captured_at": dto.EvidenceCapturedAt,
		"arrived_at":           dto.ArrivedAt,
		"completed_at":         dto.CompletedAt,
		"failure_reason":       dto.FailureReason,
		"version":              dto.Version + 1,
	}
}

func toDomain(dto StopDTO) (*stop.Stop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	routeID, err := kernel.UUIDFromBytes(dto.RouteID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewOptionalLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	var otp *stop.Otp
	if dto.OtpCode != nil && dto.OtpGeneratedAt != nil {
		restored, otpErr := stop.RestoreOtp(*dto.OtpCode, dto.OtpGeneratedAt.UTC(), dto.OtpVerified, utc(dto.OtpVerifiedAt))
		if otpErr != nil {
			return nil, otpErr
		}
		otp = &restored
	}

	var evidence *stop.Evidence
	if dto.EvidenceCaptured && dto.EvidenceCapturedAt != nil {
		restored, evidenceErr := stop.NewEvidence(dto.SignatureRef, dto.PhotoRefs, dto.EvidenceCapturedAt.UTC())
		if evidenceErr != nil {
			return nil, evidenceErr
		}
		evidence = &restored
	}

	return stop.RestoreStop(stop.Snapshot{
		ID:            id,
		RouteID:       routeID,
		Sequence:      dto.Sequence,
		Location:      location,
		Contact:       stop.NewContact(dto.ContactName, dto.ContactPhone, dto.ContactAddress),
		AgeRestricted: dto.AgeRestricted,
		Status:        stop.Status(dto.Status),
		Otp:           otp,
		Evidence:      evidence,
		ArrivedAt:     utc(dto.ArrivedAt),
		CompletedAt:   utc(dto.CompletedAt),
		FailureReason: dto.FailureReason,
		Version:       dto.Version,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
