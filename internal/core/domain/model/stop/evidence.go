package stop

import (
	"errors"
	"slices"
	"strings"
	"time"

	"lastmile/internal/pkg/guard"
)

var (
	// ErrMissingEvidence is returned when neither a signature nor a photo is supplied,
	// and when a stop is delivered before evidence was captured.
	ErrMissingEvidence = errors.New("delivery evidence requires a signature or at least one photo")
	// ErrEvidenceIsNotConstructed is returned when Evidence was not built with NewEvidence.
	ErrEvidenceIsNotConstructed = errors.New("Evidence must be created via NewEvidence constructor")
)

// Evidence is proof of delivery: a signature reference and/or photo references
// (storage keys or URLs produced by the upload service).
type Evidence struct {
	signatureRef string
	photoRefs    []string
	capturedAt   time.Time
	guard        guard.ConstructorGuard
}

// NewEvidence trims the references, drops blank photo entries and requires at least
// one remaining reference.
func NewEvidence(signatureRef string, photoRefs []string, capturedAt time.Time) (Evidence, error) {
	signatureRef = strings.TrimSpace(signatureRef)

	photos := make([]string, 0, len(photoRefs))
	for _, ref := range photoRefs {
		if ref = strings.TrimSpace(ref); ref != "" {
			photos = append(photos, ref)
		}
	}

	if signatureRef == "" && len(photos) == 0 {
		return Evidence{}, ErrMissingEvidence
	}

	return Evidence{
		signatureRef: signatureRef,
		photoRefs:    photos,
		capturedAt:   capturedAt,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the Evidence was produced by NewEvidence.
func (e Evidence) Validate() error {
	return e.guard.Validate(ErrEvidenceIsNotConstructed)
}

// SignatureRef returns the signature reference, empty when only photos were captured.
func (e Evidence) SignatureRef() string {
	return e.signatureRef
}

// PhotoRefs returns a copy of the photo references.
func (e Evidence) PhotoRefs() []string {
	return slices.Clone(e.photoRefs)
}

// CapturedAt returns when the evidence was recorded.
func (e Evidence) CapturedAt() time.Time {
	return e.capturedAt
}
