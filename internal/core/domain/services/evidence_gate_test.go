package services_test

import (
	"testing"
	"time"

	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceGate_Capture(t *testing.T) {
	now := time.Date(2026, 5, 4, 11, 30, 0, 0, time.UTC)
	gate := services.NewEvidenceGate(clock.NewFixed(now))

	tests := []struct {
		name      string
		signature string
		photos    []string
		wantErr   bool
	}{
		{name: "signature", signature: "sig/1.png"},
		{name: "photos", photos: []string{"photo/1.jpg", "photo/2.jpg"}},
		{name: "both", signature: "sig/1.png", photos: []string{"photo/1.jpg"}},
		{name: "nothing", wantErr: true},
		{name: "blanks only", signature: " ", photos: []string{"", " "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ungeocodedStop(t)

			err := gate.Capture(s, tt.signature, tt.photos)

			if tt.wantErr {
				require.ErrorIs(t, err, stop.ErrMissingEvidence)
				assert.False(t, s.IsEvidenceCaptured())
				return
			}
			require.NoError(t, err)
			assert.True(t, s.IsEvidenceCaptured())
			assert.Equal(t, now, s.Evidence().CapturedAt())
			assert.Equal(t, tt.signature, s.Evidence().SignatureRef())
		})
	}

	t.Run("finished stop", func(t *testing.T) {
		s := ungeocodedStop(t)
		_, err := s.Apply(stop.Fail, "refused", now)
		require.NoError(t, err)

		err = gate.Capture(s, "sig/1.png", nil)

		require.ErrorIs(t, err, stop.ErrStopIsFinal)
	})
}
