package proximity

import (
	"testing"
	"time"

	"pinghunt/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proximityPing(radius float64) *models.Ping {
	return &models.Ping{
		Lat:             40.0,
		Lng:             -74.0,
		ClaimType:       models.ClaimTypeProximity,
		ProximityRadius: &radius,
	}
}

// ~111,195 m per degree of latitude at this Earth radius
const degPerMeter = 1.0 / 111194.9

func TestValidateWithinRadius(t *testing.T) {
	ping := proximityPing(5)

	res := Validate(40.0+3*degPerMeter, -74.0, ping, nil)
	require.True(t, res.OK)
	assert.InDelta(t, 3.0, res.DistanceMeters, 0.1)
	assert.Empty(t, res.Reason)
}

func TestValidateOutOfRange(t *testing.T) {
	ping := proximityPing(5)

	res := Validate(40.001, -74.0, ping, nil)
	require.False(t, res.OK)
	assert.Equal(t, ReasonOutOfRange, res.Reason)
	// the measured distance comes back for client feedback
	assert.InDelta(t, 111.2, res.DistanceMeters, 1.0)
}

func TestValidateExactBoundary(t *testing.T) {
	ping := proximityPing(5)

	res := Validate(40.0+4.9*degPerMeter, -74.0, ping, nil)
	assert.True(t, res.OK)

	res = Validate(40.0+5.5*degPerMeter, -74.0, ping, nil)
	assert.False(t, res.OK)
}

func TestValidateInvalidCoordinates(t *testing.T) {
	ping := proximityPing(5)

	for _, tc := range []struct{ lat, lng float64 }{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	} {
		res := Validate(tc.lat, tc.lng, ping, nil)
		assert.False(t, res.OK)
		assert.Equal(t, ReasonInvalidCoordinates, res.Reason)
	}
}

func TestValidateRejectsNonProximityClaim(t *testing.T) {
	ping := &models.Ping{Lat: 40, Lng: -74, ClaimType: models.ClaimTypeNFC}

	res := Validate(40.0, -74.0, ping, nil)
	require.False(t, res.OK)
	assert.Equal(t, ReasonNotProximityClaim, res.Reason)
}

func TestValidateDefaultRadius(t *testing.T) {
	ping := &models.Ping{Lat: 40, Lng: -74, ClaimType: models.ClaimTypeProximity}

	res := Validate(40.0+3*degPerMeter, -74.0, ping, nil)
	assert.True(t, res.OK)

	res = Validate(40.0+8*degPerMeter, -74.0, ping, nil)
	assert.Equal(t, ReasonOutOfRange, res.Reason)
}

func TestValidateSpeedHeuristic(t *testing.T) {
	ping := proximityPing(5)

	// ~10 km away one minute ago implies ~600 km/h: rejected even
	// though the current reading is in range
	history := []Sample{
		{Lat: 40.09, Lng: -74.0, At: time.Now().Add(-time.Minute)},
	}
	res := Validate(40.0+3*degPerMeter, -74.0, ping, history)
	require.False(t, res.OK)
	assert.Equal(t, ReasonSuspiciousMovement, res.Reason)

	// same displacement over three hours is plausible walking-pace noise
	history[0].At = time.Now().Add(-3 * time.Hour)
	res = Validate(40.0+3*degPerMeter, -74.0, ping, history)
	assert.True(t, res.OK)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km
	d := HaversineMeters(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344_000, d, 2_000)
}
