package proximity

import (
	"math"
	"time"

	"pinghunt/models"
)

const (
	earthRadiusMeters = 6371000.0
	DefaultRadius     = 5.0
	MaxSpeedKMH       = 200.0
)

const (
	ReasonInvalidCoordinates = "INVALID_COORDINATES"
	ReasonNotProximityClaim  = "NOT_PROXIMITY_CLAIM"
	ReasonOutOfRange         = "OUT_OF_RANGE"
	ReasonSuspiciousMovement = "SUSPICIOUS_MOVEMENT"
)

// Sample is a prior location reading for the same claimant.
type Sample struct {
	Lat float64   `json:"lat"`
	Lng float64   `json:"lng"`
	At  time.Time `json:"at"`
}

type Result struct {
	OK             bool    `json:"ok"`
	DistanceMeters float64 `json:"distance_meters"`
	Reason         string  `json:"reason,omitempty"`
}

// Validate checks that a reported position is close enough to the ping
// to count as a discovery, and that the claimant's recent movement is
// physically plausible. Pure; no I/O.
func Validate(userLat, userLng float64, ping *models.Ping, history []Sample) Result {
	if !validCoords(userLat, userLng) || !validCoords(ping.Lat, ping.Lng) {
		return Result{Reason: ReasonInvalidCoordinates}
	}

	if ping.ClaimType != models.ClaimTypeProximity {
		return Result{Reason: ReasonNotProximityClaim}
	}

	distance := HaversineMeters(userLat, userLng, ping.Lat, ping.Lng)

	radius := DefaultRadius
	if ping.ProximityRadius != nil {
		radius = *ping.ProximityRadius
	}
	if distance > radius {
		return Result{DistanceMeters: distance, Reason: ReasonOutOfRange}
	}

	// anti-teleport: implied speed from the most recent prior sample
	if len(history) > 0 {
		last := history[len(history)-1]
		if validCoords(last.Lat, last.Lng) {
			elapsed := time.Since(last.At).Hours()
			if elapsed > 0 {
				travelledKM := HaversineMeters(last.Lat, last.Lng, userLat, userLng) / 1000
				if travelledKM/elapsed > MaxSpeedKMH {
					return Result{DistanceMeters: distance, Reason: ReasonSuspiciousMovement}
				}
			}
		}
	}

	return Result{OK: true, DistanceMeters: distance}
}

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// HaversineMeters is the great-circle distance between two coordinates.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
