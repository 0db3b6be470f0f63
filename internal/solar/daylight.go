package solar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Daylight describes the sun's position context at an instant. It is
// published alongside the applied theme as diagnostic context for UI
// collaborators; no theme decision depends on it.
type Daylight struct {
	SunAltitude  float64 `json:"sun_altitude_deg"`
	IsDaytime    bool    `json:"is_daytime"`
	IsGoldenHour bool    `json:"is_golden_hour"`
}

// DaylightAt computes the sun position context for the given instant and
// coordinates.
func DaylightAt(t time.Time, latitude, longitude float64) Daylight {
	position := suncalc.GetPosition(t, latitude, longitude)

	altitudeDegrees := position.Altitude * (180.0 / math.Pi)

	return Daylight{
		SunAltitude:  altitudeDegrees,
		IsDaytime:    altitudeDegrees > 0,
		IsGoldenHour: altitudeDegrees > 0 && altitudeDegrees < 6,
	}
}
