package solar

import (
	"math"
	"time"
)

// SunTimes holds the sunrise and sunset instants for a single calendar day.
// Values are immutable once computed; callers replace the whole struct when
// recomputing for another day or location.
type SunTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}

const (
	dayMs = 1000 * 60 * 60 * 24

	// Julian day numbers for the Unix epoch and J2000 epoch
	j1970 = 2440588
	j2000 = 2451545

	// Leading coefficient of the julian cycle approximation
	j0 = 0.0009
)

const rad = math.Pi / 180

// Earth's obliquity of the ecliptic
var obliquity = rad * 23.4397

// Sun altitude at sunrise/sunset, accounting for atmospheric refraction
// and the radius of the solar disk
var horizonAltitude = rad * -0.833

// Times computes sunrise and sunset for the local calendar day containing
// date, at the given coordinates. The returned instants are expressed in
// date's time.Location.
//
// Times is pure and deterministic: it reads no clocks and keeps no state.
// The second return value is false when the day has no well-defined
// sunrise/sunset (polar day or polar night); callers are expected to fall
// back to a fixed-hour day/night boundary in that case.
func Times(date time.Time, latitude, longitude float64) (SunTimes, bool) {
	year, month, day := date.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, date.Location())

	lw := rad * -longitude
	phi := rad * latitude
	d := toDays(midnight)

	n := math.Round(d - j0 - lw/(2*math.Pi))
	ds := j0 + lw/(2*math.Pi) + n

	m := solarMeanAnomaly(ds)
	l := eclipticLongitude(m)
	dec := math.Asin(math.Sin(l) * math.Sin(obliquity))

	jnoon := solarTransit(ds, m, l)

	// Hour angle of the sun at the horizon-crossing altitude. The acos
	// argument leaves [-1, 1] inside the polar circles in midsummer and
	// midwinter, which makes w NaN.
	cosw := (math.Sin(horizonAltitude) - math.Sin(phi)*math.Sin(dec)) /
		(math.Cos(phi) * math.Cos(dec))
	w := math.Acos(cosw)
	if math.IsNaN(w) {
		return SunTimes{}, false
	}

	jset := solarTransit(j0+(w+lw)/(2*math.Pi)+n, m, l)
	jrise := jnoon - (jset - jnoon)

	return SunTimes{
		Sunrise: fromJulian(jrise, date.Location()),
		Sunset:  fromJulian(jset, date.Location()),
	}, true
}

// toDays converts a time to fractional days since the J2000 epoch
func toDays(t time.Time) float64 {
	return toJulian(t) - j2000
}

func toJulian(t time.Time) float64 {
	return float64(t.UnixMilli())/dayMs - 0.5 + j1970
}

func fromJulian(j float64, loc *time.Location) time.Time {
	ms := (j + 0.5 - j1970) * dayMs
	return time.UnixMilli(int64(math.Round(ms))).In(loc)
}

func solarMeanAnomaly(d float64) float64 {
	return rad * (357.5291 + 0.98560028*d)
}

// eclipticLongitude applies the equation-of-center correction and the
// perihelion constant to the mean anomaly
func eclipticLongitude(m float64) float64 {
	c := rad * (1.9148*math.Sin(m) + 0.02*math.Sin(2*m) + 0.0003*math.Sin(3*m))
	p := rad * 102.9372
	return m + c + p + math.Pi
}

func solarTransit(ds, m, l float64) float64 {
	return j2000 + ds + 0.0053*math.Sin(m) - 0.0069*math.Sin(2*l)
}
