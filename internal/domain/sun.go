package domain

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const j2000 = 2451545.0

// ApproxSunTimes estimates sunrise and sunset for the calendar day of t at
// the given latitude and longitude (east positive) with the standard sunrise
// equation. Results are returned in t's location. ok is false during polar
// day or night. It stands in for the forecast's daily sunrise/sunset when the
// weather fetch failed.
func ApproxSunTimes(t time.Time, lat, lon float64) (sunrise, sunset time.Time, ok bool) {
	midnightUTC := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	n := math.Ceil(julian.TimeToJD(midnightUTC) - j2000 + 0.0008)

	meanSolarTime := n - lon/360
	m := math.Mod(357.5291+0.98560028*meanSolarTime, 360)
	mRad := degToRad(m)
	center := 1.9148*math.Sin(mRad) + 0.0200*math.Sin(2*mRad) + 0.0003*math.Sin(3*mRad)
	lambda := degToRad(math.Mod(m+center+180+102.9372, 360))
	transit := j2000 + meanSolarTime + 0.0053*math.Sin(mRad) - 0.0069*math.Sin(2*lambda)

	sinDecl := math.Sin(lambda) * math.Sin(degToRad(23.4397))
	cosDecl := math.Cos(math.Asin(sinDecl))
	phi := degToRad(lat)

	cosOmega := (math.Sin(degToRad(-0.833)) - math.Sin(phi)*sinDecl) / (math.Cos(phi) * cosDecl)
	if cosOmega < -1 || cosOmega > 1 {
		return time.Time{}, time.Time{}, false
	}
	omega := radToDeg(math.Acos(cosOmega))

	loc := t.Location()
	sunrise = julian.JDToTime(transit - omega/360).In(loc).Truncate(time.Second)
	sunset = julian.JDToTime(transit + omega/360).In(loc).Truncate(time.Second)
	return sunrise, sunset, true
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
