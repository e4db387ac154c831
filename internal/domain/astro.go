package domain

import (
	"math"
	"sort"
	"time"
)

// SynodicMonth is the mean length of a lunation in days.
const SynodicMonth = 29.53058867

// referenceNewMoon is the new moon the phase age is measured from.
var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// Moon phase names, in lunation order.
const (
	PhaseNew            = "New Moon"
	PhaseWaxingCrescent = "Waxing Crescent"
	PhaseFirstQuarter   = "First Quarter"
	PhaseWaxingGibbous  = "Waxing Gibbous"
	PhaseFull           = "Full Moon"
	PhaseWaningGibbous  = "Waning Gibbous"
	PhaseLastQuarter    = "Last Quarter"
	PhaseWaningCrescent = "Waning Crescent"
)

var phaseNames = [8]string{
	PhaseNew, PhaseWaxingCrescent, PhaseFirstQuarter, PhaseWaxingGibbous,
	PhaseFull, PhaseWaningGibbous, PhaseLastQuarter, PhaseWaningCrescent,
}

// MoonPhaseInfo is the phase of the moon at an instant.
type MoonPhaseInfo struct {
	Phase               string  `json:"phase"`
	IlluminationPercent int     `json:"illumination_percent"`
	AgeDays             float64 `json:"age_days"` // [0, SynodicMonth)
}

// MoonPhase returns the phase for t. The age is always normalized into
// [0, SynodicMonth), including for dates before the reference new moon.
func MoonPhase(t time.Time) MoonPhaseInfo {
	age := lunarAge(t)

	width := SynodicMonth / 8
	idx := int(math.Floor((age+width/2)/width)) % 8

	return MoonPhaseInfo{
		Phase:               phaseNames[idx],
		IlluminationPercent: illumination(idx, age),
		AgeDays:             age,
	}
}

func lunarAge(t time.Time) float64 {
	days := t.Sub(referenceNewMoon).Seconds() / 86400
	age := math.Mod(days, SynodicMonth)
	if age < 0 {
		age = math.Mod(age+SynodicMonth, SynodicMonth)
	}
	return age
}

// illumination is fixed at the principal phases and linear in age between them.
func illumination(idx int, age float64) int {
	switch phaseNames[idx] {
	case PhaseNew:
		return 0
	case PhaseFirstQuarter, PhaseLastQuarter:
		return 50
	case PhaseFull:
		return 100
	}
	half := SynodicMonth / 2
	if age <= half {
		return roundHalfUp(age / half * 100)
	}
	return roundHalfUp((SynodicMonth - age) / half * 100)
}

// TimeWindow is a half-open interval of wall-clock time.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SunWindows are the photography light windows derived from sunrise and sunset.
type SunWindows struct {
	Sunrise        time.Time  `json:"sunrise"`
	Sunset         time.Time  `json:"sunset"`
	GoldenMorning  TimeWindow `json:"golden_hour_morning"`
	GoldenEvening  TimeWindow `json:"golden_hour_evening"`
	BlueMorning    TimeWindow `json:"blue_hour_morning"`
	BlueEvening    TimeWindow `json:"blue_hour_evening"`
	SolarNoon      time.Time  `json:"solar_noon"`
	DayLengthHours float64    `json:"day_length_hours"`
}

// SunWindowsFor derives golden hour, blue hour, solar noon and day length
// from fixed offsets around sunrise and sunset.
func SunWindowsFor(sunrise, sunset time.Time) SunWindows {
	day := sunset.Sub(sunrise)
	return SunWindows{
		Sunrise:        sunrise,
		Sunset:         sunset,
		GoldenMorning:  TimeWindow{Start: sunrise, End: sunrise.Add(60 * time.Minute)},
		GoldenEvening:  TimeWindow{Start: sunset.Add(-60 * time.Minute), End: sunset},
		BlueMorning:    TimeWindow{Start: sunrise.Add(-40 * time.Minute), End: sunrise.Add(-20 * time.Minute)},
		BlueEvening:    TimeWindow{Start: sunset.Add(20 * time.Minute), End: sunset.Add(40 * time.Minute)},
		SolarNoon:      sunrise.Add(day / 2),
		DayLengthHours: day.Hours(),
	}
}

// Solunar period kinds.
const (
	SolunarMajor = "major"
	SolunarMinor = "minor"
)

const (
	solunarMajorLength = 2 * time.Hour
	solunarMinorLength = 1 * time.Hour
	solunarMinorOffset = 6 * time.Hour
)

// SolunarPeriod is a predicted feeding window.
type SolunarPeriod struct {
	Kind  string    `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SolunarPeriods returns two major and two minor windows for the calendar day
// of t, sorted by start time. This is the simplified dashboard heuristic, not
// a transit-based solunar table: the anchor is local midnight plus
// illumination% of twelve hours, majors sit at the anchor and anchor+12h, and
// minors six hours after each major. Offsets wrap within the day.
func SolunarPeriods(t time.Time, illuminationPercent float64) []SolunarPeriod {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	anchor := time.Duration(illuminationPercent / 100 * 12 * float64(time.Hour))

	at := func(offset time.Duration, kind string, length time.Duration) SolunarPeriod {
		offset %= 24 * time.Hour
		if offset < 0 {
			offset += 24 * time.Hour
		}
		start := midnight.Add(offset)
		return SolunarPeriod{Kind: kind, Start: start, End: start.Add(length)}
	}

	periods := []SolunarPeriod{
		at(anchor, SolunarMajor, solunarMajorLength),
		at(anchor+solunarMinorOffset, SolunarMinor, solunarMinorLength),
		at(anchor+12*time.Hour, SolunarMajor, solunarMajorLength),
		at(anchor+12*time.Hour+solunarMinorOffset, SolunarMinor, solunarMinorLength),
	}
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start.Before(periods[j].Start) })
	return periods
}
