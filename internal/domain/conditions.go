package domain

import "time"

// ConditionsInput is everything BuildConditions needs for one snapshot.
type ConditionsInput struct {
	ID        string
	At        time.Time
	Lake      LakeProfile
	Ramps     []BoatRamp
	Elevation Result[ElevationReading]
	Weather   Result[Forecast]
	// WaterTempF overrides the air-temperature estimate when a water sensor
	// reading is available.
	WaterTempF *float64
}

// Conditions is one dashboard snapshot of every derived metric.
type Conditions struct {
	ID                 string                   `json:"id"`
	GeneratedAt        time.Time                `json:"generated_at"`
	Lake               string                   `json:"lake"`
	Elevation          Result[ElevationReading] `json:"elevation"`
	Weather            Result[Forecast]         `json:"weather"`
	FloodImpact        FloodImpact              `json:"flood_impact"`
	Ramps              []RampStatus             `json:"ramps"`
	RampSummary        RampSummary              `json:"ramp_summary"`
	Fishing            FishingConditions        `json:"fishing"`
	FishingApproximate bool                     `json:"fishing_approximate"`
	Moon               MoonPhaseInfo            `json:"moon"`
	Sun                *SunWindows              `json:"sun,omitempty"`
	SunApproximate     bool                     `json:"sun_approximate"`
	Solunar            []SolunarPeriod          `json:"solunar"`
	Recreation         []DayRating              `json:"recreation"`
}

// BuildConditions derives every dashboard metric from one set of inputs.
// Fallback inputs produce fallback outputs: a failed weather fetch yields
// the default fishing conditions, computed sun times and no recreation days.
func BuildConditions(in ConditionsInput) Conditions {
	elevation := in.Elevation.Value.Value
	statuses := ClassifyRamps(elevation, in.Ramps)
	moon := MoonPhase(in.At)

	c := Conditions{
		ID:          in.ID,
		GeneratedAt: in.At,
		Lake:        in.Lake.Name,
		Elevation:   in.Elevation,
		Weather:     in.Weather,
		FloodImpact: EstimateFloodImpact(elevation, in.Lake.NormalPool),
		Ramps:       statuses,
		RampSummary: SummarizeRamps(statuses, elevation, in.Lake.NormalPool),
		Moon:        moon,
		Solunar:     SolunarPeriods(in.At, float64(moon.IlluminationPercent)),
		Recreation:  []DayRating{},
	}

	if in.Weather.OK() {
		current := in.Weather.Value.Current
		waterTemp := EstimateWaterTemp(current.TemperatureF)
		if in.WaterTempF != nil {
			waterTemp = *in.WaterTempF
		}
		c.Fishing = ScoreFishing(current, waterTemp, in.At)
		c.Recreation = RateForecast(in.Weather.Value.Daily)
	} else {
		c.Fishing = DefaultFishingConditions()
		c.FishingApproximate = true
	}

	day := in.At.Format(time.DateOnly)
	if rise, set, ok := in.Weather.Value.SunTimesOn(day, in.At.Location()); ok && in.Weather.OK() {
		w := SunWindowsFor(rise, set)
		c.Sun = &w
	} else if rise, set, ok := ApproxSunTimes(in.At, in.Lake.Lat, in.Lake.Lon); ok {
		w := SunWindowsFor(rise, set)
		c.Sun = &w
		c.SunApproximate = true
	}

	return c
}
