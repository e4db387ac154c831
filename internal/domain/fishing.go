package domain

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Factor statuses.
const (
	FactorPositive = "positive"
	FactorNeutral  = "neutral"
	FactorNegative = "negative"
)

// Species activity levels.
const (
	ActivityHigh     = "High"
	ActivityModerate = "Moderate"
	ActivityLow      = "Low"
)

const (
	maxTips          = 3
	defaultTip       = "Conditions are average; work structure near creek channels and vary your retrieve."
	unavailableTip   = "Weather data unavailable; check local conditions before heading out."
	defaultFishScore = 60
	minWaterTempF    = 35.0
	maxWaterTempF    = 90.0
	waterTempOffsetF = 5.0
)

// FishingFactor is one input's contribution to the activity index.
type FishingFactor struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Score  int    `json:"score"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// SpeciesActivity is the expected activity of one target species.
type SpeciesActivity struct {
	Species  string `json:"species"`
	Activity string `json:"activity"`
}

// FishingConditions is the fishing activity index and its breakdown.
type FishingConditions struct {
	OverallScore    int               `json:"overall_score"`
	Rating          string            `json:"rating"`
	Factors         []FishingFactor   `json:"factors"`
	SpeciesActivity []SpeciesActivity `json:"species_activity"`
	Tips            []string          `json:"tips"`
}

// DefaultFishingConditions is substituted when the weather fetch failed.
func DefaultFishingConditions() FishingConditions {
	return FishingConditions{
		OverallScore:    defaultFishScore,
		Rating:          RatingFair,
		Factors:         []FishingFactor{},
		SpeciesActivity: []SpeciesActivity{},
		Tips:            []string{unavailableTip},
	}
}

// EstimateWaterTemp approximates surface water temperature from air
// temperature when no water sensor is available.
func EstimateWaterTemp(airTempF float64) float64 {
	return math.Min(maxWaterTempF, math.Max(minWaterTempF, airTempF-waterTempOffsetF))
}

// ScoreFishing computes the fishing activity index. Each factor is scored
// independently; the overall score is the rounded mean of the five
// sub-scores. Species activity and tips read the raw inputs.
func ScoreFishing(w WeatherSnapshot, waterTempF float64, t time.Time) FishingConditions {
	pressure := w.PressureInHg()
	moon := MoonPhase(t)

	factors := []FishingFactor{
		pressureFactor(pressure),
		waterTempFactor(waterTempF),
		windFactor(w.WindSpeedMph),
		moonFactor(moon),
		cloudFactor(w.CloudCoverPct),
	}

	scores := make([]float64, len(factors))
	for i, f := range factors {
		scores[i] = float64(f.Score)
	}
	overall := roundHalfUp(stat.Mean(scores, nil))

	return FishingConditions{
		OverallScore:    overall,
		Rating:          fishingRating(overall),
		Factors:         factors,
		SpeciesActivity: speciesActivity(pressure, waterTempF, w.WindSpeedMph, w.CloudCoverPct),
		Tips:            fishingTips(pressure, waterTempF, w.WindSpeedMph, w.CloudCoverPct, moon.Phase),
	}
}

func fishingRating(score int) string {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 65:
		return RatingGood
	case score >= 50:
		return RatingFair
	default:
		return RatingPoor
	}
}

func pressureFactor(inHg float64) FishingFactor {
	f := FishingFactor{Name: "Barometric Pressure", Value: fmt.Sprintf("%.2f inHg", inHg)}
	switch {
	case inHg >= 30.0 && inHg <= 30.2:
		f.Score, f.Status, f.Detail = 90, FactorPositive, "Stable pressure; fish are actively feeding"
	case inHg >= 29.8 && inHg < 30.0:
		f.Score, f.Status, f.Detail = 75, FactorPositive, "Slightly low pressure; good pre-front bite"
	case inHg > 30.2:
		f.Score, f.Status, f.Detail = 60, FactorNeutral, "High pressure; fish may hold deep and feed less"
	default:
		f.Score, f.Status, f.Detail = 45, FactorNegative, "Low pressure; activity is unsettled"
	}
	return f
}

func waterTempFactor(tempF float64) FishingFactor {
	f := FishingFactor{Name: "Water Temperature", Value: fmt.Sprintf("%.0f°F", tempF)}
	switch {
	case tempF >= 60 && tempF <= 75:
		f.Score, f.Status, f.Detail = 90, FactorPositive, "Ideal range for most warm-water species"
	case (tempF >= 50 && tempF < 60) || (tempF > 75 && tempF <= 85):
		f.Score, f.Status, f.Detail = 70, FactorNeutral, "Acceptable; fish are moderately active"
	default:
		f.Score, f.Status, f.Detail = 40, FactorNegative, "Outside the comfort range; fish are sluggish"
	}
	return f
}

func windFactor(mph float64) FishingFactor {
	f := FishingFactor{Name: "Wind", Value: fmt.Sprintf("%.0f mph", mph)}
	switch {
	case mph >= 5 && mph <= 15:
		f.Score, f.Status, f.Detail = 85, FactorPositive, "Light chop breaks up light and concentrates bait"
	case mph < 5:
		f.Score, f.Status, f.Detail = 65, FactorNeutral, "Calm water; fish can be line-shy"
	case mph <= 25:
		f.Score, f.Status, f.Detail = 55, FactorNeutral, "Breezy; boat control gets harder"
	default:
		f.Score, f.Status, f.Detail = 30, FactorNegative, "Strong winds; unsafe open-water conditions"
	}
	return f
}

func moonFactor(m MoonPhaseInfo) FishingFactor {
	f := FishingFactor{Name: "Moon Phase", Value: m.Phase}
	switch m.Phase {
	case PhaseNew, PhaseFull:
		f.Score, f.Status, f.Detail = 90, FactorPositive, "Strong solunar influence on feeding"
	case PhaseFirstQuarter, PhaseLastQuarter:
		f.Score, f.Status, f.Detail = 70, FactorNeutral, "Moderate solunar influence"
	default:
		f.Score, f.Status, f.Detail = 60, FactorNeutral, "Weak solunar influence"
	}
	return f
}

func cloudFactor(pct float64) FishingFactor {
	f := FishingFactor{Name: "Cloud Cover", Value: fmt.Sprintf("%.0f%%", pct)}
	switch {
	case pct >= 30 && pct <= 70:
		f.Score, f.Status, f.Detail = 85, FactorPositive, "Mixed sky; fish roam shallow cover"
	case pct > 70:
		f.Score, f.Status, f.Detail = 80, FactorPositive, "Overcast keeps fish shallow and aggressive"
	default:
		f.Score, f.Status, f.Detail = 60, FactorNeutral, "Bright skies push fish deeper"
	}
	return f
}

func speciesActivity(pressure, waterTempF, windMph, cloudPct float64) []SpeciesActivity {
	level := func(high, moderate bool) string {
		switch {
		case high:
			return ActivityHigh
		case moderate:
			return ActivityModerate
		default:
			return ActivityLow
		}
	}
	between := func(v, lo, hi float64) bool { return v >= lo && v <= hi }

	return []SpeciesActivity{
		{Species: "Largemouth Bass", Activity: level(
			between(waterTempF, 60, 80) && pressure >= 29.8,
			between(waterTempF, 50, 85),
		)},
		{Species: "Crappie", Activity: level(
			between(waterTempF, 55, 70),
			between(waterTempF, 45, 80),
		)},
		{Species: "Channel Catfish", Activity: level(
			waterTempF >= 70 || cloudPct > 70,
			waterTempF >= 55,
		)},
		{Species: "White Bass", Activity: level(
			between(windMph, 5, 15) && between(waterTempF, 55, 75),
			between(waterTempF, 50, 80),
		)},
	}
}

// fishingTips evaluates the tip rules in order and keeps the first three.
func fishingTips(pressure, waterTempF, windMph, cloudPct float64, phase string) []string {
	rules := []struct {
		match bool
		tip   string
	}{
		{pressure < 29.8, "Falling pressure often triggers a feeding spree before a front; cover water with moving baits."},
		{pressure > 30.2, "High pressure pushes fish tight to cover; slow down and downsize your lures."},
		{waterTempF > 80, "Warm water: fish early and late near deeper creek channels."},
		{waterTempF < 50, "Cold water: use slow presentations close to the bottom."},
		{windMph >= 5 && windMph <= 15, "Fish wind-blown points and banks where baitfish stack up."},
		{windMph > 25, "Strong winds: stay in sheltered coves and use heavier jigs."},
		{cloudPct > 70, "Overcast skies keep fish shallow; try topwater baits."},
		{phase == PhaseNew || phase == PhaseFull, "Moon phase favors strong feeding during the major solunar periods."},
	}

	tips := make([]string, 0, maxTips)
	for _, r := range rules {
		if !r.match {
			continue
		}
		tips = append(tips, r.tip)
		if len(tips) == maxTips {
			break
		}
	}
	if len(tips) == 0 {
		tips = append(tips, defaultTip)
	}
	return tips
}
