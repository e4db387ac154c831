package domain

// Recreation-day ratings.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
)

// RecreationRating is the outcome of RateRecreationDay. Score is the raw
// adjusted score and may fall outside 0–100.
type RecreationRating struct {
	Score  int    `json:"score"`
	Rating string `json:"rating"`
}

// RateRecreationDay scores a forecast day for lake recreation. Every matching
// adjustment applies:
//   - temperature: <50°F or >100°F −30, else <60°F or >90°F −15, else 70–85°F +10
//   - precipitation probability: ≥70% −40, ≥40% −20, ≥20% −10
//   - wind: ≥25 mph −25, ≥15 mph −10
//   - WMO code: thunderstorm (≥95) −30, rain (≥61) −20, clear/partly cloudy (≤3) +5
//
// Ratings: ≥80 Excellent, ≥60 Good, ≥40 Fair, else Poor.
func RateRecreationDay(tempHighF, precipProbabilityPct, windSpeedMph float64, weatherCode int) RecreationRating {
	score := 100

	switch {
	case tempHighF < 50 || tempHighF > 100:
		score -= 30
	case tempHighF < 60 || tempHighF > 90:
		score -= 15
	case tempHighF >= 70 && tempHighF <= 85:
		score += 10
	}

	switch {
	case precipProbabilityPct >= 70:
		score -= 40
	case precipProbabilityPct >= 40:
		score -= 20
	case precipProbabilityPct >= 20:
		score -= 10
	}

	switch {
	case windSpeedMph >= 25:
		score -= 25
	case windSpeedMph >= 15:
		score -= 10
	}

	switch {
	case weatherCode >= 95:
		score -= 30
	case weatherCode >= 61:
		score -= 20
	case weatherCode <= 3:
		score += 5
	}

	return RecreationRating{Score: score, Rating: recreationBucket(score)}
}

func recreationBucket(score int) string {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

// DailyForecast is one day of the Open-Meteo daily block, in US units.
type DailyForecast struct {
	Date                 string  `json:"date"`
	WeatherCode          int     `json:"weather_code"`
	TempHighF            float64 `json:"temp_high_f"`
	TempLowF             float64 `json:"temp_low_f"`
	PrecipProbabilityPct float64 `json:"precip_probability_pct"`
	WindSpeedMaxMph      float64 `json:"wind_speed_max_mph"`
	UVIndexMax           float64 `json:"uv_index_max"`
	Sunrise              string  `json:"sunrise,omitempty"`
	Sunset               string  `json:"sunset,omitempty"`
}

// DayRating pairs a forecast day with its recreation rating.
type DayRating struct {
	Date string `json:"date"`
	RecreationRating
}

// RateForecast rates each forecast day in order.
func RateForecast(days []DailyForecast) []DayRating {
	out := make([]DayRating, 0, len(days))
	for _, d := range days {
		out = append(out, DayRating{
			Date:             d.Date,
			RecreationRating: RateRecreationDay(d.TempHighF, d.PrecipProbabilityPct, d.WindSpeedMaxMph, d.WeatherCode),
		})
	}
	return out
}
