package domain

import "time"

// hPaToInHg converts hectopascals to inches of mercury.
const hPaToInHg = 0.02953

// WeatherSnapshot is the current-conditions block of a forecast fetch.
// A refresh replaces the whole snapshot; fields are never merged.
type WeatherSnapshot struct {
	TemperatureF             float64   `json:"temperature_f"`
	PressureHPa              float64   `json:"pressure_hpa"`
	WindSpeedMph             float64   `json:"wind_speed_mph"`
	CloudCoverPct            float64   `json:"cloud_cover_pct"`
	PrecipitationProbability float64   `json:"precipitation_probability_pct"`
	UVIndex                  float64   `json:"uv_index"`
	WeatherCode              int       `json:"weather_code"`
	IsDay                    bool      `json:"is_day"`
	ObservedAt               time.Time `json:"observed_at"`
}

// PressureInHg returns the sea-level pressure in inches of mercury.
func (w WeatherSnapshot) PressureInHg() float64 {
	return w.PressureHPa * hPaToInHg
}

// Forecast is a full weather fetch: current conditions plus daily outlook.
type Forecast struct {
	Current WeatherSnapshot `json:"current"`
	Daily   []DailyForecast `json:"daily"`
}

// SunTimesOn returns sunrise and sunset for the forecast day whose date is
// date (YYYY-MM-DD), parsed in loc. Open-Meteo reports them as local ISO-8601
// without an offset. ok is false when no day matches or the times are missing.
func (f Forecast) SunTimesOn(date string, loc *time.Location) (sunrise, sunset time.Time, ok bool) {
	const layout = "2006-01-02T15:04"
	for _, d := range f.Daily {
		if d.Date != date {
			continue
		}
		rise, err := time.ParseInLocation(layout, d.Sunrise, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		set, err := time.ParseInLocation(layout, d.Sunset, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return rise, set, true
	}
	return time.Time{}, time.Time{}, false
}

// DefaultWeather is the stand-in snapshot used when no forecast is available:
// mild, stable late-spring conditions.
func DefaultWeather() WeatherSnapshot {
	return WeatherSnapshot{
		TemperatureF:             72,
		PressureHPa:              1016,
		WindSpeedMph:             8,
		CloudCoverPct:            40,
		PrecipitationProbability: 10,
		UVIndex:                  5,
		WeatherCode:              2,
		IsDay:                    true,
	}
}
