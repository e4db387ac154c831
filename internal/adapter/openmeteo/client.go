// Package openmeteo fetches forecasts from the Open-Meteo API with the fixed
// unit configuration the dashboard expects.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
)

// Forecast length bounds accepted by Open-Meteo.
const (
	DefaultForecastDays = 7
	MinForecastDays     = 1
	MaxForecastDays     = 16
)

// Timezone is the zone every forecast is requested in.
const Timezone = "America/Chicago"

const (
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,precipitation_probability," +
		"weather_code,cloud_cover,pressure_msl,surface_pressure,wind_speed_10m,wind_direction_10m,wind_gusts_10m,uv_index,is_day"
	hourlyFields = "temperature_2m,precipitation_probability,weather_code,wind_speed_10m,cloud_cover"
	dailyFields  = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max," +
		"wind_speed_10m_max,uv_index_max,sunrise,sunset"
	timeLayout = "2006-01-02T15:04"
)

// Query selects a forecast location and length.
type Query struct {
	Lat  float64
	Lon  float64
	Days int
}

// Response is the upstream JSON passed through unchanged plus its parse.
type Response struct {
	Body     json.RawMessage
	Forecast domain.Forecast
}

// Client implements forecast lookups against Open-Meteo.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// ClampForecastDays bounds n to what Open-Meteo accepts; zero means the default.
func ClampForecastDays(n int) int {
	switch {
	case n == 0:
		return DefaultForecastDays
	case n < MinForecastDays:
		return MinForecastDays
	case n > MaxForecastDays:
		return MaxForecastDays
	default:
		return n
	}
}

// Fetch requests the current, hourly and daily blocks for q.
func (c *Client) Fetch(ctx context.Context, q Query) (*Response, error) {
	params := url.Values{
		"latitude":           {strconv.FormatFloat(q.Lat, 'f', 4, 64)},
		"longitude":          {strconv.FormatFloat(q.Lon, 'f', 4, 64)},
		"current":            {currentFields},
		"hourly":             {hourlyFields},
		"daily":              {dailyFields},
		"temperature_unit":   {"fahrenheit"},
		"wind_speed_unit":    {"mph"},
		"precipitation_unit": {"inch"},
		"timezone":           {Timezone},
		"forecast_days":      {strconv.Itoa(ClampForecastDays(q.Days))},
	}

	start := time.Now()
	body, err := c.get(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.UpstreamDuration.WithLabelValues(domain.SourceOpenMeteo).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOpenMeteo, "error").Inc()
		return nil, err
	}

	forecast, err := parseForecast(body)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrNoData) {
			outcome = "empty"
		}
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOpenMeteo, outcome).Inc()
		return nil, &domain.FetchError{Source: domain.SourceOpenMeteo, Err: err}
	}

	c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOpenMeteo, "success").Inc()
	return &Response{Body: body, Forecast: forecast}, nil
}

// FetchForecast returns only the parsed forecast.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	resp, err := c.Fetch(ctx, Query{Lat: lat, Lon: lon})
	if err != nil {
		return domain.Forecast{}, err
	}
	return resp.Forecast, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceOpenMeteo, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceOpenMeteo, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Reason string `json:"reason"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			msg = apiErr.Reason
		}
		return nil, &domain.FetchError{Source: domain.SourceOpenMeteo, Status: resp.StatusCode, Err: errors.New(msg)}
	}
	return body, nil
}

func parseForecast(body []byte) (domain.Forecast, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Current == nil {
		return domain.Forecast{}, domain.ErrNoData
	}

	loc := time.FixedZone(r.TimezoneAbbreviation, r.UTCOffsetSeconds)
	cur := r.Current
	snapshot := domain.WeatherSnapshot{
		TemperatureF:             cur.Temperature,
		PressureHPa:              cur.PressureMSL,
		WindSpeedMph:             cur.WindSpeed,
		CloudCoverPct:            cur.CloudCover,
		PrecipitationProbability: cur.PrecipitationProbability,
		UVIndex:                  cur.UVIndex,
		WeatherCode:              cur.WeatherCode,
		IsDay:                    cur.IsDay == 1,
	}
	if snapshot.PressureHPa == 0 {
		snapshot.PressureHPa = cur.SurfacePressure
	}
	if t, err := time.ParseInLocation(timeLayout, cur.Time, loc); err == nil {
		snapshot.ObservedAt = t
	}

	d := r.Daily
	days := make([]domain.DailyForecast, 0, len(d.Time))
	for i, date := range d.Time {
		// A day without a weather code or high temperature cannot be rated.
		if !present(d.WeatherCode, i) || !present(d.TempMax, i) {
			continue
		}
		days = append(days, domain.DailyForecast{
			Date:                 date,
			WeatherCode:          intAt(d.WeatherCode, i),
			TempHighF:            floatAt(d.TempMax, i),
			TempLowF:             floatAt(d.TempMin, i),
			PrecipProbabilityPct: floatAt(d.PrecipProbabilityMax, i),
			WindSpeedMaxMph:      floatAt(d.WindSpeedMax, i),
			UVIndexMax:           floatAt(d.UVIndexMax, i),
			Sunrise:              stringAt(d.Sunrise, i),
			Sunset:               stringAt(d.Sunset, i),
		})
	}

	return domain.Forecast{Current: snapshot, Daily: days}, nil
}

// Open-Meteo returns null for missing samples; the pointers keep those
// distinct from zero until the accessors collapse them.

func present[T any](v []*T, i int) bool {
	return i < len(v) && v[i] != nil
}

func floatAt(v []*float64, i int) float64 {
	if i < len(v) && v[i] != nil {
		return *v[i]
	}
	return 0
}

func intAt(v []*int, i int) int {
	if i < len(v) && v[i] != nil {
		return *v[i]
	}
	return 0
}

func stringAt(v []string, i int) string {
	if i < len(v) {
		return v[i]
	}
	return ""
}

// Open-Meteo API response types.

type response struct {
	UTCOffsetSeconds     int      `json:"utc_offset_seconds"`
	TimezoneAbbreviation string   `json:"timezone_abbreviation"`
	Current              *current `json:"current"`
	Daily                daily    `json:"daily"`
}

type current struct {
	Time                     string  `json:"time"`
	Temperature              float64 `json:"temperature_2m"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
	WeatherCode              int     `json:"weather_code"`
	CloudCover               float64 `json:"cloud_cover"`
	PressureMSL              float64 `json:"pressure_msl"`
	SurfacePressure          float64 `json:"surface_pressure"`
	WindSpeed                float64 `json:"wind_speed_10m"`
	UVIndex                  float64 `json:"uv_index"`
	IsDay                    int     `json:"is_day"`
}

type daily struct {
	Time                 []string   `json:"time"`
	WeatherCode          []*int     `json:"weather_code"`
	TempMax              []*float64 `json:"temperature_2m_max"`
	TempMin              []*float64 `json:"temperature_2m_min"`
	PrecipProbabilityMax []*float64 `json:"precipitation_probability_max"`
	WindSpeedMax         []*float64 `json:"wind_speed_10m_max"`
	UVIndexMax           []*float64 `json:"uv_index_max"`
	Sunrise              []string   `json:"sunrise"`
	Sunset               []string   `json:"sunset"`
}
