package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cdt = time.FixedZone("CDT", -5*3600)

func testForecast() Forecast {
	return Forecast{
		Current: DefaultWeather(),
		Daily: []DailyForecast{
			{Date: "2024-06-01", TempHighF: 78, PrecipProbabilityPct: 10, WindSpeedMaxMph: 8, WeatherCode: 1, Sunrise: "2024-06-01T06:12", Sunset: "2024-06-01T20:31"},
			{Date: "2024-06-02", TempHighF: 95, PrecipProbabilityPct: 50, WindSpeedMaxMph: 20, WeatherCode: 63, Sunrise: "2024-06-02T06:12", Sunset: "2024-06-02T20:32"},
		},
	}
}

func TestBuildConditions_LiveInputs(t *testing.T) {
	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, cdt)
	in := ConditionsInput{
		ID:        "snap-1",
		At:        at,
		Lake:      SardisLake,
		Ramps:     SardisRamps,
		Elevation: Resolve(ElevationReading{Value: 604}, nil, ElevationReading{}),
		Weather:   Resolve(testForecast(), nil, Forecast{}),
	}

	c := BuildConditions(in)

	assert.Equal(t, "snap-1", c.ID)
	assert.Equal(t, "Sardis Lake", c.Lake)
	assert.Equal(t, FloodImpact{DifferenceFt: 5, AdditionalAcres: 900}, c.FloodImpact)
	assert.Len(t, c.Ramps, len(SardisRamps))
	assert.Equal(t, len(SardisRamps), c.RampSummary.Open)
	assert.False(t, c.FishingApproximate)
	assert.Len(t, c.Fishing.Factors, 5)
	require.NotNil(t, c.Sun)
	assert.False(t, c.SunApproximate)
	assert.True(t, c.Sun.Sunrise.Equal(time.Date(2024, time.June, 1, 6, 12, 0, 0, cdt)))
	assert.Len(t, c.Solunar, 4)

	want := []DayRating{
		{Date: "2024-06-01", RecreationRating: RecreationRating{Score: 115, Rating: RatingExcellent}},
		{Date: "2024-06-02", RecreationRating: RecreationRating{Score: 35, Rating: RatingPoor}},
	}
	if diff := cmp.Diff(want, c.Recreation); diff != "" {
		t.Fatalf("recreation mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildConditions_WeatherFallback(t *testing.T) {
	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, cdt)
	in := ConditionsInput{
		At:        at,
		Lake:      SardisLake,
		Ramps:     SardisRamps,
		Elevation: Resolve(ElevationReading{}, errors.New("gauge offline"), ElevationReading{Value: 599, Simulated: true}),
		Weather:   Resolve(Forecast{}, errors.New("open-meteo down"), Forecast{Current: DefaultWeather()}),
	}

	c := BuildConditions(in)

	assert.True(t, c.Elevation.Approximate)
	assert.True(t, c.FishingApproximate)
	assert.Equal(t, DefaultFishingConditions(), c.Fishing)
	assert.Empty(t, c.Recreation)
	require.NotNil(t, c.Sun)
	assert.True(t, c.SunApproximate)
	assert.Equal(t, 6, c.Sun.Sunrise.Hour())
}

func TestBuildConditions_SunTimesFollowSnapshotDate(t *testing.T) {
	f := Forecast{
		Current: DefaultWeather(),
		Daily: []DailyForecast{
			{Date: "2024-06-01", Sunrise: "2024-06-01T06:12", Sunset: "2024-06-01T20:31"},
			{Date: "2024-06-02", Sunrise: "2024-06-02T06:13", Sunset: "2024-06-02T20:32"},
		},
	}
	in := ConditionsInput{
		At:        time.Date(2024, time.June, 2, 0, 5, 0, 0, cdt),
		Lake:      SardisLake,
		Elevation: Resolve(ElevationReading{Value: 599}, nil, ElevationReading{}),
		Weather:   Resolve(f, nil, Forecast{}),
	}

	c := BuildConditions(in)

	require.NotNil(t, c.Sun)
	assert.False(t, c.SunApproximate)
	assert.True(t, c.Sun.Sunrise.Equal(time.Date(2024, time.June, 2, 6, 13, 0, 0, cdt)), "sunrise %s", c.Sun.Sunrise)
	assert.True(t, c.Sun.Sunset.Equal(time.Date(2024, time.June, 2, 20, 32, 0, 0, cdt)), "sunset %s", c.Sun.Sunset)
}

func TestBuildConditions_SunTimesComputedOutsideForecast(t *testing.T) {
	f := Forecast{
		Current: DefaultWeather(),
		Daily:   []DailyForecast{{Date: "2024-06-01", Sunrise: "2024-06-01T06:12", Sunset: "2024-06-01T20:31"}},
	}
	in := ConditionsInput{
		At:        time.Date(2024, time.June, 2, 0, 5, 0, 0, cdt),
		Lake:      SardisLake,
		Elevation: Resolve(ElevationReading{Value: 599}, nil, ElevationReading{}),
		Weather:   Resolve(f, nil, Forecast{}),
	}

	c := BuildConditions(in)

	require.NotNil(t, c.Sun)
	assert.True(t, c.SunApproximate)
	assert.Equal(t, 2, c.Sun.Sunrise.In(cdt).Day())
}

func TestForecast_SunTimesOn(t *testing.T) {
	f := testForecast()

	rise, set, ok := f.SunTimesOn("2024-06-02", cdt)
	require.True(t, ok)
	assert.True(t, rise.Equal(time.Date(2024, time.June, 2, 6, 12, 0, 0, cdt)))
	assert.True(t, set.Equal(time.Date(2024, time.June, 2, 20, 32, 0, 0, cdt)))

	_, _, ok = f.SunTimesOn("2024-06-03", cdt)
	assert.False(t, ok)

	_, _, ok = Forecast{Daily: []DailyForecast{{Date: "2024-06-01"}}}.SunTimesOn("2024-06-01", cdt)
	assert.False(t, ok, "missing sun times")
}

func TestBuildConditions_WaterTempOverride(t *testing.T) {
	cold := 45.0
	in := ConditionsInput{
		At:         time.Date(2024, time.June, 1, 9, 0, 0, 0, cdt),
		Lake:       SardisLake,
		Elevation:  Resolve(ElevationReading{Value: 599}, nil, ElevationReading{}),
		Weather:    Resolve(testForecast(), nil, Forecast{}),
		WaterTempF: &cold,
	}

	c := BuildConditions(in)

	assert.Equal(t, FactorNegative, c.Fishing.Factors[1].Status)
	assert.Equal(t, "45°F", c.Fishing.Factors[1].Value)
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
	assert.Equal(t, fixed, SimulatedElevation(SardisLake, nil).Timestamp)
}
