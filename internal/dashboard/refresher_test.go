package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeWater struct {
	reading domain.ElevationReading
	err     error
}

func (f *fakeWater) LatestElevation(context.Context) (domain.ElevationReading, error) {
	return f.reading, f.err
}

type fakeWeather struct {
	mu       sync.Mutex
	forecast domain.Forecast
	err      error
}

func (f *fakeWeather) FetchForecast(_ context.Context, _, _ float64) (domain.Forecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forecast, f.err
}

type fakeBoundary struct {
	feature domain.Feature
	err     error
	query   domain.BoundaryQuery
}

func (f *fakeBoundary) FetchBoundary(_ context.Context, q domain.BoundaryQuery) (domain.Feature, error) {
	f.query = q
	return f.feature, f.err
}

type fakePublisher struct {
	mu    sync.Mutex
	snaps []domain.Conditions
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, c domain.Conditions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snaps = append(f.snaps, c)
	return nil
}

type fakeHistory struct {
	mu       sync.Mutex
	readings []domain.ElevationReading
}

func (f *fakeHistory) Record(_ context.Context, r domain.ElevationReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, r)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveForecast() domain.Forecast {
	w := domain.DefaultWeather()
	w.TemperatureF = 80
	return domain.Forecast{
		Current: w,
		Daily:   []domain.DailyForecast{{Date: "2024-06-01", TempHighF: 80, WeatherCode: 1}},
	}
}

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func newTestRefresher(t *testing.T, src Sources) (*Refresher, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	r := New(domain.SardisLake, domain.SardisRamps, chicago(t), src, DefaultIntervals, discardLogger(), m)
	r.newID = func() string { return "snap-id" }
	return r, m
}

// --- tests ---

func TestRefresher_RefreshAll_LiveSources(t *testing.T) {
	water := &fakeWater{reading: domain.ElevationReading{Value: 603.2, Site: "07335310"}}
	boundary := &fakeBoundary{feature: domain.NewPolygonFeature([]domain.Ring{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, nil)}
	pub := &fakePublisher{}
	hist := &fakeHistory{}
	r, m := newTestRefresher(t, Sources{
		WaterLevel: water,
		Weather:    &fakeWeather{forecast: liveForecast()},
		Boundary:   boundary,
		Publisher:  pub,
		History:    hist,
	})

	require.Error(t, r.CheckReadiness(context.Background()))
	require.NoError(t, r.RefreshAll(context.Background()))
	require.NoError(t, r.CheckReadiness(context.Background()))

	assert.True(t, r.Elevation().OK())
	assert.InDelta(t, 603.2, r.Elevation().Value.Value, 1e-9)
	assert.InDelta(t, 80.0, r.Forecast().Value.Current.TemperatureF, 1e-9)
	assert.False(t, r.Boundary().Approximate)
	assert.Equal(t, domain.SardisLake.BoundaryQuery(), boundary.query)

	require.Len(t, pub.snaps, 1)
	snap := pub.snaps[0]
	assert.Equal(t, "snap-id", snap.ID)
	assert.InDelta(t, 4.2, snap.FloodImpact.DifferenceFt, 1e-9)
	assert.False(t, snap.FishingApproximate)
	assert.Len(t, snap.Recreation, 1)

	require.Len(t, hist.readings, 1)
	assert.Equal(t, "07335310", hist.readings[0].Site)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SnapshotsPublished), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ReadingsRecorded), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues(domain.SourceUSGS)), 0)
}

func TestRefresher_RefreshAll_FallsBackAndStillReady(t *testing.T) {
	r, m := newTestRefresher(t, Sources{
		WaterLevel: &fakeWater{err: errors.New("gauge offline")},
		Weather:    &fakeWeather{err: errors.New("open-meteo down")},
		Boundary:   &fakeBoundary{err: domain.ErrNoData},
	})

	require.NoError(t, r.RefreshAll(context.Background()))
	require.NoError(t, r.CheckReadiness(context.Background()))

	elev := r.Elevation()
	assert.True(t, elev.Approximate)
	assert.True(t, elev.Value.Simulated)
	assert.InDelta(t, domain.SardisLake.NormalPool, elev.Value.Value, domain.SardisLake.SimulatedRangeFeet)
	assert.Equal(t, "gauge offline", elev.ErrorMessage())

	assert.Equal(t, domain.DefaultWeather(), r.Forecast().Value.Current)
	assert.Equal(t, true, r.Boundary().Value.Properties["approximate"])

	snap := r.Snapshot(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, snap.FishingApproximate)
	assert.Equal(t, domain.DefaultFishingConditions(), snap.Fishing)
	assert.True(t, snap.SunApproximate)

	for _, src := range []string{domain.SourceUSGS, domain.SourceOpenMeteo, domain.SourceOverpass} {
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues(src)), 0, src)
	}
}

func TestRefresher_LastWriteWins(t *testing.T) {
	weather := &fakeWeather{forecast: liveForecast()}
	r, _ := newTestRefresher(t, Sources{Weather: weather})

	r.RefreshWeather(context.Background())
	assert.True(t, r.Forecast().OK())

	weather.mu.Lock()
	weather.err = errors.New("timeout")
	weather.mu.Unlock()
	r.RefreshWeather(context.Background())

	got := r.Forecast()
	assert.False(t, got.OK())
	assert.Equal(t, domain.DefaultWeather(), got.Value.Current, "failed refresh replaces, never merges")
}

func TestRefresher_PublishErrorCounted(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r, m := newTestRefresher(t, Sources{
		WaterLevel: &fakeWater{reading: domain.ElevationReading{Value: 599}},
		Weather:    &fakeWeather{forecast: liveForecast()},
		Boundary:   &fakeBoundary{err: domain.ErrNoData},
		Publisher:  pub,
	})

	require.NoError(t, r.RefreshAll(context.Background()))

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.PublishErrors), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.SnapshotsPublished), 0)
}

func TestRefresher_InitialStateIsFallback(t *testing.T) {
	r, _ := newTestRefresher(t, Sources{})

	assert.True(t, r.Elevation().Approximate)
	assert.True(t, r.Forecast().Approximate)
	assert.True(t, r.Boundary().Approximate)
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	r, m := newTestRefresher(t, Sources{
		WaterLevel: &fakeWater{reading: domain.ElevationReading{Value: 599}},
		Weather:    &fakeWeather{forecast: liveForecast()},
		Boundary:   &fakeBoundary{err: domain.ErrNoData},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return r.CheckReadiness(context.Background()) == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RefresherRunning), 0)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.RefresherRunning), 0)
}

func TestRefresher_PublishesInLakeTimezone(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 14, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	forecast := liveForecast()
	forecast.Daily[0].Sunrise = "2024-06-01T06:12"
	forecast.Daily[0].Sunset = "2024-06-01T20:31"
	pub := &fakePublisher{}
	r, _ := newTestRefresher(t, Sources{
		WaterLevel: &fakeWater{reading: domain.ElevationReading{Value: 599}},
		Weather:    &fakeWeather{forecast: forecast},
		Boundary:   &fakeBoundary{err: domain.ErrNoData},
		Publisher:  pub,
	})

	require.NoError(t, r.RefreshAll(context.Background()))

	require.Len(t, pub.snaps, 1)
	snap := pub.snaps[0]
	loc := chicago(t)
	assert.Equal(t, "America/Chicago", snap.GeneratedAt.Location().String())
	require.NotNil(t, snap.Sun)
	assert.False(t, snap.SunApproximate)
	assert.True(t, snap.Sun.Sunrise.Equal(time.Date(2024, time.June, 1, 11, 12, 0, 0, time.UTC)), "sunrise %s", snap.Sun.Sunrise)

	midnight := time.Date(2024, time.June, 1, 0, 0, 0, 0, loc)
	require.Len(t, snap.Solunar, 4)
	for _, p := range snap.Solunar {
		assert.False(t, p.Start.Before(midnight), "solunar %s starts before local midnight", p.Start)
		assert.True(t, p.Start.Before(midnight.AddDate(0, 0, 1)), "solunar %s starts after the local day", p.Start)
	}
}

func TestRefresher_SimulatedReadingsNotRecorded(t *testing.T) {
	hist := &fakeHistory{}
	r, m := newTestRefresher(t, Sources{
		WaterLevel: &fakeWater{err: errors.New("gauge offline")},
		History:    hist,
	})

	r.RefreshWaterLevel(context.Background())

	assert.True(t, r.Elevation().Value.Simulated)
	assert.Empty(t, hist.readings)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.ReadingsRecorded), 0)
}
