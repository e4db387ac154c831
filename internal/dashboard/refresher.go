// Package dashboard owns the live lake state: it refreshes each upstream
// source on its own schedule and assembles conditions snapshots from the
// latest results.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// WaterLevelSource returns the newest lake elevation reading.
type WaterLevelSource interface {
	LatestElevation(ctx context.Context) (domain.ElevationReading, error)
}

// WeatherSource returns the forecast for a point.
type WeatherSource interface {
	FetchForecast(ctx context.Context, lat, lon float64) (domain.Forecast, error)
}

// BoundarySource returns a lake outline.
type BoundarySource interface {
	FetchBoundary(ctx context.Context, q domain.BoundaryQuery) (domain.Feature, error)
}

// Publisher receives every snapshot built after a refresh.
type Publisher interface {
	Publish(ctx context.Context, c domain.Conditions) error
}

// HistoryRecorder stores every water-level reading.
type HistoryRecorder interface {
	Record(ctx context.Context, r domain.ElevationReading) error
}

// Intervals sets how often each source is re-fetched.
type Intervals struct {
	Weather    time.Duration
	WaterLevel time.Duration
	Boundary   time.Duration
}

// DefaultIntervals matches the dashboard's refresh cadence.
var DefaultIntervals = Intervals{
	Weather:    15 * time.Minute,
	WaterLevel: 30 * time.Minute,
	Boundary:   24 * time.Hour,
}

var errNotFetched = errors.New("not fetched yet")

// Sources bundles the upstream clients and optional sinks. Publisher and
// History may be nil.
type Sources struct {
	WaterLevel WaterLevelSource
	Weather    WeatherSource
	Boundary   BoundarySource
	Publisher  Publisher
	History    HistoryRecorder
}

// Refresher keeps the latest result of each source. Fetches are never
// cancelled by newer ones; whichever completes last wins its slot.
type Refresher struct {
	lake      domain.LakeProfile
	ramps     []domain.BoatRamp
	loc       *time.Location
	src       Sources
	intervals Intervals
	logger    *slog.Logger
	metrics   *observability.Metrics
	newID     func() string

	mu        sync.RWMutex
	elevation domain.Result[domain.ElevationReading]
	forecast  domain.Result[domain.Forecast]
	outline   domain.Result[domain.Feature]

	ready atomic.Bool
}

// New creates a Refresher whose state starts at the fallbacks until the
// first refresh completes. Published snapshots are built in loc, the lake's
// local timezone; nil means UTC.
func New(lake domain.LakeProfile, ramps []domain.BoatRamp, loc *time.Location, src Sources, intervals Intervals, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	if loc == nil {
		loc = time.UTC
	}
	return &Refresher{
		lake:      lake,
		ramps:     ramps,
		loc:       loc,
		src:       src,
		intervals: intervals,
		logger:    logger,
		metrics:   metrics,
		newID:     uuid.NewString,
		elevation: domain.Resolve(domain.ElevationReading{}, errNotFetched, domain.SimulatedElevation(lake, nil)),
		forecast:  domain.Resolve(domain.Forecast{}, errNotFetched, fallbackForecast()),
		outline:   domain.Resolve(domain.Feature{}, errNotFetched, domain.FallbackBoundary(lake.Name)),
	}
}

// CheckReadiness returns nil once the first full refresh has completed,
// even if it fell back for every source.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("initial refresh has not completed")
	}
	return nil
}

// Run refreshes every source once, then on schedule until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started",
		"weather_interval", r.intervals.Weather,
		"water_level_interval", r.intervals.WaterLevel,
		"boundary_interval", r.intervals.Boundary,
	)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	if err := r.RefreshAll(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	c := cron.New()
	jobs := []struct {
		every time.Duration
		run   func(context.Context)
	}{
		{r.intervals.Weather, func(ctx context.Context) { r.RefreshWeather(ctx); r.publish(ctx) }},
		{r.intervals.WaterLevel, func(ctx context.Context) { r.RefreshWaterLevel(ctx); r.publish(ctx) }},
		{r.intervals.Boundary, r.RefreshBoundary},
	}
	for _, job := range jobs {
		run := job.run
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", job.every), func() { run(ctx) }); err != nil {
			return fmt.Errorf("schedule refresh every %s: %w", job.every, err)
		}
	}
	c.Start()

	<-ctx.Done()
	r.logger.Info("refresher stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	return nil
}

// RefreshAll fetches every source concurrently, marks the refresher ready
// and publishes one snapshot.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { r.RefreshWaterLevel(gCtx); return nil })
	g.Go(func() error { r.RefreshWeather(gCtx); return nil })
	g.Go(func() error { r.RefreshBoundary(gCtx); return nil })
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.ready.Store(true)
	r.publish(ctx)
	return nil
}

// RefreshWaterLevel fetches the latest gauge reading, substituting a
// simulated one when the gauge is unreachable.
func (r *Refresher) RefreshWaterLevel(ctx context.Context) {
	start := time.Now()
	reading, err := r.src.WaterLevel.LatestElevation(ctx)
	res := domain.Resolve(reading, err, domain.SimulatedElevation(r.lake, nil))
	r.observe(domain.SourceUSGS, start, err)

	r.mu.Lock()
	r.elevation = res
	r.mu.Unlock()

	// Simulated readings are noise; only gauge readings go into history.
	if r.src.History != nil && res.OK() {
		if err := r.src.History.Record(ctx, res.Value); err != nil {
			r.logger.Error("record reading failed", "error", err)
		} else {
			r.metrics.ReadingsRecorded.Inc()
		}
	}
}

// RefreshWeather fetches the forecast, substituting the default snapshot on
// failure.
func (r *Refresher) RefreshWeather(ctx context.Context) {
	start := time.Now()
	forecast, err := r.src.Weather.FetchForecast(ctx, r.lake.Lat, r.lake.Lon)
	res := domain.Resolve(forecast, err, fallbackForecast())
	r.observe(domain.SourceOpenMeteo, start, err)

	r.mu.Lock()
	r.forecast = res
	r.mu.Unlock()
}

// RefreshBoundary fetches the lake outline, substituting the built-in
// approximate polygon on failure.
func (r *Refresher) RefreshBoundary(ctx context.Context) {
	start := time.Now()
	feature, err := r.src.Boundary.FetchBoundary(ctx, r.lake.BoundaryQuery())
	res := domain.Resolve(feature, err, domain.FallbackBoundary(r.lake.Name))
	r.observe(domain.SourceOverpass, start, err)

	r.mu.Lock()
	r.outline = res
	r.mu.Unlock()
}

// Elevation returns the latest water-level result.
func (r *Refresher) Elevation() domain.Result[domain.ElevationReading] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elevation
}

// Forecast returns the latest weather result.
func (r *Refresher) Forecast() domain.Result[domain.Forecast] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forecast
}

// Boundary returns the latest lake outline result.
func (r *Refresher) Boundary() domain.Result[domain.Feature] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outline
}

// Snapshot builds a conditions snapshot from the current state at t. Sun
// times and solunar windows are computed for t's calendar day in t's zone.
func (r *Refresher) Snapshot(t time.Time) domain.Conditions {
	r.mu.RLock()
	in := domain.ConditionsInput{
		ID:        r.newID(),
		At:        t,
		Lake:      r.lake,
		Ramps:     r.ramps,
		Elevation: r.elevation,
		Weather:   r.forecast,
	}
	r.mu.RUnlock()
	return domain.BuildConditions(in)
}

func (r *Refresher) publish(ctx context.Context) {
	if r.src.Publisher == nil || ctx.Err() != nil {
		return
	}
	snap := r.Snapshot(domain.Now().In(r.loc))
	if err := r.src.Publisher.Publish(ctx, snap); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Error("publish snapshot failed", "id", snap.ID, "error", err)
		return
	}
	r.metrics.SnapshotsPublished.Inc()
}

func (r *Refresher) observe(source string, start time.Time, err error) {
	r.metrics.RefreshDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.Fallbacks.WithLabelValues(source).Inc()
		r.logger.Warn("refresh fell back", "source", source, "error", err)
		return
	}
	r.logger.Debug("refresh complete", "source", source, "duration", time.Since(start))
}

func fallbackForecast() domain.Forecast {
	return domain.Forecast{Current: domain.DefaultWeather()}
}
