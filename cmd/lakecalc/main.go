// Command lakecalc prints the dashboard's derived metrics for a given lake
// elevation, date and weather without contacting any upstream service.
//
// Usage:
//
//	go run ./cmd/lakecalc -elevation 604.5 -date 2024-06-01 -temp 84 -wind 12
//	go run ./cmd/lakecalc -elevation 592 -json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/sardis-lake-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
)

// options are the parsed command-line flags.
type options struct {
	elevation float64
	date      string
	weather   domain.WeatherSnapshot
	precip    float64
	waterTemp *float64
	json      bool
}

func parseFlags(args []string) (options, error) {
	defaults := domain.DefaultWeather()
	fs := flag.NewFlagSet("lakecalc", flag.ContinueOnError)

	elevation := fs.Float64("elevation", domain.SardisLake.NormalPool, "lake elevation in feet")
	date := fs.String("date", "", "local date as YYYY-MM-DD (default today)")
	temp := fs.Float64("temp", defaults.TemperatureF, "air temperature / daily high in °F")
	pressure := fs.Float64("pressure", defaults.PressureHPa, "sea-level pressure in hPa")
	wind := fs.Float64("wind", defaults.WindSpeedMph, "wind speed in mph")
	cloud := fs.Float64("cloud", defaults.CloudCoverPct, "cloud cover percent")
	precip := fs.Float64("precip", defaults.PrecipitationProbability, "precipitation probability percent")
	code := fs.Int("code", defaults.WeatherCode, "WMO weather code")
	waterTemp := fs.String("water-temp", "", "measured water temperature in °F (default estimated from air)")
	asJSON := fs.Bool("json", false, "print the full conditions snapshot as JSON")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	w := defaults
	w.TemperatureF = *temp
	w.PressureHPa = *pressure
	w.WindSpeedMph = *wind
	w.CloudCoverPct = *cloud
	w.PrecipitationProbability = *precip
	w.WeatherCode = *code

	opts := options{
		elevation: *elevation,
		date:      strings.TrimSpace(*date),
		weather:   w,
		precip:    *precip,
		json:      *asJSON,
	}
	if s := strings.TrimSpace(*waterTemp); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return options{}, fmt.Errorf("invalid -water-temp %q", s)
		}
		opts.waterTemp = &v
	}
	return opts, nil
}

// snapshotTime resolves -date to local noon in loc, or now when unset.
func snapshotTime(date string, now time.Time, loc *time.Location) (time.Time, error) {
	if date == "" {
		return now.In(loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: want YYYY-MM-DD", date)
	}
	return d.Add(12 * time.Hour), nil
}

func buildConditions(opts options, at time.Time) domain.Conditions {
	current := opts.weather
	current.ObservedAt = at

	forecast := domain.Forecast{
		Current: current,
		Daily: []domain.DailyForecast{{
			Date:                 at.Format(time.DateOnly),
			WeatherCode:          current.WeatherCode,
			TempHighF:            current.TemperatureF,
			PrecipProbabilityPct: opts.precip,
			WindSpeedMaxMph:      current.WindSpeedMph,
		}},
	}

	return domain.BuildConditions(domain.ConditionsInput{
		ID:         "lakecalc",
		At:         at,
		Lake:       domain.SardisLake,
		Ramps:      domain.SardisRamps,
		Elevation:  domain.Resolve(domain.ElevationReading{Value: opts.elevation, Timestamp: at}, nil, domain.ElevationReading{}),
		Weather:    domain.Resolve(forecast, nil, domain.Forecast{}),
		WaterTempF: opts.waterTemp,
	})
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fatalf("%v", err)
	}

	loc, err := time.LoadLocation(openmeteo.Timezone)
	if err != nil {
		fatalf("load timezone: %v", err)
	}
	at, err := snapshotTime(opts.date, time.Now(), loc)
	if err != nil {
		fatalf("%v", err)
	}
	domain.SetClock(clockwork.NewFakeClockAt(at))

	c := buildConditions(opts, at)

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			fatalf("encode: %v", err)
		}
		return
	}
	printConditions(os.Stdout, c, domain.SardisLake)
}

func printConditions(w io.Writer, c domain.Conditions, lake domain.LakeProfile) {
	const clock = "3:04 PM"

	fmt.Fprintf(w, "%s on %s\n", c.Lake, c.GeneratedAt.Format("Monday, January 2, 2006"))
	fmt.Fprintf(w, "Elevation: %.2f ft (normal pool %.0f ft, %+.2f ft)\n\n",
		c.Elevation.Value.Value, lake.NormalPool, c.FloodImpact.DifferenceFt)

	fmt.Fprintln(w, "Flood impact")
	fmt.Fprintf(w, "  additional acres:    %s\n", humanize.Comma(int64(c.FloodImpact.AdditionalAcres)))
	fmt.Fprintf(w, "  impacted structures: %s\n", humanize.Comma(int64(c.FloodImpact.ImpactedStructures)))
	fmt.Fprintf(w, "  evacuation zone:     %d sq mi\n\n", c.FloodImpact.EvacuationZoneSqMi)

	fmt.Fprintf(w, "Boat ramps (%d open, %d limited, %d closed)\n", c.RampSummary.Open, c.RampSummary.Limited, c.RampSummary.Closed)
	for _, r := range c.Ramps {
		fmt.Fprintf(w, "  %-22s %-8s %s\n", r.Ramp.Name, r.Status, r.Message)
	}
	if c.RampSummary.Advisory != "" {
		fmt.Fprintf(w, "  %s\n", c.RampSummary.Advisory)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Moon: %s, %d%% illuminated, %.1f days old\n", c.Moon.Phase, c.Moon.IlluminationPercent, c.Moon.AgeDays)
	fmt.Fprintln(w, "Solunar periods")
	for _, p := range c.Solunar {
		fmt.Fprintf(w, "  %-5s %s – %s\n", p.Kind, p.Start.Format(clock), p.End.Format(clock))
	}
	fmt.Fprintln(w)

	if c.Sun != nil {
		note := ""
		if c.SunApproximate {
			note = " (computed)"
		}
		fmt.Fprintf(w, "Sun%s: rise %s, set %s, %.1f h of daylight\n", note,
			c.Sun.Sunrise.Format(clock), c.Sun.Sunset.Format(clock), c.Sun.DayLengthHours)
		fmt.Fprintf(w, "  golden hour %s – %s and %s – %s\n",
			c.Sun.GoldenMorning.Start.Format(clock), c.Sun.GoldenMorning.End.Format(clock),
			c.Sun.GoldenEvening.Start.Format(clock), c.Sun.GoldenEvening.End.Format(clock))
		fmt.Fprintf(w, "  blue hour   %s – %s and %s – %s\n\n",
			c.Sun.BlueMorning.Start.Format(clock), c.Sun.BlueMorning.End.Format(clock),
			c.Sun.BlueEvening.Start.Format(clock), c.Sun.BlueEvening.End.Format(clock))
	}

	for _, d := range c.Recreation {
		fmt.Fprintf(w, "Recreation: %s (score %d)\n\n", d.Rating, d.Score)
	}

	fmt.Fprintf(w, "Fishing: %s (%d/100)\n", c.Fishing.Rating, c.Fishing.OverallScore)
	for _, f := range c.Fishing.Factors {
		fmt.Fprintf(w, "  %-20s %-10s %3d  %s\n", f.Name, f.Value, f.Score, f.Detail)
	}
	for _, s := range c.Fishing.SpeciesActivity {
		fmt.Fprintf(w, "  %-16s %s\n", s.Species, s.Activity)
	}
	for _, tip := range c.Fishing.Tips {
		fmt.Fprintf(w, "  - %s\n", tip)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lakecalc: "+format+"\n", args...)
	os.Exit(1)
}
