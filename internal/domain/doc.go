// Package domain models the derived lake metrics shown on the Sardis Lake
// conditions dashboard.
//
// # Data Sources
//
// Lake elevation comes from the USGS Instantaneous Values service (parameter
// 62614, lake/reservoir water-surface elevation above NGVD 1929, in feet).
// Weather comes from the Open-Meteo forecast API with fixed US units (°F, mph,
// inches) in the America/Chicago timezone. Sea-level pressure arrives in hPa and
// is converted to inches of mercury before scoring.
//
// # Derived Metrics
//
// Every function in this package is pure: identical inputs always produce
// identical outputs. The only exception is [SimulatedElevation], which is
// randomized and only used when the gauge is unavailable.
//
// Flood impact uses three independent step functions keyed on the difference
// between the current elevation and normal pool:
//
//	additional acres    = max(0, d) × 180
//	impacted structures = (d − 5) × 12   when d > 5
//	evacuation sq mi    = (d − 8) × 0.5  when d > 8
//
// Each product is rounded half-up.
//
// Boat ramps are classified into four bands relative to each ramp's minimum and
// optimal launch elevations (open, open with good conditions, limited, closed).
//
// The fishing activity index averages five factor sub-scores (pressure, water
// temperature, wind, moon phase, cloud cover). Species activity and tips are
// derived from the raw inputs, not from the aggregate score.
//
// The recreation-day rating starts at 100 and applies every matching
// adjustment for temperature, precipitation probability, wind, and WMO weather
// code. The score is not clamped before it is bucketed.
//
// # Astronomy
//
// Moon phase is the age since the reference new moon of 2000-01-06 18:14 UTC,
// modulo the synodic month of 29.53058867 days, bucketed into eight equal
// ranges centered on the principal phases.
//
// Solunar windows are a folk heuristic: the daily anchor is local midnight plus
// (illumination% / 100) × 12 hours. Major windows (2h) open at the anchor and
// twelve hours later; minor windows (1h) open six hours after each major.
//
// # Fallbacks
//
// Upstream failures never surface as hard errors to the dashboard. Callers
// wrap every fetch in a [Result] via [Resolve], which keeps the error and marks
// the substituted default as approximate.
package domain
