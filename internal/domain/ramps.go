package domain

import "fmt"

// Ramp status values.
const (
	RampOpen    = "open"
	RampLimited = "limited"
	RampClosed  = "closed"
)

// Vessel classes that may launch from a ramp.
const (
	VesselLargeCruiser = "Large Cruisers"
	VesselPontoon      = "Pontoons"
	VesselBassBoat     = "Bass Boats"
	VesselSkiBoat      = "Ski Boats"
	VesselPWC          = "Personal Watercraft"
	VesselJonBoat      = "Jon Boats"
	VesselKayak        = "Kayaks & Canoes"
)

// goodConditionsMargin is how far above a ramp's minimum elevation the lake
// must stand before medium vessels can launch.
const goodConditionsMargin = 3.0

// lowWaterAdvisoryFeet is how far below normal pool the lake must drop before
// the lake-wide advisory is shown.
const lowWaterAdvisoryFeet = 5.0

var (
	allVessels    = []string{VesselLargeCruiser, VesselPontoon, VesselBassBoat, VesselSkiBoat, VesselPWC, VesselJonBoat, VesselKayak}
	mediumVessels = []string{VesselPontoon, VesselBassBoat, VesselSkiBoat, VesselPWC, VesselJonBoat, VesselKayak}
	smallCraft    = []string{VesselJonBoat, VesselKayak}
)

// BoatRamp is a launch ramp with its usable elevation thresholds in feet.
type BoatRamp struct {
	Name             string  `json:"name"`
	MinElevation     float64 `json:"min_elevation"`
	OptimalElevation float64 `json:"optimal_elevation"`
}

// RampStatus is the accessibility of one ramp at a given lake elevation.
type RampStatus struct {
	Ramp              BoatRamp `json:"ramp"`
	Status            string   `json:"status"`
	Message           string   `json:"message"`
	LaunchableVessels []string `json:"launchable_vessels"`
}

// RampSummary aggregates ramp statuses for the lake-wide banner.
type RampSummary struct {
	Open     int    `json:"open"`
	Limited  int    `json:"limited"`
	Closed   int    `json:"closed"`
	Advisory string `json:"advisory,omitempty"`
}

// ClassifyRamp maps the current elevation onto the ramp's four bands:
//   - at or above optimal: open, all vessels
//   - at or above min+3ft: open, medium vessels and PWC
//   - at or above min: limited, small craft only
//   - below min: closed
func ClassifyRamp(currentFt float64, ramp BoatRamp) RampStatus {
	s := RampStatus{Ramp: ramp}
	switch {
	case currentFt >= ramp.OptimalElevation:
		s.Status = RampOpen
		s.Message = "Ramp fully operational"
		s.LaunchableVessels = copyVessels(allVessels)
	case currentFt >= ramp.MinElevation+goodConditionsMargin:
		s.Status = RampOpen
		s.Message = "Ramp accessible – good conditions"
		s.LaunchableVessels = copyVessels(mediumVessels)
	case currentFt >= ramp.MinElevation:
		s.Status = RampLimited
		s.Message = fmt.Sprintf("Limited access – only %.1f ft above minimum launch elevation", currentFt-ramp.MinElevation)
		s.LaunchableVessels = copyVessels(smallCraft)
	default:
		s.Status = RampClosed
		s.Message = fmt.Sprintf("Ramp closed – water is %.1f ft below minimum launch elevation", ramp.MinElevation-currentFt)
		s.LaunchableVessels = []string{}
	}
	return s
}

// ClassifyRamps classifies every ramp at the same elevation, preserving order.
func ClassifyRamps(currentFt float64, ramps []BoatRamp) []RampStatus {
	out := make([]RampStatus, 0, len(ramps))
	for _, r := range ramps {
		out = append(out, ClassifyRamp(currentFt, r))
	}
	return out
}

// SummarizeRamps counts statuses per bucket and sets the low-water advisory
// when the lake is more than five feet below normal pool.
func SummarizeRamps(statuses []RampStatus, currentFt, normalPoolFt float64) RampSummary {
	var sum RampSummary
	for _, s := range statuses {
		switch s.Status {
		case RampOpen:
			sum.Open++
		case RampLimited:
			sum.Limited++
		case RampClosed:
			sum.Closed++
		}
	}
	if currentFt < normalPoolFt-lowWaterAdvisoryFeet {
		sum.Advisory = fmt.Sprintf("Low water advisory: lake is %.1f ft below normal pool. %d of %d ramps closed.",
			normalPoolFt-currentFt, sum.Closed, len(statuses))
	}
	return sum
}

func copyVessels(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}
