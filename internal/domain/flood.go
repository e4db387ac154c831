package domain

import "math"

// Flood-impact approximation constants.
const (
	acresPerFoot        = 180.0
	structuresThreshold = 5.0
	structuresPerFoot   = 12.0
	evacuationThreshold = 8.0
	evacuationPerFoot   = 0.5
)

// FloodImpact is the estimated effect of the lake standing above normal pool.
type FloodImpact struct {
	DifferenceFt       float64 `json:"difference_ft"`
	AdditionalAcres    int     `json:"additional_acres"`
	ImpactedStructures int     `json:"impacted_structures"`
	EvacuationZoneSqMi int     `json:"evacuation_zone_sq_mi"`
}

// EstimateFloodImpact computes flood impact from the current and normal pool
// elevations. The three outputs are independent step functions with
// breakpoints at 0, 5 and 8 feet above normal pool.
func EstimateFloodImpact(currentFt, normalPoolFt float64) FloodImpact {
	d := currentFt - normalPoolFt

	impact := FloodImpact{
		DifferenceFt:    d,
		AdditionalAcres: roundHalfUp(math.Max(0, d) * acresPerFoot),
	}
	if d > structuresThreshold {
		impact.ImpactedStructures = roundHalfUp((d - structuresThreshold) * structuresPerFoot)
	}
	if d > evacuationThreshold {
		impact.EvacuationZoneSqMi = roundHalfUp((d - evacuationThreshold) * evacuationPerFoot)
	}
	return impact
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
