package domain

import (
	"math/rand/v2"
	"time"
)

// ElevationReading is a lake water-surface elevation in feet.
type ElevationReading struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Site      string    `json:"site,omitempty"`
	Simulated bool      `json:"simulated,omitempty"`
}

// SimulatedElevation returns a reading uniformly distributed within
// SimulatedRangeFeet of normal pool. It backs the dashboard when the gauge
// cannot be reached. A nil rng uses the global source.
func SimulatedElevation(p LakeProfile, rng *rand.Rand) ElevationReading {
	u := rand.Float64()
	if rng != nil {
		u = rng.Float64()
	}
	span := p.SimulatedRangeFeet
	return ElevationReading{
		Value:     p.NormalPool - span + u*2*span,
		Timestamp: clock.Now(),
		Simulated: true,
	}
}
