package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRamp = BoatRamp{Name: "Test Ramp", MinElevation: 590, OptimalElevation: 595}

func TestClassifyRamp(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		status  string
		message string
		vessels []string
	}{
		{"above optimal", 596, RampOpen, "Ramp fully operational", allVessels},
		{"at optimal", 595, RampOpen, "Ramp fully operational", allVessels},
		{"good conditions", 593, RampOpen, "Ramp accessible – good conditions", mediumVessels},
		{"limited", 592, RampLimited, "Limited access – only 2.0 ft above minimum launch elevation", smallCraft},
		{"at minimum", 590, RampLimited, "Limited access – only 0.0 ft above minimum launch elevation", smallCraft},
		{"closed", 588, RampClosed, "Ramp closed – water is 2.0 ft below minimum launch elevation", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ClassifyRamp(tt.current, testRamp)
			assert.Equal(t, tt.status, s.Status)
			assert.Equal(t, tt.message, s.Message)
			assert.Equal(t, tt.vessels, s.LaunchableVessels)
			assert.Equal(t, testRamp, s.Ramp)
		})
	}
}

func TestClassifyRamp_VesselSlicesAreCopies(t *testing.T) {
	s := ClassifyRamp(600, testRamp)
	s.LaunchableVessels[0] = "mutated"

	assert.Equal(t, VesselLargeCruiser, allVessels[0])
}

func TestSummarizeRamps(t *testing.T) {
	statuses := ClassifyRamps(592, SardisRamps)
	require.Len(t, statuses, len(SardisRamps))

	sum := SummarizeRamps(statuses, 592, SardisLake.NormalPool)

	assert.Equal(t, 1, sum.Open)
	assert.Equal(t, 3, sum.Limited)
	assert.Equal(t, 2, sum.Closed)
	assert.Equal(t, "Low water advisory: lake is 7.0 ft below normal pool. 2 of 6 ramps closed.", sum.Advisory)
}

func TestSummarizeRamps_NoAdvisoryNearNormalPool(t *testing.T) {
	statuses := ClassifyRamps(598, SardisRamps)
	sum := SummarizeRamps(statuses, 598, SardisLake.NormalPool)

	assert.Empty(t, sum.Advisory)
	assert.Equal(t, len(SardisRamps), sum.Open+sum.Limited+sum.Closed)
}

func TestSummarizeRamps_AdvisoryThresholdIsStrict(t *testing.T) {
	sum := SummarizeRamps(nil, 594, 599)
	assert.Empty(t, sum.Advisory)

	sum = SummarizeRamps(nil, 593.9, 599)
	assert.NotEmpty(t, sum.Advisory)
}
