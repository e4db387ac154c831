package domain

import "fmt"

// LakeProfile is the static descriptive record for a reservoir.
// Elevations are in feet above NGVD 1929.
type LakeProfile struct {
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	NormalPool         float64 `json:"normal_pool_elevation"`
	FloodStage         float64 `json:"flood_stage_elevation"`
	StreamBed          float64 `json:"stream_bed_elevation"`
	TopOfDam           float64 `json:"top_of_dam_elevation"`
	SurfaceAreaAcres   float64 `json:"surface_area_acres"`
	ShorelineMiles     float64 `json:"shoreline_miles"`
	VolumeAcreFeet     float64 `json:"volume_acre_feet"`
	USGSSite           string  `json:"usgs_site"`
	OSMName            string  `json:"osm_name"`
	BoundarySearchKm   float64 `json:"boundary_search_km"`
	SimulatedRangeFeet float64 `json:"simulated_range_ft"`
}

// SardisLake is the profile of Sardis Lake, Pushmataha and Latimer counties, OK.
var SardisLake = LakeProfile{
	Name:               "Sardis Lake",
	Lat:                34.6326,
	Lon:                -95.3513,
	NormalPool:         599.0,
	FloodStage:         607.0,
	StreamBed:          520.0,
	TopOfDam:           623.0,
	SurfaceAreaAcres:   13610,
	ShorelineMiles:     117,
	VolumeAcreFeet:     274330,
	USGSSite:           "07335310",
	OSMName:            "Sardis Lake",
	BoundarySearchKm:   20,
	SimulatedRangeFeet: 2,
}

// Validate checks the elevation ordering
// StreamBed < NormalPool < FloodStage < TopOfDam.
func (p LakeProfile) Validate() error {
	if !(p.StreamBed < p.NormalPool && p.NormalPool < p.FloodStage && p.FloodStage < p.TopOfDam) {
		return fmt.Errorf("lake %q: elevations out of order (stream bed %.1f, normal pool %.1f, flood stage %.1f, top of dam %.1f)",
			p.Name, p.StreamBed, p.NormalPool, p.FloodStage, p.TopOfDam)
	}
	return nil
}

// SardisRamps are the public launch ramps around Sardis Lake with their
// minimum usable and optimal launch elevations.
var SardisRamps = []BoatRamp{
	{Name: "Potato Hills Central", MinElevation: 590, OptimalElevation: 595},
	{Name: "Sardis Cove", MinElevation: 592, OptimalElevation: 597},
	{Name: "Holson Creek", MinElevation: 593, OptimalElevation: 598},
	{Name: "Clayton Landing", MinElevation: 591, OptimalElevation: 596},
	{Name: "Sixshooter Camp", MinElevation: 594, OptimalElevation: 599},
	{Name: "Potato Hills South", MinElevation: 589, OptimalElevation: 594},
}
