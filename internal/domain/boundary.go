package domain

// GeoJSON geometry types used for lake outlines.
const (
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// Position is a GeoJSON [lon, lat] pair.
type Position [2]float64

// Ring is a closed linear ring: first and last positions are equal.
type Ring []Position

// Geometry is a GeoJSON Polygon or MultiPolygon. Coordinates holds
// []Ring for a Polygon and [][]Ring for a MultiPolygon.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON Feature describing a lake outline.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// NewPolygonFeature wraps one or more outer rings in a Feature. A single ring
// becomes a Polygon, several a MultiPolygon.
func NewPolygonFeature(rings []Ring, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	g := Geometry{Type: GeometryPolygon, Coordinates: []Ring{rings[0]}}
	if len(rings) > 1 {
		polys := make([][]Ring, len(rings))
		for i, r := range rings {
			polys[i] = []Ring{r}
		}
		g = Geometry{Type: GeometryMultiPolygon, Coordinates: polys}
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// sardisOutline is a coarse hand-traced outline of the Sardis Lake shoreline.
var sardisOutline = Ring{
	{-95.4412, 34.6458},
	{-95.4127, 34.6631},
	{-95.3781, 34.6702},
	{-95.3426, 34.6675},
	{-95.3089, 34.6553},
	{-95.2874, 34.6392},
	{-95.2951, 34.6207},
	{-95.3247, 34.6071},
	{-95.3618, 34.6019},
	{-95.3993, 34.6088},
	{-95.4296, 34.6241},
	{-95.4412, 34.6458},
}

// FallbackBoundary is served when no OpenStreetMap outline can be found.
// Its properties carry approximate=true.
func FallbackBoundary(name string) Feature {
	ring := make(Ring, len(sardisOutline))
	copy(ring, sardisOutline)
	return NewPolygonFeature([]Ring{ring}, map[string]any{
		"name":        name,
		"source":      "fallback",
		"approximate": true,
	})
}

// BoundaryQuery names a water body and the point its search radius is
// centered on.
type BoundaryQuery struct {
	Name     string
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// BoundaryQuery searches for the lake's OpenStreetMap outline around its
// profile coordinates.
func (p LakeProfile) BoundaryQuery() BoundaryQuery {
	return BoundaryQuery{Name: p.OSMName, Lat: p.Lat, Lon: p.Lon, RadiusKm: p.BoundarySearchKm}
}
