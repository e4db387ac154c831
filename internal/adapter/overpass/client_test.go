package overpass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const relationBody = `{
  "elements": [
    {
      "type": "way", "id": 11, "tags": {"name": "Sardis Lake", "natural": "water"},
      "geometry": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 0.001}, {"lat": 0.001, "lon": 0}, {"lat": 0, "lon": 0}]
    },
    {
      "type": "relation", "id": 42, "tags": {"name": "Sardis Lake", "natural": "water", "type": "multipolygon"},
      "members": [
        {"type": "way", "ref": 1, "role": "outer", "geometry": [{"lat": 34.60, "lon": -95.40}, {"lat": 34.60, "lon": -95.30}]},
        {"type": "way", "ref": 2, "role": "outer", "geometry": [{"lat": 34.66, "lon": -95.40}, {"lat": 34.66, "lon": -95.30}]},
        {"type": "way", "ref": 3, "role": "outer", "geometry": [{"lat": 34.60, "lon": -95.30}, {"lat": 34.66, "lon": -95.30}]},
        {"type": "way", "ref": 4, "role": "inner", "geometry": [{"lat": 34.62, "lon": -95.36}, {"lat": 34.63, "lon": -95.35}]},
        {"type": "way", "ref": 5, "role": "outer", "geometry": [{"lat": 34.66, "lon": -95.40}, {"lat": 34.60, "lon": -95.40}]}
      ]
    }
  ]
}`

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var sardisQuery = domain.BoundaryQuery{Name: "Sardis Lake", Lat: 34.6326, Lon: -95.3513, RadiusKm: 20}

func TestClient_FetchBoundary_StitchesRelation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		q := r.PostForm.Get("data")
		assert.Contains(t, q, "around:20000,34.632600,-95.351300")
		assert.Contains(t, q, `"name"~"^Sardis Lake$",i`)
		assert.Contains(t, q, "out geom;")
		_, _ = io.WriteString(w, relationBody)
	}))
	defer srv.Close()

	f, err := testClient(srv.URL).FetchBoundary(context.Background(), sardisQuery)
	require.NoError(t, err)

	assert.Equal(t, domain.GeometryPolygon, f.Geometry.Type)
	assert.Equal(t, "relation", f.Properties["osmType"])
	assert.Equal(t, int64(42), f.Properties["osmId"])
	assert.Equal(t, false, f.Properties["approximate"])

	rings, ok := f.Geometry.Coordinates.([]domain.Ring)
	require.True(t, ok)
	require.Len(t, rings, 1)
	assert.Len(t, rings[0], 5)
	assert.Equal(t, rings[0][0], rings[0][4])
}

func TestClient_FetchBoundary_NoElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"elements": []}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchBoundary(context.Background(), sardisQuery)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestClient_FetchBoundary_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchBoundary(context.Background(), sardisQuery)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.Status)
}

func TestBuildQuery_EscapesName(t *testing.T) {
	q := buildQuery(domain.BoundaryQuery{Name: `Lake "O.K."`, RadiusKm: 1})

	assert.Contains(t, q, `"name"~"^Lake \"O\\.K\\.\"$",i`)
	assert.Contains(t, q, "around:1000,")
}

func TestRingArea(t *testing.T) {
	square := domain.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	assert.InDelta(t, 4.0, ringArea(square), 1e-12)
}
