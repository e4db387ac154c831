// Package overpass looks up lake outlines in OpenStreetMap through the
// Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
)

// Client implements boundary lookups against an Overpass interpreter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Overpass client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchBoundary returns the outline of the named water body. It returns
// domain.ErrNoData when no way or relation with usable geometry matches.
func (c *Client) FetchBoundary(ctx context.Context, q domain.BoundaryQuery) (domain.Feature, error) {
	start := time.Now()
	body, err := c.post(ctx, buildQuery(q))
	c.metrics.UpstreamDuration.WithLabelValues(domain.SourceOverpass).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOverpass, "error").Inc()
		return domain.Feature{}, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOverpass, "error").Inc()
		return domain.Feature{}, &domain.FetchError{Source: domain.SourceOverpass, Err: fmt.Errorf("decode response: %w", err)}
	}

	feature, ok := bestFeature(resp.Elements, q.Name)
	if !ok {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOverpass, "empty").Inc()
		return domain.Feature{}, &domain.FetchError{Source: domain.SourceOverpass, Err: domain.ErrNoData}
	}

	c.metrics.UpstreamRequests.WithLabelValues(domain.SourceOverpass, "success").Inc()
	return feature, nil
}

// qlEscaper escapes a value for use inside an Overpass QL string literal.
var qlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// buildQuery selects water ways and relations by name within the radius and
// asks for inline geometry.
func buildQuery(q domain.BoundaryQuery) string {
	name := qlEscaper.Replace(regexp.QuoteMeta(q.Name))
	radius := int(q.RadiusKm * 1000)
	around := fmt.Sprintf("(around:%d,%.6f,%.6f)", radius, q.Lat, q.Lon)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"way", "relation"} {
		fmt.Fprintf(&b, "  %s[\"natural\"=\"water\"][\"name\"~\"^%s$\",i]%s;\n", kind, name, around)
		fmt.Fprintf(&b, "  %s[\"landuse\"=\"reservoir\"][\"name\"~\"^%s$\",i]%s;\n", kind, name, around)
	}
	b.WriteString(");\nout geom;")
	return b.String()
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceOverpass, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceOverpass, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: domain.SourceOverpass, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return body, nil
}

// bestFeature converts every element to rings and keeps the one covering the
// largest area.
func bestFeature(elements []element, name string) (domain.Feature, bool) {
	var (
		best     []domain.Ring
		bestArea float64
		bestElem element
	)
	for _, el := range elements {
		rings := elementRings(el)
		if len(rings) == 0 {
			continue
		}
		var area float64
		for _, r := range rings {
			area += ringArea(r)
		}
		if area > bestArea {
			best, bestArea, bestElem = rings, area, el
		}
	}
	if best == nil {
		return domain.Feature{}, false
	}

	featureName := bestElem.Tags["name"]
	if featureName == "" {
		featureName = name
	}
	return domain.NewPolygonFeature(best, map[string]any{
		"name":        featureName,
		"source":      "openstreetmap",
		"osmType":     bestElem.Type,
		"osmId":       bestElem.ID,
		"approximate": false,
	}), true
}

func elementRings(el element) []domain.Ring {
	switch el.Type {
	case "way":
		pts := toPositions(el.Geometry)
		if len(pts) < 3 {
			return nil
		}
		return closeRings([][]domain.Position{pts})
	case "relation":
		var segments [][]domain.Position
		for _, m := range el.Members {
			if m.Type != "way" || (m.Role != "outer" && m.Role != "") {
				continue
			}
			if pts := toPositions(m.Geometry); len(pts) >= 2 {
				segments = append(segments, pts)
			}
		}
		return closeRings(StitchRings(segments))
	default:
		return nil
	}
}

func toPositions(geom []latLon) []domain.Position {
	out := make([]domain.Position, 0, len(geom))
	for _, p := range geom {
		out = append(out, domain.Position{p.Lon, p.Lat})
	}
	return out
}

// closeRings appends the first position where a ring is left open and drops
// rings too short to enclose an area.
func closeRings(segments [][]domain.Position) []domain.Ring {
	var rings []domain.Ring
	for _, s := range segments {
		if !samePoint(s[0], s[len(s)-1]) {
			s = append(s, s[0])
		}
		if len(s) < 4 {
			continue
		}
		rings = append(rings, domain.Ring(s))
	}
	return rings
}

// ringArea is the planar shoelace area in square degrees, used only to rank
// candidate outlines.
func ringArea(r domain.Ring) float64 {
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		sum += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []latLon          `json:"geometry"`
	Members  []member          `json:"members"`
}

type member struct {
	Type     string   `json:"type"`
	Ref      int64    `json:"ref"`
	Role     string   `json:"role"`
	Geometry []latLon `json:"geometry"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
