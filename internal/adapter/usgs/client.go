// Package usgs fetches instantaneous values from the USGS Water Services API.
package usgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
)

// USGS marks missing samples with this sentinel.
const noDataValue = -999999

// Query selects one site's series. Empty fields take the client defaults.
type Query struct {
	Site        string
	Period      string
	ParameterCd string
}

// Meta is attached to every proxied response.
type Meta struct {
	Site          string    `json:"site"`
	RequestedSite string    `json:"requestedSite"`
	ParameterCd   string    `json:"parameterCd"`
	Period        string    `json:"period"`
	Alternate     bool      `json:"alternate"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// Response is a successful fetch: the upstream JSON enriched with Meta, plus
// the decoded series for callers that want readings.
type Response struct {
	Body   json.RawMessage
	Meta   Meta
	series []timeSeries
}

// SitesError reports that the requested site and every alternate failed.
type SitesError struct {
	TriedSites []string
	Err        error
}

func (e *SitesError) Error() string {
	return fmt.Sprintf("all USGS sites failed (%s): %v", strings.Join(e.TriedSites, ", "), e.Err)
}

func (e *SitesError) Unwrap() error { return e.Err }

// Client implements water-level lookups against the USGS IV service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	site        string
	alternates  []string
	parameterCd string
	period      string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	Site           string
	AlternateSites []string
	ParameterCd    string
	Period         string
	Timeout        time.Duration
}

// NewClient creates a USGS client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     opts.BaseURL,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		site:        opts.Site,
		alternates:  opts.AlternateSites,
		parameterCd: opts.ParameterCd,
		period:      opts.Period,
		metrics:     metrics,
		logger:      logger,
	}
}

// Fetch returns the series for q.Site, falling back to the alternate sites in
// order when the site errors or has no time series.
func (c *Client) Fetch(ctx context.Context, q Query) (*Response, error) {
	q = c.withDefaults(q)

	var tried []string
	var lastErr error
	for _, site := range c.candidates(q.Site) {
		tried = append(tried, site)

		body, series, err := c.fetchSite(ctx, site, q)
		if err != nil {
			lastErr = err
			c.logger.Warn("usgs site failed", "site", site, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		meta := Meta{
			Site:          site,
			RequestedSite: q.Site,
			ParameterCd:   q.ParameterCd,
			Period:        q.Period,
			Alternate:     site != q.Site,
			FetchedAt:     domain.Now().UTC(),
		}
		enriched, err := withMeta(body, meta)
		if err != nil {
			return nil, &domain.FetchError{Source: domain.SourceUSGS, Err: err}
		}
		return &Response{Body: enriched, Meta: meta, series: series}, nil
	}

	return nil, &SitesError{TriedSites: tried, Err: lastErr}
}

// LatestElevation returns the newest valid reading from the default site or
// an alternate.
func (c *Client) LatestElevation(ctx context.Context) (domain.ElevationReading, error) {
	resp, err := c.Fetch(ctx, Query{})
	if err != nil {
		return domain.ElevationReading{}, err
	}
	reading, ok := resp.Latest()
	if !ok {
		return domain.ElevationReading{}, &domain.FetchError{Source: domain.SourceUSGS, Err: domain.ErrNoData}
	}
	return reading, nil
}

// Latest returns the newest valid sample of the first series.
func (r *Response) Latest() (domain.ElevationReading, bool) {
	readings := r.Readings()
	if len(readings) == 0 {
		return domain.ElevationReading{}, false
	}
	return readings[len(readings)-1], true
}

// Readings returns every valid sample of the first series in upstream order.
func (r *Response) Readings() []domain.ElevationReading {
	if len(r.series) == 0 {
		return nil
	}
	var out []domain.ElevationReading
	for _, block := range r.series[0].Values {
		for _, v := range block.Value {
			value, err := strconv.ParseFloat(v.Value, 64)
			if err != nil || value == noDataValue {
				continue
			}
			ts, err := time.Parse(time.RFC3339Nano, v.DateTime)
			if err != nil {
				continue
			}
			out = append(out, domain.ElevationReading{Value: value, Timestamp: ts, Site: r.Meta.Site})
		}
	}
	return out
}

func (c *Client) withDefaults(q Query) Query {
	if q.Site == "" {
		q.Site = c.site
	}
	if q.Period == "" {
		q.Period = c.period
	}
	if q.ParameterCd == "" {
		q.ParameterCd = c.parameterCd
	}
	return q
}

// candidates lists the requested site followed by alternates not yet listed.
func (c *Client) candidates(site string) []string {
	out := []string{site}
	for _, alt := range c.alternates {
		if alt != site {
			out = append(out, alt)
		}
	}
	return out
}

func (c *Client) fetchSite(ctx context.Context, site string, q Query) ([]byte, []timeSeries, error) {
	params := url.Values{
		"format":      {"json"},
		"sites":       {site},
		"parameterCd": {q.ParameterCd},
		"period":      {q.Period},
		"siteStatus":  {"all"},
	}

	start := time.Now()
	body, err := c.get(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.UpstreamDuration.WithLabelValues(domain.SourceUSGS).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceUSGS, "error").Inc()
		return nil, nil, err
	}

	var parsed ivResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceUSGS, "error").Inc()
		return nil, nil, &domain.FetchError{Source: domain.SourceUSGS, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Value.TimeSeries) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(domain.SourceUSGS, "empty").Inc()
		return nil, nil, &domain.FetchError{Source: domain.SourceUSGS, Err: domain.ErrNoData}
	}

	c.metrics.UpstreamRequests.WithLabelValues(domain.SourceUSGS, "success").Inc()
	return body, parsed.Value.TimeSeries, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceUSGS, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Source: domain.SourceUSGS, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: domain.SourceUSGS, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return body, nil
}

// withMeta adds a top-level "meta" member to the upstream JSON object.
func withMeta(body []byte, meta Meta) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response object: %w", err)
	}
	m, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	doc["meta"] = m
	return json.Marshal(doc)
}

// USGS IV response types.

type ivResponse struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	SourceInfo struct {
		SiteName string `json:"siteName"`
	} `json:"sourceInfo"`
	Values []struct {
		Value []sample `json:"value"`
	} `json:"values"`
}

type sample struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}
