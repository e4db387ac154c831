package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/couchcryptid/sardis-lake-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/usgs"
	"github.com/couchcryptid/sardis-lake-service/internal/domain"
)

func (s *Server) handleUSGS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := usgs.Query{
		Site:        strings.TrimSpace(q.Get("site")),
		Period:      strings.TrimSpace(q.Get("period")),
		ParameterCd: strings.TrimSpace(q.Get("parameterCd")),
	}

	key := fmt.Sprintf("usgs|%s|%s|%s", query.Site, query.Period, query.ParameterCd)
	if body, ok := s.cached("usgs", key); ok {
		writeRawJSON(w, body)
		return
	}

	resp, err := s.deps.USGS.Fetch(r.Context(), query)
	if err != nil {
		s.logger.Warn("usgs proxy failed", "site", query.Site, "error", err)
		body := errorBody{Error: "usgs_unavailable", Message: err.Error()}
		var sitesErr *usgs.SitesError
		if errors.As(err, &sitesErr) {
			body.TriedSites = sitesErr.TriedSites
		}
		writeJSON(w, http.StatusBadGateway, body)
		return
	}

	s.bodies.Put(key, resp.Body)
	writeRawJSON(w, resp.Body)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := queryFloat(q, "lat", s.deps.Lake.Lat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	lon, err := queryFloat(q, "lng", s.deps.Lake.Lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	days, err := queryInt(q, "forecast", openmeteo.DefaultForecastDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	query := openmeteo.Query{Lat: lat, Lon: lon, Days: openmeteo.ClampForecastDays(days)}

	key := fmt.Sprintf("weather|%.4f|%.4f|%d", query.Lat, query.Lon, query.Days)
	if body, ok := s.cached("weather", key); ok {
		writeRawJSON(w, body)
		return
	}

	resp, err := s.deps.Weather.Fetch(r.Context(), query)
	if err != nil {
		s.logger.Warn("weather proxy failed", "error", err)
		writeError(w, http.StatusBadGateway, "weather_unavailable", err.Error())
		return
	}

	s.bodies.Put(key, resp.Body)
	writeRawJSON(w, resp.Body)
}

// handleLakeBoundary always answers 200: when OpenStreetMap has no usable
// outline it serves the built-in approximate polygon.
func (s *Server) handleLakeBoundary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := s.deps.Lake.BoundaryQuery()
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		query.Name = name
	}
	var err error
	if query.Lat, err = queryFloat(q, "lat", query.Lat); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	if query.Lon, err = queryFloat(q, "lng", query.Lon); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	key := fmt.Sprintf("boundary|%s|%.4f|%.4f", strings.ToLower(query.Name), query.Lat, query.Lon)
	if f, ok := s.boundaries.Get(key); ok {
		s.metrics.ProxyCache.WithLabelValues("lake-boundary", "hit").Inc()
		writeJSON(w, http.StatusOK, f)
		return
	}
	s.metrics.ProxyCache.WithLabelValues("lake-boundary", "miss").Inc()

	feature, err := s.deps.Boundary.FetchBoundary(r.Context(), query)
	if err != nil {
		s.logger.Warn("boundary lookup fell back", "name", query.Name, "error", err)
		s.metrics.Fallbacks.WithLabelValues(domain.SourceOverpass).Inc()
		writeJSON(w, http.StatusOK, domain.FallbackBoundary(query.Name))
		return
	}

	s.boundaries.Put(key, feature)
	writeJSON(w, http.StatusOK, feature)
}

func (s *Server) cached(route, key string) (json.RawMessage, bool) {
	body, ok := s.bodies.Get(key)
	result := "miss"
	if ok {
		result = "hit"
	}
	s.metrics.ProxyCache.WithLabelValues(route, result).Inc()
	return body, ok
}
