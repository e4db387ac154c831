package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/adapter/cache"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/usgs"
	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// State exposes the latest refreshed data. It is implemented by
// dashboard.Refresher.
type State interface {
	Elevation() domain.Result[domain.ElevationReading]
	Forecast() domain.Result[domain.Forecast]
	Boundary() domain.Result[domain.Feature]
	Snapshot(t time.Time) domain.Conditions
}

// USGSProxy fetches USGS instantaneous values.
type USGSProxy interface {
	Fetch(ctx context.Context, q usgs.Query) (*usgs.Response, error)
}

// WeatherProxy fetches Open-Meteo forecasts.
type WeatherProxy interface {
	Fetch(ctx context.Context, q openmeteo.Query) (*openmeteo.Response, error)
}

// BoundaryProxy fetches lake outlines.
type BoundaryProxy interface {
	FetchBoundary(ctx context.Context, q domain.BoundaryQuery) (domain.Feature, error)
}

// History returns stored water-level readings.
type History interface {
	Since(ctx context.Context, t time.Time) ([]domain.ElevationReading, error)
}

// Deps wires the server to its collaborators. History may be nil.
type Deps struct {
	Ready    ReadinessChecker
	State    State
	USGS     USGSProxy
	Weather  WeatherProxy
	Boundary BoundaryProxy
	History  History

	Lake     domain.LakeProfile
	Ramps    []domain.BoatRamp
	Location *time.Location

	CacheSize int
	CacheTTL  time.Duration
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
	metrics    *observability.Metrics

	bodies     *cache.LRU[[]byte]
	boundaries *cache.LRU[domain.Feature]
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, deps Deps, logger *slog.Logger, metrics *observability.Metrics) *Server {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:       deps,
		logger:     logger,
		metrics:    metrics,
		bodies:     cache.New[[]byte](deps.CacheSize, deps.CacheTTL),
		boundaries: cache.New[domain.Feature](deps.CacheSize, deps.CacheTTL),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/usgs", s.handleUSGS)
	mux.HandleFunc("GET /api/weather", s.handleWeather)
	mux.HandleFunc("GET /api/lake-boundary", s.handleLakeBoundary)

	mux.HandleFunc("GET /api/lake", s.handleLake)
	mux.HandleFunc("GET /api/flood-impact", s.handleFloodImpact)
	mux.HandleFunc("GET /api/ramps", s.handleRamps)
	mux.HandleFunc("GET /api/fishing", s.handleFishing)
	mux.HandleFunc("GET /api/astronomy", s.handleAstronomy)
	mux.HandleFunc("GET /api/recreation", s.handleRecreation)
	mux.HandleFunc("GET /api/conditions", s.handleConditions)
	mux.HandleFunc("GET /api/water-level/history", s.handleHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// errorBody is the structured error returned by every API route.
type errorBody struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	TriedSites []string `json:"triedSites,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // best-effort response
}
