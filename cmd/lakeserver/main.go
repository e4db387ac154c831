package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	httpadapter "github.com/couchcryptid/sardis-lake-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sardis-lake-service/internal/adapter/kafka"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/overpass"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sardis-lake-service/internal/adapter/usgs"
	"github.com/couchcryptid/sardis-lake-service/internal/config"
	"github.com/couchcryptid/sardis-lake-service/internal/dashboard"
	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	"github.com/couchcryptid/sardis-lake-service/internal/observability"
	"github.com/joho/godotenv"
)

// historyRetention matches the longest window /api/water-level/history serves.
const historyRetention = 30 * 24 * time.Hour

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	lake := domain.SardisLake
	lake.USGSSite = cfg.USGSSite
	if err := lake.Validate(); err != nil {
		logger.Error("invalid lake profile", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(openmeteo.Timezone)
	if err != nil {
		logger.Error("failed to load lake timezone", "timezone", openmeteo.Timezone, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	usgsClient := usgs.NewClient(usgs.Options{
		BaseURL:        cfg.USGSBaseURL,
		Site:           cfg.USGSSite,
		AlternateSites: cfg.USGSAlternateSites,
		ParameterCd:    cfg.USGSParameterCd,
		Period:         cfg.USGSPeriod,
		Timeout:        cfg.UpstreamTimeout,
	}, metrics, logger)
	weatherClient := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.UpstreamTimeout, metrics, logger)
	boundaryClient := overpass.NewClient(cfg.OverpassBaseURL, cfg.UpstreamTimeout, metrics, logger)

	sources := dashboard.Sources{
		WaterLevel: usgsClient,
		Weather:    weatherClient,
		Boundary:   boundaryClient,
	}

	// Optional water-level history (HISTORY_DB_PATH).
	var history *sqlite.HistoryStore
	if cfg.HistoryDBPath != "" {
		history, err = sqlite.OpenHistory(ctx, cfg.HistoryDBPath)
		if err != nil {
			logger.Error("failed to open history database", "path", cfg.HistoryDBPath, "error", err)
			os.Exit(1)
		}
		if n, err := history.Prune(ctx, domain.Now().Add(-historyRetention)); err != nil {
			logger.Warn("history prune failed", "error", err)
		} else if n > 0 {
			logger.Info("pruned water-level history", "rows", n)
		}
		sources.History = history
		logger.Info("water-level history enabled", "path", cfg.HistoryDBPath)
	}

	// Optional snapshot publishing (KAFKA_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		sources.Publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	refresher := dashboard.New(lake, domain.SardisRamps, loc, sources, dashboard.Intervals{
		Weather:    cfg.WeatherRefreshInterval,
		WaterLevel: cfg.WaterLevelRefreshInterval,
		Boundary:   cfg.BoundaryRefreshInterval,
	}, logger, metrics)

	deps := httpadapter.Deps{
		Ready:     refresher,
		State:     refresher,
		USGS:      usgsClient,
		Weather:   weatherClient,
		Boundary:  boundaryClient,
		Lake:      lake,
		Ramps:     domain.SardisRamps,
		Location:  loc,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}
	if history != nil {
		deps.History = history
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, deps, logger, metrics)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start background refresh.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if history != nil {
		if err := history.Close(); err != nil {
			logger.Error("history close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
