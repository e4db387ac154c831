package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// Upstream data sources.
	UpstreamTimeout    time.Duration
	USGSBaseURL        string
	USGSSite           string
	USGSAlternateSites []string
	USGSParameterCd    string
	USGSPeriod         string
	OpenMeteoBaseURL   string
	OverpassBaseURL    string

	// Refresh schedule, one per source.
	WeatherRefreshInterval    time.Duration
	WaterLevelRefreshInterval time.Duration
	BoundaryRefreshInterval   time.Duration

	// Proxy response cache.
	CacheSize int
	CacheTTL  time.Duration

	// Optional conditions publisher.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Optional reading history; empty disables it.
	HistoryDBPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var errs []error
	duration := func(name, def string) time.Duration {
		d, err := parsePositiveDuration(name, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", "10s"),

		UpstreamTimeout:    duration("UPSTREAM_TIMEOUT", "10s"),
		USGSBaseURL:        envOrDefault("USGS_BASE_URL", "https://waterservices.usgs.gov/nwis/iv/"),
		USGSSite:           envOrDefault("USGS_SITE", "07335310"),
		USGSAlternateSites: parseList(envOrDefault("USGS_ALTERNATE_SITES", "07335300,07335320,07335000")),
		USGSParameterCd:    envOrDefault("USGS_PARAMETER_CD", "62614"),
		USGSPeriod:         envOrDefault("USGS_PERIOD", "P7D"),
		OpenMeteoBaseURL:   envOrDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		OverpassBaseURL:    envOrDefault("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),

		WeatherRefreshInterval:    duration("WEATHER_REFRESH_INTERVAL", "15m"),
		WaterLevelRefreshInterval: duration("WATER_LEVEL_REFRESH_INTERVAL", "30m"),
		BoundaryRefreshInterval:   duration("BOUNDARY_REFRESH_INTERVAL", "24h"),

		CacheTTL: duration("CACHE_TTL", "5m"),

		KafkaBrokers:  parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "sardis-lake-conditions"),
		KafkaEnabled:  os.Getenv("KAFKA_ENABLED") == "true",
		HistoryDBPath: os.Getenv("HISTORY_DB_PATH"),
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 256)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.CacheSize = cacheSize

	if cfg.USGSSite == "" {
		errs = append(errs, errors.New("USGS_SITE is required"))
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty"))
		}
		if cfg.KafkaTopic == "" {
			errs = append(errs, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty"))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
