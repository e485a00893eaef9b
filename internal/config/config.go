package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProbeCacheNone   = "none"
	ProbeCacheMemory = "memory"
	ProbeCacheRedis  = "redis"
)

type Config struct {
	Env      string
	HTTPPort string
	LogFile  string

	CatalogAPIURL   string
	UpstreamTimeout time.Duration

	ProbeTimeout  time.Duration
	ProbeMaxBytes int64
	ProbeCache    string
	ProbeCacheTTL time.Duration

	ValidateRateLimitRPM   int
	RateLimitRedisEnabled  bool
	RateLimitRedisFailOpen bool
	CSRFCookieSecure       bool
	MaxRequestBodyBytes    int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ReadinessProbeTimeout    time.Duration
	ShutdownTimeout          time.Duration
	ShutdownHTTPDrainTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:           env,
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogFile:       os.Getenv("LOG_FILE"),
		CatalogAPIURL: strings.TrimRight(getEnv("CATALOG_API_URL", "http://localhost:3000"), "/"),
		ProbeMaxBytes: getEnvInt64("PROBE_MAX_BYTES", 10<<20),
		ProbeCache:    strings.ToLower(getEnv("PROBE_CACHE", ProbeCacheMemory)),

		ValidateRateLimitRPM:   getEnvInt("VALIDATE_RATE_LIMIT_RPM", 120),
		RateLimitRedisEnabled:  getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisFailOpen: getEnvBool("RATE_LIMIT_REDIS_FAIL_OPEN", true),
		CSRFCookieSecure:       getEnvBool("CSRF_COOKIE_SECURE", env == "production"),
		MaxRequestBodyBytes:    getEnvInt64("MAX_REQUEST_BODY_BYTES", 1<<20),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "catalog"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "catalog-console"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"UPSTREAM_TIMEOUT", "0s", &cfg.UpstreamTimeout},
		{"PROBE_TIMEOUT", "0s", &cfg.ProbeTimeout},
		{"PROBE_CACHE_TTL", "10m", &cfg.ProbeCacheTTL},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.CatalogAPIURL == "" {
		errs = append(errs, "CATALOG_API_URL is required")
	} else if u, err := url.Parse(c.CatalogAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "CATALOG_API_URL must be an absolute http(s) URL")
	}
	if c.UpstreamTimeout < 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT must be >= 0")
	}
	if c.ProbeTimeout < 0 {
		errs = append(errs, "PROBE_TIMEOUT must be >= 0")
	}
	if c.ProbeMaxBytes <= 0 {
		errs = append(errs, "PROBE_MAX_BYTES must be > 0")
	}
	switch c.ProbeCache {
	case ProbeCacheNone, ProbeCacheMemory:
	case ProbeCacheRedis:
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when PROBE_CACHE=redis")
		}
	default:
		errs = append(errs, "PROBE_CACHE must be one of none, memory, redis")
	}
	if c.ProbeCache != ProbeCacheNone && c.ProbeCacheTTL <= 0 {
		errs = append(errs, "PROBE_CACHE_TTL must be > 0 when the probe cache is enabled")
	}
	if c.ValidateRateLimitRPM <= 0 {
		errs = append(errs, "VALIDATE_RATE_LIMIT_RPM must be > 0")
	}
	if c.RateLimitRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when RATE_LIMIT_REDIS_ENABLED=true")
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, "MAX_REQUEST_BODY_BYTES must be > 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// RedisRequired reports whether any component needs a Redis client.
func (c *Config) RedisRequired() bool {
	return c.ProbeCache == ProbeCacheRedis || c.RateLimitRedisEnabled
}

// ProductsURL is the collection resource of the remote product API.
func (c *Config) ProductsURL() string {
	return c.CatalogAPIURL + "/products"
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
