package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/catalog-console/internal/app"
	"github.com/sandeepkv93/catalog-console/internal/client"
	"github.com/sandeepkv93/catalog-console/internal/config"
	"github.com/sandeepkv93/catalog-console/internal/health"
	"github.com/sandeepkv93/catalog-console/internal/http/handler"
	"github.com/sandeepkv93/catalog-console/internal/http/middleware"
	"github.com/sandeepkv93/catalog-console/internal/http/router"
	"github.com/sandeepkv93/catalog-console/internal/observability"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideLogOutput,
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRedisClient,
	provideReadinessProbeRunner,
)

var CatalogSet = wire.NewSet(
	provideProductService,
	provideProbeCacheStore,
	provideCachingProber,
	provideValidator,
)

var HTTPSet = wire.NewSet(
	provideProductHandler,
	provideValidateRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideLogOutput(cfg *config.Config) (*observability.LogOutput, error) {
	return observability.NewLogOutput(cfg.LogFile)
}

func provideObservabilityRuntime(cfg *config.Config, out *observability.LogOutput) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg, out)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime, out *observability.LogOutput) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider, out)
}

func otelEnabled(cfg *config.Config) bool {
	return cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisRequired() {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if cfg.OTELMetricsEnabled {
		observability.InstrumentRedisClient(client, logger)
	}
	return client
}

func provideProductService(cfg *config.Config, logger *slog.Logger) *client.HTTPProductService {
	httpClient := client.NewHTTPClient(cfg.UpstreamTimeout, otelEnabled(cfg))
	return client.NewHTTPProductService(cfg.ProductsURL(), httpClient, logger)
}

func provideProbeCacheStore(cfg *config.Config, redisClient redis.UniversalClient) validation.ProbeCacheStore {
	switch cfg.ProbeCache {
	case config.ProbeCacheRedis:
		if redisClient != nil {
			return validation.NewRedisProbeCacheStore(redisClient, cfg.RedisPrefix)
		}
	case config.ProbeCacheMemory:
		return validation.NewInMemoryProbeCacheStore()
	}
	return validation.NewNoopProbeCacheStore()
}

func provideCachingProber(cfg *config.Config, store validation.ProbeCacheStore, logger *slog.Logger) *validation.CachingProber {
	httpClient := client.NewHTTPClient(0, otelEnabled(cfg))
	prober := validation.NewHTTPProber(httpClient, cfg.ProbeTimeout, cfg.ProbeMaxBytes, logger)
	return validation.NewCachingProber(prober, store, cfg.ProbeCache, cfg.ProbeCacheTTL, logger)
}

func provideValidator(prober *validation.CachingProber, logger *slog.Logger) *validation.Validator {
	return validation.New(prober, logger)
}

func provideProductHandler(products *client.HTTPProductService, validator *validation.Validator, logger *slog.Logger) (*handler.ProductHandler, error) {
	return handler.NewProductHandler(products, validator, logger)
}

func provideValidateRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.ValidateRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		mode := middleware.FailClosed
		if cfg.RateLimitRedisFailOpen {
			mode = middleware.FailOpen
		}
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisPrefix+":validate")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.ValidateRateLimitRPM,
			time.Minute,
			mode,
			"validate",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.ValidateRateLimitRPM, time.Minute).Middleware()
}

func provideReadinessProbeRunner(cfg *config.Config, redisClient redis.UniversalClient) *health.ProbeRunner {
	upstream := health.NewUpstreamChecker(cfg.ProductsURL(), client.NewHTTPClient(cfg.ReadinessProbeTimeout, false))
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, upstream, health.NewRedisChecker(redisClient))
}

func provideRouterDependencies(
	productHandler *handler.ProductHandler,
	validateRateLimiter router.ValidateRateLimiterFunc,
	readiness *health.ProbeRunner,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		ProductHandler:       productHandler,
		Readiness:            readiness,
		ValidateRateLimiter:  validateRateLimiter,
		ValidateRateLimitRPM: cfg.ValidateRateLimitRPM,
		Logger:               logger,
		CSRFSecureCookie:     cfg.CSRFCookieSecure,
		MaxBodyBytes:         cfg.MaxRequestBodyBytes,
		EnableOTelHTTP:       otelEnabled(cfg),
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
