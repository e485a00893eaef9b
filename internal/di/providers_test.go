package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/catalog-console/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{ValidateRateLimitRPM: 30, CSRFCookieSecure: true, MaxRequestBodyBytes: 2048, OTELMetricsEnabled: true}
	dep := provideRouterDependencies(nil, nil, nil, nil, cfg)
	if dep.ValidateRateLimitRPM != 30 || dep.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected limits: %+v", dep)
	}
	if !dep.EnableOTelHTTP || !dep.CSRFSecureCookie {
		t.Fatalf("expected otel http and secure csrf cookie: %+v", dep)
	}
}

func TestProvideRedisClientOnlyWhenRequired(t *testing.T) {
	cfg := &config.Config{ProbeCache: config.ProbeCacheMemory}
	if c := provideRedisClient(cfg, discardLogger()); c != nil {
		t.Fatal("expected no redis client")
	}

	mr := miniredis.RunT(t)
	cfg = &config.Config{ProbeCache: config.ProbeCacheRedis, RedisAddr: mr.Addr()}
	c := provideRedisClient(cfg, discardLogger())
	if c == nil {
		t.Fatal("expected redis client")
	}
	defer c.Close()
	if err := c.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestProvideProbeCacheStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	cases := []struct {
		name  string
		cache string
		redis redis.UniversalClient
		want  string
	}{
		{"none", config.ProbeCacheNone, nil, "*validation.NoopProbeCacheStore"},
		{"memory", config.ProbeCacheMemory, nil, "*validation.InMemoryProbeCacheStore"},
		{"redis", config.ProbeCacheRedis, rc, "*validation.RedisProbeCacheStore"},
		{"redis without client", config.ProbeCacheRedis, nil, "*validation.NoopProbeCacheStore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := provideProbeCacheStore(&config.Config{ProbeCache: tc.cache, RedisPrefix: "catalog"}, tc.redis)
			if got := fmt.Sprintf("%T", store); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestValidateRateLimiterEnforcesLimit(t *testing.T) {
	cfg := &config.Config{ValidateRateLimitRPM: 1}
	limiter := provideValidateRateLimiter(cfg, nil)
	h := limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/validate?field=name&value=Chair", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes: %v", codes)
	}
}

func TestValidateRateLimiterUsesRedisWhenEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	cfg := &config.Config{ValidateRateLimitRPM: 1, RateLimitRedisEnabled: true, RateLimitRedisFailOpen: true, RedisPrefix: "catalog"}
	h := provideValidateRateLimiter(cfg, rc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/validate", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	keys := mr.Keys()
	if len(keys) == 0 {
		t.Fatal("expected redis rate limit key")
	}
}

func TestProvideReadinessProbeRunnerChecksUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	cfg := &config.Config{CatalogAPIURL: upstream.URL}
	runner := provideReadinessProbeRunner(cfg, nil)
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 1 || results[0].Name != "upstream" {
		t.Fatalf("unexpected readiness: ready=%v results=%+v", ready, results)
	}
}
