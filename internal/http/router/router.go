package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/catalog-console/internal/health"
	"github.com/sandeepkv93/catalog-console/internal/http/handler"
	"github.com/sandeepkv93/catalog-console/internal/http/middleware"
	"github.com/sandeepkv93/catalog-console/internal/http/response"
)

type Dependencies struct {
	ProductHandler       *handler.ProductHandler
	Readiness            *health.ProbeRunner
	ValidateRateLimiter  ValidateRateLimiterFunc
	ValidateRateLimitRPM int
	Logger               *slog.Logger
	CSRFSecureCookie     bool
	MaxBodyBytes         int64
	EnableOTelHTTP       bool
}

type ValidateRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	maxBody := dep.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	validateLimiter := dep.ValidateRateLimiter
	if validateLimiter == nil {
		validateLimiter = middleware.NewRateLimiter(dep.ValidateRateLimitRPM, time.Minute).Middleware()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger(dep.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(maxBody))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})
	r.Handle("/assets/*", dep.ProductHandler.Assets())

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(dep.CSRFSecureCookie))
		r.Get("/", dep.ProductHandler.Index)
		r.Post("/products", dep.ProductHandler.Create)
		r.Post("/products/{id}/delete", dep.ProductHandler.Delete)
		r.Post("/remove", dep.ProductHandler.Remove)
		r.Post("/clear", dep.ProductHandler.Clear)
		r.With(validateLimiter).Get("/validate", dep.ProductHandler.Validate)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
