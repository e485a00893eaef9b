package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/catalog-console/internal/client"
	"github.com/sandeepkv93/catalog-console/internal/config"
	"github.com/sandeepkv93/catalog-console/internal/observability"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

// App holds everything the catalog commands run against. The HTTP server is
// built eagerly but only started by Serve.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Redis         redis.UniversalClient
	Products      *client.HTTPProductService
	Validator     *validation.Validator
	ProbeCache    *validation.CachingProber

	closeLog func() error
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	redisClient redis.UniversalClient,
	products *client.HTTPProductService,
	validator *validation.Validator,
	probeCache *validation.CachingProber,
	logOutput *observability.LogOutput,
) *App {
	a := &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		Redis:         redisClient,
		Products:      products,
		Validator:     validator,
		ProbeCache:    probeCache,
	}
	if logOutput != nil {
		a.closeLog = logOutput.Close
	}
	return a
}

// Serve runs the web UI until ctx is cancelled, then drains in-flight
// requests within the configured drain timeout.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", "addr", a.Server.Addr, "catalog_api", a.Config.CatalogAPIURL)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	drain := a.Config.ShutdownHTTPDrainTimeout
	if drain <= 0 {
		drain = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	a.Logger.Info("server shutting down")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("failed to shutdown http server", "error", err)
		return err
	}
	return nil
}

// Close flushes telemetry and releases connections. It is safe to call once
// after Serve returns or after any one-shot command.
func (a *App) Close(ctx context.Context) error {
	total := a.Config.ShutdownTimeout
	if total <= 0 {
		total = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, total)
	defer cancel()

	var errs []error
	if a.Observability != nil {
		if err := a.Observability.Shutdown(ctx); err != nil {
			a.Logger.Error("failed to shutdown observability", "error", err)
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
