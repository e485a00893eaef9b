package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/catalog-console/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "catalog-console"

type AppMetrics struct {
	clientRequestCounter     metric.Int64Counter
	clientRequestDuration    metric.Float64Histogram
	validationCounter        metric.Int64Counter
	probeResultCounter       metric.Int64Counter
	probeDuration            metric.Float64Histogram
	probeCacheCounter        metric.Int64Counter
	renderCounter            metric.Int64Counter
	renderCardCount          metric.Float64Histogram
	toolCommandRuns          metric.Int64Counter
	middlewareEventCounter   metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "catalog.probe.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	clientRequests, err := meter.Int64Counter("catalog.client.requests")
	if err != nil {
		return nil, err
	}
	clientDuration, err := meter.Float64Histogram(
		"catalog.client.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of product API round trips in seconds"),
	)
	if err != nil {
		return nil, err
	}
	validationEvents, err := meter.Int64Counter("catalog.validation.events")
	if err != nil {
		return nil, err
	}
	probeResults, err := meter.Int64Counter("catalog.probe.results")
	if err != nil {
		return nil, err
	}
	probeDuration, err := meter.Float64Histogram(
		"catalog.probe.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of image URL probes in seconds"),
	)
	if err != nil {
		return nil, err
	}
	probeCacheEvents, err := meter.Int64Counter("catalog.probe.cache.events")
	if err != nil {
		return nil, err
	}
	renderEvents, err := meter.Int64Counter("catalog.render.events")
	if err != nil {
		return nil, err
	}
	renderCards, err := meter.Float64Histogram(
		"catalog.render.cards",
		metric.WithDescription("Number of product cards rendered per list render"),
	)
	if err != nil {
		return nil, err
	}
	toolRuns, err := meter.Int64Counter("tool.command.runs")
	if err != nil {
		return nil, err
	}
	middlewareEvents, err := meter.Int64Counter("http.middleware.events")
	if err != nil {
		return nil, err
	}
	healthCheckResultCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthCheckDuration, err := meter.Float64Histogram(
		"health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"),
	)
	if err != nil {
		return nil, err
	}
	return &AppMetrics{
		clientRequestCounter:     clientRequests,
		clientRequestDuration:    clientDuration,
		validationCounter:        validationEvents,
		probeResultCounter:       probeResults,
		probeDuration:            probeDuration,
		probeCacheCounter:        probeCacheEvents,
		renderCounter:            renderEvents,
		renderCardCount:          renderCards,
		toolCommandRuns:          toolRuns,
		middlewareEventCounter:   middlewareEvents,
		healthCheckResultCounter: healthCheckResultCounter,
		healthCheckDuration:      healthCheckDuration,
	}, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordClientRequest(ctx context.Context, op, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)
	m.clientRequestCounter.Add(ctx, 1, attrs)
	m.clientRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordValidationEvent(ctx context.Context, field, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.validationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
		attribute.String("outcome", outcome),
	))
}

func RecordProbeResult(ctx context.Context, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.probeResultCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.probeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordProbeCacheEvent(ctx context.Context, backend, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.probeCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
}

func RecordRender(ctx context.Context, outcome string, cards int) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.renderCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.renderCardCount.Record(ctx, float64(cards))
}

func RecordToolCommandRun(ctx context.Context, command, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordMiddlewareEvent(ctx context.Context, middleware, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.middlewareEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}
