package observability

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/talentvine/talentvine-backend/internal/platform/envutil"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
}

var (
	initOnce sync.Once
	shutdown func(context.Context) error
)

// InitTracing wires the global tracer provider. Tracing is opt-in
// (OTEL_ENABLED); a missing or failing exporter degrades to no-op rather
// than blocking startup. The returned function flushes on shutdown.
func InitTracing(ctx context.Context, log *logger.Logger, cfg Config) func(context.Context) error {
	initOnce.Do(func() {
		if !envutil.Bool("OTEL_ENABLED", false) {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "talentvine"
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil && log != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		exporter, expErr := buildExporter(ctx)
		if expErr != nil && log != nil {
			log.Warn("otel exporter init failed (continuing without export)", "error", expErr)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
			sdktrace.WithResource(res),
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		shutdown = tp.Shutdown
		if log != nil {
			log.Info("otel tracing initialized", "service", serviceName)
		}
	})

	if shutdown == nil {
		return func(context.Context) error { return nil }
	}
	return shutdown
}

func buildExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	endpoint := envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if endpoint != "" {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	}
	if envutil.Bool("OTEL_DEBUG_STDOUT", false) {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return nil, nil
}

func sampleRatio() float64 {
	raw := envutil.String("OTEL_TRACE_SAMPLE_RATIO", "")
	if raw == "" {
		return 1.0
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1.0
	}
	return ratio
}
