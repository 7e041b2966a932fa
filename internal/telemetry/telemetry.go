package telemetry

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until
// InitTelemetry runs.
var Logger = zap.NewNop()

var tracerProvider *sdktrace.TracerProvider

// InitTelemetry installs the production logger and, when
// OTEL_EXPORTER_OTLP_ENDPOINT is set, an OTLP/HTTP tracer provider.
func InitTelemetry(serviceName string) error {
	logger, err := zap.NewProduction(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return err
	}
	Logger = logger

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if endpoint == "" {
		Logger.Info("Tracing disabled, OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(trimScheme(endpoint)),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", os.Getenv("TRANSVOUCHER_ENVIRONMENT")),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplingRatio()))),
	)
	otel.SetTracerProvider(tracerProvider)

	Logger.Info("Tracing initialized", zap.String("endpoint", endpoint))
	return nil
}

// Shutdown flushes spans and logs.
func Shutdown(ctx context.Context) {
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	_ = Logger.Sync()
}

func trimScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimPrefix(endpoint, "https://")
}

func samplingRatio() float64 {
	ratio, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64)
	if err != nil || ratio <= 0 {
		return 1
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}
