// Package telemetry installs the OpenTelemetry tracer provider used by the
// HTTP server and the ledger worker.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"servicos/internal/log"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup exports spans to endpoint over OTLP/gRPC. An empty endpoint leaves
// the global no-op provider in place. Exporter failures are logged and never
// block startup.
func Setup(ctx context.Context, serviceName, endpoint string, logger *log.Logger) ShutdownFunc {
	logger = logger.WithComponent(log.ComponentTelemetry)
	if endpoint == "" {
		logger.Debug("Tracing disabled")
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		logger.Error("OTLP exporter setup failed", log.FieldError, err)
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		logger.Warn("OTel resource setup failed", log.FieldError, err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Tracing enabled", "endpoint", endpoint, "service", serviceName)
	return provider.Shutdown
}
