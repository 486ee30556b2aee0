package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type OtelConfig struct {
	// if empty, tracing is left on the global no-op provider
	HttpEndpoint string            `json:"otlp_http_endpoint" envconfig:"OTLP_HTTP_ENDPOINT"`
	Headers      map[string]string `json:"otlp_headers" envconfig:"OTLP_HEADERS"`
}

// SetupOtel installs a global tracer provider exporting over OTLP/HTTP, the returned
// function flushes and shuts it down.
func SetupOtel(ctx context.Context, serviceName string, config OtelConfig) (func(context.Context) error, error) {
	if config.HttpEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(config.HttpEndpoint),
		otlptracehttp.WithHeaders(config.Headers),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
