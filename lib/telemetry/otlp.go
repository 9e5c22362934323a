package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	defaultExportTimeout  = 3 * time.Second
	defaultExportInterval = 15 * time.Second
)

func (c OtlpConnConfig) enabled() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

// grpc wins when both endpoints are set.
func (c OtlpConnConfig) transport() (kind, endpoint string) {
	if c.GrpcEndpoint != "" {
		return "grpc", c.GrpcEndpoint
	}
	return "http", c.HttpEndpoint
}

func (c OtlpConnConfig) exportTimeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultExportTimeout
}

func (c OtlpConnConfig) exportInterval() time.Duration {
	if c.IntervalSeconds > 0 {
		return time.Duration(c.IntervalSeconds) * time.Second
	}
	return defaultExportInterval
}

func (c OtlpConnConfig) logExporter(signal string) {
	kind, endpoint := c.transport()
	slog.Info(
		"otlp exporter initialized",
		"signal", signal,
		"type", kind,
		"endpoint", endpoint,
		"headers", len(c.Headers) > 0,
	)
}

// newTraceProvider returns nil when no traces endpoint is configured, spans
// then go to the global no-op provider.
func newTraceProvider(ctx context.Context, r *resource.Resource, conn OtlpConnConfig) (*sdktrace.TracerProvider, error) {
	if !conn.enabled() {
		slog.Debug("otlp traces disabled, no endpoint configured")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, conn.exportTimeout())
	defer cancel()

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch kind, endpoint := conn.transport(); kind {
	case "grpc":
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(conn.Headers),
			otlptracegrpc.WithTimeout(conn.exportTimeout()),
		)
	default:
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(conn.Headers),
			otlptracehttp.WithTimeout(conn.exportTimeout()),
		)
	}
	if err != nil {
		return nil, err
	}
	conn.logExporter("traces")

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	), nil
}

// newMetricProvider returns nil when no metrics endpoint is configured.
func newMetricProvider(ctx context.Context, r *resource.Resource, conn OtlpConnConfig) (*sdkmetric.MeterProvider, error) {
	if !conn.enabled() {
		slog.Debug("otlp metrics disabled, no endpoint configured")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, conn.exportTimeout())
	defer cancel()

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch kind, endpoint := conn.transport(); kind {
	case "grpc":
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint),
			otlpmetricgrpc.WithHeaders(conn.Headers),
			otlpmetricgrpc.WithTimeout(conn.exportTimeout()),
		)
	default:
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(endpoint),
			otlpmetrichttp.WithHeaders(conn.Headers),
			otlpmetrichttp.WithTimeout(conn.exportTimeout()),
		)
	}
	if err != nil {
		return nil, err
	}
	conn.logExporter("metrics")

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(conn.exportInterval()),
		sdkmetric.WithTimeout(conn.exportTimeout()),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r),
	), nil
}
