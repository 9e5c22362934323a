package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOtlpConnDefaults(t *testing.T) {
	var conn OtlpConnConfig
	require.False(t, conn.enabled())
	require.Equal(t, defaultExportTimeout, conn.exportTimeout())
	require.Equal(t, defaultExportInterval, conn.exportInterval())

	conn = OtlpConnConfig{
		GrpcEndpoint:    "http://127.0.0.1:4317",
		HttpEndpoint:    "http://127.0.0.1:4318",
		TimeoutSeconds:  1,
		IntervalSeconds: 60,
	}
	require.True(t, conn.enabled())
	kind, endpoint := conn.transport()
	require.Equal(t, "grpc", kind)
	require.Equal(t, "http://127.0.0.1:4317", endpoint)
	require.Equal(t, time.Second, conn.exportTimeout())
	require.Equal(t, time.Minute, conn.exportInterval())

	conn.GrpcEndpoint = ""
	kind, _ = conn.transport()
	require.Equal(t, "http", kind)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "attendance-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestProvidersWithEndpoint(t *testing.T) {
	r, err := newResource("attendance-test")
	require.NoError(t, err)

	// exporters connect lazily, nothing needs to listen here
	conn := OtlpConnConfig{HttpEndpoint: "http://127.0.0.1:4318", TimeoutSeconds: 1}

	tracerProvider, err := newTraceProvider(context.Background(), r, conn)
	require.NoError(t, err)
	require.NotNil(t, tracerProvider)

	meterProvider, err := newMetricProvider(context.Background(), r, conn)
	require.NoError(t, err)
	require.NotNil(t, meterProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// the final flush has nowhere to go
	_ = Telemetry{TracerProvider: tracerProvider, MeterProvider: meterProvider}.Shutdown(ctx)
}
