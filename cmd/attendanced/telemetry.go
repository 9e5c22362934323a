package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/util/serviceutil"
)

// InitTelemetry sets up slog and, when a telemetry.json5 can be found, the
// otel exporters. The returned function flushes them.
func InitTelemetry(ctx context.Context, verbose bool) func() {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "attendanced")
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("no telemetry.json5 found, traces and metrics are not exported")
	} else if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	return func() {
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Error("failed to shut down telemetry", "err", err)
		}
	}
}
