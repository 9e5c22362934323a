package attendance

import (
	"attendance-backend/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

const library_name = "attendance.services.attendance"

var tracer = telemetry.Tracer(library_name)
var meter = telemetry.Meter(library_name)

var fetchCounter, _ = meter.Int64Counter(
	"attendance.fetch",
	metric.WithDescription("attendance fetches by outcome"),
)

var fetchDuration, _ = meter.Float64Histogram(
	"attendance.fetch.duration",
	metric.WithDescription("wall time of an attendance fetch"),
	metric.WithUnit("s"),
)

const (
	report_sequencer_navigate  = "sequencer.navigate"
	report_sequencer_open_form = "sequencer.open-form"
	report_sequencer_submit    = "sequencer.submit"
	report_sequencer_fallback  = "sequencer.fallback"
	report_sequencer_signals   = "sequencer.signals"
	report_sequencer_capture   = "sequencer.capture"
	report_service_fetch       = "service.fetch"
	report_service_panic       = "service.panic"
	report_service_tables      = "service.tables"
)
