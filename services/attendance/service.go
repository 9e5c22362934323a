package attendance

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Service fetches the attendance report of one student per call. Each call
// gets its own browser session, nothing is shared or kept between calls.
type Service struct {
	driver    browser.Driver
	opts      Options
	sequencer Sequencer
	tel       telemetry.API
}

func NewService(driver browser.Driver, opts Options, tel telemetry.API) Service {
	return Service{
		driver:    driver,
		opts:      opts,
		sequencer: NewSequencer(opts, tel),
		tel:       tel,
	}
}

func (s Service) Options() Options {
	return s.opts
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInputValidation):
		return "input_validation"
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrPortalUnreachable):
		return "portal_unreachable"
	case errors.Is(err, ErrSequenceTimeout):
		return "sequence_timeout"
	}
	return "unclassified"
}

// Fetch logs into the portal with cred and returns the parsed report. Every
// error it returns is an *Error. Cancelling ctx does not stop a fetch that
// already started, each step is bounded by its own timeout instead, so a
// caller that goes away never leaves a half closed browser behind.
func (s Service) Fetch(ctx context.Context, cred Credential) (report Report, err error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	start := time.Now()
	defer func() {
		kind := errorKind(err)
		attrs := metric.WithAttributes(attribute.String("outcome", kind))
		fetchCounter.Add(ctx, 1, attrs)
		fetchDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.SetAttributes(attribute.String("outcome", kind))
		if err != nil {
			span.SetStatus(codes.Error, kind)
		}
	}()

	err = cred.Validate()
	if err != nil {
		return Report{}, err
	}

	ctx = context.WithoutCancel(ctx)

	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		s.tel.ReportBroken(report_service_panic, recovered, string(debug.Stack()))
		report = Report{}
		err = newError(ErrUnclassified, MessageUnclassified, fmt.Errorf("panic: %v", recovered))
	}()

	err = browser.WithSession(ctx, s.driver, func(session browser.Session) error {
		outcome, err := s.sequencer.Login(ctx, session, cred)
		if err != nil {
			return err
		}
		err = outcomeError(outcome)
		if err != nil {
			return err
		}

		capture, err := s.sequencer.Capture(ctx, session)
		if err != nil {
			return err
		}
		report = s.buildReport(ctx, session, capture)
		return nil
	})
	if err != nil {
		err = classifyError(err)
		if !errors.Is(err, ErrAuthenticationFailed) {
			s.tel.ReportBroken(report_service_fetch, err)
		}
		return Report{}, err
	}

	s.tel.ReportCount(report_service_fetch, int64(len(report.Records)))
	return report, nil
}

func (s Service) buildReport(ctx context.Context, session browser.Session, capture Capture) Report {
	records := ParseText(capture.Text, s.opts.Parser)
	if len(records) == 0 {
		records = s.recordsFromTables(ctx, session)
	}

	name := nameFromHeader(capture.Header)
	if name == "" {
		name = ExtractStudentName(capture.Text)
	}

	report := Report{StudentName: name, Records: records}
	if len(records) == 0 && s.opts.Debug {
		report.DebugText = truncateRunes(capture.Text, s.opts.DebugTextLimit)
	}
	return report
}

// recordsFromTables is the fallback for dashboards that do render a table,
// failures only mean there are no records.
func (s Service) recordsFromTables(ctx context.Context, session browser.Session) []Record {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.Capture)
	defer cancel()

	document, err := session.HTML(ctx)
	if err != nil {
		s.tel.ReportWarning(report_service_tables, err)
		return []Record{}
	}
	records, err := RecordsFromHTML(ctx, document)
	if err != nil {
		s.tel.ReportWarning(report_service_tables, err)
		return []Record{}
	}
	return records
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
