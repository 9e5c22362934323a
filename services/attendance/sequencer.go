package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type State int

const (
	StateStart State = iota
	StatePortalLoaded
	StateLoginFormOpen
	StateCredentialsSubmitted
	StateDashboardReady
	StateLoginError
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePortalLoaded:
		return "portal_loaded"
	case StateLoginFormOpen:
		return "login_form_open"
	case StateCredentialsSubmitted:
		return "credentials_submitted"
	case StateDashboardReady:
		return "dashboard_ready"
	case StateLoginError:
		return "login_error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// signalsTimeout bounds reading the page signals after the submit waits.
const signalsTimeout = 5 * time.Second

// Sequencer drives a browser session through the portal's login flow. Every
// step has its own timeout and nothing is retried except the one submit
// fallback.
type Sequencer struct {
	opts Options
	tel  telemetry.API
}

func NewSequencer(opts Options, tel telemetry.API) Sequencer {
	return Sequencer{opts: opts, tel: tel}
}

func jsString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

// bypassScript submits the login form directly, for when the submit button's
// click handler silently does nothing.
func bypassScript(sel Selectors) string {
	return fmt.Sprintf(`(() => {
	const form = document.querySelector(%s);
	if (form) {
		form.submit();
		return true;
	}
	const button = document.querySelector(%s);
	if (button && button.form) {
		button.form.submit();
		return true;
	}
	return false;
})()`, jsString(sel.StudentForm), jsString(sel.Submit))
}

// Login runs the login flow and returns exactly one outcome. The error is
// only set for failures outside the flow's own taxonomy, such as a field
// that could not be filled for a reason other than a timeout.
func (s Sequencer) Login(ctx context.Context, session browser.Session, cred Credential) (LoginOutcome, error) {
	ctx, span := tracer.Start(ctx, "Sequencer:Login")
	defer span.End()

	state := StateStart
	transition := func(next State) {
		s.tel.ReportDebug("sequencer transition", state.String(), next.String())
		span.AddEvent(next.String())
		state = next
	}

	err := s.navigate(ctx, session)
	if err != nil {
		s.tel.ReportBroken(report_sequencer_navigate, err)
		span.SetStatus(codes.Error, "portal unreachable")
		return LoginOutcome{Kind: OutcomePortalUnreachable}, nil
	}
	transition(StatePortalLoaded)

	err = s.openForm(ctx, session)
	if err != nil {
		s.tel.ReportBroken(report_sequencer_open_form, err)
		span.SetStatus(codes.Error, "login form did not open")
		return LoginOutcome{Kind: OutcomeTimeout}, nil
	}
	transition(StateLoginFormOpen)

	err = s.submit(ctx, session, cred)
	if err != nil {
		s.tel.ReportBroken(report_sequencer_submit, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit credentials")
		if errors.Is(err, context.DeadlineExceeded) {
			return LoginOutcome{Kind: OutcomeTimeout}, nil
		}
		return LoginOutcome{}, err
	}
	transition(StateCredentialsSubmitted)

	s.awaitResult(ctx, session)

	signals := s.Signals(ctx, session)
	outcome := Classify(signals)
	if outcome.Kind == OutcomeSuccess {
		transition(StateDashboardReady)
	} else {
		transition(StateLoginError)
		span.SetStatus(codes.Error, outcome.Kind.String())
	}
	span.SetAttributes(
		attribute.String("outcome", outcome.Kind.String()),
		attribute.String("url", signals.URL),
	)
	return outcome, nil
}

func (s Sequencer) navigate(ctx context.Context, session browser.Session) error {
	ctx, span := tracer.Start(ctx, "navigate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.Navigation)
	defer cancel()

	err := session.Navigate(ctx, s.opts.PortalURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load portal")
	}
	return err
}

func (s Sequencer) openForm(ctx context.Context, session browser.Session) error {
	ctx, span := tracer.Start(ctx, "openForm")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.FormOpen)
	defer cancel()

	sel := s.opts.Selectors
	err := session.WaitVisible(ctx, sel.StudentLink)
	if err == nil {
		err = session.Click(ctx, sel.StudentLink)
	}
	if err == nil {
		err = session.WaitVisible(ctx, sel.LoginForm)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open login form")
	}
	return err
}

func (s Sequencer) submit(ctx context.Context, session browser.Session, cred Credential) error {
	ctx, span := tracer.Start(ctx, "submit")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.FormOpen)
	defer cancel()

	sel := s.opts.Selectors
	err := session.Fill(ctx, sel.Identifier, cred.Identifier)
	if err != nil {
		return fmt.Errorf("fill identifier: %w", err)
	}
	err = session.Fill(ctx, sel.Secret, cred.Secret)
	if err != nil {
		return fmt.Errorf("fill secret: %w", err)
	}
	err = session.Click(ctx, sel.Submit)
	if err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	return nil
}

// awaitResult waits for the dashboard or the error marker. When neither
// shows up it submits the form directly and waits once more, whatever the
// page looks like afterwards is left to Classify.
func (s Sequencer) awaitResult(ctx context.Context, session browser.Session) {
	ctx, span := tracer.Start(ctx, "awaitResult")
	defer span.End()

	sel := s.opts.Selectors

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.Submit)
	matched, err := session.WaitAnyVisible(waitCtx, sel.Dashboard, sel.Error)
	cancel()
	if err == nil {
		span.SetAttributes(attribute.String("matched", matched))
		return
	}

	s.tel.ReportWarning(report_sequencer_fallback, err)
	span.AddEvent("fallback")

	fallbackCtx, cancel := context.WithTimeout(ctx, s.opts.Timeouts.SubmitFallback)
	defer cancel()

	var submitted bool
	err = session.Evaluate(fallbackCtx, bypassScript(sel), &submitted)
	if err != nil {
		// a successful form.submit() may tear down the page before the
		// result comes back, so this is not fatal.
		s.tel.ReportDebug("bypass submit failed", err)
	}

	matched, err = session.WaitAnyVisible(fallbackCtx, sel.Dashboard, sel.Error)
	if err != nil {
		s.tel.ReportWarning(report_sequencer_fallback, "no marker after fallback", err)
		span.SetStatus(codes.Error, "no marker after fallback")
		return
	}
	span.SetAttributes(attribute.String("matched", matched))
}

// Signals reads what Classify needs from the current page. Read failures
// are reported and leave the signal at its zero value.
func (s Sequencer) Signals(ctx context.Context, session browser.Session) PageSignals {
	ctx, span := tracer.Start(ctx, "signals")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, signalsTimeout)
	defer cancel()

	sel := s.opts.Selectors
	var signals PageSignals
	var err error

	signals.ErrorVisible, err = session.Visible(ctx, sel.Error)
	if err != nil {
		s.tel.ReportWarning(report_sequencer_signals, "error marker", err)
	}
	if signals.ErrorVisible {
		signals.ErrorText, err = session.InnerText(ctx, sel.Error)
		if err != nil {
			s.tel.ReportWarning(report_sequencer_signals, "error text", err)
		}
	}
	signals.DashboardVisible, err = session.Visible(ctx, sel.Dashboard)
	if err != nil {
		s.tel.ReportWarning(report_sequencer_signals, "dashboard marker", err)
	}
	signals.URL, err = session.URL(ctx)
	if err != nil {
		s.tel.ReportWarning(report_sequencer_signals, "url", err)
	}

	span.SetAttributes(
		attribute.Bool("error_visible", signals.ErrorVisible),
		attribute.Bool("dashboard_visible", signals.DashboardVisible),
	)
	return signals
}

// Capture is what the dashboard showed once its figures settled.
type Capture struct {
	Text string
	// Header is the text of the optional name header, empty when the
	// portal has none.
	Header string
}

// Capture waits for the dashboard to settle and reads its text. It must
// only be called after Login succeeded.
func (s Sequencer) Capture(ctx context.Context, session browser.Session) (Capture, error) {
	ctx, span := tracer.Start(ctx, "Sequencer:Capture")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Settle.Max+s.opts.Timeouts.Capture)
	defer cancel()

	text, err := settle(ctx, session, "body", s.opts.Settle)
	if err != nil {
		s.tel.ReportBroken(report_sequencer_capture, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read dashboard")
		return Capture{}, err
	}

	var header string
	if s.opts.Selectors.NameHeader != "" {
		exists, err := session.Exists(ctx, s.opts.Selectors.NameHeader)
		if err == nil && exists {
			header, err = session.InnerText(ctx, s.opts.Selectors.NameHeader)
		}
		if err != nil {
			s.tel.ReportDebug("name header unavailable", err)
		}
	}

	span.SetAttributes(attribute.Int("text_length", len(text)))
	return Capture{Text: text, Header: header}, nil
}
