// Package browser drives an isolated headless browser, one session per
// request. Sessions are never shared or reused.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("attendance.lib.browser")

// ErrLaunch is returned by Driver.Acquire when the browser could not be
// started. It is fatal for the request and never retried.
var ErrLaunch = errors.New("failed to launch browser")

// Session is a single browser with a single page. Every page operation is
// bounded by the deadline of the ctx passed to it.
//
// note: fault injection point
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	// WaitAnyVisible blocks until one of the selectors is visible and
	// returns the first one (in argument order) that is.
	WaitAnyVisible(ctx context.Context, selectors ...string) (string, error)
	Click(ctx context.Context, selector string) error
	// Fill clears the input and then types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Evaluate runs a javascript expression and decodes its result into out,
	// out may be nil to discard the result.
	Evaluate(ctx context.Context, script string, out any) error
	Exists(ctx context.Context, selector string) (bool, error)
	Visible(ctx context.Context, selector string) (bool, error)
	// InnerText returns the rendered text of the first element matching
	// selector, or "" if there is none.
	InnerText(ctx context.Context, selector string) (string, error)
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// Close tears the browser down, it is safe to call more than once.
	Close() error
}

type Driver interface {
	Acquire(ctx context.Context) (Session, error)
}

// WithSession acquires a session, runs fn with it and closes the session on
// every exit path, including a panic in fn.
func WithSession(ctx context.Context, driver Driver, fn func(Session) error) error {
	ctx, span := tracer.Start(ctx, "WithSession")
	defer span.End()

	session, err := driver.Acquire(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer func() {
		cerr := session.Close()
		if cerr != nil {
			slog.Warn("failed to close browser session", "err", cerr)
		}
	}()
	return fn(session)
}

const pollInterval = 100 * time.Millisecond

const visibleFn = `function(el) {
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === "hidden" || style.display === "none") return false;
	return !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
}`

func jsString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func existsScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

func visibleScript(selector string) string {
	return fmt.Sprintf(`(%s)(document.querySelector(%s))`, visibleFn, jsString(selector))
}

func innerTextScript(selector string) string {
	return fmt.Sprintf(
		`(() => { const el = document.querySelector(%s); return el ? (el.innerText || el.textContent || "") : ""; })()`,
		jsString(selector),
	)
}

func anyVisibleScript(selectors []string) string {
	encoded, _ := json.Marshal(selectors)
	return fmt.Sprintf(`(() => {
	const visible = %s;
	const selectors = %s;
	for (let i = 0; i < selectors.length; i++) {
		if (visible(document.querySelector(selectors[i]))) return i;
	}
	return -1;
})()`, visibleFn, string(encoded))
}

// pollAnyVisible evaluates anyVisibleScript until a selector is visible or
// ctx is done. Evaluation errors while the page is mid-navigation are
// expected and only end the wait once ctx does.
func pollAnyVisible(ctx context.Context, eval func(ctx context.Context, script string, out any) error, selectors []string) (string, error) {
	if len(selectors) == 0 {
		return "", fmt.Errorf("no selectors given")
	}
	script := anyVisibleScript(selectors)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		var index int
		err := eval(ctx, script, &index)
		if err == nil && index >= 0 && index < len(selectors) {
			return selectors[index], nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return "", fmt.Errorf("wait for %v: %w (last error: %s)", selectors, ctx.Err(), lastErr.Error())
			}
			return "", fmt.Errorf("wait for %v: %w", selectors, ctx.Err())
		case <-ticker.C:
		}
	}
}
