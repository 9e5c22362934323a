package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

var (
	installOnce sync.Once
	installErr  error
)

// EnsureInstalled downloads the playwright driver and chromium the first
// time it is called, later calls (including concurrent ones) wait for and
// return the result of that first call.
func EnsureInstalled() error {
	installOnce.Do(func() {
		slog.Info("installing playwright chromium")
		installErr = playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		})
	})
	return installErr
}

type PlaywrightDriver struct {
	config Config
}

func NewPlaywrightDriver(config Config) PlaywrightDriver {
	return PlaywrightDriver{config: config}
}

type launchResult struct {
	session *playwrightSession
	err     error
}

func (d PlaywrightDriver) launch() (*playwrightSession, error) {
	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
	if err != nil {
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.config.Headless),
		Args:     isolationArgs,
	}
	if d.config.LaunchTimeout > 0 {
		launchOpts.Timeout = playwright.Float(float64(d.config.LaunchTimeout.Milliseconds()))
	}
	if d.config.ExecPath != "" {
		launchOpts.ExecutablePath = playwright.String(d.config.ExecPath)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if d.config.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(d.config.UserAgent)
	}
	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, err
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, err
	}

	return &playwrightSession{
		pw:          pw,
		browser:     browser,
		context:     browserCtx,
		page:        page,
		typingDelay: d.config.TypingDelay,
	}, nil
}

func (d PlaywrightDriver) Acquire(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "Playwright:Acquire")
	defer span.End()

	if d.config.LaunchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.LaunchTimeout)
		defer cancel()
	}

	result := make(chan launchResult, 1)
	go func() {
		session, err := d.launch()
		result <- launchResult{session: session, err: err}
	}()

	select {
	case res := <-result:
		if res.err != nil {
			span.RecordError(res.err)
			return nil, fmt.Errorf("%w: %w", ErrLaunch, res.err)
		}
		slog.Debug("playwright session launched")
		return res.session, nil
	case <-ctx.Done():
		// the launch keeps going in the background, whatever it produces
		// is torn down as soon as it arrives.
		go func() {
			res := <-result
			if res.session != nil {
				_ = res.session.Close()
			}
		}()
		span.RecordError(ctx.Err())
		return nil, fmt.Errorf("%w: %w", ErrLaunch, ctx.Err())
	}
}

type playwrightSession struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	typingDelay time.Duration

	closeOnce sync.Once
	closeErr  error
}

// timeout converts the remaining time on ctx into playwright's millisecond
// timeouts. Without a deadline playwright's own default applies.
func timeout(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, nil
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, context.DeadlineExceeded
	}
	return playwright.Float(float64(remaining.Milliseconds())), nil
}

// translate makes playwright timeouts match errors.Is(err, context.DeadlineExceeded)
// like the chromedp driver's.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	ms, err := timeout(ctx)
	if err != nil {
		return err
	}
	_, err = s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms,
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, translate(err))
	}
	return nil
}

func (s *playwrightSession) WaitVisible(ctx context.Context, selector string) error {
	ms, err := timeout(ctx)
	if err != nil {
		return err
	}
	_, err = s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms,
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", selector, translate(err))
	}
	return nil
}

func (s *playwrightSession) WaitAnyVisible(ctx context.Context, selectors ...string) (string, error) {
	return pollAnyVisible(ctx, s.Evaluate, selectors)
}

func (s *playwrightSession) Click(ctx context.Context, selector string) error {
	ms, err := timeout(ctx)
	if err != nil {
		return err
	}
	err = s.page.Click(selector, playwright.PageClickOptions{
		Force:   playwright.Bool(true),
		Timeout: ms,
	})
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, translate(err))
	}
	return nil
}

func (s *playwrightSession) Fill(ctx context.Context, selector, value string) error {
	ms, err := timeout(ctx)
	if err != nil {
		return err
	}
	err = s.page.Fill(selector, "", playwright.PageFillOptions{Timeout: ms})
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, translate(err))
	}
	err = s.page.Type(selector, value, playwright.PageTypeOptions{
		Delay:   playwright.Float(float64(s.typingDelay.Milliseconds())),
		Timeout: ms,
	})
	if err != nil {
		// the value is never part of the error, it may be a secret.
		return fmt.Errorf("fill %s: %w", selector, translate(err))
	}
	return nil
}

// Evaluate runs the script on a separate goroutine since playwright's
// evaluate has no timeout of its own.
func (s *playwrightSession) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type evalResult struct {
		value any
		err   error
	}
	result := make(chan evalResult, 1)
	go func() {
		value, err := s.page.Evaluate(script)
		result <- evalResult{value: value, err: err}
	}()

	var res evalResult
	select {
	case res = <-result:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return translate(res.err)
	}
	if out == nil {
		return nil
	}

	encoded, err := json.Marshal(res.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

func (s *playwrightSession) Exists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	err := s.Evaluate(ctx, existsScript(selector), &exists)
	return exists, err
}

func (s *playwrightSession) Visible(ctx context.Context, selector string) (bool, error) {
	var visible bool
	err := s.Evaluate(ctx, visibleScript(selector), &visible)
	return visible, err
}

func (s *playwrightSession) InnerText(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.Evaluate(ctx, innerTextScript(selector), &text)
	return text, err
}

func (s *playwrightSession) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *playwrightSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	return html, translate(err)
}

func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(
			s.page.Close(),
			s.context.Close(),
			s.browser.Close(),
			s.pw.Stop(),
		)
		slog.Debug("playwright session closed")
	})
	return s.closeErr
}
