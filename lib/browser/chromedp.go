package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
)

type ChromedpDriver struct {
	config Config
}

func NewChromedpDriver(config Config) ChromedpDriver {
	return ChromedpDriver{config: config}
}

func (d ChromedpDriver) allocator() (context.Context, context.CancelFunc) {
	if d.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), d.config.RemoteURL)
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", d.config.Headless),
	)
	if d.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.config.UserAgent))
	}
	if d.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.config.ExecPath))
	}
	// every exec allocator gets its own temporary user data dir, which is
	// removed when the allocator is cancelled.
	return chromedp.NewExecAllocator(context.Background(), opts...)
}

// Acquire starts a fresh browser. The browser's lifetime is independent of
// ctx, which only bounds how long the launch may take.
func (d ChromedpDriver) Acquire(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "Chromedp:Acquire")
	defer span.End()
	span.SetAttributes(attribute.Bool("remote", d.config.RemoteURL != ""))

	if d.config.LaunchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.LaunchTimeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := d.allocator()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// the first Run launches the browser, its ctx must not carry a timeout
	// or the browser would be killed once the timeout elapses.
	launched := make(chan error, 1)
	go func() {
		launched <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-launched:
		if err != nil {
			cancelBrowser()
			cancelAlloc()
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
		}
	case <-ctx.Done():
		cancelBrowser()
		cancelAlloc()
		<-launched
		span.RecordError(ctx.Err())
		return nil, fmt.Errorf("%w: %w", ErrLaunch, ctx.Err())
	}

	slog.Debug("chromedp session launched", "remote", d.config.RemoteURL != "")
	return &chromedpSession{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		typingDelay:   d.config.TypingDelay,
	}, nil
}

type chromedpSession struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closeOnce     sync.Once
	closeErr      error
	typingDelay   time.Duration
}

// run executes actions on the session's browser while honoring the deadline
// and cancellation of the caller's ctx.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		opCtx, cancelDeadline = context.WithDeadline(opCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, chromedp.Navigate(url))
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) WaitVisible(ctx context.Context, selector string) error {
	err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) WaitAnyVisible(ctx context.Context, selectors ...string) (string, error) {
	return pollAnyVisible(ctx, s.Evaluate, selectors)
}

func (s *chromedpSession) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, fillActions(selector, value, s.typingDelay)...)
	if err != nil {
		// the value is never part of the error, it may be a secret.
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

// fillActions types value one key at a time with delay between keys, all at
// once when delay is 0.
func fillActions(selector, value string, delay time.Duration) []chromedp.Action {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
	}
	if delay <= 0 {
		return append(actions, chromedp.SendKeys(selector, value, chromedp.ByQuery))
	}
	for i, r := range []rune(value) {
		if i > 0 {
			actions = append(actions, chromedp.Sleep(delay))
		}
		actions = append(actions, chromedp.SendKeys(selector, string(r), chromedp.ByQuery))
	}
	return actions
}

func (s *chromedpSession) Evaluate(ctx context.Context, script string, out any) error {
	return s.run(ctx, chromedp.Evaluate(script, out))
}

func (s *chromedpSession) Exists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	err := s.Evaluate(ctx, existsScript(selector), &exists)
	return exists, err
}

func (s *chromedpSession) Visible(ctx context.Context, selector string) (bool, error) {
	var visible bool
	err := s.Evaluate(ctx, visibleScript(selector), &visible)
	return visible, err
}

func (s *chromedpSession) InnerText(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.Evaluate(ctx, innerTextScript(selector), &text)
	return text, err
}

func (s *chromedpSession) URL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *chromedpSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.Evaluate(ctx, `document.documentElement ? document.documentElement.outerHTML : ""`, &html)
	return html, err
}

func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		// chromedp.Cancel closes the browser gracefully, cancelling the
		// allocator afterwards kills the process and removes its profile.
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancelBrowser()
		s.cancelAlloc()
		slog.Debug("chromedp session closed")
	})
	return s.closeErr
}
