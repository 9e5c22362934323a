package attendance

import (
	"context"
	"fmt"
	"time"

	"attendance-backend/lib/browser"
)

// settle waits for the dashboard's figures to finish populating and returns
// the text of selector once it has. In poll mode the text must stay the same
// for StableFor, in fixed mode settle just waits Max. Neither waits longer
// than Max.
func settle(ctx context.Context, session browser.Session, selector string, opts SettleOptions) (string, error) {
	if opts.Mode == SettleFixed {
		timer := time.NewTimer(opts.Max)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
		return session.InnerText(ctx, selector)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := time.Now().Add(opts.Max)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last        string
		haveLast    bool
		stableSince time.Time
		lastErr     error
	)
	for {
		text, err := session.InnerText(ctx, selector)
		now := time.Now()
		if err != nil {
			lastErr = err
		} else if !haveLast || text != last {
			last = text
			haveLast = true
			stableSince = now
		} else if now.Sub(stableSince) >= opts.StableFor {
			return last, nil
		}

		if !now.Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			if haveLast {
				return last, nil
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}

	if haveLast {
		return last, nil
	}
	return "", fmt.Errorf("read %s while settling: %w", selector, lastErr)
}
