package browser

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultQueueTimeout bounds the wait for a free slot when no queue timeout
// is configured.
const DefaultQueueTimeout = 30 * time.Second

// Limited bounds how many sessions of the inner driver are open at once and
// how fast they are launched. Sessions are still never shared.
type Limited struct {
	inner        Driver
	slots        *semaphore.Weighted
	limiter      *rate.Limiter
	queueTimeout time.Duration
}

// NewLimited wraps inner, a maxSessions or launchesPerSecond <= 0 leaves
// that dimension unbounded. Waiting for a slot or a launch never takes
// longer than queueTimeout, DefaultQueueTimeout when it is <= 0.
func NewLimited(inner Driver, maxSessions int64, launchesPerSecond float64, queueTimeout time.Duration) Limited {
	if queueTimeout <= 0 {
		queueTimeout = DefaultQueueTimeout
	}
	l := Limited{inner: inner, queueTimeout: queueTimeout}
	if maxSessions > 0 {
		l.slots = semaphore.NewWeighted(maxSessions)
	}
	if launchesPerSecond > 0 {
		burst := int(math.Ceil(launchesPerSecond))
		l.limiter = rate.NewLimiter(rate.Limit(launchesPerSecond), burst)
	}
	return l
}

func (l Limited) Acquire(ctx context.Context) (Session, error) {
	queueCtx, cancel := context.WithTimeout(ctx, l.queueTimeout)
	defer cancel()

	if l.slots != nil {
		err := l.slots.Acquire(queueCtx, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: no free browser slot within %s: %w", ErrLaunch, l.queueTimeout, err)
		}
	}
	release := func() {}
	if l.slots != nil {
		release = sync.OnceFunc(func() { l.slots.Release(1) })
	}

	if l.limiter != nil {
		err := l.limiter.Wait(queueCtx)
		if err != nil {
			release()
			return nil, fmt.Errorf("%w: launch rate exceeded within %s: %w", ErrLaunch, l.queueTimeout, err)
		}
	}

	session, err := l.inner.Acquire(ctx)
	if err != nil {
		release()
		return nil, err
	}
	return &limitedSession{Session: session, release: release}, nil
}

type limitedSession struct {
	Session
	release func()
}

func (s *limitedSession) Close() error {
	defer s.release()
	return s.Session.Close()
}
