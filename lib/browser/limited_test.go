package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/browser/browsertest"

	"github.com/stretchr/testify/require"
)

func TestWithSessionClosesOnError(t *testing.T) {
	driver := &browsertest.Driver{}
	boom := errors.New("boom")

	err := browser.WithSession(context.Background(), driver, func(s browser.Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, driver.Acquired())
	require.Equal(t, 1, driver.Closed())
}

func TestWithSessionClosesOnPanic(t *testing.T) {
	driver := &browsertest.Driver{}

	require.Panics(t, func() {
		_ = browser.WithSession(context.Background(), driver, func(s browser.Session) error {
			panic("unexpected")
		})
	})
	require.Equal(t, 1, driver.Closed())
}

func TestWithSessionAcquireFailure(t *testing.T) {
	driver := &browsertest.Driver{AcquireErr: browser.ErrLaunch}

	called := false
	err := browser.WithSession(context.Background(), driver, func(s browser.Session) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, browser.ErrLaunch)
	require.False(t, called)
	require.Equal(t, 0, driver.Closed())
}

func TestLimitedBoundsSessions(t *testing.T) {
	inner := &browsertest.Driver{}
	limited := browser.NewLimited(inner, 1, 0, time.Second)

	first, err := limited.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = limited.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, inner.Acquired())

	// closing twice must only free one slot
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	second, err := limited.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = limited.Acquire(ctx)
	require.Error(t, err)

	require.NoError(t, second.Close())
	require.Equal(t, 2, inner.Acquired())
}

func TestLimitedReleasesOnAcquireFailure(t *testing.T) {
	inner := &browsertest.Driver{AcquireErr: browser.ErrLaunch}
	limited := browser.NewLimited(inner, 1, 0, time.Second)

	for range 3 {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_, err := limited.Acquire(ctx)
		cancel()
		require.ErrorIs(t, err, browser.ErrLaunch)
	}
}

func TestLimitedRate(t *testing.T) {
	inner := &browsertest.Driver{}
	limited := browser.NewLimited(inner, 0, 1, time.Second)

	first, err := limited.Acquire(context.Background())
	require.NoError(t, err)
	defer first.Close()

	// the burst is spent, the next launch is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = limited.Acquire(ctx)
	require.Error(t, err)
	require.Equal(t, 1, inner.Acquired())
}

func TestLimitedQueueTimeout(t *testing.T) {
	inner := &browsertest.Driver{}
	limited := browser.NewLimited(inner, 1, 0, 100*time.Millisecond)

	held, err := limited.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Close()

	// the caller's ctx never ends, only the queue timeout bounds the wait
	start := time.Now()
	_, err = limited.Acquire(context.WithoutCancel(context.Background()))
	require.ErrorIs(t, err, browser.ErrLaunch)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, 1, inner.Acquired())
}
