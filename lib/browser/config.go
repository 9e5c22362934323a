package browser

import (
	"fmt"
	"strings"
	"time"
)

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

type Config struct {
	// Driver is either DriverChromedp or DriverPlaywright.
	Driver string
	// RemoteURL makes the chromedp driver connect to an already running
	// browser (ex. a sandboxed container) instead of launching one.
	RemoteURL string
	// ExecPath overrides the browser binary for local launches.
	ExecPath  string
	Headless  bool
	UserAgent string
	// LaunchTimeout bounds how long a browser may take to start.
	LaunchTimeout time.Duration
	// TypingDelay is the per-key delay used when filling inputs.
	TypingDelay time.Duration

	// MaxSessions bounds concurrently open sessions, 0 means unbounded.
	MaxSessions int64
	// LaunchesPerSecond bounds how fast new sessions are started, 0 means
	// unbounded.
	LaunchesPerSecond float64
	// QueueTimeout bounds the wait for a session slot or a launch when
	// either limit is set.
	QueueTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Driver:        DriverChromedp,
		Headless:      true,
		LaunchTimeout: 30 * time.Second,
		TypingDelay:   50 * time.Millisecond,
		QueueTimeout:  DefaultQueueTimeout,
	}
}

// isolationArgs are passed to every locally launched browser, they let it
// run inside restricted containers.
var isolationArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-gpu",
	"--disable-dev-shm-usage",
}

// NewDriver builds the configured driver, wrapped in a Limited driver when
// either limit is set.
func NewDriver(config Config) (Driver, error) {
	var driver Driver
	switch strings.ToLower(config.Driver) {
	case "", DriverChromedp:
		driver = NewChromedpDriver(config)
	case DriverPlaywright:
		driver = NewPlaywrightDriver(config)
	default:
		return nil, fmt.Errorf("unknown browser driver '%s'", config.Driver)
	}

	if config.MaxSessions > 0 || config.LaunchesPerSecond > 0 {
		driver = NewLimited(driver, config.MaxSessions, config.LaunchesPerSecond, config.QueueTimeout)
	}
	return driver, nil
}
