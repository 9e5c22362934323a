package attendance

import (
	"testing"
	"time"

	"attendance-backend/lib/browser"

	"github.com/stretchr/testify/require"
	"github.com/titanous/json5"
)

func TestConfigDefaults(t *testing.T) {
	opts, err := Config{}.Options()
	require.NoError(t, err)
	require.Equal(t, DefaultOptions(), opts)
	require.Equal(t, browser.DefaultConfig(), Config{}.BrowserConfig())
}

func TestConfigOverrides(t *testing.T) {
	var config Config
	err := json5.Unmarshal([]byte(`{
		// only what differs from the defaults
		portal: {
			base_url: "https://portal.example.edu/",
			selectors: { dashboard: "#dashboardName" },
		},
		browser: {
			driver: "playwright",
			headless: false,
			max_sessions: 4,
			launches_per_second: 2.5,
			queue_timeout_seconds: 10,
			typing_delay_ms: 0,
		},
		timeouts: { submit_seconds: 12 },
		settle: { mode: "fixed", max_ms: 2500 },
		parser: { lookahead: 7, numeric_order: "conducted, attended" },
		threshold: 80,
	}`), &config)
	require.NoError(t, err)

	opts, err := config.Options()
	require.NoError(t, err)

	defaults := DefaultOptions()
	require.Equal(t, "https://portal.example.edu/", opts.PortalURL)
	require.Equal(t, "#dashboardName", opts.Selectors.Dashboard)
	require.Equal(t, defaults.Selectors.Error, opts.Selectors.Error)
	require.Equal(t, 12*time.Second, opts.Timeouts.Submit)
	require.Equal(t, defaults.Timeouts.Navigation, opts.Timeouts.Navigation)
	require.Equal(t, SettleFixed, opts.Settle.Mode)
	require.Equal(t, 2500*time.Millisecond, opts.Settle.Max)
	require.Equal(t, defaults.Settle.StableFor, opts.Settle.StableFor)
	require.Equal(t, 7, opts.Parser.Lookahead)
	require.Equal(t, OrderConductedAttended, opts.Parser.NumericOrder)
	require.Equal(t, 80.0, opts.Threshold)

	browserConfig := config.BrowserConfig()
	require.Equal(t, browser.DriverPlaywright, browserConfig.Driver)
	require.False(t, browserConfig.Headless)
	require.Equal(t, int64(4), browserConfig.MaxSessions)
	require.Equal(t, 2.5, browserConfig.LaunchesPerSecond)
	require.Equal(t, 10*time.Second, browserConfig.QueueTimeout)
	require.Equal(t, browser.DefaultConfig().TypingDelay, browserConfig.TypingDelay)
}

func TestConfigInvalid(t *testing.T) {
	cases := []struct {
		name   string
		config Config
	}{
		{name: "settle mode", config: Config{Settle: SettleConfig{Mode: "forever"}}},
		{name: "numeric order", config: Config{Parser: ParserConfig{NumericOrder: "percentage first"}}},
		{name: "threshold", config: Config{Threshold: 120}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.config.Options()
			require.Error(t, err)
		})
	}
}
