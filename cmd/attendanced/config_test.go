package main

import (
	"testing"
	"time"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/configutil"
	"attendance-backend/services/attendance"

	"github.com/stretchr/testify/require"
)

func TestShippedConfig(t *testing.T) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Port())
	require.Equal(t, 5*time.Second, cfg.ProbeTimeout())

	opts, err := cfg.Attendance().Options()
	require.NoError(t, err)
	require.Equal(t, "http://mitsims.in/", opts.PortalURL)
	require.Equal(t, attendance.SettlePoll, opts.Settle.Mode)
	require.Equal(t, attendance.DefaultThreshold, opts.Threshold)

	browserConfig := cfg.Attendance().BrowserConfig()
	require.Equal(t, browser.DriverChromedp, browserConfig.Driver)
	require.Equal(t, int64(4), browserConfig.MaxSessions)
	require.True(t, browserConfig.Headless)
}

func TestConfigFallbacks(t *testing.T) {
	var cfg Config
	require.Equal(t, 5000, cfg.Port())
	require.Equal(t, 5*time.Second, cfg.ProbeTimeout())
}
