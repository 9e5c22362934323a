package main

import (
	"time"

	"attendance-backend/services/attendance"
)

type ServerConfig struct {
	Port int `json:"port"`
	// Debug returns the captured page text when nothing could be parsed.
	Debug        bool     `json:"debug"`
	AllowOrigins []string `json:"allow_origins"`
}

type HealthConfig struct {
	ProbeTimeoutSeconds int `json:"probe_timeout_seconds"`
}

type Config struct {
	Server    ServerConfig              `json:"server"`
	Health    HealthConfig              `json:"health"`
	Portal    attendance.PortalConfig   `json:"portal"`
	Browser   attendance.BrowserConfig  `json:"browser"`
	Timeouts  attendance.TimeoutsConfig `json:"timeouts"`
	Settle    attendance.SettleConfig   `json:"settle"`
	Parser    attendance.ParserConfig   `json:"parser"`
	Threshold float64                   `json:"threshold"`
}

func (c Config) Attendance() attendance.Config {
	return attendance.Config{
		Portal:    c.Portal,
		Browser:   c.Browser,
		Timeouts:  c.Timeouts,
		Settle:    c.Settle,
		Parser:    c.Parser,
		Threshold: c.Threshold,
	}
}

func (c Config) Port() int {
	if c.Server.Port <= 0 {
		return 5000
	}
	return c.Server.Port
}

func (c Config) ProbeTimeout() time.Duration {
	if c.Health.ProbeTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Health.ProbeTimeoutSeconds) * time.Second
}
