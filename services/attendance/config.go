package attendance

import (
	"fmt"
	"time"

	"attendance-backend/lib/browser"
)

// Config is the json5 representation of Options and the browser setup.
// Zero values fall back to DefaultOptions and browser.DefaultConfig.
type Config struct {
	Portal    PortalConfig   `json:"portal"`
	Browser   BrowserConfig  `json:"browser"`
	Timeouts  TimeoutsConfig `json:"timeouts"`
	Settle    SettleConfig   `json:"settle"`
	Parser    ParserConfig   `json:"parser"`
	Threshold float64        `json:"threshold"`
}

type SelectorsConfig struct {
	StudentLink string `json:"student_link"`
	LoginForm   string `json:"login_form"`
	StudentForm string `json:"student_form"`
	Identifier  string `json:"identifier"`
	Secret      string `json:"secret"`
	Submit      string `json:"submit"`
	Dashboard   string `json:"dashboard"`
	Error       string `json:"error"`
	NameHeader  string `json:"name_header"`
}

type PortalConfig struct {
	BaseUrl   string          `json:"base_url"`
	Selectors SelectorsConfig `json:"selectors"`
}

// With Install set, the playwright driver and chromium are downloaded on
// startup.
type BrowserConfig struct {
	Driver               string  `json:"driver"`
	RemoteUrl            string  `json:"remote_url"`
	ExecPath             string  `json:"exec_path"`
	Headless             *bool   `json:"headless"`
	Install              bool    `json:"install"`
	MaxSessions          int64   `json:"max_sessions"`
	LaunchesPerSecond    float64 `json:"launches_per_second"`
	QueueTimeoutSeconds  int     `json:"queue_timeout_seconds"`
	UserAgent            string  `json:"user_agent"`
	LaunchTimeoutSeconds int     `json:"launch_timeout_seconds"`
	TypingDelayMillis    int     `json:"typing_delay_ms"`
}

type TimeoutsConfig struct {
	NavigationSeconds     int `json:"navigation_seconds"`
	FormOpenSeconds       int `json:"form_open_seconds"`
	SubmitSeconds         int `json:"submit_seconds"`
	SubmitFallbackSeconds int `json:"submit_fallback_seconds"`
	CaptureSeconds        int `json:"capture_seconds"`
}

type SettleConfig struct {
	Mode            string `json:"mode"`
	StableForMillis int    `json:"stable_for_ms"`
	MaxMillis       int    `json:"max_ms"`
	IntervalMillis  int    `json:"interval_ms"`
}

type ParserConfig struct {
	Lookahead    int    `json:"lookahead"`
	NumericOrder string `json:"numeric_order"`
}

func orString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orSeconds(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}

func orMillis(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Millisecond
}

func (c Config) Options() (Options, error) {
	opts := DefaultOptions()
	defaults := opts.Selectors

	opts.PortalURL = orString(c.Portal.BaseUrl, opts.PortalURL)
	selectors := c.Portal.Selectors
	opts.Selectors = Selectors{
		StudentLink: orString(selectors.StudentLink, defaults.StudentLink),
		LoginForm:   orString(selectors.LoginForm, defaults.LoginForm),
		StudentForm: orString(selectors.StudentForm, defaults.StudentForm),
		Identifier:  orString(selectors.Identifier, defaults.Identifier),
		Secret:      orString(selectors.Secret, defaults.Secret),
		Submit:      orString(selectors.Submit, defaults.Submit),
		Dashboard:   orString(selectors.Dashboard, defaults.Dashboard),
		Error:       orString(selectors.Error, defaults.Error),
		NameHeader:  orString(selectors.NameHeader, defaults.NameHeader),
	}

	opts.Timeouts = Timeouts{
		Navigation:     orSeconds(c.Timeouts.NavigationSeconds, opts.Timeouts.Navigation),
		FormOpen:       orSeconds(c.Timeouts.FormOpenSeconds, opts.Timeouts.FormOpen),
		Submit:         orSeconds(c.Timeouts.SubmitSeconds, opts.Timeouts.Submit),
		SubmitFallback: orSeconds(c.Timeouts.SubmitFallbackSeconds, opts.Timeouts.SubmitFallback),
		Capture:        orSeconds(c.Timeouts.CaptureSeconds, opts.Timeouts.Capture),
	}

	mode := orString(c.Settle.Mode, opts.Settle.Mode)
	if mode != SettlePoll && mode != SettleFixed {
		return Options{}, fmt.Errorf("unknown settle mode '%s'", mode)
	}
	opts.Settle = SettleOptions{
		Mode:      mode,
		StableFor: orMillis(c.Settle.StableForMillis, opts.Settle.StableFor),
		Max:       orMillis(c.Settle.MaxMillis, opts.Settle.Max),
		Interval:  orMillis(c.Settle.IntervalMillis, opts.Settle.Interval),
	}

	order, err := ParseNumericOrder(c.Parser.NumericOrder)
	if err != nil {
		return Options{}, err
	}
	opts.Parser.NumericOrder = order
	if c.Parser.Lookahead > 0 {
		opts.Parser.Lookahead = c.Parser.Lookahead
	}

	if c.Threshold > 0 {
		if c.Threshold > 100 {
			return Options{}, fmt.Errorf("threshold %v is above 100", c.Threshold)
		}
		opts.Threshold = c.Threshold
	}
	return opts, nil
}

func (c Config) BrowserConfig() browser.Config {
	config := browser.DefaultConfig()
	config.Driver = orString(c.Browser.Driver, config.Driver)
	config.RemoteURL = c.Browser.RemoteUrl
	config.ExecPath = c.Browser.ExecPath
	if c.Browser.Headless != nil {
		config.Headless = *c.Browser.Headless
	}
	config.UserAgent = c.Browser.UserAgent
	config.LaunchTimeout = orSeconds(c.Browser.LaunchTimeoutSeconds, config.LaunchTimeout)
	config.TypingDelay = orMillis(c.Browser.TypingDelayMillis, config.TypingDelay)
	config.MaxSessions = c.Browser.MaxSessions
	config.LaunchesPerSecond = c.Browser.LaunchesPerSecond
	config.QueueTimeout = orSeconds(c.Browser.QueueTimeoutSeconds, config.QueueTimeout)
	return config
}
