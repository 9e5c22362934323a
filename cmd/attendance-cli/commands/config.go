package commands

import (
	"fmt"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/configutil"
	"attendance-backend/services/attendance"
)

func loadConfig() (attendance.Config, error) {
	return configutil.ReadOptional[attendance.Config](configPath)
}

func loadOptions() (attendance.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return attendance.Options{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.Options()
}

func loadDriver() (browser.Driver, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.Browser.Install {
		err = browser.EnsureInstalled()
		if err != nil {
			return nil, err
		}
	}
	return browser.NewDriver(cfg.BrowserConfig())
}
