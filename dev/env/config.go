package devenv

// PortalTestConfig is read from dev/.state/portal_config.json5 by the opt-in
// live tests. It never leaves the developer's machine.
type PortalTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Driver selects the browser driver, "chromedp" when empty.
	Driver string `json:"driver"`
	// RemoteUrl points chromedp at an already running browser.
	RemoteUrl string `json:"remote_url"`
}
