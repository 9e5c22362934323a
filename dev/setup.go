package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	devenv "attendance-backend/dev/env"
)

func cmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	return cmd.Run()
}

// PullBrowserImage fetches the headless browser image used by the
// integration tests so the first test run doesn't time out on the pull.
func PullBrowserImage() error {
	return cmd("docker", "pull", "chromedp/headless-shell:latest")
}

const portalConfigTemplate = `{
  // fill these in to run the live portal tests, this file is gitignored.
  base_url: "http://mitsims.in/",
  username: "",
  password: "",
  driver: "chromedp",
  remote_url: "",
}
`

func CreatePortalConfigTemplate() error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", "portal_config.json5"))
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("portal config already exists at", path)
		return nil
	}
	fmt.Println("creating portal config template at", path)
	return os.WriteFile(path, []byte(portalConfigTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("live tests read dev/.state/portal_config.json5 and skip when it is missing or empty, look at the result of skipped tests in `go test -v` for details.")
}
