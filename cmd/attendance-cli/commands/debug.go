package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/util/serviceutil"
	"attendance-backend/services/attendance"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(debugCmd)
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Logs in and prints what the browser saw, for fixing selectors or the parser. Nothing is written to disk.",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions()
		if err != nil {
			serviceutil.Fatal("failed to load options", err)
		}
		driver, err := loadDriver()
		if err != nil {
			serviceutil.Fatal("failed to create browser driver", err)
		}
		cred, err := promptCredential(os.Stdin, os.Stderr)
		if err != nil {
			serviceutil.Fatal("invalid credentials", err)
		}

		err = debugLogin(context.WithoutCancel(cmd.Context()), os.Stdout, driver, opts, cred)
		if err != nil {
			serviceutil.Fatal("debug login failed", err)
		}
	},
}

func debugLogin(ctx context.Context, out io.Writer, driver browser.Driver, opts attendance.Options, cred attendance.Credential) error {
	sequencer := attendance.NewSequencer(opts, telemetry.SlogAPI{})

	return browser.WithSession(ctx, driver, func(session browser.Session) error {
		start := time.Now()
		outcome, err := sequencer.Login(ctx, session, cred)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "outcome: %s %s (%s)\n", outcome.Kind, outcome.Message, time.Since(start).Round(time.Millisecond))

		signals := sequencer.Signals(ctx, session)
		fmt.Fprintf(out, "url: %s\n", signals.URL)
		fmt.Fprintf(out, "dashboard visible: %t\n", signals.DashboardVisible)
		fmt.Fprintf(out, "error visible: %t %q\n", signals.ErrorVisible, signals.ErrorText)
		if outcome.Kind != attendance.OutcomeSuccess {
			return nil
		}

		capture, err := sequencer.Capture(ctx, session)
		if err != nil {
			return err
		}
		records := attendance.ParseText(capture.Text, opts.Parser)
		fmt.Fprintf(out, "header: %q\n", capture.Header)
		fmt.Fprintf(out, "records parsed: %d\n", len(records))
		fmt.Fprintln(out, "---- captured text ----")
		fmt.Fprintln(out, capture.Text)
		return nil
	})
}
