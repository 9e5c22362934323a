package commands

import (
	"encoding/json"
	"os"

	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/util/serviceutil"
	"attendance-backend/services/attendance"

	"github.com/spf13/cobra"
)

var fetchJSON bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the report as json instead of a table.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--json]",
	Short: "Logs into the portal and prints your attendance.",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions()
		if err != nil {
			serviceutil.Fatal("failed to load options", err)
		}
		opts.Debug = verbose
		driver, err := loadDriver()
		if err != nil {
			serviceutil.Fatal("failed to create browser driver", err)
		}

		cred, err := promptCredential(os.Stdin, os.Stderr)
		if err != nil {
			serviceutil.Fatal("invalid credentials", err)
		}

		service := attendance.NewService(driver, opts, telemetry.SlogAPI{})
		report, err := service.Fetch(cmd.Context(), cred)
		if err != nil {
			serviceutil.Fatal("failed to fetch attendance", err)
		}

		if fetchJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			err = encoder.Encode(report)
			if err != nil {
				serviceutil.Fatal("failed to encode report", err)
			}
			return
		}
		renderReport(os.Stdout, report, opts.Threshold)
	},
}
