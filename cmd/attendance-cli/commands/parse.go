package commands

import (
	"io"
	"os"

	"attendance-backend/lib/util/serviceutil"
	"attendance-backend/services/attendance"

	"github.com/spf13/cobra"
)

var (
	parseLookahead int
	parseOrder     string
)

func init() {
	parseCmd.Flags().IntVar(&parseLookahead, "lookahead", 0, "Lines searched for numbers after a heading, the config value when 0.")
	parseCmd.Flags().StringVar(&parseOrder, "order", "", "Numeric order, ex. \"conducted,attended,percentage\".")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [path/to/dump.txt]",
	Short: "Runs the attendance parser on a dashboard text dump, stdin when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions()
		if err != nil {
			serviceutil.Fatal("failed to load options", err)
		}
		if parseLookahead > 0 {
			opts.Parser.Lookahead = parseLookahead
		}
		if parseOrder != "" {
			opts.Parser.NumericOrder, err = attendance.ParseNumericOrder(parseOrder)
			if err != nil {
				serviceutil.Fatal("invalid --order", err)
			}
		}

		var input io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				serviceutil.Fatal("failed to open dump", err)
			}
			defer f.Close()
			input = f
		}
		contents, err := io.ReadAll(input)
		if err != nil {
			serviceutil.Fatal("failed to read dump", err)
		}

		report := parseDump(string(contents), opts.Parser)
		renderReport(os.Stdout, report, opts.Threshold)
	},
}

func parseDump(text string, opts attendance.ParserOptions) attendance.Report {
	return attendance.Report{
		StudentName: attendance.ExtractStudentName(text),
		Records:     attendance.ParseText(text, opts),
	}
}
