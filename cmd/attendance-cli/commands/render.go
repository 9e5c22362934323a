package commands

import (
	"fmt"
	"io"
	"math"

	"attendance-backend/services/attendance"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	safeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	nameStyle     = lipgloss.NewStyle().Bold(true)
)

func statusStyle(status attendance.Status) lipgloss.Style {
	switch status {
	case attendance.StatusSafe:
		return safeStyle
	case attendance.StatusWarning:
		return warningStyle
	}
	return criticalStyle
}

func describeMargin(margin int) string {
	switch {
	case margin == math.MaxInt32:
		return "-"
	case margin == math.MinInt32:
		return "cannot reach"
	case margin > 0:
		return fmt.Sprintf("can miss %d", margin)
	case margin < 0:
		return fmt.Sprintf("attend %d more", -margin)
	}
	return "on the edge"
}

func renderReport(w io.Writer, report attendance.Report, threshold float64) {
	fmt.Fprintln(w, nameStyle.Render(report.StudentName))

	if len(report.Records) == 0 {
		fmt.Fprintln(w, "No attendance records found.")
		if report.DebugText != "" {
			fmt.Fprintln(w, "\nCaptured text:")
			fmt.Fprintln(w, report.DebugText)
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Subject", "Attended", "Conducted", "%", "Status", fmt.Sprintf("Margin (%.0f%%)", threshold)})
	for i, record := range report.Records {
		status := attendance.StatusOf(record.Percentage)
		margin := attendance.Margin(record.Attended, record.Conducted, threshold)
		t.AppendRow(table.Row{
			i + 1,
			record.Subject,
			record.Attended,
			record.Conducted,
			fmt.Sprintf("%.2f", record.Percentage),
			statusStyle(status).Render(string(status)),
			describeMargin(margin),
		})
	}

	aggregate := report.Aggregate()
	overall := attendance.StatusOf(aggregate)
	t.AppendFooter(table.Row{
		"",
		"Overall",
		report.TotalAttended(),
		report.TotalConducted(),
		fmt.Sprintf("%.2f", aggregate),
		statusStyle(overall).Render(string(overall)),
		describeMargin(attendance.Margin(report.TotalAttended(), report.TotalConducted(), threshold)),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
