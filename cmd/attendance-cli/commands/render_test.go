package commands

import (
	"bytes"
	"math"
	"testing"

	"attendance-backend/services/attendance"

	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	report := attendance.Report{
		StudentName: "RAVI KUMAR",
		Records: []attendance.Record{
			{Subject: "23HUM102", Attended: 10, Conducted: 12, Percentage: 83.33},
			{Subject: "CLOUD COMPUTING", Attended: 5, Conducted: 10, Percentage: 50},
		},
	}

	var out bytes.Buffer
	renderReport(&out, report, attendance.DefaultThreshold)
	rendered := out.String()

	require.Contains(t, rendered, "RAVI KUMAR")
	for _, expected := range []string{
		"23HUM102",
		"CLOUD COMPUTING",
		"83.33",
		"can miss 1",
		"attend 10 more",
		"OVERALL",
		"68.18",
		"MARGIN (75%)",
	} {
		require.Contains(t, rendered, expected)
	}
}

func TestRenderEmptyReport(t *testing.T) {
	var out bytes.Buffer
	renderReport(&out, attendance.Report{
		StudentName: attendance.PlaceholderName,
		Records:     []attendance.Record{},
		DebugText:   "Home\nWelcome",
	}, attendance.DefaultThreshold)

	require.Contains(t, out.String(), "No attendance records found.")
	require.Contains(t, out.String(), "Home\nWelcome")
}

func TestDescribeMargin(t *testing.T) {
	require.Equal(t, "can miss 3", describeMargin(3))
	require.Equal(t, "attend 2 more", describeMargin(-2))
	require.Equal(t, "on the edge", describeMargin(0))
	require.Equal(t, "cannot reach", describeMargin(math.MinInt32))
	require.Equal(t, "-", describeMargin(math.MaxInt32))
}
