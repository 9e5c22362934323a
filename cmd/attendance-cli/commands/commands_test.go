package commands

import (
	"bytes"
	"context"
	"testing"

	"attendance-backend/lib/browser/browsertest"
	"attendance-backend/services/attendance"

	"github.com/stretchr/testify/require"
)

func TestParseDump(t *testing.T) {
	dump := "Home\nRAVI KUMAR | Change Password\nSubject Code\n23HUM102\n12\n10\n83.33\nVERBAL\n2\n2\n100.0"

	report := parseDump(dump, attendance.ParserOptions{
		Lookahead:    5,
		NumericOrder: attendance.OrderConductedAttended,
	})
	require.Equal(t, "RAVI KUMAR", report.StudentName)
	require.Equal(t, []attendance.Record{
		{Subject: "23HUM102", Attended: 10, Conducted: 12, Percentage: 83.33},
		{Subject: "VERBAL", Attended: 2, Conducted: 2, Percentage: 100},
	}, report.Records)
}

func TestDebugLoginBlankPage(t *testing.T) {
	opts := attendance.DefaultOptions()
	opts.PortalURL = "http://portal.test/"
	driver := &browsertest.Driver{}

	var out bytes.Buffer
	err := debugLogin(context.Background(), &out, driver, opts, attendance.Credential{Identifier: "a", Secret: "b"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "outcome: timeout")
	require.Contains(t, out.String(), "url: http://portal.test/")
	require.Equal(t, 1, driver.Closed())
}
