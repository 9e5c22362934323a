package attendance

import (
	"strings"
	"testing"
	"time"

	"attendance-backend/lib/browser/browsertest"
	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/testutil"
)

const testPortalURL = "http://portal.test/"

const dashboardText = `Home
RAVI KUMAR | Change Password
Attendance
S.No
Subject Code
Classes Attended
Total Conducted
Attendance %
1
23HUM102
10
12
83.33
2
VERBAL
2
2
100.0`

type submitBehavior int

const (
	submitSucceeds submitBehavior = iota
	submitRejects
	submitIgnored
	submitNeedsBypass
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.PortalURL = testPortalURL
	opts.Timeouts = Timeouts{
		Navigation:     time.Second,
		FormOpen:       time.Second,
		Submit:         time.Second,
		SubmitFallback: time.Second,
		Capture:        time.Second,
	}
	opts.Settle = SettleOptions{
		Mode:      SettlePoll,
		StableFor: 10 * time.Millisecond,
		Max:       200 * time.Millisecond,
		Interval:  5 * time.Millisecond,
	}
	return opts
}

func showDashboard(p *browsertest.Page, text string) {
	p.Hide("#stuLogin")
	p.Show("#studentName")
	p.CurrentURL = testPortalURL + "studentDashboard"
	p.Texts["body"] = text
	p.Texts["#studentName"] = "RAVI KUMAR"
}

// newPortal scripts a fake page that behaves like the student portal.
func newPortal(behavior submitBehavior, errorText string) *browsertest.Page {
	page := browsertest.NewPage()
	page.Texts["body"] = "Student Login\nFaculty Login"

	page.OnNavigate = func(p *browsertest.Page, url string) {
		if strings.HasPrefix(url, testPortalURL) {
			p.Show("#studentLink")
			p.Present["#studentErrorDiv"] = true
		}
	}
	page.OnClick["#studentLink"] = func(p *browsertest.Page) {
		p.Show("#stuLogin", "#studentForm #inputStuId", "#studentForm #inputPassword", "#studentSubmitButton")
	}
	page.OnClick["#studentSubmitButton"] = func(p *browsertest.Page) {
		switch behavior {
		case submitSucceeds:
			showDashboard(p, dashboardText)
		case submitRejects:
			p.Show("#studentErrorDiv")
			p.Texts["#studentErrorDiv"] = errorText
		}
	}
	page.OnEvaluate = func(p *browsertest.Page, script string) (any, error) {
		if strings.Contains(script, "form.submit()") {
			if behavior == submitNeedsBypass {
				showDashboard(p, dashboardText)
			}
			return true, nil
		}
		return nil, nil
	}
	return page
}

func newPortalDriver(behavior submitBehavior, errorText string) *browsertest.Driver {
	return &browsertest.Driver{
		NewPage: func() *browsertest.Page {
			return newPortal(behavior, errorText)
		},
	}
}

func setupTelemetry(t *testing.T) *telemetry.Recorder {
	t.Cleanup(testutil.SetupService(t, "attendance"))
	return &telemetry.Recorder{}
}
