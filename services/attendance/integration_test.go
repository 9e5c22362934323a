package attendance

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"testing"
	"time"

	"attendance-backend/lib/browser"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// fakePortal mimics the student portal closely enough to exercise a real
// browser: the login form opens from a link, a wrong password shows the
// error box and the dashboard rows render a moment after login.
const fakePortal = `<!doctype html>
<html><body>
<a id="studentLink" href="#" onclick="document.getElementById('stuLogin').style.display='block'; return false;">Student Login</a>
<div id="stuLogin" style="display:none">
	<form id="studentForm" onsubmit="return false;">
		<input id="inputStuId">
		<input id="inputPassword" type="password">
		<button id="studentSubmitButton" type="button" onclick="login()">Login</button>
	</form>
	<div id="studentErrorDiv" style="display:none"></div>
</div>
<div id="dashboard" style="display:none">
	<div><span id="studentName">RAVI KUMAR</span> | Change Password</div>
	<pre id="rows"></pre>
</div>
<script>
function login() {
	if (document.getElementById('inputPassword').value !== 'hunter2') {
		const box = document.getElementById('studentErrorDiv');
		box.textContent = 'Invalid Username or Password';
		box.style.display = 'block';
		return;
	}
	document.getElementById('stuLogin').style.display = 'none';
	document.getElementById('dashboard').style.display = 'block';
	setTimeout(() => {
		document.getElementById('rows').textContent = '23HUM102\n10\n12\n83.33\nVERBAL\n2\n2\n100.0';
	}, 300);
}
</script>
</body></html>`

func setupHeadlessShell(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping browser container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	shell, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "chromedp/headless-shell:latest",
				ExposedPorts: []string{"9222/tcp"},
				WaitingFor:   wait.ForListeningPort("9222/tcp"),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		err := shell.Terminate(context.Background())
		if err != nil {
			t.Error(err)
		}
	})

	host, err := shell.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := shell.MappedPort(ctx, "9222/tcp")
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("ws://%s:%s", host, port.Port())
}

func TestFetchHeadlessShell(t *testing.T) {
	remote := setupHeadlessShell(t)
	rec := setupTelemetry(t)

	config := browser.DefaultConfig()
	config.RemoteURL = remote
	config.TypingDelay = 0
	driver, err := browser.NewDriver(config)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.PortalURL = "data:text/html," + url.PathEscape(fakePortal)
	opts.Timeouts.Submit = 3 * time.Second
	opts.Timeouts.SubmitFallback = 3 * time.Second
	service := NewService(driver, opts, rec)

	report, err := service.Fetch(context.Background(), testCredential)
	require.NoError(t, err)
	require.Equal(t, "RAVI KUMAR", report.StudentName)
	require.Equal(t, []Record{
		{Subject: "23HUM102", Attended: 10, Conducted: 12, Percentage: 83.33},
		{Subject: "VERBAL", Attended: 2, Conducted: 2, Percentage: 100},
	}, report.Records)

	_, err = service.Fetch(context.Background(), Credential{Identifier: "23691A0501", Secret: "wrong"})
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.False(t, rec.Contains("hunter2"))
}
