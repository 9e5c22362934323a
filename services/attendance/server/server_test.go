package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/testutil"
	"attendance-backend/services/attendance"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	report attendance.Report
	err    error
	calls  []attendance.Credential
}

func (f *fakeFetcher) Fetch(ctx context.Context, cred attendance.Credential) (attendance.Report, error) {
	f.calls = append(f.calls, cred)
	if f.err != nil {
		return attendance.Report{}, f.err
	}
	return f.report, nil
}

type fakeProber struct {
	err error
}

func (p fakeProber) Check(ctx context.Context) error {
	return p.err
}

func setup(t *testing.T, fetcher Fetcher, prober Prober) (http.Handler, *telemetry.Recorder) {
	t.Cleanup(testutil.SetupService(t, "attendance_server"))
	gin.SetMode(gin.TestMode)
	rec := &telemetry.Recorder{}
	return NewServer(fetcher, prober, Options{}, rec).Handler(), rec
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decode[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	var out T
	err := json.Unmarshal(res.Body.Bytes(), &out)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestAttendance(t *testing.T) {
	fetcher := &fakeFetcher{report: attendance.Report{
		StudentName: "RAVI KUMAR",
		Records: []attendance.Record{
			{Subject: "23HUM102", Attended: 10, Conducted: 12, Percentage: 83.33},
			{Subject: "23MAT101", Attended: 5, Conducted: 10, Percentage: 50},
		},
	}}
	handler, _ := setup(t, fetcher, nil)

	res := post(t, handler, `{"username": "23691A0501", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, []attendance.Credential{{Identifier: "23691A0501", Secret: "hunter2"}}, fetcher.calls)

	expected := fetchResponse{
		Message:     "Success",
		StudentName: "RAVI KUMAR",
		Data: []subjectResponse{
			{Code: "23HUM102", Attended: 10, Total: 12, Percentage: 83.33, Status: attendance.StatusSafe, Margin: 1},
			{Code: "23MAT101", Attended: 5, Total: 10, Percentage: 50, Status: attendance.StatusCritical, Margin: -10},
		},
		AggregatePercentage: 68.18,
		AggregateStatus:     attendance.StatusWarning,
		AggregateMargin:     -6,
		TotalAttended:       15,
		TotalConducted:      22,
	}
	if diff := cmp.Diff(expected, decode[fetchResponse](t, res)); diff != "" {
		t.Fatal(diff)
	}
	require.NotContains(t, res.Body.String(), "debug_text")
}

func TestAttendanceEmptyData(t *testing.T) {
	fetcher := &fakeFetcher{report: attendance.Report{
		StudentName: attendance.PlaceholderName,
		Records:     []attendance.Record{},
		DebugText:   "Home\nWelcome",
	}}
	handler, _ := setup(t, fetcher, nil)

	res := post(t, handler, `{"username": "23691A0501", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"data":[]`)
	require.Contains(t, res.Body.String(), `"aggregate_percentage":0`)
	require.Equal(t, "Home\nWelcome", decode[fetchResponse](t, res).DebugText)
}

func TestAttendanceMissingInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	handler, _ := setup(t, fetcher, nil)

	for _, body := range []string{
		`{}`,
		`{"username": "23691A0501"}`,
		`{"password": "hunter2"}`,
		`not json`,
	} {
		res := post(t, handler, body)
		require.Equal(t, http.StatusBadRequest, res.Code, body)
		require.Equal(t, "Username and password are required", decode[errorResponse](t, res).Error)
	}
	require.Empty(t, fetcher.calls)
}

func TestAttendanceErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
		broken  bool
	}{
		{
			name:    "invalid credentials",
			err:     &attendance.Error{Kind: attendance.ErrAuthenticationFailed, Message: attendance.MessageInvalidCredentials},
			status:  http.StatusUnauthorized,
			message: attendance.MessageInvalidCredentials,
		},
		{
			name:    "raw login error",
			err:     &attendance.Error{Kind: attendance.ErrAuthenticationFailed, Message: "Login Error: Fee dues pending"},
			status:  http.StatusUnauthorized,
			message: "Login Error: Fee dues pending",
		},
		{
			name:    "unreachable",
			err:     &attendance.Error{Kind: attendance.ErrPortalUnreachable, Message: attendance.MessagePortalUnreachable},
			status:  http.StatusGatewayTimeout,
			message: attendance.MessagePortalUnreachable,
		},
		{
			name:    "timeout",
			err:     &attendance.Error{Kind: attendance.ErrSequenceTimeout, Message: attendance.MessageTimeout},
			status:  http.StatusGatewayTimeout,
			message: attendance.MessageTimeout,
		},
		{
			name: "unclassified",
			err: &attendance.Error{
				Kind:    attendance.ErrUnclassified,
				Message: attendance.MessageUnclassified,
				Cause:   errors.New("websocket: close 1006 at /tmp/chromedp-runner"),
			},
			status:  http.StatusInternalServerError,
			message: attendance.MessageUnclassified,
			broken:  true,
		},
		{
			name:    "untyped",
			err:     errors.New("something internal"),
			status:  http.StatusInternalServerError,
			message: attendance.MessageUnclassified,
			broken:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, rec := setup(t, &fakeFetcher{err: tc.err}, nil)

			res := post(t, handler, `{"username": "23691A0501", "password": "hunter2"}`)
			require.Equal(t, tc.status, res.Code)
			require.Equal(t, tc.message, decode[errorResponse](t, res).Error)
			require.NotContains(t, res.Body.String(), "chromedp")
			require.Equal(t, tc.broken, len(rec.Broken()) > 0)
		})
	}
}

func TestHealth(t *testing.T) {
	get := func(handler http.Handler, target string) *httptest.ResponseRecorder {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, target, nil))
		return res
	}

	handler, _ := setup(t, &fakeFetcher{}, nil)
	require.Equal(t, http.StatusOK, get(handler, "/healthz").Code)
	require.Equal(t, http.StatusOK, get(handler, "/healthz?probe=1").Code)

	handler, _ = setup(t, &fakeFetcher{}, fakeProber{})
	require.Equal(t, http.StatusOK, get(handler, "/healthz?probe=1").Code)

	handler, rec := setup(t, &fakeFetcher{}, fakeProber{err: attendance.ErrPortalUnreachable})
	require.Equal(t, http.StatusOK, get(handler, "/healthz").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(handler, "/healthz?probe=1").Code)
	require.Len(t, rec.Reports(), 1)
}

func TestHTTPStatusWrapped(t *testing.T) {
	err := &attendance.Error{Kind: attendance.ErrInputValidation, Message: "Username and password are required"}
	require.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	require.Equal(t, "Username and password are required", PublicMessage(err))
	require.Equal(t, http.StatusOK, HTTPStatus(nil))
}
