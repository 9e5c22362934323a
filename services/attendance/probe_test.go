package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"attendance-backend/lib/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("user-agent"), "Mozilla")
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	rec := &telemetry.Recorder{}
	probe := NewProbe(server.URL, time.Second, rec)

	require.NoError(t, probe.Check(context.Background()))
	require.True(t, rec.Contains("probe: resty.request"))

	status.Store(http.StatusBadGateway)
	err := probe.Check(context.Background())
	require.ErrorIs(t, err, ErrPortalUnreachable)

	status.Store(http.StatusNotFound)
	require.NoError(t, probe.Check(context.Background()))
}

func TestProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	probe := NewProbe(url, 200*time.Millisecond, &telemetry.Recorder{})
	err := probe.Check(context.Background())
	require.ErrorIs(t, err, ErrPortalUnreachable)
}
