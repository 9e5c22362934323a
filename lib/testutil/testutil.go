package testutil

import (
	"fmt"
	"testing"

	"attendance-backend/lib/telemetry"
)

// SetupService initializes telemetry for the tests of a single service.
// The returned cleanup flushes exporters and should be deferred.
func SetupService(t testing.TB, name string) func() {
	return telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", name))
}
