package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/vk/rulegridgo/internal/hcl_adapter"
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Reports go to
// the returned bytes.Buffer, debug logs to the SafeBuffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(out, logBuffer, cfg, hcl_adapter.NewLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv("RULEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
