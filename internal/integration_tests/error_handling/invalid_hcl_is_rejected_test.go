package integration_tests

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/rulegridgo/internal/app"
)

// Test for: Syntactically invalid documents are rejected at startup.
func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	// --- Arrange ---
	tempDir := writeFiles(t, map[string]string{
		"docs/main.hcl": `
			attribute "subject" {
				lower_bound = 0
		`,
	})
	appConfig, err := app.NewConfig(app.Config{
		DocumentPaths: []string{filepath.Join(tempDir, "docs")},
	})
	if err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	// --- Act ---
	msg := startupPanic(t, func() { app.SetupAppTest(t, appConfig, &mockFaultyModule{}) })

	// --- Assert ---
	if !strings.Contains(msg, "failed to parse HCL file") {
		t.Errorf("expected a parse error, got: %s", msg)
	}
}
