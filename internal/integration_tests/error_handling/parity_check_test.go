package integration_tests

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/rulegridgo/internal/app"
)

// Test for: A manifest naming a handler that no Go module registers stops
// the application at startup.
func TestErrorHandling_ParityCheck(t *testing.T) {
	// --- Arrange ---
	tempDir := writeFiles(t, map[string]string{
		"rules/manifest.hcl": `
			rule "ghost" {
				handler    = "OnGhost"
				applies_to = ["Attribute"]
			}
		`,
		"docs/main.hcl": documentHCL,
	})
	appConfig, err := app.NewConfig(app.Config{
		DocumentPaths: []string{filepath.Join(tempDir, "docs")},
		RulesPath:     filepath.Join(tempDir, "rules"),
	})
	if err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	// --- Act ---
	msg := startupPanic(t, func() { app.SetupAppTest(t, appConfig, &mockFaultyModule{}) })

	// --- Assert ---
	if !strings.Contains(msg, "registry validation failed") {
		t.Errorf("expected a registry validation error, got: %s", msg)
	}
	if !strings.Contains(msg, "manifest names handler 'OnGhost' which is not registered in Go") {
		t.Errorf("expected the missing handler to be named, got: %s", msg)
	}
}
