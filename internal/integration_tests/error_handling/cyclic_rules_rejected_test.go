package integration_tests

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/rulegridgo/internal/app"
)

// Test for: Cyclic ordering constraints are a configuration error that names
// both units.
func TestErrorHandling_CyclicRulesRejected(t *testing.T) {
	// --- Arrange ---
	tempDir := writeFiles(t, map[string]string{
		"rules/manifest.hcl": `
			rule "left" {
				handler    = "OnWarn"
				applies_to = ["Attribute"]
				depends_on = ["right"]
			}
			rule "right" {
				handler    = "OnError"
				applies_to = ["Attribute"]
				depends_on = ["left"]
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
	if !strings.Contains(msg, "cycle detected between") {
		t.Errorf("expected a cycle error, got: %s", msg)
	}
	if !strings.Contains(msg, "'left'") || !strings.Contains(msg, "'right'") {
		t.Errorf("expected both units to be named, got: %s", msg)
	}
}
