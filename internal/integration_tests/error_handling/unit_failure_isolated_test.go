package integration_tests

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/rulegridgo/internal/app"
)

// Test for: A failing or panicking unit contributes nothing, and the units
// depending on it still run.
func TestErrorHandling_UnitFailureIsolated(t *testing.T) {
	// --- Arrange ---
	tempDir := writeFiles(t, map[string]string{
		"rules/manifest.hcl": `
			rule "warn" {
				handler    = "OnWarn"
				applies_to = ["Attribute"]
			}
			rule "fail" {
				handler    = "OnFail"
				applies_to = ["Attribute"]
				depends_on = ["warn"]
			}
			rule "explode" {
				handler    = "OnPanic"
				applies_to = ["Attribute"]
			}
			rule "after_failure" {
				handler    = "OnError"
				applies_to = ["Attribute"]
				depends_on = ["fail", "explode"]
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
	testApp, out, logs := app.SetupAppTest(t, appConfig, &mockFaultyModule{})

	// --- Act ---
	runErr := testApp.Run(context.Background())

	// --- Assert ---
	var failed *app.FailedError
	if !errors.As(runErr, &failed) {
		t.Fatalf("expected a FailedError, got: %v", runErr)
	}

	report := out.String()
	if !strings.Contains(report, "1 error(s), 1 warning(s)") {
		t.Errorf("expected exactly the messages of the healthy units, got:\n%s", report)
	}
	if !strings.Contains(report, "ERROR: error from OnError") {
		t.Errorf("expected the dependent of the failed units to run, got:\n%s", report)
	}
	if strings.Contains(report, "partial output that must be discarded") {
		t.Errorf("output of a failed unit leaked into the report:\n%s", report)
	}

	logOutput := logs.String()
	for _, unit := range []string{"unit=fail", "unit=explode"} {
		if !strings.Contains(logOutput, unit) {
			t.Errorf("expected the failure of %s to be logged", unit)
		}
	}
}
