package integration_tests

import (
	"context"
	"testing"
	"time"

	"github.com/vk/rulegridgo/internal/app"
)

// Test for: Fan-in synchronization waits for all parallel units.
func TestDagConcurrency_FanInSynchronization(t *testing.T) {
	// --- Arrange ---
	manifestHCL := `
		rule "A" {
			handler    = "OnSleepA"
			applies_to = ["Attribute"]
		}
		rule "B" {
			handler    = "OnSleepB"
			applies_to = ["Attribute"]
		}
		rule "C" {
			handler    = "OnSleepC"
			applies_to = ["Attribute"]
		}
		rule "D" {
			handler    = "OnSleepD"
			applies_to = ["Attribute"]
			depends_on = ["A", "B", "C"]
		}
	`
	rulesPath, documentPath := writeFixture(t, manifestHCL)
	appConfig, err := app.NewConfig(app.Config{
		DocumentPaths: []string{documentPath},
		RulesPath:     rulesPath,
		WorkerCount:   4,
	})
	if err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	mockModule := newSleeperModule(100*time.Millisecond, "A", "B", "C", "D")
	testApp, _, _ := app.SetupAppTest(t, appConfig, mockModule)

	// --- Act ---
	runErr := testApp.Run(context.Background())
	if runErr != nil {
		t.Fatalf("app.Run() returned an unexpected error: %v", runErr)
	}

	// --- Assert ---
	records := mockModule.records()
	if len(records) != 4 {
		t.Fatalf("expected 4 executions, got %d", len(records))
	}
	latestPrereqEndTime := records["A"].End
	if records["B"].End.After(latestPrereqEndTime) {
		latestPrereqEndTime = records["B"].End
	}
	if records["C"].End.After(latestPrereqEndTime) {
		latestPrereqEndTime = records["C"].End
	}

	if records["D"].Start.Before(latestPrereqEndTime) {
		t.Errorf("fan-in synchronization failed: unit D started before all prerequisites were complete")
	}
}
