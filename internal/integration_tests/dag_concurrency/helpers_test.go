package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/testutil"
)

// mockSleeperModule registers one sleeping handler per unit name, named
// "OnSleep<name>". The manifests are discovered from files.
type mockSleeperModule struct {
	names          []string
	severity       result.Severity
	executionTimes map[string]*testutil.ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
}

func newSleeperModule(sleep time.Duration, names ...string) *mockSleeperModule {
	return &mockSleeperModule{
		names:          names,
		severity:       result.Info,
		executionTimes: make(map[string]*testutil.ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Register registers the sleeper handlers.
func (m *mockSleeperModule) Register(r *registry.Registry) {
	for _, name := range m.names {
		r.RegisterHandler("OnSleep"+name, func(_ context.Context, node entity.Node, res *result.Result) error {
			startTime := time.Now()
			time.Sleep(m.sleepDuration)
			endTime := time.Now()

			m.mu.Lock()
			m.executionTimes[name] = &testutil.ExecutionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()

			res.Add(m.severity, name+" done", node)
			return nil
		})
	}
}

func (m *mockSleeperModule) records() map[string]*testutil.ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executionTimes
}

// writeFixture writes the rule manifest and a document holding a single
// attribute, and returns the rules directory and the document path.
func writeFixture(t *testing.T, manifestHCL string) (string, string) {
	t.Helper()
	tempDir := t.TempDir()

	rulesDir := filepath.Join(tempDir, "rules")
	if err := os.MkdirAll(rulesDir, 0755); err != nil {
		t.Fatalf("failed to create rules directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rulesDir, "manifest.hcl"), []byte(manifestHCL), 0600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	documentHCL := `
		attribute "subject" {
			lower_bound = 0
			upper_bound = 1
		}
	`
	documentPath := filepath.Join(tempDir, "main.hcl")
	if err := os.WriteFile(documentPath, []byte(documentHCL), 0600); err != nil {
		t.Fatalf("failed to write hcl file: %v", err)
	}
	return rulesDir, documentPath
}
