package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/internal/result"
)

// mockFaultyModule registers handlers that add a fixed message, fail or
// panic.
type mockFaultyModule struct{}

// Register registers the handlers.
func (m *mockFaultyModule) Register(r *registry.Registry) {
	r.RegisterHandler("OnWarn", func(_ context.Context, node entity.Node, res *result.Result) error {
		res.Warnf(node, "warning from OnWarn")
		return nil
	})
	r.RegisterHandler("OnFail", func(_ context.Context, node entity.Node, res *result.Result) error {
		res.Errorf(node, "partial output that must be discarded")
		return errors.New("backing store unavailable")
	})
	r.RegisterHandler("OnPanic", func(context.Context, entity.Node, *result.Result) error {
		panic("unexpected nil map")
	})
	r.RegisterHandler("OnError", func(_ context.Context, node entity.Node, res *result.Result) error {
		res.Errorf(node, "error from OnError")
		return nil
	})
}

// writeFiles writes each file below a fresh temporary directory and returns
// the directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tempDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return tempDir
}

// startupPanic runs fn and returns the text of the error it panicked with.
func startupPanic(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a startup panic, but none occurred")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected the panic value to be an error, got %T: %v", r, r)
		}
		msg = err.Error()
	}()
	fn()
	return ""
}

const documentHCL = `
	attribute "subject" {
		lower_bound = 0
		upper_bound = 1
	}
`
