package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/rulegridgo/internal/app"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL syntax error makes app.NewApp panic during loading.
	invalidHCL := `
		attribute "a" {
			lower_bound = 1
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked", "The error message should indicate that a panic was recovered.")
	require.Contains(t, runErr.Error(), "failed to parse", "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ValidationFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "model.hcl")
	err := os.WriteFile(filePath, []byte(`
attribute "inverted" {
  data_type   = "text"
  lower_bound = 3
  upper_bound = 1
}

atomic_data_type "text" {
  base_type = string
}
`), 0600)
	require.NoError(t, err)
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, &bytes.Buffer{}, []string{"--log-level", "warn", filePath})

	// --- Assert ---
	var failed *app.FailedError
	require.ErrorAs(t, runErr, &failed)
	require.Equal(t, 1, failed.Failed)
	require.Contains(t, out.String(), "FAIL Attribute inverted")
	require.Contains(t, out.String(), "PASS AtomicDataType text")
}
