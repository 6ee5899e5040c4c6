package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/gate"
	"github.com/vk/rulegridgo/internal/rule"
	"github.com/vk/rulegridgo/internal/testutil"
)

const documentHCL = `
atomic_data_type "count" {
  base_type = number
}

attribute "good" {
  data_type   = "count"
  lower_bound = 0
  upper_bound = 3
}

attribute "broken" {
  data_type   = "count"
  lower_bound = 2
  upper_bound = 1
}
`

func documents(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutil.WriteFiles(t, files)
}

func TestApp_Run_ReportsFailures(t *testing.T) {
	// --- Arrange ---
	root := documents(t, map[string]string{"model.hcl": documentHCL})
	cfg, err := NewConfig(Config{DocumentPaths: []string{root}})
	require.NoError(t, err)
	a, out, logs := SetupAppTest(t, cfg)

	// --- Act ---
	runErr := a.Run(context.Background())

	// --- Assert ---
	var failed *FailedError
	require.ErrorAs(t, runErr, &failed)
	assert.Equal(t, 1, failed.Failed)
	assert.Equal(t, 3, failed.Total)
	assert.Equal(t, gate.Strict, failed.Policy)

	assert.Contains(t, out.String(), "FAIL Attribute broken (VALIDATE, STRICT): 1 error(s), 0 warning(s), 0 info(s)\n"+
		"  ERROR: upper bound must be greater than or equal to the lower bound [broken]\n")
	assert.Contains(t, out.String(), "PASS AtomicDataType count (VALIDATE, STRICT)")
	assert.Contains(t, out.String(), "PASS Attribute good (VALIDATE, STRICT)")
	assert.NotContains(t, out.String(), "level=", "logs must not leak into the report output")
	assert.Contains(t, logs.String(), "Validation finished.")
}

func TestApp_Run_SelectedEntities(t *testing.T) {
	root := documents(t, map[string]string{"model.hcl": documentHCL})

	t.Run("passing entity", func(t *testing.T) {
		cfg, err := NewConfig(Config{DocumentPaths: []string{root}, Entities: []string{"good"}, Output: "yaml"})
		require.NoError(t, err)
		a, out, _ := SetupAppTest(t, cfg)

		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "entity: good")
		assert.Contains(t, out.String(), "passed: true")
		assert.NotContains(t, out.String(), "broken")
	})

	t.Run("unknown entity", func(t *testing.T) {
		cfg, err := NewConfig(Config{DocumentPaths: []string{root}, Entities: []string{"ghost"}})
		require.NoError(t, err)
		a, _, _ := SetupAppTest(t, cfg)

		assert.EqualError(t, a.Run(context.Background()), "entity 'ghost' not found in the loaded documents")
	})
}

func TestApp_Run_LaxPolicyIgnoresWarnings(t *testing.T) {
	root := documents(t, map[string]string{"model.hcl": `
attribute "untyped" {
  upper_bound = 1
}
`})
	cfg, err := NewConfig(Config{DocumentPaths: []string{root}, Policy: "lax"})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "PASS Attribute untyped (VALIDATE, LAX): 0 error(s), 1 warning(s), 0 info(s)")
}

func TestApp_RuleGraphArtifactRoundTrip(t *testing.T) {
	// --- Arrange ---
	root := documents(t, map[string]string{"model.hcl": documentHCL})
	artifact := filepath.Join(t.TempDir(), "rulegraph.yaml")

	emitCfg, err := NewConfig(Config{EmitRuleGraph: artifact})
	require.NoError(t, err)
	emitter, _, _ := SetupAppTest(t, emitCfg)

	// --- Act ---
	require.NoError(t, emitter.Run(context.Background()))
	loadCfg, err := NewConfig(Config{DocumentPaths: []string{root}, RuleGraphPath: artifact})
	require.NoError(t, err)
	loaded, out, _ := SetupAppTest(t, loadCfg)
	runErr := loaded.Run(context.Background())

	// --- Assert ---
	raw, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "version: 1")
	assert.True(t, emitter.graph.Equal(loaded.graph), "a decoded artifact must yield the built ordering")
	assert.Equal(t, []string{"type_profile_attributes", "type_profile_policy"}, loaded.graph.Order(rule.TaskValidate, entity.VariantTypeProfile))
	require.Error(t, runErr)
	assert.Contains(t, out.String(), "FAIL Attribute broken")
}

func TestApp_EmitRuleGraphToOutput(t *testing.T) {
	cfg, err := NewConfig(Config{EmitRuleGraph: "-"})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "version: 1")
	assert.Contains(t, out.String(), "- attribute_structure\n")
	assert.Contains(t, out.String(), "- attribute_data_type\n")
}

func TestNewApp_PanicsOnStartupErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "unknown reference",
			files: map[string]string{"model.hcl": `attribute "a" { data_type = "missing" }`},
			want:  "failed to load configuration",
		},
		{
			name: "manifest without go handler",
			files: map[string]string{"rules.hcl": `
rule "ghost_rule" {
  handler    = "OnGhost"
  applies_to = ["Attribute"]
}
`},
			want: "manifest names handler 'OnGhost' which is not registered in Go",
		},
		{
			name: "cyclic rule ordering",
			files: map[string]string{"rules.hcl": `
rule "extra" {
  handler        = "OnAttributeStructure"
  applies_to     = ["Attribute"]
  depends_on     = ["attribute_data_type"]
  execute_before = ["attribute_structure"]
}
`},
			want: "cycle detected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := documents(t, tt.files)
			cfg, err := NewConfig(Config{DocumentPaths: []string{root}})
			require.NoError(t, err)

			defer func() {
				r := recover()
				require.NotNil(t, r, "NewApp should panic")
				err, ok := r.(error)
				require.True(t, ok, "panic value should be an error, got %T", r)
				assert.Contains(t, err.Error(), tt.want)
			}()
			SetupAppTest(t, cfg)
		})
	}
}

func TestNewApp_RejectsStaleRuleGraphArtifact(t *testing.T) {
	// --- Arrange ---
	root := documents(t, map[string]string{"model.hcl": documentHCL})
	artifact := filepath.Join(t.TempDir(), "rulegraph.yaml")
	stale := "version: 1\ntasks:\n  VALIDATE:\n    Attribute: [attribute_structure, type_profile_policy]\n"
	require.NoError(t, os.WriteFile(artifact, []byte(stale), 0o644))
	cfg, err := NewConfig(Config{DocumentPaths: []string{root}, RuleGraphPath: artifact})
	require.NoError(t, err)

	// --- Act & Assert ---
	defer func() {
		r := recover()
		require.NotNil(t, r, "NewApp should panic on a stale artifact")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.Contains(t, err.Error(), "is missing rule unit 'attribute_data_type'")
		assert.Contains(t, err.Error(), "lists rule unit 'type_profile_policy' which does not target it")
	}()
	SetupAppTest(t, cfg)
}

func TestApp_HealthAndMetricsEndpoints(t *testing.T) {
	// --- Arrange ---
	root := documents(t, map[string]string{"model.hcl": documentHCL})
	cfg, err := NewConfig(Config{DocumentPaths: []string{root}, Entities: []string{"good"}, UnitTimeout: time.Second})
	require.NoError(t, err)
	a, _, _ := SetupAppTest(t, cfg)
	require.NoError(t, a.Run(context.Background()))
	srv := httptest.NewServer(a.newHealthMux())
	defer srv.Close()

	// --- Act ---
	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()

	// --- Assert ---
	assert.Equal(t, http.StatusOK, health.StatusCode)
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rulegrid_unit_executions_total{outcome="ok",unit="attribute_structure"} 1`)
	assert.Contains(t, string(body), `rulegrid_process_total{task="VALIDATE",variant="Attribute"} 1`)
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{DocumentPaths: []string{"docs"}, Task: " validate ", Policy: "lax", Output: "YAML"})
	require.NoError(t, err)
	assert.Equal(t, "VALIDATE", cfg.Task)
	assert.Equal(t, "LAX", cfg.Policy)
	assert.Equal(t, OutputYAML, cfg.Output)

	defaults, err := NewConfig(Config{DocumentPaths: []string{"docs"}})
	require.NoError(t, err)
	assert.Equal(t, "STRICT", defaults.Policy)
	assert.Equal(t, OutputText, defaults.Output)

	invalid := []Config{
		{},
		{DocumentPaths: []string{"docs"}, Policy: "sometimes"},
		{DocumentPaths: []string{"docs"}, Output: "xml"},
		{DocumentPaths: []string{"docs"}, Task: "   "},
		{DocumentPaths: []string{"docs"}, WorkerCount: -1},
		{DocumentPaths: []string{"docs"}, UnitTimeout: -time.Second},
		{RuleGraphPath: "a.yaml", EmitRuleGraph: "b.yaml"},
	}
	for _, c := range invalid {
		_, err := NewConfig(c)
		assert.Error(t, err, "config %+v should be rejected", c)
	}
}
