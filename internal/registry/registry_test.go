package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/rule"
	"github.com/vk/rulegridgo/internal/testutil"
)

func noop(context.Context, entity.Node, *result.Result) error { return nil }

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterHandler("OnCardinality", noop)
	r.RegisterHandler("OnOverride", noop)
}

func (testModule) Manifest() (string, []byte) {
	return "modules/test/manifest.hcl", []byte(`rule "cardinality" {}`)
}

type bareModule struct{}

func (bareModule) Register(*Registry) {}

func definitions(defs ...*config.RuleDefinition) *config.Model {
	m := config.NewModel()
	for _, d := range defs {
		if d.Source == "" {
			d.Source = "manifest.hcl:1"
		}
		m.Rules[d.Name] = d
	}
	return m
}

func TestRegisterHandler_PanicsOnDuplicate(t *testing.T) {
	r := New()
	r.RegisterHandler("OnCardinality", noop)

	assert.PanicsWithValue(t, "rule handler with name 'OnCardinality' already registered", func() {
		r.RegisterHandler("OnCardinality", noop)
	})
	assert.Panics(t, func() { r.RegisterHandler("OnNil", nil) })
}

func TestManifests(t *testing.T) {
	sources := Manifests(testModule{}, bareModule{})

	require.Len(t, sources, 1)
	assert.Contains(t, string(sources["modules/test/manifest.hcl"]), "cardinality")
}

func TestValidateRegistry(t *testing.T) {
	valid := func() []*config.RuleDefinition {
		return []*config.RuleDefinition{
			{Name: "cardinality", Handler: "OnCardinality", AppliesTo: []string{"Attribute"}, Tasks: []string{"VALIDATE"}},
			{Name: "override", Handler: "OnOverride", AppliesTo: []string{"attribute"}, Tasks: []string{"validate"}, DependsOn: []string{"cardinality"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(defs []*config.RuleDefinition)
		wantErr string
	}{
		{"parity holds", func([]*config.RuleDefinition) {}, ""},
		{"missing go handler", func(d []*config.RuleDefinition) { d[0].Handler = "OnMissing" }, "manifest names handler 'OnMissing' which is not registered in Go"},
		{"unknown variant", func(d []*config.RuleDefinition) { d[0].AppliesTo = []string{"Widget"} }, `unknown entity variant "Widget"`},
		{"abstract variant", func(d []*config.RuleDefinition) { d[0].AppliesTo = []string{"DataType"} }, "targets abstract variant DataType"},
		{"dangling reference", func(d []*config.RuleDefinition) { d[1].ExecuteBefore = []string{"ghost"} }, "references rule 'ghost' which is not declared"},
		{"empty task", func(d []*config.RuleDefinition) { d[1].Tasks = []string{" "} }, "task name must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// --- Arrange ---
			ctx, _ := testutil.LogContext(t)
			r := New()
			testModule{}.Register(r)
			defs := valid()
			tt.mutate(defs)
			r.PopulateDefinitionsFromModel(definitions(defs...))

			// --- Act ---
			err := r.ValidateRegistry(ctx)

			// --- Assert ---
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "registry validation failed")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRegistry_WarnsAboutUnusedHandlers(t *testing.T) {
	ctx, logs := testutil.LogContext(t)
	r := New()
	testModule{}.Register(r)
	r.PopulateDefinitionsFromModel(definitions(
		&config.RuleDefinition{Name: "cardinality", Handler: "OnCardinality", AppliesTo: []string{"Attribute"}, Tasks: []string{"VALIDATE"}},
	))

	require.NoError(t, r.ValidateRegistry(ctx))
	assert.Contains(t, logs.String(), "Go handler is registered but no manifest uses it.")
	assert.Contains(t, logs.String(), "handler=OnOverride")
}

func TestUnits(t *testing.T) {
	r := New()
	testModule{}.Register(r)
	r.PopulateDefinitionsFromModel(definitions(
		&config.RuleDefinition{Name: "override", Handler: "OnOverride", AppliesTo: []string{"Attribute", "TypeProfile"}, Tasks: []string{"validate"}, DependsOn: []string{"cardinality"}},
		&config.RuleDefinition{Name: "cardinality", Handler: "OnCardinality", AppliesTo: []string{"Attribute"}, Tasks: []string{"VALIDATE"}},
	))

	units, err := r.Units()

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "cardinality", units[0].Descriptor().Name)
	override := units[1].Descriptor()
	assert.Equal(t, []entity.Variant{entity.VariantAttribute, entity.VariantTypeProfile}, override.AppliesTo)
	assert.Equal(t, []rule.Task{rule.TaskValidate}, override.Tasks)
	assert.Equal(t, []string{"cardinality"}, override.DependsOn)
}

func TestUnits_MissingHandler(t *testing.T) {
	r := New()
	r.PopulateDefinitionsFromModel(definitions(
		&config.RuleDefinition{Name: "orphan", Handler: "OnNothing", AppliesTo: []string{"Attribute"}, Tasks: []string{"VALIDATE"}},
	))

	_, err := r.Units()

	assert.ErrorContains(t, err, "handler 'OnNothing' is not registered")
}
