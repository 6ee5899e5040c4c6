package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rulegridgo/internal/entity"
)

func TestModel_Merge(t *testing.T) {
	// --- Arrange ---
	base := NewModel()
	base.Rules["b"] = &RuleDefinition{Name: "b", Source: "b.hcl:1"}
	require.NoError(t, base.Entities.Add(&entity.Attribute{Meta: entity.Meta{Key: "x"}}))

	other := NewModel()
	other.Rules["a"] = &RuleDefinition{Name: "a", Source: "a.hcl:1"}
	require.NoError(t, other.Entities.Add(&entity.Attribute{Meta: entity.Meta{Key: "y"}}))

	// --- Act ---
	err := base.Merge(other)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, base.RuleNames())
	assert.Equal(t, 2, base.Entities.Len())
}

func TestModel_MergeRejectsDuplicates(t *testing.T) {
	base := NewModel()
	base.Rules["a"] = &RuleDefinition{Name: "a", Source: "one.hcl:3"}
	other := NewModel()
	other.Rules["a"] = &RuleDefinition{Name: "a", Source: "two.hcl:7"}

	err := base.Merge(other)

	assert.EqualError(t, err, "rule 'a' declared at two.hcl:7 is already declared at one.hcl:3")
	assert.NoError(t, base.Merge(nil))
}
