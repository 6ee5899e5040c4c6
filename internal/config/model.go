package config

import (
	"fmt"
	"slices"

	"github.com/vk/rulegridgo/internal/entity"
)

// Model is the unified representation of all loaded configuration.
type Model struct {
	Rules    map[string]*RuleDefinition
	Entities *entity.Document
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{
		Rules:    make(map[string]*RuleDefinition),
		Entities: entity.NewDocument(),
	}
}

// RuleDefinition is the manifest side of a rule unit. Variant and task names
// are kept as written; the registry resolves and validates them.
type RuleDefinition struct {
	Name          string
	Description   string
	Handler       string
	AppliesTo     []string
	Tasks         []string
	DependsOn     []string
	ExecuteBefore []string
	// Source is the "file:line" position of the declaration.
	Source string
}

// RuleNames returns the names of all rule definitions, sorted.
func (m *Model) RuleNames() []string {
	names := make([]string, 0, len(m.Rules))
	for name := range m.Rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Merge adds the rules and entities of other to m. A rule or entity declared
// in both is an error.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	for _, name := range other.RuleNames() {
		def := other.Rules[name]
		if existing, ok := m.Rules[name]; ok {
			return fmt.Errorf("rule '%s' declared at %s is already declared at %s", name, def.Source, existing.Source)
		}
		m.Rules[name] = def
	}
	if other.Entities != nil {
		if err := m.Entities.Merge(other.Entities); err != nil {
			return err
		}
	}
	return nil
}
