package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/rule"
)

// Module is the interface that all rule modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ManifestProvider is implemented by modules that ship their own manifest.
type ManifestProvider interface {
	// Manifest returns the file name used in diagnostics and the HCL source.
	Manifest() (filename string, src []byte)
}

// Registry holds the registered handlers and rule definitions for a single
// application instance.
type Registry struct {
	HandlerRegistry    map[string]rule.ProcessFunc
	DefinitionRegistry map[string]*config.RuleDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]rule.ProcessFunc),
		DefinitionRegistry: make(map[string]*config.RuleDefinition),
	}
}

// RegisterHandler registers the Go body of a rule unit under the name used
// by manifests.
func (r *Registry) RegisterHandler(name string, fn rule.ProcessFunc) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("rule handler with name '%s' already registered", name))
	}
	if fn == nil {
		panic(fmt.Sprintf("rule handler '%s' is nil", name))
	}
	slog.Debug("Registering rule handler.", "name", name)
	r.HandlerRegistry[name] = fn
}

// PopulateDefinitionsFromModel copies the loaded rule definitions from the
// config model into the registry.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Rules {
		r.DefinitionRegistry[key] = val
	}
}

// Manifests collects the embedded manifests of the given modules.
func Manifests(modules ...Module) map[string][]byte {
	sources := make(map[string][]byte)
	for _, m := range modules {
		if p, ok := m.(ManifestProvider); ok {
			name, src := p.Manifest()
			sources[name] = src
		}
	}
	return sources
}
