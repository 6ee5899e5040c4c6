package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/rulegridgo/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code, and checks every definition for declaration errors: unknown or
// abstract variants, malformed tasks and references to undefined rules.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(r.DefinitionRegistry))
	for name := range r.DefinitionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)

	used := make(map[string]struct{})
	for _, name := range names {
		def := r.DefinitionRegistry[name]
		if _, ok := r.HandlerRegistry[def.Handler]; !ok {
			errs = append(errs, fmt.Sprintf("rule '%s' (%s): manifest names handler '%s' which is not registered in Go", name, def.Source, def.Handler))
		}
		used[def.Handler] = struct{}{}

		desc, err := descriptor(def)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%v (%s)", err, def.Source))
			continue
		}
		if err := desc.Validate(); err != nil {
			for _, line := range strings.Split(err.Error(), "\n") {
				errs = append(errs, fmt.Sprintf("%s (%s)", line, def.Source))
			}
		}

		for _, ref := range slices.Concat(def.DependsOn, def.ExecuteBefore) {
			if _, ok := r.DefinitionRegistry[ref]; !ok {
				errs = append(errs, fmt.Sprintf("rule '%s' (%s): references rule '%s' which is not declared in any manifest", name, def.Source, ref))
			}
		}
	}

	for handler := range r.HandlerRegistry {
		if _, ok := used[handler]; !ok {
			logger.Warn("Go handler is registered but no manifest uses it.", "handler", handler)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "rules", len(names), "handlers", len(r.HandlerRegistry))
	return nil
}
