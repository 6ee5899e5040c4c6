package rulegraph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
	"gopkg.in/yaml.v3"
)

// ArtifactVersion is the format version written by Encode.
const ArtifactVersion = 1

// artifact is the on-disk form of a Graph:
//
//	version: 1
//	tasks:
//	  VALIDATE:
//	    Attribute: [attribute_structure, attribute_data_type]
type artifact struct {
	Version int                            `yaml:"version"`
	Tasks   map[string]map[string][]string `yaml:"tasks"`
}

// Encode writes g as a YAML artifact. Map keys are emitted sorted, so equal
// graphs produce byte-identical artifacts.
func (g *Graph) Encode(w io.Writer) error {
	a := artifact{Version: ArtifactVersion, Tasks: make(map[string]map[string][]string, len(g.orders))}
	for task, byVariant := range g.orders {
		out := make(map[string][]string, len(byVariant))
		for v, order := range byVariant {
			out[v.String()] = append([]string(nil), order...)
		}
		a.Tasks[string(task)] = out
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode rule graph: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML artifact written by Encode. A malformed artifact is an
// error; orderings for abstract variants are logged and skipped.
func Decode(ctx context.Context, r io.Reader) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var a artifact
	if err := dec.Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Err: errors.New("rule graph artifact is empty")}
		}
		return nil, &ConfigError{Err: fmt.Errorf("malformed rule graph artifact: %w", err)}
	}
	if a.Version != ArtifactVersion {
		return nil, &ConfigError{Err: fmt.Errorf("unsupported rule graph artifact version %d", a.Version)}
	}

	g := newGraph()
	for taskName, byVariant := range a.Tasks {
		task, err := rule.ParseTask(taskName)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("malformed rule graph artifact: %w", err)}
		}
		for variantName, order := range byVariant {
			v, err := entity.ParseVariant(variantName)
			if err != nil {
				return nil, &ConfigError{Err: fmt.Errorf("malformed rule graph artifact: %w", err)}
			}
			if v.Abstract() {
				logger.Warn("Rule graph artifact targets an abstract variant, skipping.", "task", task, "variant", v.String(), "units", order)
				continue
			}
			if err := checkOrder(order); err != nil {
				return nil, &ConfigError{Task: task, Variant: v, Err: err}
			}
			g.set(task, v, append([]string(nil), order...))
		}
	}

	logger.Debug("Rule graph artifact decoded.", "tasks", len(g.Tasks()))
	return g, nil
}

func checkOrder(order []string) error {
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		if name == "" {
			return errors.New("empty rule unit name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("rule unit '%s' listed more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
