// Package hcl_adapter implements config.Loader for HCL: rule manifests and
// entity documents are decoded with gohcl and translated into config.Model.
package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and translates all of them into
// one model. It is agnostic to the origin of the paths and accepts any block
// in any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	roots := make([]*fileRoot, 0, len(hclFiles))
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		root, err := decodeRoot(hclFile, file)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return l.translate(ctx, roots)
}

// LoadSources is Load for in-memory files.
func (l *Loader) LoadSources(ctx context.Context, sources map[string][]byte) (*config.Model, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	slices.Sort(names)

	parser := hclparse.NewParser()
	roots := make([]*fileRoot, 0, len(names))
	for _, name := range names {
		hclFile, diags := parser.ParseHCL(sources[name], name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL source %s: %w", name, diags)
		}
		root, err := decodeRoot(hclFile, name)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return l.translate(ctx, roots)
}

func decodeRoot(f *hcl.File, name string) (*fileRoot, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}
	return &root, nil
}

// translate merges the decoded files into the agnostic model.
func (l *Loader) translate(ctx context.Context, roots []*fileRoot) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()

	for _, root := range roots {
		for _, blk := range root.Rules {
			def, err := l.translateRule(ctx, blk)
			if err != nil {
				return nil, err
			}
			if existing, ok := model.Rules[def.Name]; ok {
				return nil, fmt.Errorf("%s: rule '%s' is already declared at %s", def.Source, def.Name, existing.Source)
			}
			model.Rules[def.Name] = def
		}
	}

	doc, err := l.buildEntities(ctx, roots)
	if err != nil {
		return nil, err
	}
	model.Entities = doc

	logger.Debug("HCL loading complete.", "rules", len(model.Rules), "entities", doc.Len())
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a sorted list of all .hcl
// files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	slices.Sort(allFiles)
	return allFiles, nil
}
