package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every configuration file found under paths (files or
	// directories) and translates them into one Model. References between
	// entities may cross file boundaries.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// LoadSources is Load for in-memory sources keyed by file name, such as
	// manifests embedded into module binaries.
	LoadSources(ctx context.Context, sources map[string][]byte) (*Model, error)
}
