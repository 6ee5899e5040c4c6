// Package config defines the format-agnostic configuration model: the rule
// definitions declared in module manifests and the entity document that is
// validated. The Loader interface is implemented per source format; the HCL
// implementation lives in hcl_adapter.
package config
