// Package rule defines Rule Units: named, pluggable checks that run against a
// single entity node and append their findings to a result.Result.
//
// A Unit is described by a Descriptor that names the entity variants and
// tasks it applies to and the ordering constraints it has on other units.
// Descriptors are declared in module manifests and matched with the Go
// implementation by the registry.
package rule
