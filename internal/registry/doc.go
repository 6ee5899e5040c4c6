// Package registry provides the central "glue" for the module system.
//
// The Registry stores the mapping between handler names used in rule
// manifests (e.g. "OnAttributeStructure") and the compiled Go functions
// that implement them. It also holds the parsed, format-agnostic rule
// definitions from the manifests themselves.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the manifests are in sync, so that every rule
// unit handed to the engine has an implementation and a well-formed
// declaration.
package registry
