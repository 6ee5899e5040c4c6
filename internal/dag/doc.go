// Package dag is a small, concurrency-safe directed graph keyed by string
// IDs. An edge from A to B means B depends on A.
//
// The rule graph builder uses it to order rule units: TopologicalSort yields
// dependencies before their dependents and reports the first cycle it closes
// as a *CycleError naming both ends.
package dag
