// Package rulegraph precomputes, for every (task, variant) pair, the order
// in which rule units must run.
//
// The graph is built once, either at startup from the registered units or
// ahead of time into a YAML artifact that is decoded at startup. Both paths
// produce the same orderings for the same unit declarations. Any problem in
// the declarations is a configuration error and is reported before the first
// entity is processed.
package rulegraph
