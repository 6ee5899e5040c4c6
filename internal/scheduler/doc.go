// Package scheduler runs the rule units that apply to one entity and merges
// their output into a single result.Result.
//
// A Processor is built once from a precomputed rulegraph.Graph and the unit
// implementations. For every (task, variant) pair it derives a plan: the
// units in topological order together with the positions of their
// dependencies inside that order. Process then executes the plan on a
// bounded errgroup.
//
// # Scheduling
//
// Units are launched in plan order and each one waits for the units it
// depends on before it starts. Because a unit only ever waits on units that
// were launched before it, the bounded pool always has a runnable unit and
// can not deadlock. Unrelated units run concurrently.
//
// A unit runs against a working Result that already holds the merged output
// of its dependencies. Only what the unit adds on top is kept as its
// contribution.
//
// # Failures
//
// A unit that returns an error, panics or exceeds the unit timeout is logged
// and contributes nothing. Its dependents still run; for them the failed
// dependency simply has an empty contribution.
//
// # Determinism
//
// Contributions are merged in plan order once every unit is done, so the
// same entity always produces the same Result regardless of interleaving.
package scheduler
