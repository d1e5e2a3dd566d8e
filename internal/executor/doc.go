// Package executor runs enrichment: it walks the target object graph, batches
// the assemble work it finds and dispatches it to the containers.
//
// # Phases
//
// Execute runs four phases on the caller's goroutine:
//
//  1. Disassembly: nested objects are extracted from the targets, recursively,
//     and grouped with every other object sharing the same graph.
//  2. Planning: one Execution per (graph, assemble operation) passing the
//     filter, optionally split into batches.
//  3. Dispatch: executions are handed to their handlers, according to Mode.
//  4. Merge: handlers write fetched values into the targets.
//
// # Modes
//
//   - ModeDisordered groups executions by container, then by handler, and
//     dispatches each group once. It issues the fewest container lookups.
//   - ModeOrdered dispatches executions one by one in ascending sort value,
//     ties broken by declaration order.
//   - ModeConcurrent groups like ModeDisordered and runs the container
//     lookups of the groups in parallel, bounded by Config.Parallelism.
//     Keys are resolved and results merged on the calling goroutine, so
//     targets are never written concurrently.
//
// # Failures
//
// Configuration problems (inactive graph, unknown namespace, failing
// condition, depth guard) fail the call. A failing or panicking group only
// fails itself: it is logged and reported in the returned Diagnostics while
// the other groups proceed.
//
// Data cycles (an object nested inside itself) are not detected. Set
// Config.MaxDepth to turn them into an error.
package executor
