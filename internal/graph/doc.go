// Package graph implements a lazy, graph-structured query engine over a
// columnar event source: callers declare filters, derived columns, range
// gates, and terminal actions against a shared logical scan, and the first
// result access compiles everything booked so far into a single pass over
// the data.
//
// # Overview
//
// A Graph owns one data source and a DAG rooted at it. Attaching nodes
// executes nothing; each attachment only records the node, validates its
// configuration (column names, arity, range parameters), and bumps the
// parent's dependent count. Actions are registered in a booked state and an
// action that is never accessed is never executed: building a large graph
// with unused branches costs memory, not compute.
//
// # Execution model
//
// The first access to any booked action's result triggers exactly one scan
// that executes every action booked at that moment. The scan iterates
// entries 0..N-1 once, either in a single loop (slot count 1) or partitioned
// into contiguous chunks with one worker goroutine per slot. Along each
// action's chain, node decisions are cached per (entry, slot):
//
//   - Asking a node about the same entry again returns the cached decision,
//     so a node shared by several actions is evaluated at most once per
//     entry per slot.
//   - A filter rejection short-circuits everything downstream of it for
//     that entry; rejected entries never reach later filters, derives, or
//     action bodies on the same branch.
//   - A derive computes its value at most once per entry per slot, on first
//     demand by any consumer.
//
// After all slots join, each action's per-slot accumulators are merged
// (a commutative, associative payload-defined operation) into its final
// value and the action becomes done; later accesses return the cached value
// without rescanning. Actions booked after a scan need a new scan when
// first accessed.
//
// # Failure
//
// A fault in a filter predicate, derive expression, or action body aborts
// the whole scan: the other slots stop at their next poll, no partial
// results are published, and the triggering caller receives an EntryError.
// The graph stays usable and the booked set is untouched, so the caller can
// fix inputs and re-run, but the faulting scan's actions remain not-done.
//
// # Configuration errors
//
// Everything that can be validated at build time is: column arity and name
// resolution, derived-name uniqueness, derived-column visibility (only
// descendants of the defining node may read it), range parameters, and the
// range/multi-slot conflict. None of these surface at run time.
package graph
