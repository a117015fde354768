// Package store persists sampled datasets and simplification results in
// SQLite.
//
// Only canonical terms are stored (as s-expression and LEDA text, keyed by
// their canon content id), never live e-graph state. Writes are idempotent:
// re-inserting a term, a run, or the same sample term within a run is a
// no-op. Reads are ordered deterministically by seq.
package store
