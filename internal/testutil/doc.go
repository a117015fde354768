// Package testutil provides deterministic time, randomness and run ids for
// tests, so scenario runs and golden snapshots are byte-identical across
// executions.
package testutil
