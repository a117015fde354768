// Package egraph implements the equality graph engine for marlang terms.
//
// An EGraph stores e-nodes (lang.Node values whose children are class ids)
// grouped into equivalence classes. Classes carry analysis data: the set of
// free variables shared by every member, and an optional resolved constant
// with the application it was folded from.
//
// ARCHITECTURE:
//
// Insertion and union are cheap and leave the graph "dirty": congruence and
// analysis are only restored by Rebuild. Rebuild drains three worklists to a
// fixed point:
//  1. pending parents whose children changed class (congruence repair)
//  2. parents whose analysis data must be recomputed
//  3. classes that gained a constant and must be joined with its literal
//
// Queries (Find across classes, extraction, explanation, pattern search)
// assume a clean graph. Callers rebuild first.
//
// Key design constraints:
//   - One EGraph is owned by one caller; there is no internal locking
//   - Classes are never deleted, only absorbed; the surviving root is the
//     larger class, or the lower id on a tie
//   - Iteration over classes is always in ascending id order
//   - Invariant violations (conflicting constants, malformed lists inside
//     analysis) panic with *InvariantError; entry points that return an
//     error recover it with Recover. A graph that raised one must be discarded
//
// When explanations are enabled, every union is appended to a log tagged with
// its cause, and Insert returns the exact id of the node as given. Explain
// searches that log on demand.
package egraph
