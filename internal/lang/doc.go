// Package lang defines the closed node vocabulary for marlang terms.
//
// This package contains the node model only. The e-graph, the builder, and
// every peripheral tool (sort inference, interchange format, sampling) import
// lang; lang imports nothing internal.
//
// Key design constraints:
//   - The vocabulary is closed: every Op has a fixed arity and a dotted tag
//   - N-ary operators take a single child, the head of a cons/nil list
//   - Node is comparable so it can key hash-consing tables directly
//   - Term is a flat post-order node slice; children always precede parents
package lang
