// Package program is the builder surface over the e-graph.
//
// A Program owns one EGraph and the ordered list of committed commands. Terms
// are assembled node by node with the Mk* constructors, which insert into the
// graph and return ids; variadic operands are folded into cons/nil lists the
// same way for every operator. Commands (set-logic, assert, declare-fun, ...)
// are ordinary nodes; committing one appends it to the program, and the
// program root is the cons-folded command list.
//
// Queries rebuild the graph first, so callers never observe stale classes:
//
//	p := program.New()
//	x := p.MkSymbol("x")
//	zero := p.MkInt(0)
//	sum := p.MkIntAdd(x, zero)
//	_ = p.AddRewrite("add-zero", p.Pattern(sum, x), p.Pattern(x, x))
//	rep, err := p.Simplify(10)
//
// Explanations are enabled by default. A Program is not safe for concurrent
// use.
package program
