package lang

import (
	"fmt"
	"strings"
)

// Id is an opaque handle to a node. In a Term it indexes the node slice; in
// an e-graph it is resolved to a canonical class with Find.
type Id uint32

// RestSymbol is the pattern placeholder that stands for "the remaining elements"
// of a list. List folding leaves it unfolded as the tail, and decomposition
// returns it as the final element.
const RestSymbol = "?MARLANG_REST_PATTERN"

// Node is one operator application. Only the first Op.Arity() entries of Args
// are meaningful; the rest stay zero so that structurally equal nodes compare
// equal with ==.
type Node struct {
	Op     Op
	Args   [MaxArity]Id
	Symbol string // set only for OpSymbol
}

// NewNode builds a node for op. It panics if the number of children does not
// match the arity of op, which is always a programming error.
func NewNode(op Op, children ...Id) Node {
	if op == OpSymbol {
		panic("lang: use Sym to build symbol nodes")
	}
	if len(children) != op.Arity() {
		panic(fmt.Sprintf("lang: %s takes %d children, got %d", op, op.Arity(), len(children)))
	}
	n := Node{Op: op}
	copy(n.Args[:], children)
	return n
}

// Sym builds a bare symbol node.
func Sym(name string) Node {
	return Node{Op: OpSymbol, Symbol: name}
}

// Children returns the meaningful child ids.
func (n Node) Children() []Id {
	return n.Args[:n.Op.Arity()]
}

// Map returns a copy of n with every child replaced by f(child).
func (n Node) Map(f func(Id) Id) Node {
	for i := 0; i < n.Op.Arity(); i++ {
		n.Args[i] = f(n.Args[i])
	}
	return n
}

// SameShape reports whether n and o have the same operator (and symbol text),
// ignoring children.
func (n Node) SameShape(o Node) bool {
	return n.Op == o.Op && n.Symbol == o.Symbol
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return n.Op.Arity() == 0
}

// IsVar reports whether n is a pattern variable (a symbol starting with '?').
func (n Node) IsVar() bool {
	return n.Op == OpSymbol && strings.HasPrefix(n.Symbol, "?")
}

// Label is the display name of the node: its tag, or the symbol text.
func (n Node) Label() string {
	if n.Op == OpSymbol {
		return n.Symbol
	}
	return n.Op.Tag()
}

func (n Node) String() string {
	if n.IsLeaf() {
		return n.Label()
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.Label())
	for _, c := range n.Children() {
		fmt.Fprintf(&b, " %d", c)
	}
	b.WriteString(")")
	return b.String()
}
