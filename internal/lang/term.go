package lang

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotAList is returned when a list decomposition reaches a node that is
// neither a cons cell, nil, nor a bare symbol tail.
var ErrNotAList = errors.New("not a list")

// Term is a concrete recursive term stored as a flat node slice in post-order.
// Every child id refers to an earlier index, and the last node is the root.
//
// Terms are plain values: they are produced by extraction and consumed by the
// interchange format, sort inference and sampling. They never reference live
// e-graph state.
type Term struct {
	nodes []Node
}

// NewTerm returns an empty term.
func NewTerm() *Term {
	return &Term{}
}

// Add appends n and returns its id. It panics if a child does not refer to an
// earlier node, since that would break the post-order invariant.
func (t *Term) Add(n Node) Id {
	for _, c := range n.Children() {
		if int(c) >= len(t.nodes) {
			panic(fmt.Sprintf("lang: child %d out of range for term of %d nodes", c, len(t.nodes)))
		}
	}
	t.nodes = append(t.nodes, n)
	return Id(len(t.nodes) - 1)
}

// Len returns the number of nodes.
func (t *Term) Len() int {
	return len(t.nodes)
}

// Node returns the node at id.
func (t *Term) Node(id Id) Node {
	return t.nodes[id]
}

// Nodes returns a copy of the node slice in post-order.
func (t *Term) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Root returns the id of the last node. The term must not be empty.
func (t *Term) Root() Id {
	if len(t.nodes) == 0 {
		panic("lang: root of empty term")
	}
	return Id(len(t.nodes) - 1)
}

// Graft copies the subterm of o rooted at id into t and returns the new id.
func (t *Term) Graft(o *Term, id Id) Id {
	memo := make(map[Id]Id)
	var walk func(Id) Id
	walk = func(i Id) Id {
		if out, ok := memo[i]; ok {
			return out
		}
		out := t.Add(o.nodes[i].Map(walk))
		memo[i] = out
		return out
	}
	return walk(id)
}

// Subterm returns the subterm rooted at id as a new term.
func (t *Term) Subterm(id Id) *Term {
	out := NewTerm()
	out.Graft(t, id)
	return out
}

// String renders the term as an s-expression.
func (t *Term) String() string {
	if t == nil || len(t.nodes) == 0 {
		return ""
	}
	return t.Format(t.Root())
}

// Format renders the subterm rooted at id as an s-expression.
func (t *Term) Format(id Id) string {
	var b strings.Builder
	t.format(&b, id)
	return b.String()
}

func (t *Term) format(b *strings.Builder, id Id) {
	n := t.nodes[id]
	if n.IsLeaf() {
		b.WriteString(n.Label())
		return
	}
	b.WriteString("(")
	b.WriteString(n.Label())
	for _, c := range n.Children() {
		b.WriteString(" ")
		t.format(b, c)
	}
	b.WriteString(")")
}

// Equal reports whether two terms denote the same tree, regardless of how
// shared subterms are laid out.
func (t *Term) Equal(o *Term) bool {
	if t.Len() == 0 || o.Len() == 0 {
		return t.Len() == o.Len()
	}
	type pair struct{ a, b Id }
	same := make(map[pair]bool)
	var eq func(a, b Id) bool
	eq = func(a, b Id) bool {
		if same[pair{a, b}] {
			return true
		}
		na, nb := t.nodes[a], o.nodes[b]
		if na.Op != nb.Op || na.Symbol != nb.Symbol {
			return false
		}
		ca, cb := na.Children(), nb.Children()
		if len(ca) != len(cb) {
			return false
		}
		for i := range ca {
			if !eq(ca[i], cb[i]) {
				return false
			}
		}
		same[pair{a, b}] = true
		return true
	}
	return eq(t.Root(), o.Root())
}

// Decompose walks the list rooted at id and returns the element ids in order.
// Nil ends the list. A bare symbol in tail position is the rest placeholder
// and is returned as the final element. Any other node yields ErrNotAList.
func (t *Term) Decompose(id Id) ([]Id, error) {
	var out []Id
	for {
		n := t.nodes[id]
		switch n.Op {
		case OpCons:
			out = append(out, n.Args[0])
			id = n.Args[1]
		case OpNil:
			return out, nil
		case OpSymbol:
			return append(out, id), nil
		default:
			return nil, fmt.Errorf("decompose %s: %w", n.Label(), ErrNotAList)
		}
	}
}
