package egraph

import (
	"fmt"
	"strings"

	"github.com/marlang/marlang/internal/lang"
)

// JustificationKind is the cause recorded for a union.
type JustificationKind uint8

const (
	// ByRule marks a union issued by a rewrite rule.
	ByRule JustificationKind = iota + 1

	// ByAnalysis marks a union between a folded class and its literal.
	ByAnalysis

	// ByCongruence marks a union of two nodes with equivalent children.
	ByCongruence

	// ByAssertion marks a union requested directly by a caller.
	ByAssertion
)

func (k JustificationKind) String() string {
	switch k {
	case ByRule:
		return "rule"
	case ByAnalysis:
		return "analysis"
	case ByCongruence:
		return "congruence"
	case ByAssertion:
		return "asserted"
	default:
		return fmt.Sprintf("JustificationKind(%d)", uint8(k))
	}
}

// Justification is why two ids were unioned.
type Justification struct {
	Kind JustificationKind
	Rule string // set only for ByRule
}

// Rule justifies a union by the named rewrite.
func Rule(name string) Justification {
	return Justification{Kind: ByRule, Rule: name}
}

// Analysis justifies a union found by constant folding.
func Analysis() Justification {
	return Justification{Kind: ByAnalysis}
}

// Congruence justifies a union of congruent nodes.
func Congruence() Justification {
	return Justification{Kind: ByCongruence}
}

// Asserted justifies a union the caller made directly.
func Asserted() Justification {
	return Justification{Kind: ByAssertion}
}

func (j Justification) String() string {
	if j.Kind == ByRule {
		return "rule " + j.Rule
	}
	return j.Kind.String()
}

type logEdge struct {
	a, b lang.Id
	why  Justification
}

// unionLog is the append-only record of unions, indexed by endpoint.
type unionLog struct {
	edges []logEdge
	adj   map[lang.Id][]int
}

func newUnionLog() *unionLog {
	return &unionLog{adj: make(map[lang.Id][]int)}
}

func (l *unionLog) add(a, b lang.Id, why Justification) {
	idx := len(l.edges)
	l.edges = append(l.edges, logEdge{a: a, b: b, why: why})
	l.adj[a] = append(l.adj[a], idx)
	l.adj[b] = append(l.adj[b], idx)
}

// Step is one equality in an explanation: the previous term equals Term
// because of Justification.
type Step struct {
	Term          *lang.Term
	Justification Justification

	// Backward is true when the step runs against the direction the union was
	// recorded in, e.g. from a rule's right-hand side back to its left.
	Backward bool

	// Children explains, for a congruence step, each pair of differing
	// children in argument order.
	Children []*Explanation
}

// Explanation is an ordered chain of equalities from Start to the last
// step's Term.
type Explanation struct {
	Start *lang.Term
	Steps []Step
}

// End returns the final term of the chain.
func (e *Explanation) End() *lang.Term {
	if len(e.Steps) == 0 {
		return e.Start
	}
	return e.Steps[len(e.Steps)-1].Term
}

// Len returns the number of steps including nested congruence steps.
func (e *Explanation) Len() int {
	n := 0
	for _, s := range e.Steps {
		n++
		for _, c := range s.Children {
			n += c.Len()
		}
	}
	return n
}

// String renders one line per term, annotated with the justification of the
// step that reached it. Nested congruence explanations are indented.
func (e *Explanation) String() string {
	var b strings.Builder
	e.write(&b, "")
	return b.String()
}

func (e *Explanation) write(b *strings.Builder, indent string) {
	fmt.Fprintf(b, "%s%s\n", indent, e.Start)
	for _, s := range e.Steps {
		arrow := "=>"
		if s.Backward {
			arrow = "<="
		}
		fmt.Fprintf(b, "%s%s %s [%s]\n", indent, arrow, s.Term, s.Justification)
		for _, c := range s.Children {
			c.write(b, indent+"    ")
		}
	}
}

// Explain returns the chain of recorded unions connecting a and b.
func (g *EGraph) Explain(a, b lang.Id) (*Explanation, error) {
	if g.log == nil {
		return nil, ErrExplanationsDisabled
	}
	if g.Find(a) != g.Find(b) {
		return nil, fmt.Errorf("explain %d and %d: %w", a, b, ErrNotEquivalent)
	}
	e, ok := g.explainPath(a, b, len(g.log.edges))
	if !ok {
		return nil, fmt.Errorf("explain %d and %d: no recorded path", a, b)
	}
	return e, nil
}

type hop struct {
	edge int
	from lang.Id
}

// explainPath runs a breadth-first search from a to b over log edges with
// index below limit. Congruence steps recurse with their own index as the
// new limit: the children were already equal before that union, so the
// recursion always terminates.
func (g *EGraph) explainPath(a, b lang.Id, limit int) (*Explanation, bool) {
	prev := map[lang.Id]hop{a: {edge: -1}}
	queue := []lang.Id{a}
	for len(queue) > 0 && !hasKey(prev, b) {
		cur := queue[0]
		queue = queue[1:]
		for _, idx := range g.log.adj[cur] {
			if idx >= limit {
				continue
			}
			e := g.log.edges[idx]
			next := e.b
			if next == cur {
				next = e.a
			}
			if hasKey(prev, next) {
				continue
			}
			prev[next] = hop{edge: idx, from: cur}
			queue = append(queue, next)
		}
	}
	if !hasKey(prev, b) {
		return nil, false
	}

	var path []lang.Id
	for cur := b; cur != a; cur = prev[cur].from {
		path = append(path, cur)
	}

	out := &Explanation{Start: g.Term(a)}
	for i := len(path) - 1; i >= 0; i-- {
		to := path[i]
		h := prev[to]
		e := g.log.edges[h.edge]
		step := Step{
			Term:          g.Term(to),
			Justification: e.why,
			Backward:      to == e.a && e.a != e.b,
		}
		if e.why.Kind == ByCongruence {
			step.Children = g.explainChildren(h.from, to, h.edge)
		}
		out.Steps = append(out.Steps, step)
	}
	return out, true
}

func (g *EGraph) explainChildren(from, to lang.Id, limit int) []*Explanation {
	left, right := g.nodes[from], g.nodes[to]
	var out []*Explanation
	for i, lc := range left.Children() {
		rc := right.Args[i]
		if lc == rc {
			continue
		}
		if sub, ok := g.explainPath(lc, rc, limit); ok {
			out = append(out, sub)
		}
	}
	return out
}

func hasKey[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}
