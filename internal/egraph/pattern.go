package egraph

import (
	"slices"

	"github.com/marlang/marlang/internal/lang"
)

// Subst binds pattern variable names to class ids.
type Subst map[string]lang.Id

func (s Subst) with(name string, id lang.Id) Subst {
	out := make(Subst, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[name] = id
	return out
}

// Pattern is a term whose symbols starting with '?' are variables. The rest
// placeholder lang.RestSymbol is an ordinary variable that binds the
// remaining list cell.
type Pattern struct {
	term *lang.Term
	vars []string
}

// NewPattern wraps t as a pattern.
func NewPattern(t *lang.Term) *Pattern {
	seen := make(map[string]bool)
	var vars []string
	for _, n := range t.Nodes() {
		if n.IsVar() && !seen[n.Symbol] {
			seen[n.Symbol] = true
			vars = append(vars, n.Symbol)
		}
	}
	slices.Sort(vars)
	return &Pattern{term: t, vars: vars}
}

// Term returns the underlying term.
func (p *Pattern) Term() *lang.Term { return p.term }

// Vars returns the variable names in ascending order.
func (p *Pattern) Vars() []string { return slices.Clone(p.vars) }

func (p *Pattern) String() string { return p.term.String() }

// Match is every substitution under which a pattern matches one class.
type Match struct {
	Class  lang.Id
	Substs []Subst
}

// Search matches p against every class in ascending id order.
func (p *Pattern) Search(g *EGraph) []Match {
	var out []Match
	for _, cid := range g.ClassIDs() {
		if m, ok := p.SearchClass(g, cid); ok {
			out = append(out, m)
		}
	}
	return out
}

// SearchClass matches p against one class.
func (p *Pattern) SearchClass(g *EGraph, id lang.Id) (Match, bool) {
	cid := g.Find(id)
	substs := p.match(g, p.term.Root(), cid, Subst{})
	if len(substs) == 0 {
		return Match{}, false
	}
	return Match{Class: cid, Substs: substs}, true
}

func (p *Pattern) match(g *EGraph, pid, cid lang.Id, s Subst) []Subst {
	pn := p.term.Node(pid)
	if pn.IsVar() {
		if bound, ok := s[pn.Symbol]; ok {
			if g.Find(bound) == cid {
				return []Subst{s}
			}
			return nil
		}
		return []Subst{s.with(pn.Symbol, cid)}
	}

	var out []Subst
	for _, cn := range g.classes[cid].nodes {
		if !cn.node.SameShape(pn) {
			continue
		}
		partial := []Subst{s}
		for i, pc := range pn.Children() {
			var next []Subst
			for _, ps := range partial {
				next = append(next, p.match(g, pc, g.Find(cn.node.Args[i]), ps)...)
			}
			partial = next
			if len(partial) == 0 {
				break
			}
		}
		out = append(out, partial...)
	}
	return out
}

// Instantiate inserts p under s and returns the id of its root. Every
// variable of p must be bound.
func (p *Pattern) Instantiate(g *EGraph, s Subst) lang.Id {
	ids := make([]lang.Id, p.term.Len())
	for i, n := range p.term.Nodes() {
		if n.IsVar() {
			id, ok := s[n.Symbol]
			if !ok {
				panic("egraph: unbound pattern variable " + n.Symbol)
			}
			ids[i] = id
			continue
		}
		ids[i] = g.Insert(n.Map(func(c lang.Id) lang.Id { return ids[c] }))
	}
	return ids[len(ids)-1]
}
