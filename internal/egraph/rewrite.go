package egraph

import (
	"fmt"

	"github.com/marlang/marlang/internal/lang"
)

// Rewrite is a named equality schema lhs => rhs.
type Rewrite struct {
	Name string
	Lhs  *Pattern
	Rhs  *Pattern
}

// NewRewrite builds a rule. Every variable of rhs must appear in lhs.
func NewRewrite(name string, lhs, rhs *lang.Term) (*Rewrite, error) {
	l, r := NewPattern(lhs), NewPattern(rhs)
	bound := make(map[string]bool, len(l.vars))
	for _, v := range l.vars {
		bound[v] = true
	}
	for _, v := range r.vars {
		if !bound[v] {
			return nil, fmt.Errorf("rewrite %s: %s: %w", name, v, ErrUnboundVariable)
		}
	}
	return &Rewrite{Name: name, Lhs: l, Rhs: r}, nil
}

// MustRewrite is like NewRewrite but panics on error.
func MustRewrite(name string, lhs, rhs *lang.Term) *Rewrite {
	rw, err := NewRewrite(name, lhs, rhs)
	if err != nil {
		panic(err)
	}
	return rw
}

func (rw *Rewrite) String() string {
	return fmt.Sprintf("%s: %s => %s", rw.Name, rw.Lhs, rw.Rhs)
}

// Apply instantiates the right-hand side for every substitution in matches
// and unions it with the matched class. It returns the number of unions that
// merged distinct classes.
func (rw *Rewrite) Apply(g *EGraph, matches []Match) int {
	unions := 0
	why := Rule(rw.Name)
	for _, m := range matches {
		for _, s := range m.Substs {
			rhs := rw.Rhs.Instantiate(g, s)
			lhs := m.Class
			if g.ExplanationsEnabled() {
				lhs = rw.Lhs.Instantiate(g, s)
			}
			if g.Union(lhs, rhs, why) {
				unions++
			}
		}
	}
	return unions
}
