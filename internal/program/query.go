package program

import (
	"fmt"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
)

// Rebuild restores congruence and analysis after pending unions.
func (p *Program) Rebuild() error {
	_, err := p.g.Rebuild()
	return err
}

// Simplify runs the registered rules for at most iterLimit rounds. Without
// rules it only rebuilds.
func (p *Program) Simplify(iterLimit int) (*egraph.Report, error) {
	if len(p.rules) == 0 {
		if err := p.Rebuild(); err != nil {
			return nil, fmt.Errorf("simplify: %w", err)
		}
		return &egraph.Report{StopReason: egraph.StopSaturated}, nil
	}

	opts := append([]egraph.RunnerOption{
		egraph.WithIterLimit(iterLimit),
		egraph.WithRunLogger(p.logger),
	}, p.runnerOpts...)
	rep, err := egraph.NewRunner(p.g, opts...).Run(p.rules)
	if err != nil {
		return rep, fmt.Errorf("simplify: %w", err)
	}
	return rep, nil
}

// ExtractBest returns the minimum-size term equivalent to the program root.
func (p *Program) ExtractBest() (*lang.Term, error) {
	return p.ExtractBestOf(p.Root())
}

// ExtractBestOf returns the minimum-size term in the class of id.
func (p *Program) ExtractBestOf(id lang.Id) (*lang.Term, error) {
	if err := p.Rebuild(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	_, t := egraph.NewExtractor(p.g, egraph.AstSize{}).FindBest(id)
	return t, nil
}

// ExtractAny returns the program exactly as it was built.
func (p *Program) ExtractAny() *lang.Term {
	return p.g.Term(p.Root())
}

// Equiv reports whether two terms are known to be equal. A term that was
// never built is equal to nothing.
func (p *Program) Equiv(a, b *lang.Term) (bool, error) {
	if err := p.Rebuild(); err != nil {
		return false, err
	}
	ia, err := p.g.LookupTerm(a)
	if err != nil {
		return false, nil
	}
	ib, err := p.g.LookupTerm(b)
	if err != nil {
		return false, nil
	}
	return p.g.Equiv(ia, ib), nil
}

// EquivIDs is Equiv for already built ids.
func (p *Program) EquivIDs(a, b lang.Id) (bool, error) {
	if err := p.Rebuild(); err != nil {
		return false, err
	}
	return p.g.Equiv(a, b), nil
}

// ExplainEquivalence returns the chain of justified steps from a to b. Both
// terms are added to the graph first. It fails with egraph.ErrNotEquivalent
// when they are not equal.
func (p *Program) ExplainEquivalence(a, b *lang.Term) (*egraph.Explanation, error) {
	ia, err := p.AddTerm(a)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	ib, err := p.AddTerm(b)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return p.ExplainIDs(ia, ib)
}

// ExplainIDs is ExplainEquivalence for already built ids.
func (p *Program) ExplainIDs(a, b lang.Id) (*egraph.Explanation, error) {
	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	e, err := p.g.Explain(a, b)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return e, nil
}

// Decompose returns the elements of the list built under id.
func (p *Program) Decompose(id lang.Id) ([]lang.Id, error) {
	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	return p.g.Decompose(id)
}

// FreeVars returns the free variable classes of id after a rebuild.
func (p *Program) FreeVars(id lang.Id) ([]lang.Id, error) {
	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	return p.g.FreeVars(id), nil
}

// Constant returns the resolved constant of id after a rebuild, or nil.
func (p *Program) Constant(id lang.Id) (*egraph.Constant, error) {
	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	return p.g.Constant(id), nil
}
