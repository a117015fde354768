package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/program"
	"github.com/marlang/marlang/internal/sorts"
)

// evaluate checks one assertion and returns a failure message, or "" when it
// holds.
func evaluate(p *program.Program, res *Result, a Assertion) string {
	switch a.Type {
	case AssertBest:
		return compare(a.Expect, res.Best)

	case AssertAny:
		return compare(a.Expect, res.Any)

	case AssertBestOf:
		id, err := addTerm(p, a.Term)
		if err != nil {
			return err.Error()
		}
		best, err := p.ExtractBestOf(id)
		if err != nil {
			return err.Error()
		}
		return compare(a.Expect, best.String())

	case AssertEquivalent, AssertNotEquivalent:
		lhs, rhs, err := parsePair(a)
		if err != nil {
			return err.Error()
		}
		eq, err := p.Equiv(lhs, rhs)
		if err != nil {
			return err.Error()
		}
		if want := a.Type == AssertEquivalent; eq != want {
			return fmt.Sprintf("equivalent = %v, want %v", eq, want)
		}

	case AssertExplains:
		return checkExplanation(p, a)

	case AssertConstant:
		id, err := addTerm(p, a.Term)
		if err != nil {
			return err.Error()
		}
		c, err := p.Constant(id)
		if err != nil {
			return err.Error()
		}
		if c == nil {
			return "no constant"
		}
		return compare(a.Expect, c.String())

	case AssertStopReason:
		return compare(a.Expect, string(res.Report.StopReason))

	case AssertSorts:
		best, err := lang.ParseTerm(res.Best)
		if err != nil {
			return err.Error()
		}
		_, err = sorts.CheckProgram(best)
		switch {
		case a.Expect == "" && err != nil:
			return err.Error()
		case a.Expect != "" && err == nil:
			return fmt.Sprintf("program is well sorted, want error containing %q", a.Expect)
		case a.Expect != "" && !strings.Contains(err.Error(), a.Expect):
			return fmt.Sprintf("error %q does not contain %q", err, a.Expect)
		}
	}
	return ""
}

func checkExplanation(p *program.Program, a Assertion) string {
	lhs, rhs, err := parsePair(a)
	if err != nil {
		return err.Error()
	}
	e, err := p.ExplainEquivalence(lhs, rhs)
	if errors.Is(err, egraph.ErrNotEquivalent) {
		return "terms are not equivalent"
	}
	if err != nil {
		return err.Error()
	}
	if a.Rule != "" && !usesRule(e, a.Rule) {
		return fmt.Sprintf("explanation does not use rule %s:\n%s", a.Rule, e)
	}
	return ""
}

func usesRule(e *egraph.Explanation, name string) bool {
	for _, s := range e.Steps {
		if s.Justification == egraph.Rule(name) {
			return true
		}
		for _, c := range s.Children {
			if usesRule(c, name) {
				return true
			}
		}
	}
	return false
}

func parsePair(a Assertion) (*lang.Term, *lang.Term, error) {
	lhs, err := lang.ParseTerm(a.Lhs)
	if err != nil {
		return nil, nil, fmt.Errorf("lhs: %w", err)
	}
	rhs, err := lang.ParseTerm(a.Rhs)
	if err != nil {
		return nil, nil, fmt.Errorf("rhs: %w", err)
	}
	return lhs, rhs, nil
}

func addTerm(p *program.Program, src string) (lang.Id, error) {
	t, err := lang.ParseTerm(src)
	if err != nil {
		return 0, err
	}
	return p.AddTerm(t)
}

func compare(want, got string) string {
	if want != got {
		return fmt.Sprintf("got %s, want %s", got, want)
	}
	return ""
}
