package rules

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/marlang/marlang/internal/canon"
	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
)

//go:embed schema.cue
var schemaSrc string

// DefaultIterations is the round limit of a rule set that does not set one.
const DefaultIterations = 30

// Rule is one named rewrite with both sides as s-expressions.
type Rule struct {
	Name string
	Lhs  string
	Rhs  string
}

// RuleSet is a loaded rule file.
type RuleSet struct {
	Iterations int
	Rules      []Rule
}

// LoadError reports a rule file problem with its CUE position when known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads and compiles the rule set at path.
func LoadFile(path string) (*RuleSet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return Parse(src, path)
}

// Parse compiles CUE source into a rule set. Both sides of every rule are
// parsed and checked, so a returned rule set always compiles to rewrites.
func Parse(src []byte, filename string) (*RuleSet, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("rules schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v = schema.LookupPath(cue.ParsePath("#RuleSet")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// Compile extracts a rule set from a value already unified with the schema.
func Compile(v cue.Value) (*RuleSet, error) {
	iters, err := v.LookupPath(cue.ParsePath("iterations")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rs := &RuleSet{Iterations: int(iters)}

	ruleVal := v.LookupPath(cue.ParsePath("rule"))
	if !ruleVal.Exists() {
		return rs, nil
	}
	iter, err := ruleVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		r, err := compileRule(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}

func compileRule(name string, v cue.Value) (Rule, error) {
	r := Rule{Name: name}
	for _, side := range []struct {
		field string
		dst   *string
	}{{"lhs", &r.Lhs}, {"rhs", &r.Rhs}} {
		fv := v.LookupPath(cue.ParsePath(side.field))
		s, err := fv.String()
		if err != nil {
			return r, formatCUEError(err)
		}
		if _, err := lang.ParseTerm(s); err != nil {
			return r, &LoadError{
				Field:   fmt.Sprintf("rule.%s.%s", name, side.field),
				Message: err.Error(),
				Pos:     fv.Pos(),
			}
		}
		*side.dst = s
	}
	if _, err := r.Rewrite(); err != nil {
		return r, &LoadError{
			Field:   fmt.Sprintf("rule.%s", name),
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return r, nil
}

// Rewrite compiles the rule.
func (r Rule) Rewrite() (*egraph.Rewrite, error) {
	lhs, err := lang.ParseTerm(r.Lhs)
	if err != nil {
		return nil, fmt.Errorf("rule %s: lhs: %w", r.Name, err)
	}
	rhs, err := lang.ParseTerm(r.Rhs)
	if err != nil {
		return nil, fmt.Errorf("rule %s: rhs: %w", r.Name, err)
	}
	return egraph.NewRewrite(r.Name, lhs, rhs)
}

// Rewrites compiles every rule in order.
func (rs *RuleSet) Rewrites() ([]*egraph.Rewrite, error) {
	out := make([]*egraph.Rewrite, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		rw, err := r.Rewrite()
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, nil
}

// ID returns the content id of the rules, in order. The iteration limit is
// not part of it.
func (rs *RuleSet) ID() (string, error) {
	triples := make([][3]string, len(rs.Rules))
	for i, r := range rs.Rules {
		triples[i] = [3]string{r.Name, r.Lhs, r.Rhs}
	}
	return canon.RuleSetID(triples)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		return &LoadError{Field: "cue", Message: first.Error(), Pos: pos[0]}
	}
	return &LoadError{Field: "cue", Message: first.Error()}
}
