package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
)

func TestLoadFile(t *testing.T) {
	rs, err := LoadFile(filepath.Join("testdata", "arith.cue"))
	require.NoError(t, err)

	assert.Equal(t, 10, rs.Iterations)
	require.Len(t, rs.Rules, 3)
	assert.Equal(t, "add-zero", rs.Rules[0].Name)
	assert.Equal(t, "mul-one", rs.Rules[1].Name)
	assert.Equal(t, "not-not", rs.Rules[2].Name)
	assert.Equal(t, "?p", rs.Rules[2].Rhs)

	rws, err := rs.Rewrites()
	require.NoError(t, err)
	require.Len(t, rws, 3)
	assert.Equal(t, "add-zero", rws[0].Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.cue"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRulesSimplify(t *testing.T) {
	rs, err := LoadFile(filepath.Join("testdata", "arith.cue"))
	require.NoError(t, err)
	rws, err := rs.Rewrites()
	require.NoError(t, err)

	g := egraph.New()
	src := "(marlang.operator.core.not (marlang.operator.core.not " +
		"(marlang.operator.int.> (marlang.meta.cons " +
		"(marlang.operator.int.+ (marlang.meta.cons y (marlang.meta.cons (marlang.value.int 0) marlang.meta.nil))) " +
		"(marlang.meta.cons z marlang.meta.nil)))))"
	root := g.InsertTerm(lang.MustParseTerm(src))

	rep, err := egraph.Simplify(g, rws, rs.Iterations)
	require.NoError(t, err)
	assert.Equal(t, egraph.StopSaturated, rep.StopReason)

	_, best := egraph.NewExtractor(g, egraph.AstSize{}).FindBest(root)
	want := "(marlang.operator.int.> (marlang.meta.cons y (marlang.meta.cons z marlang.meta.nil)))"
	assert.Equal(t, want, best.String())
}

func TestParseDefaultIterations(t *testing.T) {
	rs, err := Parse([]byte(`rule: r: {lhs: "(marlang.operator.core.not ?a)", rhs: "?a"}`), "inline.cue")
	require.NoError(t, err)
	assert.Equal(t, DefaultIterations, rs.Iterations)
	assert.Len(t, rs.Rules, 1)
}

func TestParseEmpty(t *testing.T) {
	rs, err := Parse(nil, "empty.cue")
	require.NoError(t, err)
	assert.Empty(t, rs.Rules)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"syntax", `rule: {`, "cue"},
		{"unknown field", `extra: 1`, "cue"},
		{"negative iterations", `iterations: -1`, "cue"},
		{"missing rhs", `rule: r: {lhs: "a"}`, "cue"},
		{"bad lhs", `rule: r: {lhs: "(a", rhs: "b"}`, "rule.r.lhs"},
		{"unbound rhs", `rule: r: {lhs: "a", rhs: "?b"}`, "rule.r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T: %v", err, err)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestRuleSetID(t *testing.T) {
	a := &RuleSet{Iterations: 1, Rules: []Rule{{"r1", "a", "b"}, {"r2", "c", "d"}}}
	b := &RuleSet{Iterations: 9, Rules: []Rule{{"r1", "a", "b"}, {"r2", "c", "d"}}}
	c := &RuleSet{Rules: []Rule{{"r2", "c", "d"}, {"r1", "a", "b"}}}

	ida, err := a.ID()
	require.NoError(t, err)
	idb, err := b.ID()
	require.NoError(t, err)
	idc, err := c.ID()
	require.NoError(t, err)

	assert.Equal(t, ida, idb, "iteration limit is not part of the id")
	assert.NotEqual(t, ida, idc, "rule order is")
	assert.Len(t, ida, 64)
}

func TestLoadErrorFormat(t *testing.T) {
	assert.Equal(t, "rule.x: boom", (&LoadError{Field: "rule.x", Message: "boom"}).Error())
}
