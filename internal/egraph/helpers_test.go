package egraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/lang"
)

// s-expression helpers for the marlang vocabulary.

func list(elems ...string) string {
	out := "marlang.meta.nil"
	for i := len(elems) - 1; i >= 0; i-- {
		out = "(marlang.meta.cons " + elems[i] + " " + out + ")"
	}
	return out
}

func intv(v string) string  { return "(marlang.value.int " + v + ")" }
func realv(v string) string { return "(marlang.value.real " + v + ")" }
func call(name string) string {
	return "(marlang.function.call " + name + " marlang.meta.nil)"
}

func nary(op string, elems ...string) string {
	return "(" + op + " " + list(elems...) + ")"
}

func add(elems ...string) string { return nary("marlang.operator.int.+", elems...) }
func gt(elems ...string) string  { return nary("marlang.operator.int.>", elems...) }
func not(e string) string        { return "(marlang.operator.core.not " + e + ")" }

func let(bindings []string, body string) string {
	return "(marlang.operator.core.let " + list(bindings...) + " " + body + ")"
}

func ins(t *testing.T, g *EGraph, src string) lang.Id {
	t.Helper()
	term, err := lang.ParseTerm(src)
	require.NoError(t, err, src)
	return g.InsertTerm(term)
}

func rebuild(t *testing.T, g *EGraph) {
	t.Helper()
	_, err := g.Rebuild()
	require.NoError(t, err)
}

func rule(t *testing.T, name, lhs, rhs string) *Rewrite {
	t.Helper()
	rw, err := NewRewrite(name, lang.MustParseTerm(lhs), lang.MustParseTerm(rhs))
	require.NoError(t, err)
	return rw
}

func addZero(t *testing.T) *Rewrite {
	return rule(t, "add-zero", add("?x", intv("0")), "?x")
}

func best(g *EGraph, id lang.Id) string {
	_, term := NewExtractor(g, AstSize{}).FindBest(id)
	return term.String()
}

// catch runs f and returns any *InvariantError it panicked with.
func catch(f func()) (err error) {
	defer Recover(&err)
	f()
	return nil
}
