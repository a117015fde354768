package egraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/testutil"
)

func TestNewRewriteRejectsUnboundVariable(t *testing.T) {
	_, err := NewRewrite("bad", lang.MustParseTerm(not("?x")), lang.MustParseTerm("?y"))
	assert.ErrorIs(t, err, ErrUnboundVariable)

	rw, err := NewRewrite("ok", lang.MustParseTerm(not(not("?x"))), lang.MustParseTerm("?x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"?x"}, rw.Lhs.Vars())
	assert.Equal(t, "ok: "+not(not("?x"))+" => ?x", rw.String())
}

func TestPatternSearch(t *testing.T) {
	g := New()
	a := ins(t, g, add(call("a"), intv("0")))
	b := ins(t, g, add(call("b"), intv("0")))
	ins(t, g, add(call("c"), intv("1")))
	rebuild(t, g)

	p := NewPattern(lang.MustParseTerm(add("?x", intv("0"))))
	matches := p.Search(g)
	require.Len(t, matches, 2)
	assert.Equal(t, g.Find(a), matches[0].Class)
	assert.Equal(t, g.Find(b), matches[1].Class)
	assert.Equal(t, g.Find(ins(t, g, call("a"))), matches[0].Substs[0]["?x"])
}

func TestPatternRepeatedVariable(t *testing.T) {
	g := New()
	same := ins(t, g, list("a", "a"))
	ins(t, g, list("a", "b"))
	rebuild(t, g)

	p := NewPattern(lang.MustParseTerm(list("?x", "?x")))
	matches := p.Search(g)
	require.Len(t, matches, 1)
	assert.Equal(t, g.Find(same), matches[0].Class)
}

func TestPatternRestPlaceholder(t *testing.T) {
	g := New()
	long := ins(t, g, add("a", "b", "c"))
	rebuild(t, g)

	src := "(marlang.operator.int.+ (marlang.meta.cons a " + lang.RestSymbol + "))"
	p := NewPattern(lang.MustParseTerm(src))
	m, ok := p.SearchClass(g, long)
	require.True(t, ok)
	rest := m.Substs[0][lang.RestSymbol]
	ids, err := g.Decompose(rest)
	require.NoError(t, err)
	assert.Len(t, ids, 2, "rest binds the remaining cells")
}

func TestSimplifyAddZero(t *testing.T) {
	g := New()
	inner := add(call("y"), intv("0"))
	root := ins(t, g, gt(inner, intv("0")))
	other := ins(t, g, not(call("z")))

	rep, err := Simplify(g, []*Rewrite{addZero(t)}, 30)
	require.NoError(t, err)

	assert.Equal(t, StopSaturated, rep.StopReason)
	assert.Equal(t, 1, rep.Iterations[0].Applied["add-zero"])
	assert.Equal(t, gt(call("y"), intv("0")), best(g, root))
	assert.Equal(t, not(call("z")), best(g, other), "unrelated structure is untouched")
}

func TestRunnerIterationLimit(t *testing.T) {
	g := New()
	ins(t, g, add(call("y"), intv("0")))

	rep, err := NewRunner(g, WithIterLimit(1)).Run([]*Rewrite{addZero(t)})
	require.NoError(t, err)
	assert.Equal(t, StopIterationLimit, rep.StopReason)
	assert.Len(t, rep.Iterations, 1)

	rep, err = NewRunner(g, WithIterLimit(0)).Run([]*Rewrite{addZero(t)})
	require.NoError(t, err)
	assert.Equal(t, StopIterationLimit, rep.StopReason)
	assert.Empty(t, rep.Iterations)
}

func TestRunnerNodeLimit(t *testing.T) {
	g := New()
	ins(t, g, not("a"))
	grow := rule(t, "grow", "?x", nary("marlang.operator.core.and", "?x", "?x"))

	rep, err := NewRunner(g, WithNodeLimit(50), WithIterLimit(1000)).Run([]*Rewrite{grow})
	require.NoError(t, err)
	assert.Equal(t, StopNodeLimit, rep.StopReason)
	assert.Greater(t, rep.Nodes, 50)
}

func TestRunnerTimeLimit(t *testing.T) {
	g := New()
	ins(t, g, not("a"))
	grow := rule(t, "grow", "?x", nary("marlang.operator.core.and", "?x", "?x"))

	clock := testutil.NewStepClock(time.Unix(0, 0), time.Second)

	rep, err := NewRunner(g,
		WithTimeLimit(1500*time.Millisecond),
		WithIterLimit(1000),
		WithNodeLimit(1_000_000),
		WithClock(clock.Now),
	).Run([]*Rewrite{grow})
	require.NoError(t, err)
	assert.Equal(t, StopTimeLimit, rep.StopReason)
	assert.Len(t, rep.Iterations, 1)
}

func TestRewriteNeverSplitsClasses(t *testing.T) {
	g := New()
	a := ins(t, g, add(call("a"), intv("0")))
	b := ins(t, g, not(call("a")))
	c := ins(t, g, not(call("b")))
	g.Union(b, c, Asserted())
	rebuild(t, g)

	before := [][2]lang.Id{{b, c}, {a, a}}
	_, err := Simplify(g, []*Rewrite{addZero(t), rule(t, "dbl", not("?x"), not(not(not("?x"))))}, 4)
	require.NoError(t, err)

	for _, pair := range before {
		assert.True(t, g.Equiv(pair[0], pair[1]))
	}
	assert.True(t, g.Equiv(a, ins(t, g, call("a"))))
}

func TestRunnerReportsConstantConflict(t *testing.T) {
	g := New()
	ins(t, g, add(intv("1"), intv("1")))
	bad := rule(t, "bad", add(intv("1"), intv("1")), intv("3"))

	rep, err := NewRunner(g).Run([]*Rewrite{bad})
	require.Error(t, err)
	assert.True(t, IsConstantConflict(err))
	assert.Equal(t, StopError, rep.StopReason)
}

type fakeRecorder struct {
	iterations int
	stops      []StopReason
}

func (f *fakeRecorder) ObserveIteration(Iteration) { f.iterations++ }

func (f *fakeRecorder) ObserveStop(r StopReason, _ time.Duration) {
	f.stops = append(f.stops, r)
}

func TestRunnerRecorder(t *testing.T) {
	g := New()
	ins(t, g, add(call("y"), intv("0")))
	rec := &fakeRecorder{}

	rep, err := NewRunner(g, WithRecorder(rec)).Run([]*Rewrite{addZero(t)})
	require.NoError(t, err)
	assert.Equal(t, len(rep.Iterations), rec.iterations)
	assert.Equal(t, []StopReason{StopSaturated}, rec.stops)
	assert.Equal(t, 1, rep.TotalUnions())
}
