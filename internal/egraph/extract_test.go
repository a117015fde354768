package egraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAstSizeCost(t *testing.T) {
	g := New()
	id := ins(t, g, not(call("x")))
	rebuild(t, g)

	cost, term := NewExtractor(g, AstSize{}).FindBest(id)
	assert.Equal(t, uint64(4), cost, "not, call, x, nil")
	assert.Equal(t, not(call("x")), term.String())
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, uint64(3), saturatingAdd(1, 2))
	assert.Equal(t, uint64(math.MaxUint64), saturatingAdd(math.MaxUint64-1, 5))
}

func TestExtractorPrefersSmaller(t *testing.T) {
	g := New()
	big := ins(t, g, not(not(call("x"))))
	small := ins(t, g, call("x"))
	g.Union(big, small, Asserted())
	rebuild(t, g)

	assert.Equal(t, call("x"), best(g, big))
}

func TestExtractorTieBreaksByInsertion(t *testing.T) {
	g := New()
	first := ins(t, g, "b")
	second := ins(t, g, "a")
	g.Union(second, first, Asserted())
	rebuild(t, g)

	assert.Equal(t, "b", best(g, second), "earliest inserted shape wins a tie")
}

func TestExtractorFoldedConstant(t *testing.T) {
	g := New()
	id := ins(t, g, add(intv("2"), intv("3")))
	rebuild(t, g)

	assert.Equal(t, intv("5"), best(g, id))
	assert.Equal(t, add(intv("2"), intv("3")), g.Term(id).String(), "as-built form is kept")
}

func TestExtractionDeterministic(t *testing.T) {
	g := New()
	root := ins(t, g, gt(add(call("y"), intv("0")), add(call("z"), intv("0"))))
	_, err := Simplify(g, []*Rewrite{
		addZero(t),
		rule(t, "comm", add("?a", "?b"), add("?b", "?a")),
	}, 10)
	require.NoError(t, err)

	ex := NewExtractor(g, AstSize{})
	c1, t1 := ex.FindBest(root)
	c2, t2 := ex.FindBest(root)
	assert.Equal(t, c1, c2)
	assert.Equal(t, t1.String(), t2.String())

	assert.Equal(t, best(g, root), best(g, root), "fresh extractors agree")
	assert.Equal(t, gt(call("y"), call("z")), t1.String())
}

func TestExtractorCyclicClass(t *testing.T) {
	g := New()
	x := ins(t, g, "x")
	fx := ins(t, g, not("x"))
	g.Union(x, fx, Asserted())
	rebuild(t, g)

	cost, term := NewExtractor(g, AstSize{}).FindBest(fx)
	assert.Equal(t, uint64(1), cost)
	assert.Equal(t, "x", term.String())

	_, ok := NewExtractor(g, AstSize{}).FindBestCost(fx)
	assert.True(t, ok)
}
