package leda

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/program"
)

func graph(nodes []string, edges []string) string {
	var b strings.Builder
	b.WriteString("LEDA.GRAPH\nstring\nstring\n-1\n\n# Nodes Section\n")
	fmt.Fprintf(&b, "%d\n", len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(&b, "|{%s}|\n", n)
	}
	fmt.Fprintf(&b, "\n# Edges Section\n%d\n", len(edges))
	for _, e := range edges {
		b.WriteString(e + " 0 |{child}|\n")
	}
	return b.String()
}

func TestWriteGolden(t *testing.T) {
	term := lang.MustParseTerm("(marlang.command.assert (marlang.operator.core.not (marlang.function.call x marlang.meta.nil)))")
	out, err := Marshal(term)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "assert_not_call", []byte(out))
}

func TestRoundTrip(t *testing.T) {
	p := program.New()
	p.SetLogic("QF_LRA")
	x := p.DeclareConst("x", p.MkRealSort())
	sum := p.MkRealAdd(p.MkCall(x), p.MkRealLiteral("1.5"), p.MkInt(2))
	p.Assert(p.MkIte(p.MkRealGt(sum, p.MkInt(0)), p.MkBool(true), p.MkNot(p.MkBool(false))))
	p.CheckSat()
	src := p.ExtractAny()

	text, err := Marshal(src)
	require.NoError(t, err)
	back, err := Unmarshal(text)
	require.NoError(t, err)
	assert.True(t, src.Equal(back))
	assert.Equal(t, src.Len(), back.Len())
}

func TestReadLegacyDeclareConst(t *testing.T) {
	text := graph(
		[]string{"y", "marlang.sort.int", "marlang.command.declare-const"},
		[]string{"3 2", "3 1"},
	)
	term, err := Unmarshal(text)
	require.NoError(t, err)
	assert.Equal(t, "(marlang.command.declare-fun y marlang.meta.nil marlang.sort.int)", term.String())
}

func TestReadUnknownTagIsSymbol(t *testing.T) {
	term, err := Unmarshal(graph([]string{"my.custom.name"}, nil))
	require.NoError(t, err)
	require.Equal(t, 1, term.Len())
	assert.Equal(t, lang.Sym("my.custom.name"), term.Node(0))
}

func TestReadEmptyGraph(t *testing.T) {
	term, err := Unmarshal(graph(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, term.Len())
}

func TestReadSkipsCommentsAndCRLF(t *testing.T) {
	text := strings.ReplaceAll(graph([]string{"a"}, nil), "\n", "\r\n")
	term, err := Unmarshal("# leading comment\n" + text)
	require.NoError(t, err)
	assert.Equal(t, "a", term.String())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		line    int
		state   string
		message string
	}{
		{
			name:    "bad header",
			text:    "GRAPH\n",
			line:    1,
			state:   "expect_leda",
			message: `expected "LEDA.GRAPH", got "GRAPH"`,
		},
		{
			name:    "missing dash",
			text:    "LEDA.GRAPH\nstring\nstring\n0\n",
			line:    4,
			state:   "expect_dash1",
			message: `expected "-1", got "0"`,
		},
		{
			name:    "bad count",
			text:    "LEDA.GRAPH\nstring\nstring\n-1\nmany\n",
			line:    5,
			state:   "expect_nodes_number",
			message: `invalid count "many"`,
		},
		{
			name:    "fewer nodes than counted",
			text:    "LEDA.GRAPH\nstring\nstring\n-1\n2\n|{a}|\n0\n",
			line:    7,
			state:   "expect_nodes",
			message: `label "0" must start with |{`,
		},
		{
			name:    "truncated",
			text:    "LEDA.GRAPH\nstring\nstring\n-1\n1\n",
			line:    5,
			state:   "expect_nodes",
			message: "unexpected end of input",
		},
		{
			name:    "trailing line",
			text:    graph([]string{"a"}, nil) + "extra\n",
			line:    12,
			state:   "done",
			message: `unexpected line "extra" after the edge section`,
		},
		{
			name:    "edge out of range",
			text:    graph([]string{"a"}, []string{"1 2"}),
			line:    12,
			state:   "expect_edges",
			message: "edge 1 -> 2 out of range for 1 nodes",
		},
		{
			name:    "arity mismatch",
			text:    graph([]string{"marlang.operator.core.not"}, nil),
			line:    8,
			state:   "expect_nodes",
			message: "marlang.operator.core.not takes 1 children, got 0",
		},
		{
			name:    "forward reference",
			text:    graph([]string{"marlang.operator.core.not", "a"}, []string{"1 2"}),
			line:    13,
			state:   "expect_nodes",
			message: "child 2 of node 1 is not an earlier node",
		},
		{
			name:    "symbol with children",
			text:    graph([]string{"a", "b"}, []string{"2 1"}),
			line:    9,
			state:   "expect_nodes",
			message: `symbol "b" has 1 children`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.text)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.state, perr.State)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}

func TestWriteRejectsLineBreak(t *testing.T) {
	term := lang.NewTerm()
	term.Add(lang.Sym("two\nlines"))
	_, err := Marshal(term)
	assert.Error(t, err)
}
