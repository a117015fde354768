package sorts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/program"
)

func infer(t *testing.T, p *program.Program, id lang.Id) Sort {
	t.Helper()
	s, err := Infer(p.Term(id))
	require.NoError(t, err)
	return s
}

func inferErr(t *testing.T, p *program.Program, id lang.Id) *Error {
	t.Helper()
	_, err := Infer(p.Term(id))
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	return serr
}

func TestIntegerAddition(t *testing.T) {
	p := program.New()
	one := p.MkInt(1)
	x := p.MkCall(p.MkDeclareConst("x", p.MkIntSort()))

	assert.Equal(t, Int, infer(t, p, one))
	assert.Equal(t, Int, infer(t, p, x))
	assert.Equal(t, Int, infer(t, p, p.MkIntAdd(one, x)))
}

func TestRealMultiplication(t *testing.T) {
	p := program.New()
	one := p.MkRealLiteral("1")
	x := p.MkCall(p.MkDeclareConst("x", p.MkRealSort()))

	assert.Equal(t, Real, infer(t, p, one))
	assert.Equal(t, Real, infer(t, p, p.MkRealMul(one, x)))
}

func TestDivisionIsReal(t *testing.T) {
	p := program.New()
	assert.Equal(t, Real, infer(t, p, p.MkRealDiv(p.MkInt(2), p.MkInt(1))))
}

func TestOperatorTable(t *testing.T) {
	p := program.New()
	i, r := p.MkInt(1), p.MkRealLiteral("0.5")
	b, s := p.MkBool(true), p.MkString("hi")

	tests := []struct {
		name string
		id   lang.Id
		want Sort
	}{
		{"int comparison", p.MkIntLe(i, i), Bool},
		{"mixed real comparison", p.MkRealGt(i, r), Bool},
		{"concat", p.MkConcat(s, s), String},
		{"and", p.MkAnd(b, b, b), Bool},
		{"equality", p.MkEq(r, r), Bool},
		{"not", p.MkNot(b), Bool},
		{"implies", p.MkImplies(b, b), Bool},
		{"ite", p.MkIte(b, s, s), String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infer(t, p, tt.id))
		})
	}
}

func TestIllSorted(t *testing.T) {
	p := program.New()
	i, r, b := p.MkInt(1), p.MkRealLiteral("0.5"), p.MkBool(false)

	tests := []struct {
		name    string
		id      lang.Id
		message string
	}{
		{"int op on real", p.MkIntAdd(i, r), "operand 1 of marlang.operator.int.+ has sort Real"},
		{"mixed equality", p.MkEq(i, b), "= compares Int with Bool"},
		{"ite condition", p.MkIte(i, i, i), "expected Bool, got Int"},
		{"ite branches", p.MkIte(b, i, r), "ite branches have sorts Int and Real"},
		{"empty operands", p.MkAnd(), "no operands"},
		{"sort marker", p.MkIntSort(), "marlang.sort.int is not an expression"},
		{"unbound name", p.MkCall(p.MkSymbol("ghost")), "unbound name ghost"},
		{"pattern variable", p.MkNot(p.MkSymbol("?x")), "pattern variable ?x has no sort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, inferErr(t, p, tt.id).Message)
		})
	}
}

func TestLetScopes(t *testing.T) {
	p := program.New()
	a := p.MkSymbol("a")
	body := p.MkIntAdd(p.MkCall(a), p.MkInt(1))
	let := p.MkLet([]program.Binding{{Name: "a", Value: p.MkInt(3)}}, body)
	assert.Equal(t, Int, infer(t, p, let))

	shadow := p.MkLet(
		[]program.Binding{{Name: "a", Value: p.MkBool(true)}},
		p.MkLet([]program.Binding{{Name: "a", Value: p.MkInt(2)}}, p.MkCall(a)),
	)
	assert.Equal(t, Int, infer(t, p, shadow), "inner binding shadows")

	assert.Equal(t, "unbound name a", inferErr(t, p, body).Message, "scope does not leak")
}

func TestCallThroughDeclaration(t *testing.T) {
	p := program.New()
	f := p.MkDeclareFun("f", []lang.Id{p.MkIntSort(), p.MkBoolSort()}, p.MkRealSort())

	assert.Equal(t, Real, infer(t, p, p.MkCall(f, p.MkInt(1), p.MkBool(true))))
	assert.Equal(t, "expected 2 arguments, got 1", inferErr(t, p, p.MkCall(f, p.MkInt(1))).Message)
	assert.Equal(t, "argument 1: expected Bool, got Int", inferErr(t, p, p.MkCall(f, p.MkInt(1), p.MkInt(2))).Message)
}

func TestScopeStack(t *testing.T) {
	s := NewScope()
	s.Bind("x", Int)
	s.Push()
	s.Bind("x", Bool)
	got, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Bool, got)

	s.Pop()
	got, _ = s.Lookup("x")
	assert.Equal(t, Int, got)

	s.Pop()
	assert.Equal(t, 1, s.Depth(), "outermost frame stays")
}

func TestCheckProgram(t *testing.T) {
	p := program.New()
	p.SetLogic("QF_LIA")
	x := p.DeclareConst("x", p.MkIntSort())
	n := p.MkSymbol("n")
	inc := p.DefineFun("inc", []program.Param{{Name: "n", Sort: p.MkIntSort()}}, p.MkIntSort(),
		p.MkIntAdd(p.MkCall(n), p.MkInt(1)))
	p.Assert(p.MkIntGt(p.MkCall(inc, p.MkCall(x)), p.MkInt(0)))
	p.Assert(p.MkIntLt(p.MkCall(p.MkSymbol("inc"), p.MkInt(1)), p.MkInt(5)))
	p.CheckSat()

	sum, err := CheckProgram(p.ExtractAny())
	require.NoError(t, err)
	assert.Equal(t, "QF_LIA", sum.Logic)
	assert.Equal(t, 2, sum.Asserts)
	assert.Equal(t, 1, sum.CheckSats)
	assert.Equal(t, Signature{Params: []Sort{Int}, Result: Int}, sum.Functions["inc"])
	assert.Equal(t, Signature{Params: []Sort{}, Result: Int}, sum.Functions["x"])
}

func TestCheckProgramRejects(t *testing.T) {
	t.Run("non-bool assert", func(t *testing.T) {
		p := program.New()
		p.Assert(p.MkInt(1))
		_, err := CheckProgram(p.ExtractAny())
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "expected Bool, got Int", serr.Message)
	})

	t.Run("define-fun body mismatch", func(t *testing.T) {
		p := program.New()
		p.DefineFun("f", nil, p.MkBoolSort(), p.MkInt(1))
		_, err := CheckProgram(p.ExtractAny())
		require.Error(t, err)
	})

	t.Run("not a command", func(t *testing.T) {
		p := program.New()
		p.Commit(p.MkInt(1))
		_, err := CheckProgram(p.ExtractAny())
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "marlang.value.int is not a command", serr.Message)
	})
}
