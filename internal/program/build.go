package program

import (
	"strconv"

	"github.com/marlang/marlang/internal/lang"
)

// Binding is one (name value) pair of a let.
type Binding struct {
	Name  string
	Value lang.Id
}

// Param is one (name sort) pair of a define-fun.
type Param struct {
	Name string
	Sort lang.Id
}

func (p *Program) node(op lang.Op, children ...lang.Id) lang.Id {
	return p.g.Insert(lang.NewNode(op, children...))
}

func (p *Program) nary(op lang.Op, args []lang.Id) lang.Id {
	return p.node(op, p.Fold(args...))
}

// MkSymbol inserts a bare symbol.
func (p *Program) MkSymbol(name string) lang.Id {
	return p.g.Insert(lang.Sym(name))
}

// MkRest inserts the rest placeholder symbol.
func (p *Program) MkRest() lang.Id {
	return p.MkSymbol(lang.RestSymbol)
}

// MkNil inserts the empty list.
func (p *Program) MkNil() lang.Id { return p.node(lang.OpNil) }

// MkCons inserts one list cell.
func (p *Program) MkCons(head, tail lang.Id) lang.Id { return p.node(lang.OpCons, head, tail) }

// MkCall references a definition (a declare-fun or define-fun node, or a
// bound name symbol) applied to args.
func (p *Program) MkCall(def lang.Id, args ...lang.Id) lang.Id {
	return p.node(lang.OpCall, def, p.Fold(args...))
}

// Sorts.

// MkBoolSort inserts the Bool sort marker.
func (p *Program) MkBoolSort() lang.Id { return p.node(lang.OpBoolSort) }

// MkIntSort inserts the Int sort marker.
func (p *Program) MkIntSort() lang.Id { return p.node(lang.OpIntSort) }

// MkRealSort inserts the Real sort marker.
func (p *Program) MkRealSort() lang.Id { return p.node(lang.OpRealSort) }

// MkStringSort inserts the String sort marker.
func (p *Program) MkStringSort() lang.Id { return p.node(lang.OpStringSort) }

// Literals. The literal text is held by a symbol child.

// MkBool builds a boolean literal.
func (p *Program) MkBool(v bool) lang.Id {
	return p.node(lang.OpBoolVal, p.MkSymbol(strconv.FormatBool(v)))
}

// MkInt builds an integer literal.
func (p *Program) MkInt(v int64) lang.Id {
	return p.MkIntLiteral(strconv.FormatInt(v, 10))
}

// MkIntLiteral builds an integer literal from its decimal text, which may be
// arbitrarily large.
func (p *Program) MkIntLiteral(text string) lang.Id {
	return p.node(lang.OpIntVal, p.MkSymbol(text))
}

// MkRealLiteral builds a real literal from its decimal text.
func (p *Program) MkRealLiteral(text string) lang.Id {
	return p.node(lang.OpRealVal, p.MkSymbol(text))
}

// MkString builds a string literal.
func (p *Program) MkString(v string) lang.Id {
	return p.node(lang.OpStringVal, p.MkSymbol(v))
}

// Integer operators.

// MkIntAdd builds integer addition over args.
func (p *Program) MkIntAdd(args ...lang.Id) lang.Id { return p.nary(lang.OpIntAdd, args) }

// MkIntSub builds integer subtraction, or negation with one arg.
func (p *Program) MkIntSub(args ...lang.Id) lang.Id { return p.nary(lang.OpIntSub, args) }

// MkIntMul builds integer multiplication over args.
func (p *Program) MkIntMul(args ...lang.Id) lang.Id { return p.nary(lang.OpIntMul, args) }

// MkIntGt builds the chained integer comparison >.
func (p *Program) MkIntGt(args ...lang.Id) lang.Id { return p.nary(lang.OpIntGt, args) }

// MkIntGe builds the chained integer comparison >=.
func (p *Program) MkIntGe(args ...lang.Id) lang.Id { return p.nary(lang.OpIntGe, args) }

// MkIntLt builds the chained integer comparison <.
func (p *Program) MkIntLt(args ...lang.Id) lang.Id { return p.nary(lang.OpIntLt, args) }

// MkIntLe builds the chained integer comparison <=.
func (p *Program) MkIntLe(args ...lang.Id) lang.Id { return p.nary(lang.OpIntLe, args) }

// Real operators.

// MkRealAdd builds real addition over args.
func (p *Program) MkRealAdd(args ...lang.Id) lang.Id { return p.nary(lang.OpRealAdd, args) }

// MkRealSub builds real subtraction, or negation with one arg.
func (p *Program) MkRealSub(args ...lang.Id) lang.Id { return p.nary(lang.OpRealSub, args) }

// MkRealMul builds real multiplication over args.
func (p *Program) MkRealMul(args ...lang.Id) lang.Id { return p.nary(lang.OpRealMul, args) }

// MkRealDiv builds real division over args.
func (p *Program) MkRealDiv(args ...lang.Id) lang.Id { return p.nary(lang.OpRealDiv, args) }

// MkRealGt builds the chained real comparison >.
func (p *Program) MkRealGt(args ...lang.Id) lang.Id { return p.nary(lang.OpRealGt, args) }

// MkRealGe builds the chained real comparison >=.
func (p *Program) MkRealGe(args ...lang.Id) lang.Id { return p.nary(lang.OpRealGe, args) }

// MkRealLt builds the chained real comparison <.
func (p *Program) MkRealLt(args ...lang.Id) lang.Id { return p.nary(lang.OpRealLt, args) }

// MkRealLe builds the chained real comparison <=.
func (p *Program) MkRealLe(args ...lang.Id) lang.Id { return p.nary(lang.OpRealLe, args) }

// Core operators.

// MkConcat builds string concatenation.
func (p *Program) MkConcat(args ...lang.Id) lang.Id { return p.nary(lang.OpConcat, args) }

// MkAnd builds a conjunction.
func (p *Program) MkAnd(args ...lang.Id) lang.Id { return p.nary(lang.OpAnd, args) }

// MkOr builds a disjunction.
func (p *Program) MkOr(args ...lang.Id) lang.Id { return p.nary(lang.OpOr, args) }

// MkXor builds an exclusive or.
func (p *Program) MkXor(args ...lang.Id) lang.Id { return p.nary(lang.OpXor, args) }

// MkEq builds the chained equality =.
func (p *Program) MkEq(args ...lang.Id) lang.Id { return p.nary(lang.OpEq, args) }

// MkNot builds a negation.
func (p *Program) MkNot(x lang.Id) lang.Id { return p.node(lang.OpNot, x) }

// MkImplies builds premise => conclusion.
func (p *Program) MkImplies(premise, conclusion lang.Id) lang.Id {
	return p.node(lang.OpImplies, premise, conclusion)
}

// MkIte builds if-then-else.
func (p *Program) MkIte(cond, then, els lang.Id) lang.Id {
	return p.node(lang.OpIte, cond, then, els)
}

// MkLet binds each name to its value in body. Bindings become a list of
// (name value) lists.
func (p *Program) MkLet(bindings []Binding, body lang.Id) lang.Id {
	pairs := make([]lang.Id, len(bindings))
	for i, b := range bindings {
		pairs[i] = p.Fold(p.MkSymbol(b.Name), b.Value)
	}
	return p.node(lang.OpLet, p.Fold(pairs...), body)
}

// Commands. The Mk forms only build the node; the unprefixed forms in
// commands.go also commit it.

// MkSetLogic builds a set-logic command.
func (p *Program) MkSetLogic(logic string) lang.Id {
	return p.node(lang.OpSetLogic, p.MkSymbol(logic))
}

// MkCheckSat builds a check-sat command.
func (p *Program) MkCheckSat() lang.Id { return p.node(lang.OpCheckSat) }

// MkAssert builds an assert command.
func (p *Program) MkAssert(expr lang.Id) lang.Id { return p.node(lang.OpAssert, expr) }

// MkDeclareConst is declare-fun with no parameters.
func (p *Program) MkDeclareConst(name string, sort lang.Id) lang.Id {
	return p.MkDeclareFun(name, nil, sort)
}

// MkDeclareFun builds a declare-fun with the given parameter sorts.
func (p *Program) MkDeclareFun(name string, params []lang.Id, sort lang.Id) lang.Id {
	return p.node(lang.OpDeclareFun, p.MkSymbol(name), p.Fold(params...), sort)
}

// MkDefineFun builds a define-fun whose params are in scope in body.
func (p *Program) MkDefineFun(name string, params []Param, sort, body lang.Id) lang.Id {
	pairs := make([]lang.Id, len(params))
	for i, prm := range params {
		pairs[i] = p.Fold(p.MkSymbol(prm.Name), prm.Sort)
	}
	return p.node(lang.OpDefineFun, p.MkSymbol(name), p.Fold(pairs...), sort, body)
}
