package program

import "github.com/marlang/marlang/internal/lang"

// SetLogic builds and commits a set-logic command.
func (p *Program) SetLogic(logic string) lang.Id {
	return p.Commit(p.MkSetLogic(logic))
}

// CheckSat builds and commits a check-sat command.
func (p *Program) CheckSat() lang.Id {
	return p.Commit(p.MkCheckSat())
}

// Assert builds and commits an assert command.
func (p *Program) Assert(expr lang.Id) lang.Id {
	return p.Commit(p.MkAssert(expr))
}

// DeclareConst commits a zero-parameter declare-fun and returns it, so the
// result can be referenced with MkCall.
func (p *Program) DeclareConst(name string, sort lang.Id) lang.Id {
	return p.Commit(p.MkDeclareConst(name, sort))
}

// DeclareFun builds and commits a declare-fun command.
func (p *Program) DeclareFun(name string, params []lang.Id, sort lang.Id) lang.Id {
	return p.Commit(p.MkDeclareFun(name, params, sort))
}

// DefineFun builds and commits a define-fun command.
func (p *Program) DefineFun(name string, params []Param, sort, body lang.Id) lang.Id {
	return p.Commit(p.MkDefineFun(name, params, sort, body))
}
