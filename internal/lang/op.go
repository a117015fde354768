package lang

import "strconv"

// Op identifies the shape of a node.
type Op uint8

// Enumeration of node shapes. Symbol must stay last.
const (
	OpCall Op = iota

	OpIntAdd
	OpIntSub
	OpIntMul
	OpIntGt
	OpIntGe
	OpIntLt
	OpIntLe

	OpRealAdd
	OpRealSub
	OpRealMul
	OpRealDiv
	OpRealGt
	OpRealGe
	OpRealLt
	OpRealLe

	OpConcat

	OpAnd
	OpOr
	OpXor
	OpLet
	OpEq

	OpNot
	OpImplies
	OpIte

	OpSetLogic
	OpCheckSat
	OpAssert
	OpDeclareFun
	OpDefineFun

	OpCons
	OpNil

	OpBoolSort
	OpIntSort
	OpRealSort
	OpStringSort

	OpBoolVal
	OpIntVal
	OpRealVal
	OpStringVal

	OpSymbol
)

// MaxArity is the largest number of children any node carries.
const MaxArity = 4

type opInfo struct {
	tag   string
	arity int
}

var opTable = [...]opInfo{
	OpCall: {"marlang.function.call", 2},

	OpIntAdd: {"marlang.operator.int.+", 1},
	OpIntSub: {"marlang.operator.int.-", 1},
	OpIntMul: {"marlang.operator.int.*", 1},
	OpIntGt:  {"marlang.operator.int.>", 1},
	OpIntGe:  {"marlang.operator.int.>=", 1},
	OpIntLt:  {"marlang.operator.int.<", 1},
	OpIntLe:  {"marlang.operator.int.<=", 1},

	OpRealAdd: {"marlang.operator.real.+", 1},
	OpRealSub: {"marlang.operator.real.-", 1},
	OpRealMul: {"marlang.operator.real.*", 1},
	OpRealDiv: {"marlang.operator.real./", 1},
	OpRealGt:  {"marlang.operator.real.>", 1},
	OpRealGe:  {"marlang.operator.real.>=", 1},
	OpRealLt:  {"marlang.operator.real.<", 1},
	OpRealLe:  {"marlang.operator.real.<=", 1},

	OpConcat: {"marlang.operator.str.++", 1},

	OpAnd: {"marlang.operator.core.and", 1},
	OpOr:  {"marlang.operator.core.or", 1},
	OpXor: {"marlang.operator.core.xor", 1},
	OpLet: {"marlang.operator.core.let", 2},
	OpEq:  {"marlang.operator.core.=", 1},

	OpNot:     {"marlang.operator.core.not", 1},
	OpImplies: {"marlang.operator.core.=>", 2},
	OpIte:     {"marlang.operator.core.ite", 3},

	OpSetLogic:   {"marlang.command.set-logic", 1},
	OpCheckSat:   {"marlang.command.check-sat", 0},
	OpAssert:     {"marlang.command.assert", 1},
	OpDeclareFun: {"marlang.command.declare-fun", 3},
	OpDefineFun:  {"marlang.command.define-fun", 4},

	OpCons: {"marlang.meta.cons", 2},
	OpNil:  {"marlang.meta.nil", 0},

	OpBoolSort:   {"marlang.sort.bool", 0},
	OpIntSort:    {"marlang.sort.int", 0},
	OpRealSort:   {"marlang.sort.real", 0},
	OpStringSort: {"marlang.sort.string", 0},

	OpBoolVal:   {"marlang.value.bool", 1},
	OpIntVal:    {"marlang.value.int", 1},
	OpRealVal:   {"marlang.value.real", 1},
	OpStringVal: {"marlang.value.string", 1},

	OpSymbol: {"", 0},
}

var tagToOp = func() map[string]Op {
	m := make(map[string]Op, len(opTable))
	for op, info := range opTable {
		if info.tag != "" {
			m[info.tag] = Op(op)
		}
	}
	return m
}()

// LookupTag maps a dotted tag to its Op. Unknown tags are not an error:
// callers treat them as bare symbols.
func LookupTag(tag string) (Op, bool) {
	op, ok := tagToOp[tag]
	return op, ok
}

// Valid reports whether op is part of the vocabulary.
func (op Op) Valid() bool {
	return int(op) < len(opTable)
}

// Arity returns the fixed number of children for op.
func (op Op) Arity() int {
	if !op.Valid() {
		return 0
	}
	return opTable[op].arity
}

// Tag returns the dotted tag, or "" for OpSymbol.
func (op Op) Tag() string {
	if !op.Valid() {
		return ""
	}
	return opTable[op].tag
}

func (op Op) String() string {
	if op == OpSymbol {
		return "symbol"
	}
	if !op.Valid() {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opTable[op].tag
}

// IsNary reports whether op takes its operands as a single list child.
func (op Op) IsNary() bool {
	return op >= OpIntAdd && op <= OpEq && op != OpLet
}

// IsCommand reports whether op is a top-level command shape.
func (op Op) IsCommand() bool {
	return op >= OpSetLogic && op <= OpDefineFun
}

// IsList reports whether op is a list cell (cons or nil).
func (op Op) IsList() bool {
	return op == OpCons || op == OpNil
}

// IsSort reports whether op is a sort marker.
func (op Op) IsSort() bool {
	return op >= OpBoolSort && op <= OpStringSort
}

// IsValue reports whether op is a literal wrapper.
func (op Op) IsValue() bool {
	return op >= OpBoolVal && op <= OpStringVal
}
