// Package sorts infers the sort of marlang expressions over an extracted
// term.
//
// Inference never touches the e-graph. It walks a lang.Term, decomposing
// operand lists and resolving names through a Scope stack that the caller
// (or CheckProgram) maintains.
package sorts

import (
	"fmt"

	"github.com/marlang/marlang/internal/lang"
)

// Sort is the sort of an expression.
type Sort uint8

const (
	Unknown Sort = iota
	Bool
	Int
	Real
	String
)

func (s Sort) String() string {
	switch s {
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Real:
		return "Real"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// Op returns the sort marker operator for s.
func (s Sort) Op() lang.Op {
	switch s {
	case Bool:
		return lang.OpBoolSort
	case Int:
		return lang.OpIntSort
	case Real:
		return lang.OpRealSort
	case String:
		return lang.OpStringSort
	}
	panic(fmt.Sprintf("sorts: no marker for %s", s))
}

// FromOp maps a sort marker operator to its sort.
func FromOp(op lang.Op) (Sort, bool) {
	switch op {
	case lang.OpBoolSort:
		return Bool, true
	case lang.OpIntSort:
		return Int, true
	case lang.OpRealSort:
		return Real, true
	case lang.OpStringSort:
		return String, true
	}
	return Unknown, false
}

// Signature is the sort of a declared or defined function.
type Signature struct {
	Params []Sort
	Result Sort
}

func (s Signature) String() string {
	return fmt.Sprintf("%v -> %s", s.Params, s.Result)
}

// Error reports an ill-sorted expression.
type Error struct {
	Term    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sort error: %s in %s", e.Message, e.Term)
}

// Scope is a stack of name bindings. Inner frames shadow outer ones.
type Scope struct {
	frames []map[string]Sort
}

// NewScope returns a scope with one empty frame.
func NewScope() *Scope {
	return &Scope{frames: []map[string]Sort{{}}}
}

func (s *Scope) Push() {
	s.frames = append(s.frames, map[string]Sort{})
}

// Pop drops the innermost frame. The outermost frame is never dropped.
func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Bind binds name in the innermost frame.
func (s *Scope) Bind(name string, sort Sort) {
	s.frames[len(s.frames)-1][name] = sort
}

func (s *Scope) Lookup(name string) (Sort, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if sort, ok := s.frames[i][name]; ok {
			return sort, true
		}
	}
	return Unknown, false
}

// Depth returns the number of frames.
func (s *Scope) Depth() int {
	return len(s.frames)
}
