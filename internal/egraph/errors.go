package egraph

import (
	"errors"
	"fmt"

	"github.com/marlang/marlang/internal/lang"
)

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// CodeConstantConflict indicates a merge brought two different constants
	// into one class.
	CodeConstantConflict InvariantCode = "CONSTANT_CONFLICT"

	// CodeNotAList indicates analysis walked a list that ended in something
	// other than nil or a bare symbol.
	CodeNotAList InvariantCode = "NOT_A_LIST"

	// CodeMalformedBinding indicates a let binding that is not a two element
	// (name value) list.
	CodeMalformedBinding InvariantCode = "MALFORMED_BINDING"
)

// InvariantError reports a broken e-graph invariant. It is raised as a panic
// from deep inside union or analysis and converted to an ordinary error by
// Recover.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// Class is the class being built or merged when the violation was found.
	Class lang.Id
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (class=%d)", e.Code, e.Message, e.Class)
}

// Sentinel errors returned by query operations.
var (
	// ErrNotEquivalent is returned when an explanation is requested for two
	// terms in different classes.
	ErrNotEquivalent = errors.New("terms are not equivalent")

	// ErrExplanationsDisabled is returned by Explain on a graph built without
	// WithExplanations.
	ErrExplanationsDisabled = errors.New("explanations are not enabled")

	// ErrTermNotFound is returned by LookupTerm when some node of the term is
	// not represented in the graph.
	ErrTermNotFound = errors.New("term not found in e-graph")

	// ErrUnboundVariable is returned by NewRewrite when the right-hand side
	// uses a variable the left-hand side does not bind.
	ErrUnboundVariable = errors.New("unbound pattern variable")

	// ErrNotAList is returned by Decompose. It is the same value as
	// lang.ErrNotAList so either can be matched with errors.Is.
	ErrNotAList = lang.ErrNotAList
)

// IsInvariantError returns true if err is or wraps an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsConstantConflict returns true if err is a constant conflict.
// Uses errors.As to handle wrapped errors.
func IsConstantConflict(err error) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == CodeConstantConflict
	}
	return false
}

// Recover converts an *InvariantError panic into *errp. Any other panic is
// re-raised. Use it deferred:
//
//	func (p *Program) Rebuild() (err error) {
//		defer egraph.Recover(&err)
//		...
//	}
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InvariantError); ok {
		*errp = ie
		return
	}
	panic(r)
}

func violation(code InvariantCode, class lang.Id, format string, args ...any) *InvariantError {
	return &InvariantError{Code: code, Message: fmt.Sprintf(format, args...), Class: class}
}
