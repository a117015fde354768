package sorts

import (
	"fmt"
	"strings"

	"github.com/marlang/marlang/internal/lang"
)

// operandRule types an n-ary operator: every operand must satisfy accepts,
// and the application has sort result.
type operandRule struct {
	accepts func(Sort) bool
	result  Sort
}

func only(want Sort) func(Sort) bool {
	return func(s Sort) bool { return s == want }
}

func numeric(s Sort) bool { return s == Int || s == Real }

var naryRules = map[lang.Op]operandRule{
	lang.OpIntAdd: {only(Int), Int},
	lang.OpIntSub: {only(Int), Int},
	lang.OpIntMul: {only(Int), Int},
	lang.OpIntGt:  {only(Int), Bool},
	lang.OpIntGe:  {only(Int), Bool},
	lang.OpIntLt:  {only(Int), Bool},
	lang.OpIntLe:  {only(Int), Bool},

	lang.OpRealAdd: {numeric, Real},
	lang.OpRealSub: {numeric, Real},
	lang.OpRealMul: {numeric, Real},
	lang.OpRealDiv: {numeric, Real},
	lang.OpRealGt:  {numeric, Bool},
	lang.OpRealGe:  {numeric, Bool},
	lang.OpRealLt:  {numeric, Bool},
	lang.OpRealLe:  {numeric, Bool},

	lang.OpConcat: {only(String), String},
	lang.OpAnd:    {only(Bool), Bool},
	lang.OpOr:     {only(Bool), Bool},
	lang.OpXor:    {only(Bool), Bool},
}

var literalSorts = map[lang.Op]Sort{
	lang.OpBoolVal:   Bool,
	lang.OpIntVal:    Int,
	lang.OpRealVal:   Real,
	lang.OpStringVal: String,
}

// Checker infers sorts over one term.
type Checker struct {
	t     *lang.Term
	scope *Scope
	funcs map[string]Signature
}

// NewChecker returns a checker over t with an empty scope.
func NewChecker(t *lang.Term) *Checker {
	return &Checker{
		t:     t,
		scope: NewScope(),
		funcs: make(map[string]Signature),
	}
}

// Scope returns the checker's scope stack.
func (c *Checker) Scope() *Scope { return c.scope }

// Declare registers a function name so calls by name resolve.
func (c *Checker) Declare(name string, sig Signature) {
	c.funcs[name] = sig
}

// Functions returns the registered signatures.
func (c *Checker) Functions() map[string]Signature {
	out := make(map[string]Signature, len(c.funcs))
	for k, v := range c.funcs {
		out[k] = v
	}
	return out
}

// Infer returns the sort of the expression rooted at id.
func Infer(t *lang.Term) (Sort, error) {
	return NewChecker(t).Infer(t.Root())
}

// Infer returns the sort of the expression at id under the current scope.
func (c *Checker) Infer(id lang.Id) (Sort, error) {
	n := c.t.Node(id)

	if s, ok := literalSorts[n.Op]; ok {
		return s, nil
	}
	if rule, ok := naryRules[n.Op]; ok {
		return c.inferNary(id, n, rule)
	}

	switch n.Op {
	case lang.OpEq:
		ops, err := c.operands(id, n.Args[0])
		if err != nil {
			return Unknown, err
		}
		for _, s := range ops[1:] {
			if s != ops[0] {
				return Unknown, c.errorf(id, "= compares %s with %s", ops[0], s)
			}
		}
		return Bool, nil

	case lang.OpNot:
		if err := c.expect(n.Args[0], Bool); err != nil {
			return Unknown, err
		}
		return Bool, nil

	case lang.OpImplies:
		if err := c.expect(n.Args[0], Bool); err != nil {
			return Unknown, err
		}
		if err := c.expect(n.Args[1], Bool); err != nil {
			return Unknown, err
		}
		return Bool, nil

	case lang.OpIte:
		if err := c.expect(n.Args[0], Bool); err != nil {
			return Unknown, err
		}
		then, err := c.Infer(n.Args[1])
		if err != nil {
			return Unknown, err
		}
		els, err := c.Infer(n.Args[2])
		if err != nil {
			return Unknown, err
		}
		if then != els {
			return Unknown, c.errorf(id, "ite branches have sorts %s and %s", then, els)
		}
		return then, nil

	case lang.OpLet:
		return c.inferLet(id, n)

	case lang.OpCall:
		return c.inferCall(id, n)

	case lang.OpSymbol:
		return c.inferName(id, n.Symbol, nil)
	}

	return Unknown, c.errorf(id, "%s is not an expression", n.Label())
}

func (c *Checker) inferNary(id lang.Id, n lang.Node, rule operandRule) (Sort, error) {
	ops, err := c.operands(id, n.Args[0])
	if err != nil {
		return Unknown, err
	}
	for i, s := range ops {
		if !rule.accepts(s) {
			return Unknown, c.errorf(id, "operand %d of %s has sort %s", i, n.Label(), s)
		}
	}
	return rule.result, nil
}

// operands infers every element of a non-empty operand list.
func (c *Checker) operands(id, list lang.Id) ([]Sort, error) {
	elems, err := c.decompose(id, list)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, c.errorf(id, "no operands")
	}
	out := make([]Sort, len(elems))
	for i, e := range elems {
		if out[i], err = c.Infer(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Checker) expect(id lang.Id, want Sort) error {
	got, err := c.Infer(id)
	if err != nil {
		return err
	}
	if got != want {
		return c.errorf(id, "expected %s, got %s", want, got)
	}
	return nil
}

// inferLet types each value in the enclosing scope, then the body with the
// names bound.
func (c *Checker) inferLet(id lang.Id, n lang.Node) (Sort, error) {
	pairs, err := c.decompose(id, n.Args[0])
	if err != nil {
		return Unknown, err
	}

	names := make([]string, len(pairs))
	values := make([]Sort, len(pairs))
	for i, pair := range pairs {
		name, value, err := c.pair(id, pair)
		if err != nil {
			return Unknown, err
		}
		if values[i], err = c.Infer(value); err != nil {
			return Unknown, err
		}
		names[i] = name
	}

	c.scope.Push()
	defer c.scope.Pop()
	for i, name := range names {
		c.scope.Bind(name, values[i])
	}
	return c.Infer(n.Args[1])
}

func (c *Checker) inferCall(id lang.Id, n lang.Node) (Sort, error) {
	args, err := c.decompose(id, n.Args[1])
	if err != nil {
		return Unknown, err
	}

	def := c.t.Node(n.Args[0])
	switch def.Op {
	case lang.OpDeclareFun, lang.OpDefineFun:
		sig, err := c.signature(n.Args[0])
		if err != nil {
			return Unknown, err
		}
		return c.apply(id, sig, args)
	case lang.OpSymbol:
		return c.inferName(id, def.Symbol, args)
	}
	return Unknown, c.errorf(id, "cannot call %s", def.Label())
}

// inferName resolves a name: a scoped variable when there are no arguments,
// otherwise a registered function.
func (c *Checker) inferName(id lang.Id, name string, args []lang.Id) (Sort, error) {
	if strings.HasPrefix(name, "?") {
		return Unknown, c.errorf(id, "pattern variable %s has no sort", name)
	}
	if len(args) == 0 {
		if s, ok := c.scope.Lookup(name); ok {
			return s, nil
		}
	}
	if sig, ok := c.funcs[name]; ok {
		return c.apply(id, sig, args)
	}
	return Unknown, c.errorf(id, "unbound name %s", name)
}

func (c *Checker) apply(id lang.Id, sig Signature, args []lang.Id) (Sort, error) {
	if len(args) != len(sig.Params) {
		return Unknown, c.errorf(id, "expected %d arguments, got %d", len(sig.Params), len(args))
	}
	for i, a := range args {
		got, err := c.Infer(a)
		if err != nil {
			return Unknown, err
		}
		if got != sig.Params[i] {
			return Unknown, c.errorf(id, "argument %d: expected %s, got %s", i, sig.Params[i], got)
		}
	}
	return sig.Result, nil
}

// signature reads the sort of a declare-fun or define-fun node.
func (c *Checker) signature(id lang.Id) (Signature, error) {
	n := c.t.Node(id)
	result, err := c.marker(n.Args[2])
	if err != nil {
		return Signature{}, err
	}
	params, err := c.decompose(id, n.Args[1])
	if err != nil {
		return Signature{}, err
	}

	sig := Signature{Params: make([]Sort, len(params)), Result: result}
	for i, p := range params {
		sortID := p
		if n.Op == lang.OpDefineFun {
			if _, sortID, err = c.pair(id, p); err != nil {
				return Signature{}, err
			}
		}
		if sig.Params[i], err = c.marker(sortID); err != nil {
			return Signature{}, err
		}
	}
	return sig, nil
}

// params returns the (name, sort) pairs of a define-fun node.
func (c *Checker) params(id lang.Id) ([]string, []Sort, error) {
	n := c.t.Node(id)
	list, err := c.decompose(id, n.Args[1])
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(list))
	sorts := make([]Sort, len(list))
	for i, p := range list {
		name, sortID, err := c.pair(id, p)
		if err != nil {
			return nil, nil, err
		}
		if sorts[i], err = c.marker(sortID); err != nil {
			return nil, nil, err
		}
		names[i] = name
	}
	return names, sorts, nil
}

func (c *Checker) marker(id lang.Id) (Sort, error) {
	s, ok := FromOp(c.t.Node(id).Op)
	if !ok {
		return Unknown, c.errorf(id, "%s is not a sort", c.t.Node(id).Label())
	}
	return s, nil
}

// pair splits a two-element (symbol x) list.
func (c *Checker) pair(at, id lang.Id) (string, lang.Id, error) {
	elems, err := c.decompose(at, id)
	if err != nil {
		return "", 0, err
	}
	if len(elems) != 2 {
		return "", 0, c.errorf(at, "expected a (name value) pair, got %d elements", len(elems))
	}
	name := c.t.Node(elems[0])
	if name.Op != lang.OpSymbol {
		return "", 0, c.errorf(at, "binding name %s is not a symbol", name.Label())
	}
	return name.Symbol, elems[1], nil
}

func (c *Checker) decompose(at, list lang.Id) ([]lang.Id, error) {
	elems, err := c.t.Decompose(list)
	if err != nil {
		return nil, c.errorf(at, "%v", err)
	}
	return elems, nil
}

func (c *Checker) errorf(id lang.Id, format string, args ...any) *Error {
	return &Error{Term: c.t.Format(id), Message: fmt.Sprintf(format, args...)}
}
