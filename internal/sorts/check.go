package sorts

import (
	"github.com/marlang/marlang/internal/lang"
)

// Summary describes a well-sorted program.
type Summary struct {
	Logic     string
	Functions map[string]Signature
	Asserts   int
	CheckSats int
}

// CheckProgram walks the command list at the root of t. Declarations and
// definitions become callable by name for later commands; every assert must
// be Bool and every define-fun body must have its declared sort.
func CheckProgram(t *lang.Term) (*Summary, error) {
	c := NewChecker(t)
	root := t.Root()
	commands, err := c.decompose(root, root)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, cmd := range commands {
		n := t.Node(cmd)
		switch n.Op {
		case lang.OpSetLogic:
			sum.Logic = t.Node(n.Args[0]).Label()

		case lang.OpCheckSat:
			sum.CheckSats++

		case lang.OpAssert:
			if err := c.expect(n.Args[0], Bool); err != nil {
				return nil, err
			}
			sum.Asserts++

		case lang.OpDeclareFun:
			if err := c.declare(cmd); err != nil {
				return nil, err
			}

		case lang.OpDefineFun:
			if err := c.checkBody(cmd); err != nil {
				return nil, err
			}
			if err := c.declare(cmd); err != nil {
				return nil, err
			}

		default:
			return nil, c.errorf(cmd, "%s is not a command", n.Label())
		}
	}
	sum.Functions = c.Functions()
	return sum, nil
}

func (c *Checker) declare(id lang.Id) error {
	n := c.t.Node(id)
	name := c.t.Node(n.Args[0])
	if name.Op != lang.OpSymbol {
		return c.errorf(id, "function name %s is not a symbol", name.Label())
	}
	sig, err := c.signature(id)
	if err != nil {
		return err
	}
	c.Declare(name.Symbol, sig)
	return nil
}

// checkBody types a define-fun body with its parameters in scope.
func (c *Checker) checkBody(id lang.Id) error {
	n := c.t.Node(id)
	names, params, err := c.params(id)
	if err != nil {
		return err
	}
	want, err := c.marker(n.Args[2])
	if err != nil {
		return err
	}

	c.scope.Push()
	defer c.scope.Pop()
	for i, name := range names {
		c.scope.Bind(name, params[i])
	}
	return c.expect(n.Args[3], want)
}
