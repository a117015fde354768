package egraph

import (
	"fmt"
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"github.com/marlang/marlang/internal/lang"
)

// exact performs arithmetic without rounding. Zero precision makes Add, Sub,
// Mul and Neg exact.
var exact = apd.BaseContext

var intLiteral = regexp.MustCompile(`^-?[0-9]+$`)

// Constant is a resolved literal value for a class.
type Constant struct {
	// Sort is one of lang.OpBoolSort, OpIntSort, OpRealSort, OpStringSort.
	Sort lang.Op

	// Text is the literal text carried by Literal.
	Text string

	// Num holds the exact value for int and real constants.
	Num *apd.Decimal

	// Literal is the value term, e.g. (marlang.value.int 1).
	Literal *lang.Term

	// Proof is the folded application over literal arguments, nil when the
	// class holds the literal itself.
	Proof *lang.Term
}

// Equal reports whether c and o denote the same value of the same sort.
func (c *Constant) Equal(o *Constant) bool {
	if c.Sort != o.Sort {
		return false
	}
	if c.Num != nil && o.Num != nil {
		return c.Num.Cmp(o.Num) == 0
	}
	return c.Text == o.Text
}

func (c *Constant) String() string {
	return c.Literal.String()
}

var valueSorts = map[lang.Op]lang.Op{
	lang.OpBoolVal:   lang.OpBoolSort,
	lang.OpIntVal:    lang.OpIntSort,
	lang.OpRealVal:   lang.OpRealSort,
	lang.OpStringVal: lang.OpStringSort,
}

var sortValues = map[lang.Op]lang.Op{
	lang.OpBoolSort:   lang.OpBoolVal,
	lang.OpIntSort:    lang.OpIntVal,
	lang.OpRealSort:   lang.OpRealVal,
	lang.OpStringSort: lang.OpStringVal,
}

// ParseLiteral resolves a value wrapper op over symbol text. It returns nil if
// the text is not a valid literal of that sort.
func ParseLiteral(op lang.Op, text string) *Constant {
	sort, ok := valueSorts[op]
	if !ok {
		return nil
	}
	c := &Constant{Sort: sort, Text: text, Literal: literalTerm(op, text)}
	switch sort {
	case lang.OpIntSort:
		if !intLiteral.MatchString(text) {
			return nil
		}
		fallthrough
	case lang.OpRealSort:
		d, _, err := apd.NewFromString(text)
		if err != nil || d.Form != apd.Finite {
			return nil
		}
		c.Num = d
	}
	return c
}

func literalTerm(op lang.Op, text string) *lang.Term {
	t := lang.NewTerm()
	sym := t.Add(lang.Sym(text))
	t.Add(lang.NewNode(op, sym))
	return t
}

// numericConstant builds a folded constant of sort with proof.
func numericConstant(sort lang.Op, d *apd.Decimal, proof *lang.Term) *Constant {
	text := d.Text('f')
	return &Constant{
		Sort:    sort,
		Text:    text,
		Num:     d,
		Literal: literalTerm(sortValues[sort], text),
		Proof:   proof,
	}
}

type foldOp struct {
	sort lang.Op
	kind byte
}

var foldable = map[lang.Op]foldOp{
	lang.OpIntAdd:  {lang.OpIntSort, '+'},
	lang.OpIntSub:  {lang.OpIntSort, '-'},
	lang.OpIntMul:  {lang.OpIntSort, '*'},
	lang.OpRealAdd: {lang.OpRealSort, '+'},
	lang.OpRealSub: {lang.OpRealSort, '-'},
	lang.OpRealMul: {lang.OpRealSort, '*'},
}

// fold evaluates op over args exactly. Division, comparisons and every
// boolean or string operator stay unfolded.
func fold(op lang.Op, args []*Constant) *Constant {
	f, ok := foldable[op]
	if !ok || len(args) == 0 {
		return nil
	}
	for _, a := range args {
		if a.Sort != f.sort || a.Num == nil {
			return nil
		}
	}

	acc := new(apd.Decimal).Set(args[0].Num)
	if f.kind == '-' && len(args) == 1 {
		if _, err := exact.Neg(acc, acc); err != nil {
			return nil
		}
	}
	for _, a := range args[1:] {
		var err error
		switch f.kind {
		case '+':
			_, err = exact.Add(acc, acc, a.Num)
		case '-':
			_, err = exact.Sub(acc, acc, a.Num)
		case '*':
			_, err = exact.Mul(acc, acc, a.Num)
		}
		if err != nil {
			return nil
		}
	}
	return numericConstant(f.sort, acc, proofTerm(op, args))
}

// proofTerm renders (op (cons lit1 (cons lit2 ... nil))).
func proofTerm(op lang.Op, args []*Constant) *lang.Term {
	t := lang.NewTerm()
	lits := make([]lang.Id, len(args))
	for i, a := range args {
		lits[i] = t.Graft(a.Literal, a.Literal.Root())
	}
	tail := t.Add(lang.NewNode(lang.OpNil))
	for i := len(lits) - 1; i >= 0; i-- {
		tail = t.Add(lang.NewNode(lang.OpCons, lits[i], tail))
	}
	t.Add(lang.NewNode(op, tail))
	return t
}

// Describe renders a constant for logs and CLI output.
func (c *Constant) Describe() string {
	if c.Proof == nil {
		return c.Literal.String()
	}
	return fmt.Sprintf("%s from %s", c.Literal, c.Proof)
}
