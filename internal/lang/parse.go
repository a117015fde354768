package lang

import (
	"fmt"
	"unicode"
)

// SyntaxError reports a malformed s-expression.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

type token struct {
	text   string
	offset int
}

// ParseTerm parses an s-expression over the marlang vocabulary, the same
// notation Term.String produces. Atoms that are not tags become bare symbols.
func ParseTerm(src string) (*Term, error) {
	toks := tokenize(src)
	if len(toks) == 0 {
		return nil, &SyntaxError{Offset: 0, Message: "empty input"}
	}
	p := &parser{toks: toks, term: NewTerm()}
	if _, err := p.expr(); err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, &SyntaxError{Offset: p.toks[p.pos].offset, Message: fmt.Sprintf("unexpected %q after term", p.toks[p.pos].text)}
	}
	return p.term, nil
}

// MustParseTerm is like ParseTerm but panics on error.
// Use only in tests or for literals known to be valid.
func MustParseTerm(src string) *Term {
	t, err := ParseTerm(src)
	if err != nil {
		panic(err)
	}
	return t
}

func tokenize(src string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: src[start:end], offset: start})
			start = -1
		}
	}
	for i, r := range src {
		switch {
		case r == '(' || r == ')':
			flush(i)
			toks = append(toks, token{text: string(r), offset: i})
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(src))
	return toks
}

type parser struct {
	toks []token
	pos  int
	term *Term
}

func (p *parser) expr() (Id, error) {
	if p.pos >= len(p.toks) {
		return 0, &SyntaxError{Offset: p.endOffset(), Message: "unexpected end of input"}
	}
	tok := p.toks[p.pos]
	p.pos++

	switch tok.text {
	case ")":
		return 0, &SyntaxError{Offset: tok.offset, Message: "unexpected ')'"}
	case "(":
		return p.application(tok)
	}

	if op, ok := LookupTag(tok.text); ok {
		if op.Arity() != 0 {
			return 0, &SyntaxError{Offset: tok.offset, Message: fmt.Sprintf("%s takes %d children", tok.text, op.Arity())}
		}
		return p.term.Add(NewNode(op)), nil
	}
	return p.term.Add(Sym(tok.text)), nil
}

func (p *parser) application(open token) (Id, error) {
	if p.pos >= len(p.toks) {
		return 0, &SyntaxError{Offset: p.endOffset(), Message: "unexpected end of input"}
	}
	head := p.toks[p.pos]
	if head.text == "(" || head.text == ")" {
		return 0, &SyntaxError{Offset: head.offset, Message: "expected operator"}
	}
	p.pos++

	op, ok := LookupTag(head.text)
	if !ok {
		return 0, &SyntaxError{Offset: head.offset, Message: fmt.Sprintf("unknown operator %q", head.text)}
	}

	var children []Id
	for {
		if p.pos >= len(p.toks) {
			return 0, &SyntaxError{Offset: open.offset, Message: "unclosed '('"}
		}
		if p.toks[p.pos].text == ")" {
			p.pos++
			break
		}
		c, err := p.expr()
		if err != nil {
			return 0, err
		}
		children = append(children, c)
	}

	if len(children) != op.Arity() {
		return 0, &SyntaxError{Offset: head.offset, Message: fmt.Sprintf("%s takes %d children, got %d", head.text, op.Arity(), len(children))}
	}
	return p.term.Add(NewNode(op, children...)), nil
}

func (p *parser) endOffset() int {
	if len(p.toks) == 0 {
		return 0
	}
	last := p.toks[len(p.toks)-1]
	return last.offset + len(last.text)
}
