package leda

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/marlang/marlang/internal/lang"
)

// legacyDeclareConst is read as a declare-fun with an empty parameter list.
const legacyDeclareConst = "marlang.command.declare-const"

type state string

const (
	expectHeader    state = "expect_leda"
	expectString    state = "expect_string"
	expectDash      state = "expect_dash1"
	expectNodeCount state = "expect_nodes_number"
	expectNodes     state = "expect_nodes"
	expectEdgeCount state = "expect_edges_number"
	expectEdges     state = "expect_edges"
	stateDone       state = "done"
)

// ParseError reports malformed input. Line is 1-based and counts every line,
// including comments and blanks.
type ParseError struct {
	Line    int
	State   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("leda: line %d (%s): %s", e.Line, e.State, e.Message)
}

type nodeLine struct {
	label string
	line  int
}

type edgeLine struct {
	edge
	line int
}

type reader struct {
	st      state
	line    int
	strings int

	nodeCount, edgeCount int
	nodes                []nodeLine
	edges                []edgeLine
}

func (r *reader) fail(format string, args ...any) *ParseError {
	return &ParseError{Line: r.line, State: string(r.st), Message: fmt.Sprintf(format, args...)}
}

// Read decodes one term. Any deviation from the section sequence, a count
// mismatch or an ill-formed node is a *ParseError. A graph with no nodes
// decodes to an empty term.
func Read(src io.Reader) (*lang.Term, error) {
	r := &reader{st: expectHeader}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		r.line++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.feed(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("leda: read: %w", err)
	}
	if r.st != stateDone {
		return nil, r.fail("unexpected end of input")
	}
	return r.build()
}

// Unmarshal decodes a term from text.
func Unmarshal(text string) (*lang.Term, error) {
	return Read(strings.NewReader(text))
}

func (r *reader) feed(line string) error {
	switch r.st {
	case expectHeader:
		if line != header {
			return r.fail("expected %q, got %q", header, line)
		}
		r.st = expectString

	case expectString:
		if line != "string" {
			return r.fail("expected \"string\", got %q", line)
		}
		r.strings++
		if r.strings == 2 {
			r.st = expectDash
		}

	case expectDash:
		if line != "-1" {
			return r.fail("expected \"-1\", got %q", line)
		}
		r.st = expectNodeCount

	case expectNodeCount:
		n, err := r.count(line)
		if err != nil {
			return err
		}
		r.nodeCount = n
		r.st = expectNodes
		if n == 0 {
			r.st = expectEdgeCount
		}

	case expectNodes:
		label, err := r.label(line)
		if err != nil {
			return err
		}
		r.nodes = append(r.nodes, nodeLine{label: label, line: r.line})
		if len(r.nodes) == r.nodeCount {
			r.st = expectEdgeCount
		}

	case expectEdgeCount:
		n, err := r.count(line)
		if err != nil {
			return err
		}
		r.edgeCount = n
		r.st = expectEdges
		if n == 0 {
			r.st = stateDone
		}

	case expectEdges:
		e, err := r.edge(line)
		if err != nil {
			return err
		}
		r.edges = append(r.edges, edgeLine{edge: e, line: r.line})
		if len(r.edges) == r.edgeCount {
			r.st = stateDone
		}

	default:
		return r.fail("unexpected line %q after the edge section", line)
	}
	return nil
}

func (r *reader) count(line string) (int, error) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return 0, r.fail("invalid count %q", line)
	}
	return n, nil
}

func (r *reader) label(s string) (string, error) {
	inner, ok := strings.CutPrefix(s, "|{")
	if !ok {
		return "", r.fail("label %q must start with |{", s)
	}
	inner, ok = strings.CutSuffix(inner, "}|")
	if !ok {
		return "", r.fail("label %q must end with }|", s)
	}
	return inner, nil
}

func (r *reader) edge(line string) (edge, error) {
	fields := strings.SplitN(line, " ", 4)
	if len(fields) != 4 || fields[2] != "0" {
		return edge{}, r.fail("malformed edge %q", line)
	}
	if _, err := r.label(fields[3]); err != nil {
		return edge{}, err
	}
	src, err1 := strconv.Atoi(fields[0])
	dst, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return edge{}, r.fail("malformed edge endpoints in %q", line)
	}
	if src < 1 || src > r.nodeCount || dst < 1 || dst > r.nodeCount {
		return edge{}, r.fail("edge %d -> %d out of range for %d nodes", src, dst, r.nodeCount)
	}
	return edge{src: src - 1, dst: dst - 1}, nil
}

func (r *reader) build() (*lang.Term, error) {
	children := make([][]edgeLine, len(r.nodes))
	for _, e := range r.edges {
		children[e.src] = append(children[e.src], e)
	}

	t := lang.NewTerm()
	ids := make([]lang.Id, len(r.nodes))
	for i, n := range r.nodes {
		r.line, r.st = n.line, expectNodes

		edges := children[i]
		kids := make([]lang.Id, len(edges))
		for j, e := range edges {
			if e.dst >= i {
				r.line = e.line
				return nil, r.fail("child %d of node %d is not an earlier node", e.dst+1, i+1)
			}
			kids[len(edges)-1-j] = ids[e.dst]
		}

		id, err := r.node(t, n.label, kids)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return t, nil
}

func (r *reader) node(t *lang.Term, label string, kids []lang.Id) (lang.Id, error) {
	if label == legacyDeclareConst {
		if len(kids) != 2 {
			return 0, r.fail("%s takes 2 children, got %d", label, len(kids))
		}
		empty := t.Add(lang.NewNode(lang.OpNil))
		return t.Add(lang.NewNode(lang.OpDeclareFun, kids[0], empty, kids[1])), nil
	}

	if op, ok := lang.LookupTag(label); ok && op != lang.OpSymbol {
		if len(kids) != op.Arity() {
			return 0, r.fail("%s takes %d children, got %d", label, op.Arity(), len(kids))
		}
		return t.Add(lang.NewNode(op, kids...)), nil
	}

	if len(kids) != 0 {
		return 0, r.fail("symbol %q has %d children", label, len(kids))
	}
	return t.Add(lang.Sym(label)), nil
}
