// Package leda reads and writes canonical terms as LEDA.GRAPH text.
//
// The format has a fixed header, a node section with one |{label}| line per
// node in post-order, and an edge section listing, for each node, its children
// in reverse order as 1-indexed "src dst 0 |{child}|" lines.
package leda

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/marlang/marlang/internal/lang"
)

const (
	header    = "LEDA.GRAPH"
	edgeLabel = "child"
)

type edge struct {
	src, dst int
}

// Write encodes t. Labels must not contain line breaks.
func Write(w io.Writer, t *lang.Term) error {
	nodes := t.Nodes()
	var edges []edge
	for i, n := range nodes {
		if strings.ContainsAny(n.Label(), "\r\n") {
			return fmt.Errorf("leda: node %d label %q contains a line break", i, n.Label())
		}
		children := n.Children()
		for j := len(children) - 1; j >= 0; j-- {
			edges = append(edges, edge{src: i, dst: int(children[j])})
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nstring\nstring\n-1\n", header)
	fmt.Fprintf(bw, "\n# Nodes Section\n%d\n", len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(bw, "|{%s}|\n", n.Label())
	}
	fmt.Fprintf(bw, "\n# Edges Section\n%d\n", len(edges))
	for _, e := range edges {
		fmt.Fprintf(bw, "%d %d 0 |{%s}|\n", e.src+1, e.dst+1, edgeLabel)
	}
	return bw.Flush()
}

// Marshal returns the encoding of t as a string.
func Marshal(t *lang.Term) (string, error) {
	var b strings.Builder
	if err := Write(&b, t); err != nil {
		return "", err
	}
	return b.String(), nil
}
