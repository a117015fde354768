// Package sample draws random sub-terms of a canonical term and abstracts
// their deep parts into fresh pattern variables.
//
// A sample is rooted at a random operator node. Structure is copied down to a
// depth budget; a subtree that would exceed it is replaced by a placeholder
// "?marlang.fresh.<10 letters>". Identical deep subtrees share one
// placeholder within a sample. List cells and commands are copied without
// consuming depth, so a variadic operator keeps all its operands.
package sample

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/marlang/marlang/internal/lang"
)

// PlaceholderPrefix starts every generated pattern variable.
const PlaceholderPrefix = "?marlang.fresh."

const placeholderLetters = 10

// ErrNoRoot is returned when no operator root was found within the depth
// budget.
var ErrNoRoot = errors.New("no operator node to root a sample at")

// Result is one sample.
type Result struct {
	Term *lang.Term

	// Root is the id of the sampled root in the source term.
	Root lang.Id

	// Depth is the budget used, after any retries.
	Depth int

	// Placeholders lists the generated variables in creation order.
	Placeholders []string
}

// Sampler draws samples from a random source.
type Sampler struct {
	rng      *rand.Rand
	maxDepth int
}

// New returns a sampler with the given depth budget.
func New(rng *rand.Rand, maxDepth int) *Sampler {
	return &Sampler{rng: rng, maxDepth: maxDepth}
}

// rootable reports whether a sample may start at n.
func rootable(n lang.Node) bool {
	return n.Op != lang.OpSymbol && !n.Op.IsList() && !n.Op.IsCommand()
}

// Sample draws one sample from t. Landing on a command, a list cell or a
// symbol retries with a budget one smaller; ErrNoRoot is returned once the
// budget is exhausted.
func (s *Sampler) Sample(t *lang.Term) (*Result, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("sample: empty term")
	}

	depth := s.maxDepth
	for {
		pos := lang.Id(s.rng.IntN(t.Len()))
		if rootable(t.Node(pos)) {
			return s.abstract(t, pos, depth), nil
		}
		if depth == 0 {
			return nil, fmt.Errorf("sample: %w", ErrNoRoot)
		}
		depth--
	}
}

func (s *Sampler) abstract(src *lang.Term, root lang.Id, depth int) *Result {
	out := &Result{Term: lang.NewTerm(), Root: root, Depth: depth}
	memo := make(map[lang.Node]lang.Id)

	var walk func(id lang.Id, budget int) lang.Id
	walk = func(id lang.Id, budget int) lang.Id {
		n := src.Node(id)
		switch {
		case n.Op == lang.OpCons || n.Op.IsCommand():
			return out.Term.Add(n.Map(func(c lang.Id) lang.Id { return walk(c, budget) }))
		case n.IsLeaf():
			return out.Term.Add(n)
		case budget == 0:
			if v, ok := memo[n]; ok {
				return v
			}
			name := s.placeholder()
			out.Placeholders = append(out.Placeholders, name)
			v := out.Term.Add(lang.Sym(name))
			memo[n] = v
			return v
		}
		return out.Term.Add(n.Map(func(c lang.Id) lang.Id { return walk(c, budget-1) }))
	}

	// The chosen root is always copied; only its descendants are abstracted.
	walk(root, max(depth, 1))
	return out
}

func (s *Sampler) placeholder() string {
	var b strings.Builder
	b.WriteString(PlaceholderPrefix)
	for range placeholderLetters {
		b.WriteByte(byte('a' + s.rng.IntN(26)))
	}
	return b.String()
}
