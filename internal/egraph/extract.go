package egraph

import (
	"math"

	"github.com/marlang/marlang/internal/lang"
)

// CostFunction scores a node given the best cost of each child class.
type CostFunction interface {
	Cost(n lang.Node, child func(lang.Id) uint64) uint64
}

// AstSize counts nodes.
type AstSize struct{}

// Cost implements CostFunction.
func (AstSize) Cost(n lang.Node, child func(lang.Id) uint64) uint64 {
	cost := uint64(1)
	for _, c := range n.Children() {
		cost = saturatingAdd(cost, child(c))
	}
	return cost
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

type choice struct {
	cost  uint64
	node  lang.Node
	birth lang.Id
}

// Extractor picks a minimum-cost node for every class of a clean graph. It
// is a snapshot: mutate the graph and the extractor must be rebuilt.
type Extractor struct {
	g    *EGraph
	cost CostFunction
	best map[lang.Id]choice
}

// NewExtractor computes best choices for every class. Ties go to the node
// inserted first.
func NewExtractor(g *EGraph, cost CostFunction) *Extractor {
	e := &Extractor{g: g, cost: cost, best: make(map[lang.Id]choice, len(g.classes))}
	e.computeFixpoint()
	return e
}

func (e *Extractor) computeFixpoint() {
	ids := e.g.ClassIDs()
	for changed := true; changed; {
		changed = false
		for _, cid := range ids {
			for _, cn := range e.g.classes[cid].nodes {
				cost, ok := e.nodeCost(cn.node)
				if !ok {
					continue
				}
				cur, has := e.best[cid]
				if !has || cost < cur.cost || (cost == cur.cost && cn.birth < cur.birth) {
					e.best[cid] = choice{cost: cost, node: cn.node, birth: cn.birth}
					changed = true
				}
			}
		}
	}
}

func (e *Extractor) nodeCost(n lang.Node) (uint64, bool) {
	for _, c := range n.Children() {
		if _, ok := e.best[e.g.Find(c)]; !ok {
			return 0, false
		}
	}
	return e.cost.Cost(n, func(c lang.Id) uint64 {
		return e.best[e.g.Find(c)].cost
	}), true
}

// FindBest returns the cost and a best term for the class of id.
func (e *Extractor) FindBest(id lang.Id) (uint64, *lang.Term) {
	cid := e.g.Find(id)
	ch, ok := e.best[cid]
	if !ok {
		panic("egraph: class has no extractable node")
	}

	t := lang.NewTerm()
	memo := make(map[lang.Id]lang.Id)
	var build func(lang.Id) lang.Id
	build = func(c lang.Id) lang.Id {
		c = e.g.Find(c)
		if out, ok := memo[c]; ok {
			return out
		}
		out := t.Add(e.best[c].node.Map(build))
		memo[c] = out
		return out
	}
	build(cid)
	return ch.cost, t
}

// FindBestCost returns only the cost.
func (e *Extractor) FindBestCost(id lang.Id) (uint64, bool) {
	ch, ok := e.best[e.g.Find(id)]
	return ch.cost, ok
}
