package egraph

import "github.com/marlang/marlang/internal/lang"

// unionFind is a disjoint-set forest over dense ids with path compression.
// Root selection is left to the caller so the absorption rule lives in one
// place (EGraph.union).
type unionFind struct {
	parents []lang.Id
	sizes   []int
}

func (uf *unionFind) makeSet() lang.Id {
	id := lang.Id(len(uf.parents))
	uf.parents = append(uf.parents, id)
	uf.sizes = append(uf.sizes, 1)
	return id
}

func (uf *unionFind) len() int {
	return len(uf.parents)
}

func (uf *unionFind) find(id lang.Id) lang.Id {
	root := id
	for uf.parents[root] != root {
		root = uf.parents[root]
	}
	for uf.parents[id] != root {
		next := uf.parents[id]
		uf.parents[id] = root
		id = next
	}
	return root
}

// link makes root the parent of child. Both must be roots.
func (uf *unionFind) link(root, child lang.Id) {
	uf.parents[child] = root
	uf.sizes[root] += uf.sizes[child]
}

// pick returns (root, child) for merging roots a and b: the larger set wins,
// and the lower id wins a tie.
func (uf *unionFind) pick(a, b lang.Id) (lang.Id, lang.Id) {
	sa, sb := uf.sizes[a], uf.sizes[b]
	if sa > sb || (sa == sb && a < b) {
		return a, b
	}
	return b, a
}
