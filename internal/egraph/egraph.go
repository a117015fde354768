package egraph

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/marlang/marlang/internal/lang"
)

// Class is one equivalence class.
type Class struct {
	id      lang.Id
	nodes   []classNode // canonical after rebuild, ascending birth
	parents []parentRef
	data    Data
}

type classNode struct {
	node  lang.Node
	birth lang.Id
}

// parentRef is a node that uses this class as a child, with the id it was
// registered under.
type parentRef struct {
	node lang.Node
	id   lang.Id
}

// ID returns the canonical id of the class.
func (c *Class) ID() lang.Id { return c.id }

// Nodes returns the member shapes in insertion order.
func (c *Class) Nodes() []lang.Node {
	out := make([]lang.Node, len(c.nodes))
	for i, cn := range c.nodes {
		out[i] = cn.node
	}
	return out
}

// Data returns the analysis record.
func (c *Class) Data() Data { return c.data }

// EGraph is a hash-consed equality graph over lang nodes.
type EGraph struct {
	uf      unionFind
	nodes   []lang.Node // per id, as inserted
	memo    map[lang.Node]lang.Id
	exact   map[lang.Node]lang.Id // explanations only
	classes map[lang.Id]*Class

	pending  []parentRef
	analysis []parentRef
	modify   []lang.Id

	// foldDirty is set when some class gained a constant; a list cell does
	// not carry constants, so folding above it is found by sweepConstants.
	foldDirty bool

	log    *unionLog // nil unless explanations are enabled
	logger *slog.Logger
}

// Option configures an EGraph.
type Option func(*EGraph)

// WithExplanations enables the union log used by Explain. It also makes
// Insert return the exact id of every distinct node as given.
func WithExplanations() Option {
	return func(g *EGraph) {
		g.log = newUnionLog()
		g.exact = make(map[lang.Node]lang.Id)
	}
}

// WithLogger sets the logger used for rebuild diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *EGraph) {
		g.logger = l
	}
}

// New creates an empty EGraph.
func New(opts ...Option) *EGraph {
	g := &EGraph{
		memo:    make(map[lang.Node]lang.Id),
		classes: make(map[lang.Id]*Class),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExplanationsEnabled reports whether the graph records a union log.
func (g *EGraph) ExplanationsEnabled() bool {
	return g.log != nil
}

// Find returns the canonical class id of id.
func (g *EGraph) Find(id lang.Id) lang.Id {
	return g.uf.find(id)
}

// Equiv reports whether a and b are in the same class.
func (g *EGraph) Equiv(a, b lang.Id) bool {
	return g.Find(a) == g.Find(b)
}

// Len returns the number of ids allocated.
func (g *EGraph) Len() int {
	return g.uf.len()
}

// NodeCount returns the number of distinct canonical nodes across classes.
func (g *EGraph) NodeCount() int {
	n := 0
	for _, c := range g.classes {
		n += len(c.nodes)
	}
	return n
}

// ClassCount returns the number of classes.
func (g *EGraph) ClassCount() int {
	return len(g.classes)
}

// Dirty reports whether unions are waiting for Rebuild.
func (g *EGraph) Dirty() bool {
	return len(g.pending) > 0 || len(g.analysis) > 0 || len(g.modify) > 0
}

// Class returns the class of id.
func (g *EGraph) Class(id lang.Id) (*Class, bool) {
	c, ok := g.classes[g.Find(id)]
	return c, ok
}

// ClassIDs returns every canonical class id in ascending order.
func (g *EGraph) ClassIDs() []lang.Id {
	out := make([]lang.Id, 0, len(g.classes))
	for id := range g.classes {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Node returns the node registered under id, with children as inserted.
func (g *EGraph) Node(id lang.Id) lang.Node {
	return g.nodes[id]
}

func (g *EGraph) canonicalize(n lang.Node) lang.Node {
	return n.Map(g.Find)
}

// Lookup returns the class of a node if an equivalent node is present.
func (g *EGraph) Lookup(n lang.Node) (lang.Id, bool) {
	if g.exact != nil {
		if id, ok := g.exact[n]; ok {
			return id, true
		}
	}
	id, ok := g.memo[g.canonicalize(n)]
	if !ok {
		return 0, false
	}
	return g.Find(id), true
}

// Insert adds n and returns its id. A node already present (up to
// congruence) returns the existing class. With explanations enabled the exact
// id of n is returned instead, allocating a fresh id joined to the class when
// n is congruent but not identical to an existing node.
//
// Insert panics with *InvariantError if analysis of n finds a malformed let.
func (g *EGraph) Insert(n lang.Node) lang.Id {
	for _, c := range n.Children() {
		if int(c) >= g.uf.len() {
			panic(fmt.Sprintf("egraph: child id %d out of range", c))
		}
	}

	if g.exact != nil {
		if id, ok := g.exact[n]; ok {
			return id
		}
	}

	canon := g.canonicalize(n)
	if existing, ok := g.memo[canon]; ok {
		if g.log == nil {
			return g.Find(existing)
		}
		id := g.uf.makeSet()
		g.nodes = append(g.nodes, n)
		g.exact[n] = id
		g.uf.link(g.Find(existing), id)
		g.log.add(id, existing, Congruence())
		return id
	}

	// Analysis may panic on a malformed let; nothing is registered until it
	// succeeds.
	data := g.makeData(canon, lang.Id(g.uf.len()))
	id := g.uf.makeSet()
	g.nodes = append(g.nodes, n)
	if g.exact != nil {
		g.exact[n] = id
	}

	class := &Class{
		id:    id,
		nodes: []classNode{{node: canon, birth: id}},
		data:  data,
	}
	for _, c := range canon.Children() {
		child := g.classes[c]
		child.parents = append(child.parents, parentRef{node: canon, id: id})
	}
	g.classes[id] = class
	g.memo[canon] = id
	if class.data.Constant != nil {
		g.modify = append(g.modify, id)
	}
	return id
}

// InsertTerm inserts every node of t and returns the id of its root.
func (g *EGraph) InsertTerm(t *lang.Term) lang.Id {
	ids := make([]lang.Id, t.Len())
	for i, n := range t.Nodes() {
		ids[i] = g.Insert(n.Map(func(c lang.Id) lang.Id { return ids[c] }))
	}
	return ids[len(ids)-1]
}

// LookupTerm finds the id of t without inserting anything.
func (g *EGraph) LookupTerm(t *lang.Term) (lang.Id, error) {
	ids := make([]lang.Id, t.Len())
	for i, n := range t.Nodes() {
		id, ok := g.Lookup(n.Map(func(c lang.Id) lang.Id { return ids[c] }))
		if !ok {
			return 0, fmt.Errorf("lookup %s: %w", t.Format(lang.Id(i)), ErrTermNotFound)
		}
		ids[i] = id
	}
	return ids[len(ids)-1], nil
}

// Union merges the classes of a and b and reports whether they were distinct.
// The graph is dirty until Rebuild. Union panics with *InvariantError if the
// classes carry different constants.
func (g *EGraph) Union(a, b lang.Id, why Justification) bool {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return false
	}
	if g.log != nil {
		g.log.add(a, b, why)
	}

	root, child := g.uf.pick(ra, rb)
	to, from := g.classes[root], g.classes[child]
	g.uf.link(root, child)

	g.pending = append(g.pending, to.parents...)
	g.pending = append(g.pending, from.parents...)

	to.nodes = mergeByBirth(to.nodes, from.nodes)
	to.parents = append(to.parents, from.parents...)

	r := g.mergeData(&to.data, from.data, root)
	if r.any() {
		g.analysis = append(g.analysis, to.parents...)
	}
	if to.data.Constant != nil {
		g.modify = append(g.modify, root)
	}
	delete(g.classes, child)
	return true
}

func mergeByBirth(a, b []classNode) []classNode {
	out := make([]classNode, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].birth <= b[j].birth {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Decompose walks the list rooted at id through the earliest list node of
// each class and returns the element ids in order. A bare symbol tail is
// returned as the final element. Any other shape, or a cyclic list, fails
// with ErrNotAList.
func (g *EGraph) Decompose(id lang.Id) ([]lang.Id, error) {
	var out []lang.Id
	visited := make(map[lang.Id]bool)
	for {
		if int(id) >= g.uf.len() {
			return nil, fmt.Errorf("decompose id %d: out of range: %w", id, ErrNotAList)
		}
		cid := g.Find(id)
		if visited[cid] {
			return nil, fmt.Errorf("decompose class %d: cyclic list: %w", cid, ErrNotAList)
		}
		visited[cid] = true

		n, ok := g.listNode(cid)
		if !ok {
			if g.hasSymbol(cid) {
				return append(out, id), nil
			}
			return nil, fmt.Errorf("decompose class %d: %w", cid, ErrNotAList)
		}
		if n.Op == lang.OpNil {
			return out, nil
		}
		out = append(out, n.Args[0])
		id = n.Args[1]
	}
}

func (g *EGraph) listNode(cid lang.Id) (lang.Node, bool) {
	for _, cn := range g.classes[cid].nodes {
		if cn.node.Op.IsList() {
			return cn.node, true
		}
	}
	return lang.Node{}, false
}

func (g *EGraph) hasSymbol(cid lang.Id) bool {
	for _, cn := range g.classes[cid].nodes {
		if cn.node.Op == lang.OpSymbol {
			return true
		}
	}
	return false
}

// Term renders the concrete term built under id, following the children each
// node was inserted with. It never consults class membership, so it returns
// the as-built form even after rewrites.
func (g *EGraph) Term(id lang.Id) *lang.Term {
	t := lang.NewTerm()
	memo := make(map[lang.Id]lang.Id)
	var walk func(lang.Id) lang.Id
	walk = func(i lang.Id) lang.Id {
		if out, ok := memo[i]; ok {
			return out
		}
		out := t.Add(g.nodes[i].Map(walk))
		memo[i] = out
		return out
	}
	walk(id)
	return t
}
