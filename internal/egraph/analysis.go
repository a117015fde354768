package egraph

import (
	"slices"

	"github.com/hashicorp/go-set/v3"

	"github.com/marlang/marlang/internal/lang"
)

// Data is the analysis record of a class.
type Data struct {
	// FreeVars holds the class ids of variables free in every member.
	// Ids may be stale after unions; FreeVars on the graph canonicalizes.
	FreeVars *set.Set[lang.Id]

	// Constant is the resolved value, or nil when none is known.
	Constant *Constant
}

// mergeResult reports which side of a merge changed.
type mergeResult struct {
	toChanged   bool
	fromChanged bool
}

func (r mergeResult) any() bool {
	return r.toChanged || r.fromChanged
}

// makeData computes the analysis record for a canonical node.
func (g *EGraph) makeData(n lang.Node, class lang.Id) Data {
	return Data{
		FreeVars: g.makeFreeVars(n, class),
		Constant: g.makeConstant(n),
	}
}

func (g *EGraph) makeFreeVars(n lang.Node, class lang.Id) *set.Set[lang.Id] {
	switch n.Op {
	case lang.OpCall:
		out := set.New[lang.Id](1)
		out.Insert(g.Find(n.Args[0]))
		return out

	case lang.OpLet:
		bindings := g.decomposeOrPanic(n.Args[0], class)
		out := set.New[lang.Id](0)
		g.addFreeVars(out, n.Args[1])
		values := make([]lang.Id, 0, len(bindings))
		for _, b := range bindings {
			pair, err := g.Decompose(b)
			if err != nil || len(pair) != 2 {
				panic(violation(CodeMalformedBinding, class, "let binding %d is not a (name value) pair", b))
			}
			out.Remove(g.Find(pair[0]))
			values = append(values, pair[1])
		}
		for _, v := range values {
			g.addFreeVars(out, v)
		}
		return out
	}

	out := set.New[lang.Id](0)
	for _, c := range n.Children() {
		g.addFreeVars(out, c)
	}
	return out
}

func (g *EGraph) addFreeVars(dst *set.Set[lang.Id], id lang.Id) {
	c := g.classes[g.Find(id)]
	for _, v := range c.data.FreeVars.Slice() {
		dst.Insert(g.Find(v))
	}
}

func (g *EGraph) makeConstant(n lang.Node) *Constant {
	if n.Op.IsValue() {
		text, ok := g.symbolText(n.Args[0])
		if !ok {
			return nil
		}
		return ParseLiteral(n.Op, text)
	}
	if _, ok := foldable[n.Op]; !ok {
		return nil
	}
	elems, ok := g.listElements(n.Args[0])
	if !ok {
		return nil
	}
	args := make([]*Constant, len(elems))
	for i, e := range elems {
		c := g.classes[g.Find(e)].data.Constant
		if c == nil {
			return nil
		}
		args[i] = c
	}
	return fold(n.Op, args)
}

// symbolText returns the text of the earliest symbol node in the class of id.
func (g *EGraph) symbolText(id lang.Id) (string, bool) {
	for _, cn := range g.classes[g.Find(id)].nodes {
		if cn.node.Op == lang.OpSymbol {
			return cn.node.Symbol, true
		}
	}
	return "", false
}

// listElements walks a nil-terminated list through the earliest list node of
// each class. It reports false for a symbol tail, a non-list or a cycle.
func (g *EGraph) listElements(id lang.Id) ([]lang.Id, bool) {
	var out []lang.Id
	seen := set.New[lang.Id](4)
	for {
		cid := g.Find(id)
		if !seen.Insert(cid) {
			return nil, false
		}
		n, ok := g.listNode(cid)
		if !ok {
			return nil, false
		}
		if n.Op == lang.OpNil {
			return out, true
		}
		out = append(out, n.Args[0])
		id = n.Args[1]
	}
}

func (g *EGraph) decomposeOrPanic(id, class lang.Id) []lang.Id {
	out, err := g.Decompose(id)
	if err != nil {
		panic(violation(CodeNotAList, class, "%v", err))
	}
	return out
}

// mergeData folds from into to. Free variables intersect; a constant on one
// side is adopted; two different constants are a fatal conflict.
func (g *EGraph) mergeData(to *Data, from Data, class lang.Id) mergeResult {
	var r mergeResult

	left := g.canonicalSet(to.FreeVars)
	right := g.canonicalSet(from.FreeVars)
	both := set.New[lang.Id](min(left.Size(), right.Size()))
	for _, v := range left.Slice() {
		if right.Contains(v) {
			both.Insert(v)
		}
	}
	r.toChanged = both.Size() != left.Size()
	r.fromChanged = both.Size() != right.Size()
	to.FreeVars = both

	switch {
	case to.Constant == nil && from.Constant != nil:
		to.Constant = from.Constant
		r.toChanged = true
		g.foldDirty = true
	case to.Constant != nil && from.Constant == nil:
		r.fromChanged = true
		g.foldDirty = true
	case to.Constant != nil && from.Constant != nil:
		if !to.Constant.Equal(from.Constant) {
			panic(violation(CodeConstantConflict, class, "cannot merge %s with %s", to.Constant, from.Constant))
		}
	}
	return r
}

func (g *EGraph) canonicalSet(s *set.Set[lang.Id]) *set.Set[lang.Id] {
	out := set.New[lang.Id](s.Size())
	for _, v := range s.Slice() {
		out.Insert(g.Find(v))
	}
	return out
}

// FreeVars returns the canonical ids of the variables free in every member of
// the class of id, in ascending order.
func (g *EGraph) FreeVars(id lang.Id) []lang.Id {
	c, ok := g.classes[g.Find(id)]
	if !ok {
		return nil
	}
	out := g.canonicalSet(c.data.FreeVars).Slice()
	slices.Sort(out)
	return out
}

// Constant returns the resolved constant of the class of id, or nil.
func (g *EGraph) Constant(id lang.Id) *Constant {
	c, ok := g.classes[g.Find(id)]
	if !ok {
		return nil
	}
	return c.data.Constant
}

// sweepConstants folds every foldable node in a class without a constant.
// It reports whether any class gained one.
func (g *EGraph) sweepConstants() bool {
	found := false
	for _, cid := range g.ClassIDs() {
		class := g.classes[cid]
		if class.data.Constant != nil {
			continue
		}
		for _, cn := range class.nodes {
			if _, ok := foldable[cn.node.Op]; !ok {
				continue
			}
			if c := g.makeConstant(g.canonicalize(cn.node)); c != nil {
				class.data.Constant = c
				g.modify = append(g.modify, cid)
				g.analysis = append(g.analysis, class.parents...)
				found = true
				break
			}
		}
	}
	if found {
		g.foldDirty = true
	}
	return found
}
