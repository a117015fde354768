package egraph

import "github.com/marlang/marlang/internal/lang"

// Rebuild restores congruence and analysis after unions. It returns the
// number of unions it performed itself. Rebuild is idempotent on a clean
// graph.
func (g *EGraph) Rebuild() (unions int, err error) {
	defer Recover(&err)
	unions = g.rebuild()
	return unions, nil
}

func (g *EGraph) rebuild() int {
	var congruent, analysed, modified int

	for {
		if len(g.pending) > 0 {
			todo := g.pending
			g.pending = nil
			for _, p := range todo {
				canon := g.canonicalize(p.node)
				if other, ok := g.memo[canon]; ok {
					if g.Union(other, p.id, Congruence()) {
						congruent++
					}
					continue
				}
				g.memo[canon] = p.id
			}
			continue
		}

		if len(g.analysis) > 0 {
			todo := g.analysis
			g.analysis = nil
			for _, p := range todo {
				cid := g.Find(p.id)
				class := g.classes[cid]
				fresh := g.makeData(g.canonicalize(p.node), cid)
				if r := g.mergeData(&class.data, fresh, cid); r.toChanged {
					analysed++
					g.analysis = append(g.analysis, class.parents...)
					if class.data.Constant != nil {
						g.modify = append(g.modify, cid)
					}
				}
			}
			continue
		}

		if len(g.modify) > 0 {
			id := g.modify[0]
			g.modify = g.modify[1:]
			if g.applyConstant(id) {
				modified++
			}
			continue
		}

		if g.foldDirty {
			g.foldDirty = false
			if g.sweepConstants() {
				continue
			}
		}

		break
	}

	g.rebuildClasses()

	if unions := congruent + modified; unions > 0 || analysed > 0 {
		g.logger.Debug("egraph rebuilt",
			"congruence_unions", congruent,
			"analysis_updates", analysed,
			"constant_unions", modified,
			"classes", len(g.classes))
	}
	return congruent + modified
}

// applyConstant joins the class of id with the literal of its constant. With
// explanations the folded application is inserted as well, so the log shows
// the class reaching the literal through its proof.
func (g *EGraph) applyConstant(id lang.Id) bool {
	cid := g.Find(id)
	c := g.classes[cid].data.Constant
	if c == nil {
		return false
	}
	if g.log != nil && c.Proof != nil {
		proof := g.InsertTerm(c.Proof)
		lit := g.InsertTerm(c.Literal)
		return g.Union(proof, lit, Analysis())
	}
	lit := g.InsertTerm(c.Literal)
	return g.Union(cid, lit, Analysis())
}

// rebuildClasses canonicalizes and deduplicates the member nodes and parent
// lists of every class.
func (g *EGraph) rebuildClasses() {
	for _, c := range g.classes {
		seen := make(map[lang.Node]bool, len(c.nodes))
		nodes := c.nodes[:0]
		for _, cn := range c.nodes {
			canon := g.canonicalize(cn.node)
			if seen[canon] {
				continue
			}
			seen[canon] = true
			nodes = append(nodes, classNode{node: canon, birth: cn.birth})
		}
		c.nodes = nodes

		seenParent := make(map[lang.Node]bool, len(c.parents))
		parents := c.parents[:0]
		for _, p := range c.parents {
			canon := g.canonicalize(p.node)
			if seenParent[canon] {
				continue
			}
			seenParent[canon] = true
			parents = append(parents, parentRef{node: canon, id: p.id})
		}
		c.parents = parents

		c.data.FreeVars = g.canonicalSet(c.data.FreeVars)
	}
}
