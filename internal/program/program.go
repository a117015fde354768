package program

import (
	"fmt"
	"log/slog"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
)

// Program is a marlang program under construction together with the rewrite
// rules it is simplified with.
type Program struct {
	g        *egraph.EGraph
	commands []lang.Id
	rules    []*egraph.Rewrite

	explain    bool
	logger     *slog.Logger
	runnerOpts []egraph.RunnerOption
}

// Option configures a Program.
type Option func(*Program)

// WithoutExplanations disables the union log. Explain then fails with
// egraph.ErrExplanationsDisabled and Insert no longer keeps exact ids.
func WithoutExplanations() Option {
	return func(p *Program) {
		p.explain = false
	}
}

// WithLogger sets the logger for the graph and its runner.
func WithLogger(l *slog.Logger) Option {
	return func(p *Program) {
		p.logger = l
	}
}

// WithRunnerOptions adds options passed to every Runner created by Simplify,
// for example node and time limits or a metrics recorder.
func WithRunnerOptions(opts ...egraph.RunnerOption) Option {
	return func(p *Program) {
		p.runnerOpts = append(p.runnerOpts, opts...)
	}
}

// New creates an empty program.
func New(opts ...Option) *Program {
	p := &Program{
		explain: true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	gopts := []egraph.Option{egraph.WithLogger(p.logger)}
	if p.explain {
		gopts = append(gopts, egraph.WithExplanations())
	}
	p.g = egraph.New(gopts...)
	return p
}

// Graph returns the underlying e-graph.
func (p *Program) Graph() *egraph.EGraph {
	return p.g
}

// Commands returns the committed commands in order.
func (p *Program) Commands() []lang.Id {
	out := make([]lang.Id, len(p.commands))
	copy(out, p.commands)
	return out
}

// Rules returns the registered rewrite rules in order.
func (p *Program) Rules() []*egraph.Rewrite {
	out := make([]*egraph.Rewrite, len(p.rules))
	copy(out, p.rules)
	return out
}

// Commit appends an already built command to the program.
func (p *Program) Commit(cmd lang.Id) lang.Id {
	p.commands = append(p.commands, cmd)
	return cmd
}

// Root folds the committed commands into a list and returns its id. An empty
// program is the nil list.
func (p *Program) Root() lang.Id {
	return p.Fold(p.commands...)
}

// Fold builds the right-nested cons list of ids. If the last id is the rest
// placeholder symbol it becomes the list tail instead of an element.
func (p *Program) Fold(ids ...lang.Id) lang.Id {
	var tail lang.Id
	if n := len(ids); n > 0 && p.isRest(ids[n-1]) {
		tail = ids[n-1]
		ids = ids[:n-1]
	} else {
		tail = p.g.Insert(lang.NewNode(lang.OpNil))
	}
	for i := len(ids) - 1; i >= 0; i-- {
		tail = p.g.Insert(lang.NewNode(lang.OpCons, ids[i], tail))
	}
	return tail
}

func (p *Program) isRest(id lang.Id) bool {
	n := p.g.Node(id)
	return n.Op == lang.OpSymbol && n.Symbol == lang.RestSymbol
}

// AddTerm inserts every node of t and returns the id of its root.
func (p *Program) AddTerm(t *lang.Term) (id lang.Id, err error) {
	defer egraph.Recover(&err)
	return p.g.InsertTerm(t), nil
}

// Term returns the concrete term built under id.
func (p *Program) Term(id lang.Id) *lang.Term {
	return p.g.Term(id)
}

// Pattern renders the term built under id as a rewrite pattern. Every id in
// subs, wherever it occurs, becomes the variable "?<id>", so the same ids
// used on both sides of a rule bind the same variables.
func (p *Program) Pattern(id lang.Id, subs ...lang.Id) *lang.Term {
	vars := make(map[lang.Id]bool, len(subs))
	for _, s := range subs {
		vars[s] = true
	}

	t := lang.NewTerm()
	memo := make(map[lang.Id]lang.Id)
	var walk func(lang.Id) lang.Id
	walk = func(i lang.Id) lang.Id {
		if out, ok := memo[i]; ok {
			return out
		}
		var out lang.Id
		if vars[i] {
			out = t.Add(lang.Sym(fmt.Sprintf("?%d", i)))
		} else {
			out = t.Add(p.g.Node(i).Map(walk))
		}
		memo[i] = out
		return out
	}
	walk(id)
	return t
}

// AddRewrite registers a named rule. Variables on the right must be bound on
// the left.
func (p *Program) AddRewrite(name string, lhs, rhs *lang.Term) error {
	rw, err := egraph.NewRewrite(name, lhs, rhs)
	if err != nil {
		return fmt.Errorf("add rewrite: %w", err)
	}
	p.rules = append(p.rules, rw)
	return nil
}

// AddRewrites registers already compiled rules.
func (p *Program) AddRewrites(rules ...*egraph.Rewrite) {
	p.rules = append(p.rules, rules...)
}
