package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/program"
	"github.com/marlang/marlang/internal/rules"
)

// Result is the outcome of running a scenario.
type Result struct {
	Name string

	// Pass is true when every assertion held.
	Pass   bool
	Errors []string

	Report *egraph.Report

	// Any is the program as built; Best is its smallest equivalent.
	Any  string
	Best string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Applied sums rule applications over every iteration.
func (r *Result) Applied() map[string]int {
	out := make(map[string]int)
	if r.Report == nil {
		return out
	}
	for _, it := range r.Report.Iterations {
		for name, n := range it.Applied {
			out[name] += n
		}
	}
	return out
}

type config struct {
	logger   *slog.Logger
	recorder egraph.Recorder
}

// Option configures Run.
type Option func(*config)

// WithLogger sets the logger for the program and its runner. Runs are silent
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithRecorder attaches a saturation recorder to the runner.
func WithRecorder(rec egraph.Recorder) Option {
	return func(c *config) {
		c.recorder = rec
	}
}

// Run builds the scenario's program, simplifies it and evaluates its
// assertions. Failed assertions are reported in the result; an error means
// the scenario itself could not run.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	popts := []program.Option{program.WithLogger(cfg.logger)}
	if cfg.recorder != nil {
		popts = append(popts, program.WithRunnerOptions(egraph.WithRecorder(cfg.recorder)))
	}
	p := program.New(popts...)

	for i, src := range s.Commands {
		t, err := lang.ParseTerm(src)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		id, err := p.AddTerm(t)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		p.Commit(id)
	}

	iters, err := addRules(p, s)
	if err != nil {
		return nil, err
	}

	rep, err := p.Simplify(iters)
	if err != nil {
		return nil, err
	}
	best, err := p.ExtractBest()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:   s.Name,
		Pass:   true,
		Report: rep,
		Any:    p.ExtractAny().String(),
		Best:   best.String(),
	}
	for i, a := range s.Assertions {
		if msg := evaluate(p, res, a); msg != "" {
			res.addError("assertions[%d] (%s): %s", i, a.Type, msg)
		}
	}
	return res, nil
}

// addRules registers the scenario's rules and returns the round limit.
func addRules(p *program.Program, s *Scenario) (int, error) {
	iters := rules.DefaultIterations
	if s.Rules != "" {
		rs, err := rules.LoadFile(s.Rules)
		if err != nil {
			return 0, err
		}
		rws, err := rs.Rewrites()
		if err != nil {
			return 0, err
		}
		p.AddRewrites(rws...)
		iters = rs.Iterations
	}

	for _, r := range s.Rewrites {
		rw, err := rules.Rule{Name: r.Name, Lhs: r.Lhs, Rhs: r.Rhs}.Rewrite()
		if err != nil {
			return 0, err
		}
		p.AddRewrites(rw)
	}

	if s.Iterations != nil {
		iters = *s.Iterations
	}
	return iters, nil
}
