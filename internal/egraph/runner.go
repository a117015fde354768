package egraph

import (
	"fmt"
	"log/slog"
	"time"
)

// Default saturation limits.
const (
	DefaultIterLimit = 30
	DefaultNodeLimit = 10_000
	DefaultTimeLimit = 5 * time.Second
)

// StopReason records why a Runner stopped.
type StopReason string

const (
	StopSaturated      StopReason = "saturated"
	StopIterationLimit StopReason = "iteration-limit"
	StopNodeLimit      StopReason = "node-limit"
	StopTimeLimit      StopReason = "time-limit"
	StopError          StopReason = "error"
)

// Iteration summarizes one round of equality saturation.
type Iteration struct {
	Index int

	// Applied counts the unions each rule caused, keyed by rule name.
	Applied map[string]int

	// Unions is the total of Applied.
	Unions int

	// RebuildUnions counts congruence and constant unions found by rebuild.
	RebuildUnions int

	Nodes   int
	Classes int
}

// Report is the outcome of Runner.Run.
type Report struct {
	Iterations []Iteration
	StopReason StopReason
	Nodes      int
	Classes    int
	Elapsed    time.Duration
}

// TotalUnions sums rule unions across iterations.
func (r *Report) TotalUnions() int {
	n := 0
	for _, it := range r.Iterations {
		n += it.Unions
	}
	return n
}

// Recorder observes saturation runs. The metrics package provides a
// Prometheus implementation.
type Recorder interface {
	ObserveIteration(it Iteration)
	ObserveStop(reason StopReason, elapsed time.Duration)
}

// Runner drives equality saturation over one EGraph.
type Runner struct {
	g         *EGraph
	iterLimit int
	nodeLimit int
	timeLimit time.Duration
	logger    *slog.Logger
	recorder  Recorder
	now       func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithIterLimit bounds the number of rounds.
func WithIterLimit(n int) RunnerOption {
	return func(r *Runner) {
		r.iterLimit = n
	}
}

// WithNodeLimit stops the run once the graph holds more than n nodes.
func WithNodeLimit(n int) RunnerOption {
	return func(r *Runner) {
		r.nodeLimit = n
	}
}

// WithTimeLimit stops the run once d has elapsed between rounds.
func WithTimeLimit(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeLimit = d
	}
}

// WithRunLogger sets the logger for iteration and stop lines.
func WithRunLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock replaces time.Now, for tests of the time limit.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner with default limits.
func NewRunner(g *EGraph, opts ...RunnerOption) *Runner {
	r := &Runner{
		g:         g,
		iterLimit: DefaultIterLimit,
		nodeLimit: DefaultNodeLimit,
		timeLimit: DefaultTimeLimit,
		logger:    g.logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run saturates the graph with rules. Each round searches every rule against
// the rebuilt graph before applying any of them, so the result of a round
// does not depend on rule order. The graph is rebuilt after every round and
// is clean when Run returns without error.
func (r *Runner) Run(rules []*Rewrite) (rep *Report, err error) {
	start := r.now()
	rep = &Report{}
	defer func() {
		if err != nil {
			rep.StopReason = StopError
		}
		rep.Nodes = r.g.NodeCount()
		rep.Classes = r.g.ClassCount()
		rep.Elapsed = r.now().Sub(start)
		r.logger.Info("saturation stopped",
			"reason", string(rep.StopReason),
			"iterations", len(rep.Iterations),
			"nodes", rep.Nodes,
			"classes", rep.Classes)
		if r.recorder != nil {
			r.recorder.ObserveStop(rep.StopReason, rep.Elapsed)
		}
	}()
	defer Recover(&err)

	r.g.rebuild()

	for i := 0; ; i++ {
		if reason, stop := r.checkLimits(i, start); stop {
			rep.StopReason = reason
			return rep, nil
		}

		it := r.step(i, rules)
		rep.Iterations = append(rep.Iterations, it)
		r.logger.Debug("saturation iteration",
			"iteration", it.Index,
			"unions", it.Unions,
			"rebuild_unions", it.RebuildUnions,
			"nodes", it.Nodes,
			"classes", it.Classes)
		if r.recorder != nil {
			r.recorder.ObserveIteration(it)
		}

		if it.Unions == 0 {
			rep.StopReason = StopSaturated
			return rep, nil
		}
	}
}

func (r *Runner) checkLimits(i int, start time.Time) (StopReason, bool) {
	switch {
	case i >= r.iterLimit:
		return StopIterationLimit, true
	case r.g.NodeCount() > r.nodeLimit:
		return StopNodeLimit, true
	case r.now().Sub(start) > r.timeLimit:
		return StopTimeLimit, true
	}
	return "", false
}

func (r *Runner) step(i int, rules []*Rewrite) Iteration {
	matches := make([][]Match, len(rules))
	for j, rw := range rules {
		matches[j] = rw.Lhs.Search(r.g)
	}

	it := Iteration{Index: i, Applied: make(map[string]int, len(rules))}
	for j, rw := range rules {
		n := rw.Apply(r.g, matches[j])
		it.Applied[rw.Name] += n
		it.Unions += n
	}
	it.RebuildUnions = r.g.rebuild()
	it.Nodes = r.g.NodeCount()
	it.Classes = r.g.ClassCount()
	return it
}

// Simplify is a convenience wrapper: run rules for at most iterLimit rounds
// with default node and time limits.
func Simplify(g *EGraph, rules []*Rewrite, iterLimit int) (*Report, error) {
	rep, err := NewRunner(g, WithIterLimit(iterLimit)).Run(rules)
	if err != nil {
		return rep, fmt.Errorf("simplify: %w", err)
	}
	return rep, nil
}
