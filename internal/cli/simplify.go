package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/canon"
	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/leda"
	"github.com/marlang/marlang/internal/metrics"
	"github.com/marlang/marlang/internal/program"
	"github.com/marlang/marlang/internal/store"
)

// SimplifyOptions holds flags for the simplify command.
type SimplifyOptions struct {
	*RootOptions
	ruleFlags
	Database string
	Metrics  bool
}

// SimplifyResult is the outcome of one simplification.
type SimplifyResult struct {
	Best       string `json:"best"`
	StopReason string `json:"stop_reason"`
	Iterations int    `json:"iterations"`
	Nodes      int    `json:"nodes"`
	Classes    int    `json:"classes"`
	SourceID   string `json:"source_id"`
	ResultID   string `json:"result_id"`
	RuleSetID  string `json:"rule_set_id"`
}

func (r SimplifyResult) String() string { return r.Best }

// NewSimplifyCommand creates the simplify command.
func NewSimplifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimplifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simplify <program>",
		Short: "Saturate a program under a rule set and print its smallest form",
		Long: `Simplify a program by equality saturation.

Rules come from a CUE file (see --rules). Without rules only constant
folding applies. The smallest equivalent program is printed; with --db the
source, the result and the stop reason are recorded in a SQLite store.

Examples:
  marlang simplify prog.sexpr --rules arith.cue
  marlang simplify prog.leda --rules arith.cue --iterations 5 --format json
  marlang simplify - --db dataset.db < prog.sexpr`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(opts, args[0], cmd)
		},
	}

	opts.ruleFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the simplification in this SQLite store")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print saturation metrics to stderr")

	return cmd
}

func runSimplify(opts *SimplifyOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	src, err := loadTerm(cmd, f, path)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	runOpts := opts.runnerOptions()
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		runOpts = append(runOpts, egraph.WithRecorder(metrics.NewRecorder(reg)))
	}

	p, best, res, err := simplify(opts.RootOptions, &opts.ruleFlags, src, runOpts...)
	if err != nil {
		return f.Fail(ExitCommandError, errCode(err), "simplifying", err)
	}
	if opts.Database != "" {
		if err := recordSimplification(cmd.Context(), opts.Database, src, best, res); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "recording simplification", err)
		}
		fmt.Fprintf(f.Diagnostics(), "recorded %s in %s\n", res.ResultID, opts.Database)
	}
	if reg != nil {
		if err := writeMetrics(f.Diagnostics(), reg); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "writing metrics", err)
		}
	}
	opts.logger().Debug("simplified", "classes", p.Graph().ClassCount(), "result_id", res.ResultID)

	return f.Success(res)
}

// stageError tags a simplification failure with its error code.
type stageError struct {
	code string
	err  error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func errCode(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.code
	}
	return ErrCodeGeneric
}

// simplify builds src as a program, loads the rules and saturates. It returns
// the program, its smallest form and the summary.
func simplify(root *RootOptions, rf *ruleFlags, src *lang.Term, runOpts ...egraph.RunnerOption) (*program.Program, *lang.Term, SimplifyResult, error) {
	var res SimplifyResult

	rs, err := rf.load()
	if err != nil {
		return nil, nil, res, &stageError{ErrCodeRules, err}
	}
	rws, err := rs.Rewrites()
	if err != nil {
		return nil, nil, res, &stageError{ErrCodeRules, err}
	}

	p, err := buildProgram(src,
		program.WithLogger(root.logger()),
		program.WithRunnerOptions(runOpts...))
	if err != nil {
		return nil, nil, res, &stageError{ErrCodeParseFailed, err}
	}
	p.AddRewrites(rws...)

	rep, err := p.Simplify(rs.Iterations)
	if err != nil {
		return nil, nil, res, &stageError{ErrCodeSimplify, err}
	}
	best, err := p.ExtractBest()
	if err != nil {
		return nil, nil, res, &stageError{ErrCodeSimplify, err}
	}

	res = SimplifyResult{
		Best:       best.String(),
		StopReason: string(rep.StopReason),
		Iterations: len(rep.Iterations),
		Nodes:      p.Graph().NodeCount(),
		Classes:    p.Graph().ClassCount(),
	}
	if res.SourceID, err = canon.TermID(src); err != nil {
		return nil, nil, res, &stageError{ErrCodeGeneric, err}
	}
	if res.ResultID, err = canon.TermID(best); err != nil {
		return nil, nil, res, &stageError{ErrCodeGeneric, err}
	}
	if res.RuleSetID, err = rs.ID(); err != nil {
		return nil, nil, res, &stageError{ErrCodeRules, err}
	}
	return p, best, res, nil
}

func recordSimplification(ctx context.Context, path string, src, best *lang.Term, res SimplifyResult) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, t := range []*lang.Term{src, best} {
		text, err := leda.Marshal(t)
		if err != nil {
			return err
		}
		id, err := canon.TermID(t)
		if err != nil {
			return err
		}
		if err := st.WriteTerm(ctx, store.Term{ID: id, SExpr: t.String(), LEDA: text, Nodes: t.Len()}); err != nil {
			return err
		}
	}
	return st.WriteSimplification(ctx, store.Simplification{
		SourceID:   res.SourceID,
		RuleSetID:  res.RuleSetID,
		ResultID:   res.ResultID,
		StopReason: res.StopReason,
		Iterations: res.Iterations,
	})
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
