package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/sample"
	"github.com/marlang/marlang/internal/store"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	ruleFlags
	Database string
	Count    int
	Depth    int
	Seed     uint64
}

// SampleResult summarizes one generation run.
type SampleResult struct {
	RunID      string `json:"run_id"`
	SourceID   string `json:"source_id"`
	Written    int    `json:"written"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
}

func (r SampleResult) String() string {
	return fmt.Sprintf("run %s: %d written, %d duplicates, %d failed",
		r.RunID, r.Written, r.Duplicates, r.Failed)
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample <program>",
		Short: "Draw abstracted subterm patterns into a SQLite dataset",
		Long: `Sample random operator-rooted subterms of a program, abstract everything
below the depth budget into placeholders and store the patterns as a run.

With --rules the program is simplified first and samples are drawn from its
smallest form.

Examples:
  marlang sample prog.sexpr --db dataset.db -n 100 --depth 3
  marlang sample prog.sexpr --db dataset.db --seed 7 --rules arith.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(opts, args[0], cmd)
		},
	}

	opts.ruleFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite dataset path (required)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 10, "number of samples to draw")
	cmd.Flags().IntVar(&opts.Depth, "depth", sample.DefaultMaxDepth, "depth kept before abstraction")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default: random)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSample(opts *SampleOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	src, err := loadTerm(cmd, f, path)
	if err != nil {
		return err
	}
	if opts.Count < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "invalid count", fmt.Errorf("count must be non-negative, got %d", opts.Count))
	}

	if opts.Rules != "" {
		var best *lang.Term
		_, best, _, err = simplify(opts.RootOptions, &opts.ruleFlags, src, opts.runnerOptions()...)
		if err != nil {
			return f.Fail(ExitCommandError, errCode(err), "simplifying", err)
		}
		src = best
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "opening dataset", err)
	}
	defer st.Close()

	gopts := []sample.GeneratorOption{
		sample.WithMaxDepth(opts.Depth),
		sample.WithGeneratorLogger(opts.logger()),
	}
	if cmd.Flags().Changed("seed") {
		gopts = append(gopts, sample.WithSeed(opts.Seed))
	}

	sum, err := sample.NewGenerator(st, gopts...).Generate(cmd.Context(), src, opts.Count)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "generating samples", err)
	}

	return f.Success(SampleResult{
		RunID:      sum.RunID,
		SourceID:   sum.SourceID,
		Written:    sum.Written,
		Duplicates: sum.Duplicates,
		Failed:     sum.Failed,
	})
}
