package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	ruleFlags
}

// ExplainResult is a proof that two terms are equal.
type ExplainResult struct {
	Lhs         string `json:"lhs"`
	Rhs         string `json:"rhs"`
	Length      int    `json:"length"`
	Explanation string `json:"explanation"`
}

func (r ExplainResult) String() string {
	return strings.TrimSuffix(r.Explanation, "\n")
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <program> <lhs> <rhs>",
		Short: "Explain why two terms are equal after simplification",
		Long: `Simplify a program, then print the chain of rule applications, constant
folds and congruences connecting lhs to rhs. Both terms are s-expressions.

Exit codes:
  0 - the terms are equal
  1 - the terms are not known to be equal
  2 - command error`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args, cmd)
		},
	}

	opts.ruleFlags.register(cmd)

	return cmd
}

func runExplain(opts *ExplainOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	src, err := loadTerm(cmd, f, args[0])
	if err != nil {
		return err
	}
	lhs, err := lang.ParseTerm(args[1])
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParseFailed, "parsing lhs", err)
	}
	rhs, err := lang.ParseTerm(args[2])
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParseFailed, "parsing rhs", err)
	}

	p, _, _, err := simplify(opts.RootOptions, &opts.ruleFlags, src, opts.runnerOptions()...)
	if err != nil {
		return f.Fail(ExitCommandError, errCode(err), "simplifying", err)
	}

	e, err := p.ExplainEquivalence(lhs, rhs)
	if errors.Is(err, egraph.ErrNotEquivalent) {
		return f.Fail(ExitFailure, ErrCodeNotEquiv, "terms are not equal", nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "explaining", err)
	}

	return f.Success(ExplainResult{
		Lhs:         lhs.String(),
		Rhs:         rhs.String(),
		Length:      e.Len(),
		Explanation: e.String(),
	})
}
