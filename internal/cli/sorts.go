package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/sorts"
)

// SortsResult describes a well-sorted program.
type SortsResult struct {
	Logic     string            `json:"logic"`
	Functions map[string]string `json:"functions"`
	Asserts   int               `json:"asserts"`
	CheckSats int               `json:"check_sats"`
}

func (r SortsResult) String() string {
	var b strings.Builder
	logic := r.Logic
	if logic == "" {
		logic = "(none)"
	}
	fmt.Fprintf(&b, "logic: %s\n", logic)

	names := make([]string, 0, len(r.Functions))
	for name := range r.Functions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "fun %s %s\n", name, r.Functions[name])
	}
	fmt.Fprintf(&b, "asserts: %d, check-sats: %d", r.Asserts, r.CheckSats)
	return b.String()
}

// NewSortsCommand creates the sorts command.
func NewSortsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sorts <program>",
		Short: "Check that a program is well sorted",
		Long: `Check the sorts of every command in a program. Asserts must be Bool and
define-fun bodies must match their declared sort.

Exit codes:
  0 - well sorted
  1 - sort error
  2 - command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			t, err := loadTerm(cmd, f, args[0])
			if err != nil {
				return err
			}
			sum, err := sorts.CheckProgram(t)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeSorts, "program is not well sorted", err)
			}

			res := SortsResult{
				Logic:     sum.Logic,
				Functions: make(map[string]string, len(sum.Functions)),
				Asserts:   sum.Asserts,
				CheckSats: sum.CheckSats,
			}
			for name, sig := range sum.Functions {
				res.Functions[name] = sig.String()
			}
			return f.Success(res)
		},
	}
	return cmd
}
