package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/leda"
)

// LEDAOptions holds flags for the leda subcommands.
type LEDAOptions struct {
	*RootOptions
	Output string
}

// NewLEDACommand creates the leda command with its read and write
// subcommands.
func NewLEDACommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leda",
		Short: "Convert programs to and from the LEDA.GRAPH interchange format",
	}
	cmd.AddCommand(newLEDAWriteCommand(&LEDAOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newLEDAReadCommand(&LEDAOptions{RootOptions: rootOpts}))
	return cmd
}

func newLEDAWriteCommand(opts *LEDAOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "write <program>",
		Short:         "Write a program as a LEDA.GRAPH",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			t, err := loadTerm(cmd, f, args[0])
			if err != nil {
				return err
			}
			text, err := leda.Marshal(t)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeWriteFailed, "encoding graph", err)
			}
			return emit(opts, f, text, map[string]any{"leda": text, "nodes": t.Len()})
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	return cmd
}

func newLEDAReadCommand(opts *LEDAOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "read <file>",
		Short:         "Read a LEDA.GRAPH and print it as an s-expression",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			data, err := readInput(cmd, args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeReadFailed, "reading graph", err)
			}
			t, err := leda.Unmarshal(string(data))
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeParseFailed, "parsing graph", err)
			}
			text := t.String() + "\n"
			return emit(opts, f, text, map[string]any{"sexpr": t.String(), "nodes": t.Len()})
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	return cmd
}

// emit writes text to the output file or, without one, to the formatter: raw
// in text mode, as data in JSON mode.
func emit(opts *LEDAOptions, f *OutputFormatter, text string, data map[string]any) error {
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "writing output file", err)
		}
		if f.IsJSON() {
			return f.Success(map[string]any{"output": opts.Output})
		}
		fmt.Fprintf(f.Writer, "Wrote %s\n", opts.Output)
		return nil
	}
	if f.IsJSON() {
		return f.Success(data)
	}
	_, err := fmt.Fprint(f.Writer, text)
	return err
}
