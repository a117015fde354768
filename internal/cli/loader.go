package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marlang/marlang/internal/egraph"
	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/leda"
	"github.com/marlang/marlang/internal/program"
	"github.com/marlang/marlang/internal/rules"
)

const ledaHeader = "LEDA.GRAPH"

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// parseProgram accepts an s-expression or a LEDA.GRAPH file.
func parseProgram(data []byte) (*lang.Term, error) {
	text := bytes.TrimSpace(data)
	if bytes.HasPrefix(text, []byte(ledaHeader)) {
		return leda.Unmarshal(string(data))
	}
	return lang.ParseTerm(string(text))
}

// loadTerm reads and parses a program, reporting failures through f.
func loadTerm(cmd *cobra.Command, f *OutputFormatter, path string) (*lang.Term, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeReadFailed, "reading program", err)
	}
	t, err := parseProgram(data)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeParseFailed, "parsing program", err)
	}
	return t, nil
}

// buildProgram commits every command of a command list. A term that is not a
// list is committed as the only command.
func buildProgram(t *lang.Term, opts ...program.Option) (*program.Program, error) {
	p := program.New(opts...)

	cmds, err := t.Decompose(t.Root())
	if errors.Is(err, lang.ErrNotAList) {
		cmds = []lang.Id{t.Root()}
	} else if err != nil {
		return nil, err
	}

	for _, c := range cmds {
		id, err := p.AddTerm(t.Subterm(c))
		if err != nil {
			return nil, err
		}
		p.Commit(id)
	}
	return p, nil
}

// ruleFlags are shared by commands that simplify.
type ruleFlags struct {
	Rules      string
	Iterations int
	NodeLimit  int
	TimeLimit  time.Duration
}

func (r *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.Rules, "rules", "r", "", "CUE rule set file")
	cmd.Flags().IntVar(&r.Iterations, "iterations", -1, "round limit (default: the rule set's)")
	cmd.Flags().IntVar(&r.NodeLimit, "node-limit", egraph.DefaultNodeLimit, "stop once the graph holds more nodes")
	cmd.Flags().DurationVar(&r.TimeLimit, "time-limit", egraph.DefaultTimeLimit, "stop after this much saturation time")
}

// load returns the rule set named by the flags, or an empty one.
func (r *ruleFlags) load() (*rules.RuleSet, error) {
	rs := &rules.RuleSet{Iterations: rules.DefaultIterations}
	if r.Rules != "" {
		var err error
		if rs, err = rules.LoadFile(r.Rules); err != nil {
			return nil, err
		}
	}
	if r.Iterations >= 0 {
		rs.Iterations = r.Iterations
	}
	return rs, nil
}

func (r *ruleFlags) runnerOptions() []egraph.RunnerOption {
	return []egraph.RunnerOption{
		egraph.WithNodeLimit(r.NodeLimit),
		egraph.WithTimeLimit(r.TimeLimit),
	}
}
