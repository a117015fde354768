package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/store"
)

const (
	arithRules = "../rules/testdata/arith.cue"
	addZero    = "testdata/add_zero.sexpr"
	declared   = "testdata/declared.sexpr"

	addZeroBest = "(marlang.meta.cons (marlang.command.assert (marlang.operator.int.> (marlang.meta.cons (marlang.function.call y marlang.meta.nil) (marlang.meta.cons (marlang.value.int 0) marlang.meta.nil)))) marlang.meta.nil)"
	plusYZero   = "(marlang.operator.int.+ (marlang.meta.cons (marlang.function.call y marlang.meta.nil) (marlang.meta.cons (marlang.value.int 0) marlang.meta.nil)))"
	callY       = "(marlang.function.call y marlang.meta.nil)"
)

// run executes cmd with args and returns stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, out string) (CLIResponse, map[string]any) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	data, _ := resp.Data.(map[string]any)
	return resp, data
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"simplify", "explain", "leda", "sample", "sorts", "test"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("format"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, NewRootCommand(), "--format", "xml", "sorts", declared)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestSimplifyText(t *testing.T) {
	out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "text"}), addZero, "--rules", arithRules)
	require.NoError(t, err)
	assert.Equal(t, addZeroBest+"\n", out)
}

func TestSimplifyJSON(t *testing.T) {
	out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "json"}), addZero, "-r", arithRules)
	require.NoError(t, err)

	resp, data := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, addZeroBest, data["best"])
	assert.Equal(t, "saturated", data["stop_reason"])
	assert.Equal(t, float64(2), data["iterations"])
	assert.NotEmpty(t, data["source_id"])
	assert.NotEqual(t, data["source_id"], data["result_id"])
}

func TestSimplifyFoldsWithoutRules(t *testing.T) {
	out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "text"}), declared)
	require.NoError(t, err)
	assert.Contains(t, out, "(marlang.value.int 5)")
	assert.NotContains(t, out, "marlang.operator.int.+")
}

func TestSimplifyIterationFlag(t *testing.T) {
	out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "json"}),
		addZero, "--rules", arithRules, "--iterations", "0")
	require.NoError(t, err)

	_, data := decode(t, out)
	assert.Equal(t, "iteration-limit", data["stop_reason"])
	assert.Equal(t, float64(0), data["iterations"])
}

func TestSimplifyReadsStdinAndLEDA(t *testing.T) {
	src, err := os.ReadFile(addZero)
	require.NoError(t, err)

	cmd := NewSimplifyCommand(&RootOptions{Format: "text"})
	cmd.SetIn(bytes.NewReader(src))
	out, err := run(t, cmd, "-", "--rules", arithRules)
	require.NoError(t, err)
	assert.Equal(t, addZeroBest+"\n", out)

	graph := filepath.Join(t.TempDir(), "prog.leda")
	_, err = run(t, NewLEDACommand(&RootOptions{Format: "text"}), "write", addZero, "-o", graph)
	require.NoError(t, err)

	out, err = run(t, NewSimplifyCommand(&RootOptions{Format: "text"}), graph, "--rules", arithRules)
	require.NoError(t, err)
	assert.Equal(t, addZeroBest+"\n", out)
}

func TestSimplifyRecordsToStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "out.db")
	out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "json"}), addZero, "--rules", arithRules, "--db", db)
	require.NoError(t, err)
	_, data := decode(t, out)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	sim, err := st.ReadSimplification(context.Background(), data["source_id"].(string), data["rule_set_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, data["result_id"], sim.ResultID)
	assert.Equal(t, "saturated", sim.StopReason)

	best, err := st.ReadTerm(context.Background(), sim.ResultID)
	require.NoError(t, err)
	assert.Equal(t, addZeroBest, best.SExpr)
}

func TestSimplifyMetrics(t *testing.T) {
	cmd := NewSimplifyCommand(&RootOptions{Format: "text"})
	var out, diag bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&diag)
	cmd.SetArgs([]string{addZero, "--rules", arithRules, "--metrics"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, addZeroBest+"\n", out.String())
	assert.Contains(t, diag.String(), "marlang_saturation_iterations_total 2")
	assert.Contains(t, diag.String(), `marlang_rule_unions_total{rule="add-zero"} 1`)
}

func TestSimplifyErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.sexpr")
	require.NoError(t, os.WriteFile(bad, []byte("(marlang.meta.cons"), 0o644))

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing file", []string{"testdata/nope.sexpr"}, ErrCodeReadFailed},
		{"syntax error", []string{bad}, ErrCodeParseFailed},
		{"missing rules", []string{addZero, "--rules", "testdata/nope.cue"}, ErrCodeRules},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, NewSimplifyCommand(&RootOptions{Format: "json"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp, _ := decode(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExplain(t *testing.T) {
	out, err := run(t, NewExplainCommand(&RootOptions{Format: "text"}), addZero, plusYZero, callY, "--rules", arithRules)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, plusYZero, lines[0])
	assert.Contains(t, out, "add-zero")

	out, err = run(t, NewExplainCommand(&RootOptions{Format: "json"}), addZero, plusYZero, callY, "--rules", arithRules)
	require.NoError(t, err)
	_, data := decode(t, out)
	assert.Equal(t, plusYZero, data["lhs"])
	assert.Equal(t, callY, data["rhs"])
	assert.GreaterOrEqual(t, data["length"], float64(1))
}

func TestExplainNotEquivalent(t *testing.T) {
	out, err := run(t, NewExplainCommand(&RootOptions{Format: "json"}), addZero, callY, "(marlang.value.int 0)", "--rules", arithRules)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, _ := decode(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotEquiv, resp.Error.Code)
}

func TestExplainBadTerm(t *testing.T) {
	_, err := run(t, NewExplainCommand(&RootOptions{Format: "text"}), addZero, "(", callY)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLEDARoundTrip(t *testing.T) {
	data, err := os.ReadFile(addZero)
	require.NoError(t, err)
	src, err := lang.ParseTerm(string(data))
	require.NoError(t, err)

	graph, err := run(t, NewLEDACommand(&RootOptions{Format: "text"}), "write", addZero)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(graph, "LEDA.GRAPH"))

	path := filepath.Join(t.TempDir(), "prog.leda")
	require.NoError(t, os.WriteFile(path, []byte(graph), 0o644))

	out, err := run(t, NewLEDACommand(&RootOptions{Format: "text"}), "read", path)
	require.NoError(t, err)
	assert.Equal(t, src.String()+"\n", out)

	out, err = run(t, NewLEDACommand(&RootOptions{Format: "json"}), "read", path)
	require.NoError(t, err)
	_, fields := decode(t, out)
	assert.Equal(t, src.String(), fields["sexpr"])
	assert.Equal(t, float64(src.Len()), fields["nodes"])
}

func TestLEDAReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.leda")
	require.NoError(t, os.WriteFile(path, []byte("LEDA.GRAPH\nnope\n"), 0o644))

	out, err := run(t, NewLEDACommand(&RootOptions{Format: "json"}), "read", path)
	require.Error(t, err)
	resp, _ := decode(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParseFailed, resp.Error.Code)
}

func TestSorts(t *testing.T) {
	out, err := run(t, NewSortsCommand(&RootOptions{Format: "text"}), declared)
	require.NoError(t, err)
	assert.Equal(t, "logic: (none)\nfun x [] -> Int\nasserts: 1, check-sats: 1\n", out)

	out, err = run(t, NewSortsCommand(&RootOptions{Format: "json"}), declared)
	require.NoError(t, err)
	_, data := decode(t, out)
	assert.Equal(t, map[string]any{"x": "[] -> Int"}, data["functions"])
}

func TestSortsRejectsUnboundName(t *testing.T) {
	out, err := run(t, NewSortsCommand(&RootOptions{Format: "json"}), addZero)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, _ := decode(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSorts, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unbound name y")
}

func TestSample(t *testing.T) {
	db := filepath.Join(t.TempDir(), "samples.db")
	out, err := run(t, NewSampleCommand(&RootOptions{Format: "json"}),
		addZero, "--db", db, "-n", "6", "--depth", "2", "--seed", "7")
	require.NoError(t, err)

	_, data := decode(t, out)
	total := data["written"].(float64) + data["duplicates"].(float64) + data["failed"].(float64)
	assert.Equal(t, float64(6), total)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	samples, err := st.ReadSamples(context.Background(), data["run_id"].(string))
	require.NoError(t, err)
	assert.Len(t, samples, int(data["written"].(float64)))
}

func TestSampleRequiresDatabase(t *testing.T) {
	_, err := run(t, NewSampleCommand(&RootOptions{Format: "text"}), addZero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

const (
	scenarios = "../harness/testdata/scenarios"
	golden    = "../harness/testdata/golden"
)

func TestTestCommandPasses(t *testing.T) {
	out, err := run(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--golden", golden)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ add_zero")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := run(t, NewTestCommand(&RootOptions{Format: "json"}), scenarios, "--golden", golden, "--filter", "add_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "add_zero", resp.Data.Scenarios[0].Name)
}

func TestTestCommandUpdatesGolden(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--golden", dir, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, "add_zero.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(golden, "add_zero.golden"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(string(want)), string(written))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "add_zero.golden"), []byte("{}"), 0o644))
	out, err := run(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--golden", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "snapshot does not match golden file")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, err := run(t, NewTestCommand(&RootOptions{Format: "text"}), "testdata/none")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
