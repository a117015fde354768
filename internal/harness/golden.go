package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/marlang/marlang/internal/canon"
)

// Snapshot is the canonical JSON form of a run: the program as built and
// simplified, why saturation stopped, the number of rounds and the unions
// each rule caused. Timing is left out so snapshots are stable.
func Snapshot(res *Result) ([]byte, error) {
	applied := make(map[string]any)
	for name, n := range res.Applied() {
		applied[name] = n
	}
	iterations := 0
	stop := ""
	if res.Report != nil {
		iterations = len(res.Report.Iterations)
		stop = string(res.Report.StopReason)
	}
	return canon.Marshal(map[string]any{
		"name":        res.Name,
		"any":         res.Any,
		"best":        res.Best,
		"stop_reason": stop,
		"iterations":  iterations,
		"applied":     applied,
	})
}

// RunWithGolden runs a scenario, fails t on any failed assertion and compares
// the snapshot with testdata/golden/{scenario.Name}.golden.
func RunWithGolden(t *testing.T, s *Scenario, opts ...Option) *Result {
	t.Helper()

	res, err := Run(s, opts...)
	if err != nil {
		t.Fatalf("run %s: %v", s.Name, err)
	}
	for _, msg := range res.Errors {
		t.Error(msg)
	}
	AssertGolden(t, s.Name, res)
	return res
}

// AssertGolden compares the snapshot of res with testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, res *Result) {
	t.Helper()

	data, err := Snapshot(res)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
