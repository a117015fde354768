package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedRun(t *testing.T, s *Store) Run {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.WriteTerm(ctx, Term{ID: "src", SExpr: "(a)", LEDA: "...", Nodes: 1}))
	run := Run{ID: "run-1", SourceID: "src", MaxDepth: 3, Requested: 10, Seed: 42}
	require.NoError(t, s.WriteRun(ctx, run))
	return run
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestTermRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	term := Term{ID: "abc", SExpr: "(marlang.meta.nil)", LEDA: "LEDA.GRAPH", Nodes: 1}
	require.NoError(t, s.WriteTerm(ctx, term))
	require.NoError(t, s.WriteTerm(ctx, Term{ID: "abc", SExpr: "other", LEDA: "other", Nodes: 9}), "duplicate id is a no-op")

	got, err := s.ReadTerm(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, term, got)

	_, err = s.ReadTerm(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRequiresSourceTerm(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteRun(context.Background(), Run{ID: "r", SourceID: "nope"})
	assert.Error(t, err, "foreign key")
}

func TestSamplesIdempotentPerRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := seedRun(t, s)
	require.NoError(t, s.WriteTerm(ctx, Term{ID: "t1", SExpr: "x", LEDA: "x", Nodes: 1}))
	require.NoError(t, s.WriteTerm(ctx, Term{ID: "t2", SExpr: "y", LEDA: "y", Nodes: 1}))

	ok, err := s.WriteSample(ctx, Sample{RunID: run.ID, Seq: 2, TermID: "t2", Depth: 1, RootOp: "not"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.WriteSample(ctx, Sample{RunID: run.ID, Seq: 1, TermID: "t1", Depth: 2, RootOp: "and", Placeholders: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.WriteSample(ctx, Sample{RunID: run.ID, Seq: 3, TermID: "t1", Depth: 2, RootOp: "and"})
	require.NoError(t, err)
	assert.False(t, ok, "same term twice in a run")

	samples, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(1), samples[0].Seq)
	assert.Equal(t, "t1", samples[0].TermID)
	assert.Equal(t, 1, samples[0].Placeholders)
	assert.Equal(t, int64(2), samples[1].Seq)

	n, err := s.Count(ctx, "samples")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestReadSamplesEmpty(t *testing.T) {
	s := createTestStore(t)
	samples, err := s.ReadSamples(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, samples)
	assert.Empty(t, samples)
}

func TestSimplificationUpsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"src", "r1", "r2"} {
		require.NoError(t, s.WriteTerm(ctx, Term{ID: id, SExpr: id, LEDA: id, Nodes: 1}))
	}

	require.NoError(t, s.WriteSimplification(ctx, Simplification{SourceID: "src", RuleSetID: "rs", ResultID: "r1", StopReason: "iteration-limit", Iterations: 3}))
	require.NoError(t, s.WriteSimplification(ctx, Simplification{SourceID: "src", RuleSetID: "rs", ResultID: "r2", StopReason: "saturated", Iterations: 5}))

	got, err := s.ReadSimplification(ctx, "src", "rs")
	require.NoError(t, err)
	assert.Equal(t, "r2", got.ResultID)
	assert.Equal(t, "saturated", got.StopReason)

	_, err = s.ReadSimplification(ctx, "src", "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountRejectsUnknownTable(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Count(context.Background(), "sqlite_master; DROP TABLE terms")
	assert.Error(t, err)
}
