package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadTerm returns the term stored under id, or ErrNotFound.
func (s *Store) ReadTerm(ctx context.Context, id string) (Term, error) {
	var t Term
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sexpr, leda, nodes FROM terms WHERE id = ?
	`, id).Scan(&t.ID, &t.SExpr, &t.LEDA, &t.Nodes)
	if errors.Is(err, sql.ErrNoRows) {
		return Term{}, fmt.Errorf("read term %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Term{}, fmt.Errorf("read term %s: %w", id, err)
	}
	return t, nil
}

// ReadRun returns the run stored under id, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, max_depth, requested, seed FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.SourceID, &r.MaxDepth, &r.Requested, &r.Seed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadSamples returns the samples of a run ordered by seq. It returns an
// empty slice, not nil, when the run has none.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, term_id, depth, root_op, placeholders
		FROM samples
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(&smp.RunID, &smp.Seq, &smp.TermID, &smp.Depth, &smp.RootOp, &smp.Placeholders); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// ReadSimplification returns the recorded result for a source and rule set,
// or ErrNotFound.
func (s *Store) ReadSimplification(ctx context.Context, sourceID, ruleSetID string) (Simplification, error) {
	var sim Simplification
	err := s.db.QueryRowContext(ctx, `
		SELECT source_id, ruleset_id, result_id, stop_reason, iterations
		FROM simplifications
		WHERE source_id = ? AND ruleset_id = ?
	`, sourceID, ruleSetID).Scan(&sim.SourceID, &sim.RuleSetID, &sim.ResultID, &sim.StopReason, &sim.Iterations)
	if errors.Is(err, sql.ErrNoRows) {
		return Simplification{}, fmt.Errorf("read simplification: %w", ErrNotFound)
	}
	if err != nil {
		return Simplification{}, fmt.Errorf("read simplification: %w", err)
	}
	return sim, nil
}
