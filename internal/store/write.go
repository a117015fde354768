package store

import (
	"context"
	"fmt"
)

// WriteTerm inserts a term. Terms are content-addressed, so an existing id is
// left untouched.
func (s *Store) WriteTerm(ctx context.Context, t Term) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO terms (id, sexpr, leda, nodes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, t.ID, t.SExpr, t.LEDA, t.Nodes)
	if err != nil {
		return fmt.Errorf("write term: %w", err)
	}
	return nil
}

// WriteRun inserts a run. The source term must already be stored.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_id, max_depth, requested, seed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.SourceID, r.MaxDepth, r.Requested, r.Seed)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSample inserts a sample and reports whether it was new. A sample whose
// term already appears in the run, or whose seq is taken, is ignored.
func (s *Store) WriteSample(ctx context.Context, smp Sample) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (run_id, seq, term_id, depth, root_op, placeholders)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, smp.RunID, smp.Seq, smp.TermID, smp.Depth, smp.RootOp, smp.Placeholders)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	return n == 1, nil
}

// WriteSimplification records a simplification result, replacing an earlier
// result for the same source and rule set.
func (s *Store) WriteSimplification(ctx context.Context, sim Simplification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simplifications (source_id, ruleset_id, result_id, stop_reason, iterations)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, ruleset_id) DO UPDATE SET
			result_id = excluded.result_id,
			stop_reason = excluded.stop_reason,
			iterations = excluded.iterations
	`, sim.SourceID, sim.RuleSetID, sim.ResultID, sim.StopReason, sim.Iterations)
	if err != nil {
		return fmt.Errorf("write simplification: %w", err)
	}
	return nil
}
