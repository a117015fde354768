package sample

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/marlang/marlang/internal/canon"
	"github.com/marlang/marlang/internal/lang"
	"github.com/marlang/marlang/internal/leda"
	"github.com/marlang/marlang/internal/store"
)

// DefaultMaxDepth is the depth budget used when none is configured.
const DefaultMaxDepth = 3

// Dataset is where generated samples go. *store.Store implements it.
type Dataset interface {
	WriteTerm(ctx context.Context, t store.Term) error
	WriteRun(ctx context.Context, r store.Run) error
	WriteSample(ctx context.Context, s store.Sample) (bool, error)
}

// Generator writes runs of samples to a Dataset.
type Generator struct {
	ds       Dataset
	ids      RunIDGenerator
	logger   *slog.Logger
	maxDepth int
	seed     uint64
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRunIDs replaces the UUIDv7 run id source.
func WithRunIDs(ids RunIDGenerator) GeneratorOption {
	return func(g *Generator) {
		g.ids = ids
	}
}

func WithMaxDepth(depth int) GeneratorOption {
	return func(g *Generator) {
		g.maxDepth = depth
	}
}

// WithSeed fixes the random source so a run is reproducible.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.seed = seed
	}
}

func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator returns a generator writing to ds.
func NewGenerator(ds Dataset, opts ...GeneratorOption) *Generator {
	g := &Generator{
		ds:       ds,
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
		seed:     rand.Uint64(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunSummary reports the outcome of one run.
type RunSummary struct {
	RunID      string
	SourceID   string
	Written    int
	Duplicates int
	Failed     int
}

// Generate draws n samples from source into a new run. Samples whose term
// already appears in the run count as duplicates; draws that find no
// operator root count as failed. Other errors abort the run.
func (g *Generator) Generate(ctx context.Context, source *lang.Term, n int) (*RunSummary, error) {
	srcID, err := g.writeTerm(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("generate: source: %w", err)
	}

	run := store.Run{
		ID:        g.ids.Generate(),
		SourceID:  srcID,
		MaxDepth:  g.maxDepth,
		Requested: n,
		Seed:      int64(g.seed),
	}
	if err := g.ds.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	sum := &RunSummary{RunID: run.ID, SourceID: srcID}
	sampler := New(rand.New(rand.NewPCG(g.seed, g.seed)), g.maxDepth)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("generate: %w", err)
		}

		res, err := sampler.Sample(source)
		if errors.Is(err, ErrNoRoot) {
			sum.Failed++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("generate: sample %d: %w", i, err)
		}

		termID, err := g.writeTerm(ctx, res.Term)
		if err != nil {
			return sum, fmt.Errorf("generate: sample %d: %w", i, err)
		}
		fresh, err := g.ds.WriteSample(ctx, store.Sample{
			RunID:        run.ID,
			Seq:          int64(i + 1),
			TermID:       termID,
			Depth:        res.Depth,
			RootOp:       source.Node(res.Root).Label(),
			Placeholders: len(res.Placeholders),
		})
		if err != nil {
			return sum, fmt.Errorf("generate: sample %d: %w", i, err)
		}
		if fresh {
			sum.Written++
		} else {
			sum.Duplicates++
		}
	}

	g.logger.Info("dataset run complete",
		"run_id", run.ID,
		"written", sum.Written,
		"duplicates", sum.Duplicates,
		"failed", sum.Failed)
	return sum, nil
}

func (g *Generator) writeTerm(ctx context.Context, t *lang.Term) (string, error) {
	id, err := canon.TermID(t)
	if err != nil {
		return "", err
	}
	text, err := leda.Marshal(t)
	if err != nil {
		return "", err
	}
	err = g.ds.WriteTerm(ctx, store.Term{ID: id, SExpr: t.String(), LEDA: text, Nodes: t.Len()})
	return id, err
}
