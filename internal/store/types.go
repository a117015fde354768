package store

// Term is a stored canonical term.
type Term struct {
	ID    string // canon.TermID
	SExpr string
	LEDA  string
	Nodes int
}

// Run is one dataset generation run.
type Run struct {
	ID        string // UUIDv7
	SourceID  string
	MaxDepth  int
	Requested int
	Seed      int64
}

// Sample is one sampled pattern within a run.
type Sample struct {
	RunID        string
	Seq          int64
	TermID       string
	Depth        int
	RootOp       string
	Placeholders int
}

// Simplification records the best term extracted from a source term under a
// rule set.
type Simplification struct {
	SourceID   string
	RuleSetID  string
	ResultID   string
	StopReason string
	Iterations int
}
