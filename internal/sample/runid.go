package sample

import "github.com/google/uuid"

// RunIDGenerator names dataset runs. UUIDv7Generator is used in production;
// tests use a fixed sequence.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator returns time-sortable UUIDv7 run ids, so runs list in
// creation order. It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
