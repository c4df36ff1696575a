package archive

import (
	"context"
	"time"

	"codeberg.org/mutker/cpumon/internal/telemetry"
)

// Archive keeps a queryable history of samples beyond the day logs.
type Archive interface {
	Record(ctx context.Context, rec telemetry.SampleRecord) error
	Flush(ctx context.Context) error
	// Query returns samples captured in [from, to), oldest first.
	Query(ctx context.Context, from, to time.Time) ([]telemetry.SampleRecord, error)
	Count(ctx context.Context) (int, error)
	Close() error
	Enabled() bool
}

// ImportStats summarises an import run.
type ImportStats struct {
	Files     int
	Rows      int
	Inserted  int
	Malformed int
}
