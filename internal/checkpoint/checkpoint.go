// Package checkpoint tracks how far ingestion has progressed for a stream.
//
// Two pieces of state make repeated and overlapping runs safe: a watermark
// timestamp that never moves backward, and a ledger of recently processed
// file keys kept within a bounded window behind the watermark. Files whose
// timestamps fall behind the window may be fetched again after eviction;
// the destination's keyed upserts make that reload a no-op.
package checkpoint

import (
	"context"
	"fmt"
	"time"

	"arango-etl/internal/filestore"
)

// Checkpoint is a point-in-time snapshot of one stream's progress. Drivers
// load it once per run or tick and filter candidates against it, rather than
// asking the backing store per file.
type Checkpoint struct {
	Watermark time.Time
	// Recent maps processed file keys to their embedded timestamps.
	Recent map[string]time.Time
}

// Processed reports whether the given file key has already been processed
// within the recency window.
func (c Checkpoint) Processed(key string) bool {
	_, ok := c.Recent[key]
	return ok
}

// Store is the durable ledger contract. MarkProcessed and AdvanceWatermark
// are idempotent and commutative, so completions arriving in any order leave
// the same final state. Implementations must surface backing-store failures:
// an engine that cannot consult its checkpoint must not guess.
type Store interface {
	// Load returns the stream's checkpoint, zero-valued if none exists yet.
	Load(ctx context.Context, stream string) (Checkpoint, error)
	// MarkProcessed records one file as done. Calling it again for the same
	// file is a no-op.
	MarkProcessed(ctx context.Context, stream string, file filestore.FileDescriptor) error
	// AdvanceWatermark sets the watermark to max(current, candidate) and
	// evicts ledger entries that fell behind the recency window.
	AdvanceWatermark(ctx context.Context, stream string, candidate time.Time) error
}

// Error wraps backing-store failures so drivers can tell them apart from
// per-file trouble: checkpoint errors abort the whole run or tick.
type Error struct {
	Op     string
	Stream string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("checkpoint %s for stream %s: %v", e.Op, e.Stream, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
