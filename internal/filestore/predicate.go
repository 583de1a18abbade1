package filestore

import (
	"context"
	"time"
)

// Predicate selects files by their embedded timestamp. Implementations also
// expose the earliest timestamp they can match so listings can seek instead
// of scanning the whole bucket.
type Predicate interface {
	// Contains reports whether a file with the given timestamp matches.
	Contains(ts time.Time) bool
	// Start returns the earliest timestamp the predicate can match.
	Start() time.Time
}

// Range matches timestamps in [After, Before], both ends inclusive.
type Range struct {
	After  time.Time
	Before time.Time
}

func (r Range) Contains(ts time.Time) bool {
	return !ts.Before(r.After) && !ts.After(r.Before)
}

func (r Range) Start() time.Time { return r.After }

// Day matches the half-open interval [date 00:00:00, date+1 00:00:00) in UTC,
// so a file stamped 23:59:59.999 belongs to the day and midnight of the next
// day does not.
type Day struct {
	Date time.Time
}

func (d Day) Contains(ts time.Time) bool {
	start := d.Start()
	end := start.AddDate(0, 0, 1)
	return !ts.Before(start) && ts.Before(end)
}

func (d Day) Start() time.Time {
	y, m, day := d.Date.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// After matches every timestamp >= Since, open-ended. Current mode lists with
// this predicate from watermark minus the recency window, so files that failed
// or landed out of order behind the watermark are rediscovered; the processed
// ledger keeps the already-done ones from being loaded twice.
type After struct {
	Since time.Time
}

func (a After) Contains(ts time.Time) bool { return !ts.Before(a.Since) }

func (a After) Start() time.Time { return a.Since }

// Store is the object-store surface the engine needs: discovery and fetch.
type Store interface {
	// List returns descriptors for files matching the predicate, in no
	// particular order. Malformed keys are skipped, not fatal.
	List(ctx context.Context, p Predicate) ([]FileDescriptor, error)
	// Fetch returns the raw bytes of one file.
	Fetch(ctx context.Context, key string) ([]byte, error)
}
