package pipeline

import (
	"fmt"

	"arango-etl/internal/filestore"
)

// Status is the terminal state of one file's processing attempt.
type Status int

const (
	// Loaded means every record in the file was written to the destination.
	Loaded Status = iota
	// SkippedDuplicate means the checkpoint ledger already had the file.
	SkippedDuplicate
	// Failed means fetch, parse or load broke; the file stays unmarked and
	// eligible for a later attempt.
	Failed
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case SkippedDuplicate:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
	StageLoad  Stage = "load"
)

// StageError wraps a per-file failure with the stage it happened in. Stage
// errors are contained: they fail one file, never the run.
type StageError struct {
	Stage Stage
	Key   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Key, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Outcome pairs a file with how its processing attempt ended.
type Outcome struct {
	File   filestore.FileDescriptor
	Status Status
	Err    error
}

// Summary aggregates outcomes for end-of-run reporting.
type Summary struct {
	Loaded  int
	Skipped int
	Failed  int
}

func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case Loaded:
		s.Loaded++
	case SkippedDuplicate:
		s.Skipped++
	case Failed:
		s.Failed++
	}
}

func (s Summary) Total() int { return s.Loaded + s.Skipped + s.Failed }

func (s Summary) String() string {
	return fmt.Sprintf("loaded=%d skipped=%d failed=%d", s.Loaded, s.Skipped, s.Failed)
}
