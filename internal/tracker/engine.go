// Package tracker orchestrates ingestion runs: the bounded history and
// rehydrate modes and the unbounded current mode all share one loop of
// list -> filter against the checkpoint -> pipeline -> mark processed, and
// differ only in predicate construction and watermark handling.
package tracker

import (
	"context"
	"fmt"
	"time"

	"arango-etl/internal/checkpoint"
	"arango-etl/internal/filestore"
	"arango-etl/internal/pipeline"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine wires the file index, checkpoint ledger and pipeline together for
// one stream. A single Engine drives at most one run or tick at a time;
// only the pipeline underneath it is concurrent.
type Engine struct {
	stream string
	store  filestore.Store
	cp     checkpoint.Store
	pipe   *pipeline.Pipeline
	// window is the checkpoint recency window. Ticks list from
	// watermark - window so files that failed, or arrived out of order
	// behind the watermark, are rediscovered; the processed ledger keeps
	// the already-done ones from being loaded again.
	window time.Duration
}

func NewEngine(stream string, store filestore.Store, cp checkpoint.Store, pipe *pipeline.Pipeline, window time.Duration) *Engine {
	return &Engine{
		stream: stream,
		store:  store,
		cp:     cp,
		pipe:   pipe,
		window: window,
	}
}

// ProcessRange runs history mode over [after, before], both inclusive.
// The watermark is left alone; files are only marked processed.
func (e *Engine) ProcessRange(ctx context.Context, after, before time.Time) (pipeline.Summary, error) {
	summary, _, err := e.run(ctx, filestore.Range{After: after, Before: before}, false, time.Time{})
	return summary, err
}

// ProcessDay runs rehydrate mode over one UTC day.
func (e *Engine) ProcessDay(ctx context.Context, date time.Time) (pipeline.Summary, error) {
	summary, _, err := e.run(ctx, filestore.Day{Date: date}, false, time.Time{})
	return summary, err
}

// Tick runs one current-mode iteration. The stored watermark decides where
// listing starts; fallback seeds it on the very first tick of a fresh
// stream. The returned time is the watermark after this tick.
func (e *Engine) Tick(ctx context.Context, fallback time.Time) (pipeline.Summary, time.Time, error) {
	return e.run(ctx, nil, true, fallback)
}

// run is the shared driver loop. When advance is true the predicate is
// derived from the loaded watermark and the watermark is advanced afterwards
// to the max timestamp among files actually loaded this pass - never to the
// pass's nominal end, so a failed file stays behind the watermark and
// eligible for the next tick.
func (e *Engine) run(ctx context.Context, pred filestore.Predicate, advance bool, fallback time.Time) (pipeline.Summary, time.Time, error) {
	var summary pipeline.Summary
	runID := uuid.NewString()[:8]
	log := logrus.WithField("run_id", runID)

	cp, err := e.cp.Load(ctx, e.stream)
	if err != nil {
		return summary, time.Time{}, err
	}

	watermark := cp.Watermark
	if advance {
		if watermark.IsZero() {
			watermark = fallback
		}
		// Look back over the recency window, but never before the
		// caller-supplied starting point of the stream.
		since := watermark.Add(-e.window)
		if since.Before(fallback) {
			since = fallback
		}
		pred = filestore.After{Since: since}
	}

	files, err := e.store.List(ctx, pred)
	if err != nil {
		return summary, watermark, fmt.Errorf("discover files for stream %s: %w", e.stream, err)
	}
	if len(files) == 0 {
		log.Infof("no files to process | stream=%s", e.stream)
		return summary, watermark, nil
	}

	// Filter out files the ledger already has before doing any work on them.
	candidates := files[:0:0]
	for _, fd := range files {
		if cp.Processed(fd.Key) {
			summary.Add(pipeline.Outcome{File: fd, Status: pipeline.SkippedDuplicate})
			continue
		}
		candidates = append(candidates, fd)
	}

	log.Infof("discovered files | stream=%s total=%d new=%d skipped=%d", e.stream, len(files), len(candidates), summary.Skipped)

	outcomes := e.pipe.Run(ctx, candidates)

	// Mark and advance only after the whole pass drained, from Loaded
	// outcomes alone. Completions raced in arbitrary order above; the
	// ledger writes below are sequential and idempotent.
	maxLoaded := time.Time{}
	for _, o := range outcomes {
		summary.Add(o)
		if o.Status != pipeline.Loaded {
			continue
		}
		if err := e.cp.MarkProcessed(ctx, e.stream, o.File); err != nil {
			return summary, watermark, err
		}
		if o.File.Timestamp.After(maxLoaded) {
			maxLoaded = o.File.Timestamp
		}
	}

	if advance && maxLoaded.After(watermark) {
		if err := e.cp.AdvanceWatermark(ctx, e.stream, maxLoaded); err != nil {
			return summary, watermark, err
		}
		watermark = maxLoaded
	}

	log.Infof("run complete | stream=%s %s", e.stream, summary)
	return summary, watermark, nil
}
