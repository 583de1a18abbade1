// Package pipeline fetches, parses and loads ingest files concurrently.
package pipeline

import (
	"context"
	"sync"
	"time"

	"arango-etl/internal/document"
	"arango-etl/internal/filestore"
	"arango-etl/internal/parser"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Fetcher is the slice of the object store the pipeline needs.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Loader writes one decoded report to the destination.
type Loader interface {
	Load(ctx context.Context, r *document.PocReport) error
}

// Pipeline runs fetch -> parse -> load for each file, up to workers files in
// flight at once. Files are independent: one failure never blocks or fails
// another, and no ordering is guaranteed across files. There is no internal
// retry; a failed file simply stays unmarked in the checkpoint and gets
// picked up by a later run or tick.
type Pipeline struct {
	fetch   Fetcher
	parse   *parser.Parser
	load    Loader
	workers int64
}

func New(f Fetcher, l Loader, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		fetch:   f,
		parse:   parser.New(),
		load:    l,
		workers: int64(workers),
	}
}

// Run processes every file and returns one outcome per input, in input
// order. Outcomes complete in arbitrary order internally; callers must not
// read anything into their sequence.
func (p *Pipeline) Run(ctx context.Context, files []filestore.FileDescriptor) []Outcome {
	outcomes := make([]Outcome, len(files))

	sem := semaphore.NewWeighted(p.workers)
	var wg sync.WaitGroup

	for i, fd := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			// context cancelled: leave the rest unprocessed but accounted for
			outcomes[i] = Outcome{File: fd, Status: Failed, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, fd filestore.FileDescriptor) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = p.processFile(ctx, fd)
		}(i, fd)
	}

	wg.Wait()
	return outcomes
}

// processFile runs one file through all three stages.
func (p *Pipeline) processFile(ctx context.Context, fd filestore.FileDescriptor) Outcome {
	started := time.Now()

	data, err := p.fetch.Fetch(ctx, fd.Key)
	if err != nil {
		logrus.Warnf("fetch failed | file=%s err=%v", fd.Key, err)
		return Outcome{File: fd, Status: Failed, Err: &StageError{Stage: StageFetch, Key: fd.Key, Err: err}}
	}

	reports, err := p.parse.Parse(fd.Key, data)
	if err != nil {
		logrus.Warnf("parse failed | file=%s err=%v", fd.Key, err)
		return Outcome{File: fd, Status: Failed, Err: &StageError{Stage: StageParse, Key: fd.Key, Err: err}}
	}

	for i := range reports {
		if err := p.load.Load(ctx, &reports[i]); err != nil {
			logrus.Warnf("load failed | file=%s poc_id=%s err=%v", fd.Key, reports[i].PocID, err)
			return Outcome{File: fd, Status: Failed, Err: &StageError{Stage: StageLoad, Key: fd.Key, Err: err}}
		}
	}

	logrus.Infof("[OK] file %s | reports: %d | time: %.2fs", fd.Key, len(reports), time.Since(started).Seconds())
	return Outcome{File: fd, Status: Loaded}
}
