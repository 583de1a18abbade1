package checkpoint

import (
	"context"
	"sync"
	"time"

	"arango-etl/internal/filestore"
)

// Memory is an in-process Store. It backs bounded one-shot runs when no Redis
// endpoint is configured; continuous mode should use the Redis store so the
// watermark survives restarts.
type Memory struct {
	window time.Duration

	mu      sync.Mutex
	streams map[string]*memoryStream
}

type memoryStream struct {
	watermark time.Time
	recent    map[string]time.Time
}

func NewMemory(window time.Duration) *Memory {
	return &Memory{
		window:  window,
		streams: make(map[string]*memoryStream),
	}
}

func (m *Memory) stream(name string) *memoryStream {
	st, ok := m.streams[name]
	if !ok {
		st = &memoryStream{recent: make(map[string]time.Time)}
		m.streams[name] = st
	}
	return st
}

func (m *Memory) Load(_ context.Context, stream string) (Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.stream(stream)
	recent := make(map[string]time.Time, len(st.recent))
	for k, ts := range st.recent {
		recent[k] = ts
	}
	return Checkpoint{Watermark: st.watermark, Recent: recent}, nil
}

func (m *Memory) MarkProcessed(_ context.Context, stream string, file filestore.FileDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.stream(stream)
	st.recent[file.Key] = file.Timestamp
	m.evict(st)
	return nil
}

func (m *Memory) AdvanceWatermark(_ context.Context, stream string, candidate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.stream(stream)
	if candidate.After(st.watermark) {
		st.watermark = candidate
	}
	m.evict(st)
	return nil
}

// evict drops ledger entries older than watermark - window. Caller holds mu.
func (m *Memory) evict(st *memoryStream) {
	if st.watermark.IsZero() || m.window <= 0 {
		return
	}
	cutoff := st.watermark.Add(-m.window)
	for k, ts := range st.recent {
		if ts.Before(cutoff) {
			delete(st.recent, k)
		}
	}
}
