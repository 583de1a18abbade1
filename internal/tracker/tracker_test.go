package tracker

import (
	"context"
	"testing"
	"time"

	"arango-etl/internal/checkpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTicker lets tests fire ticks explicitly instead of waiting on time.
type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()                  {}

func (f *fakeTicker) fire() { f.ch <- time.Now() }

func newTestTracker(engine *Engine) (*Tracker, *fakeTicker, chan TickReport) {
	ft := &fakeTicker{ch: make(chan time.Time)}
	reports := make(chan TickReport, 16)

	tr := New(engine, time.Second, base)
	tr.newTicker = func(time.Duration) ticker { return ft }
	tr.OnTick = func(r TickReport) { reports <- r }
	return tr, ft, reports
}

func waitReport(t *testing.T, reports chan TickReport) TickReport {
	t.Helper()
	select {
	case r := <-reports:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick report")
		return TickReport{}
	}
}

func TestTracker_TicksUntilCancelled(t *testing.T) {
	store := newFakeStore()
	store.add(t, base.Add(1*time.Hour), "poc-1")

	cp := checkpoint.NewMemory(24 * time.Hour)
	loader := &spyLoader{}
	engine := newEngine(store, cp, loader)

	tr, ft, reports := newTestTracker(engine)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	// The first tick fires immediately, before any ticker signal.
	first := waitReport(t, reports)
	require.NoError(t, first.Err)
	assert.Equal(t, 1, first.Summary.Loaded)
	assert.True(t, first.Watermark.Equal(base.Add(1*time.Hour)))

	// A new file shows up; the next tick picks it up.
	store.add(t, base.Add(2*time.Hour), "poc-2")
	ft.fire()
	second := waitReport(t, reports)
	require.NoError(t, second.Err)
	assert.Equal(t, 1, second.Summary.Loaded)
	assert.Equal(t, 1, second.Summary.Skipped)
	assert.True(t, second.Watermark.Equal(base.Add(2*time.Hour)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop after cancellation")
	}
}

func TestTracker_TickFailureKeepsLoopAlive(t *testing.T) {
	store := newFakeStore()
	store.add(t, base.Add(1*time.Hour), "poc-1")

	loader := &spyLoader{}
	engine := newEngine(store, brokenCheckpoint{}, loader)

	tr, ft, reports := newTestTracker(engine)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	first := waitReport(t, reports)
	assert.Error(t, first.Err)

	// The loop must survive the failed tick and try again.
	ft.fire()
	second := waitReport(t, reports)
	assert.Error(t, second.Err)
	assert.Equal(t, 0, loader.calls())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop after cancellation")
	}
}

func TestTracker_WatermarkMonotonicAcrossTicks(t *testing.T) {
	store := newFakeStore()
	store.add(t, base.Add(2*time.Hour), "poc-2")

	cp := checkpoint.NewMemory(24 * time.Hour)
	loader := &spyLoader{}
	engine := newEngine(store, cp, loader)

	tr, ft, reports := newTestTracker(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	first := waitReport(t, reports)
	require.NoError(t, first.Err)

	// A straggler older than everything loaded so far arrives late.
	store.add(t, base.Add(1*time.Hour), "poc-straggler")
	ft.fire()
	second := waitReport(t, reports)
	require.NoError(t, second.Err)

	assert.Equal(t, 1, second.Summary.Loaded, "straggler is loaded")
	assert.False(t, second.Watermark.Before(first.Watermark), "watermark never regresses")
	assert.True(t, second.Watermark.Equal(base.Add(2*time.Hour)))
}
