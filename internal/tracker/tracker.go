package tracker

import (
	"context"
	"time"

	"arango-etl/internal/pipeline"

	"github.com/sirupsen/logrus"
)

// TickReport describes one completed tick for observers (status API, logs).
type TickReport struct {
	At        time.Time
	Watermark time.Time
	Summary   pipeline.Summary
	Err       error
}

// ticker abstracts time.Ticker so tests can drive the loop without waiting
// on real time.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) Chan() <-chan time.Time { return t.C }

// Tracker runs current mode: an immediate first tick, then one tick per
// interval until the context is cancelled. A failed tick is logged and the
// loop keeps going; in-flight work finishes before the loop notices
// cancellation, so idempotent progress is never torn down mid-file.
type Tracker struct {
	engine   *Engine
	interval time.Duration
	after    time.Time

	// OnTick, when set, receives a report after every tick.
	OnTick func(TickReport)

	newTicker func(time.Duration) ticker
}

// New builds a Tracker that seeds the watermark with after on the first tick
// of a fresh stream.
func New(engine *Engine, interval time.Duration, after time.Time) *Tracker {
	return &Tracker{
		engine:   engine,
		interval: interval,
		after:    after,
		newTicker: func(d time.Duration) ticker {
			return realTicker{time.NewTicker(d)}
		},
	}
}

// Run blocks until ctx is cancelled. It returns nil on clean shutdown.
func (t *Tracker) Run(ctx context.Context) error {
	logrus.Infof("starting current tracker | after=%s interval=%s", t.after.Format(time.RFC3339), t.interval)

	t.tick(ctx)

	tk := t.newTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("stopping current tracker")
			return nil
		case <-tk.Chan():
			t.tick(ctx)
		}
	}
}

func (t *Tracker) tick(ctx context.Context) {
	summary, watermark, err := t.engine.Tick(ctx, t.after)
	if err != nil {
		// tick-fatal errors (discovery, checkpoint) skip this tick only;
		// the next tick retries from the stored watermark
		logrus.Errorf("tick failed, will retry next interval: %v", err)
	} else {
		logrus.Infof("tick complete | watermark=%s %s", watermark.Format(time.RFC3339), summary)
	}

	if t.OnTick != nil {
		t.OnTick(TickReport{
			At:        time.Now().UTC(),
			Watermark: watermark,
			Summary:   summary,
			Err:       err,
		})
	}
}
