package sink

import (
	"context"
	"fmt"

	"arango-etl/internal/document"

	"github.com/sirupsen/logrus"
)

// Loader expands poc reports into destination documents and writes them
// through a Sink. Every document carries a natural key, so re-loading a
// report converges instead of duplicating.
type Loader struct {
	sink Sink
}

func NewLoader(s Sink) *Loader {
	return &Loader{sink: s}
}

// Load writes one report: the hotspot documents for every participant, one
// edge per witness, and finally the beacon itself. Reports without selected
// witnesses carry no verified coverage and are skipped.
func (l *Loader) Load(ctx context.Context, r *document.PocReport) error {
	if len(r.SelectedWitnesses) == 0 {
		logrus.Debugf("ignoring report without witnesses | poc_id=%s", r.PocID)
		return nil
	}

	beacon := document.NewBeacon(r)

	hotspot := document.BeaconHotspot(beacon)
	if err := l.sink.Upsert(ctx, document.HotspotCollection, hotspot.Key, hotspot); err != nil {
		return fmt.Errorf("upsert beacon hotspot %s: %w", hotspot.Key, err)
	}

	for _, w := range beacon.Witnesses {
		wh := document.WitnessHotspot(w)
		if err := l.sink.Upsert(ctx, document.HotspotCollection, wh.Key, wh); err != nil {
			return fmt.Errorf("upsert witness hotspot %s: %w", wh.Key, err)
		}

		edge := document.NewEdge(beacon, w)
		if err := l.sink.Upsert(ctx, document.WitnessCollection, edge.Key, edge); err != nil {
			return fmt.Errorf("upsert edge %s: %w", edge.Key, err)
		}
	}

	if err := l.sink.Upsert(ctx, document.BeaconCollection, beacon.Key, beacon); err != nil {
		return fmt.Errorf("upsert beacon %s: %w", beacon.Key, err)
	}
	return nil
}
