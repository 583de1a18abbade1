package sink

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"arango-etl/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upsertCall struct {
	collection string
	key        string
}

// spySink records every upsert; optionally fails specific keys.
type spySink struct {
	mu    sync.Mutex
	calls []upsertCall
	errs  map[string]error
}

func (s *spySink) Upsert(_ context.Context, collection, key string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[key]; ok {
		return err
	}
	s.calls = append(s.calls, upsertCall{collection: collection, key: key})
	return nil
}

func floatPtr(f float64) *float64 { return &f }

func testReport() *document.PocReport {
	ts := time.Date(2023, 11, 1, 12, 0, 0, 0, time.UTC)
	return &document.PocReport{
		PocID: "poc-1",
		BeaconReport: document.BeaconReport{
			PubKey:            "beaconer",
			ReceivedTimestamp: ts,
			Latitude:          floatPtr(40.0),
			Longitude:         floatPtr(-105.0),
		},
		SelectedWitnesses: []document.WitnessReport{{
			PubKey:            "witness-a",
			ReceivedTimestamp: ts.Add(200 * time.Millisecond),
			Latitude:          floatPtr(40.1),
			Longitude:         floatPtr(-105.1),
			Signal:            -90,
			Snr:               5,
			Status:            "valid",
		}},
		UnselectedWitnesses: []document.WitnessReport{{
			PubKey:            "witness-b",
			ReceivedTimestamp: ts.Add(300 * time.Millisecond),
			Status:            "valid",
		}},
	}
}

func TestLoad_WritesAllDocuments(t *testing.T) {
	spy := &spySink{}
	loader := NewLoader(spy)

	require.NoError(t, loader.Load(context.Background(), testReport()))

	// beacon hotspot + 2 witness hotspots + 2 edges + the beacon itself
	require.Len(t, spy.calls, 6)

	byCollection := map[string][]string{}
	for _, c := range spy.calls {
		byCollection[c.collection] = append(byCollection[c.collection], c.key)
	}
	assert.ElementsMatch(t, []string{"beaconer", "witness-a", "witness-b"}, byCollection[document.HotspotCollection])
	assert.ElementsMatch(t, []string{
		"beacon_beaconer_witness_witness-a",
		"beacon_beaconer_witness_witness-b",
	}, byCollection[document.WitnessCollection])
	assert.Equal(t, []string{"poc-1"}, byCollection[document.BeaconCollection])
}

func TestLoad_ReloadUsesSameKeys(t *testing.T) {
	spy := &spySink{}
	loader := NewLoader(spy)
	ctx := context.Background()

	require.NoError(t, loader.Load(ctx, testReport()))
	first := append([]upsertCall(nil), spy.calls...)

	require.NoError(t, loader.Load(ctx, testReport()))
	second := spy.calls[len(first):]

	assert.Equal(t, first, second, "replaying a report targets the exact same keys")
}

func TestLoad_SkipsWitnesslessReport(t *testing.T) {
	spy := &spySink{}
	loader := NewLoader(spy)

	r := testReport()
	r.SelectedWitnesses = nil

	require.NoError(t, loader.Load(context.Background(), r))
	assert.Empty(t, spy.calls, "reports without selected witnesses are ignored")
}

func TestLoad_PropagatesSinkError(t *testing.T) {
	spy := &spySink{errs: map[string]error{"witness-a": fmt.Errorf("destination down")}}
	loader := NewLoader(spy)

	err := loader.Load(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "witness-a")
}

func TestLoad_WitnessDistanceAttached(t *testing.T) {
	beacon := document.NewBeacon(testReport())

	require.Len(t, beacon.Witnesses, 2)
	assert.Greater(t, beacon.Witnesses[0].DistanceKM, 0.0, "located witness gets a distance")
	assert.Equal(t, 0.0, beacon.Witnesses[1].DistanceKM, "unlocated witness defaults to zero")
	assert.True(t, beacon.Witnesses[0].Selected)
	assert.False(t, beacon.Witnesses[1].Selected)
}
