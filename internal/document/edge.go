package document

import "fmt"

// Edge is the graph edge from a beaconing hotspot to one of its witnesses.
// The key is derived from both public keys, so replaying a file rewrites the
// same edge instead of accumulating duplicates.
type Edge struct {
	Key             string  `json:"_key"`
	From            string  `json:"_from"`
	To              string  `json:"_to"`
	BeaconPubKey    string  `json:"beacon_pub_key"`
	WitnessPubKey   string  `json:"witness_pub_key"`
	DistanceKM      float64 `json:"distance"`
	WitnessSnr      int32   `json:"witness_snr"`
	WitnessSignal   int32   `json:"witness_signal"`
	IngestLatencyMS int64   `json:"ingest_latency"`
}

// NewEdge builds the beacon -> witness edge. Ingest latency is how long after
// the beacon's ingest the witness report arrived.
func NewEdge(b Beacon, w Witness) Edge {
	return Edge{
		Key:             fmt.Sprintf("beacon_%s_witness_%s", b.PubKey, w.PubKey),
		From:            HotspotCollection + "/" + b.PubKey,
		To:              HotspotCollection + "/" + w.PubKey,
		BeaconPubKey:    b.PubKey,
		WitnessPubKey:   w.PubKey,
		DistanceKM:      w.DistanceKM,
		WitnessSnr:      w.Snr,
		WitnessSignal:   w.Signal,
		IngestLatencyMS: w.IngestTimeUnix - b.IngestTimeUnix,
	}
}
