// Package document holds the shapes ingested files decode into and the
// destination documents derived from them. Every destination document carries
// a natural key, so loading the same report twice converges on the same state.
package document

// Destination collection names.
const (
	BeaconCollection  = "beacons"
	HotspotCollection = "hotspots"
	WitnessCollection = "witnesses" // edge collection, beacon -> witness
)
