package document

import "time"

// Hotspot is the destination document for one participant, keyed by public
// key. The same hotspot shows up across many reports; the loader upserts it
// so the latest observation wins.
type Hotspot struct {
	Key           string    `json:"_key"`
	PubKey        string    `json:"pub_key"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Gain          int32     `json:"gain"`
	Elevation     int32     `json:"elevation"`
	LastPocID     string    `json:"last_poc_id"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// BeaconHotspot derives the transmitting hotspot's document from a beacon.
func BeaconHotspot(b Beacon) Hotspot {
	return Hotspot{
		Key:           b.PubKey,
		PubKey:        b.PubKey,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		Gain:          b.Gain,
		Elevation:     b.Elevation,
		LastPocID:     b.PocID,
		LastUpdatedAt: b.IngestTime,
	}
}

// WitnessHotspot derives a receiving hotspot's document from an embedded
// witness record.
func WitnessHotspot(w Witness) Hotspot {
	return Hotspot{
		Key:           w.PubKey,
		PubKey:        w.PubKey,
		Latitude:      w.Latitude,
		Longitude:     w.Longitude,
		Gain:          w.Gain,
		Elevation:     w.Elevation,
		LastUpdatedAt: w.IngestTime,
	}
}
