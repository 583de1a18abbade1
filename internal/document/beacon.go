package document

import "time"

// Beacon is the destination document for one report, keyed by poc id.
type Beacon struct {
	Key            string    `json:"_key"`
	PocID          string    `json:"poc_id"`
	PubKey         string    `json:"pub_key"`
	IngestTime     time.Time `json:"ingest_time"`
	IngestTimeUnix int64     `json:"ingest_time_unix"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	Gain           int32     `json:"gain"`
	Elevation      int32     `json:"elevation"`
	HexScale       float64   `json:"hex_scale"`
	RewardUnit     float64   `json:"reward_unit"`
	Frequency      uint64    `json:"frequency"`
	Channel        int32     `json:"channel"`
	TxPower        int32     `json:"tx_power"`
	Witnesses      []Witness `json:"witnesses"`
}

// Witness is one embedded witness record on a beacon document.
type Witness struct {
	PubKey         string    `json:"pub_key"`
	IngestTime     time.Time `json:"ingest_time"`
	IngestTimeUnix int64     `json:"ingest_time_unix"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	Gain           int32     `json:"gain"`
	Elevation      int32     `json:"elevation"`
	HexScale       float64   `json:"hex_scale"`
	RewardUnit     float64   `json:"reward_unit"`
	Signal         int32     `json:"signal"`
	Snr            int32     `json:"snr"`
	InvalidReason  string    `json:"invalid_reason,omitempty"`
	Status         string    `json:"verification_status"`
	Selected       bool      `json:"selected"`
	DistanceKM     float64   `json:"distance"`
}

// NewBeacon flattens a report into its beacon document, attaching the
// distance from the beaconer to every witness that has a location.
func NewBeacon(r *PocReport) Beacon {
	br := r.BeaconReport
	b := Beacon{
		Key:            r.PocID,
		PocID:          r.PocID,
		PubKey:         br.PubKey,
		IngestTime:     br.ReceivedTimestamp.UTC(),
		IngestTimeUnix: br.ReceivedTimestamp.UnixMilli(),
		Latitude:       br.Latitude,
		Longitude:      br.Longitude,
		Gain:           br.Gain,
		Elevation:      br.Elevation,
		HexScale:       br.HexScale,
		RewardUnit:     br.RewardUnit,
		Frequency:      br.Frequency,
		Channel:        br.Channel,
		TxPower:        br.TxPower,
	}

	for _, w := range r.SelectedWitnesses {
		b.Witnesses = append(b.Witnesses, newWitness(w, true, b))
	}
	for _, w := range r.UnselectedWitnesses {
		b.Witnesses = append(b.Witnesses, newWitness(w, false, b))
	}
	return b
}

func newWitness(w WitnessReport, selected bool, b Beacon) Witness {
	return Witness{
		PubKey:         w.PubKey,
		IngestTime:     w.ReceivedTimestamp.UTC(),
		IngestTimeUnix: w.ReceivedTimestamp.UnixMilli(),
		Latitude:       w.Latitude,
		Longitude:      w.Longitude,
		Gain:           w.Gain,
		Elevation:      w.Elevation,
		HexScale:       w.HexScale,
		RewardUnit:     w.RewardUnit,
		Signal:         w.Signal,
		Snr:            w.Snr,
		InvalidReason:  w.InvalidReason,
		Status:         w.Status,
		Selected:       selected,
		DistanceKM:     DistanceKM(b.Latitude, b.Longitude, w.Latitude, w.Longitude),
	}
}
