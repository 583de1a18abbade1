package document

import (
	"fmt"
	"time"
)

// PocReport is one proof-of-coverage report as it appears in an ingest file:
// a beacon transmission plus the witnesses that heard it. Files hold one
// JSON-encoded report per line.
type PocReport struct {
	PocID               string          `json:"poc_id"`
	BeaconReport        BeaconReport    `json:"beacon_report"`
	SelectedWitnesses   []WitnessReport `json:"selected_witnesses"`
	UnselectedWitnesses []WitnessReport `json:"unselected_witnesses"`
}

// BeaconReport is the transmitting hotspot's side of a report.
type BeaconReport struct {
	PubKey            string    `json:"pub_key"`
	ReceivedTimestamp time.Time `json:"received_timestamp"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	Gain              int32     `json:"gain"`
	Elevation         int32     `json:"elevation"`
	HexScale          float64   `json:"hex_scale"`
	RewardUnit        float64   `json:"reward_unit"`
	Frequency         uint64    `json:"frequency"`
	Channel           int32     `json:"channel"`
	TxPower           int32     `json:"tx_power"`
}

// WitnessReport is one receiving hotspot's side of a report.
type WitnessReport struct {
	PubKey            string    `json:"pub_key"`
	ReceivedTimestamp time.Time `json:"received_timestamp"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	Gain              int32     `json:"gain"`
	Elevation         int32     `json:"elevation"`
	HexScale          float64   `json:"hex_scale"`
	RewardUnit        float64   `json:"reward_unit"`
	Signal            int32     `json:"signal"`
	Snr               int32     `json:"snr"`
	InvalidReason     string    `json:"invalid_reason,omitempty"`
	Status            string    `json:"verification_status"`
}

// Validate rejects reports that cannot produce keyed documents.
func (r *PocReport) Validate() error {
	if r.PocID == "" {
		return fmt.Errorf("report missing poc_id")
	}
	if r.BeaconReport.PubKey == "" {
		return fmt.Errorf("report %s missing beacon pub_key", r.PocID)
	}
	return nil
}
