package parser

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"testing"
	"time"

	"arango-etl/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipLines(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		_, err := gz.Write(append([]byte(line), '\n'))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func reportLine(t *testing.T, pocID, pubKey string) string {
	t.Helper()
	r := document.PocReport{
		PocID: pocID,
		BeaconReport: document.BeaconReport{
			PubKey:            pubKey,
			ReceivedTimestamp: time.Date(2023, 11, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}

func TestParse_DecodesReports(t *testing.T) {
	p := New()
	data := gzipLines(t,
		reportLine(t, "poc-1", "hotspot-a"),
		reportLine(t, "poc-2", "hotspot-b"),
	)

	reports, err := p.Parse("iot_poc.1.gz", data)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "poc-1", reports[0].PocID)
	assert.Equal(t, "poc-2", reports[1].PocID)
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	p := New()
	data := gzipLines(t,
		reportLine(t, "poc-1", "hotspot-a"),
		"{not json",
		`{"poc_id": ""}`, // fails validation: empty poc_id
		"",
		reportLine(t, "poc-2", "hotspot-b"),
	)

	reports, err := p.Parse("iot_poc.1.gz", data)
	require.NoError(t, err, "bad lines are skipped, not fatal")
	require.Len(t, reports, 2)
	assert.Equal(t, "poc-1", reports[0].PocID)
	assert.Equal(t, "poc-2", reports[1].PocID)
}

func TestParse_RejectsNonGzip(t *testing.T) {
	p := New()
	_, err := p.Parse("iot_poc.1.gz", []byte("plain text, not gzip"))
	assert.Error(t, err)
}

func TestParse_EmptyFile(t *testing.T) {
	p := New()
	reports, err := p.Parse("iot_poc.1.gz", gzipLines(t))
	require.NoError(t, err)
	assert.Empty(t, reports)
}
