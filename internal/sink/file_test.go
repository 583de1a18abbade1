package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_UpsertOverwrites(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileSink(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Upsert(ctx, "beacons", "poc-1", map[string]string{"v": "first"}))
	require.NoError(t, fs.Upsert(ctx, "beacons", "poc-1", map[string]string{"v": "second"}))

	data, err := os.ReadFile(filepath.Join(dir, "beacons", "poc-1.json"))
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "second", doc["v"], "re-upserting a key replaces the document")

	entries, err := os.ReadDir(filepath.Join(dir, "beacons"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileSink_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileSink(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Upsert(context.Background(), "hotspots", "a/b:c", map[string]int{"x": 1}))

	_, err = os.Stat(filepath.Join(dir, "hotspots", "a_b_c.json"))
	assert.NoError(t, err)
}
