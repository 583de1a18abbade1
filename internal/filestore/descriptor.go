package filestore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FileDescriptor identifies one remote ingest file. The timestamp is derived
// from the object key and is the only ordering information the engine has;
// listings make no promise about the order descriptors come back in.
type FileDescriptor struct {
	Key       string
	Timestamp time.Time
	Size      int64
}

// ParseKey extracts the stream name and embedded timestamp from an object key
// of the form <stream>.<unix_millis>.gz, e.g. "iot_poc.1698883200000.gz".
func ParseKey(key string) (FileDescriptor, error) {
	base := key
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	parts := strings.Split(base, ".")
	if len(parts) != 3 || parts[2] != "gz" {
		return FileDescriptor{}, fmt.Errorf("malformed file key %q", key)
	}

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("malformed timestamp in file key %q: %w", key, err)
	}

	return FileDescriptor{
		Key:       key,
		Timestamp: time.UnixMilli(ms).UTC(),
	}, nil
}

// Key builds the canonical object key for a stream and timestamp.
func Key(stream string, ts time.Time) string {
	return fmt.Sprintf("%s.%d.gz", stream, ts.UnixMilli())
}
