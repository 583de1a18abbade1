package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSink persists documents as one JSON file per key under
// <outputDir>/<collection>/<key>.json. Rewriting a key overwrites the file,
// which preserves the upsert contract, so local runs behave like the real
// destination. Mostly useful for smoke-testing a window before pointing the
// loader at ArangoDB.
type FileSink struct {
	outputDir string
	mu        sync.Mutex
	dirs      map[string]bool // collections with a created directory
}

// NewFileSink initialises a sink rooted at the given directory, creating the
// directory tree if it doesn't already exist.
func NewFileSink(outputDir string) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &FileSink{
		outputDir: outputDir,
		dirs:      make(map[string]bool),
	}, nil
}

// Upsert writes the document to its per-key file, lazily creating the
// collection directory.
func (s *FileSink) Upsert(_ context.Context, collection, key string, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.outputDir, collection)
	if !s.dirs[collection] {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create collection directory %s: %w", dir, err)
		}
		s.dirs[collection] = true
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, key, err)
	}

	fp := filepath.Join(dir, sanitizeKey(key)+".json")
	if err := os.WriteFile(fp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", fp, err)
	}
	return nil
}

// sanitizeKey keeps document keys usable as file names.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, key)
}
