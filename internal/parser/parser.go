// Package parser turns raw ingest file bytes into poc reports.
package parser

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"arango-etl/internal/document"

	"github.com/sirupsen/logrus"
)

// Ingest files can hold reports of several hundred KB each; size the line
// scanner accordingly.
const maxLineBytes = 4 * 1024 * 1024

// Parser decodes gzipped newline-delimited JSON report files. A line that
// fails to decode is skipped with a warning so one bad report doesn't sink
// the rest of the file; a payload that isn't valid gzip fails the file.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse decodes every report in the file identified by key. The key is only
// used for log context.
func (p *Parser) Parse(key string, data []byte) ([]document.PocReport, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", key, err)
	}
	defer gz.Close()

	var reports []document.PocReport

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var report document.PocReport
		if err := json.Unmarshal(raw, &report); err != nil {
			logrus.Warnf("skipping undecodable report | file=%s line=%d err=%v", key, line, err)
			continue
		}
		if err := report.Validate(); err != nil {
			logrus.Warnf("skipping invalid report | file=%s line=%d err=%v", key, line, err)
			continue
		}
		reports = append(reports, report)
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return reports, nil
}
