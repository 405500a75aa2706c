package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tariff-backend/internal/plans"
)

// FileAdapter replays raw records captured from an earlier scrape, one JSON
// file per source ("<source>.json" holding an array of objects). It exists so
// the pipeline can run and be tested without touching any live site.
type FileAdapter struct {
	source string
	path   string
}

// NewFileAdapter constructs an adapter reading records for source from path.
func NewFileAdapter(source, path string) *FileAdapter {
	return &FileAdapter{source: source, path: path}
}

// DiscoverFileAdapters builds one adapter per *.json file in dir, using the
// file name as the source label.
func DiscoverFileAdapters(dir string) ([]Adapter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scrape dir: %w", err)
	}
	var out []Adapter
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		source := strings.TrimSuffix(entry.Name(), ".json")
		out = append(out, NewFileAdapter(source, filepath.Join(dir, entry.Name())))
	}
	return out, nil
}

// Source returns the adapter's brand label.
func (a *FileAdapter) Source() string { return a.source }

// Fetch reads and decodes the capture file.
func (a *FileAdapter) Fetch(ctx context.Context) ([]plans.RawPlanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, err
	}
	var records []plans.RawPlanRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.path, err)
	}
	return records, nil
}

var _ Adapter = (*FileAdapter)(nil)
