// Package history writes session history to external archives.
// Archives are write-only: nothing here loads records back into a session.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// JSONLExporter writes one JSON object per record.
type JSONLExporter struct {
	mu sync.Mutex
}

// NewJSONLExporter creates a JSONL exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Export implements ports.HistoryExporter. dest is truncated first.
func (e *JSONLExporter) Export(ctx context.Context, snapshot domain.HistorySnapshot, dest string) error {
	if snapshot.Empty() {
		return domain.ErrNoData
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.ReportFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	for _, rec := range snapshot.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %d: %w", rec.Sequence, err)
		}
	}
	return file.Sync()
}

// ExporterFor picks an exporter from the destination's extension.
func ExporterFor(dest string) (ports.HistoryExporter, error) {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".jsonl", ".json":
		return NewJSONLExporter(), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteExporter(), nil
	default:
		return nil, fmt.Errorf("%w: export destination must end in .jsonl or .db, got %q", domain.ErrValidation, dest)
	}
}

var _ ports.HistoryExporter = (*JSONLExporter)(nil)
