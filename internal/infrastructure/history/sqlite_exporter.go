package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

var sqliteSchema = []string{`CREATE TABLE IF NOT EXISTS bug_records (
	id TEXT PRIMARY KEY,
	sequence INTEGER,
	timestamp TEXT,
	kind TEXT,
	severity TEXT,
	language TEXT,
	complexity TEXT,
	input TEXT,
	result TEXT,
	failed INTEGER
)`, `CREATE TABLE IF NOT EXISTS exports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exported_at TEXT,
	record_count INTEGER,
	total_solved INTEGER,
	satisfaction_rate REAL
)`}

// SQLiteExporter archives records into a SQLite database.
// Records are keyed by ID, so exporting the same session twice does not duplicate rows.
type SQLiteExporter struct {
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteExporter creates a SQLite exporter.
func NewSQLiteExporter() *SQLiteExporter {
	return &SQLiteExporter{now: time.Now}
}

// Export implements ports.HistoryExporter.
func (e *SQLiteExporter) Export(ctx context.Context, snapshot domain.HistorySnapshot, dest string) error {
	if snapshot.Empty() {
		return domain.ErrNoData
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", dest)
	if err != nil {
		return fmt.Errorf("open %s: %w", dest, err)
	}
	defer db.Close()

	for _, ddl := range sqliteSchema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bug_records
		(id, sequence, timestamp, kind, severity, language, complexity, input, result, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range snapshot.Records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.Sequence,
			rec.Timestamp.Format(domain.TimestampFormat),
			string(rec.Kind),
			string(rec.Severity),
			string(rec.Language),
			string(rec.Complexity),
			rec.Input,
			rec.Result,
			boolToInt(rec.Failed()),
		); err != nil {
			return fmt.Errorf("insert record %d: %w", rec.Sequence, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO exports
		(exported_at, record_count, total_solved, satisfaction_rate) VALUES (?, ?, ?, ?)`,
		e.now().Format(domain.TimestampFormat),
		len(snapshot.Records),
		snapshot.TotalSolved,
		snapshot.SatisfactionRate,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryExporter = (*SQLiteExporter)(nil)
