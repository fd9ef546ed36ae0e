package history

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/domain"
)

func sampleSnapshot() domain.HistorySnapshot {
	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	return domain.HistorySnapshot{
		Records: []domain.BugRecord{
			{ID: "a1", Sequence: 1, Input: "KeyError: 'id'", Result: "Use dict.get.", Severity: domain.SeverityMedium,
				Language: "Python", Complexity: domain.ComplexityBeginner, Timestamp: at, Kind: domain.KindText},
			{ID: "b2", Sequence: 2, Input: "Image upload", Result: domain.DegradedResult(assert.AnError), Severity: domain.SeverityHigh,
				Language: "React", Complexity: domain.ComplexityAdvanced, Timestamp: at.Add(time.Minute), Kind: domain.KindImage},
		},
		TotalSolved:      2,
		SatisfactionRate: 95,
	}
}

func TestJSONLExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "history.jsonl")
	require.NoError(t, NewJSONLExporter().Export(context.Background(), sampleSnapshot(), dest))

	file, err := os.Open(dest)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "a1", lines[0]["id"])
	assert.Equal(t, "text", lines[0]["type"])
	assert.Equal(t, "2024-07-01T08:00:00Z", lines[0]["timestamp"])
	assert.Equal(t, "image", lines[1]["type"])
}

func TestJSONLExportTruncates(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "history.jsonl")
	exp := NewJSONLExporter()
	require.NoError(t, exp.Export(context.Background(), sampleSnapshot(), dest))

	one := sampleSnapshot()
	one.Records = one.Records[:1]
	require.NoError(t, exp.Export(context.Background(), one, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(data))
}

func TestSQLiteExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "history.db")
	exp := NewSQLiteExporter()
	exp.now = func() time.Time { return time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, exp.Export(context.Background(), sampleSnapshot(), dest))
	require.NoError(t, exp.Export(context.Background(), sampleSnapshot(), dest))

	db, err := sql.Open("sqlite", dest)
	require.NoError(t, err)
	defer db.Close()

	var records, failed, exports int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bug_records").Scan(&records))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bug_records WHERE failed = 1").Scan(&failed))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM exports").Scan(&exports))
	assert.Equal(t, 2, records)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, exports)

	var language string
	require.NoError(t, db.QueryRow("SELECT language FROM bug_records WHERE id = 'b2'").Scan(&language))
	assert.Equal(t, "React", language)
}

func TestExportEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, NewJSONLExporter().Export(context.Background(), domain.HistorySnapshot{}, filepath.Join(dir, "h.jsonl")), domain.ErrNoData)
	assert.ErrorIs(t, NewSQLiteExporter().Export(context.Background(), domain.HistorySnapshot{}, filepath.Join(dir, "h.db")), domain.ErrNoData)
	_, err := os.Stat(filepath.Join(dir, "h.jsonl"))
	assert.True(t, os.IsNotExist(err))
}

func TestExporterFor(t *testing.T) {
	exp, err := ExporterFor("out/history.JSONL")
	require.NoError(t, err)
	assert.IsType(t, &JSONLExporter{}, exp)

	exp, err = ExporterFor("archive.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteExporter{}, exp)

	_, err = ExporterFor("history.csv")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
