package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/domain"
)

func TestWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "2024")

	path, err := NewFileWriter().Write(dir, "bug_report_deadbeef.md", "# report\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bug_report_deadbeef.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# report\n", string(data))
}

func TestWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter()

	_, err := w.Write(dir, "bug_report_0badf00d.md", "same")
	require.NoError(t, err)
	_, err = w.Write(dir, "bug_report_0badf00d.md", "same")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteRejectsPaths(t *testing.T) {
	_, err := NewFileWriter().Write(t.TempDir(), "../escape.md", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
