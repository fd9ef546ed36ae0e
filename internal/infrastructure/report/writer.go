// Package report persists generated reports on disk.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// FileWriter writes reports into a directory, creating it when needed.
type FileWriter struct{}

// NewFileWriter creates a FileWriter.
func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// Write stores content as dir/filename and returns the path.
// Reports are content-addressed, so an existing file with the same name is overwritten.
func (FileWriter) Write(dir, filename, content string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: invalid report filename %q", domain.ErrValidation, filename)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), domain.ReportFilePermissions); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

var _ ports.ReportWriter = FileWriter{}
