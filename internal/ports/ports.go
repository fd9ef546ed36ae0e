// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The analysis pipeline depends on these abstractions
// only: the AI service, configuration storage, export sinks and logging all live
// behind interfaces so the core can be exercised with stubs.
package ports

import (
	"context"
	"io"

	"github.com/doeshing/bugsqa/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.bugsqa/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// AnalysisClient executes a prompt against an AI service and returns free-form text.
// attachment is non-nil only for image reports. Failures are *domain.AnalysisError.
// Implementations make exactly one attempt.
type AnalysisClient interface {
	Name() string
	Analyze(ctx context.Context, prompt string, attachment *domain.Attachment) (string, error)
}

// ClientFactory builds analysis clients from model definitions.
// A missing credential is reported as domain.ErrConfiguration.
type ClientFactory interface {
	ForModel(context.Context, domain.ModelDefinition) (AnalysisClient, error)
}

// HistoryExporter writes a snapshot of the session history to an external sink.
// Exports are write-only artifacts; nothing reads them back into a session.
type HistoryExporter interface {
	Export(ctx context.Context, snapshot domain.HistorySnapshot, dest string) error
}

// ReportWriter persists a generated report and returns its final path.
type ReportWriter interface {
	Write(dir, filename, content string) (string, error)
}

// MarkdownRenderer turns analysis markdown into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// LineReader feeds the interactive session one line at a time.
// io.EOF ends the session.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	io.Closer
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
