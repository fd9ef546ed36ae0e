package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/application/analysis"
	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
	historyexport "github.com/doeshing/bugsqa/internal/infrastructure/history"
	"github.com/doeshing/bugsqa/internal/infrastructure/report"
	"github.com/doeshing/bugsqa/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const fixResult = "The slice is nil before the loop.\n\n## Fix\n\n```go\nitems[0] = 1\n```\n\n```go\nitems = append(items, 1)\n```\n"

type stubClient struct {
	result  string
	err     error
	prompts []string
}

func (c *stubClient) Name() string { return "stub" }

func (c *stubClient) Analyze(_ context.Context, prompt string, _ *domain.Attachment) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.result, c.err
}

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) SetPrompt(p string) { r.prompts = append(r.prompts, p) }

func (r *scriptedReader) Close() error { return nil }

func newTestShell(t *testing.T, client *stubClient, lines ...string) (*Shell, *scriptedReader, *bytes.Buffer) {
	t.Helper()
	svc := &analysis.Service{Client: client, Logger: logger.NewNop()}
	sess := session.New(svc, domain.SessionPreferences{
		Severity:   domain.SeverityMedium,
		Language:   domain.LanguageAutoDetect,
		Complexity: domain.ComplexityIntermediate,
		Depth:      3,
	}, nil)

	reader := &scriptedReader{lines: lines}
	out := &bytes.Buffer{}
	shell := NewShell(ShellConfig{
		Session:   sess,
		Reader:    reader,
		Out:       out,
		Reports:   report.NewFileWriter(),
		ReportDir: t.TempDir(),
		Exporters: historyexport.ExporterFor,
	})
	return shell, reader, out
}

func TestShellSessionFlow(t *testing.T) {
	client := &stubClient{result: "Check for undefined before calling."}
	shell, _, out := newTestShell(t, client,
		"text TypeError: undefined is not a function",
		"set severity High",
		"analyze NullPointerException in handler",
		"history",
		"clear",
		"history",
		"exit",
		"text never reached",
	)

	require.NoError(t, shell.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Bug #2 - High severity in Auto-detect")
	assert.Contains(t, text, "Bug #1 - Medium severity in Auto-detect")
	assert.Less(t, strings.Index(text, "Bug #2 - High"), strings.Index(text, "Bug #1 - Medium"))
	assert.Contains(t, text, "History cleared!")
	assert.Contains(t, text, "No bugs analyzed yet.")
	assert.Len(t, client.prompts, 2)
}

func TestShellPaste(t *testing.T) {
	client := &stubClient{result: "ok"}
	shell, reader, _ := newTestShell(t, client, "paste", "Traceback (most recent call last):", "  KeyError: 'id'", ".")

	require.NoError(t, shell.Run(context.Background()))

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Traceback (most recent call last):\n  KeyError: 'id'")
	assert.Equal(t, []string{pastePrompt, shellPrompt}, reader.prompts)
}

func TestShellShowsDiff(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{result: fixResult})

	require.NoError(t, shell.Execute(context.Background(), "text index out of range"))

	text := out.String()
	assert.Contains(t, text, "Suggested change:")
	assert.Contains(t, text, "-items[0] = 1")
	assert.Contains(t, text, "+items = append(items, 1)")
}

func TestShellFailedAnalysisIsRecorded(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{err: errors.New("quota exceeded")})

	require.NoError(t, shell.Execute(context.Background(), "text boom"))
	require.NoError(t, shell.Execute(context.Background(), "history"))

	assert.Contains(t, out.String(), domain.AnalysisErrorMarker)
	assert.Contains(t, out.String(), "Bug #1 - Medium severity in Auto-detect (failed)")
}

func TestShellEmptyHistoryCommands(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{}, "stats", "report", "export "+filepath.Join(t.TempDir(), "h.jsonl"))

	require.NoError(t, shell.Run(context.Background()))
	assert.Equal(t, 3, strings.Count(out.String(), "No bugs analyzed yet."))
}

func TestShellReportAndExport(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{result: "Use a guard clause."})
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, shell.Execute(ctx, "text error: null reference"))
	require.NoError(t, shell.Execute(ctx, "report "+dir))
	require.NoError(t, shell.Execute(ctx, "export "+filepath.Join(dir, "history.jsonl")))
	require.NoError(t, shell.Execute(ctx, "export "+filepath.Join(dir, "history.db")))

	reports, err := filepath.Glob(filepath.Join(dir, domain.ReportFilePrefix+"*"+domain.ReportFileExtension))
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.FileExists(t, filepath.Join(dir, "history.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "history.db"))
	assert.Contains(t, out.String(), "Exported 1 bug(s)")

	assert.ErrorIs(t, shell.Execute(ctx, "export "+filepath.Join(dir, "history.csv")), domain.ErrValidation)
}

func TestShellShowAndStats(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{result: "Caught exception while parsing."})
	ctx := context.Background()

	require.NoError(t, shell.Execute(ctx, "text ValueError: invalid literal"))
	require.NoError(t, shell.Execute(ctx, "text ValueError: invalid literal again"))
	require.NoError(t, shell.Execute(ctx, "show #2"))
	require.NoError(t, shell.Execute(ctx, "stats"))

	text := out.String()
	assert.Contains(t, text, "Input:\nValueError: invalid literal again")
	assert.Contains(t, text, "Total bugs:    2")
	assert.Contains(t, text, "Success rate:  95.0%")
	assert.Contains(t, text, "valueerror: (2)")

	assert.ErrorIs(t, shell.Execute(ctx, "show 9"), domain.ErrValidation)
	assert.ErrorIs(t, shell.Execute(ctx, "show x"), domain.ErrValidation)
}

func TestShellRejectsBadInput(t *testing.T) {
	shell, _, _ := newTestShell(t, &stubClient{})
	ctx := context.Background()

	for _, line := range []string{
		"frobnicate",
		"text",
		"set severity",
		"set depth 9",
		"history -1",
		"image missing.gif",
		"file notes.txt",
	} {
		assert.ErrorIs(t, shell.Execute(ctx, line), domain.ErrValidation, line)
	}
	assert.NoError(t, shell.Execute(ctx, "   "))
}

func TestShellSetAndPrefs(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{})
	ctx := context.Background()

	require.NoError(t, shell.Execute(ctx, "set language HTML/CSS"))
	require.NoError(t, shell.Execute(ctx, "set complexity advanced"))
	require.NoError(t, shell.Execute(ctx, "prefs"))

	assert.Contains(t, out.String(), "language:   HTML/CSS")
	assert.Contains(t, out.String(), "complexity: Advanced")
}

func TestShellHelpListsCommands(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{})

	require.NoError(t, shell.Execute(context.Background(), "help"))
	for _, name := range []string{"text <description>", "paste", "image <path>", "export <path.jsonl|path.db>", "exit"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestShellShowSection(t *testing.T) {
	shell, _, out := newTestShell(t, &stubClient{result: fixResult})
	ctx := context.Background()
	require.NoError(t, shell.Execute(ctx, "text index out of range"))
	out.Reset()

	require.NoError(t, shell.Execute(ctx, "show 1 fix"))
	assert.True(t, strings.HasPrefix(out.String(), "## Fix\n"))
	assert.Contains(t, out.String(), "items = append(items, 1)")

	err := shell.Execute(ctx, "show 1 prevention")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "have: Fix")
}
