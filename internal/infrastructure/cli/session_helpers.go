package cli

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// Submit runs one analysis, animating a spinner on spinnerOut when it is non-nil.
func Submit(ctx context.Context, sess *session.Session, sub session.Submission, spinnerOut io.Writer) (domain.AnalysisOutcome, error) {
	if spinnerOut != nil {
		spinner := NewSpinner(spinnerOut, "Analyzing bug...")
		spinner.Start()
		defer spinner.Stop()
	}
	return sess.Submit(ctx, sub)
}

// SaveReport generates the session report and writes it under dir.
func SaveReport(sess *session.Session, writer ports.ReportWriter, dir string) (string, error) {
	rep, err := sess.Report()
	if err != nil {
		return "", err
	}
	return writer.Write(dir, rep.Filename, rep.Text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func markdownFor(w io.Writer, enabled bool) ports.MarkdownRenderer {
	f, ok := w.(*os.File)
	if !ok {
		return PlainMarkdown{}
	}
	return MarkdownFor(f, enabled)
}
