package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/doeshing/bugsqa/internal/application/analytics"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

const barWidth = 30

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

// Renderer prints session output.
type Renderer struct {
	out      io.Writer
	markdown ports.MarkdownRenderer
	now      func() time.Time
}

// NewRenderer creates a renderer. A nil markdown renderer prints results verbatim.
func NewRenderer(out io.Writer, markdown ports.MarkdownRenderer) *Renderer {
	if markdown == nil {
		markdown = PlainMarkdown{}
	}
	return &Renderer{out: out, markdown: markdown, now: time.Now}
}

// Outcome prints the result of one analysis.
func (r *Renderer) Outcome(outcome domain.AnalysisOutcome) {
	rec := outcome.Record
	fmt.Fprintf(r.out, "\n%s  %s severity · %s · %s\n\n",
		headerColor.Sprintf("🐞 Bug #%d", rec.Sequence),
		severityColor(rec.Severity).Sprint(rec.Severity),
		rec.Language,
		rec.Complexity,
	)

	if outcome.Failed {
		errorColor.Fprintln(r.out, strings.TrimSpace(rec.Result))
		return
	}

	r.Markdown(rec.Result)

	if outcome.HasDiff {
		headerColor.Fprintln(r.out, "Suggested change:")
		fmt.Fprintln(r.out, ColorizeDiff(UnifiedDiff(outcome.Before, outcome.After)))
	}
}

// Markdown renders text through the markdown renderer, falling back to raw text.
func (r *Renderer) Markdown(text string) {
	rendered, err := r.markdown.Render(text)
	if err != nil {
		rendered = text
	}
	fmt.Fprintln(r.out, strings.TrimRight(rendered, "\n"))
}

// Recent lists records newest first, one line each.
func (r *Renderer) Recent(records []domain.BugRecord) {
	if len(records) == 0 {
		r.Info("No bugs analyzed yet.")
		return
	}
	now := r.now()
	for _, rec := range records {
		line := fmt.Sprintf("Bug #%d - %s severity in %s", rec.Sequence, rec.Severity, rec.Language)
		if rec.Failed() {
			line += " (failed)"
		}
		fmt.Fprintf(r.out, "%s %s\n", line, mutedColor.Sprint(humanize.RelTime(rec.Timestamp, now, "ago", "from now")))
	}
}

// Record prints one stored record in full.
func (r *Renderer) Record(rec domain.BugRecord) {
	headerColor.Fprintf(r.out, "Bug #%d", rec.Sequence)
	fmt.Fprintf(r.out, " [%s]\n", rec.Kind)
	fmt.Fprintf(r.out, "Severity:   %s\n", severityColor(rec.Severity).Sprint(rec.Severity))
	fmt.Fprintf(r.out, "Language:   %s\n", rec.Language)
	fmt.Fprintf(r.out, "Complexity: %s\n", rec.Complexity)
	fmt.Fprintf(r.out, "Analyzed:   %s (%s)\n", rec.Timestamp.Format(domain.TimestampFormat), humanize.RelTime(rec.Timestamp, r.now(), "ago", "from now"))
	fmt.Fprintf(r.out, "Input:\n%s\n\n", rec.Input)
	r.Markdown(rec.Result)
}

// Dashboard prints the aggregates computed over the session.
func (r *Renderer) Dashboard(d analytics.Dashboard, snapshot domain.HistorySnapshot) {
	headerColor.Fprintln(r.out, "📊 Session statistics")
	fmt.Fprintf(r.out, "Total bugs:    %s\n", humanize.Comma(int64(d.Total)))
	fmt.Fprintf(r.out, "Total solved:  %s\n", humanize.Comma(int64(snapshot.TotalSolved)))
	fmt.Fprintf(r.out, "Success rate:  %.1f%%\n", snapshot.SatisfactionRate)

	headerColor.Fprintln(r.out, "\nSeverity")
	for _, c := range d.Severities {
		r.bar(severityColor(c.Value).Sprintf("%-10s", c.Value), c.Count, d.Total)
	}

	headerColor.Fprintln(r.out, "\nLanguages")
	for _, c := range d.Languages {
		r.bar(fmt.Sprintf("%-12s", c.Value), c.Count, d.Total)
	}

	headerColor.Fprintln(r.out, "\nTimeline")
	if d.Timeline == nil {
		mutedColor.Fprintln(r.out, "Analyze at least two bugs to see a timeline.")
	}
	for _, day := range d.Timeline {
		fmt.Fprintf(r.out, "%s  %d\n", day.Label(), day.Count)
	}

	headerColor.Fprintln(r.out, "\nTop error patterns")
	if len(d.ErrorTokens) == 0 {
		mutedColor.Fprintln(r.out, "No recurring error patterns.")
	}
	for i, c := range d.ErrorTokens {
		fmt.Fprintf(r.out, "%2d. %s (%d)\n", i+1, c.Value, c.Count)
	}
}

// Preferences prints the classification defaults applied to new reports.
func (r *Renderer) Preferences(p domain.SessionPreferences) {
	fmt.Fprintf(r.out, "severity:   %s\n", p.Severity)
	fmt.Fprintf(r.out, "language:   %s\n", p.Language)
	fmt.Fprintf(r.out, "complexity: %s\n", p.Complexity)
	fmt.Fprintf(r.out, "depth:      %d\n", p.Depth)
}

func (r *Renderer) bar(label string, count, total int) {
	width := 0
	if total > 0 {
		width = count * barWidth / total
	}
	fmt.Fprintf(r.out, "%s %s %d\n", label, successColor.Sprint(strings.Repeat("█", width)), count)
}

// Info prints a neutral message.
func (r *Renderer) Info(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Success prints a confirmation.
func (r *Renderer) Success(format string, args ...interface{}) {
	successColor.Fprintf(r.out, format+"\n", args...)
}

// Warn prints a recoverable problem.
func (r *Renderer) Warn(format string, args ...interface{}) {
	warnColor.Fprintf(r.out, format+"\n", args...)
}

// Error prints a failure.
func (r *Renderer) Error(err error) {
	errorColor.Fprintf(r.out, "Error: %v\n", err)
}

func severityColor(sev domain.Severity) *color.Color {
	switch sev {
	case domain.SeverityLow:
		return color.New(color.FgGreen)
	case domain.SeverityMedium:
		return color.New(color.FgYellow)
	case domain.SeverityHigh:
		return color.New(color.FgRed)
	case domain.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}
