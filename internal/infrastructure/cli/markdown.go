package cli

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/doeshing/bugsqa/internal/ports"
)

const (
	defaultWrapWidth = 100
	minWrapWidth     = 40
)

// GlamourMarkdown styles analysis results for a terminal.
type GlamourMarkdown struct {
	r *glamour.TermRenderer
}

// NewGlamourMarkdown builds a renderer wrapping at width with the given glamour style.
func NewGlamourMarkdown(width int, style string) (*GlamourMarkdown, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &GlamourMarkdown{r: r}, nil
}

// Render implements ports.MarkdownRenderer.
func (g *GlamourMarkdown) Render(markdown string) (string, error) {
	return g.r.Render(markdown)
}

// PlainMarkdown passes text through unchanged. Used for pipes and files.
type PlainMarkdown struct{}

// Render implements ports.MarkdownRenderer.
func (PlainMarkdown) Render(markdown string) (string, error) {
	return markdown, nil
}

// MarkdownFor picks glamour when out is a terminal and rendering is enabled.
func MarkdownFor(out *os.File, enabled bool) ports.MarkdownRenderer {
	if !enabled || out == nil || !term.IsTerminal(int(out.Fd())) {
		return PlainMarkdown{}
	}
	width := defaultWrapWidth
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w-4 >= minWrapWidth {
		width = w - 4
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return PlainMarkdown{}
	}
	return &GlamourMarkdown{r: r}
}

var (
	_ ports.MarkdownRenderer = (*GlamourMarkdown)(nil)
	_ ports.MarkdownRenderer = PlainMarkdown{}
)
