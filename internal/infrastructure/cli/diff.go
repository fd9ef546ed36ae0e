package cli

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// UnifiedDiff compares the original snippet with the suggested fix.
func UnifiedDiff(before, after string) string {
	before = withTrailingNewline(before)
	after = withTrailingNewline(after)
	edits := myers.ComputeEdits(span.URIFromPath("before"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}

// ColorizeDiff highlights added and removed lines.
func ColorizeDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			lines[i] = mutedColor.Sprint(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = headerColor.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = successColor.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = errorColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
