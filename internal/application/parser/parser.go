// Package parser pulls structure out of free-form analysis text.
//
// The service's output format is not guaranteed, so everything here is lenient:
// missing fences or headers produce fewer results, never an error.
package parser

import (
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// codeBlockPattern matches a fenced block with any (or no) language tag.
// \x60 is a backtick; raw strings cannot contain one.
var codeBlockPattern = regexp.MustCompile("(?s)\x60\x60\x60[^\n]*\n(.*?)\n\x60\x60\x60")

// CodeBlocks yields the contents of every fenced code block in document order.
// The sequence can be ranged over any number of times.
func CodeBlocks(text string) iter.Seq[string] {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return func(yield func(string) bool) {
		rest := normalized
		for {
			loc := codeBlockPattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			if !yield(rest[loc[2]:loc[3]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}

// ExtractDiffPairs returns all code blocks of text, in order.
// Callers wanting a before/after view should use DiffPair.
func ExtractDiffPairs(text string) []string {
	return slices.Collect(CodeBlocks(text))
}

// DiffPair returns the first two code blocks as before/after.
// ok is false when fewer than two blocks exist.
func DiffPair(text string) (before, after string, ok bool) {
	var blocks []string
	for block := range CodeBlocks(text) {
		blocks = append(blocks, block)
		if len(blocks) == 2 {
			return blocks[0], blocks[1], true
		}
	}
	return "", "", false
}

// Summary returns the part of result that precedes the first "##" header, trimmed.
func Summary(result string) string {
	head, _, _ := strings.Cut(result, "##")
	return strings.TrimSpace(head)
}

// Section is one headed part of an analysis.
type Section struct {
	Title string
	Body  string
}

// Sections splits result on markdown headers of level two or deeper.
// Headers inside fenced code are ignored; text before the first header is dropped.
func Sections(result string) []Section {
	var (
		sections []Section
		current  *Section
		body     []string
		inFence  bool
	)

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(result, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(trimmed, "##") {
			flush()
			current = &Section{Title: cleanTitle(trimmed)}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// FindSection returns the first section whose title contains name, case-insensitively.
func FindSection(result, name string) (Section, bool) {
	needle := strings.ToLower(name)
	for _, s := range Sections(result) {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return s, true
		}
	}
	return Section{}, false
}

// cleanTitle strips header hashes, emphasis markers and leading emoji.
func cleanTitle(header string) string {
	title := strings.TrimLeft(header, "#")
	title = strings.ReplaceAll(title, "**", "")
	title = strings.TrimSpace(title)
	return strings.TrimLeftFunc(title, func(r rune) bool {
		return unicode.Is(unicode.So, r) || unicode.IsSpace(r) || r == '\uFE0F' || r == '\u200D'
	})
}
