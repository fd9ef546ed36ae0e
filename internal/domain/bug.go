// Package domain defines core business entities and value objects for bugsqa.
//
// This file contains the bug record and the enumerations that classify a report.
// The domain layer is independent of infrastructure concerns.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity grades how badly a bug hurts.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Ordinal maps a severity onto the 1..4 scale used for averages.
// Unknown values map to 0.
func (s Severity) Ordinal() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ParseSeverity accepts a severity name case-insensitively.
func ParseSeverity(raw string) (Severity, error) {
	for _, s := range Severities {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: severity must be one of %s, got %q", ErrValidation, joinValues(Severities), raw)
}

// Complexity describes the reporter's experience level.
type Complexity string

const (
	ComplexityBeginner     Complexity = "Beginner"
	ComplexityIntermediate Complexity = "Intermediate"
	ComplexityAdvanced     Complexity = "Advanced"
)

// Complexities lists every complexity level.
var Complexities = []Complexity{ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced}

// ParseComplexity accepts a complexity name case-insensitively.
func ParseComplexity(raw string) (Complexity, error) {
	for _, c := range Complexities {
		if strings.EqualFold(strings.TrimSpace(raw), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: complexity must be one of %s, got %q", ErrValidation, joinValues(Complexities), raw)
}

// Language is the language or framework label attached to a report.
type Language string

const (
	LanguageAutoDetect Language = "Auto-detect"
	LanguageOther      Language = "Other"
)

// Languages is the fixed set offered to users.
var Languages = []Language{
	LanguageAutoDetect,
	"Python",
	"JavaScript",
	"Java",
	"C++",
	"C#",
	"Go",
	"Rust",
	"PHP",
	"Ruby",
	"React",
	"Flutter",
	"Node.js",
	"HTML/CSS",
	"SQL",
	LanguageOther,
}

// ParseLanguage resolves a label from the fixed set case-insensitively.
func ParseLanguage(raw string) (Language, error) {
	for _, l := range Languages {
		if strings.EqualFold(strings.TrimSpace(raw), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown language %q (run `bugsqa languages`)", ErrValidation, raw)
}

// FenceTag is the tag used on fenced code blocks for this language.
func (l Language) FenceTag() string {
	return strings.ToLower(string(l))
}

// InputKind tells how a report reached us.
type InputKind string

const (
	KindText  InputKind = "text"
	KindImage InputKind = "image"
	KindFile  InputKind = "file"
)

// ParseInputKind accepts text, image or file.
func ParseInputKind(raw string) (InputKind, error) {
	switch InputKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindText:
		return KindText, nil
	case KindImage:
		return KindImage, nil
	case KindFile:
		return KindFile, nil
	}
	return "", fmt.Errorf("%w: input kind must be text|image|file, got %q", ErrValidation, raw)
}

// ValidateDepth checks the analysis depth range.
func ValidateDepth(depth int) error {
	if depth < MinAnalysisDepth || depth > MaxAnalysisDepth {
		return fmt.Errorf("%w: analysis depth must be within %d..%d, got %d", ErrValidation, MinAnalysisDepth, MaxAnalysisDepth, depth)
	}
	return nil
}

// BugRecord is the normalized outcome of analyzing one report.
// Records are values; the history store hands out copies.
type BugRecord struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	Input      string     `json:"input"`
	Result     string     `json:"result"`
	Severity   Severity   `json:"severity"`
	Language   Language   `json:"language"`
	Complexity Complexity `json:"complexity"`
	Timestamp  time.Time  `json:"timestamp"`
	Kind       InputKind  `json:"type"`
}

// Failed reports whether the record captured a failed analysis call.
func (r BugRecord) Failed() bool {
	return strings.HasPrefix(r.Result, AnalysisErrorMarker)
}

// Attachment is binary content sent next to a prompt (screenshots).
type Attachment struct {
	Data     []byte
	MIMEType string
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, "|")
}
