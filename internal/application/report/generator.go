// Package report renders a session history into a shareable markdown document.
package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"text/template"
	"time"

	"github.com/doeshing/bugsqa/internal/application/analytics"
	"github.com/doeshing/bugsqa/internal/application/parser"
	"github.com/doeshing/bugsqa/internal/domain"
)

// Report is a rendered document and its content-derived filename.
type Report struct {
	Text     string
	Filename string
}

const reportTemplate = `# 🐛 Bugs.qa Analysis Report
**Generated:** {{.Generated}}
**Total Bugs Analyzed:** {{.Total}}

## 📊 Summary Statistics
- **Success Rate:** {{printf "%.1f" .SatisfactionRate}}%
- **Most Common Language:** {{.MostCommonLanguage}}
- **Average Severity:** {{printf "%.1f" .AverageSeverity}}

## 🏆 Top Bug Patterns
{{- if .Patterns}}
{{range $i, $p := .Patterns}}{{inc $i}}. ` + "`{{$p.Value}}`" + ` ({{$p.Count}})
{{end}}{{else}}
_No recurring error patterns._
{{end}}
{{- range .Bugs}}
### 🐞 Bug #{{.Number}}
- **Type:** {{.Kind}}
- **Language:** {{.Language}}
- **Severity:** {{.Severity}}
- **Date:** {{.Date}}

**Input:**
` + "```" + `
{{.Input}}
` + "```" + `

**Solution Summary:**
{{.Summary}}
{{end}}`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(reportTemplate))

type bugView struct {
	Number   int
	Kind     domain.InputKind
	Language domain.Language
	Severity domain.Severity
	Date     string
	Input    string
	Summary  string
}

type reportView struct {
	Generated          string
	Total              int
	SatisfactionRate   float64
	MostCommonLanguage domain.Language
	AverageSeverity    float64
	Patterns           []analytics.Count[string]
	Bugs               []bugView
}

// Generate renders snapshot as of now.
// An empty snapshot yields domain.ErrNoData and no report.
func Generate(snapshot domain.HistorySnapshot, now time.Time) (Report, error) {
	records := snapshot.Records
	if len(records) == 0 {
		return Report{}, domain.ErrNoData
	}

	language, err := analytics.MostCommonLanguage(records)
	if err != nil {
		return Report{}, err
	}
	avg, err := analytics.AverageSeverity(records)
	if err != nil {
		return Report{}, err
	}
	patterns, err := analytics.ErrorTokens(records)
	if err != nil {
		return Report{}, err
	}

	view := reportView{
		Generated:          now.Format(domain.ReportTimestampLayout),
		Total:              len(records),
		SatisfactionRate:   snapshot.SatisfactionRate,
		MostCommonLanguage: language,
		AverageSeverity:    RoundTenth(avg),
		Patterns:           patterns,
		Bugs:               make([]bugView, 0, len(records)),
	}
	for i, r := range records {
		view.Bugs = append(view.Bugs, bugView{
			Number:   i + 1,
			Kind:     r.Kind,
			Language: r.Language,
			Severity: r.Severity,
			Date:     r.Timestamp.Format(domain.TimestampFormat),
			Input:    Truncate(r.Input, domain.ReportInputLimit),
			Summary:  Truncate(parser.Summary(r.Result), domain.ReportSummaryLimit),
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return Report{}, fmt.Errorf("render report: %w", err)
	}
	text := buf.String()
	return Report{Text: text, Filename: Filename(text)}, nil
}

// Filename derives the report filename from its content.
// Identical text always maps to the same name.
func Filename(text string) string {
	sum := sha256.Sum256([]byte(text))
	fingerprint := hex.EncodeToString(sum[:])[:domain.ReportFingerprintLength]
	return domain.ReportFilePrefix + fingerprint + domain.ReportFileExtension
}

// Truncate keeps the first limit characters of s, appending "..." when anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// RoundTenth rounds v to one decimal place, halves away from zero.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
