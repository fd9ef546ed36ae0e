// Package analytics derives aggregate views over a session's bug records.
//
// Every function is pure: it reads the slice it is given and recomputes from scratch.
// An empty input yields domain.ErrNoData instead of an empty result.
package analytics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/doeshing/bugsqa/internal/domain"
)

// Count pairs a value with the number of times it was observed.
type Count[K comparable] struct {
	Value K
	Count int
}

// DayCount is one point of the timeline.
type DayCount struct {
	Date  time.Time // midnight of the calendar day, in the records' location
	Count int
}

// Label formats the day as YYYY-MM-DD.
func (d DayCount) Label() string {
	return d.Date.Format(domain.DateFormat)
}

// Dashboard bundles every aggregate for display.
type Dashboard struct {
	Total       int
	Severities  []Count[domain.Severity]
	Languages   []Count[domain.Language]
	Timeline    []DayCount // nil when fewer than two records exist
	ErrorTokens []Count[string]
}

// SeverityDistribution counts records per severity.
// Only observed severities appear, in Low..Critical order.
func SeverityDistribution(records []domain.BugRecord) ([]Count[domain.Severity], error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}
	counts := make(map[domain.Severity]int, len(domain.Severities))
	for _, r := range records {
		counts[r.Severity]++
	}
	var out []Count[domain.Severity]
	for _, s := range domain.Severities {
		if n := counts[s]; n > 0 {
			out = append(out, Count[domain.Severity]{Value: s, Count: n})
			delete(counts, s)
		}
	}
	// Values outside the enumeration still get counted, after the known ones.
	for _, r := range records {
		if n, ok := counts[r.Severity]; ok {
			out = append(out, Count[domain.Severity]{Value: r.Severity, Count: n})
			delete(counts, r.Severity)
		}
	}
	return out, nil
}

// LanguageDistribution counts records per language, most frequent first.
// Equal counts keep first-seen order.
func LanguageDistribution(records []domain.BugRecord) ([]Count[domain.Language], error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}
	return rank(records, func(r domain.BugRecord, emit func(domain.Language)) {
		emit(r.Language)
	}), nil
}

// Timeline groups records by calendar day, oldest first.
// It needs at least two records to say anything about a trend.
func Timeline(records []domain.BugRecord) ([]DayCount, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: timeline needs at least 2 records, have %d", domain.ErrNoData, len(records))
	}
	index := make(map[time.Time]int)
	var days []DayCount
	for _, r := range records {
		y, m, d := r.Timestamp.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, r.Timestamp.Location())
		if i, ok := index[day]; ok {
			days[i].Count++
			continue
		}
		index[day] = len(days)
		days = append(days, DayCount{Date: day, Count: 1})
	}
	slices.SortStableFunc(days, func(a, b DayCount) int {
		return a.Date.Compare(b.Date)
	})
	return days, nil
}

// ErrorTokens ranks error-looking words across all inputs.
// Inputs are split on whitespace and lower-cased; a token qualifies when it contains one
// of domain.ErrorTokenKeywords. Every occurrence counts. At most domain.MaxErrorPatterns
// entries are returned, most frequent first, ties in first-encountered order.
func ErrorTokens(records []domain.BugRecord) ([]Count[string], error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}
	ranked := rank(records, func(r domain.BugRecord, emit func(string)) {
		for _, field := range strings.Fields(r.Input) {
			token := strings.ToLower(field)
			if isErrorToken(token) {
				emit(token)
			}
		}
	})
	if len(ranked) > domain.MaxErrorPatterns {
		ranked = ranked[:domain.MaxErrorPatterns]
	}
	return ranked, nil
}

// Build computes the full dashboard. A single record yields no timeline.
func Build(records []domain.BugRecord) (Dashboard, error) {
	if len(records) == 0 {
		return Dashboard{}, domain.ErrNoData
	}
	severities, err := SeverityDistribution(records)
	if err != nil {
		return Dashboard{}, err
	}
	languages, err := LanguageDistribution(records)
	if err != nil {
		return Dashboard{}, err
	}
	tokens, err := ErrorTokens(records)
	if err != nil {
		return Dashboard{}, err
	}
	dash := Dashboard{
		Total:       len(records),
		Severities:  severities,
		Languages:   languages,
		ErrorTokens: tokens,
	}
	if timeline, err := Timeline(records); err == nil {
		dash.Timeline = timeline
	}
	return dash, nil
}

// MostCommonLanguage returns the language with the most records.
// Ties go to the language seen first.
func MostCommonLanguage(records []domain.BugRecord) (domain.Language, error) {
	dist, err := LanguageDistribution(records)
	if err != nil {
		return "", err
	}
	return dist[0].Value, nil
}

// AverageSeverity is the mean severity ordinal (Low=1 .. Critical=4), unrounded.
func AverageSeverity(records []domain.BugRecord) (float64, error) {
	if len(records) == 0 {
		return 0, domain.ErrNoData
	}
	total := 0
	for _, r := range records {
		total += r.Severity.Ordinal()
	}
	return float64(total) / float64(len(records)), nil
}

func isErrorToken(token string) bool {
	for _, kw := range domain.ErrorTokenKeywords {
		if strings.Contains(token, kw) {
			return true
		}
	}
	return false
}

// rank counts emitted values and orders them by descending count,
// breaking ties by first emission.
func rank[K comparable](records []domain.BugRecord, each func(domain.BugRecord, func(K))) []Count[K] {
	index := make(map[K]int)
	var counts []Count[K]
	emit := func(v K) {
		if i, ok := index[v]; ok {
			counts[i].Count++
			return
		}
		index[v] = len(counts)
		counts = append(counts, Count[K]{Value: v, Count: 1})
	}
	for _, r := range records {
		each(r, emit)
	}
	slices.SortStableFunc(counts, func(a, b Count[K]) int {
		return b.Count - a.Count
	})
	return counts
}
