// Package session scopes history and preferences to one interactive run.
//
// A Session is created at start-up and discarded at exit; nothing in it outlives the process
// and no two sessions share state.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/bugsqa/internal/application/analysis"
	"github.com/doeshing/bugsqa/internal/application/analytics"
	"github.com/doeshing/bugsqa/internal/application/history"
	"github.com/doeshing/bugsqa/internal/application/report"
	"github.com/doeshing/bugsqa/internal/domain"
)

// Runner executes one analysis against a recorder. *analysis.Service satisfies it.
type Runner interface {
	Run(req domain.AnalysisRequest, rec analysis.Recorder) (domain.AnalysisOutcome, error)
}

// Submission is a report as typed by the user, before preferences are applied.
type Submission struct {
	Kind     domain.InputKind
	Text     string
	FileName string
	Image    *domain.Attachment
}

// Session holds one user's history and classification preferences.
type Session struct {
	runner Runner
	store  *history.Store
	prefs  domain.SessionPreferences
	now    func() time.Time
}

// New starts an empty session.
func New(runner Runner, prefs domain.SessionPreferences, store *history.Store) *Session {
	if store == nil {
		store = history.NewStore()
	}
	return &Session{runner: runner, store: store, prefs: prefs, now: time.Now}
}

// WithNow overrides the clock used to stamp reports.
func (s *Session) WithNow(now func() time.Time) *Session {
	if now != nil {
		s.now = now
	}
	return s
}

// Submit analyzes sub using the current preferences and records the outcome.
func (s *Session) Submit(ctx context.Context, sub Submission) (domain.AnalysisOutcome, error) {
	return s.runner.Run(domain.AnalysisRequest{
		Context:    ctx,
		Kind:       sub.Kind,
		Text:       sub.Text,
		FileName:   sub.FileName,
		Image:      sub.Image,
		Severity:   s.prefs.Severity,
		Language:   s.prefs.Language,
		Complexity: s.prefs.Complexity,
		Depth:      s.prefs.Depth,
	}, s.store)
}

// Preferences returns the current classification defaults.
func (s *Session) Preferences() domain.SessionPreferences {
	return s.prefs
}

// Set changes one preference by name: severity, language, complexity or depth.
// The session is unchanged when value does not parse.
func (s *Session) Set(field, value string) error {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "severity":
		sev, err := domain.ParseSeverity(value)
		if err != nil {
			return err
		}
		s.prefs.Severity = sev
	case "language", "lang":
		lang, err := domain.ParseLanguage(value)
		if err != nil {
			return err
		}
		s.prefs.Language = lang
	case "complexity":
		cx, err := domain.ParseComplexity(value)
		if err != nil {
			return err
		}
		s.prefs.Complexity = cx
	case "depth":
		depth, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: depth must be a number, got %q", domain.ErrValidation, value)
		}
		if err := domain.ValidateDepth(depth); err != nil {
			return err
		}
		s.prefs.Depth = depth
	default:
		return fmt.Errorf("%w: unknown preference %q (severity|language|complexity|depth)", domain.ErrValidation, field)
	}
	return nil
}

// History exposes the session's store for read access.
func (s *Session) History() *history.Store {
	return s.store
}

// Snapshot copies the current history.
func (s *Session) Snapshot() domain.HistorySnapshot {
	return s.store.Snapshot()
}

// Dashboard computes all aggregates over the current history.
func (s *Session) Dashboard() (analytics.Dashboard, error) {
	return analytics.Build(s.store.Records())
}

// Report renders the current history as of now.
func (s *Session) Report() (report.Report, error) {
	return report.Generate(s.store.Snapshot(), s.now())
}

// Clear empties the history. Preferences are kept.
func (s *Session) Clear() {
	s.store.Clear()
}
