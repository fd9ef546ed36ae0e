// Package analysis runs one bug report through the pipeline:
// prompt, service call, record, diff extraction.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/doeshing/bugsqa/internal/application/history"
	"github.com/doeshing/bugsqa/internal/application/parser"
	"github.com/doeshing/bugsqa/internal/application/prompt"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// Recorder is the part of the history store the pipeline writes to.
type Recorder interface {
	Append(
		input, result string,
		severity domain.Severity,
		language domain.Language,
		complexity domain.Complexity,
		kind domain.InputKind,
	) domain.BugRecord
}

var _ Recorder = (*history.Store)(nil)

// Service orchestrates a single analysis end-to-end.
type Service struct {
	Client ports.AnalysisClient
	Logger ports.Logger
	// Timeout bounds the service call; zero means no limit.
	Timeout time.Duration
}

// Run analyzes req and appends the outcome to rec.
//
// Invalid requests return domain.ErrValidation without calling the service or touching rec.
// A failed service call is not an error here: the degraded text is recorded and
// AnalysisOutcome.Failed is set.
func (s *Service) Run(req domain.AnalysisRequest, rec Recorder) (domain.AnalysisOutcome, error) {
	if s.Client == nil {
		return domain.AnalysisOutcome{}, fmt.Errorf("%w: no analysis backend configured", domain.ErrConfiguration)
	}
	if rec == nil || s.Logger == nil {
		return domain.AnalysisOutcome{}, errors.New("analysis.Service dependencies not satisfied")
	}

	if err := validate(req); err != nil {
		s.Logger.Warn("rejected bug report", map[string]interface{}{
			"kind":  string(req.Kind),
			"error": err.Error(),
		})
		return domain.AnalysisOutcome{}, err
	}

	p, err := prompt.Build(prompt.Request{
		Kind:       req.Kind,
		Input:      req.Text,
		FileName:   req.FileName,
		Image:      req.Image,
		Severity:   req.Severity,
		Language:   req.Language,
		Complexity: req.Complexity,
		Depth:      req.Depth,
	})
	if err != nil {
		return domain.AnalysisOutcome{}, fmt.Errorf("build prompt: %w", err)
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	s.Logger.Info("calling analysis backend", map[string]interface{}{
		"backend":  s.Client.Name(),
		"kind":     string(req.Kind),
		"severity": string(req.Severity),
		"language": string(req.Language),
		"depth":    req.Depth,
	})

	started := time.Now()
	result, err := s.Client.Analyze(ctx, p.Text, p.Attachment)
	failed := err != nil
	if failed {
		s.Logger.Error("analysis failed", err, map[string]interface{}{
			"backend": s.Client.Name(),
		})
		result = domain.DegradedResult(err)
	} else {
		s.Logger.Debug("analysis complete", map[string]interface{}{
			"duration_ms": time.Since(started).Milliseconds(),
			"chars":       len(result),
		})
	}

	record := rec.Append(
		history.InputRepr(req.Kind, req.Text, req.FileName),
		result,
		req.Severity,
		req.Language,
		req.Complexity,
		req.Kind,
	)

	outcome := domain.AnalysisOutcome{Record: record, Failed: failed}
	if !failed {
		outcome.Before, outcome.After, outcome.HasDiff = parser.DiffPair(result)
	}
	return outcome, nil
}

func validate(req domain.AnalysisRequest) error {
	switch req.Kind {
	case domain.KindText:
		if strings.TrimSpace(req.Text) == "" {
			return fmt.Errorf("%w: please enter a bug description", domain.ErrValidation)
		}
	case domain.KindFile:
		if strings.TrimSpace(req.FileName) == "" {
			return fmt.Errorf("%w: file report without a file name", domain.ErrValidation)
		}
		if strings.TrimSpace(req.Text) == "" {
			return fmt.Errorf("%w: %s is empty", domain.ErrValidation, req.FileName)
		}
	case domain.KindImage:
		if req.Image == nil || len(req.Image.Data) == 0 {
			return fmt.Errorf("%w: please upload a screenshot", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unsupported input kind %q", domain.ErrValidation, req.Kind)
	}

	if req.Severity.Ordinal() == 0 {
		return fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, req.Severity)
	}
	if !slices.Contains(domain.Complexities, req.Complexity) {
		return fmt.Errorf("%w: unknown complexity %q", domain.ErrValidation, req.Complexity)
	}
	if !slices.Contains(domain.Languages, req.Language) {
		return fmt.Errorf("%w: unknown language %q", domain.ErrValidation, req.Language)
	}
	return domain.ValidateDepth(req.Depth)
}
