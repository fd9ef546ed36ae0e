package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/doeshing/bugsqa/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if cfg.Preferences.DefaultModel == "" {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if _, ok := cfg.FindModelByName(cfg.Preferences.DefaultModel); !ok {
		return fmt.Errorf("default model %s not found in models list", cfg.Preferences.DefaultModel)
	}
	seen := make(map[string]bool, len(cfg.Models))
	for _, model := range cfg.Models {
		if seen[model.Name] {
			return fmt.Errorf("model %s is defined more than once", model.Name)
		}
		seen[model.Name] = true
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if err := validatePreferences(cfg.Preferences); err != nil {
		return err
	}
	return validateLogging(cfg.Logging)
}

func validateModel(model domain.ModelDefinition) error {
	if model.Name == "" {
		return errors.New("models[].name must be set")
	}
	switch model.Backend {
	case domain.BackendGemini, domain.BackendAnthropic:
	case domain.BackendHTTP:
		if model.Endpoint == "" {
			return fmt.Errorf("model %s: http backend requires an endpoint", model.Name)
		}
		switch model.APIFormat.GetContentWrapper() {
		case domain.ContentWrapperStandard, domain.ContentWrapperAnthropic:
		default:
			return fmt.Errorf("model %s: api_format.content_wrapper must be standard|anthropic, got %s",
				model.Name, model.APIFormat.ContentWrapper)
		}
	default:
		return fmt.Errorf("model %s: backend must be gemini|anthropic|http, got %q", model.Name, model.Backend)
	}
	if model.ModelID == "" {
		return fmt.Errorf("model %s: model_id must be set", model.Name)
	}
	if model.MaxTokens < 0 {
		return fmt.Errorf("model %s: max_tokens must be >= 0", model.Name)
	}
	return nil
}

func validatePreferences(p domain.Preferences) error {
	if p.DefaultSeverity != "" {
		if _, err := domain.ParseSeverity(p.DefaultSeverity); err != nil {
			return fmt.Errorf("preferences.default_severity: %w", err)
		}
	}
	if p.DefaultLanguage != "" {
		if _, err := domain.ParseLanguage(p.DefaultLanguage); err != nil {
			return fmt.Errorf("preferences.default_language: %w", err)
		}
	}
	if p.DefaultComplexity != "" {
		if _, err := domain.ParseComplexity(p.DefaultComplexity); err != nil {
			return fmt.Errorf("preferences.default_complexity: %w", err)
		}
	}
	if p.AnalysisDepth != 0 {
		if err := domain.ValidateDepth(p.AnalysisDepth); err != nil {
			return fmt.Errorf("preferences.analysis_depth: %w", err)
		}
	}
	if p.SatisfactionRate < 0 || p.SatisfactionRate > 100 {
		return fmt.Errorf("preferences.satisfaction_rate must be within 0..100, got %.1f", p.SatisfactionRate)
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("preferences.timeout must be >= 0")
	}
	return nil
}

func validateLogging(l domain.LoggingSettings) error {
	if l.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
			return fmt.Errorf("logging.level invalid: %w", err)
		}
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation values must be >= 0")
	}
	return nil
}
