package domain

import "fmt"

// GetDefaultModel retrieves the default model definition from configuration
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Models {
		if model.Name == c.Preferences.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// SetDefaultModel changes the default model to the specified name
func (c *Config) SetDefaultModel(name string) error {
	if !c.HasModel(name) {
		return fmt.Errorf("cannot set default model: model %s does not exist", name)
	}

	c.Preferences.DefaultModel = name
	return nil
}

// GetSatisfactionRate returns the static success rate shown in summaries
func (c *Config) GetSatisfactionRate() float64 {
	if c.Preferences.SatisfactionRate <= 0 {
		return DefaultSatisfactionRate
	}
	return c.Preferences.SatisfactionRate
}

// GetAnalysisDepth returns the default analysis depth, clamped into range
func (c *Config) GetAnalysisDepth() int {
	depth := c.Preferences.AnalysisDepth
	if depth < MinAnalysisDepth || depth > MaxAnalysisDepth {
		return DefaultAnalysisDepth
	}
	return depth
}

// GetTimeoutSeconds returns the analysis call timeout; zero means no timeout
func (c *Config) GetTimeoutSeconds() int {
	if c.Preferences.TimeoutSeconds < 0 {
		return 0
	}
	return c.Preferences.TimeoutSeconds
}

// SessionDefaults resolves the preference strings into typed defaults.
// Unparseable values fall back to Medium / Auto-detect / Intermediate.
func (c *Config) SessionDefaults() SessionPreferences {
	prefs := SessionPreferences{
		Severity:   SeverityMedium,
		Language:   LanguageAutoDetect,
		Complexity: ComplexityIntermediate,
		Depth:      c.GetAnalysisDepth(),
	}
	if s, err := ParseSeverity(c.Preferences.DefaultSeverity); err == nil {
		prefs.Severity = s
	}
	if l, err := ParseLanguage(c.Preferences.DefaultLanguage); err == nil {
		prefs.Language = l
	}
	if cx, err := ParseComplexity(c.Preferences.DefaultComplexity); err == nil {
		prefs.Complexity = cx
	}
	return prefs
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.Preferences.DefaultModel != "" && !c.HasModel(c.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Preferences.DefaultModel)
	}

	if c.Preferences.DefaultModel != "" && len(c.Models) == 0 {
		return fmt.Errorf("default model is set but no models are configured")
	}

	return nil
}
