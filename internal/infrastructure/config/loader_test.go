package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/doeshing/bugsqa/internal/application/config"
	"github.com/doeshing/bugsqa/internal/domain"
)

func TestLoadWritesEmbeddedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	assert.Equal(t, "gemini-flash", cfg.Preferences.DefaultModel)
	assert.Equal(t, 95.0, cfg.Preferences.SatisfactionRate)
	assert.Equal(t, 3, cfg.Preferences.AnalysisDepth)

	model, err := cfg.GetDefaultModel()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendGemini, model.Backend)
	assert.Equal(t, domain.DefaultGeminiModel, model.ModelID)
	assert.Equal(t, domain.DefaultAPIKeyEnvVar, model.AuthEnvVar)

	assert.NoError(t, appconfig.Validate(cfg))
}

func TestLoadHydratesSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: local
    endpoint: http://localhost:11434/v1/chat/completions
    model_id: llava
`), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.ConfigFormatVersion)
	assert.Equal(t, "local", cfg.Preferences.DefaultModel)
	assert.Equal(t, domain.BackendGemini, cfg.Models[0].Backend)
	assert.Equal(t, domain.DefaultAnalysisDepth, cfg.Preferences.AnalysisDepth)
	assert.Equal(t, ".", cfg.Report.OutputDir)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preferences: [unterminated"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	assert.ErrorContains(t, err, "parse config")
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)

	assert.Equal(t, path, NewFileLoader("").Path())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, cfg.SetDefaultModel("claude-sonnet"))
	cfg.Preferences.DefaultLanguage = "Go"
	require.NoError(t, loader.Save(cfg))

	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", again.Preferences.DefaultModel)
	assert.Equal(t, domain.Language("Go"), again.SessionDefaults().Language)

	require.NoError(t, loader.Reset())
	reset, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini-flash", reset.Preferences.DefaultModel)
}

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 4)
	assert.Equal(t, domain.SeverityMedium, cfg.SessionDefaults().Severity)
}
