package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/app"
	"github.com/doeshing/bugsqa/internal/application/doctor"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/infrastructure/config"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testContainer(t *testing.T) (*app.Container, *config.FileLoader) {
	t.Helper()
	loader := config.NewFileLoader(filepath.Join(t.TempDir(), "config.yaml"))
	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	cfg.Report.OutputDir = t.TempDir()
	require.NoError(t, loader.Save(cfg))

	return &app.Container{
		Config:         cfg,
		ConfigProvider: loader,
		ConfigLoader:   loader,
		DoctorService: &doctor.Service{
			ConfigProvider: loader,
			Getenv:         func(string) string { return "test-key" },
		},
	}, loader
}

func TestLanguagesCommand(t *testing.T) {
	out, err := run(t, NewLanguagesCommand())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(domain.Languages))
	assert.Equal(t, "Auto-detect", lines[0])
	assert.Contains(t, lines, "HTML/CSS")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "bugsqa dev (")
	assert.Contains(t, out, "Go version: go")

	out, err = run(t, NewVersionCommand(), "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestConfigPathAndInit(t *testing.T) {
	container, loader := testContainer(t)

	out, err := run(t, NewConfigCommand(container), "path")
	require.NoError(t, err)
	assert.Equal(t, loader.Path()+"\n", out)

	out, err = run(t, NewConfigCommand(container), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, NewConfigCommand(container), "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to")
}

func TestModelsUseAndConfigDiff(t *testing.T) {
	container, loader := testContainer(t)

	_, err := run(t, NewModelsCommand(container), "use", "claude-sonnet")
	require.NoError(t, err)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", cfg.Preferences.DefaultModel)

	out, err := run(t, NewConfigCommand(container), "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "claude-sonnet")

	_, err = run(t, NewModelsCommand(container), "use", "gpt-9")
	assert.Error(t, err)
}

func TestConfigShowAndValidate(t *testing.T) {
	container, _ := testContainer(t)

	out, err := run(t, NewConfigCommand(container), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_model: gemini-flash")

	out, err = run(t, NewConfigCommand(container), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, MsgConfigurationValid)
}

func TestDoctorCommand(t *testing.T) {
	container, _ := testContainer(t)

	out, err := run(t, NewDoctorCommand(container))
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] Config file")
	assert.Contains(t, out, "[OK] API key")

	container.DoctorService.Getenv = func(string) string { return "" }
	out, err = run(t, NewDoctorCommand(container))
	assert.Error(t, err)
	assert.Contains(t, out, "[ERROR] API key")
}

func TestModelsList(t *testing.T) {
	container, _ := testContainer(t)

	out, err := run(t, NewModelsCommand(container), "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "BACKEND")
	assert.Regexp(t, `^\*\s+gemini-flash\s+gemini\s+gemini-2.0-flash\s+GOOGLE_API_KEY$`, lines[1])
	assert.Regexp(t, `ollama-llava\s+http\s+llava\s+-$`, lines[4])
}
