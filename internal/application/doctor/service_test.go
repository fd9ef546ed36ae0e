package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/domain"
)

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

func configWithReportDir(dir string) domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences:         domain.Preferences{DefaultModel: "gemini"},
		Models: []domain.ModelDefinition{
			{Name: "gemini", Backend: domain.BackendGemini, ModelID: "gemini-2.0-flash", AuthEnvVar: "GOOGLE_API_KEY"},
		},
		Report: domain.ReportSettings{OutputDir: dir},
	}
}

func statuses(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, c := range report.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: configWithReportDir(t.TempDir())},
		Getenv:         func(string) string { return "secret" },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	for name, status := range statuses(report) {
		assert.Equal(t, domain.HealthOK, status, name)
	}
}

func TestRunMissingKeyAndDirectory(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: configWithReportDir(filepath.Join(t.TempDir(), "later"))},
		Getenv:         func(string) string { return "" },
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	got := statuses(report)
	assert.Equal(t, domain.HealthError, got["API key"])
	assert.Equal(t, domain.HealthWarn, got["Report directory"])
}

func TestRunConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfigProvider{err: errors.New("permission denied")}}

	report, err := svc.Run(context.Background())
	assert.Error(t, err)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, domain.HealthError, report.Checks[0].Status)
}
