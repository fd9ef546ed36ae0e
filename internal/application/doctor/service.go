package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appconfig "github.com/doeshing/bugsqa/internal/application/config"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded format v%s", cfg.ConfigFormatVersion)))

	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config validation", err.Error()))
	} else {
		checks = append(checks, ok("Config validation", fmt.Sprintf("%d model(s) configured", len(cfg.Models))))
	}

	checks = append(checks, s.credentialCheck(cfg))
	checks = append(checks, reportDirCheck(cfg.Report.OutputDir))

	return domain.HealthReport{Checks: checks}, nil
}

// credentialCheck looks only at the default model: that is the one analysis commands use.
func (s *Service) credentialCheck(cfg domain.Config) domain.HealthCheck {
	model, err := cfg.GetDefaultModel()
	if err != nil {
		if len(cfg.Models) == 0 {
			return fail("API key", "no models configured")
		}
		model = cfg.Models[0]
	}
	if model.AuthEnvVar == "" {
		return ok("API key", fmt.Sprintf("%s needs no credential", model.Name))
	}
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv(model.AuthEnvVar) == "" {
		return fail("API key", fmt.Sprintf("%s missing for model %s", model.AuthEnvVar, model.Name))
	}
	return ok("API key", fmt.Sprintf("%s set for %s (%s)", model.AuthEnvVar, model.Name, model.Backend))
}

func reportDirCheck(dir string) domain.HealthCheck {
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return warn("Report directory", fmt.Sprintf("%s does not exist yet; it will be created", dir))
	}
	if err != nil {
		return fail("Report directory", err.Error())
	}
	if !info.IsDir() {
		return fail("Report directory", fmt.Sprintf("%s is not a directory", dir))
	}
	probe, err := os.CreateTemp(dir, ".bugsqa-doctor-*")
	if err != nil {
		return fail("Report directory", fmt.Sprintf("%s is not writable: %v", dir, err))
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	abs, _ := filepath.Abs(dir)
	return ok("Report directory", abs)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
