package app

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/bugsqa/internal/application/analysis"
	"github.com/doeshing/bugsqa/internal/application/doctor"
	"github.com/doeshing/bugsqa/internal/application/history"
	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/infrastructure/ai"
	"github.com/doeshing/bugsqa/internal/infrastructure/config"
	historyexport "github.com/doeshing/bugsqa/internal/infrastructure/history"
	"github.com/doeshing/bugsqa/internal/infrastructure/report"
	"github.com/doeshing/bugsqa/internal/pkg/logger"
	"github.com/doeshing/bugsqa/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	ClientFactory  ports.ClientFactory
	DoctorService  *doctor.Service
	ReportWriter   ports.ReportWriter
	Logger         *logger.ZapLogger
	// ExporterFor picks the archive format for a destination path.
	ExporterFor func(dest string) (ports.HistoryExporter, error)
}

// BuildContainer constructs the dependency graph.
// Credentials are not checked here so that config and doctor work without them;
// see Analyzer.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Build(logger.OptionsFromConfig(cfg.Logging, verbose))
	log.Debug("configuration loaded", map[string]interface{}{
		"path":          cfgLoader.Path(),
		"default_model": cfg.Preferences.DefaultModel,
		"models":        len(cfg.Models),
	})

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		ClientFactory:  ai.NewFactory(),
		DoctorService:  &doctor.Service{ConfigProvider: cfgLoader},
		ReportWriter:   report.NewFileWriter(),
		Logger:         log,
		ExporterFor:    historyexport.ExporterFor,
	}, nil
}

// Analyzer builds the analysis pipeline for modelName, or the default model when empty.
// A missing credential is domain.ErrConfiguration; nothing is analyzed without one.
func (c *Container) Analyzer(ctx context.Context, modelName string) (*analysis.Service, error) {
	model, err := c.resolveModel(modelName)
	if err != nil {
		return nil, err
	}

	client, err := c.ClientFactory.ForModel(ctx, model)
	if err != nil {
		c.Logger.Warn("analysis backend unavailable", map[string]interface{}{
			"model":   model.Name,
			"backend": string(model.Backend),
			"error":   err.Error(),
		})
		return nil, err
	}

	return &analysis.Service{
		Client:  client,
		Logger:  c.Logger,
		Timeout: time.Duration(c.Config.GetTimeoutSeconds()) * time.Second,
	}, nil
}

// NewSession starts an empty session seeded with the configured preferences.
func (c *Container) NewSession(runner session.Runner) *session.Session {
	store := history.NewStore(history.WithSatisfactionRate(c.Config.GetSatisfactionRate()))
	return session.New(runner, c.Config.SessionDefaults(), store)
}

func (c *Container) resolveModel(name string) (domain.ModelDefinition, error) {
	if name == "" {
		model, err := c.Config.GetDefaultModel()
		if err != nil {
			return domain.ModelDefinition{}, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		return model, nil
	}
	model, ok := c.Config.FindModelByName(name)
	if !ok {
		return domain.ModelDefinition{}, fmt.Errorf("%w: model %q is not configured", domain.ErrConfiguration, name)
	}
	return model, nil
}
