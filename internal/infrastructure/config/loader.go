package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/bugsqa/assets"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/pkg/filesystem"
	"github.com/doeshing/bugsqa/internal/ports"
)

// EnvConfigPath overrides the config location.
const EnvConfigPath = "BUGSQA_CONFIG"

// FileLoader loads YAML configuration from ~/.bugsqa/config.yaml (overridable via BUGSQA_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path means the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
// A missing file is created from the embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return hydrateDefaults(cfg), nil
}

// Save writes cfg back to the resolved path.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config file with the embedded defaults.
func (l *FileLoader) Reset() error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filesystem.AppPath(assets.DefaultConfigFile)
}

// Defaults parses the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string) error {
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.AnalysisDepth == 0 {
		cfg.Preferences.AnalysisDepth = domain.DefaultAnalysisDepth
	}
	if cfg.Preferences.SatisfactionRate == 0 {
		cfg.Preferences.SatisfactionRate = domain.DefaultSatisfactionRate
	}
	for i := range cfg.Models {
		if cfg.Models[i].Backend == "" {
			cfg.Models[i].Backend = domain.BackendGemini
		}
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "."
	}
	cfg.Report.OutputDir = expandPath(cfg.Report.OutputDir)
	if cfg.Logging.File != "" {
		cfg.Logging.File = expandPath(cfg.Logging.File)
	}
	return cfg
}

func expandPath(path string) string {
	return filesystem.ExpandPath(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
