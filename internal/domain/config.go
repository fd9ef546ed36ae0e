package domain

// Config mirrors ~/.bugsqa/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Report              ReportSettings    `yaml:"report"`
	Logging             LoggingSettings   `yaml:"logging"`
}

// Preferences captures the defaults a new session starts with.
type Preferences struct {
	DefaultModel      string  `yaml:"default_model"`
	DefaultSeverity   string  `yaml:"default_severity"`
	DefaultLanguage   string  `yaml:"default_language"`
	DefaultComplexity string  `yaml:"default_complexity"`
	AnalysisDepth     int     `yaml:"analysis_depth"`
	SatisfactionRate  float64 `yaml:"satisfaction_rate"`
	TimeoutSeconds    int     `yaml:"timeout"`
	RenderMarkdown    bool    `yaml:"render_markdown"`
}

// ReportSettings controls where generated reports land.
type ReportSettings struct {
	OutputDir string `yaml:"output_dir"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}
