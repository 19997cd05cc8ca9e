package config

// Config represents the full application configuration.
type Config struct {
	Coverage      CoverageConfig      `yaml:"coverage"`
	Branch        BranchConfig        `yaml:"branch"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CoverageConfig configures the report transformation.
type CoverageConfig struct {
	ReportPath string `yaml:"reportPath"` // default location of the LCOV report
	Prefix     string `yaml:"prefix"`     // source root expected by the analyzer
	Backup     bool   `yaml:"backup"`     // keep a .bak copy on in-place rewrites
}

// BranchConfig configures the branch classifier.
type BranchConfig struct {
	FeaturePrefixes []string `yaml:"featurePrefixes"` // prefixes classified as feature branches
	Target          string   `yaml:"target"`          // reference branch for New Code analysis
}

// GitConfig locates the repository for branch detection.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// OutputConfig controls where run reports are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig controls the run history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig groups logging settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // human, json
}
