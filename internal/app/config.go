package app

import "errors"

// DefaultConfigFile is loaded from the shader directory when no config path
// is given and the file exists.
const DefaultConfigFile = "shaderbuild.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ShaderDir  string // vertex/fragment sources
	ConfigPath string // hcl file or directory, optional

	// CompilerOverride wins over every other compiler source.
	CompilerOverride string
	// Provision builds the compiler with meson/ninja before the run.
	Provision   bool
	MetricsFile string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ShaderDir == "" {
		return nil, errors.New("ShaderDir is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
