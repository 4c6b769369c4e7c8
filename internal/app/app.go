package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/provision"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	build     *config.Config
	lookupEnv config.LookupEnvFunc
	runTool   provision.RunFunc
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	configPath, err := resolveConfigPath(appConfig)
	if err != nil {
		panic(fmt.Errorf("failed to locate configuration: %w", err))
	}

	build, err := config.Load(ctx, configPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "path", configPath)

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		build:     build,
		lookupEnv: os.LookupEnv,
	}
}

// BuildConfig returns the loaded build configuration. This is primarily for testing.
func (a *App) BuildConfig() *config.Config {
	return a.build
}

func resolveConfigPath(appConfig *Config) (string, error) {
	if appConfig.ConfigPath != "" {
		return appConfig.ConfigPath, nil
	}
	candidate := filepath.Join(appConfig.ShaderDir, DefaultConfigFile)
	_, err := os.Stat(candidate)
	switch {
	case err == nil:
		return candidate, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", err
	}
}
