package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/shaderbuild/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("shaderbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
shaderbuild - Compiles vertex/fragment shader pairs and generates the Go
index of the resulting shader objects.

Usage:
  shaderbuild [options] [SHADER_DIR]

Arguments:
  SHADER_DIR
    Directory holding <name>.vert and <name>.frag sources. Output is written
    to its generated/ subdirectory.

Options:
`)
		flagSet.PrintDefaults()
	}

	shadersFlag := flagSet.String("shaders", "", "Path to the shader source directory.")
	sFlag := flagSet.String("s", "", "Path to the shader source directory (shorthand).")
	configFlag := flagSet.String("config", "", "Path to an .hcl config file or directory. Defaults to SHADER_DIR/"+app.DefaultConfigFile+" when present.")
	compilerFlag := flagSet.String("compiler", "", "Path to the shader compiler binary. Overrides config and environment.")
	provisionFlag := flagSet.Bool("provision", false, "Build the shader compiler with meson and ninja before compiling.")
	metricsFileFlag := flagSet.String("metrics-file", "", "Write run metrics to this file in Prometheus text format.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *shadersFlag != "" {
		path = *shadersFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Shader path determined.", "path", path)

	if path == "" {
		slog.Debug("No shader path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ShaderDir:        path,
		ConfigPath:       *configFlag,
		CompilerOverride: *compilerFlag,
		Provision:        *provisionFlag,
		MetricsFile:      *metricsFileFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
