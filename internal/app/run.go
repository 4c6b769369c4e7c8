package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/shaderbuild/internal/compiler"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/metrics"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/specialistvlad/shaderbuild/internal/notify"
	"github.com/specialistvlad/shaderbuild/internal/pipeline"
	"github.com/specialistvlad/shaderbuild/internal/provision"
)

// Run provisions the compiler if asked to, runs the build pipeline once and
// reports the outcome.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	start := time.Now()
	report, err := a.execute(ctx)
	a.recordMetrics(ctx, report, time.Since(start), err)
	if err != nil {
		return err
	}

	a.logger.Info("Shader build finished.",
		"compiled", len(report.Compiled),
		"synthesized", report.Synthesized,
		"objects", len(report.Objects),
		"removed", len(report.Removed),
		"duration", time.Since(start).Round(time.Millisecond).String())

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) execute(ctx context.Context) (*pipeline.Report, error) {
	notifier, err := notify.New(a.build.Notify)
	if err != nil {
		return nil, model.Configurationf("invalid notify block: %v", err)
	}

	provisioned := ""
	if a.config.Provision {
		p, err := provision.New(a.build.Provision, a.runTool)
		if err != nil {
			return nil, err
		}
		provisioned, err = p.Ensure(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to provision shader compiler: %w", err)
		}
	}

	bin, err := a.build.ResolveCompilerBin(a.config.CompilerOverride, a.lookupEnv, provisioned)
	if err != nil {
		return nil, model.Configurationf("%v", err)
	}
	a.logger.Debug("Shader compiler resolved.", "bin", bin)

	report, err := pipeline.New(a.build, compiler.New(bin)).Run(ctx, a.config.ShaderDir)
	if err != nil {
		return report, fmt.Errorf("shader build failed: %w", err)
	}

	if report.Changed() {
		payload := notify.Payload{
			ShaderDir: a.config.ShaderDir,
			Compiled:  report.Compiled,
			Objects:   report.Objects,
			Removed:   report.Removed,
		}
		if err := notifier.Notify(ctx, payload); err != nil {
			a.logger.Warn("Rebuild notification failed.", "error", err)
		}
	}
	return report, nil
}

func (a *App) recordMetrics(ctx context.Context, report *pipeline.Report, elapsed time.Duration, runErr error) {
	if a.config.MetricsFile == "" {
		return
	}
	logger := ctxlog.FromContext(ctx)

	rec := metrics.New()
	rec.Record(report, elapsed, runErr)
	if err := rec.WriteFile(a.config.MetricsFile); err != nil {
		logger.Warn("Failed to write metrics file.", "path", a.config.MetricsFile, "error", err)
		return
	}
	logger.Debug("Metrics written.", "path", a.config.MetricsFile)
}
