// Package pipeline runs the shader build stages in order: compile stale
// pairs, then, when the artifact listing changed, discover objects,
// rewrite the aggregators and remove object files nothing refers to.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shaderbuild/internal/codegen"
	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/specialistvlad/shaderbuild/internal/reconcile"
	"github.com/specialistvlad/shaderbuild/internal/scan"
	"github.com/specialistvlad/shaderbuild/internal/symbols"
)

// Reasons a synthesis pass ran.
const (
	ReasonCompiled          = "artifacts recompiled"
	ReasonMissingAggregator = "aggregator missing"
	ReasonListingChanged    = "artifact listing changed"
)

// Report summarizes one pipeline run.
type Report struct {
	// Compiled holds the stems recompiled in this run.
	Compiled []string
	// Synthesized is true when the aggregators were rewritten.
	Synthesized bool
	// Reason says why synthesis ran; empty when it did not.
	Reason string
	// Modules and Objects are only filled when Synthesized is true.
	Modules []string
	Objects []string
	// Removed holds the stale object files deleted in this run.
	Removed []string
}

// Changed reports whether the run touched any output.
func (r *Report) Changed() bool {
	return len(r.Compiled) > 0 || r.Synthesized || len(r.Removed) > 0
}

// Pipeline composes the build stages.
type Pipeline struct {
	layout      config.Layout
	scanner     *scan.Scanner
	extractor   *symbols.Extractor
	synthesizer *codegen.Synthesizer
}

// New wires a Pipeline that compiles with c.
func New(cfg *config.Config, c scan.Compiler) *Pipeline {
	return &Pipeline{
		layout:      cfg.Layout,
		scanner:     scan.New(c, cfg.Layout),
		extractor:   symbols.New(cfg.Layout, cfg.Symbols, codegen.ReservedObjectNames(cfg.Codegen)...),
		synthesizer: codegen.New(cfg),
	}
}

// Run builds the shaders in shaderDir. Output goes to the generated
// directory inside it. A compile failure is returned together with a report
// of what was compiled before it; synthesis does not run in that case.
func (p *Pipeline) Run(ctx context.Context, shaderDir string) (*Report, error) {
	shaderDir, err := filepath.Abs(shaderDir)
	if err != nil {
		return nil, model.IOFailure(shaderDir, err)
	}
	generatedDir := filepath.Join(shaderDir, p.layout.GeneratedDir)
	objectDir := filepath.Join(generatedDir, p.layout.ObjectsDir)

	ctx = ctxlog.With(ctx, "shader_dir", shaderDir)
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(objectDir, 0o755); err != nil {
		return nil, model.IOFailure(objectDir, err)
	}

	report := &Report{}
	report.Compiled, err = p.scanner.Scan(ctx, shaderDir, generatedDir)
	if err != nil {
		return report, err
	}

	sumPath := filepath.Join(generatedDir, p.layout.FingerprintFile)
	current, err := ComputeFingerprint(generatedDir, p.layout.GeneratedExt, p.layout.ReservedStem, p.synthesizer.Signature())
	if err != nil {
		return report, model.IOFailure(generatedDir, err)
	}

	report.Reason, err = p.synthesisReason(report, generatedDir, objectDir, sumPath, current)
	if err != nil {
		return report, err
	}
	if report.Reason == "" {
		logger.Info("Generated code is up to date.")
		return report, nil
	}
	logger.Info("Regenerating aggregators.", "reason", report.Reason)

	discovery, err := p.extractor.Extract(ctx, generatedDir)
	if err != nil {
		return report, err
	}
	if err := p.synthesizer.Synthesize(ctx, generatedDir, objectDir, discovery.Modules, discovery.Objects); err != nil {
		return report, err
	}
	report.Synthesized = true
	report.Modules = discovery.Modules
	report.Objects = discovery.Objects.Sorted()

	report.Removed, err = reconcile.Reconcile(ctx, objectDir, p.layout.GeneratedExt, p.layout.ReservedStem, discovery.Objects)
	if err != nil {
		return report, err
	}

	if err := WriteFingerprint(sumPath, current); err != nil {
		return report, model.IOFailure(sumPath, err)
	}
	return report, nil
}

func (p *Pipeline) synthesisReason(report *Report, generatedDir, objectDir, sumPath string, current Fingerprint) (string, error) {
	if len(report.Compiled) > 0 {
		return ReasonCompiled, nil
	}
	for _, index := range []string{p.synthesizer.IndexPath(generatedDir), p.synthesizer.IndexPath(objectDir)} {
		ok, err := exists(index)
		if err != nil {
			return "", model.IOFailure(index, err)
		}
		if !ok {
			return ReasonMissingAggregator, nil
		}
	}
	stored, err := ReadFingerprint(sumPath)
	if err != nil {
		return "", model.IOFailure(sumPath, err)
	}
	if stored != current {
		return ReasonListingChanged, nil
	}
	return "", nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
