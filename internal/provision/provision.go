// Package provision builds the shader compiler from source with meson and
// ninja before a pipeline run.
package provision

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shaderbuild/internal/compiler"
	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// RunFunc starts a tool and captures its output. compiler.Run satisfies it.
type RunFunc func(ctx context.Context, dir, name string, args ...string) (*compiler.Result, error)

// Provisioner drives meson and ninja for one project directory.
type Provisioner struct {
	projectDir string
	buildDir   string
	binary     string
	meson      string
	ninja      string
	run        RunFunc
}

// New returns a Provisioner for cfg. A relative or empty project dir is
// resolved against the working directory, and a relative build dir against
// the project dir.
func New(cfg config.Provision, run RunFunc) (*Provisioner, error) {
	projectDir, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return nil, model.Configurationf("invalid provision project dir %q: %v", cfg.ProjectDir, err)
	}
	buildDir := cfg.BuildDir
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(projectDir, buildDir)
	}
	if run == nil {
		run = compiler.Run
	}
	return &Provisioner{
		projectDir: projectDir,
		buildDir:   buildDir,
		binary:     filepath.Join(buildDir, cfg.Binary),
		meson:      cfg.Meson,
		ninja:      cfg.Ninja,
		run:        run,
	}, nil
}

// Ensure configures the build directory when needed, then always runs ninja.
// It returns the path of the built compiler binary.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := p.configure(ctx); err != nil {
		return "", err
	}

	logger.Info("Building shader compiler.", "build_dir", p.buildDir)
	if err := p.step(ctx, p.buildDir, p.ninja); err != nil {
		return "", err
	}
	return p.binary, nil
}

func (p *Provisioner) configure(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	_, err := os.Stat(filepath.Join(p.buildDir, "build.ninja"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Setting up build directory.", "project_dir", p.projectDir, "build_dir", p.buildDir)
		return p.step(ctx, p.projectDir, p.meson, "setup", ".", p.buildDir)
	case err != nil:
		return model.Configurationf("cannot stat build directory %s: %v", p.buildDir, err)
	}

	matches, err := p.sourceMatches()
	if err != nil {
		return err
	}
	if matches {
		logger.Debug("Build directory is configured for this project.", "build_dir", p.buildDir)
		return nil
	}

	logger.Info("Build directory belongs to another source tree; reconfiguring.", "build_dir", p.buildDir)
	if err := p.step(ctx, p.projectDir, p.meson, "setup", "--reconfigure", ".", p.buildDir); err != nil {
		return err
	}
	matches, err = p.sourceMatches()
	if err != nil {
		return err
	}
	if !matches {
		return model.Configurationf("build directory %s is still configured for another source tree after reconfigure", p.buildDir)
	}
	return nil
}

func (p *Provisioner) step(ctx context.Context, dir, name string, args ...string) error {
	res, err := p.run(ctx, dir, name, args...)
	if err != nil {
		return model.Configurationf("failed to start %s: %v", name, err)
	}
	if !res.Success() {
		return model.Configurationf("%s exited with status %d\nstdout:\n%s\nstderr:\n%s",
			res.Command, res.ExitCode, res.Stdout, res.Stderr)
	}
	return nil
}

func (p *Provisioner) sourceMatches() (bool, error) {
	infoPath := filepath.Join(p.buildDir, "meson-info", "meson-info.json")
	source, err := MesonSourceDir(infoPath)
	if err != nil {
		return false, err
	}
	return sameDir(source, p.projectDir), nil
}

// MesonSourceDir reads directories.source from a meson-info.json file.
func MesonSourceDir(infoPath string) (string, error) {
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return "", model.Configurationf("cannot read meson info: %v", err)
	}

	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return "", model.Configurationf("invalid meson info %s: %v", infoPath, err)
	}
	val, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return "", model.Configurationf("invalid meson info %s: %v", infoPath, err)
	}

	source, ok := attr(val, "directories", "source")
	if !ok || source.IsNull() {
		return "", model.Configurationf("meson info %s has no directories.source", infoPath)
	}
	var dir string
	if err := gocty.FromCtyValue(source, &dir); err != nil {
		return "", model.Configurationf("meson info %s: directories.source: %v", infoPath, err)
	}
	return dir, nil
}

func attr(val cty.Value, path ...string) (cty.Value, bool) {
	for _, name := range path {
		if val.IsNull() || !val.Type().IsObjectType() || !val.Type().HasAttribute(name) {
			return cty.NilVal, false
		}
		val = val.GetAttr(name)
	}
	return val, true
}

func sameDir(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}
