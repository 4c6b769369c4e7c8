// Package scan finds vertex/fragment shader pairs in a source directory and
// recompiles the ones whose generated artifact is missing or out of date.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shaderbuild/internal/compiler"
	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/fsutil"
	"github.com/specialistvlad/shaderbuild/internal/model"
)

// Compiler turns one source pair into an artifact.
type Compiler interface {
	Compile(ctx context.Context, vertex, fragment, output string) (*compiler.Result, error)
}

// Scanner drives the compiler over every stale pair in a directory.
type Scanner struct {
	compiler Compiler
	layout   config.Layout
}

// New returns a Scanner using c and the extensions in layout.
func New(c Compiler, layout config.Layout) *Scanner {
	return &Scanner{compiler: c, layout: layout}
}

// Pairs lists the source pairs directly inside sourceDir, sorted by stem.
// Every vertex source must have a regular fragment file with the same stem;
// the first one that does not fails the listing with model.ErrMissingPair.
func (s *Scanner) Pairs(ctx context.Context, sourceDir string) ([]model.SourcePair, error) {
	logger := ctxlog.FromContext(ctx)

	vertices, err := fsutil.ListFiles(sourceDir, s.layout.VertexExt)
	if err != nil {
		return nil, model.IOFailure(sourceDir, err)
	}

	pairs := make([]model.SourcePair, 0, len(vertices))
	for _, vert := range vertices {
		fragPath := filepath.Join(sourceDir, vert.Stem+"."+s.layout.FragmentExt)
		fragInfo, err := os.Stat(fragPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, model.MissingPair(fragPath, "does not exist")
		case err != nil:
			return nil, &model.BuildError{Kind: model.ErrMissingPair, Path: fragPath, Err: err}
		case !fragInfo.Mode().IsRegular():
			return nil, model.MissingPair(fragPath, "is not a file")
		}

		logger.Debug("Found shader pair.", "stem", vert.Stem)
		pairs = append(pairs, model.SourcePair{
			Stem:            vert.Stem,
			Vertex:          vert.Path,
			Fragment:        fragPath,
			VertexModTime:   vert.Info.ModTime(),
			FragmentModTime: fragInfo.ModTime(),
		})
	}
	return pairs, nil
}

// Scan compiles every stale pair in sourceDir into generatedDir and returns
// the stems it compiled, in order. The first failure stops the scan; the
// stems compiled before it are still returned and their artifacts are kept.
func (s *Scanner) Scan(ctx context.Context, sourceDir, generatedDir string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, model.IOFailure(sourceDir, err)
	}
	generatedDir, err = filepath.Abs(generatedDir)
	if err != nil {
		return nil, model.IOFailure(generatedDir, err)
	}

	pairs, err := s.Pairs(ctx, sourceDir)
	if err != nil {
		return nil, err
	}

	var compiled []string
	for _, pair := range pairs {
		artifact := pair.ArtifactPath(generatedDir, s.layout.GeneratedExt)
		stale, err := NeedsBuild(pair.VertexModTime, pair.FragmentModTime, artifact)
		if err != nil {
			return compiled, model.IOFailure(artifact, err)
		}
		if !stale {
			logger.Debug("Artifact up to date.", "stem", pair.Stem, "artifact", artifact)
			continue
		}

		logger.Info("Compiling shader.", "stem", pair.Stem, "artifact", artifact)
		if _, err := s.compiler.Compile(ctx, pair.Vertex, pair.Fragment, artifact); err != nil {
			return compiled, fmt.Errorf("failed to compile %s: %w", pair.Stem, err)
		}
		compiled = append(compiled, pair.Stem)
	}

	logger.Debug("Shader scan finished.", "pairs", len(pairs), "compiled", len(compiled))
	return compiled, nil
}

// CompileAll is Scan reduced to whether anything was recompiled.
func (s *Scanner) CompileAll(ctx context.Context, sourceDir, generatedDir string) (bool, error) {
	compiled, err := s.Scan(ctx, sourceDir, generatedDir)
	return len(compiled) > 0, err
}
