// Package codegen writes the two aggregator files of a generated shader
// package: the artifact index in the generated directory and the object
// index in its objects subdirectory.
//
// Both files are rendered from scratch and formatted with go/format on every
// call, so the same inputs always produce byte-identical output and entries
// for artifacts or objects that disappeared cannot survive.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/model"
)

const nodeAlias = "shadernode"

// Synthesizer renders the aggregator files.
type Synthesizer struct {
	layout  config.Layout
	symbols config.Symbols
	codegen config.Codegen
}

// New returns a Synthesizer for the given configuration.
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{layout: cfg.Layout, symbols: cfg.Symbols, codegen: cfg.Codegen}
}

type templateData struct {
	Header         string
	Package        string
	ObjectsPackage string
	ObjectsImport  string
	NodeAlias      string
	NodeImport     string
	NodeType       string
	RuntimeImport  string
	Marker         string
	InitMethod     string
	Modules        []string
	Objects        []string
}

// Signature identifies the settings that shape the generated output. It
// changes whenever a synthesis with the same inputs would produce different
// files.
func (s *Synthesizer) Signature() string {
	return fmt.Sprintf("%+v|%+v|%+v", s.layout, s.symbols, s.codegen)
}

// Synthesize truncates and rewrites the artifact index in generatedDir and
// the object index in objectDir. Any create or write failure is returned as
// model.ErrIO.
func (s *Synthesizer) Synthesize(ctx context.Context, generatedDir, objectDir string, modules []string, ids model.ObjectSet) error {
	logger := ctxlog.FromContext(ctx)

	data, err := s.templateData(generatedDir, objectDir, modules, ids)
	if err != nil {
		return model.Configurationf("cannot determine generated package import path: %v", err)
	}

	artifactIndex := s.IndexPath(generatedDir)
	if err := render(artifactIndexTmpl, data, artifactIndex); err != nil {
		return err
	}
	objectIndex := s.IndexPath(objectDir)
	if err := render(objectIndexTmpl, data, objectIndex); err != nil {
		return err
	}

	logger.Info("Aggregators written.", "artifact_index", artifactIndex, "object_index", objectIndex,
		"modules", len(data.Modules), "objects", len(data.Objects))
	return nil
}

// ReservedObjectNames returns the package-scope names of the object index:
// its imports and its own declarations. An object sharing one of them would
// make the generated package fail to compile.
func ReservedObjectNames(cg config.Codegen) []string {
	return []string{"context", "taskgroup", nodeAlias, cg.NodeType, "Objects", "InitializeShaders"}
}

// IndexPath returns the aggregator path inside dir.
func (s *Synthesizer) IndexPath(dir string) string {
	return filepath.Join(dir, s.layout.ReservedStem+"."+s.layout.GeneratedExt)
}

func (s *Synthesizer) templateData(generatedDir, objectDir string, modules []string, ids model.ObjectSet) (*templateData, error) {
	importPath := s.codegen.ImportPath
	if importPath == "" {
		var err error
		importPath, err = ImportPathForDir(generatedDir)
		if err != nil {
			return nil, err
		}
	}
	nodeImport := s.codegen.NodeImport
	if nodeImport == "" {
		nodeImport = path.Dir(importPath)
	}

	sortedModules := append([]string(nil), modules...)
	sort.Strings(sortedModules)

	objectsPackage := filepath.Base(objectDir)
	return &templateData{
		Header:         s.codegen.Header,
		Package:        filepath.Base(generatedDir),
		ObjectsPackage: objectsPackage,
		ObjectsImport:  path.Join(importPath, objectsPackage),
		NodeAlias:      nodeAlias,
		NodeImport:     nodeImport,
		NodeType:       s.codegen.NodeType,
		RuntimeImport:  s.codegen.RuntimeImport,
		Marker:         s.symbols.Marker,
		InitMethod:     s.codegen.InitMethod,
		Modules:        sortedModules,
		Objects:        ids.Sorted(),
	}, nil
}

func render(tmpl *template.Template, data *templateData, dst string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", dst, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated invalid Go source for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, src, 0o644); err != nil {
		return model.IOFailure(dst, err)
	}
	return nil
}
