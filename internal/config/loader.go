package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the top-level structure of a configuration file for decoding.
type hclFile struct {
	Compiler  *hclCompiler  `hcl:"compiler,block"`
	Provision *hclProvision `hcl:"provision,block"`
	Layout    *hclLayout    `hcl:"layout,block"`
	Symbols   *hclSymbols   `hcl:"symbols,block"`
	Codegen   *hclCodegen   `hcl:"codegen,block"`
	Notify    *hclNotify    `hcl:"notify,block"`
}

type hclCompiler struct {
	Path *string `hcl:"path,optional"`
	Env  *string `hcl:"env,optional"`
}

type hclProvision struct {
	ProjectDir *string `hcl:"project_dir,optional"`
	BuildDir   *string `hcl:"build_dir,optional"`
	Binary     *string `hcl:"binary,optional"`
	Meson      *string `hcl:"meson,optional"`
	Ninja      *string `hcl:"ninja,optional"`
}

type hclLayout struct {
	VertexExt       *string `hcl:"vertex_ext,optional"`
	FragmentExt     *string `hcl:"fragment_ext,optional"`
	GeneratedExt    *string `hcl:"generated_ext,optional"`
	GeneratedDir    *string `hcl:"generated_dir,optional"`
	ObjectsDir      *string `hcl:"objects_dir,optional"`
	ReservedStem    *string `hcl:"reserved_stem,optional"`
	FingerprintFile *string `hcl:"fingerprint_file,optional"`
}

type hclSymbols struct {
	Namespace *string `hcl:"namespace,optional"`
	Marker    *string `hcl:"marker,optional"`
}

type hclCodegen struct {
	ImportPath    *string `hcl:"import_path,optional"`
	NodeImport    *string `hcl:"node_import,optional"`
	NodeType      *string `hcl:"node_type,optional"`
	InitMethod    *string `hcl:"init_method,optional"`
	RuntimeImport *string `hcl:"runtime_import,optional"`
	Header        *string `hcl:"header,optional"`
}

type hclNotify struct {
	URL                string  `hcl:"url"`
	Namespace          *string `hcl:"namespace,optional"`
	Event              *string `hcl:"event,optional"`
	Timeout            *string `hcl:"timeout,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

// Load reads the configuration at path, which may be a single .hcl file or a
// directory searched recursively for .hcl files. An empty path yields
// Defaults. Attributes may reference the process environment as env.NAME.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Defaults()
	if path == "" {
		logger.Debug("No configuration path given, using defaults.")
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find configuration files in %s: %w", path, err)
		}
		if len(files) == 0 {
			logger.Warn("No .hcl configuration files found in path, using defaults", "path", path)
			return cfg, nil
		}
	}
	logger.Debug("Loading configuration files.", "files", files)

	parser := hclparse.NewParser()
	parsed := make([]*hcl.File, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		parsed = append(parsed, hclFile)
	}

	var decoded hclFile
	diags := gohcl.DecodeBody(hcl.MergeFiles(parsed), evalContext(os.Environ()), &decoded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", path, diags)
	}

	decoded.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evalContext exposes environ as the env object, e.g. env.HOME.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && pair[0] != "" {
			vars[pair[0]] = cty.StringVal(pair[1])
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (f *hclFile) applyTo(cfg *Config) {
	if c := f.Compiler; c != nil {
		set(&cfg.Compiler.Path, c.Path)
		set(&cfg.Compiler.Env, c.Env)
	}
	if p := f.Provision; p != nil {
		set(&cfg.Provision.ProjectDir, p.ProjectDir)
		set(&cfg.Provision.BuildDir, p.BuildDir)
		set(&cfg.Provision.Binary, p.Binary)
		set(&cfg.Provision.Meson, p.Meson)
		set(&cfg.Provision.Ninja, p.Ninja)
	}
	if l := f.Layout; l != nil {
		set(&cfg.Layout.VertexExt, l.VertexExt)
		set(&cfg.Layout.FragmentExt, l.FragmentExt)
		set(&cfg.Layout.GeneratedExt, l.GeneratedExt)
		set(&cfg.Layout.GeneratedDir, l.GeneratedDir)
		set(&cfg.Layout.ObjectsDir, l.ObjectsDir)
		set(&cfg.Layout.ReservedStem, l.ReservedStem)
		set(&cfg.Layout.FingerprintFile, l.FingerprintFile)
	}
	if s := f.Symbols; s != nil {
		set(&cfg.Symbols.Namespace, s.Namespace)
		set(&cfg.Symbols.Marker, s.Marker)
	}
	if c := f.Codegen; c != nil {
		set(&cfg.Codegen.ImportPath, c.ImportPath)
		set(&cfg.Codegen.NodeImport, c.NodeImport)
		set(&cfg.Codegen.NodeType, c.NodeType)
		set(&cfg.Codegen.InitMethod, c.InitMethod)
		set(&cfg.Codegen.RuntimeImport, c.RuntimeImport)
		set(&cfg.Codegen.Header, c.Header)
	}
	if n := f.Notify; n != nil {
		notify := &Notify{
			URL:       n.URL,
			Namespace: "/",
			Event:     "shaders_rebuilt",
			Timeout:   "10s",
		}
		set(&notify.Namespace, n.Namespace)
		set(&notify.Event, n.Event)
		set(&notify.Timeout, n.Timeout)
		set(&notify.InsecureSkipVerify, n.InsecureSkipVerify)
		cfg.Notify = notify
	}
}
