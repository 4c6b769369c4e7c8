package config

// Config is the complete, defaulted build configuration.
type Config struct {
	Compiler  Compiler
	Provision Provision
	Layout    Layout
	Symbols   Symbols
	Codegen   Codegen
	// Notify is nil when no notify block was configured.
	Notify *Notify
}

// Compiler locates the external shader compiler.
type Compiler struct {
	// Path is an explicit binary path. It wins over every other source.
	Path string
	// Env names the environment variable consulted when Path is empty.
	Env string
}

// Provision describes how the compiler is built with meson and ninja.
type Provision struct {
	ProjectDir string
	BuildDir   string
	// Binary is the compiler path relative to BuildDir.
	Binary string
	Meson  string
	Ninja  string
}

// Layout fixes file extensions and directory names.
type Layout struct {
	VertexExt    string
	FragmentExt  string
	GeneratedExt string
	GeneratedDir string
	ObjectsDir   string
	// ReservedStem is the stem of both aggregator files.
	ReservedStem    string
	FingerprintFile string
}

// Symbols describes the namespace.<identifier>.marker pattern that marks
// a shader object reference inside an artifact.
type Symbols struct {
	Namespace string
	Marker    string
}

// Codegen controls the content of the aggregator files.
type Codegen struct {
	// ImportPath is the Go import path of the generated package. When empty
	// it is derived from the nearest go.mod.
	ImportPath string
	// NodeImport is the import path of the package declaring NodeType. When
	// empty it is the parent of ImportPath.
	NodeImport string
	NodeType   string
	// InitMethod is the method called on every object's marker value. It
	// must have the signature func(context.Context) error.
	InitMethod string
	// RuntimeImport is the import path of the taskgroup package.
	RuntimeImport string
	Header        string
}

// Notify configures the optional socket.io rebuild notification.
type Notify struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            string
	InsecureSkipVerify bool
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Compiler: Compiler{
			Env: DefaultCompilerEnv,
		},
		Provision: Provision{
			BuildDir: "build",
			Binary:   "src/vc4-glsl/vc4-glsl",
			Meson:    "meson",
			Ninja:    "ninja",
		},
		Layout: Layout{
			VertexExt:       "vert",
			FragmentExt:     "frag",
			GeneratedExt:    "go",
			GeneratedDir:    "generated",
			ObjectsDir:      "objects",
			ReservedStem:    "mod",
			FingerprintFile: ".shaderbuild.sum",
		},
		Symbols: Symbols{
			Namespace: "objects",
			Marker:    "ASM",
		},
		Codegen: Codegen{
			NodeType:      "ShaderNode",
			InitMethod:    "Initialize",
			RuntimeImport: "github.com/specialistvlad/shaderbuild/pkg/taskgroup",
			Header:        "Code generated by shaderbuild. DO NOT EDIT.",
		},
	}
}
