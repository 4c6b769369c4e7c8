// Package testutil builds throwaway shader workspaces for the integration
// tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Workspace is a temporary Go module with a shader directory and a fake
// compiler.
type Workspace struct {
	Root      string
	ShaderDir string
	Compiler  string
	// CallLog receives one line per compiler invocation.
	CallLog string
}

// NewWorkspace creates the module and shader directories. The fake compiler
// copies <stem>.art from the shader directory to the output path, fails
// with the contents of <stem>.err on stderr when that file exists, and
// logs every call.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler scripts require a POSIX shell")
	}

	root := t.TempDir()
	ws := &Workspace{
		Root:      root,
		ShaderDir: filepath.Join(root, "shaders"),
		Compiler:  filepath.Join(root, "bin", "vc4-glsl"),
		CallLog:   filepath.Join(root, "calls.log"),
	}
	require.NoError(t, os.MkdirAll(ws.ShaderDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(ws.Compiler), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/gfx\n\ngo 1.24\n"), 0o644))

	script := fmt.Sprintf(`#!/bin/sh
stem=$(basename "$1" .vert)
dir=$(dirname "$1")
echo "$stem" >> %q
if [ -f "$dir/$stem.err" ]; then
  cat "$dir/$stem.err" >&2
  exit 1
fi
cp "$dir/$stem.art" "$3"
`, ws.CallLog)
	require.NoError(t, os.WriteFile(ws.Compiler, []byte(script), 0o755))
	return ws
}

// AddShader writes a source pair for stem whose compiled artifact is
// artifact.
func (ws *Workspace) AddShader(t *testing.T, stem, artifact string) {
	t.Helper()
	for _, ext := range []string{"vert", "frag"} {
		require.NoError(t, os.WriteFile(filepath.Join(ws.ShaderDir, stem+"."+ext), []byte("void main() {}\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(ws.ShaderDir, stem+".art"), []byte(artifact), 0o644))
}

// Generated joins elem onto the generated directory.
func (ws *Workspace) Generated(elem ...string) string {
	return filepath.Join(append([]string{ws.ShaderDir, "generated"}, elem...)...)
}

// Calls returns the stems the compiler was invoked for, in order.
func (ws *Workspace) Calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(ws.CallLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}

// Read returns the contents of path.
func Read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
