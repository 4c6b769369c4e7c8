package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/shaderbuild/internal/app"
	"github.com/specialistvlad/shaderbuild/internal/integration_tests/testutil"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadArtifact = `package generated

var Quad = &ShaderNode{Program: objects.Foo.ASM}
`

// Test for: invalid hcl is rejected
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		layout {
			vertex_ext = "vert"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shaderbuild.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(invalidHCL), 0600))
	appConfig := &app.Config{ShaderDir: tempDir, ConfigPath: configPath}

	// --- Act ---
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		app.SetupAppTest(t, appConfig)
	}()

	// --- Assert ---
	require.NotNil(t, recovered, "NewApp should panic on invalid configuration")
	err, ok := recovered.(error)
	require.True(t, ok)
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected an HCL parsing failure, but got: %s", err)
	}
}

// Test for: a vertex source without its fragment fails before any compile
func TestErrorHandling_MissingFragment(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ws := testutil.NewWorkspace(t)
	ws.AddShader(t, "quad", quadArtifact)
	require.NoError(t, os.WriteFile(filepath.Join(ws.ShaderDir, "lonely.vert"), []byte("void main() {}\n"), 0o644))
	testApp, _ := app.SetupAppTest(t, &app.Config{ShaderDir: ws.ShaderDir, CompilerOverride: ws.Compiler})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingPair))
	assert.Contains(t, err.Error(), filepath.Join(ws.ShaderDir, "lonely.frag"))
	assert.Empty(t, ws.Calls(t))
}

// Test for: compiler diagnostics and the three paths reach the caller
func TestErrorHandling_CompilerFailureCarriesDiagnostics(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ws := testutil.NewWorkspace(t)
	ws.AddShader(t, "quad", quadArtifact)
	require.NoError(t, os.WriteFile(filepath.Join(ws.ShaderDir, "quad.err"), []byte("quad.frag:3: syntax error\n"), 0o644))
	testApp, _ := app.SetupAppTest(t, &app.Config{ShaderDir: ws.ShaderDir, CompilerOverride: ws.Compiler})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCompilerInvocation))
	msg := err.Error()
	assert.Contains(t, msg, "syntax error")
	assert.Contains(t, msg, filepath.Join(ws.ShaderDir, "quad.vert"))
	assert.Contains(t, msg, filepath.Join(ws.ShaderDir, "quad.frag"))
	assert.Contains(t, msg, ws.Generated("quad.go"))
	assert.NoFileExists(t, ws.Generated("mod.go"))
}

// Test for: a missing compiler is a configuration error
func TestErrorHandling_NoCompilerConfigured(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ws := testutil.NewWorkspace(t)
	ws.AddShader(t, "quad", quadArtifact)
	testApp, _ := app.SetupAppTest(t, &app.Config{ShaderDir: ws.ShaderDir})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
	assert.Empty(t, ws.Calls(t))
}

// Test for: an artifact that is not valid Go is a parse error
func TestErrorHandling_UnparsableArtifact(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ws := testutil.NewWorkspace(t)
	ws.AddShader(t, "quad", "package generated\n\nfunc {\n")
	testApp, _ := app.SetupAppTest(t, &app.Config{ShaderDir: ws.ShaderDir, CompilerOverride: ws.Compiler})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrParse))
	assert.Contains(t, err.Error(), ws.Generated("quad.go"))
}
