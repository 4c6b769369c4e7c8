package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/shaderbuild/internal/compiler"
	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler writes a canned artifact for each stem and one object file
// per identifier the artifact refers to.
type fakeCompiler struct {
	artifacts map[string]string
	objects   map[string][]string
	fail      map[string]error
	calls     []string
}

func (f *fakeCompiler) Compile(_ context.Context, vertex, _, output string) (*compiler.Result, error) {
	stem := filepath.Base(output[:len(output)-len(filepath.Ext(output))])
	f.calls = append(f.calls, stem)
	if err := f.fail[stem]; err != nil {
		return &compiler.Result{ExitCode: 1}, err
	}
	if err := os.WriteFile(output, []byte(f.artifacts[stem]), 0o644); err != nil {
		return nil, err
	}
	objectDir := filepath.Join(filepath.Dir(output), "objects")
	for _, id := range f.objects[stem] {
		src := "package objects\n\nvar " + id + " = struct{ ASM *ShaderNode }{}\n"
		if err := os.WriteFile(filepath.Join(objectDir, id+".go"), []byte(src), 0o644); err != nil {
			return nil, err
		}
	}
	return &compiler.Result{Command: vertex}, nil
}

const quadArtifact = `package generated

import "example.com/gfx/shaders/generated/objects"

var Quad = &ShaderNode{Program: objects.Foo.ASM}
`

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Codegen.ImportPath = "example.com/gfx/shaders/generated"
	return cfg
}

func writeSources(t *testing.T, dir string, stems ...string) {
	t.Helper()
	for _, stem := range stems {
		require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".vert"), []byte("void main() {}\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".frag"), []byte("void main() {}\n"), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newQuadFixture(t *testing.T) (string, *fakeCompiler) {
	t.Helper()
	dir := t.TempDir()
	writeSources(t, dir, "quad")
	fc := &fakeCompiler{
		artifacts: map[string]string{"quad": quadArtifact},
		objects:   map[string][]string{"quad": {"Foo"}},
	}
	return dir, fc
}

func TestRun_FirstBuildGeneratesAggregators(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	p := New(testConfig(), fc)

	// --- Act ---
	report, err := p.Run(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"quad"}, report.Compiled)
	assert.True(t, report.Synthesized)
	assert.Equal(t, ReasonCompiled, report.Reason)
	assert.Equal(t, []string{"quad"}, report.Modules)
	assert.Equal(t, []string{"Foo"}, report.Objects)
	assert.Empty(t, report.Removed)
	assert.True(t, report.Changed())

	generated := filepath.Join(dir, "generated")
	assert.Contains(t, readFile(t, filepath.Join(generated, "mod.go")), `"quad",`)
	objectIndex := readFile(t, filepath.Join(generated, "objects", "mod.go"))
	assert.Contains(t, objectIndex, `"Foo",`)
	assert.Contains(t, objectIndex, "g.Go(Foo.ASM.Initialize)")
	assert.FileExists(t, filepath.Join(generated, "objects", "Foo.go"))
	assert.FileExists(t, filepath.Join(generated, ".shaderbuild.sum"))
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	p := New(testConfig(), fc)
	ctx := context.Background()
	_, err := p.Run(ctx, dir)
	require.NoError(t, err)
	generated := filepath.Join(dir, "generated")
	artifactIndex := readFile(t, filepath.Join(generated, "mod.go"))
	objectIndex := readFile(t, filepath.Join(generated, "objects", "mod.go"))

	// --- Act ---
	report, err := p.Run(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"quad"}, fc.calls)
	if diff := cmp.Diff(&Report{}, report, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, report.Changed())
	assert.Equal(t, artifactIndex, readFile(t, filepath.Join(generated, "mod.go")))
	assert.Equal(t, objectIndex, readFile(t, filepath.Join(generated, "objects", "mod.go")))
}

func TestRun_RemovesUnreferencedObjectFiles(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	objectDir := filepath.Join(dir, "generated", "objects")
	require.NoError(t, os.MkdirAll(objectDir, 0o755))
	old := filepath.Join(objectDir, "Old.go")
	require.NoError(t, os.WriteFile(old, []byte("package objects\n"), 0o644))

	// --- Act ---
	report, err := New(testConfig(), fc).Run(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{old}, report.Removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, filepath.Join(objectDir, "Foo.go"))
	assert.NotContains(t, readFile(t, filepath.Join(objectDir, "mod.go")), "Old")
}

func TestRun_MissingFragmentFailsBeforeCompiling(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lonely.vert"), []byte("void main() {}\n"), 0o644))

	// --- Act ---
	_, err := New(testConfig(), fc).Run(context.Background(), dir)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingPair)
	assert.Contains(t, err.Error(), filepath.Join(dir, "lonely.frag")+" does not exist")
	assert.Empty(t, fc.calls)
	assert.NoFileExists(t, filepath.Join(dir, "generated", "mod.go"))
}

func TestRun_CompileFailureStopsBeforeSynthesis(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	writeSources(t, dir, "blur", "zoom")
	fc.artifacts["blur"] = "package generated\n"
	fc.fail = map[string]error{"quad": &model.BuildError{Kind: model.ErrCompilerInvocation, Msg: "syntax error"}}

	// --- Act ---
	report, err := New(testConfig(), fc).Run(context.Background(), dir)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrCompilerInvocation)
	assert.Contains(t, err.Error(), "failed to compile quad")
	assert.Equal(t, []string{"blur", "quad"}, fc.calls)
	assert.Equal(t, []string{"blur"}, report.Compiled)
	assert.False(t, report.Synthesized)
	assert.FileExists(t, filepath.Join(dir, "generated", "blur.go"))
	assert.NoFileExists(t, filepath.Join(dir, "generated", "mod.go"))
}

func TestRun_StaleSourceIsRecompiled(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	p := New(testConfig(), fc)
	ctx := context.Background()
	_, err := p.Run(ctx, dir)
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "quad.frag"), future, future))

	// --- Act ---
	report, err := p.Run(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"quad", "quad"}, fc.calls)
	assert.Equal(t, []string{"quad"}, report.Compiled)
	assert.True(t, report.Synthesized)
}

func TestRun_ResynthesizesWhenInputsChangeWithoutCompiling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(t *testing.T, generated string)
		wantReason string
		wantObjs   []string
	}{
		{
			name: "object index deleted",
			mutate: func(t *testing.T, generated string) {
				require.NoError(t, os.Remove(filepath.Join(generated, "objects", "mod.go")))
			},
			wantReason: ReasonMissingAggregator,
			wantObjs:   []string{"Foo"},
		},
		{
			name: "artifact added by hand",
			mutate: func(t *testing.T, generated string) {
				src := "package generated\n\nvar Extra = objects.Bar.ASM\n"
				require.NoError(t, os.WriteFile(filepath.Join(generated, "extra.go"), []byte(src), 0o644))
			},
			wantReason: ReasonListingChanged,
			wantObjs:   []string{"Bar", "Foo"},
		},
		{
			name: "fingerprint lost",
			mutate: func(t *testing.T, generated string) {
				require.NoError(t, os.Remove(filepath.Join(generated, ".shaderbuild.sum")))
			},
			wantReason: ReasonListingChanged,
			wantObjs:   []string{"Foo"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			dir, fc := newQuadFixture(t)
			p := New(testConfig(), fc)
			ctx := context.Background()
			_, err := p.Run(ctx, dir)
			require.NoError(t, err)
			tc.mutate(t, filepath.Join(dir, "generated"))

			// --- Act ---
			report, err := p.Run(ctx, dir)

			// --- Assert ---
			require.NoError(t, err)
			assert.Len(t, fc.calls, 1)
			assert.True(t, report.Synthesized)
			assert.Equal(t, tc.wantReason, report.Reason)
			if diff := cmp.Diff(tc.wantObjs, report.Objects); diff != "" {
				t.Errorf("objects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_UnparsableArtifactIsParseError(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	fc.artifacts["quad"] = "package generated\n\nvar = \n"

	// --- Act ---
	_, err := New(testConfig(), fc).Run(context.Background(), dir)

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrParse))
}

func TestRun_ObjectNamedAfterIndexDeclarationIsParseError(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir, fc := newQuadFixture(t)
	cfg := testConfig()
	fc.artifacts["quad"] = "package generated\n\nvar q = objects." + cfg.Codegen.NodeType + ".ASM\n"

	// --- Act ---
	report, err := New(cfg, fc).Run(context.Background(), dir)

	// --- Assert ---
	require.ErrorIs(t, err, model.ErrParse)
	assert.Contains(t, err.Error(), "collides with a declaration of the object index")
	assert.NoFileExists(t, filepath.Join(dir, "generated", "objects", "mod.go"))
	if report != nil {
		assert.False(t, report.Synthesized)
	}
}

func TestFingerprint_TracksListingAndSettings(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package generated\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.go"), []byte("package generated\n"), 0o644))

	// --- Act ---
	base, err := ComputeFingerprint(dir, "go", "mod", "s1")
	require.NoError(t, err)
	otherSettings, err := ComputeFingerprint(dir, "go", "mod", "s2")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.go"), []byte("package generated\n\n// changed\n"), 0o644))
	aggregatorTouched, err := ComputeFingerprint(dir, "go", "mod", "s1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package generated\n"), 0o644))
	artifactAdded, err := ComputeFingerprint(dir, "go", "mod", "s1")
	require.NoError(t, err)

	// --- Assert ---
	assert.NotEqual(t, base, otherSettings)
	assert.Equal(t, base, aggregatorTouched)
	assert.NotEqual(t, base, artifactAdded)
}

func TestFingerprint_ReadWrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".shaderbuild.sum")

	missing, err := ReadFingerprint(path)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, WriteFingerprint(path, "abc123"))
	got, err := ReadFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("abc123"), got)
}
