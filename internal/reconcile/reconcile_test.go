package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/shaderbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package objects\n"), 0o644))
	}
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestReconcile_RemovesExactlyTheUnreferencedFiles(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	touch(t, dir, "Foo.go", "Old.go", "Bar.go", "mod.go", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Gone.go"), 0o755))

	// --- Act ---
	removed, err := Reconcile(context.Background(), dir, "go", "mod", model.NewObjectSet("Foo", "Bar", "Missing"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Old.go")}, removed)
	want := []string{"Bar.go", "Foo.go", "Gone.go", "mod.go", "notes.txt"}
	if diff := cmp.Diff(want, listNames(t, dir)); diff != "" {
		t.Errorf("directory contents mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_EmptySetKeepsOnlyReserved(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	touch(t, dir, "A.go", "B.go", "mod.go")

	// --- Act ---
	removed, err := Reconcile(context.Background(), dir, "go", "mod", model.NewObjectSet())

	// --- Assert ---
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, []string{"mod.go"}, listNames(t, dir))
}

func TestReconcile_MissingDirectoryIsIOError(t *testing.T) {
	t.Parallel()

	_, err := Reconcile(context.Background(), filepath.Join(t.TempDir(), "absent"), "go", "mod", model.NewObjectSet())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIO)
}
