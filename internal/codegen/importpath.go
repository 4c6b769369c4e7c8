package codegen

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ImportPathForDir derives the Go import path of dir from the nearest go.mod
// at or above it.
func ImportPathForDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for cur := abs; ; {
		data, err := os.ReadFile(filepath.Join(cur, "go.mod"))
		switch {
		case err == nil:
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", fmt.Errorf("%s has no module directive", filepath.Join(cur, "go.mod"))
			}
			rel, err := filepath.Rel(cur, abs)
			if err != nil {
				return "", err
			}
			return path.Join(modPath, filepath.ToSlash(rel)), nil
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("no go.mod found at or above %s; set codegen.import_path", abs)
		}
		cur = parent
	}
}
