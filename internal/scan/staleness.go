package scan

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// NeedsBuild reports whether the artifact at artifactPath must be
// regenerated from sources last modified at vertexMod and fragmentMod.
//
// A missing artifact always needs a build. Otherwise the artifact is stale
// only if a source is strictly newer than it; equal timestamps count as up to
// date. File contents are never inspected.
func NeedsBuild(vertexMod, fragmentMod time.Time, artifactPath string) (bool, error) {
	info, err := os.Stat(artifactPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	artifactMod := info.ModTime()
	return vertexMod.After(artifactMod) || fragmentMod.After(artifactMod), nil
}
