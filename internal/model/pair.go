// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"path/filepath"
	"time"
)

// SourcePair is a vertex/fragment shader pair matched by file stem.
type SourcePair struct {
	Stem     string
	Vertex   string
	Fragment string

	VertexModTime   time.Time
	FragmentModTime time.Time
}

// ArtifactPath returns the path of the generated artifact for this pair.
func (p SourcePair) ArtifactPath(generatedDir, ext string) string {
	return filepath.Join(generatedDir, p.Stem+"."+ext)
}
