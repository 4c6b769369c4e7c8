// Package hclpath expresses dotted symbol paths found in generated sources as
// hcl.Traversal values, so that matching and keying reuse HCL's traversal
// model instead of ad-hoc string splitting.
package hclpath

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Build returns the absolute traversal root.attrs[0].attrs[1]...
func Build(rng hcl.Range, root string, attrs ...string) hcl.Traversal {
	t := make(hcl.Traversal, 0, len(attrs)+1)
	t = append(t, hcl.TraverseRoot{Name: root, SrcRange: rng})
	for _, name := range attrs {
		t = append(t, hcl.TraverseAttr{Name: name, SrcRange: rng})
	}
	return t
}

// TraversalKey renders t back to its dotted source form, objects.Foo.ASM for
// the default pattern. Extraction uses it to name a matched reference in logs
// and errors.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// MatchThreeSegment reports whether t has exactly the shape
// namespace.<identifier>.marker and returns the identifier segment.
func MatchThreeSegment(t hcl.Traversal, namespace, marker string) (string, bool) {
	if len(t) != 3 || t.RootName() != namespace {
		return "", false
	}
	id, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	last, ok := t[2].(hcl.TraverseAttr)
	if !ok || last.Name != marker {
		return "", false
	}
	return id.Name, true
}
