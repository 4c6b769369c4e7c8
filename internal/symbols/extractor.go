// Package symbols discovers shader object references in generated artifacts.
//
// An artifact refers to a shader object through a selector chain of the
// fixed shape namespace.<identifier>.marker (objects.Foo.ASM by default).
// Each artifact is parsed into a syntax tree, every selector chain rooted at
// a plain identifier is turned into an hcl.Traversal, and the chains with
// exactly the three expected segments contribute their middle segment to the
// result set.
package symbols

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/fsutil"
	"github.com/specialistvlad/shaderbuild/internal/hclpath"
	"github.com/specialistvlad/shaderbuild/internal/model"
)

// Discovery is the result of scanning a generated directory.
type Discovery struct {
	// Modules holds the stems of the scanned artifacts, sorted.
	Modules []string
	Objects model.ObjectSet
}

// Extractor finds object identifiers in artifacts.
type Extractor struct {
	layout   config.Layout
	symbols  config.Symbols
	reserved map[string]bool
}

// New returns an Extractor for the given layout and symbol pattern. An
// artifact referencing an object named after one of reserved fails
// extraction, since the object index declares those names itself.
func New(layout config.Layout, symbols config.Symbols, reserved ...string) *Extractor {
	e := &Extractor{layout: layout, symbols: symbols, reserved: make(map[string]bool, len(reserved))}
	for _, name := range reserved {
		e.reserved[name] = true
	}
	return e
}

// reference is one selector chain matching the pattern.
type reference struct {
	id        string
	traversal hcl.Traversal
}

// Extract parses every artifact directly inside generatedDir, skipping the
// aggregator, and collects the identifiers they reference. A single
// unparsable artifact, or one referencing a reserved name, fails the whole
// extraction with model.ErrParse.
func (e *Extractor) Extract(ctx context.Context, generatedDir string) (*Discovery, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ListFiles(generatedDir, e.layout.GeneratedExt)
	if err != nil {
		return nil, model.IOFailure(generatedDir, err)
	}

	d := &Discovery{Objects: model.NewObjectSet()}
	fset := token.NewFileSet()
	for _, file := range files {
		if file.Stem == e.layout.ReservedStem {
			continue
		}
		ids, err := e.extractFile(logger, fset, file.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("Scanned artifact.", "artifact", file.Name, "objects", ids.Sorted())
		d.Modules = append(d.Modules, file.Stem)
		d.Objects.Merge(ids)
	}

	logger.Info("Discovered shader objects.", "artifacts", len(d.Modules), "objects", len(d.Objects))
	return d, nil
}

func (e *Extractor) extractFile(logger *slog.Logger, fset *token.FileSet, path string) (model.ObjectSet, error) {
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, model.ParseFailure(path, err)
	}

	ids := model.NewObjectSet()
	for _, ref := range e.references(fset, file) {
		key := hclpath.TraversalKey(ref.traversal)
		if e.reserved[ref.id] {
			return nil, model.ParseFailure(path, fmt.Errorf(
				"%s at %s: object name %q collides with a declaration of the object index",
				key, ref.traversal.SourceRange(), ref.id))
		}
		logger.Debug("Matched object reference.", "reference", key, "range", ref.traversal.SourceRange().String())
		ids.Add(ref.id)
	}
	return ids, nil
}

// Identifiers returns the identifiers referenced by the selector chains in
// file that match the configured pattern.
func (e *Extractor) Identifiers(fset *token.FileSet, file *ast.File) model.ObjectSet {
	ids := model.NewObjectSet()
	for _, ref := range e.references(fset, file) {
		ids.Add(ref.id)
	}
	return ids
}

func (e *Extractor) references(fset *token.FileSet, file *ast.File) []reference {
	var refs []reference
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		traversal, ok := selectorTraversal(fset, sel)
		if !ok {
			return true
		}
		if id, ok := hclpath.MatchThreeSegment(traversal, e.symbols.Namespace, e.symbols.Marker); ok {
			refs = append(refs, reference{id: id, traversal: traversal})
		}
		// Inner selectors of a longer chain are visited too, so
		// objects.Foo.ASM.Initialize still yields Foo.
		return true
	})
	return refs
}

// selectorTraversal flattens a chain like a.b.c into a traversal. Chains
// that are not rooted at a plain identifier, e.g. f().b.c, are rejected.
func selectorTraversal(fset *token.FileSet, sel *ast.SelectorExpr) (hcl.Traversal, bool) {
	var attrs []string
	var expr ast.Expr = sel
	for {
		switch x := expr.(type) {
		case *ast.SelectorExpr:
			attrs = append(attrs, x.Sel.Name)
			expr = x.X
			continue
		case *ast.Ident:
			for i, j := 0, len(attrs)-1; i < j; i, j = i+1, j-1 {
				attrs[i], attrs[j] = attrs[j], attrs[i]
			}
			return hclpath.Build(rangeOf(fset, sel), x.Name, attrs...), true
		default:
			return nil, false
		}
	}
}

func rangeOf(fset *token.FileSet, n ast.Node) hcl.Range {
	start, end := fset.Position(n.Pos()), fset.Position(n.End())
	return hcl.Range{
		Filename: start.Filename,
		Start:    hcl.Pos{Line: start.Line, Column: start.Column, Byte: start.Offset},
		End:      hcl.Pos{Line: end.Line, Column: end.Column, Byte: end.Offset},
	}
}
