package codegen

import "text/template"

var artifactIndexTmpl = template.Must(template.New("artifact-index").Parse(`// {{.Header}}

package {{.Package}}

import (
	"context"

	{{.NodeAlias}} "{{.NodeImport}}"
	{{.ObjectsPackage}} "{{.ObjectsImport}}"
)

// {{.NodeType}} is the node type shared by every generated shader.
type {{.NodeType}} = {{.NodeAlias}}.{{.NodeType}}

// Modules lists the generated shader artifacts of this package.
var Modules = []string{ {{- if .Modules}}
{{range .Modules}}	{{printf "%q" .}},
{{end}}{{end -}} }

// InitializeShaders initializes every discovered shader object.
func InitializeShaders(ctx context.Context) error {
	return {{.ObjectsPackage}}.InitializeShaders(ctx)
}
`))

var objectIndexTmpl = template.Must(template.New("object-index").Parse(`// {{.Header}}

package {{.ObjectsPackage}}

import (
	"context"

	{{.NodeAlias}} "{{.NodeImport}}"
	"{{.RuntimeImport}}"
)

// {{.NodeType}} is the node type shared by every generated shader.
type {{.NodeType}} = {{.NodeAlias}}.{{.NodeType}}

// Objects lists the shader objects declared in this package.
var Objects = []string{ {{- if .Objects}}
{{range .Objects}}	{{printf "%q" .}},
{{end}}{{end -}} }

// InitializeShaders initializes every shader object concurrently and returns
// once all of them have finished. Failures are joined; one failing object
// does not stop the others.
func InitializeShaders(ctx context.Context) error {
	g := taskgroup.New(ctx)
{{- range .Objects}}
	g.Go({{.}}.{{$.Marker}}.{{$.InitMethod}})
{{- end}}
	return g.Wait()
}
`))
