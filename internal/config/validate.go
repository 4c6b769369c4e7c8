package config

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

type field struct {
	name  string
	value string
}

// Validate checks the fields every pipeline stage relies on.
func (c *Config) Validate() error {
	var errs []error

	for _, f := range []field{
		{"layout.vertex_ext", c.Layout.VertexExt},
		{"layout.fragment_ext", c.Layout.FragmentExt},
		{"layout.generated_ext", c.Layout.GeneratedExt},
		{"layout.generated_dir", c.Layout.GeneratedDir},
		{"layout.objects_dir", c.Layout.ObjectsDir},
		{"layout.reserved_stem", c.Layout.ReservedStem},
		{"layout.fingerprint_file", c.Layout.FingerprintFile},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
		if strings.HasSuffix(f.name, "_ext") && strings.HasPrefix(f.value, ".") {
			errs = append(errs, fmt.Errorf("%s must not start with a dot: %q", f.name, f.value))
		}
	}
	if c.Layout.VertexExt != "" && c.Layout.VertexExt == c.Layout.FragmentExt {
		errs = append(errs, errors.New("layout.vertex_ext and layout.fragment_ext must differ"))
	}

	for _, f := range []field{
		{"symbols.namespace", c.Symbols.Namespace},
		{"symbols.marker", c.Symbols.Marker},
		{"codegen.node_type", c.Codegen.NodeType},
		{"codegen.init_method", c.Codegen.InitMethod},
	} {
		if !token.IsIdentifier(f.value) {
			errs = append(errs, fmt.Errorf("%s must be a Go identifier: %q", f.name, f.value))
		}
	}

	if c.Notify != nil && c.Notify.URL == "" {
		errs = append(errs, errors.New("notify.url must not be empty"))
	}
	return errors.Join(errs...)
}
