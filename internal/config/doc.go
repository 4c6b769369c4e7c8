// Package config defines the build configuration of the shader pipeline and
// loads it from HCL files.
//
// A configuration is optional: Defaults describes the conventional layout
// (sources flat in one directory, artifacts in "generated", per-object files
// in "generated/objects") and every attribute of a loaded file overrides one
// default. The compiler binary location is resolved once at startup by
// ResolveCompilerBin and then threaded into the components that need it.
package config
