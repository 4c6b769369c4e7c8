package config

import "errors"

// DefaultCompilerEnv is the environment variable consulted for the compiler.
const DefaultCompilerEnv = "VC4_COMPILER_BIN"

// DefaultCompilerBin is the compiler path captured when this binary was
// built, e.g. with -ldflags "-X .../internal/config.DefaultCompilerBin=...".
var DefaultCompilerBin = ""

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ResolveCompilerBin picks the compiler binary. The first non-empty source
// wins: the explicit override, Compiler.Path, the Compiler.Env variable, the
// binary produced by provisioning, and finally DefaultCompilerBin.
func (c *Config) ResolveCompilerBin(override string, lookupEnv LookupEnvFunc, provisioned string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.Compiler.Path != "" {
		return c.Compiler.Path, nil
	}
	if c.Compiler.Env != "" && lookupEnv != nil {
		if v, ok := lookupEnv(c.Compiler.Env); ok && v != "" {
			return v, nil
		}
	}
	if provisioned != "" {
		return provisioned, nil
	}
	if DefaultCompilerBin != "" {
		return DefaultCompilerBin, nil
	}
	return "", errors.New("no shader compiler configured: pass -compiler, set compiler.path, set $" + c.Compiler.Env + ", or enable provisioning")
}
