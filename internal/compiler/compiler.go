// Package compiler runs external build tools as child processes and turns
// their failures into typed errors. Invoker drives the shader compiler;
// Run is the shared primitive that also serves the meson/ninja provisioner.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/model"
)

// Result is the captured outcome of a process that was started.
type Result struct {
	Command  string
	Dir      string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// StderrText returns stderr as text, or "" when it is not valid UTF-8.
func (r *Result) StderrText() string {
	if !utf8.Valid(r.Stderr) {
		return ""
	}
	return string(r.Stderr)
}

// Run executes name with args in dir and waits for it. It returns an error
// only when the process could not be started; a non-zero exit is reported
// through Result.ExitCode. There is no timeout beyond ctx.
func Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Result{
		Command: strings.Join(append([]string{name}, args...), " "),
		Dir:     dir,
	}

	err := cmd.Run()
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		res.ExitCode = -1
		return res, err
	}
}

// Invoker runs the external shader compiler.
type Invoker struct {
	bin string
}

// New returns an Invoker for the compiler binary at bin.
func New(bin string) *Invoker {
	return &Invoker{bin: bin}
}

// Compile runs "<bin> <vertex> <fragment> <output>" synchronously. Spawn
// failures and non-zero exits are returned as model.ErrCompilerInvocation
// errors carrying the command line and the diagnostic text.
func (i *Invoker) Compile(ctx context.Context, vertex, fragment, output string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking shader compiler.", "bin", i.bin, "vertex", vertex, "fragment", fragment, "output", output)

	res, err := Run(ctx, "", i.bin, vertex, fragment, output)
	if err != nil {
		return res, &model.BuildError{
			Kind: model.ErrCompilerInvocation,
			Path: output,
			Msg:  fmt.Sprintf("%s\n%s", res.Command, err.Error()),
		}
	}
	if !res.Success() {
		return res, &model.BuildError{
			Kind: model.ErrCompilerInvocation,
			Path: output,
			Msg:  fmt.Sprintf("%s\n%s", res.Command, res.StderrText()),
		}
	}
	return res, nil
}
