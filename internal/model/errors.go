// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the error kinds reported by the pipeline.
//
// Every fatal failure is a *BuildError whose Kind is one of the sentinel
// values below. The kind answers "what went wrong" for callers that need to
// branch (exit codes, tests), while Path and Msg carry the detail a human
// needs to fix the input.
package model

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("configuration failed")
	ErrMissingPair        = errors.New("missing shader pair")
	ErrCompilerInvocation = errors.New("shader compiler failed")
	ErrParse              = errors.New("artifact parse failed")
	ErrIO                 = errors.New("i/o failure")
)

// BuildError is a typed pipeline failure.
type BuildError struct {
	Kind error
	Path string
	Msg  string
	Err  error
}

func (e *BuildError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	switch {
	case e.Msg != "":
		msg += ": " + e.Msg
	case e.Path != "":
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MissingPair reports that the fragment counterpart at path is unusable.
func MissingPair(path, reason string) error {
	return &BuildError{Kind: ErrMissingPair, Path: path, Msg: fmt.Sprintf("%s %s", path, reason)}
}

// ParseFailure reports that the artifact at path could not be parsed.
func ParseFailure(path string, err error) error {
	return &BuildError{Kind: ErrParse, Path: path, Err: err}
}

// IOFailure reports a fatal file system error on path.
func IOFailure(path string, err error) error {
	return &BuildError{Kind: ErrIO, Path: path, Err: err}
}

// Configurationf reports a configuration or provisioning failure.
func Configurationf(format string, args ...any) error {
	return &BuildError{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}
