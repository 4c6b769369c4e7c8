// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the domain types shared by every stage of the shader
// build pipeline, together with the typed errors those stages report.
//
// # Core Concepts
//
//   - SourcePair: a vertex and a fragment shader source that share a file stem
//     in the same directory. One pair compiles into exactly one artifact.
//
//   - Artifact: the generated Go source file produced by the external compiler
//     for a pair, located at <generated>/<stem>.<ext>.
//
//   - ObjectSet: the identifiers discovered in artifacts by static analysis.
//     Only membership matters; Sorted gives the order used for code generation
//     so that output is reproducible.
//
//   - BuildError: a failure of one of the known kinds (configuration, missing
//     pair, compiler invocation, parse, I/O). Callers branch on the kind with
//     errors.Is against the sentinel values declared in errors.go.
package model
