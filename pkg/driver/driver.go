// Package driver wires the pipeline together: source text to tokens, AST,
// analyzed program and run. It also classifies failures by phase for the CLI.
package driver

import (
	"errors"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/interpreter"
	"github.com/Lattyware/montyweightjava/pkg/parser"
	"github.com/Lattyware/montyweightjava/pkg/stdlib"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

func tracer() tracing.Trace {
	return tracing.Select("mj.driver")
}

// Phase is the pipeline stage that produced an error.
type Phase int

const (
	// PhaseHost covers usage, IO and configuration failures.
	PhaseHost Phase = iota
	PhaseLexical
	PhaseSyntax
	PhaseSemantic
	PhaseRuntime
)

func (p Phase) String() string {
	switch p {
	case PhaseLexical:
		return "lexical"
	case PhaseSyntax:
		return "syntax"
	case PhaseSemantic:
		return "semantic"
	case PhaseRuntime:
		return "runtime"
	default:
		return "host"
	}
}

// PhaseOf classifies err by the typed error it wraps.
func PhaseOf(err error) Phase {
	var lexErr *parser.LexicalError
	var synErr *parser.SyntaxError
	var semErr *typechecker.SemanticError
	var rtErr *interpreter.RuntimeError
	switch {
	case errors.As(err, &lexErr):
		return PhaseLexical
	case errors.As(err, &synErr):
		return PhaseSyntax
	case errors.As(err, &semErr):
		return PhaseSemantic
	case errors.As(err, &rtErr):
		return PhaseRuntime
	default:
		return PhaseHost
	}
}

// ExitCode maps an error to the process exit status: 0 for success, 1 for
// host failures and 2 to 5 for the lexical, syntax, semantic and runtime
// phases.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch PhaseOf(err) {
	case PhaseLexical:
		return 2
	case PhaseSyntax:
		return 3
	case PhaseSemantic:
		return 4
	case PhaseRuntime:
		return 5
	default:
		return 1
	}
}

// Parse tokenizes and parses src.
func Parse(src string) (*ast.CompilationUnit, error) {
	return parser.ParseCompilationUnit(src)
}

// Compile parses and analyzes src against reg. A nil registry means the
// bundled standard library.
func Compile(src string, reg *bridge.Registry) (*typechecker.Program, error) {
	if reg == nil {
		var err error
		if reg, err = stdlib.NewRegistry(); err != nil {
			return nil, fmt.Errorf("standard library: %w", err)
		}
	}
	unit, err := Parse(src)
	if err != nil {
		return nil, err
	}
	prog, err := typechecker.Check(unit, reg)
	if err != nil {
		return nil, err
	}
	tracer().Infof("analyzed %d classes", len(prog.Classes.Ordered))
	return prog, nil
}

// CompileFile reads and compiles the source at path.
func CompileFile(path string) (*typechecker.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(string(src), nil)
}
