package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/interpreter"
	"github.com/Lattyware/montyweightjava/pkg/parser"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

// Diagnostic is an error broken into the parts the CLI prints.
type Diagnostic struct {
	Path    string
	Pos     ast.Position
	Phase   Phase
	Kind    string
	Message string
	// Stack lists active methods, innermost first, for runtime faults.
	Stack []string
}

// Describe extracts a Diagnostic from err.
func Describe(path string, err error) Diagnostic {
	diag := Diagnostic{Path: path, Phase: PhaseOf(err), Message: err.Error()}
	var lexErr *parser.LexicalError
	var synErr *parser.SyntaxError
	var semErr *typechecker.SemanticError
	var rtErr *interpreter.RuntimeError
	switch {
	case errors.As(err, &lexErr):
		diag.Pos = lexErr.Pos
		diag.Message = lexErr.Message
	case errors.As(err, &synErr):
		diag.Pos = synErr.Pos
		diag.Message = fmt.Sprintf("expected %s, found %s", synErr.Expected, synErr.Found)
	case errors.As(err, &semErr):
		diag.Pos = semErr.Pos
		diag.Kind = string(semErr.Kind)
		diag.Message = semErr.Message
	case errors.As(err, &rtErr):
		diag.Pos = rtErr.Pos
		diag.Kind = string(rtErr.Kind)
		diag.Message = rtErr.Message
		if rtErr.Err != nil {
			diag.Message += ": " + rtErr.Err.Error()
		}
		diag.Stack = rtErr.Stack
	}
	return diag
}

// String renders path:line:col: <phase> error[: kind]: message, followed by
// one "\tat" line per active method for runtime faults.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Path != "" {
		sb.WriteString(d.Path)
		sb.WriteString(":")
	}
	if !d.Pos.IsZero() {
		sb.WriteString(d.Pos.String())
		sb.WriteString(":")
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	if d.Phase == PhaseHost {
		sb.WriteString("error")
	} else {
		sb.WriteString(d.Phase.String())
		sb.WriteString(" error")
	}
	if d.Kind != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Kind)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	for _, frame := range d.Stack {
		sb.WriteString("\n\tat ")
		sb.WriteString(frame)
	}
	return sb.String()
}

// FormatError is Describe(path, err).String().
func FormatError(path string, err error) string {
	return Describe(path, err).String()
}
