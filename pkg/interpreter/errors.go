package interpreter

import (
	"fmt"
	"strings"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// RuntimeErrorKind classifies faults that abort a run.
type RuntimeErrorKind string

const (
	NullReference          RuntimeErrorKind = "NullReference"
	ClassCastError         RuntimeErrorKind = "ClassCastError"
	DivisionByZero         RuntimeErrorKind = "DivisionByZero"
	NoSuchMethodOnReceiver RuntimeErrorKind = "NoSuchMethodOnReceiver"
	StackOverflow          RuntimeErrorKind = "StackOverflow"
	NativeBridgeFailure    RuntimeErrorKind = "NativeBridgeFailure"
	EntryPointMissing      RuntimeErrorKind = "EntryPointMissing"
	// InvalidOperation is an operator applied to erased values of the wrong
	// runtime type.
	InvalidOperation RuntimeErrorKind = "InvalidOperation"
	// Interrupted is a run stopped by a step limit or a debugger.
	Interrupted RuntimeErrorKind = "Interrupted"
)

// RuntimeError is a fault in the interpreted program.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Pos     ast.Position
	Message string
	// Stack lists the active methods, innermost first.
	Stack []string
	Err   error
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	if !e.Pos.IsZero() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(string(e.Kind))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// fault builds a RuntimeError located at node with the current call stack.
func (i *Interpreter) fault(kind RuntimeErrorKind, node ast.Node, format string, args ...any) *RuntimeError {
	err := &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Stack: i.stackNames()}
	if node != nil {
		err.Pos = ast.Pos(node)
	}
	tracer().Debugf("fault: %v", err)
	return err
}

func (i *Interpreter) stackNames() []string {
	names := make([]string, 0, len(i.frames))
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		names = append(names, i.frames[idx].Method)
	}
	return names
}
