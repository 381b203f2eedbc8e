package typechecker

import (
	"fmt"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// SemanticErrorKind classifies analysis failures.
type SemanticErrorKind string

const (
	UnknownClass         SemanticErrorKind = "UnknownClass"
	UnknownMember        SemanticErrorKind = "UnknownMember"
	AmbiguousOverload    SemanticErrorKind = "AmbiguousOverload"
	InheritanceCycle     SemanticErrorKind = "InheritanceCycle"
	InvalidStaticContext SemanticErrorKind = "InvalidStaticContext"
	DuplicateDeclaration SemanticErrorKind = "DuplicateDeclaration"
	TypeMismatch         SemanticErrorKind = "TypeMismatch"
)

// SemanticError is the first problem found during analysis.
type SemanticError struct {
	Kind    SemanticErrorKind
	Pos     ast.Position
	Message string
}

func (e *SemanticError) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func semanticErrorf(kind SemanticErrorKind, node ast.Node, format string, args ...any) *SemanticError {
	err := &SemanticError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Pos = ast.Pos(node)
	}
	tracer().Debugf("semantic error: %v", err)
	return err
}

// at attaches a position to an error produced without one.
func at(err error, node ast.Node) error {
	if semErr, ok := err.(*SemanticError); ok && semErr.Pos.IsZero() && node != nil {
		copied := *semErr
		copied.Pos = ast.Pos(node)
		return &copied
	}
	return err
}
