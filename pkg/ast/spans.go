package ast

import "fmt"

type spanSetter interface {
	setSpan(Span)
}

// SetSpan records the source span of a node built outside this package.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(spanSetter); ok {
		setter.setSpan(span)
	}
}

// CopySpan copies the span of src onto dst.
func CopySpan(dst, src Node) {
	if dst == nil || src == nil {
		return
	}
	SetSpan(dst, src.Span())
}

// Pos is shorthand for the start position of a node's span.
func Pos(node Node) Position {
	if node == nil {
		return Position{}
	}
	return node.Span().Start
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
