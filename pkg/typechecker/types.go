package typechecker

import (
	"strings"
)

// Type is the static type of an expression or declaration.
type Type interface {
	String() string
	isType()
}

type PrimitiveKind string

const (
	Int     PrimitiveKind = "int"
	Float   PrimitiveKind = "float"
	Boolean PrimitiveKind = "boolean"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (t PrimitiveType) String() string { return string(t.Kind) }
func (PrimitiveType) isType()          {}

var (
	IntType     Type = PrimitiveType{Kind: Int}
	FloatType   Type = PrimitiveType{Kind: Float}
	BooleanType Type = PrimitiveType{Kind: Boolean}
)

// ClassType is a class with its (erased, informational) type arguments.
type ClassType struct {
	Class *ClassInfo
	Args  []Type
}

func (t ClassType) String() string {
	if len(t.Args) == 0 {
		return t.Class.Name
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return t.Class.Name + "<" + strings.Join(args, ", ") + ">"
}
func (ClassType) isType() {}

// TypeParamType is a type variable. Generics are erased, so values of this
// type are checked only at runtime.
type TypeParamType struct {
	Name string
}

func (t TypeParamType) String() string { return t.Name }
func (TypeParamType) isType()          {}

// UnknownType is the result of an operation on erased operands.
type UnknownType struct{}

func (UnknownType) String() string { return "?" }
func (UnknownType) isType()        {}

type NullType struct{}

func (NullType) String() string { return "null" }
func (NullType) isType()        {}

type VoidType struct{}

func (VoidType) String() string { return "void" }
func (VoidType) isType()        {}

// IsDynamic reports whether values of t are only known at runtime.
func IsDynamic(t Type) bool {
	switch t.(type) {
	case TypeParamType, UnknownType:
		return true
	}
	return false
}

func isPrimitive(t Type, kind PrimitiveKind) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == kind
}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	return isPrimitive(t, Int) || isPrimitive(t, Float)
}

func isReference(t Type) bool {
	switch t.(type) {
	case ClassType, NullType, TypeParamType, UnknownType:
		return true
	}
	return false
}

// IsString reports whether t is java.lang.String.
func IsString(t Type) bool {
	return isClass(t, "String")
}

func isClass(t Type, name string) bool {
	c, ok := t.(ClassType)
	return ok && c.Class.Name == name
}

// Erase returns the runtime name of t used in signature keys.
func Erase(t Type) string {
	switch tt := t.(type) {
	case PrimitiveType:
		return string(tt.Kind)
	case ClassType:
		return tt.Class.Name
	case VoidType:
		return "void"
	default:
		return "Object"
	}
}

func sameType(a, b Type) bool {
	switch x := a.(type) {
	case PrimitiveType:
		y, ok := b.(PrimitiveType)
		return ok && x.Kind == y.Kind
	case ClassType:
		y, ok := b.(ClassType)
		return ok && x.Class == y.Class
	case TypeParamType:
		y, ok := b.(TypeParamType)
		return ok && x.Name == y.Name
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case NullType:
		_, ok := b.(NullType)
		return ok
	}
	return false
}

// ConversionKind tells the interpreter what to do with a value crossing an
// assignment boundary.
type ConversionKind int

const (
	ConvertNone ConversionKind = iota
	// ConvertWiden turns an int into a float.
	ConvertWiden
	// ConvertCheck verifies an erased value against Target at runtime.
	ConvertCheck
)

type Conversion struct {
	Kind   ConversionKind
	Target Type
}

// assignConversion decides whether a value of type from may be stored where
// to is expected.
func assignConversion(from, to Type) (Conversion, bool) {
	none := Conversion{Kind: ConvertNone}
	if _, ok := from.(VoidType); ok {
		return none, false
	}
	if IsDynamic(to) {
		return none, true
	}
	if IsDynamic(from) {
		if isClass(to, "Object") {
			return none, true
		}
		return Conversion{Kind: ConvertCheck, Target: to}, true
	}
	switch t := to.(type) {
	case PrimitiveType:
		f, ok := from.(PrimitiveType)
		if !ok {
			return none, false
		}
		if f.Kind == t.Kind {
			return none, true
		}
		if f.Kind == Int && t.Kind == Float {
			return Conversion{Kind: ConvertWiden, Target: to}, true
		}
		return none, false
	case ClassType:
		switch f := from.(type) {
		case NullType:
			return none, true
		case PrimitiveType:
			return none, t.Class.IsRoot()
		case ClassType:
			return none, f.Class.IsSubclassOf(t.Class)
		}
	}
	return none, false
}

// Assignable reports whether from can be stored where to is expected.
func Assignable(from, to Type) bool {
	_, ok := assignConversion(from, to)
	return ok
}

// numericResult applies binary numeric promotion.
func numericResult(a, b Type) Type {
	if IsDynamic(a) || IsDynamic(b) {
		return UnknownType{}
	}
	if isPrimitive(a, Float) || isPrimitive(b, Float) {
		return FloatType
	}
	return IntType
}
