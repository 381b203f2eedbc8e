package typechecker

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
)

type BindingKind int

const (
	BindLocal BindingKind = iota
	BindField
	BindStaticField
	// BindClass is a class name used as the target of a static access.
	BindClass
)

// Binding is what a variable name refers to.
type Binding struct {
	Kind  BindingKind
	Name  string
	Type  Type
	Field *FieldInfo
	Class *ClassInfo
}

type CallKind int

const (
	// CallStatic runs Method with no receiver.
	CallStatic CallKind = iota
	// CallVirtual dispatches Method.Key on the receiver's runtime class.
	CallVirtual
	// CallSuper runs Method exactly, with the current receiver.
	CallSuper
	// CallDynamic resolves Name against the receiver's runtime class; the
	// receiver's static type is erased.
	CallDynamic
)

type CallSite struct {
	Kind   CallKind
	Method *MethodInfo
	Name   string
	// ImplicitThis marks an unqualified instance call.
	ImplicitThis bool
}

type FieldSite struct {
	Field *FieldInfo
	// Dynamic accesses look the field up by Name on the runtime object.
	Dynamic bool
	Name    string
}

type CastKind int

const (
	// CastIdentity needs no runtime work.
	CastIdentity CastKind = iota
	// CastNumeric converts between int and float.
	CastNumeric
	// CastChecked verifies the runtime class of a reference.
	CastChecked
	// CastCheckedPrimitive verifies an erased value holds Target.
	CastCheckedPrimitive
	// CastUnchecked targets a parameterized or type-variable type.
	CastUnchecked
)

type CastPlan struct {
	Kind   CastKind
	Target Type
	Class  *ClassInfo
}

// Resolution is the side-table produced by analysis. It is keyed by node
// identity and never mutated after Check returns.
type Resolution struct {
	Types       map[ast.Expression]Type
	Conversions map[ast.Expression]Conversion
	Variables   map[*ast.Variable]*Binding
	Fields      map[*ast.FieldAccess]*FieldSite
	Calls       map[*ast.MethodCall]*CallSite
	News        map[*ast.NewExpression]*ConstructorInfo
	Casts       map[*ast.CastExpression]*CastPlan
	InstanceOf  map[*ast.InstanceOfExpression]*ClassInfo
	Locals      map[*ast.LocalVarDeclaration]Type
	// Constructors maps declared constructors to their resolved info.
	Constructors map[*ast.ConstructorDeclaration]*ConstructorInfo
	Methods      map[*ast.MethodDeclaration]*MethodInfo
}

func newResolution() *Resolution {
	return &Resolution{
		Types:        make(map[ast.Expression]Type),
		Conversions:  make(map[ast.Expression]Conversion),
		Variables:    make(map[*ast.Variable]*Binding),
		Fields:       make(map[*ast.FieldAccess]*FieldSite),
		Calls:        make(map[*ast.MethodCall]*CallSite),
		News:         make(map[*ast.NewExpression]*ConstructorInfo),
		Casts:        make(map[*ast.CastExpression]*CastPlan),
		InstanceOf:   make(map[*ast.InstanceOfExpression]*ClassInfo),
		Locals:       make(map[*ast.LocalVarDeclaration]Type),
		Constructors: make(map[*ast.ConstructorDeclaration]*ConstructorInfo),
		Methods:      make(map[*ast.MethodDeclaration]*MethodInfo),
	}
}

// TypeOf returns the static type recorded for expr.
func (r *Resolution) TypeOf(expr ast.Expression) Type {
	if t, ok := r.Types[expr]; ok {
		return t
	}
	return UnknownType{}
}

// Program is an analyzed compilation unit ready to run.
type Program struct {
	Unit       *ast.CompilationUnit
	Classes    *ClassTable
	Resolution *Resolution
	Registry   *bridge.Registry
	// Entry is the static void main() method, or nil when none exists.
	Entry *MethodInfo
}
