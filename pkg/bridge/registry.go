package bridge

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/parser"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

func tracer() tracing.Trace {
	return tracing.Select("mj.interpreter")
}

// ConstructorName is the method name used in signature keys of constructors.
const ConstructorName = "<init>"

// Host is the interpreter surface visible to native code.
type Host interface {
	// NewObject instantiates a class (interpreted or native) by running its
	// constructor chain with the given arguments.
	NewObject(class string, args ...runtime.Value) (runtime.Value, error)
}

// CallContext is handed to every native callable.
type CallContext struct {
	Stdout io.Writer
	Host   Host
}

// NativeFunc implements a constructor or method. Receiver is nil for static
// members; constructors receive the freshly allocated *runtime.ObjectValue.
type NativeFunc func(ctx *CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error)

// FieldInit computes the initial value of a native static field.
type FieldInit func(ctx *CallContext) (runtime.Value, error)

// Registry maps (class name, member signature) to host callables.
type Registry struct {
	classes map[string]*ClassBuilder
	order   []*ClassBuilder
	errs    []error
}

// ClassBuilder collects the members of one native class.
type ClassBuilder struct {
	registry   *Registry
	Package    string
	Decl       *ast.ClassDeclaration
	natives    map[string]NativeFunc
	fieldInits map[string]FieldInit
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*ClassBuilder)}
}

// Class declares a native class from a header such as "class List<E>".
// Problems are recorded and reported by Err.
func (r *Registry) Class(pkg, header string) *ClassBuilder {
	decl, err := parser.ParseClassHeader(header)
	if err != nil {
		r.fail(fmt.Errorf("native class %q: %w", header, err))
		decl = ast.NewClassDeclaration("?", nil, nil)
	}
	decl.Native = true
	b := &ClassBuilder{
		registry:   r,
		Package:    pkg,
		Decl:       decl,
		natives:    make(map[string]NativeFunc),
		fieldInits: make(map[string]FieldInit),
	}
	if _, exists := r.classes[decl.Name]; exists {
		r.fail(fmt.Errorf("native class %s registered twice", decl.Name))
		return b
	}
	r.classes[decl.Name] = b
	r.order = append(r.order, b)
	tracer().Debugf("bridge: class %s.%s", pkg, decl.Name)
	return b
}

// Constructor registers a constructor, e.g. "List()".
func (b *ClassBuilder) Constructor(signature string, fn NativeFunc) *ClassBuilder {
	return b.member(signature, fn, nil)
}

// Method registers a method, e.g. "static int parseInt(String text)".
func (b *ClassBuilder) Method(signature string, fn NativeFunc) *ClassBuilder {
	return b.member(signature, fn, nil)
}

// StaticField registers a static field, e.g. "static PrintStream out".
func (b *ClassBuilder) StaticField(signature string, init FieldInit) *ClassBuilder {
	return b.member(signature, nil, init)
}

func (b *ClassBuilder) member(signature string, fn NativeFunc, init FieldInit) *ClassBuilder {
	if err := b.add(signature, fn, init); err != nil {
		b.registry.fail(err)
	}
	return b
}

// Register attaches one member to an already declared class.
func (r *Registry) Register(class, signature string, fn NativeFunc) error {
	b, ok := r.classes[class]
	if !ok {
		return fmt.Errorf("native class %s is not registered", class)
	}
	return b.add(signature, fn, nil)
}

func (b *ClassBuilder) add(signature string, fn NativeFunc, init FieldInit) error {
	node, err := parser.ParseMemberSignature(b.Decl.Name, signature)
	if err != nil {
		return fmt.Errorf("native member %s.%q: %w", b.Decl.Name, signature, err)
	}
	switch member := node.(type) {
	case *ast.ConstructorDeclaration:
		if fn == nil {
			return fmt.Errorf("native constructor %s.%s has no implementation", b.Decl.Name, signature)
		}
		key := SignatureKey(ConstructorName, b.erasedParams(member.Params, nil))
		b.natives[key] = fn
		b.Decl.Constructors = append(b.Decl.Constructors, member)
	case *ast.MethodDeclaration:
		if fn == nil {
			return fmt.Errorf("native method %s.%s has no implementation", b.Decl.Name, signature)
		}
		key := SignatureKey(member.Name, b.erasedParams(member.Params, member.TypeParams))
		b.natives[key] = fn
		b.Decl.Methods = append(b.Decl.Methods, member)
	case *ast.FieldDeclaration:
		if !member.Modifiers.Static {
			return fmt.Errorf("native field %s.%s must be static", b.Decl.Name, member.Name)
		}
		if init == nil {
			return fmt.Errorf("native field %s.%s has no initializer", b.Decl.Name, member.Name)
		}
		b.fieldInits[member.Name] = init
		b.Decl.Fields = append(b.Decl.Fields, member)
	}
	return nil
}

func (b *ClassBuilder) erasedParams(params []*ast.Parameter, methodTypeParams []*ast.TypeParameter) []string {
	generic := make(map[string]bool)
	for _, tp := range b.Decl.TypeParams {
		generic[tp.Name] = true
	}
	for _, tp := range methodTypeParams {
		generic[tp.Name] = true
	}
	out := make([]string, len(params))
	for i, param := range params {
		out[i] = EraseTypeName(param.Type.Name, generic)
	}
	return out
}

func (r *Registry) fail(err error) {
	tracer().Errorf("bridge: %v", err)
	r.errs = append(r.errs, err)
}

// Err reports every registration problem seen so far.
func (r *Registry) Err() error {
	return errors.Join(r.errs...)
}

// Classes returns the registered classes in registration order.
func (r *Registry) Classes() []*ClassBuilder {
	return append([]*ClassBuilder(nil), r.order...)
}

// ClassNamed looks up a registered class.
func (r *Registry) ClassNamed(name string) (*ClassBuilder, bool) {
	b, ok := r.classes[name]
	return b, ok
}

// HasPackage reports whether any registered class lives in pkg.
func (r *Registry) HasPackage(pkg string) bool {
	for _, b := range r.order {
		if b.Package == pkg {
			return true
		}
	}
	return false
}

// Lookup finds the callable registered for a class member by signature key.
func (r *Registry) Lookup(class, key string) (NativeFunc, bool) {
	b, ok := r.classes[class]
	if !ok {
		return nil, false
	}
	fn, ok := b.natives[key]
	return fn, ok
}

// StaticInit finds the initializer of a native static field.
func (r *Registry) StaticInit(class, field string) (FieldInit, bool) {
	b, ok := r.classes[class]
	if !ok {
		return nil, false
	}
	init, ok := b.fieldInits[field]
	return init, ok
}

// SignatureKey builds the erased signature used for native lookup and
// virtual dispatch, e.g. "set(int,Object)".
func SignatureKey(name string, erasedParams []string) string {
	return name + "(" + strings.Join(erasedParams, ",") + ")"
}

// EraseTypeName maps a declared type name to its erased runtime name.
func EraseTypeName(name string, typeParams map[string]bool) string {
	if typeParams[name] {
		return "Object"
	}
	switch name {
	case "byte", "short", "long":
		return "int"
	case "double":
		return "float"
	}
	return name
}

// Call runs fn, converting a host panic into an error.
func Call(fn NativeFunc, ctx *CallContext, receiver runtime.Value, args []runtime.Value) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("native panic: %v", r)
		}
	}()
	result, err = fn(ctx, receiver, args)
	if err == nil && result == nil {
		result = runtime.VoidValue{}
	}
	return result, err
}
