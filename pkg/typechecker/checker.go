// Package typechecker is the semantic analyzer. Pass A builds the class table
// (inheritance, member signatures, vtables); pass B checks every body and
// records how each name, call and conversion resolves.
package typechecker

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
)

func tracer() tracing.Trace {
	return tracing.Select("mj.semantics")
}

// Check analyzes unit against the native classes of reg, which may be nil.
// It stops at the first problem, returned as a *SemanticError.
func Check(unit *ast.CompilationUnit, reg *bridge.Registry) (*Program, error) {
	classes, err := buildClassTable(unit, reg)
	if err != nil {
		return nil, err
	}
	if err := checkImports(unit, classes, reg); err != nil {
		return nil, err
	}
	entry, err := findEntry(unit, classes)
	if err != nil {
		return nil, err
	}
	c := &Checker{classes: classes, res: newResolution()}
	for _, decl := range unit.Classes {
		if err := c.checkClass(classes.MustLookup(decl.Name)); err != nil {
			return nil, err
		}
	}
	tracer().Infof("analysis finished: %d classes, %d call sites", len(unit.Classes), len(c.res.Calls))
	return &Program{
		Unit:       unit,
		Classes:    classes,
		Resolution: c.res,
		Registry:   reg,
		Entry:      entry,
	}, nil
}

func checkImports(unit *ast.CompilationUnit, classes *ClassTable, reg *bridge.Registry) error {
	for _, imp := range unit.Imports {
		if imp.Wildcard {
			pkg := strings.Join(imp.Path, ".")
			if reg == nil || !reg.HasPackage(pkg) {
				return semanticErrorf(UnknownClass, imp, "package %s does not exist", pkg)
			}
			continue
		}
		name := imp.SimpleName()
		class, ok := classes.Lookup(name)
		if !ok {
			return semanticErrorf(UnknownClass, imp, "cannot find class %s", strings.Join(imp.Path, "."))
		}
		pkg := strings.Join(imp.Path[:len(imp.Path)-1], ".")
		if class.Native && class.Package != "" && pkg != class.Package {
			return semanticErrorf(UnknownClass, imp, "cannot find class %s", strings.Join(imp.Path, "."))
		}
	}
	return nil
}

// findEntry locates the single user-declared static void main().
func findEntry(unit *ast.CompilationUnit, classes *ClassTable) (*MethodInfo, error) {
	var entry *MethodInfo
	for _, decl := range unit.Classes {
		for _, m := range classes.MustLookup(decl.Name).Methods["main"] {
			if !isEntryPoint(m) {
				continue
			}
			if entry != nil {
				return nil, semanticErrorf(DuplicateDeclaration, m.Decl, "static void main() is already defined in %s", entry.Owner.Name)
			}
			entry = m
		}
	}
	return entry, nil
}

func isEntryPoint(m *MethodInfo) bool {
	_, void := m.Return.(VoidType)
	return m.Static && void && len(m.Params) == 0
}

// Checker carries state for pass B.
type Checker struct {
	classes *ClassTable
	res     *Resolution
	ctx     *methodContext
}

type local struct {
	name string
	typ  Type
}

// methodContext describes the body being checked.
type methodContext struct {
	class      *ClassInfo
	static     bool
	ctor       bool
	returnType Type
	typeParams map[string]bool
	scopes     []map[string]*local
}

func (c *Checker) enter(ctx *methodContext) {
	c.ctx = ctx
	c.pushScope()
}

func (c *Checker) pushScope() {
	c.ctx.scopes = append(c.ctx.scopes, make(map[string]*local))
}

func (c *Checker) popScope() {
	c.ctx.scopes = c.ctx.scopes[:len(c.ctx.scopes)-1]
}

func (c *Checker) lookupLocal(name string) *local {
	for i := len(c.ctx.scopes) - 1; i >= 0; i-- {
		if l, ok := c.ctx.scopes[i][name]; ok {
			return l
		}
	}
	return nil
}

// declare adds a local. Locals may not shadow parameters or locals of an
// enclosing scope.
func (c *Checker) declare(name string, typ Type, node ast.Node) error {
	if c.lookupLocal(name) != nil {
		return semanticErrorf(DuplicateDeclaration, node, "variable %s is already defined", name)
	}
	c.ctx.scopes[len(c.ctx.scopes)-1][name] = &local{name: name, typ: typ}
	return nil
}

func (c *Checker) resolveType(ref *ast.TypeRef) (Type, error) {
	return c.classes.resolveType(ref, c.ctx.typeParams)
}

func (c *Checker) checkClass(class *ClassInfo) error {
	tracer().Debugf("checking class %s", class.Name)
	for _, ctor := range class.Constructors {
		if err := c.checkConstructor(class, ctor); err != nil {
			return err
		}
	}
	for _, md := range class.Decl.Methods {
		var method *MethodInfo
		for _, m := range class.Methods[md.Name] {
			if m.Decl == md {
				method = m
			}
		}
		c.res.Methods[md] = method
		if err := c.checkMethod(class, method); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkConstructor(class *ClassInfo, ctor *ConstructorInfo) error {
	c.enter(&methodContext{
		class:      class,
		ctor:       true,
		returnType: VoidType{},
		typeParams: typeParamSet(class.TypeParams),
	})
	defer func() { c.ctx = nil }()

	if ctor.Implicit {
		super, err := c.classes.ResolveConstructor(class.Super, nil)
		if err != nil {
			return semanticErrorf(UnknownMember, class.Decl, "implicit super() in %s: superclass %s has no no-argument constructor", class.Name, class.Super.Name)
		}
		ctor.SuperCtor = super
		return nil
	}
	c.res.Constructors[ctor.Decl] = ctor
	for i, name := range ctor.ParamNames {
		if err := c.declare(name, ctor.Params[i], ctor.Decl.Params[i]); err != nil {
			return err
		}
	}
	if err := c.checkSuperCall(class, ctor); err != nil {
		return err
	}
	return c.block(ctor.Decl.Body)
}

func (c *Checker) checkSuperCall(class *ClassInfo, ctor *ConstructorInfo) error {
	call := ctor.Decl.SuperCall
	if call == nil {
		super, err := c.classes.ResolveConstructor(class.Super, nil)
		if err != nil {
			return semanticErrorf(UnknownMember, ctor.Decl, "superclass %s has no no-argument constructor", class.Super.Name)
		}
		ctor.SuperCtor = super
		return nil
	}
	if call.Implicit {
		super, err := c.classes.ResolveConstructor(class.Super, nil)
		if err != nil {
			return semanticErrorf(UnknownMember, call, "implicit super() in %s: superclass %s has no no-argument constructor", class.Name, class.Super.Name)
		}
		ctor.SuperCtor = super
		return nil
	}
	// Arguments to super(...) cannot see the object under construction.
	c.ctx.static = true
	argTypes, err := c.args(call.Args)
	c.ctx.static = false
	if err != nil {
		return err
	}
	super, err := c.classes.ResolveConstructor(class.Super, argTypes)
	if err != nil {
		return at(err, call)
	}
	if err := c.coerceArgs(call.Args, argTypes, super.Params); err != nil {
		return err
	}
	ctor.SuperCtor = super
	return nil
}

func (c *Checker) checkMethod(class *ClassInfo, m *MethodInfo) error {
	if m.Decl.Body == nil {
		return nil
	}
	c.enter(&methodContext{
		class:      class,
		static:     m.Static,
		returnType: m.Return,
		typeParams: typeParamSet(class.TypeParams, m.TypeParams),
	})
	defer func() { c.ctx = nil }()

	for i, name := range m.ParamNames {
		if err := c.declare(name, m.Params[i], m.Decl.Params[i]); err != nil {
			return err
		}
	}
	if err := c.block(m.Decl.Body); err != nil {
		return err
	}
	if _, void := m.Return.(VoidType); !void && !completesAbruptly(m.Decl.Body) {
		return semanticErrorf(TypeMismatch, m.Decl, "method %s must return %s on every path", m.Name, m.Return)
	}
	return nil
}

// coerce checks that a value of type from, produced by expr, can be stored
// where to is expected, and records any runtime conversion.
func (c *Checker) coerce(expr ast.Expression, from, to Type) error {
	conv, ok := assignConversion(from, to)
	if !ok {
		return semanticErrorf(TypeMismatch, expr, "incompatible types: %s cannot be converted to %s", from, to)
	}
	if conv.Kind != ConvertNone {
		c.res.Conversions[expr] = conv
	}
	return nil
}

func (c *Checker) coerceArgs(args []ast.Expression, argTypes, params []Type) error {
	for i, arg := range args {
		if err := c.coerce(arg, argTypes[i], params[i]); err != nil {
			return err
		}
	}
	return nil
}
