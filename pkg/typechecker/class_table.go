package typechecker

import (
	"sort"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
)

// RootClassName names the implicit superclass of every class without an
// extends clause.
const RootClassName = "Object"

type FieldInfo struct {
	Name   string
	Owner  *ClassInfo
	Type   Type
	Static bool
	Decl   *ast.FieldDeclaration
}

type MethodInfo struct {
	Name       string
	Owner      *ClassInfo
	Static     bool
	TypeParams []string
	Params     []Type
	ParamNames []string
	Return     Type
	// Key is the erased signature shared by a method and its overrides.
	Key    string
	Decl   *ast.MethodDeclaration
	Native bridge.NativeFunc
}

func (m *MethodInfo) String() string {
	return m.Owner.Name + "." + m.Key
}

type ConstructorInfo struct {
	Owner      *ClassInfo
	Params     []Type
	ParamNames []string
	Key        string
	Decl       *ast.ConstructorDeclaration
	Native     bridge.NativeFunc
	// Implicit marks the default constructor of a class that declares none.
	Implicit bool
	// SuperCtor is the superclass constructor run before the body. It is nil
	// only for the root class.
	SuperCtor *ConstructorInfo
}

func (c *ConstructorInfo) String() string {
	return c.Owner.Name + "." + c.Key
}

// ClassInfo is the resolved view of one class.
type ClassInfo struct {
	Name       string
	Package    string
	Decl       *ast.ClassDeclaration
	Native     bool
	TypeParams []string
	Super      *ClassInfo
	SuperType  *ClassType
	Depth      int

	Fields       map[string]*FieldInfo
	FieldOrder   []*FieldInfo
	Constructors []*ConstructorInfo
	// Methods holds the class's own methods by name, in declaration order.
	Methods map[string][]*MethodInfo
	// VTable maps erased signature keys to the most derived instance method.
	VTable map[string]*MethodInfo

	order int
}

func newClassInfo(name string, decl *ast.ClassDeclaration) *ClassInfo {
	info := &ClassInfo{
		Name:    name,
		Decl:    decl,
		Fields:  make(map[string]*FieldInfo),
		Methods: make(map[string][]*MethodInfo),
		VTable:  make(map[string]*MethodInfo),
	}
	if decl != nil {
		info.Native = decl.Native
		for _, tp := range decl.TypeParams {
			info.TypeParams = append(info.TypeParams, tp.Name)
		}
	}
	return info
}

// IsRoot reports whether c is the implicit root class.
func (c *ClassInfo) IsRoot() bool {
	return c.Super == nil
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *ClassInfo) IsSubclassOf(other *ClassInfo) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// LookupField finds a field declared on c or inherited by it.
func (c *ClassInfo) LookupField(name string) *FieldInfo {
	for cur := c; cur != nil; cur = cur.Super {
		if f, ok := cur.Fields[name]; ok {
			return f
		}
	}
	return nil
}

// InstanceFields lists every instance field of c, root-most first.
func (c *ClassInfo) InstanceFields() []*FieldInfo {
	var chain []*ClassInfo
	for cur := c; cur != nil; cur = cur.Super {
		chain = append(chain, cur)
	}
	var out []*FieldInfo
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].FieldOrder {
			if !f.Static {
				out = append(out, f)
			}
		}
	}
	return out
}

// StaticFields lists the static fields declared on c itself.
func (c *ClassInfo) StaticFields() []*FieldInfo {
	var out []*FieldInfo
	for _, f := range c.FieldOrder {
		if f.Static {
			out = append(out, f)
		}
	}
	return out
}

// HasMethodNamed reports whether c or a superclass declares name.
func (c *ClassInfo) HasMethodNamed(name string) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if len(cur.Methods[name]) > 0 {
			return true
		}
	}
	return false
}

// Type returns c instantiated with its own type parameters.
func (c *ClassInfo) Type() ClassType {
	t := ClassType{Class: c}
	for _, tp := range c.TypeParams {
		t.Args = append(t.Args, TypeParamType{Name: tp})
	}
	return t
}

// ClassTable is the whole-program view of every class, user and native.
type ClassTable struct {
	classes map[string]*ClassInfo
	// Ordered lists classes superclass-first, then by declaration order.
	Ordered []*ClassInfo
	Root    *ClassInfo
	String  *ClassInfo
}

// Lookup finds a class by simple name.
func (t *ClassTable) Lookup(name string) (*ClassInfo, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// MustLookup is Lookup for names known to exist.
func (t *ClassTable) MustLookup(name string) *ClassInfo {
	c, ok := t.classes[name]
	if !ok {
		panic("typechecker: unknown class " + name)
	}
	return c
}

// buildClassTable is pass A: collect classes, resolve inheritance, and
// resolve every member signature.
func buildClassTable(unit *ast.CompilationUnit, reg *bridge.Registry) (*ClassTable, error) {
	t := &ClassTable{classes: make(map[string]*ClassInfo)}
	var declared []*ClassInfo

	t.Root = newClassInfo(RootClassName, nil)
	t.Root.Native = true
	t.Root.Constructors = []*ConstructorInfo{{
		Owner:    t.Root,
		Key:      bridge.SignatureKey(bridge.ConstructorName, nil),
		Implicit: true,
	}}
	t.classes[RootClassName] = t.Root

	add := func(info *ClassInfo, node ast.Node) error {
		if _, exists := t.classes[info.Name]; exists {
			return semanticErrorf(DuplicateDeclaration, node, "class %s is already defined", info.Name)
		}
		info.order = len(declared)
		t.classes[info.Name] = info
		declared = append(declared, info)
		return nil
	}
	if reg != nil {
		for _, b := range reg.Classes() {
			info := newClassInfo(b.Decl.Name, b.Decl)
			info.Package = b.Package
			if err := add(info, nil); err != nil {
				return nil, err
			}
		}
	}
	if _, ok := t.classes["String"]; !ok {
		// String literals need a class even without a library.
		stringDecl := ast.NewClassDeclaration("String", nil, nil)
		stringDecl.Native = true
		if err := add(newClassInfo("String", stringDecl), nil); err != nil {
			return nil, err
		}
	}
	t.String = t.classes["String"]
	for _, decl := range unit.Classes {
		if err := add(newClassInfo(decl.Name, decl), decl); err != nil {
			return nil, err
		}
	}

	for _, info := range declared {
		if err := t.resolveSuper(info); err != nil {
			return nil, err
		}
	}
	for _, info := range declared {
		if err := checkCycle(info); err != nil {
			return nil, err
		}
	}
	for _, info := range declared {
		info.Depth = 0
		for cur := info.Super; cur != nil; cur = cur.Super {
			info.Depth++
		}
	}
	sort.SliceStable(declared, func(i, j int) bool {
		if declared[i].Depth != declared[j].Depth {
			return declared[i].Depth < declared[j].Depth
		}
		return declared[i].order < declared[j].order
	})
	t.Ordered = append([]*ClassInfo{t.Root}, declared...)

	for _, info := range declared {
		if err := t.resolveMembers(info, reg); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("class table: %d classes", len(t.Ordered))
	return t, nil
}

func (t *ClassTable) resolveSuper(info *ClassInfo) error {
	ref := info.Decl.Super
	if ref == nil {
		info.Super = t.Root
		return nil
	}
	super, ok := t.classes[ref.Name]
	if !ok {
		return semanticErrorf(UnknownClass, ref, "cannot find superclass %s of %s", ref.Name, info.Name)
	}
	info.Super = super
	return nil
}

func checkCycle(info *ClassInfo) error {
	seen := map[*ClassInfo]bool{}
	for cur := info.Super; cur != nil; cur = cur.Super {
		if cur == info {
			return semanticErrorf(InheritanceCycle, info.Decl, "cyclic inheritance involving %s", info.Name)
		}
		if seen[cur] {
			// A cycle further up is reported for the class on it.
			return nil
		}
		seen[cur] = true
	}
	return nil
}

func typeParamSet(lists ...[]string) map[string]bool {
	out := make(map[string]bool)
	for _, list := range lists {
		for _, name := range list {
			out[name] = true
		}
	}
	return out
}

func typeParamNames(params []*ast.TypeParameter) []string {
	out := make([]string, 0, len(params))
	for _, tp := range params {
		out = append(out, tp.Name)
	}
	return out
}

// resolveType turns a written type into a Type. typeParams holds the type
// variables in scope.
func (t *ClassTable) resolveType(ref *ast.TypeRef, typeParams map[string]bool) (Type, error) {
	if typeParams[ref.Name] {
		if len(ref.Args) > 0 {
			return nil, semanticErrorf(TypeMismatch, ref, "type parameter %s cannot take type arguments", ref.Name)
		}
		return TypeParamType{Name: ref.Name}, nil
	}
	switch bridge.EraseTypeName(ref.Name, nil) {
	case "int", "float", "boolean":
		if len(ref.Args) > 0 {
			return nil, semanticErrorf(TypeMismatch, ref, "primitive type %s cannot take type arguments", ref.Name)
		}
		return PrimitiveType{Kind: PrimitiveKind(bridge.EraseTypeName(ref.Name, nil))}, nil
	}
	class, ok := t.classes[ref.Name]
	if !ok {
		return nil, semanticErrorf(UnknownClass, ref, "cannot find class %s", ref.Name)
	}
	if len(ref.Args) > 0 && len(ref.Args) != len(class.TypeParams) {
		return nil, semanticErrorf(TypeMismatch, ref, "class %s expects %d type arguments, got %d", class.Name, len(class.TypeParams), len(ref.Args))
	}
	out := ClassType{Class: class}
	for _, arg := range ref.Args {
		argType, err := t.resolveType(arg, typeParams)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, argType)
	}
	return out, nil
}

func (t *ClassTable) resolveParams(params []*ast.Parameter, typeParams map[string]bool) ([]Type, []string, error) {
	types := make([]Type, 0, len(params))
	names := make([]string, 0, len(params))
	seen := make(map[string]bool)
	for _, p := range params {
		if seen[p.Name] {
			return nil, nil, semanticErrorf(DuplicateDeclaration, p, "parameter %s is already defined", p.Name)
		}
		seen[p.Name] = true
		pt, err := t.resolveType(p.Type, typeParams)
		if err != nil {
			return nil, nil, err
		}
		types = append(types, pt)
		names = append(names, p.Name)
	}
	return types, names, nil
}

func erasedKey(name string, params []Type) string {
	erased := make([]string, len(params))
	for i, p := range params {
		erased[i] = Erase(p)
	}
	return bridge.SignatureKey(name, erased)
}

func (t *ClassTable) resolveMembers(info *ClassInfo, reg *bridge.Registry) error {
	decl := info.Decl
	classParams := typeParamSet(info.TypeParams)

	if decl.Super != nil {
		superType, err := t.resolveType(decl.Super, classParams)
		if err != nil {
			return err
		}
		st, ok := superType.(ClassType)
		if !ok {
			return semanticErrorf(TypeMismatch, decl.Super, "%s cannot extend %s", info.Name, superType)
		}
		info.SuperType = &st
	} else {
		info.SuperType = &ClassType{Class: t.Root}
	}

	for _, fd := range decl.Fields {
		if _, dup := info.Fields[fd.Name]; dup {
			return semanticErrorf(DuplicateDeclaration, fd, "field %s is already defined in %s", fd.Name, info.Name)
		}
		if inherited := info.Super.LookupField(fd.Name); inherited != nil {
			return semanticErrorf(DuplicateDeclaration, fd, "field %s is already defined in superclass %s", fd.Name, inherited.Owner.Name)
		}
		ft, err := t.resolveType(fd.Type, classParams)
		if err != nil {
			return err
		}
		field := &FieldInfo{Name: fd.Name, Owner: info, Type: ft, Static: fd.Modifiers.Static, Decl: fd}
		info.Fields[fd.Name] = field
		info.FieldOrder = append(info.FieldOrder, field)
	}

	ctorKeys := make(map[string]bool)
	for _, cd := range decl.Constructors {
		params, names, err := t.resolveParams(cd.Params, classParams)
		if err != nil {
			return err
		}
		ctor := &ConstructorInfo{Owner: info, Params: params, ParamNames: names, Decl: cd}
		ctor.Key = erasedKey(bridge.ConstructorName, params)
		if ctorKeys[ctor.Key] {
			return semanticErrorf(DuplicateDeclaration, cd, "constructor %s is already defined", ctor)
		}
		ctorKeys[ctor.Key] = true
		if info.Native {
			ctor.Native, _ = reg.Lookup(info.Name, ctor.Key)
		}
		info.Constructors = append(info.Constructors, ctor)
	}
	if len(decl.Constructors) == 0 && !info.Native {
		info.Constructors = []*ConstructorInfo{{
			Owner:    info,
			Key:      bridge.SignatureKey(bridge.ConstructorName, nil),
			Implicit: true,
		}}
	}

	for key, m := range info.Super.VTable {
		info.VTable[key] = m
	}
	ownKeys := make(map[string]bool)
	for _, md := range decl.Methods {
		typeParams := typeParamNames(md.TypeParams)
		scope := typeParamSet(info.TypeParams, typeParams)
		params, names, err := t.resolveParams(md.Params, scope)
		if err != nil {
			return err
		}
		var ret Type = VoidType{}
		if md.ReturnType != nil {
			if ret, err = t.resolveType(md.ReturnType, scope); err != nil {
				return err
			}
		}
		m := &MethodInfo{
			Name:       md.Name,
			Owner:      info,
			Static:     md.Modifiers.Static,
			TypeParams: typeParams,
			Params:     params,
			ParamNames: names,
			Return:     ret,
			Key:        erasedKey(md.Name, params),
			Decl:       md,
		}
		if ownKeys[m.Key] {
			return semanticErrorf(DuplicateDeclaration, md, "method %s is already defined in %s", m.Key, info.Name)
		}
		ownKeys[m.Key] = true
		if info.Native {
			m.Native, _ = reg.Lookup(info.Name, m.Key)
		}
		if err := t.checkOverride(info, m); err != nil {
			return err
		}
		info.Methods[m.Name] = append(info.Methods[m.Name], m)
		if !m.Static {
			info.VTable[m.Key] = m
		}
	}
	return nil
}

// checkOverride validates m against a same-signature method inherited by
// info.
func (t *ClassTable) checkOverride(info *ClassInfo, m *MethodInfo) error {
	var inherited *MethodInfo
	for cur := info.Super; cur != nil && inherited == nil; cur = cur.Super {
		for _, candidate := range cur.Methods[m.Name] {
			if candidate.Key == m.Key {
				inherited = candidate
				break
			}
		}
	}
	if inherited == nil {
		return nil
	}
	if inherited.Static != m.Static {
		if m.Static {
			return semanticErrorf(InvalidStaticContext, m.Decl, "static method %s cannot hide instance method of %s", m.Key, inherited.Owner.Name)
		}
		return semanticErrorf(InvalidStaticContext, m.Decl, "instance method %s cannot override static method of %s", m.Key, inherited.Owner.Name)
	}
	if m.Static {
		return nil
	}
	if !returnCompatible(m.Return, inherited.Return) {
		return semanticErrorf(TypeMismatch, m.Decl, "%s returns %s, incompatible with %s in %s", m.Key, m.Return, inherited.Return, inherited.Owner.Name)
	}
	return nil
}

func returnCompatible(override, base Type) bool {
	_, overrideVoid := override.(VoidType)
	_, baseVoid := base.(VoidType)
	if overrideVoid || baseVoid {
		return overrideVoid && baseVoid
	}
	if IsDynamic(override) || IsDynamic(base) {
		return true
	}
	if _, ok := base.(PrimitiveType); ok {
		return sameType(override, base)
	}
	return Assignable(override, base)
}
