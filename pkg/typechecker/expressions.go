package typechecker

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
)

func (c *Checker) expr(e ast.Expression) (Type, error) {
	t, err := c.exprType(e)
	if err != nil {
		return nil, err
	}
	c.res.Types[e] = t
	return t, nil
}

func (c *Checker) args(args []ast.Expression) ([]Type, error) {
	types := make([]Type, len(args))
	for i, arg := range args {
		t, err := c.expr(arg)
		if err != nil {
			return nil, err
		}
		if _, void := t.(VoidType); void {
			return nil, semanticErrorf(TypeMismatch, arg, "void value cannot be used as an argument")
		}
		types[i] = t
	}
	return types, nil
}

func (c *Checker) exprType(e ast.Expression) (Type, error) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return IntType, nil
	case *ast.FloatLiteral:
		return FloatType, nil
	case *ast.BooleanLiteral:
		return BooleanType, nil
	case *ast.StringLiteral:
		return ClassType{Class: c.classes.String}, nil
	case *ast.NullLiteral:
		return NullType{}, nil
	case *ast.ThisExpression:
		if c.ctx.static {
			return nil, semanticErrorf(InvalidStaticContext, e, "this cannot be referenced from a static context")
		}
		return c.ctx.class.Type(), nil
	case *ast.SuperExpression:
		return nil, semanticErrorf(TypeMismatch, e, "super can only be used to access members")
	case *ast.Variable:
		return c.variable(e)
	case *ast.FieldAccess:
		return c.fieldAccess(e)
	case *ast.MethodCall:
		return c.methodCall(e)
	case *ast.NewExpression:
		return c.newExpression(e)
	case *ast.BinaryExpression:
		return c.binary(e)
	case *ast.UnaryExpression:
		return c.unary(e)
	case *ast.AssignmentExpression:
		return c.assignment(e)
	case *ast.TernaryExpression:
		return c.ternary(e)
	case *ast.CastExpression:
		return c.cast(e)
	case *ast.InstanceOfExpression:
		return c.instanceOf(e)
	default:
		return nil, semanticErrorf(TypeMismatch, e, "unsupported expression %T", e)
	}
}

// bindName resolves a simple name to a local, then a field, then (when
// allowClass is set) a class.
func (c *Checker) bindName(v *ast.Variable, allowClass bool) (*Binding, error) {
	if l := c.lookupLocal(v.Name); l != nil {
		return &Binding{Kind: BindLocal, Name: v.Name, Type: l.typ}, nil
	}
	if f := c.ctx.class.LookupField(v.Name); f != nil {
		if f.Static {
			return &Binding{Kind: BindStaticField, Name: v.Name, Type: f.Type, Field: f}, nil
		}
		if c.ctx.static {
			return nil, semanticErrorf(InvalidStaticContext, v, "non-static field %s cannot be referenced from a static context", v.Name)
		}
		return &Binding{Kind: BindField, Name: v.Name, Type: f.Type, Field: f}, nil
	}
	if class, ok := c.classes.Lookup(v.Name); ok {
		if !allowClass {
			return nil, semanticErrorf(TypeMismatch, v, "class %s cannot be used as a value", v.Name)
		}
		return &Binding{Kind: BindClass, Name: v.Name, Class: class}, nil
	}
	if c.ctx.typeParams[v.Name] {
		return nil, semanticErrorf(TypeMismatch, v, "type parameter %s cannot be used as a value", v.Name)
	}
	if allowClass {
		return nil, semanticErrorf(UnknownClass, v, "cannot find symbol %s", v.Name)
	}
	return nil, semanticErrorf(UnknownMember, v, "cannot find symbol %s", v.Name)
}

func (c *Checker) variable(v *ast.Variable) (Type, error) {
	b, err := c.bindName(v, false)
	if err != nil {
		return nil, err
	}
	c.res.Variables[v] = b
	return b.Type, nil
}

// qualifier is the resolved left side of a member access.
type qualifier struct {
	class *ClassInfo
	super bool
	typ   Type
}

func (c *Checker) qualifier(target ast.Expression) (qualifier, error) {
	switch t := target.(type) {
	case *ast.Variable:
		b, err := c.bindName(t, true)
		if err != nil {
			return qualifier{}, err
		}
		c.res.Variables[t] = b
		if b.Kind == BindClass {
			return qualifier{class: b.Class}, nil
		}
		c.res.Types[t] = b.Type
		return qualifier{typ: b.Type}, nil
	case *ast.SuperExpression:
		if c.ctx.static {
			return qualifier{}, semanticErrorf(InvalidStaticContext, t, "super cannot be referenced from a static context")
		}
		st := *c.ctx.class.SuperType
		c.res.Types[t] = st
		return qualifier{super: true, typ: st}, nil
	default:
		typ, err := c.expr(target)
		if err != nil {
			return qualifier{}, err
		}
		return qualifier{typ: typ}, nil
	}
}

func (c *Checker) fieldAccess(fa *ast.FieldAccess) (Type, error) {
	q, err := c.qualifier(fa.Target)
	if err != nil {
		return nil, err
	}
	if q.class != nil {
		f := q.class.LookupField(fa.Name)
		if f == nil {
			return nil, semanticErrorf(UnknownMember, fa, "cannot find field %s in %s", fa.Name, q.class.Name)
		}
		if !f.Static {
			return nil, semanticErrorf(InvalidStaticContext, fa, "non-static field %s cannot be referenced from a static context", fa.Name)
		}
		c.res.Fields[fa] = &FieldSite{Field: f, Name: fa.Name}
		return f.Type, nil
	}
	if IsDynamic(q.typ) {
		c.res.Fields[fa] = &FieldSite{Dynamic: true, Name: fa.Name}
		return UnknownType{}, nil
	}
	ct, ok := q.typ.(ClassType)
	if !ok {
		return nil, semanticErrorf(TypeMismatch, fa, "%s cannot be dereferenced", q.typ)
	}
	f := ct.Class.LookupField(fa.Name)
	if f == nil {
		return nil, semanticErrorf(UnknownMember, fa, "cannot find field %s in %s", fa.Name, ct.Class.Name)
	}
	if f.Static {
		return nil, semanticErrorf(InvalidStaticContext, fa, "static field %s must be accessed through class %s", fa.Name, f.Owner.Name)
	}
	c.res.Fields[fa] = &FieldSite{Field: f, Name: fa.Name}
	return f.Type, nil
}

func (c *Checker) methodCall(mc *ast.MethodCall) (Type, error) {
	if mc.Target == nil {
		argTypes, err := c.args(mc.Args)
		if err != nil {
			return nil, err
		}
		m, err := c.classes.ResolveMethod(c.ctx.class, mc.Name, argTypes)
		if err != nil {
			return nil, at(err, mc)
		}
		site := &CallSite{Kind: CallStatic, Method: m, Name: mc.Name}
		if !m.Static {
			if c.ctx.static {
				return nil, semanticErrorf(InvalidStaticContext, mc, "non-static method %s cannot be referenced from a static context", m.Key)
			}
			site.Kind = CallVirtual
			site.ImplicitThis = true
		}
		return c.finishCall(mc, site, argTypes)
	}

	q, err := c.qualifier(mc.Target)
	if err != nil {
		return nil, err
	}
	argTypes, err := c.args(mc.Args)
	if err != nil {
		return nil, err
	}
	switch {
	case q.class != nil:
		m, err := c.classes.ResolveMethod(q.class, mc.Name, argTypes)
		if err != nil {
			return nil, at(err, mc)
		}
		if !m.Static {
			return nil, semanticErrorf(InvalidStaticContext, mc, "non-static method %s cannot be referenced from a static context", m.Key)
		}
		return c.finishCall(mc, &CallSite{Kind: CallStatic, Method: m, Name: mc.Name}, argTypes)
	case q.super:
		m, err := c.classes.ResolveMethod(c.ctx.class.Super, mc.Name, argTypes)
		if err != nil {
			return nil, at(err, mc)
		}
		kind := CallSuper
		if m.Static {
			kind = CallStatic
		}
		return c.finishCall(mc, &CallSite{Kind: kind, Method: m, Name: mc.Name}, argTypes)
	case IsDynamic(q.typ):
		c.res.Calls[mc] = &CallSite{Kind: CallDynamic, Name: mc.Name}
		return UnknownType{}, nil
	}
	ct, ok := q.typ.(ClassType)
	if !ok {
		return nil, semanticErrorf(TypeMismatch, mc, "%s cannot be dereferenced", q.typ)
	}
	m, err := c.classes.ResolveMethod(ct.Class, mc.Name, argTypes)
	if err != nil {
		return nil, at(err, mc)
	}
	if m.Static {
		return nil, semanticErrorf(InvalidStaticContext, mc, "static method %s must be called through class %s", m.Key, m.Owner.Name)
	}
	return c.finishCall(mc, &CallSite{Kind: CallVirtual, Method: m, Name: mc.Name}, argTypes)
}

func (c *Checker) finishCall(mc *ast.MethodCall, site *CallSite, argTypes []Type) (Type, error) {
	if err := c.coerceArgs(mc.Args, argTypes, site.Method.Params); err != nil {
		return nil, err
	}
	c.res.Calls[mc] = site
	return site.Method.Return, nil
}

func (c *Checker) newExpression(ne *ast.NewExpression) (Type, error) {
	typ, err := c.resolveType(ne.Type)
	if err != nil {
		return nil, err
	}
	ct, ok := typ.(ClassType)
	if !ok {
		return nil, semanticErrorf(TypeMismatch, ne, "cannot instantiate %s", typ)
	}
	argTypes, err := c.args(ne.Args)
	if err != nil {
		return nil, err
	}
	ctor, err := c.classes.ResolveConstructor(ct.Class, argTypes)
	if err != nil {
		return nil, at(err, ne)
	}
	if err := c.coerceArgs(ne.Args, argTypes, ctor.Params); err != nil {
		return nil, err
	}
	c.res.News[ne] = ctor
	return ct, nil
}

func numericOrDynamic(t Type) bool {
	return IsNumeric(t) || IsDynamic(t)
}

func booleanOrDynamic(t Type) bool {
	return isPrimitive(t, Boolean) || IsDynamic(t)
}

func intOrDynamic(t Type) bool {
	return isPrimitive(t, Int) || IsDynamic(t)
}

func (c *Checker) binary(b *ast.BinaryExpression) (Type, error) {
	left, err := c.expr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.expr(b.Right)
	if err != nil {
		return nil, err
	}
	mismatch := func() (Type, error) {
		return nil, semanticErrorf(TypeMismatch, b, "operator %s cannot be applied to %s and %s", b.Operator, left, right)
	}
	switch b.Operator {
	case "&&", "||":
		if !booleanOrDynamic(left) || !booleanOrDynamic(right) {
			return mismatch()
		}
		return BooleanType, nil
	case "==", "!=":
		if !equatable(left, right) {
			return mismatch()
		}
		return BooleanType, nil
	case "<", ">", "<=", ">=":
		if !numericOrDynamic(left) || !numericOrDynamic(right) {
			return mismatch()
		}
		return BooleanType, nil
	case "+":
		if isClass(left, "String") || isClass(right, "String") {
			if _, void := left.(VoidType); void {
				return mismatch()
			}
			if _, void := right.(VoidType); void {
				return mismatch()
			}
			return ClassType{Class: c.classes.String}, nil
		}
		if !numericOrDynamic(left) || !numericOrDynamic(right) {
			return mismatch()
		}
		return numericResult(left, right), nil
	case "-", "*", "/", "%":
		if !numericOrDynamic(left) || !numericOrDynamic(right) {
			return mismatch()
		}
		return numericResult(left, right), nil
	case "&", "|", "^":
		switch {
		case IsDynamic(left) || IsDynamic(right):
			if (booleanOrDynamic(left) && booleanOrDynamic(right)) || (intOrDynamic(left) && intOrDynamic(right)) {
				return UnknownType{}, nil
			}
		case isPrimitive(left, Boolean) && isPrimitive(right, Boolean):
			return BooleanType, nil
		case isPrimitive(left, Int) && isPrimitive(right, Int):
			return IntType, nil
		}
		return mismatch()
	case "<<", ">>", ">>>":
		if !intOrDynamic(left) || !intOrDynamic(right) {
			return mismatch()
		}
		return IntType, nil
	}
	return nil, semanticErrorf(TypeMismatch, b, "unknown operator %s", b.Operator)
}

// equatable reports whether == may compare values of types a and b.
func equatable(a, b Type) bool {
	if IsDynamic(a) || IsDynamic(b) {
		_, aVoid := a.(VoidType)
		_, bVoid := b.(VoidType)
		return !aVoid && !bVoid
	}
	switch {
	case IsNumeric(a) && IsNumeric(b):
		return true
	case isPrimitive(a, Boolean) && isPrimitive(b, Boolean):
		return true
	}
	ac, aClass := a.(ClassType)
	bc, bClass := b.(ClassType)
	_, aNull := a.(NullType)
	_, bNull := b.(NullType)
	switch {
	case aNull && (bNull || bClass), bNull && aClass:
		return true
	case aClass && bClass:
		return ac.Class.IsSubclassOf(bc.Class) || bc.Class.IsSubclassOf(ac.Class)
	}
	return false
}

func (c *Checker) unary(u *ast.UnaryExpression) (Type, error) {
	operand, err := c.expr(u.Operand)
	if err != nil {
		return nil, err
	}
	mismatch := func() (Type, error) {
		return nil, semanticErrorf(TypeMismatch, u, "operator %s cannot be applied to %s", u.Operator, operand)
	}
	switch u.Operator {
	case "+", "-", "++", "--":
		if !numericOrDynamic(operand) {
			return mismatch()
		}
		if IsDynamic(operand) {
			return UnknownType{}, nil
		}
		return operand, nil
	case "!":
		if !booleanOrDynamic(operand) {
			return mismatch()
		}
		return BooleanType, nil
	case "~":
		if !intOrDynamic(operand) {
			return mismatch()
		}
		return IntType, nil
	}
	return nil, semanticErrorf(TypeMismatch, u, "unknown operator %s", u.Operator)
}

func (c *Checker) assignment(a *ast.AssignmentExpression) (Type, error) {
	target, err := c.expr(a.Target)
	if err != nil {
		return nil, err
	}
	value, err := c.expr(a.Value)
	if err != nil {
		return nil, err
	}
	ok := true
	switch a.Operator {
	case "=":
		if err := c.coerce(a.Value, value, target); err != nil {
			return nil, err
		}
	case "+=":
		if isClass(target, "String") {
			_, void := value.(VoidType)
			ok = !void
		} else {
			ok = numericOrDynamic(target) && numericOrDynamic(value)
		}
	case "-=", "*=", "/=", "%=":
		ok = numericOrDynamic(target) && numericOrDynamic(value)
	case "&=", "|=", "^=":
		ok = (booleanOrDynamic(target) && booleanOrDynamic(value)) || (intOrDynamic(target) && intOrDynamic(value))
	case "<<=", ">>=", ">>>=":
		ok = intOrDynamic(target) && intOrDynamic(value)
	default:
		ok = false
	}
	if !ok {
		return nil, semanticErrorf(TypeMismatch, a, "operator %s cannot be applied to %s and %s", a.Operator, target, value)
	}
	return target, nil
}

func (c *Checker) ternary(t *ast.TernaryExpression) (Type, error) {
	if err := c.condition(t.Condition); err != nil {
		return nil, err
	}
	a, err := c.expr(t.Then)
	if err != nil {
		return nil, err
	}
	b, err := c.expr(t.Else)
	if err != nil {
		return nil, err
	}
	result, ok := unify(a, b)
	if !ok {
		return nil, semanticErrorf(TypeMismatch, t, "incompatible conditional branches %s and %s", a, b)
	}
	if err := c.coerce(t.Then, a, result); err != nil {
		return nil, err
	}
	if err := c.coerce(t.Else, b, result); err != nil {
		return nil, err
	}
	return result, nil
}

// unify finds the type of a conditional expression with branches a and b.
func unify(a, b Type) (Type, bool) {
	if _, void := a.(VoidType); void {
		return nil, false
	}
	if _, void := b.(VoidType); void {
		return nil, false
	}
	switch {
	case IsDynamic(a) || IsDynamic(b):
		return UnknownType{}, true
	case sameType(a, b):
		return a, true
	case IsNumeric(a) && IsNumeric(b):
		return FloatType, true
	}
	_, aNull := a.(NullType)
	_, bNull := b.(NullType)
	ac, aClass := a.(ClassType)
	bc, bClass := b.(ClassType)
	switch {
	case aNull && bClass:
		return b, true
	case bNull && aClass:
		return a, true
	case aClass && bClass && ac.Class.IsSubclassOf(bc.Class):
		return b, true
	case aClass && bClass && bc.Class.IsSubclassOf(ac.Class):
		return a, true
	}
	return nil, false
}

func (c *Checker) cast(ce *ast.CastExpression) (Type, error) {
	target, err := c.resolveType(ce.Type)
	if err != nil {
		return nil, err
	}
	operand, err := c.expr(ce.Operand)
	if err != nil {
		return nil, err
	}
	plan, err := c.castPlan(ce, operand, target)
	if err != nil {
		return nil, err
	}
	c.res.Casts[ce] = plan
	return target, nil
}

func (c *Checker) castPlan(ce *ast.CastExpression, from, to Type) (*CastPlan, error) {
	bad := func() (*CastPlan, error) {
		return nil, semanticErrorf(TypeMismatch, ce, "incompatible types: %s cannot be cast to %s", from, to)
	}
	if _, void := from.(VoidType); void {
		return bad()
	}
	switch t := to.(type) {
	case PrimitiveType:
		switch {
		case IsDynamic(from):
			return &CastPlan{Kind: CastCheckedPrimitive, Target: to}, nil
		case IsNumeric(from) && IsNumeric(to):
			if sameType(from, to) {
				return &CastPlan{Kind: CastIdentity, Target: to}, nil
			}
			return &CastPlan{Kind: CastNumeric, Target: to}, nil
		case sameType(from, to):
			return &CastPlan{Kind: CastIdentity, Target: to}, nil
		}
		return bad()
	case TypeParamType:
		return &CastPlan{Kind: CastUnchecked, Target: to}, nil
	case ClassType:
		switch f := from.(type) {
		case NullType:
			return &CastPlan{Kind: CastIdentity, Target: to, Class: t.Class}, nil
		case PrimitiveType:
			if t.Class.IsRoot() {
				return &CastPlan{Kind: CastIdentity, Target: to, Class: t.Class}, nil
			}
			return bad()
		case ClassType:
			if !f.Class.IsSubclassOf(t.Class) && !t.Class.IsSubclassOf(f.Class) {
				return bad()
			}
		}
		switch {
		case len(t.Args) > 0:
			return &CastPlan{Kind: CastUnchecked, Target: to, Class: t.Class}, nil
		case IsDynamic(from):
			return &CastPlan{Kind: CastChecked, Target: to, Class: t.Class}, nil
		case from.(ClassType).Class.IsSubclassOf(t.Class):
			return &CastPlan{Kind: CastIdentity, Target: to, Class: t.Class}, nil
		}
		return &CastPlan{Kind: CastChecked, Target: to, Class: t.Class}, nil
	}
	return bad()
}

func (c *Checker) instanceOf(e *ast.InstanceOfExpression) (Type, error) {
	operand, err := c.expr(e.Operand)
	if err != nil {
		return nil, err
	}
	if !isReference(operand) {
		return nil, semanticErrorf(TypeMismatch, e, "instanceof requires a reference, found %s", operand)
	}
	typ, err := c.resolveType(e.Type)
	if err != nil {
		return nil, err
	}
	ct, ok := typ.(ClassType)
	if !ok {
		return nil, semanticErrorf(TypeMismatch, e, "cannot test instanceof %s", typ)
	}
	if oc, ok := operand.(ClassType); ok && !oc.Class.IsSubclassOf(ct.Class) && !ct.Class.IsSubclassOf(oc.Class) {
		return nil, semanticErrorf(TypeMismatch, e, "incompatible types: %s cannot be %s", operand, ct)
	}
	c.res.InstanceOf[e] = ct.Class
	return BooleanType, nil
}
