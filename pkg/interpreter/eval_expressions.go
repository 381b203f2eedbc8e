package interpreter

import (
	"math"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

// eval evaluates expr and applies the conversion recorded for it.
func (i *Interpreter) eval(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	if conv, ok := i.res.Conversions[expr]; ok {
		return i.convert(value, conv, expr)
	}
	return value, nil
}

func (i *Interpreter) evalExpr(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return runtime.IntValue{Val: e.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: e.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.ThisExpression, *ast.SuperExpression:
		return i.receiver(expr)
	case *ast.Variable:
		return i.readVariable(e, env)
	case *ast.FieldAccess:
		p, err := i.fieldPlace(e, env)
		if err != nil {
			return nil, err
		}
		return p.get()
	case *ast.MethodCall:
		return i.evalCall(e, env)
	case *ast.NewExpression:
		return i.evalNew(e, env)
	case *ast.BinaryExpression:
		return i.evalBinary(e, env)
	case *ast.UnaryExpression:
		return i.evalUnary(e, env)
	case *ast.AssignmentExpression:
		return i.evalAssignment(e, env)
	case *ast.TernaryExpression:
		cond, err := i.condition(e.Condition, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return i.eval(e.Then, env)
		}
		return i.eval(e.Else, env)
	case *ast.CastExpression:
		return i.evalCast(e, env)
	case *ast.InstanceOfExpression:
		value, err := i.eval(e.Operand, env)
		if err != nil {
			return nil, err
		}
		class, ok := i.classOf(value)
		return runtime.BoolValue{Val: ok && class.IsSubclassOf(i.res.InstanceOf[e])}, nil
	default:
		return nil, i.fault(InvalidOperation, expr, "unsupported expression %T", expr)
	}
}

func (i *Interpreter) receiver(node ast.Node) (runtime.Value, error) {
	frame := i.currentFrame()
	if frame == nil || frame.Receiver == nil {
		return nil, i.fault(InvalidOperation, node, "no receiver in a static context")
	}
	return frame.Receiver, nil
}

// place is a readable and writable storage location.
type place struct {
	get func() (runtime.Value, error)
	set func(runtime.Value) error
}

func (i *Interpreter) readVariable(v *ast.Variable, env *runtime.Environment) (runtime.Value, error) {
	p, err := i.variablePlace(v, env)
	if err != nil {
		return nil, err
	}
	return p.get()
}

func (i *Interpreter) variablePlace(v *ast.Variable, env *runtime.Environment) (place, error) {
	binding := i.res.Variables[v]
	if binding == nil {
		return place{}, i.fault(InvalidOperation, v, "unresolved name %s", v.Name)
	}
	switch binding.Kind {
	case typechecker.BindLocal:
		return place{
			get: func() (runtime.Value, error) { return env.Get(v.Name) },
			set: func(value runtime.Value) error { return env.Assign(v.Name, value) },
		}, nil
	case typechecker.BindField:
		recv, err := i.receiver(v)
		if err != nil {
			return place{}, err
		}
		return i.objectFieldPlace(recv, v.Name, v)
	case typechecker.BindStaticField:
		return i.staticPlace(binding.Field), nil
	default:
		return place{}, i.fault(InvalidOperation, v, "class %s is not a value", v.Name)
	}
}

func (i *Interpreter) staticPlace(field *typechecker.FieldInfo) place {
	slots := i.statics[field.Owner.Name]
	return place{
		get: func() (runtime.Value, error) { return slots[field.Name], nil },
		set: func(value runtime.Value) error {
			slots[field.Name] = value
			return nil
		},
	}
}

func (i *Interpreter) objectFieldPlace(target runtime.Value, name string, node ast.Node) (place, error) {
	if runtime.IsNull(target) {
		return place{}, i.fault(NullReference, node, "cannot access field %s of null", name)
	}
	obj, ok := target.(*runtime.ObjectValue)
	if !ok {
		return place{}, i.fault(NoSuchMethodOnReceiver, node, "%s has no field %s", runtime.Describe(target), name)
	}
	if _, ok := obj.Fields[name]; !ok {
		return place{}, i.fault(NoSuchMethodOnReceiver, node, "%s has no field %s", obj.Class, name)
	}
	return place{
		get: func() (runtime.Value, error) { return obj.Fields[name], nil },
		set: func(value runtime.Value) error {
			obj.Fields[name] = value
			return nil
		},
	}, nil
}

func (i *Interpreter) fieldPlace(fa *ast.FieldAccess, env *runtime.Environment) (place, error) {
	site := i.res.Fields[fa]
	if site == nil {
		return place{}, i.fault(InvalidOperation, fa, "unresolved field %s", fa.Name)
	}
	if site.Field != nil && site.Field.Static {
		return i.staticPlace(site.Field), nil
	}
	target, err := i.eval(fa.Target, env)
	if err != nil {
		return place{}, err
	}
	return i.objectFieldPlace(target, fa.Name, fa)
}

func (i *Interpreter) targetPlace(target ast.AssignmentTarget, env *runtime.Environment) (place, error) {
	switch t := target.(type) {
	case *ast.Variable:
		return i.variablePlace(t, env)
	case *ast.FieldAccess:
		return i.fieldPlace(t, env)
	}
	return place{}, i.fault(InvalidOperation, target, "cannot assign to %T", target)
}

func (i *Interpreter) evalAssignment(a *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	p, err := i.targetPlace(a.Target, env)
	if err != nil {
		return nil, err
	}
	if a.Operator == "=" {
		value, err := i.eval(a.Value, env)
		if err != nil {
			return nil, err
		}
		return value, p.set(value)
	}
	current, err := p.get()
	if err != nil {
		return nil, err
	}
	rhs, err := i.eval(a.Value, env)
	if err != nil {
		return nil, err
	}
	targetType := i.res.TypeOf(a.Target)
	if a.Operator == "+=" && typechecker.IsString(targetType) {
		result := concat(current, rhs)
		return result, p.set(result)
	}
	op := a.Operator[:len(a.Operator)-1]
	result, err := i.binaryOp(op, current, rhs, a)
	if err != nil {
		return nil, err
	}
	result = narrowTo(result, targetType)
	return result, p.set(result)
}

// narrowTo applies the implicit cast of compound assignment.
func narrowTo(value runtime.Value, target typechecker.Type) runtime.Value {
	p, ok := target.(typechecker.PrimitiveType)
	if !ok {
		return value
	}
	switch v := value.(type) {
	case runtime.FloatValue:
		if p.Kind == typechecker.Int {
			return runtime.IntValue{Val: floatToInt(v.Val)}
		}
	case runtime.IntValue:
		if p.Kind == typechecker.Float {
			return runtime.FloatValue{Val: float64(v.Val)}
		}
	}
	return value
}

// floatToInt truncates toward zero, saturating at the int range.
func floatToInt(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func (i *Interpreter) evalCast(ce *ast.CastExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.eval(ce.Operand, env)
	if err != nil {
		return nil, err
	}
	plan := i.res.Casts[ce]
	if plan == nil {
		return nil, i.fault(InvalidOperation, ce, "unresolved cast")
	}
	switch plan.Kind {
	case typechecker.CastNumeric:
		return narrowTo(value, plan.Target), nil
	case typechecker.CastChecked:
		if runtime.IsNull(value) {
			return value, nil
		}
		class, ok := i.classOf(value)
		if !ok || !class.IsSubclassOf(plan.Class) {
			return nil, i.fault(ClassCastError, ce, "class %s cannot be cast to class %s", runtimeTypeName(value), plan.Class.Name)
		}
		return value, nil
	case typechecker.CastCheckedPrimitive:
		return i.checkValue(value, plan.Target, ce)
	default:
		return value, nil
	}
}

// convert applies an assignment conversion chosen during analysis.
func (i *Interpreter) convert(value runtime.Value, conv typechecker.Conversion, node ast.Node) (runtime.Value, error) {
	switch conv.Kind {
	case typechecker.ConvertWiden:
		if v, ok := value.(runtime.IntValue); ok {
			return runtime.FloatValue{Val: float64(v.Val)}, nil
		}
		return value, nil
	case typechecker.ConvertCheck:
		return i.checkValue(value, conv.Target, node)
	}
	return value, nil
}

// checkValue verifies that an erased value fits target.
func (i *Interpreter) checkValue(value runtime.Value, target typechecker.Type, node ast.Node) (runtime.Value, error) {
	switch t := target.(type) {
	case typechecker.PrimitiveType:
		switch v := value.(type) {
		case runtime.IntValue:
			if t.Kind == typechecker.Int {
				return v, nil
			}
			if t.Kind == typechecker.Float {
				return runtime.FloatValue{Val: float64(v.Val)}, nil
			}
		case runtime.FloatValue:
			if t.Kind == typechecker.Float {
				return v, nil
			}
		case runtime.BoolValue:
			if t.Kind == typechecker.Boolean {
				return v, nil
			}
		}
		return nil, i.fault(ClassCastError, node, "%s cannot be cast to %s", runtimeTypeName(value), t)
	case typechecker.ClassType:
		if runtime.IsNull(value) || t.Class.IsRoot() {
			return value, nil
		}
		class, ok := i.classOf(value)
		if !ok || !class.IsSubclassOf(t.Class) {
			return nil, i.fault(ClassCastError, node, "class %s cannot be cast to class %s", runtimeTypeName(value), t.Class.Name)
		}
		return value, nil
	}
	return value, nil
}

// classOf returns the runtime class of a reference value.
func (i *Interpreter) classOf(value runtime.Value) (*typechecker.ClassInfo, bool) {
	switch v := value.(type) {
	case runtime.StringValue:
		return i.classes.String, true
	case *runtime.ObjectValue:
		return i.classes.Lookup(v.Class)
	}
	return nil, false
}

// typeOfValue is the most specific static type describing value.
func (i *Interpreter) typeOfValue(value runtime.Value) typechecker.Type {
	switch v := value.(type) {
	case runtime.IntValue:
		return typechecker.IntType
	case runtime.FloatValue:
		return typechecker.FloatType
	case runtime.BoolValue:
		return typechecker.BooleanType
	case runtime.NullValue:
		return typechecker.NullType{}
	case runtime.StringValue:
		return typechecker.ClassType{Class: i.classes.String}
	case *runtime.ObjectValue:
		if class, ok := i.classes.Lookup(v.Class); ok {
			return typechecker.ClassType{Class: class}
		}
	}
	return typechecker.UnknownType{}
}

func runtimeTypeName(value runtime.Value) string {
	if name := runtime.ClassName(value); name != "" {
		return name
	}
	switch value.(type) {
	case runtime.IntValue:
		return "int"
	case runtime.FloatValue:
		return "float"
	case runtime.BoolValue:
		return "boolean"
	case runtime.NullValue:
		return "null"
	}
	return value.Kind().String()
}
