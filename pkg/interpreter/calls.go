package interpreter

import (
	"errors"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

func (i *Interpreter) evalArgs(args []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		v, err := i.eval(arg, env)
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}
	return values, nil
}

func (i *Interpreter) evalCall(mc *ast.MethodCall, env *runtime.Environment) (runtime.Value, error) {
	site := i.res.Calls[mc]
	if site == nil {
		return nil, i.fault(InvalidOperation, mc, "unresolved call %s", mc.Name)
	}
	var receiver runtime.Value
	switch site.Kind {
	case typechecker.CallStatic:
	case typechecker.CallVirtual, typechecker.CallDynamic:
		var err error
		if mc.Target == nil {
			receiver, err = i.receiver(mc)
		} else {
			receiver, err = i.eval(mc.Target, env)
		}
		if err != nil {
			return nil, err
		}
		if runtime.IsNull(receiver) {
			return nil, i.fault(NullReference, mc, "cannot invoke %s on null", mc.Name)
		}
	case typechecker.CallSuper:
		var err error
		if receiver, err = i.receiver(mc); err != nil {
			return nil, err
		}
	}
	args, err := i.evalArgs(mc.Args, env)
	if err != nil {
		return nil, err
	}

	method := site.Method
	switch site.Kind {
	case typechecker.CallVirtual:
		method, err = i.dispatch(receiver, method.Key, mc)
	case typechecker.CallDynamic:
		method, err = i.dispatchDynamic(receiver, mc.Name, args, mc)
	}
	if err != nil {
		return nil, err
	}
	if method.Static {
		receiver = nil
	}
	return i.invoke(method, receiver, args, mc)
}

// dispatch selects the most derived override of key for the receiver's
// runtime class.
func (i *Interpreter) dispatch(receiver runtime.Value, key string, node ast.Node) (*typechecker.MethodInfo, error) {
	class, ok := i.classOf(receiver)
	if !ok {
		return nil, i.fault(NoSuchMethodOnReceiver, node, "%s has no method %s", runtimeTypeName(receiver), key)
	}
	method := class.VTable[key]
	if method == nil {
		return nil, i.fault(NoSuchMethodOnReceiver, node, "%s has no method %s", class.Name, key)
	}
	return method, nil
}

// dispatchDynamic resolves a call whose receiver type was erased, using the
// runtime types of receiver and arguments.
func (i *Interpreter) dispatchDynamic(receiver runtime.Value, name string, args []runtime.Value, node ast.Node) (*typechecker.MethodInfo, error) {
	class, ok := i.classOf(receiver)
	if !ok {
		return nil, i.fault(NoSuchMethodOnReceiver, node, "%s has no method %s", runtimeTypeName(receiver), name)
	}
	argTypes := make([]typechecker.Type, len(args))
	for idx, arg := range args {
		argTypes[idx] = i.typeOfValue(arg)
	}
	method, err := i.classes.ResolveMethod(class, name, argTypes)
	if err != nil {
		var semErr *typechecker.SemanticError
		if errors.As(err, &semErr) {
			return nil, i.fault(NoSuchMethodOnReceiver, node, "%s", semErr.Message)
		}
		return nil, err
	}
	if method.Static {
		return method, nil
	}
	return i.dispatch(receiver, method.Key, node)
}

// bindArgs adapts argument values to declared parameter types.
func bindArgs(params []typechecker.Type, args []runtime.Value) []runtime.Value {
	out := make([]runtime.Value, len(args))
	for idx, arg := range args {
		out[idx] = arg
		if idx < len(params) {
			if p, ok := params[idx].(typechecker.PrimitiveType); ok && p.Kind == typechecker.Float {
				if v, ok := arg.(runtime.IntValue); ok {
					out[idx] = runtime.FloatValue{Val: float64(v.Val)}
				}
			}
		}
	}
	return out
}

// invoke runs a resolved method with an already dispatched receiver.
func (i *Interpreter) invoke(method *typechecker.MethodInfo, receiver runtime.Value, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	args = bindArgs(method.Params, args)
	if method.Native != nil {
		return i.callNative(method.Native, method.String(), receiver, args, node)
	}
	tracer().Debugf("call %s", method)
	env := runtime.NewEnvironment(nil)
	frame := &Frame{
		Method: method.String(),
		Class:  method.Owner,
		Env:    env,
	}
	if obj, ok := receiver.(*runtime.ObjectValue); ok {
		frame.Receiver = obj
	}
	for idx, name := range method.ParamNames {
		env.Define(name, args[idx])
	}
	if err := i.pushFrame(frame, node); err != nil {
		return nil, err
	}
	defer i.popFrame()

	err := i.execBlock(method.Decl.Body, env)
	var ret returnSignal
	switch {
	case err == nil:
		return runtime.VoidValue{}, nil
	case errors.As(err, &ret):
		return ret.value, nil
	default:
		return nil, err
	}
}

// callNative routes a call through the bridge. Faults raised by interpreted
// code re-entered from the host pass through unchanged.
func (i *Interpreter) callNative(fn bridge.NativeFunc, name string, receiver runtime.Value, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	result, err := bridge.Call(fn, i.callCtx, receiver, args)
	if err == nil {
		return result, nil
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return nil, err
	}
	fault := i.fault(NativeBridgeFailure, node, "%s", name)
	fault.Err = err
	return nil, fault
}
