package interpreter

import (
	"errors"
	"fmt"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

func (i *Interpreter) evalNew(ne *ast.NewExpression, env *runtime.Environment) (runtime.Value, error) {
	ctor := i.res.News[ne]
	if ctor == nil {
		return nil, i.fault(InvalidOperation, ne, "unresolved constructor for %s", ne.Type.Name)
	}
	args, err := i.evalArgs(ne.Args, env)
	if err != nil {
		return nil, err
	}
	var typeArgs []string
	if t, ok := i.res.TypeOf(ne).(typechecker.ClassType); ok {
		for _, arg := range t.Args {
			typeArgs = append(typeArgs, arg.String())
		}
	}
	return i.instantiate(ctor, args, typeArgs, ne)
}

// instantiate allocates an instance of ctor's class with every field at its
// default value, then runs the constructor chain.
func (i *Interpreter) instantiate(ctor *typechecker.ConstructorInfo, args []runtime.Value, typeArgs []string, node ast.Node) (*runtime.ObjectValue, error) {
	class := ctor.Owner
	obj := i.heap.Allocate(class.Name, typeArgs)
	for _, f := range class.InstanceFields() {
		obj.Fields[f.Name] = defaultValue(f.Type)
	}
	tracer().Debugf("new %s@%d", obj.Class, obj.ID)
	if err := i.runConstructor(ctor, obj, args, node); err != nil {
		return nil, err
	}
	return obj, nil
}

// runConstructor runs the superclass constructor first, then the body.
func (i *Interpreter) runConstructor(ctor *typechecker.ConstructorInfo, obj *runtime.ObjectValue, args []runtime.Value, node ast.Node) error {
	args = bindArgs(ctor.Params, args)
	switch {
	case ctor.Native != nil:
		_, err := i.callNative(ctor.Native, ctor.String(), obj, args, node)
		return err
	case ctor.Decl == nil:
		if ctor.SuperCtor == nil {
			return nil
		}
		return i.runConstructor(ctor.SuperCtor, obj, nil, node)
	}

	env := runtime.NewEnvironment(nil)
	frame := &Frame{
		Method:   ctor.String(),
		Class:    ctor.Owner,
		Receiver: obj,
		Env:      env,
	}
	for idx, name := range ctor.ParamNames {
		env.Define(name, args[idx])
	}
	if err := i.pushFrame(frame, node); err != nil {
		return err
	}
	defer i.popFrame()

	if ctor.SuperCtor != nil {
		var superArgs []runtime.Value
		call := ctor.Decl.SuperCall
		if call != nil && !call.Implicit {
			var err error
			if superArgs, err = i.evalArgs(call.Args, env); err != nil {
				return err
			}
		}
		var superNode ast.Node = ctor.Decl
		if call != nil {
			superNode = call
		}
		if err := i.runConstructor(ctor.SuperCtor, obj, superArgs, superNode); err != nil {
			return err
		}
	}
	if ctor.Decl.Body == nil {
		return nil
	}
	err := i.execBlock(ctor.Decl.Body, env)
	var ret returnSignal
	if errors.As(err, &ret) {
		return nil
	}
	return err
}

// NewObject lets native code create instances. The constructor is chosen
// from the runtime types of args.
func (i *Interpreter) NewObject(className string, args ...runtime.Value) (runtime.Value, error) {
	class, ok := i.classes.Lookup(className)
	if !ok {
		return nil, fmt.Errorf("cannot find class %s", className)
	}
	argTypes := make([]typechecker.Type, len(args))
	for idx, arg := range args {
		argTypes[idx] = i.typeOfValue(arg)
	}
	ctor, err := i.classes.ResolveConstructor(class, argTypes)
	if err != nil {
		return nil, err
	}
	return i.instantiate(ctor, args, nil, nil)
}
