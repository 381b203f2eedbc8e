package interpreter

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// beforeStatement accounts one step and gives the hook a chance to pause or
// stop the run.
func (i *Interpreter) beforeStatement(stmt ast.Statement, env *runtime.Environment) error {
	i.steps++
	if i.maxSteps > 0 && i.steps > i.maxSteps {
		return i.fault(Interrupted, stmt, "step limit of %d reached", i.maxSteps)
	}
	frame := i.currentFrame()
	if frame != nil {
		frame.Pos = ast.Pos(stmt)
		frame.Env = env
	}
	if _, isBlock := stmt.(*ast.Block); isBlock || i.hook == nil {
		return nil
	}
	if err := i.hook(frame, stmt); err != nil {
		if _, ok := err.(*RuntimeError); ok {
			return err
		}
		rtErr := i.fault(Interrupted, stmt, "stopped")
		rtErr.Err = err
		return rtErr
	}
	return nil
}

func (i *Interpreter) exec(stmt ast.Statement, env *runtime.Environment) error {
	if err := i.beforeStatement(stmt, env); err != nil {
		return err
	}
	switch s := stmt.(type) {
	case *ast.Block:
		return i.execBlock(s, runtime.NewEnvironment(env))
	case *ast.EmptyStatement:
		return nil
	case *ast.LocalVarDeclaration:
		var value runtime.Value
		if s.Init != nil {
			v, err := i.eval(s.Init, env)
			if err != nil {
				return err
			}
			value = v
		} else {
			value = defaultValue(i.res.Locals[s])
		}
		env.Define(s.Name, value)
		return nil
	case *ast.ExpressionStatement:
		_, err := i.eval(s.Expression, env)
		return err
	case *ast.IfStatement:
		cond, err := i.condition(s.Condition, env)
		if err != nil {
			return err
		}
		if cond {
			return i.exec(s.Then, runtime.NewEnvironment(env))
		}
		if s.Else != nil {
			return i.exec(s.Else, runtime.NewEnvironment(env))
		}
		return nil
	case *ast.WhileStatement:
		for {
			cond, err := i.condition(s.Condition, env)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
			if err := i.exec(s.Body, runtime.NewEnvironment(env)); err != nil {
				return err
			}
		}
	case *ast.ForStatement:
		return i.execFor(s, runtime.NewEnvironment(env))
	case *ast.ReturnStatement:
		if s.Value == nil {
			return returnSignal{value: runtime.VoidValue{}}
		}
		value, err := i.eval(s.Value, env)
		if err != nil {
			return err
		}
		return returnSignal{value: value}
	default:
		return i.fault(InvalidOperation, stmt, "unsupported statement %T", stmt)
	}
}

func (i *Interpreter) execBlock(block *ast.Block, env *runtime.Environment) error {
	for _, stmt := range block.Statements {
		if err := i.exec(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execFor(s *ast.ForStatement, env *runtime.Environment) error {
	if s.Init != nil {
		if err := i.exec(s.Init, env); err != nil {
			return err
		}
	}
	for {
		if s.Condition != nil {
			cond, err := i.condition(s.Condition, env)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
		}
		if err := i.exec(s.Body, runtime.NewEnvironment(env)); err != nil {
			return err
		}
		for _, update := range s.Update {
			if _, err := i.eval(update, env); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) condition(expr ast.Expression, env *runtime.Environment) (bool, error) {
	value, err := i.eval(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := value.(runtime.BoolValue)
	if !ok {
		return false, i.fault(InvalidOperation, expr, "condition is %s, not boolean", runtime.Describe(value))
	}
	return b.Val, nil
}
