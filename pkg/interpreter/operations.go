package interpreter

import (
	"math"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

func (i *Interpreter) evalBinary(b *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	if b.Operator == "&&" || b.Operator == "||" {
		left, err := i.logicalOperand(b.Left, b, env)
		if err != nil {
			return nil, err
		}
		if (b.Operator == "&&") != left {
			return runtime.BoolValue{Val: left}, nil
		}
		right, err := i.logicalOperand(b.Right, b, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: right}, nil
	}
	left, err := i.eval(b.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(b.Right, env)
	if err != nil {
		return nil, err
	}
	if b.Operator == "+" && typechecker.IsString(i.res.TypeOf(b)) {
		return concat(left, right), nil
	}
	return i.binaryOp(b.Operator, left, right, b)
}

// concat is String +; null operands render as "null".
func concat(left, right runtime.Value) runtime.Value {
	return runtime.StringValue{Val: runtime.Format(left) + runtime.Format(right)}
}

func (i *Interpreter) logicalOperand(expr ast.Expression, op *ast.BinaryExpression, env *runtime.Environment) (bool, error) {
	value, err := i.eval(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := value.(runtime.BoolValue)
	if !ok {
		return false, i.invalidOperands(op.Operator, value, nil, op)
	}
	return b.Val, nil
}

func (i *Interpreter) invalidOperands(op string, left, right runtime.Value, node ast.Node) error {
	if right == nil {
		return i.fault(InvalidOperation, node, "operator %s cannot be applied to %s", op, runtimeTypeName(left))
	}
	return i.fault(InvalidOperation, node, "operator %s cannot be applied to %s and %s", op, runtimeTypeName(left), runtimeTypeName(right))
}

// binaryOp applies a non-short-circuit operator to evaluated operands.
func (i *Interpreter) binaryOp(op string, left, right runtime.Value, node ast.Node) (runtime.Value, error) {
	switch op {
	case "==":
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case "+":
		_, ls := left.(runtime.StringValue)
		_, rs := right.(runtime.StringValue)
		if ls || rs {
			return concat(left, right), nil
		}
	}

	if l, ok := left.(runtime.BoolValue); ok {
		r, ok := right.(runtime.BoolValue)
		if !ok {
			return nil, i.invalidOperands(op, left, right, node)
		}
		switch op {
		case "&":
			return runtime.BoolValue{Val: l.Val && r.Val}, nil
		case "|":
			return runtime.BoolValue{Val: l.Val || r.Val}, nil
		case "^":
			return runtime.BoolValue{Val: l.Val != r.Val}, nil
		}
		return nil, i.invalidOperands(op, left, right, node)
	}

	li, lInt := left.(runtime.IntValue)
	ri, rInt := right.(runtime.IntValue)
	if lInt && rInt {
		return i.intOp(op, li.Val, ri.Val, node)
	}
	lf, lNum := toFloat(left)
	rf, rNum := toFloat(right)
	if !lNum || !rNum {
		return nil, i.invalidOperands(op, left, right, node)
	}
	return i.floatOp(op, lf, rf, left, right, node)
}

func toFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntValue:
		return float64(n.Val), true
	case runtime.FloatValue:
		return n.Val, true
	}
	return 0, false
}

// intOp is 32-bit two's complement arithmetic; overflow wraps.
func (i *Interpreter) intOp(op string, l, r int32, node ast.Node) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.IntValue{Val: l + r}, nil
	case "-":
		return runtime.IntValue{Val: l - r}, nil
	case "*":
		return runtime.IntValue{Val: l * r}, nil
	case "/":
		if r == 0 {
			return nil, i.fault(DivisionByZero, node, "/ by zero")
		}
		return runtime.IntValue{Val: l / r}, nil
	case "%":
		if r == 0 {
			return nil, i.fault(DivisionByZero, node, "%% by zero")
		}
		return runtime.IntValue{Val: l % r}, nil
	case "&":
		return runtime.IntValue{Val: l & r}, nil
	case "|":
		return runtime.IntValue{Val: l | r}, nil
	case "^":
		return runtime.IntValue{Val: l ^ r}, nil
	case "<<":
		return runtime.IntValue{Val: l << (uint32(r) & 31)}, nil
	case ">>":
		return runtime.IntValue{Val: l >> (uint32(r) & 31)}, nil
	case ">>>":
		return runtime.IntValue{Val: int32(uint32(l) >> (uint32(r) & 31))}, nil
	case "<":
		return runtime.BoolValue{Val: l < r}, nil
	case "<=":
		return runtime.BoolValue{Val: l <= r}, nil
	case ">":
		return runtime.BoolValue{Val: l > r}, nil
	case ">=":
		return runtime.BoolValue{Val: l >= r}, nil
	}
	return nil, i.invalidOperands(op, runtime.IntValue{Val: l}, runtime.IntValue{Val: r}, node)
}

func (i *Interpreter) floatOp(op string, l, r float64, left, right runtime.Value, node ast.Node) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.FloatValue{Val: l + r}, nil
	case "-":
		return runtime.FloatValue{Val: l - r}, nil
	case "*":
		return runtime.FloatValue{Val: l * r}, nil
	case "/":
		return runtime.FloatValue{Val: l / r}, nil
	case "%":
		return runtime.FloatValue{Val: math.Mod(l, r)}, nil
	case "<":
		return runtime.BoolValue{Val: l < r}, nil
	case "<=":
		return runtime.BoolValue{Val: l <= r}, nil
	case ">":
		return runtime.BoolValue{Val: l > r}, nil
	case ">=":
		return runtime.BoolValue{Val: l >= r}, nil
	}
	return nil, i.invalidOperands(op, left, right, node)
}

func (i *Interpreter) evalUnary(u *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	if u.IsIncrement() {
		return i.evalIncrement(u, env)
	}
	operand, err := i.eval(u.Operand, env)
	if err != nil {
		return nil, err
	}
	switch v := operand.(type) {
	case runtime.IntValue:
		switch u.Operator {
		case "-":
			return runtime.IntValue{Val: -v.Val}, nil
		case "+":
			return v, nil
		case "~":
			return runtime.IntValue{Val: ^v.Val}, nil
		}
	case runtime.FloatValue:
		switch u.Operator {
		case "-":
			return runtime.FloatValue{Val: -v.Val}, nil
		case "+":
			return v, nil
		}
	case runtime.BoolValue:
		if u.Operator == "!" {
			return runtime.BoolValue{Val: !v.Val}, nil
		}
	}
	return nil, i.invalidOperands(u.Operator, operand, nil, u)
}

func (i *Interpreter) evalIncrement(u *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	target, ok := u.Operand.(ast.AssignmentTarget)
	if !ok {
		return nil, i.fault(InvalidOperation, u, "%s needs a variable or field", u.Operator)
	}
	p, err := i.targetPlace(target, env)
	if err != nil {
		return nil, err
	}
	old, err := p.get()
	if err != nil {
		return nil, err
	}
	op := u.Operator[:1]
	updated, err := i.binaryOp(op, old, runtime.IntValue{Val: 1}, u)
	if err != nil {
		return nil, err
	}
	if err := p.set(updated); err != nil {
		return nil, err
	}
	if u.Postfix {
		return old, nil
	}
	return updated, nil
}
