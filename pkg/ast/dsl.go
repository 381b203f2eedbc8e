package ast

// Helpers for building trees in tests.

func Ty(name string, args ...*TypeRef) *TypeRef {
	return NewTypeRef(name, args)
}

func Var(name string) *Variable {
	return NewVariable(name)
}

func Int(value int32) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func This() *ThisExpression {
	return NewThisExpression()
}

func Field(target Expression, name string) *FieldAccess {
	return NewFieldAccess(target, name)
}

func Call(target Expression, name string, args ...Expression) *MethodCall {
	return NewMethodCall(target, name, args)
}

func New(typ *TypeRef, args ...Expression) *NewExpression {
	return NewNewExpression(typ, args)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand, false)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression("=", target, value)
}

func Cond(cond, then, elseExpr Expression) *TernaryExpression {
	return NewTernaryExpression(cond, then, elseExpr)
}

func Cast(typ *TypeRef, operand Expression) *CastExpression {
	return NewCastExpression(typ, operand)
}

func Blk(stmts ...Statement) *Block {
	return NewBlock(stmts)
}

func Local(typ *TypeRef, name string, init Expression) *LocalVarDeclaration {
	return NewLocalVarDeclaration(typ, name, init)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Do(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Param(typ *TypeRef, name string) *Parameter {
	return NewParameter(typ, name)
}

// MainClass wraps statements into `class name { static void main() { ... } }`.
func MainClass(name string, stmts ...Statement) *ClassDeclaration {
	cls := NewClassDeclaration(name, nil, nil)
	cls.Methods = []*MethodDeclaration{
		NewMethodDeclaration(Modifiers{Static: true}, nil, nil, "main", nil, NewBlock(stmts)),
	}
	return cls
}
