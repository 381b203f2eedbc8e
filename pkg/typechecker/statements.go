package typechecker

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
)

func (c *Checker) block(b *ast.Block) error {
	c.pushScope()
	defer c.popScope()
	for _, stmt := range b.Statements {
		if err := c.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// scoped checks the body of a control statement in its own scope.
func (c *Checker) scoped(stmt ast.Statement) error {
	c.pushScope()
	defer c.popScope()
	return c.statement(stmt)
}

func (c *Checker) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return c.block(s)
	case *ast.EmptyStatement:
		return nil
	case *ast.LocalVarDeclaration:
		return c.localDeclaration(s)
	case *ast.ExpressionStatement:
		_, err := c.expr(s.Expression)
		return err
	case *ast.IfStatement:
		if err := c.condition(s.Condition); err != nil {
			return err
		}
		if err := c.scoped(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return c.scoped(s.Else)
		}
		return nil
	case *ast.WhileStatement:
		if err := c.condition(s.Condition); err != nil {
			return err
		}
		return c.scoped(s.Body)
	case *ast.ForStatement:
		return c.forStatement(s)
	case *ast.ReturnStatement:
		return c.returnStatement(s)
	default:
		return semanticErrorf(TypeMismatch, stmt, "unsupported statement %T", stmt)
	}
}

func (c *Checker) localDeclaration(s *ast.LocalVarDeclaration) error {
	typ, err := c.resolveType(s.Type)
	if err != nil {
		return err
	}
	if s.Init != nil {
		initType, err := c.expr(s.Init)
		if err != nil {
			return err
		}
		if err := c.coerce(s.Init, initType, typ); err != nil {
			return err
		}
	}
	c.res.Locals[s] = typ
	return c.declare(s.Name, typ, s)
}

func (c *Checker) forStatement(s *ast.ForStatement) error {
	c.pushScope()
	defer c.popScope()
	if s.Init != nil {
		if err := c.statement(s.Init); err != nil {
			return err
		}
	}
	if s.Condition != nil {
		if err := c.condition(s.Condition); err != nil {
			return err
		}
	}
	for _, update := range s.Update {
		if _, err := c.expr(update); err != nil {
			return err
		}
	}
	return c.scoped(s.Body)
}

func (c *Checker) returnStatement(s *ast.ReturnStatement) error {
	_, void := c.ctx.returnType.(VoidType)
	if s.Value == nil {
		if !void {
			return semanticErrorf(TypeMismatch, s, "missing return value of type %s", c.ctx.returnType)
		}
		return nil
	}
	if void {
		if c.ctx.ctor {
			return semanticErrorf(TypeMismatch, s, "constructor cannot return a value")
		}
		return semanticErrorf(TypeMismatch, s, "void method cannot return a value")
	}
	typ, err := c.expr(s.Value)
	if err != nil {
		return err
	}
	return c.coerce(s.Value, typ, c.ctx.returnType)
}

// condition checks a control-flow condition is boolean.
func (c *Checker) condition(expr ast.Expression) error {
	typ, err := c.expr(expr)
	if err != nil {
		return err
	}
	if IsDynamic(typ) {
		c.res.Conversions[expr] = Conversion{Kind: ConvertCheck, Target: BooleanType}
		return nil
	}
	if !isPrimitive(typ, Boolean) {
		return semanticErrorf(TypeMismatch, expr, "condition must be boolean, found %s", typ)
	}
	return nil
}

// completesAbruptly reports whether control can never fall off the end of
// stmt.
func completesAbruptly(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.Block:
		for _, inner := range s.Statements {
			if completesAbruptly(inner) {
				return true
			}
		}
		return false
	case *ast.IfStatement:
		return s.Else != nil && completesAbruptly(s.Then) && completesAbruptly(s.Else)
	case *ast.WhileStatement:
		return isTrueLiteral(s.Condition)
	case *ast.ForStatement:
		return s.Condition == nil || isTrueLiteral(s.Condition)
	default:
		return false
	}
}

func isTrueLiteral(expr ast.Expression) bool {
	lit, ok := expr.(*ast.BooleanLiteral)
	return ok && lit.Value
}
