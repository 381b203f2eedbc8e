package parser

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
)

func (p *Parser) block() (*ast.Block, error) {
	start, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	stmts, err := p.statementsUntilBrace()
	if err != nil {
		return nil, err
	}
	blk := ast.NewBlock(stmts)
	p.finish(blk, start)
	return blk, nil
}

// statementsUntilBrace parses statements up to and including the closing `}`.
func (p *Parser) statementsUntilBrace() ([]ast.Statement, error) {
	stmts := []ast.Statement{}
	for !p.check("}") {
		if p.peek().Kind == TokenEOF {
			return nil, p.errorf(`"}"`)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) statement() (ast.Statement, error) {
	tok := p.peek()
	switch {
	case tok.Is("{"):
		return p.block()
	case tok.Is(";"):
		p.advance()
		stmt := ast.NewEmptyStatement()
		p.finish(stmt, tok)
		return stmt, nil
	case tok.Is("if"):
		return p.ifStatement()
	case tok.Is("while"):
		return p.whileStatement()
	case tok.Is("for"):
		return p.forStatement()
	case tok.Is("return"):
		return p.returnStatement()
	}
	var stmt ast.Statement
	var err error
	if p.startsLocalDeclaration() {
		stmt, err = p.localDeclaration()
	} else {
		stmt, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	p.finish(stmt, tok)
	return stmt, nil
}

// startsLocalDeclaration looks for `Type name` at the current position.
func (p *Parser) startsLocalDeclaration() bool {
	end := p.scanTypeShape(p.pos)
	return end >= 0 && p.peekAt(end).Kind == TokenIdentifier
}

func (p *Parser) localDeclaration() (*ast.LocalVarDeclaration, error) {
	start := p.peek()
	typ, err := p.typeRef()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.match("=") {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	decl := ast.NewLocalVarDeclaration(typ, name.Lexeme, init)
	p.finish(decl, start)
	return decl, nil
}

func (p *Parser) expressionStatement() (*ast.ExpressionStatement, error) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !isStatementExpression(expr) {
		return nil, &SyntaxError{Pos: start.Pos, Expected: "statement", Found: "expression " + ast.DumpExpression(expr)}
	}
	stmt := ast.NewExpressionStatement(expr)
	p.finish(stmt, start)
	return stmt, nil
}

func isStatementExpression(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.AssignmentExpression, *ast.MethodCall, *ast.NewExpression:
		return true
	case *ast.UnaryExpression:
		return e.IsIncrement()
	default:
		return false
	}
}

func (p *Parser) parenCondition() (ast.Expression, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) ifStatement() (*ast.IfStatement, error) {
	start := p.advance()
	cond, err := p.parenCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Statement
	if p.match("else") {
		if elseStmt, err = p.statement(); err != nil {
			return nil, err
		}
	}
	stmt := ast.NewIfStatement(cond, then, elseStmt)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) whileStatement() (*ast.WhileStatement, error) {
	start := p.advance()
	cond, err := p.parenCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewWhileStatement(cond, body)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) forStatement() (*ast.ForStatement, error) {
	start := p.advance()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var init ast.Statement
	if !p.check(";") {
		var err error
		if p.startsLocalDeclaration() {
			init, err = p.localDeclaration()
		} else {
			init, err = p.expressionStatement()
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	var cond ast.Expression
	if !p.check(";") {
		var err error
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	var update []ast.Expression
	if !p.check(")") {
		for {
			updStart := p.peek()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if !isStatementExpression(expr) {
				return nil, &SyntaxError{Pos: updStart.Pos, Expected: "statement", Found: "expression " + ast.DumpExpression(expr)}
			}
			update = append(update, expr)
			if !p.match(",") {
				break
			}
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForStatement(init, cond, update, body)
	p.finish(stmt, start)
	return stmt, nil
}

func (p *Parser) returnStatement() (*ast.ReturnStatement, error) {
	start := p.advance()
	var value ast.Expression
	if !p.check(";") {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	stmt := ast.NewReturnStatement(value)
	p.finish(stmt, start)
	return stmt, nil
}
