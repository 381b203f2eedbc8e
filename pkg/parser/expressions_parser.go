package parser

import (
	"strconv"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

// Binding power of infix operators; higher binds tighter.
var binaryPrecedence = map[string]int{
	"||":         1,
	"&&":         2,
	"|":          3,
	"^":          4,
	"&":          5,
	"==":         6,
	"!=":         6,
	"<":          7,
	">":          7,
	"<=":         7,
	">=":         7,
	"instanceof": 7,
	"<<":         8,
	">>":         8,
	">>>":        8,
	"+":          9,
	"-":          9,
	"*":          10,
	"/":          10,
	"%":          10,
}

func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

// assignment is right-associative: a = b = c assigns c to b, then to a.
func (p *Parser) assignment() (ast.Expression, error) {
	start := p.peek()
	lhs, err := p.ternary()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.Kind != TokenOperator || !assignmentOperators[tok.Lexeme] {
		return lhs, nil
	}
	target, ok := lhs.(ast.AssignmentTarget)
	if !ok {
		return nil, &SyntaxError{Pos: tok.Pos, Expected: "variable or field before " + strconv.Quote(tok.Lexeme), Found: ast.DumpExpression(lhs)}
	}
	p.advance()
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	expr := ast.NewAssignmentExpression(tok.Lexeme, target, rhs)
	p.finish(expr, start)
	return expr, nil
}

func (p *Parser) ternary() (ast.Expression, error) {
	start := p.peek()
	cond, err := p.binary(1)
	if err != nil {
		return nil, err
	}
	if !p.match("?") {
		return cond, nil
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	expr := ast.NewTernaryExpression(cond, then, elseExpr)
	p.finish(expr, start)
	return expr, nil
}

// binary is precedence climbing over left-associative infix operators.
func (p *Parser) binary(minPrec int) (ast.Expression, error) {
	start := p.peek()
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator && !tok.Is("instanceof") {
			return left, nil
		}
		prec, ok := binaryPrecedence[tok.Lexeme]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		if tok.Lexeme == "instanceof" {
			typ, err := p.typeRef()
			if err != nil {
				return nil, err
			}
			expr := ast.NewInstanceOfExpression(left, typ)
			p.finish(expr, start)
			left = expr
			continue
		}
		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		expr := ast.NewBinaryExpression(tok.Lexeme, left, right)
		p.finish(expr, start)
		left = expr
	}
}

func (p *Parser) unary() (ast.Expression, error) {
	start := p.peek()
	if start.Kind == TokenOperator {
		switch start.Lexeme {
		case "+", "-", "!", "~":
			p.advance()
			operand, err := p.unary()
			if err != nil {
				return nil, err
			}
			expr := ast.NewUnaryExpression(start.Lexeme, operand, false)
			p.finish(expr, start)
			return expr, nil
		case "++", "--":
			p.advance()
			operand, err := p.unary()
			if err != nil {
				return nil, err
			}
			if _, ok := operand.(ast.AssignmentTarget); !ok {
				return nil, &SyntaxError{Pos: start.Pos, Expected: "variable or field after " + strconv.Quote(start.Lexeme), Found: ast.DumpExpression(operand)}
			}
			expr := ast.NewUnaryExpression(start.Lexeme, operand, false)
			p.finish(expr, start)
			return expr, nil
		}
	}
	if start.Is("(") && p.isCast() {
		return p.cast()
	}
	return p.postfix()
}

// isCast decides `( Type ) operand` versus a parenthesized expression by
// looking at most one token past the closing parenthesis. Any token that can
// start a unary expression makes it a cast, so `(a) - b` is a cast of -b.
func (p *Parser) isCast() bool {
	end := p.scanTypeShape(p.pos + 1)
	if end < 0 || !p.peekAt(end).Is(")") {
		return false
	}
	next := p.peekAt(end + 1)
	switch next.Kind {
	case TokenIdentifier, TokenIntLiteral, TokenFloatLiteral, TokenStringLiteral, TokenBoolLiteral, TokenNullLiteral:
		return true
	case TokenKeyword:
		return next.Lexeme == "this" || next.Lexeme == "super" || next.Lexeme == "new"
	case TokenPunctuation:
		return next.Lexeme == "("
	case TokenOperator:
		switch next.Lexeme {
		case "!", "~", "+", "-", "++", "--":
			return true
		}
	}
	return false
}

func (p *Parser) cast() (ast.Expression, error) {
	start := p.advance()
	typ, err := p.typeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	expr := ast.NewCastExpression(typ, operand)
	p.finish(expr, start)
	return expr, nil
}

func (p *Parser) postfix() (ast.Expression, error) {
	start := p.peek()
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check("."):
			p.advance()
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			if p.check("(") {
				args, err := p.arguments()
				if err != nil {
					return nil, err
				}
				call := ast.NewMethodCall(expr, name.Lexeme, args)
				p.finish(call, start)
				expr = call
			} else {
				access := ast.NewFieldAccess(expr, name.Lexeme)
				p.finish(access, start)
				expr = access
			}
		case p.check("++") || p.check("--"):
			if _, ok := expr.(ast.AssignmentTarget); !ok {
				return nil, &SyntaxError{Pos: p.peek().Pos, Expected: "variable or field before " + strconv.Quote(p.peek().Lexeme), Found: ast.DumpExpression(expr)}
			}
			op := p.advance()
			post := ast.NewUnaryExpression(op.Lexeme, expr, true)
			p.finish(post, start)
			return post, nil
		default:
			if _, ok := expr.(*ast.SuperExpression); ok {
				return nil, p.errorf(`"." after super`)
			}
			return expr, nil
		}
	}
}

func (p *Parser) arguments() ([]ast.Expression, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	args := []ast.Expression{}
	if p.match(")") {
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	tok := p.peek()
	var expr ast.Expression
	switch tok.Kind {
	case TokenIntLiteral:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, &LexicalError{Pos: tok.Pos, Message: "integer literal " + tok.Lexeme + " out of range"}
		}
		expr = ast.NewIntegerLiteral(int32(value))
	case TokenFloatLiteral:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &LexicalError{Pos: tok.Pos, Message: "malformed float literal " + tok.Lexeme}
		}
		expr = ast.NewFloatLiteral(value)
	case TokenStringLiteral:
		p.advance()
		expr = ast.NewStringLiteral(tok.Lexeme)
	case TokenBoolLiteral:
		p.advance()
		expr = ast.NewBooleanLiteral(tok.Lexeme == "true")
	case TokenNullLiteral:
		p.advance()
		expr = ast.NewNullLiteral()
	case TokenIdentifier:
		p.advance()
		if p.check("(") {
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			expr = ast.NewMethodCall(nil, tok.Lexeme, args)
		} else {
			expr = ast.NewVariable(tok.Lexeme)
		}
	case TokenKeyword:
		switch tok.Lexeme {
		case "this":
			p.advance()
			expr = ast.NewThisExpression()
		case "super":
			p.advance()
			if !p.check(".") {
				return nil, p.errorf(`"." after super`)
			}
			expr = ast.NewSuperExpression()
		case "new":
			return p.newExpression()
		default:
			return nil, p.errorf("expression")
		}
	case TokenPunctuation:
		if tok.Lexeme != "(" {
			return nil, p.errorf("expression")
		}
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errorf("expression")
	}
	p.finish(expr, tok)
	return expr, nil
}

func (p *Parser) newExpression() (ast.Expression, error) {
	start := p.advance()
	typ, err := p.typeRef()
	if err != nil {
		return nil, err
	}
	args, err := p.arguments()
	if err != nil {
		return nil, err
	}
	expr := ast.NewNewExpression(typ, args)
	p.finish(expr, start)
	return expr, nil
}
