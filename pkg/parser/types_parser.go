package parser

import (
	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// typeRef parses `Name` or `Name<Type, ...>` with the type-context flag set.
func (p *Parser) typeRef() (*ast.TypeRef, error) {
	p.typeDepth++
	defer func() { p.typeDepth-- }()

	start := p.peek()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, p.errorf("type")
	}
	var args []*ast.TypeRef
	if p.check("<") {
		p.advance()
		for {
			arg, err := p.typeRef()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(",") {
				break
			}
		}
		if err := p.closeTypeArgs(); err != nil {
			return nil, err
		}
	}
	ref := ast.NewTypeRef(name.Lexeme, args)
	p.finish(ref, start)
	return ref, nil
}

// closeTypeArgs consumes one `>`. A `>>` or `>>>` token is split so that the
// remaining `>` closes the enclosing argument list.
func (p *Parser) closeTypeArgs() error {
	tok := p.peek()
	if tok.Kind != TokenOperator || !p.InTypeContext() {
		return p.errorf(`">"`)
	}
	switch tok.Lexeme {
	case ">":
		p.advance()
	case ">>", ">>>":
		rest := tok.Lexeme[1:]
		p.tokens[p.pos] = Token{
			Kind:   TokenOperator,
			Lexeme: rest,
			Pos:    ast.Position{Line: tok.Pos.Line, Column: tok.Pos.Column + 1},
			End:    tok.End,
		}
	default:
		return p.errorf(`">"`)
	}
	return nil
}

// typeParams parses `<T, U>` declarations.
func (p *Parser) typeParams() ([]*ast.TypeParameter, error) {
	if !p.check("<") {
		return nil, nil
	}
	p.typeDepth++
	defer func() { p.typeDepth-- }()
	p.advance()
	var params []*ast.TypeParameter
	for {
		start := p.peek()
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		param := ast.NewTypeParameter(name.Lexeme)
		p.finish(param, start)
		params = append(params, param)
		if !p.match(",") {
			break
		}
	}
	if err := p.closeTypeArgs(); err != nil {
		return nil, err
	}
	return params, nil
}

// scanTypeShape checks, without consuming anything, whether the tokens at i
// spell a type reference. It returns the index just past the type, or -1.
func (p *Parser) scanTypeShape(i int) int {
	if p.peekAt(i).Kind != TokenIdentifier {
		return -1
	}
	i++
	depth := 0
	afterIdent := true
	for {
		tok := p.peekAt(i)
		switch {
		case afterIdent && tok.Is("<"):
			depth++
			i++
			if p.peekAt(i).Kind != TokenIdentifier {
				return -1
			}
			i++
		case depth > 0 && tok.Is(","):
			i++
			if p.peekAt(i).Kind != TokenIdentifier {
				return -1
			}
			i++
			afterIdent = true
			continue
		case depth > 0 && (tok.Is(">") || tok.Is(">>") || tok.Is(">>>")):
			closers := len(tok.Lexeme)
			if closers > depth {
				return -1
			}
			depth -= closers
			i++
			afterIdent = false
			continue
		default:
			if depth > 0 {
				return -1
			}
			return i
		}
		afterIdent = true
	}
}
