package parser

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

func tracer() tracing.Trace {
	return tracing.Select("mj.syntax")
}

// SyntaxError reports the first malformed construct.
type SyntaxError struct {
	Pos      ast.Position
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// Parser is a recursive-descent parser over a token slice. It never
// backtracks: ambiguities are resolved by scanning ahead over a bounded window
// of tokens without consuming them.
type Parser struct {
	tokens []Token
	pos    int
	// typeDepth is non-zero while a type reference is being parsed; inside it
	// `<` opens an argument list and `>>`/`>>>` are split into single `>`.
	typeDepth int
	className string
}

// New prepares a parser over already scanned tokens.
func New(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}
	return &Parser{tokens: tokens}
}

// ParseCompilationUnit tokenizes and parses a whole source file.
func ParseCompilationUnit(src string) (*ast.CompilationUnit, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	unit, err := New(tokens).CompilationUnit()
	if err != nil {
		return nil, err
	}
	tracer().Infof("parsed %d imports, %d classes", len(unit.Imports), len(unit.Classes))
	return unit, nil
}

// InTypeContext reports whether the parser is inside a type reference.
func (p *Parser) InTypeContext() bool {
	return p.typeDepth > 0
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(i int) Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) check(text string) bool {
	return p.peek().Is(text)
}

func (p *Parser) match(text string) bool {
	if p.check(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(text string) (Token, error) {
	if !p.check(text) {
		return Token{}, p.errorf(fmt.Sprintf("%q", text))
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier() (Token, error) {
	if p.peek().Kind != TokenIdentifier {
		return Token{}, p.errorf("identifier")
	}
	return p.advance(), nil
}

func (p *Parser) errorf(expected string) error {
	tok := p.peek()
	tracer().Debugf("syntax error at %s: expected %s, found %s", tok.Pos, expected, tok)
	return &SyntaxError{Pos: tok.Pos, Expected: expected, Found: tok.String()}
}

func (p *Parser) finish(node ast.Node, start Token) {
	ast.SetSpan(node, ast.Span{Start: start.Pos, End: p.previous().End})
}

func (p *Parser) expectEOF() error {
	if p.peek().Kind != TokenEOF {
		return p.errorf("end of input")
	}
	return nil
}
