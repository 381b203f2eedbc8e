package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenKeyword
	TokenIntLiteral
	TokenFloatLiteral
	TokenStringLiteral
	TokenBoolLiteral
	TokenNullLiteral
	TokenOperator
	TokenPunctuation
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenIntLiteral:
		return "integer literal"
	case TokenFloatLiteral:
		return "float literal"
	case TokenStringLiteral:
		return "string literal"
	case TokenBoolLiteral:
		return "boolean literal"
	case TokenNullLiteral:
		return "null"
	case TokenOperator:
		return "operator"
	case TokenPunctuation:
		return "punctuation"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one lexeme with its kind and the position of its first character.
// For string literals Lexeme holds the decoded value.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    ast.Position
	End    ast.Position
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenStringLiteral:
		return strconv.Quote(t.Lexeme)
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

// Is reports whether the token is an operator, punctuation, or keyword with
// the given text.
func (t Token) Is(text string) bool {
	switch t.Kind {
	case TokenOperator, TokenPunctuation, TokenKeyword:
		return t.Lexeme == text
	default:
		return false
	}
}

var keywords = map[string]bool{
	"import":     true,
	"class":      true,
	"extends":    true,
	"static":     true,
	"void":       true,
	"new":        true,
	"return":     true,
	"if":         true,
	"else":       true,
	"while":      true,
	"for":        true,
	"this":       true,
	"super":      true,
	"instanceof": true,
	"public":     true,
	"private":    true,
	"protected":  true,
	"final":      true,
}

// Longest first so that maximal munch falls out of a linear scan.
var operators = []string{
	">>>=",
	"<<=", ">>=", ">>>",
	"++", "--", "&&", "||", "==", "!=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"+", "-", "*", "/", "%", "<", ">", "!", "~", "&", "|", "^", "=", "?", ":", ".", ",", ";",
}

const punctuation = "{}()[]"

// LexicalError reports a malformed token.
type LexicalError struct {
	Pos     ast.Position
	Message string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

type lexer struct {
	src    string
	offset int
	line   int
	column int
	tokens []Token
}

// Tokenize scans the whole source into tokens, ending with a TokenEOF.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, column: 1}
	for {
		if err := lx.skipTrivia(); err != nil {
			return nil, err
		}
		if lx.offset >= len(lx.src) {
			pos := lx.position()
			lx.tokens = append(lx.tokens, Token{Kind: TokenEOF, Pos: pos, End: pos})
			return lx.tokens, nil
		}
		if err := lx.next(); err != nil {
			return nil, err
		}
	}
}

func (lx *lexer) position() ast.Position {
	return ast.Position{Line: lx.line, Column: lx.column}
}

func (lx *lexer) peekRune(ahead int) rune {
	off := lx.offset
	for i := 0; i < ahead; i++ {
		if off >= len(lx.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(lx.src[off:])
		off += size
	}
	if off >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[off:])
	return r
}

func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
	lx.offset += size
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r
}

func (lx *lexer) skipTrivia() error {
	for lx.offset < len(lx.src) {
		r := lx.peekRune(0)
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '/' && lx.peekRune(1) == '/':
			for lx.offset < len(lx.src) && lx.peekRune(0) != '\n' {
				lx.advance()
			}
		case r == '/' && lx.peekRune(1) == '*':
			start := lx.position()
			lx.advance()
			lx.advance()
			closed := false
			for lx.offset < len(lx.src) {
				if lx.peekRune(0) == '*' && lx.peekRune(1) == '/' {
					lx.advance()
					lx.advance()
					closed = true
					break
				}
				lx.advance()
			}
			if !closed {
				return &LexicalError{Pos: start, Message: "unterminated block comment"}
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) emit(kind TokenKind, lexeme string, start ast.Position) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Lexeme: lexeme, Pos: start, End: lx.position()})
}

func (lx *lexer) next() error {
	start := lx.position()
	r := lx.peekRune(0)
	switch {
	case isIdentStart(r):
		lx.scanWord(start)
		return nil
	case unicode.IsDigit(r):
		return lx.scanNumber(start)
	case r == '"' || r == '\'':
		return lx.scanString(start, r)
	case strings.ContainsRune(punctuation, r):
		lx.advance()
		lx.emit(TokenPunctuation, string(r), start)
		return nil
	}
	rest := lx.src[lx.offset:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				lx.advance()
			}
			lx.emit(TokenOperator, op, start)
			return nil
		}
	}
	return &LexicalError{Pos: start, Message: fmt.Sprintf("unrecognized character %q", r)}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (lx *lexer) scanWord(start ast.Position) {
	begin := lx.offset
	for lx.offset < len(lx.src) && isIdentPart(lx.peekRune(0)) {
		lx.advance()
	}
	word := lx.src[begin:lx.offset]
	switch {
	case word == "true" || word == "false":
		lx.emit(TokenBoolLiteral, word, start)
	case word == "null":
		lx.emit(TokenNullLiteral, word, start)
	case keywords[word]:
		lx.emit(TokenKeyword, word, start)
	default:
		lx.emit(TokenIdentifier, word, start)
	}
}

func (lx *lexer) scanNumber(start ast.Position) error {
	begin := lx.offset
	for lx.offset < len(lx.src) && unicode.IsDigit(lx.peekRune(0)) {
		lx.advance()
	}
	kind := TokenIntLiteral
	if lx.peekRune(0) == '.' && unicode.IsDigit(lx.peekRune(1)) {
		kind = TokenFloatLiteral
		lx.advance()
		for lx.offset < len(lx.src) && unicode.IsDigit(lx.peekRune(0)) {
			lx.advance()
		}
	}
	if isIdentStart(lx.peekRune(0)) {
		return &LexicalError{Pos: lx.position(), Message: fmt.Sprintf("unexpected %q after number", lx.peekRune(0))}
	}
	text := lx.src[begin:lx.offset]
	if kind == TokenIntLiteral {
		if _, err := strconv.ParseInt(text, 10, 32); err != nil {
			return &LexicalError{Pos: start, Message: fmt.Sprintf("integer literal %s out of range", text)}
		}
	}
	lx.emit(kind, text, start)
	return nil
}

func (lx *lexer) scanString(start ast.Position, quote rune) error {
	lx.advance()
	var sb strings.Builder
	for {
		if lx.offset >= len(lx.src) {
			return &LexicalError{Pos: start, Message: "unterminated string literal"}
		}
		r := lx.peekRune(0)
		switch r {
		case quote:
			lx.advance()
			lx.emit(TokenStringLiteral, sb.String(), start)
			return nil
		case '\n':
			return &LexicalError{Pos: start, Message: "unterminated string literal"}
		case '\\':
			escPos := lx.position()
			lx.advance()
			if lx.offset >= len(lx.src) {
				return &LexicalError{Pos: start, Message: "unterminated string literal"}
			}
			esc := lx.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '"', '\'':
				sb.WriteRune(esc)
			default:
				return &LexicalError{Pos: escPos, Message: fmt.Sprintf("invalid escape sequence \\%c", esc)}
			}
		default:
			sb.WriteRune(lx.advance())
		}
	}
}
