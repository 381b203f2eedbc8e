package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

func lexemes(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == TokenEOF {
			break
		}
		out = append(out, tok.Lexeme)
	}
	return out
}

func TestTokenizeOperatorsMaximalMunch(t *testing.T) {
	tokens, err := Tokenize("a>>>=b>>c<=d!=e++ -- &&|| <<= ? : ~")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ">>>=", "b", ">>", "c", "<=", "d", "!=", "e", "++", "--", "&&", "||", "<<=", "?", ":", "~"}, lexemes(tokens))
}

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize(`class X extends Y { int x = 12; float f = 1.5; String s = "a\tb"; boolean b = true; Object o = null; }`)
	require.NoError(t, err)
	kinds := map[string]TokenKind{}
	for _, tok := range tokens {
		kinds[tok.Lexeme] = tok.Kind
	}
	assert.Equal(t, TokenKeyword, kinds["class"])
	assert.Equal(t, TokenKeyword, kinds["extends"])
	assert.Equal(t, TokenIdentifier, kinds["int"])
	assert.Equal(t, TokenIntLiteral, kinds["12"])
	assert.Equal(t, TokenFloatLiteral, kinds["1.5"])
	assert.Equal(t, TokenStringLiteral, kinds["a\tb"])
	assert.Equal(t, TokenBoolLiteral, kinds["true"])
	assert.Equal(t, TokenNullLiteral, kinds["null"])
	assert.Equal(t, TokenPunctuation, kinds["{"])
	assert.Equal(t, TokenOperator, kinds[";"])
	assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind)
}

func TestTokenizeSkipsComments(t *testing.T) {
	tokens, err := Tokenize("a // line comment\n/* block\ncomment */ b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lexemes(tokens))
	assert.Equal(t, ast.Position{Line: 3, Column: 12}, tokens[1].Pos)
}

func TestTokenizeSingleQuotedString(t *testing.T) {
	tokens, err := Tokenize(`'it\'s'`)
	require.NoError(t, err)
	assert.Equal(t, TokenStringLiteral, tokens[0].Kind)
	assert.Equal(t, "it's", tokens[0].Lexeme)
}

func TestTokenizeLexicalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		pos  ast.Position
	}{
		{"unrecognized character", "int x = 1 # 2;", ast.Position{Line: 1, Column: 11}},
		{"unterminated string", "\n  \"abc", ast.Position{Line: 2, Column: 3}},
		{"newline in string", "\"ab\ncd\"", ast.Position{Line: 1, Column: 1}},
		{"bad escape", `"a\qb"`, ast.Position{Line: 1, Column: 3}},
		{"unterminated comment", "a /* never closed", ast.Position{Line: 1, Column: 3}},
		{"integer overflow", "x = 2147483648;", ast.Position{Line: 1, Column: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.src)
			var lexErr *LexicalError
			require.True(t, errors.As(err, &lexErr), "want LexicalError, got %v", err)
			assert.Equal(t, tc.pos, lexErr.Pos)
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("class A {\n  int x;\n}")
	require.NoError(t, err)
	assert.Equal(t, ast.Position{Line: 1, Column: 1}, tokens[0].Pos)
	assert.Equal(t, ast.Position{Line: 2, Column: 3}, tokens[3].Pos)
	assert.Equal(t, ast.Position{Line: 2, Column: 7}, tokens[4].Pos)
}
