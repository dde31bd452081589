package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexBasicQuery(t *testing.T) {
	tokens, err := NewLexer(`#from "json:a.json" #as a #pivot-to "json:b.json" #as b #where a.id = b.uid`).Lex()
	assert.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenKeyword)
	assert.Contains(t, types, TokenString)
	assert.Contains(t, types, TokenIdent)
	assert.Contains(t, types, TokenEquals)
	assert.Equal(t, TokenEOF, types[len(types)-1])
}

func TestLexStringEscapes(t *testing.T) {
	tokens, err := NewLexer(`#from "a\"b\\c" #as x`).Lex()
	assert.NoError(t, err)
	assert.Equal(t, `a"b\c`, tokens[1].Value)
}

func TestLexFilterLiteral(t *testing.T) {
	tokens, err := NewLexer(`#filter |name contains \|pipe\||`).Lex()
	assert.NoError(t, err)
	assert.Equal(t, TokenFilter, tokens[1].Type)
	assert.Equal(t, `name contains |pipe|`, tokens[1].Value)
}

func TestLexNegatedFilterLiteral(t *testing.T) {
	tokens, err := NewLexer(`#filter !|active|`).Lex()
	assert.NoError(t, err)
	assert.Equal(t, TokenNegFilter, tokens[1].Type)
	assert.Equal(t, "active", tokens[1].Value)
}

func TestLexAndOrKeywords(t *testing.T) {
	tokens, err := NewLexer(`a.x = b.y and a.z != b.w or (a.q = b.r)`).Lex()
	assert.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenAnd)
	assert.Contains(t, types, TokenOr)
	assert.Contains(t, types, TokenNotEquals)
	assert.Contains(t, types, TokenLParen)
	assert.Contains(t, types, TokenRParen)
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	_, err := NewLexer(`#from "unterminated`).Lex()
	assert.Error(t, err)
}

func TestLexUnexpectedCharacterErrors(t *testing.T) {
	_, err := NewLexer(`a.x % b.y`).Lex()
	assert.Error(t, err)
}
