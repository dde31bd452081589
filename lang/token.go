// Package lang implements the surface text query parser (spec §4.8):
// tokenizer, alias scoping, operand orientation, and DNF emission into
// pipeline.Builder calls.
package lang

import "fmt"

// TokenType identifies a lexical token kind in the weave surface grammar.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString          // "quoted string"
	TokenFilter          // |pipe delimited|
	TokenNegFilter       // !|pipe delimited|, negated filter literal (SUPPLEMENT)
	TokenKeyword         // #from, #as, #where, #pivot-to, ...
	TokenIdent           // bare identifiers, including qualified a.b
	TokenAnd             // and
	TokenOr              // or
	TokenEquals          // =
	TokenNotEquals       // !=
	TokenLParen
	TokenRParen
)

// Token is one lexical unit with its source column for error reporting
// (spec §4.8 errors: "the offending column where available").
type Token struct {
	Type   TokenType
	Value  string
	Column int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[col %d]", t.Column)
	case TokenString:
		return fmt.Sprintf("String[col %d]:%q", t.Column, t.Value)
	case TokenFilter:
		return fmt.Sprintf("Filter[col %d]:%q", t.Column, t.Value)
	case TokenNegFilter:
		return fmt.Sprintf("NegFilter[col %d]:%q", t.Column, t.Value)
	case TokenKeyword:
		return fmt.Sprintf("Keyword[col %d]:%s", t.Column, t.Value)
	case TokenIdent:
		return fmt.Sprintf("Ident[col %d]:%s", t.Column, t.Value)
	default:
		return fmt.Sprintf("Token[col %d]:%s", t.Column, t.Value)
	}
}
