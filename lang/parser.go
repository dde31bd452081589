package lang

import (
	"fmt"

	"github.com/wbrown/weaveq/werrors"
)

// parser walks a token stream into a sequence of stageSpecs (spec §4.8
// grammar: query := seed (pivot | join)+).
type parser struct {
	tokens []Token
	pos    int
}

func newParser(tokens []Token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(col int, format string, args ...interface{}) error {
	return werrors.NewTextQueryCompileError(fmt.Sprintf(format, args...), col, nil)
}

// expectKeyword consumes a TokenKeyword with the exact value kw.
func (p *parser) expectKeyword(kw string) (Token, error) {
	t := p.peek()
	if t.Type != TokenKeyword || t.Value != kw {
		return Token{}, p.errf(t.Column, "expected %q, got %s", kw, t)
	}
	return p.advance(), nil
}

func (p *parser) expectString() (Token, error) {
	t := p.peek()
	if t.Type != TokenString {
		return Token{}, p.errf(t.Column, "expected string literal, got %s", t)
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (Token, error) {
	t := p.peek()
	if t.Type != TokenIdent {
		return Token{}, p.errf(t.Column, "expected identifier, got %s", t)
	}
	return p.advance(), nil
}

// atKeyword reports whether the current token is the named keyword,
// without consuming it.
func (p *parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.Type == TokenKeyword && t.Value == kw
}

// parseQuery parses the whole token stream into stageSpecs.
func (p *parser) parseQuery() ([]*stageSpec, error) {
	seed, err := p.parseSeed()
	if err != nil {
		return nil, err
	}
	stages := []*stageSpec{seed}

	if p.peek().Type == TokenEOF {
		return nil, p.errf(p.peek().Column, "missing process clause after seed: expected #pivot-to or #join-to")
	}

	for p.atKeyword("#pivot-to") || p.atKeyword("#join-to") {
		var st *stageSpec
		var err error
		if p.atKeyword("#pivot-to") {
			st, err = p.parsePivotOrJoin("#pivot-to", false)
		} else {
			st, err = p.parsePivotOrJoin("#join-to", true)
		}
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}

	if p.peek().Type != TokenEOF {
		t := p.peek()
		return nil, p.errf(t.Column, "unexpected trailing input: %s", t)
	}
	return stages, nil
}

func (p *parser) parseSeed() (*stageSpec, error) {
	if _, err := p.expectKeyword("#from"); err != nil {
		return nil, err
	}
	uriTok, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("#as"); err != nil {
		return nil, err
	}
	aliasTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	spec := &stageSpec{keyword: "#from", uri: uriTok.Value, alias: aliasTok.Value}

	if p.atKeyword("#filter") {
		p.advance()
		lit, negated, err := p.expectFilter()
		if err != nil {
			return nil, err
		}
		spec.filter, spec.hasFilter, spec.filterExclude = lit, true, negated
	}
	return spec, nil
}

// expectFilter consumes a filter or negated-filter literal (SUPPLEMENT:
// "#filter !|f|" negates the literal, per the jiggleq original).
func (p *parser) expectFilter() (lit string, negated bool, err error) {
	t := p.peek()
	switch t.Type {
	case TokenFilter:
		p.advance()
		return t.Value, false, nil
	case TokenNegFilter:
		p.advance()
		return t.Value, true, nil
	default:
		return "", false, p.errf(t.Column, "expected filter literal, got %s", t)
	}
}

func (p *parser) parsePivotOrJoin(keyword string, isJoin bool) (*stageSpec, error) {
	p.advance() // consume #pivot-to / #join-to
	uriTok, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("#as"); err != nil {
		return nil, err
	}
	aliasTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	spec := &stageSpec{keyword: keyword, uri: uriTok.Value, alias: aliasTok.Value}

	if p.atKeyword("#filter") {
		p.advance()
		lit, negated, err := p.expectFilter()
		if err != nil {
			return nil, err
		}
		spec.filter, spec.hasFilter, spec.filterExclude = lit, true, negated
	}

	if _, err := p.expectKeyword("#where"); err != nil {
		return nil, err
	}
	where, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	spec.where = where

	if isJoin {
		for p.atKeyword("#field-name") || p.atKeyword("#exclude-empty") || p.atKeyword("#array") {
			switch p.peek().Value {
			case "#field-name":
				p.advance()
				fieldTok, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				spec.fieldName = fieldTok.Value
			case "#exclude-empty":
				p.advance()
				spec.excludeEmpty = true
			case "#array":
				p.advance()
				spec.asArray = true
			}
		}
	}
	return spec, nil
}

// parseExpr implements expr := term (("and"|"or") term)* | "(" expr ")"
// with and binding tighter than or (spec §4.8).
func (p *parser) parseExpr() (exprNode, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (exprNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenAnd {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = andExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parsePrimary() (exprNode, error) {
	if p.peek().Type == TokenLParen {
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		t := p.peek()
		if t.Type != TokenRParen {
			return nil, p.errf(t.Column, "expected ')', got %s", t)
		}
		p.advance()
		return inner, nil
	}
	return p.parseTerm()
}

// parseTerm implements term := qualified_field ("=" | "!=") qualified_field.
func (p *parser) parseTerm() (exprNode, error) {
	leftAlias, leftPath, col, err := p.parseQualifiedField()
	if err != nil {
		return nil, err
	}
	opTok := p.peek()
	var op string
	switch opTok.Type {
	case TokenEquals:
		op = "="
	case TokenNotEquals:
		op = "!="
	default:
		return nil, p.errf(opTok.Column, "expected '=' or '!=', got %s", opTok)
	}
	p.advance()
	rightAlias, rightPath, _, err := p.parseQualifiedField()
	if err != nil {
		return nil, err
	}
	return termExpr{t: term{
		leftAlias: leftAlias, leftPath: leftPath,
		op:         op,
		rightAlias: rightAlias, rightPath: rightPath,
		col: col,
	}}, nil
}

// parseQualifiedField implements qualified_field := ident "." ident_path,
// splitting the leading alias segment from the dotted field path the
// engine sees (spec §4.8: "the bare field names, with the alias prefix
// stripped, are what the engine sees").
func (p *parser) parseQualifiedField() (alias, path string, col int, err error) {
	t, err := p.expectIdent()
	if err != nil {
		return "", "", 0, err
	}
	idx := indexByte(t.Value, '.')
	if idx < 0 {
		return "", "", t.Column, p.errf(t.Column, "expected alias-qualified field (alias.field), got %q", t.Value)
	}
	return t.Value[:idx], t.Value[idx+1:], t.Column, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
