package lang

// term is a parsed but not-yet-validated predicate: alias.path (op)
// alias.path, before alias scoping/operand orientation is applied.
type term struct {
	leftAlias, leftPath   string
	op                    string // "=" or "!="
	rightAlias, rightPath string
	col                   int
}

// exprNode is a parsed #where expression: either a term leaf or an
// and/or combinator over two exprNodes — built with and binding tighter
// than or (spec §4.8), parentheses overriding.
type exprNode interface{ isExpr() }

type termExpr struct{ t term }
type andExpr struct{ left, right exprNode }
type orExpr struct{ left, right exprNode }

func (termExpr) isExpr() {}
func (andExpr) isExpr()  {}
func (orExpr) isExpr()   {}

// stageSpec is one parsed pipeline stage before it is handed to
// pipeline.Builder: seed, pivot, or join.
type stageSpec struct {
	keyword       string // "#from", "#pivot-to", "#join-to"
	uri           string
	alias         string
	filter        string
	hasFilter     bool
	filterExclude bool     // SUPPLEMENT: "#filter !|f|" negates the literal
	where         exprNode // nil for seed
	fieldName     string
	asArray       bool
	excludeEmpty  bool
}
