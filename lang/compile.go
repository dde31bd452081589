package lang

import (
	"fmt"

	"github.com/wbrown/weaveq/field"
	"github.com/wbrown/weaveq/pipeline"
	"github.com/wbrown/weaveq/relation"
	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/source/registry"
	"github.com/wbrown/weaveq/werrors"
	"github.com/wbrown/weaveq/wlog"
)

// Compile parses a weave surface-syntax query (spec §4.8) and returns a
// pipeline.Builder ready for Execute, resolving each stage's source URI
// through reg. A nil logger defaults to wlog.Noop via pipeline.Builder's
// own default.
func Compile(query string, reg *registry.Registry, logger wlog.Logger) (*pipeline.Builder, error) {
	tokens, err := NewLexer(query).Lex()
	if err != nil {
		return nil, err
	}
	specs, err := newParser(tokens).parseQuery()
	if err != nil {
		return nil, err
	}
	if err := checkAliasShadowing(specs); err != nil {
		return nil, err
	}

	seed := specs[0]
	src, err := buildSource(reg, seed)
	if err != nil {
		return nil, err
	}
	b := pipeline.Seed(src)
	if logger != nil {
		b.Logger(logger)
	}

	prevAlias := seed.alias
	for _, st := range specs[1:] {
		src, err := buildSource(reg, st)
		if err != nil {
			return nil, err
		}
		rel, err := buildRelation(st.where, prevAlias, st.alias)
		if err != nil {
			return nil, err
		}
		switch st.keyword {
		case "#pivot-to":
			b.PivotTo(src, rel)
		case "#join-to":
			var opts []pipeline.JoinOption
			if st.fieldName != "" {
				opts = append(opts, pipeline.WithFieldName(st.fieldName))
			}
			if st.asArray {
				opts = append(opts, pipeline.AsArray())
			}
			if st.excludeEmpty {
				opts = append(opts, pipeline.ExcludeEmpty())
			}
			b.JoinTo(src, rel, opts...)
		default:
			return nil, werrors.NewTextQueryCompileError(fmt.Sprintf("unknown stage keyword %q", st.keyword), -1, nil)
		}
		prevAlias = st.alias
	}
	return b, nil
}

// buildSource resolves a stage's source through reg, folding the
// SUPPLEMENT negated-filter-literal marker ("#filter !|f|") into the
// opaque filter string as a leading "!" so individual source
// implementations may interpret it as exclusion; sources that don't
// recognize the marker simply see it as part of the literal, same as any
// other opaque filter text (spec §6: filter is passed through verbatim).
func buildSource(reg *registry.Registry, st *stageSpec) (source.Source, error) {
	filter := st.filter
	if st.hasFilter && st.filterExclude {
		filter = "!" + filter
	}
	return reg.Build(st.uri, filter)
}

// checkAliasShadowing rejects a query that rebinds an alias still in scope
// (SUPPLEMENT, SPEC_FULL.md §4: corrected vs. the jiggleq original's silent
// shadowing). An alias is in scope only for the stage that bound it and the
// one immediately following it (spec §4.8: "aliases older than that go out
// of scope"), so only rebinding the immediately preceding stage's alias is
// a shadow; reuse of an alias from two or more stages back is legal once it
// has rolled out of scope.
func checkAliasShadowing(specs []*stageSpec) error {
	for i := 1; i < len(specs); i++ {
		if specs[i].alias == specs[i-1].alias {
			return werrors.NewTextQueryCompileError(
				fmt.Sprintf("alias %q is still in scope from the immediately preceding stage", specs[i].alias), -1, nil)
		}
	}
	return nil
}

// buildRelation converts a parsed #where expression into a relation.Relation,
// validating and reorienting every term's alias pair (spec §4.8: "For every
// #where predicate α.f op β.g: exactly one of α, β must be the current
// stage's alias and the other must be the immediately preceding stage's
// alias... The parser reorders operands so that the left-hand operand
// corresponds to the previous stage and the right-hand operand corresponds
// to the current stage").
func buildRelation(node exprNode, prevAlias, curAlias string) (*relation.Relation, error) {
	switch n := node.(type) {
	case termExpr:
		leftPath, rightPath, err := orient(n.t, prevAlias, curAlias)
		if err != nil {
			return nil, err
		}
		left := field.New(leftPath, nil)
		right := field.New(rightPath, nil)
		switch n.t.op {
		case "=":
			return relation.Eq(left, right)
		case "!=":
			return relation.Ne(left, right)
		default:
			return nil, werrors.NewTextQueryCompileError(fmt.Sprintf("unknown operator %q", n.t.op), n.t.col, nil)
		}
	case andExpr:
		left, err := buildRelation(n.left, prevAlias, curAlias)
		if err != nil {
			return nil, err
		}
		right, err := buildRelation(n.right, prevAlias, curAlias)
		if err != nil {
			return nil, err
		}
		return relation.And(left, right), nil
	case orExpr:
		left, err := buildRelation(n.left, prevAlias, curAlias)
		if err != nil {
			return nil, err
		}
		right, err := buildRelation(n.right, prevAlias, curAlias)
		if err != nil {
			return nil, err
		}
		return relation.Or(left, right), nil
	default:
		return nil, werrors.NewTextQueryCompileError("empty #where expression", -1, nil)
	}
}

// orient validates a term's alias pair against the two aliases in scope and
// returns (leftPath, rightPath) with left always belonging to prevAlias and
// right to curAlias, alias prefixes stripped.
func orient(t term, prevAlias, curAlias string) (leftPath, rightPath string, err error) {
	switch {
	case t.leftAlias == prevAlias && t.rightAlias == curAlias:
		return t.leftPath, t.rightPath, nil
	case t.leftAlias == curAlias && t.rightAlias == prevAlias:
		return t.rightPath, t.leftPath, nil
	default:
		return "", "", werrors.NewTextQueryCompileError(
			fmt.Sprintf("alias out of scope: %q and %q must be exactly {%q, %q}",
				t.leftAlias, t.rightAlias, prevAlias, curAlias),
			t.col, nil)
	}
}
