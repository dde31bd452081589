// Package relation implements the field relation algebra: leaf equality and
// inequality predicates composed with AND/OR into a condition tree, and its
// reduction to disjunctive normal form (DNF) over conjunction groups.
package relation

import (
	"fmt"

	"github.com/wbrown/weaveq/field"
	"github.com/wbrown/weaveq/werrors"
)

// Op is the comparison operator carried by a leaf Condition.
type Op int

const (
	// EQ requires the proxied left and right values to compare equal.
	EQ Op = iota
	// NE requires the proxied left and right values to compare unequal.
	NE
)

func (o Op) String() string {
	if o == EQ {
		return "=="
	}
	return "!="
}

// Condition is a single predicate between a previous-stage ("left") field
// and a current-stage ("right") field.
type Condition struct {
	LeftField  field.F
	Op         Op
	RightField field.F
}

// Group is one AND-group: an ordered sequence of conditions, all of which
// must hold. Order is preserved from construction/walk-back (spec §4.1).
type Group []Condition

// Conjunctions is the DNF form of a Relation: the OR of its Groups.
type Conjunctions []Group

// Relation is the internal condition tree. Leaves carry a single Condition;
// internal nodes combine children with a boolean combinator.
type Relation struct {
	leaf       *Condition
	combinator combinator
	children   []*Relation
}

type combinator int

const (
	conjunction combinator = iota
	disjunction
)

// Operand is anything that may appear on either side of Eq/Ne: a bare field
// reference (field.F). Accepting interface{} here (rather than just field.F)
// lets us detect, at construction time rather than compile time, the
// mistake of handing a compound Relation to a leaf predicate — the
// precedence pitfall spec §4.1 calls out.
type Operand interface{}

// Eq builds a leaf equality predicate between two bare field references.
// Fails with werrors.RelationMalformed if either operand is not a field.F
// (e.g. an already-built compound Relation was passed by mistake).
func Eq(left, right Operand) (*Relation, error) {
	return leaf(left, EQ, right)
}

// Ne builds a leaf inequality predicate between two bare field references.
func Ne(left, right Operand) (*Relation, error) {
	return leaf(left, NE, right)
}

func leaf(left Operand, op Op, right Operand) (*Relation, error) {
	lf, lok := left.(field.F)
	rf, rok := right.(field.F)
	if !lok || !rok {
		return nil, werrors.RelationMalformed(fmt.Sprintf(
			"leaf predicate operands must be bare field references, got left=%T right=%T",
			left, right))
	}
	c := Condition{LeftField: lf, Op: op, RightField: rf}
	return &Relation{leaf: &c}, nil
}

// And creates a conjunction node over deep copies of left and right; ToDNF
// distributes it, combining every group of left with every group of right
// (spec §4.1: "A and (B or C)" ≡ "{{A,B},{A,C}}").
func And(left, right *Relation) *Relation {
	return &Relation{combinator: conjunction, children: []*Relation{left.clone(), right.clone()}}
}

// Or creates a new root with the two operand trees as children — no
// distribution, just disjunction: "(A and B) or C" ≡ "{{A,B},{C}}".
func Or(left, right *Relation) *Relation {
	return &Relation{combinator: disjunction, children: []*Relation{left, right}}
}

func (r *Relation) isLeaf() bool { return r != nil && r.leaf != nil }

func (r *Relation) clone() *Relation {
	if r == nil {
		return nil
	}
	if r.isLeaf() {
		c := *r.leaf
		return &Relation{leaf: &c}
	}
	children := make([]*Relation, len(r.children))
	for i, ch := range r.children {
		children[i] = ch.clone()
	}
	return &Relation{combinator: r.combinator, children: children}
}

// ToDNF reduces a Relation to disjunctive normal form. A leaf yields a
// single one-condition group; OR concatenates its children's groups; AND
// cross-merges its children's groups (every left group combined with every
// right group, left conditions first), which is the same result a
// pre-order depth-first leaf-to-root walk-back would produce, but computed
// by recursive composition instead of ancestor threading.
func ToDNF(r *Relation) Conjunctions {
	if r == nil {
		return nil
	}
	if r.isLeaf() {
		return Conjunctions{Group{*r.leaf}}
	}
	switch r.combinator {
	case disjunction:
		var out Conjunctions
		for _, child := range r.children {
			out = append(out, ToDNF(child)...)
		}
		return out
	default: // conjunction
		merged := ToDNF(r.children[0])
		for _, child := range r.children[1:] {
			merged = crossMerge(merged, ToDNF(child))
		}
		return merged
	}
}

// crossMerge ANDs every group in left with every group in right, preserving
// left-then-right condition order within each merged group.
func crossMerge(left, right Conjunctions) Conjunctions {
	out := make(Conjunctions, 0, len(left)*len(right))
	for _, lg := range left {
		for _, rg := range right {
			group := make(Group, 0, len(lg)+len(rg))
			group = append(group, lg...)
			group = append(group, rg...)
			out = append(out, group)
		}
	}
	return out
}
