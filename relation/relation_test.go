package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq/field"
)

func f(name string) field.F { return field.New(name, nil) }

func TestEqRejectsCompoundOperand(t *testing.T) {
	a, err := Eq(f("a"), f("b"))
	assert.NoError(t, err)

	_, err = Eq(a, f("c"))
	assert.Error(t, err)
}

func TestToDNF_OrOfAnd_PlusLeaf(t *testing.T) {
	// (A and B) or C == {{A,B},{C}}
	ab, _ := Eq(f("a"), f("b"))
	cd, _ := Eq(f("c"), f("d"))
	ef, _ := Eq(f("e"), f("f"))

	rel := Or(And(ab, cd), ef)
	dnf := ToDNF(rel)

	assert.Len(t, dnf, 2)
	assert.Len(t, dnf[0], 2)
	assert.Len(t, dnf[1], 1)
}

func TestToDNF_AndOfOr_Distributes(t *testing.T) {
	// A and (B or C) == {{A,B},{A,C}}
	a, _ := Eq(f("a"), f("a2"))
	b, _ := Eq(f("b"), f("b2"))
	c, _ := Eq(f("c"), f("c2"))

	rel := And(a, Or(b, c))
	dnf := ToDNF(rel)

	assert.Len(t, dnf, 2)
	for _, group := range dnf {
		assert.Len(t, group, 2)
		assert.Equal(t, a.leaf.LeftField.Name, group[0].LeftField.Name)
	}
}

func TestToDNF_SingleLeaf(t *testing.T) {
	a, _ := Eq(f("a"), f("b"))
	dnf := ToDNF(a)
	assert.Equal(t, Conjunctions{Group{*a.leaf}}, dnf)
}

func TestAndPreservesConditionOrder(t *testing.T) {
	a, _ := Eq(f("a"), f("a2"))
	b, _ := Eq(f("b"), f("b2"))
	dnf := ToDNF(And(a, b))
	assert.Equal(t, "a", dnf[0][0].LeftField.Name)
	assert.Equal(t, "b", dnf[0][1].LeftField.Name)
}
