package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/field"
	"github.com/wbrown/weaveq/relation"
)

func eqCond(name string) relation.Condition {
	return relation.Condition{LeftField: field.New(name, nil), Op: relation.EQ, RightField: field.New(name, nil)}
}

func neCondition(name string) relation.Condition {
	return relation.Condition{LeftField: field.New(name, nil), Op: relation.NE, RightField: field.New(name, nil)}
}

func TestIndexEQLookup(t *testing.T) {
	conditions := relation.Conjunctions{relation.Group{eqCond("id")}}
	idx := New(conditions)

	rec1 := weave.Record{"id": 1}
	rec2 := weave.Record{"id": 2}
	idx.Insert(rec1)
	idx.Insert(rec2)

	assert.True(t, idx.Succeeded())
	got := idx.EQLookup(0, []weave.Value{1})
	assert.Equal(t, []weave.Record{rec1}, got)
}

func TestIndexInsertSkipsMissingField(t *testing.T) {
	conditions := relation.Conjunctions{relation.Group{eqCond("id")}}
	idx := New(conditions)

	rec := weave.Record{"other": 1}
	idx.Insert(rec)

	assert.False(t, idx.Succeeded())
	assert.Nil(t, idx.EQLookup(0, []weave.Value{1}))
}

func TestIndexNELookupAndPopulation(t *testing.T) {
	conditions := relation.Conjunctions{relation.Group{neCondition("status")}}
	idx := New(conditions)

	active := weave.Record{"status": "active"}
	closed := weave.Record{"status": "closed"}
	idx.Insert(active)
	idx.Insert(closed)

	assert.ElementsMatch(t, []weave.Record{active}, idx.NELookup(0, 0, "active"))
	assert.ElementsMatch(t, []weave.Record{active, closed}, idx.NEPopulation(0))
}
