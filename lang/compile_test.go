package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/resulthandler"
	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/source/registry"
)

func testRegistry(data map[string][]weave.Record) *registry.Registry {
	reg := registry.New()
	reg.Register("mem", func(location, filter string) (source.Source, error) {
		return &source.SliceSource{Records: data[location]}, nil
	})
	return reg
}

func TestCompileAndExecutePivot(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"a": {{"id": 1}, {"id": 2}},
		"b": {{"uid": 1, "city": "NYC"}, {"uid": 9, "city": "LA"}},
	})

	builder, err := Compile(`#from "mem:a" #as a #pivot-to "mem:b" #as b #where a.id = b.uid`, reg, nil)
	assert.NoError(t, err)

	handler := resulthandler.NewCollecting()
	builder.ResultHandler(handler)
	assert.NoError(t, builder.Execute(false))
	assert.Equal(t, []weave.Record{{"uid": 1, "city": "NYC"}}, handler.Records)
}

func TestCompileReorientsOperandsRegardlessOfSourceOrder(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"a": {{"id": 1}},
		"b": {{"uid": 1, "city": "NYC"}},
	})

	// Predicate written current-alias-first; compile must still orient it.
	builder, err := Compile(`#from "mem:a" #as a #pivot-to "mem:b" #as b #where b.uid = a.id`, reg, nil)
	assert.NoError(t, err)

	handler := resulthandler.NewCollecting()
	builder.ResultHandler(handler)
	assert.NoError(t, builder.Execute(false))
	assert.Len(t, handler.Records, 1)
}

func TestCompileAliasOutOfScopeErrors(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"a": {{"id": 1}},
		"b": {{"uid": 1}},
	})

	_, err := Compile(`#from "mem:a" #as a #pivot-to "mem:b" #as b #where a.id = c.uid`, reg, nil)
	assert.Error(t, err)
}

func TestCompileAliasShadowingRejected(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"a": {{"id": 1}},
		"b": {{"uid": 1}},
	})

	_, err := Compile(`#from "mem:a" #as a #pivot-to "mem:b" #as a #where a.id = a.uid`, reg, nil)
	assert.Error(t, err)
}

func TestCompileOutOfScopeAliasReuseAllowed(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"x": {{"f": 1}},
		"y": {{"g": 1, "h": 1}},
		"z": {{"i": 1}},
	})

	_, err := Compile(
		`#from "mem:x" #as a #pivot-to "mem:y" #as b #where a.f = b.g `+
			`#join-to "mem:z" #as a #where b.h = a.i`,
		reg, nil)
	assert.NoError(t, err)
}

func TestCompileJoinOptionsWired(t *testing.T) {
	reg := testRegistry(map[string][]weave.Record{
		"a": {{"id": 1, "name": "alice"}},
		"b": {{"uid": 1, "city": "NYC"}},
	})

	builder, err := Compile(
		`#from "mem:a" #as a #join-to "mem:b" #as b #where a.id = b.uid #field-name owner`, reg, nil)
	assert.NoError(t, err)

	handler := resulthandler.NewCollecting()
	builder.ResultHandler(handler)
	assert.NoError(t, builder.Execute(false))
	assert.Len(t, handler.Records, 1)
	assert.Equal(t, weave.Record{"id": 1, "name": "alice"}, handler.Records[0]["owner"])
}

func TestCompileNegatedFilterMarksExclusion(t *testing.T) {
	var seenFilter string
	reg := registry.New()
	reg.Register("mem", func(location, filter string) (source.Source, error) {
		if location == "a" {
			seenFilter = filter
		}
		return &source.SliceSource{}, nil
	})

	_, err := Compile(`#from "mem:a" #as a #filter !|active| #pivot-to "mem:b" #as b #where a.id = b.uid`, reg, nil)
	assert.NoError(t, err)
	assert.Equal(t, "!active", seenFilter)
}
