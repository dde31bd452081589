package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/source"
)

func TestBuildDispatchesCaseInsensitively(t *testing.T) {
	reg := New()
	reg.Register("JSON", func(location, filter string) (source.Source, error) {
		return &source.SliceSource{Records: []weave.Record{{"loc": location}}}, nil
	})

	src, err := reg.Build("json:/tmp/a.json", "")
	assert.NoError(t, err)
	bs := src.(source.BatchSource)
	recs, err := bs.Batch()
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/a.json", recs[0]["loc"])
}

func TestBuildUnknownTypeListsKnownTypes(t *testing.T) {
	reg := New()
	reg.Register("csv", func(location, filter string) (source.Source, error) { return nil, nil })
	reg.Register("json", func(location, filter string) (source.Source, error) { return nil, nil })

	_, err := reg.Build("xml:/tmp/a.xml", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "csv")
	assert.Contains(t, err.Error(), "json")
}

func TestBuildMalformedURI(t *testing.T) {
	reg := New()
	_, err := reg.Build("no-colon-here", "")
	assert.Error(t, err)
}
