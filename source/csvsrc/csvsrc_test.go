package csvsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
)

func TestBatchMapsHeaderToFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	assert.NoError(t, os.WriteFile(path, []byte("id,name\n1,alice\n2,bob\n"), 0o644))

	src := New(path)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{
		{"id": "1", "name": "alice"},
		{"id": "2", "name": "bob"},
	}, recs)
}

func TestBatchEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	assert.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	src := New(path)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Nil(t, recs)
}

func TestNewBuilderDelimiterOption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	assert.NoError(t, os.WriteFile(path, []byte("id;name\n1;alice\n"), 0o644))

	builder := NewBuilder(map[string]interface{}{"delimiter": ";"})
	src, err := builder(path, "")
	assert.NoError(t, err)

	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{{"id": "1", "name": "alice"}}, recs)
}
