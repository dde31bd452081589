package jsonsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBatchArrayOfObjects(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `[{"id":1},{"id":2}]`)

	src := New(path, nil)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.True(t, src.Success())
	assert.Equal(t, []weave.Record{{"id": float64(1)}, {"id": float64(2)}}, recs)
}

func TestBatchSingleObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `{"id":1}`)

	src := New(path, nil)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{{"id": float64(1)}}, recs)
}

func TestBatchSkipsNonObjectElements(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `[{"id":1}, "not an object", 42]`)

	src := New(path, nil)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{{"id": float64(1)}}, recs)
}

func TestBatchMissingFileFails(t *testing.T) {
	src := New("/nonexistent/path.json", nil)
	_, err := src.Batch()
	assert.Error(t, err)
	assert.False(t, src.Success())
}

func TestNewBuilderStrictOptionFailsOnNonObjectElement(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `[{"id":1}, "not an object"]`)

	builder := NewBuilder(nil, map[string]interface{}{"strict": true})
	src, err := builder(path, "")
	assert.NoError(t, err)

	_, err = src.(*Source).Batch()
	assert.Error(t, err)
	assert.False(t, src.Success())
}

func TestNewBuilderDefaultSkipsNonObjectElement(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `[{"id":1}, "not an object"]`)

	builder := NewBuilder(nil, nil)
	src, err := builder(path, "")
	assert.NoError(t, err)

	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{{"id": float64(1)}}, recs)
}
