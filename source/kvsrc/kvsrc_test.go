package kvsrc

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/wbrown/weaveq"
)

func seedBadger(t *testing.T, dir string, kv map[string]string) {
	t.Helper()
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	assert.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badger.Txn) error {
		for k, v := range kv {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestBatchReadsAllRecords(t *testing.T) {
	dir := t.TempDir()
	seedBadger(t, dir, map[string]string{
		"user:1": `{"id":1}`,
		"user:2": `{"id":2}`,
	})

	src := New(dir, nil)
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.True(t, src.Success())
	assert.Len(t, recs, 2)
}

func TestBatchRespectsPrefix(t *testing.T) {
	dir := t.TempDir()
	seedBadger(t, dir, map[string]string{
		"user:1":    `{"id":1}`,
		"product:1": `{"id":100}`,
	})

	src := New(dir, []byte("user:"))
	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.Equal(t, []weave.Record{{"id": float64(1)}}, recs)
}

func TestNewBuilderReadOnlyOption(t *testing.T) {
	dir := t.TempDir()
	seedBadger(t, dir, map[string]string{"user:1": `{"id":1}`})

	builder := NewBuilder(map[string]interface{}{"read_only": true})
	src, err := builder(dir, "")
	assert.NoError(t, err)

	recs, err := src.Batch()
	assert.NoError(t, err)
	assert.True(t, src.Success())
	assert.Equal(t, []weave.Record{{"id": float64(1)}}, recs)
}
