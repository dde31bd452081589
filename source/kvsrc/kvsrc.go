// Package kvsrc is a Badger-backed weave source: each key maps to a
// JSON-encoded record, streamed via badger.Iterator, adapting the teacher's
// datalog/storage/badger_store.go open/close idiom and
// simple_batch_scanner.go's single-scan approach to the
// source.StreamSource contract.
package kvsrc

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/source"
)

// Source reads every key/value pair in a Badger database at path, treating
// each value as a JSON-encoded record. An optional key prefix filter
// (passed as the opaque filter string, spec §6) restricts the scan.
type Source struct {
	path     string
	prefix   []byte
	readOnly bool
	failed   bool
}

// New builds a Badger-backed source rooted at path; prefix (may be empty)
// restricts the scan to keys sharing that byte prefix.
func New(path string, prefix []byte) *Source {
	return &Source{path: path, prefix: prefix}
}

// NewBuilder adapts New to source.Builder: filter, if non-empty, is used
// verbatim as the scan key prefix. opts is this source type's opaque
// config.Config.OptionsFor("kv") map (nil if unconfigured); only the
// "read_only" bool key is recognized, opening the Badger store without a
// value log GC/write path for a query-only deployment.
func NewBuilder(opts map[string]interface{}) source.Builder {
	readOnly, _ := opts["read_only"].(bool)
	return func(location, filter string) (source.Source, error) {
		s := New(location, []byte(filter))
		s.readOnly = readOnly
		return s, nil
	}
}

func (s *Source) Success() bool { return !s.failed }

// Stream opens the database and returns a lazy cursor over matching
// key/value pairs, same open-per-call lifecycle as the teacher's
// storage.Database (spec §5: each source owns its own I/O handles, closed
// by the executor on stage completion).
func (s *Source) Stream() (source.Iterator, error) {
	opts := badger.DefaultOptions(s.path)
	opts.Logger = nil
	opts.ReadOnly = s.readOnly
	db, err := badger.Open(opts)
	if err != nil {
		s.failed = true
		return nil, fmt.Errorf("opening badger store: %w", err)
	}
	txn := db.NewTransaction(false)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	if len(s.prefix) > 0 {
		it.Seek(s.prefix)
	} else {
		it.Rewind()
	}
	return &iterator{src: s, db: db, txn: txn, it: it}, nil
}

// Batch materializes every matching pair eagerly by draining Stream.
func (s *Source) Batch() ([]weave.Record, error) {
	it, err := s.Stream()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []weave.Record
	for it.Next() {
		out = append(out, it.Record())
	}
	return out, it.Err()
}

type iterator struct {
	src     *Source
	db      *badger.DB
	txn     *badger.Txn
	it      *badger.Iterator
	current weave.Record
	err     error
	started bool
}

func (it *iterator) Next() bool {
	if it.started {
		it.it.Next()
	}
	it.started = true
	if !it.it.ValidForPrefix(it.src.prefix) {
		return false
	}
	item := it.it.Item()
	var rec weave.Record
	err := item.Value(func(val []byte) error {
		var obj map[string]interface{}
		if err := json.Unmarshal(val, &obj); err != nil {
			return err
		}
		rec = weave.Record(obj)
		return nil
	})
	if err != nil {
		it.err = err
		it.src.failed = true
		return false
	}
	it.current = rec
	return true
}

func (it *iterator) Record() weave.Record { return it.current }
func (it *iterator) Err() error           { return it.err }

func (it *iterator) Close() error {
	it.it.Close()
	it.txn.Discard()
	return it.db.Close()
}
