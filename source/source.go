// Package source defines the Data Source contract (spec §6): the boundary
// between the weave core and concrete record producers (JSON, CSV, Badger,
// search indices, ...), which are external collaborators the core never
// imports directly.
package source

import "github.com/wbrown/weaveq"

// Source is implemented by a concrete record producer. A Source may support
// batch, stream, or both; the stage executor picks one per spec §4.6 step 1.
type Source interface {
	// Success reports whether the most recent Batch/Stream call completed
	// without error.
	Success() bool
}

// BatchSource materializes every record eagerly.
type BatchSource interface {
	Source
	Batch() ([]weave.Record, error)
}

// StreamSource yields records lazily through an iterator, bounding memory
// to the current record plus the previous stage's index (spec §5).
type StreamSource interface {
	Source
	Stream() (Iterator, error)
}

// Iterator is a lazy pull-based cursor over records.
type Iterator interface {
	// Next advances the cursor and reports whether a record is available.
	Next() bool
	// Record returns the current record; valid only after Next returns true.
	Record() weave.Record
	// Err returns any error encountered during iteration.
	Err() error
	// Close releases resources held by the iterator (spec §5 cancellation).
	Close() error
}

// Builder translates the LOCATION part of a "TYPE:LOCATION" URI (spec §6)
// and an opaque filter string into a Source. The URI split and the
// werrors.DataSourceBuildError for unknown types are done by
// registry.Registry.Build before a Builder is called.
type Builder func(location string, filter string) (Source, error)

// SliceSource is the simplest BatchSource: a fixed, in-memory slice of
// records. Used directly by the pipeline builder's tests and by callers who
// already have records in hand rather than an external reader.
type SliceSource struct {
	Records []weave.Record
	Failed  bool
}

func (s *SliceSource) Batch() ([]weave.Record, error) { return s.Records, nil }
func (s *SliceSource) Success() bool                  { return !s.Failed }
