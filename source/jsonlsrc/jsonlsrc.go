// Package jsonlsrc reads newline-delimited JSON (one object per line) as a
// weave source.Source, exercising the streaming half of the Data Source
// contract (spec §6) the way the teacher's
// datalog/storage/batch_iterator.go streams tuples lazily.
package jsonlsrc

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/source"
)

// Source reads location line by line, decoding each non-empty line as a
// JSON object; a line holding only whitespace fails to decode.
type Source struct {
	path       string
	bufferSize int // 0 means bufio.Scanner's default
	failed     bool
}

// New builds a JSONL source rooted at path.
func New(path string) *Source { return &Source{path: path} }

// NewBuilder adapts New to source.Builder for registration. opts is this
// source type's opaque config.Config.OptionsFor("jsonl") map (nil if
// unconfigured); only the "buffer_size" int key is recognized, raising the
// scanner's max token size for lines longer than bufio's default 64KiB.
func NewBuilder(opts map[string]interface{}) source.Builder {
	bufferSize := intOption(opts, "buffer_size")
	return func(location, _ string) (source.Source, error) {
		s := New(location)
		s.bufferSize = bufferSize
		return s, nil
	}
}

func intOption(opts map[string]interface{}, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (s *Source) Success() bool { return !s.failed }

// Stream opens the file and returns a lazy line-by-line iterator.
func (s *Source) Stream() (source.Iterator, error) {
	f, err := os.Open(s.path)
	if err != nil {
		s.failed = true
		return nil, err
	}
	scanner := bufio.NewScanner(f)
	if s.bufferSize > 0 {
		scanner.Buffer(make([]byte, 0, 64*1024), s.bufferSize)
	}
	return &iterator{src: s, file: f, scanner: scanner}, nil
}

// Batch materializes every line eagerly by draining Stream.
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
	file    *os.File
	scanner *bufio.Scanner
	current weave.Record
	err     error
}

func (it *iterator) Next() bool {
	for it.scanner.Scan() {
		line := it.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(line, &obj); err != nil {
			it.err = err
			it.src.failed = true
			return false
		}
		it.current = weave.Record(obj)
		return true
	}
	if err := it.scanner.Err(); err != nil {
		it.err = err
		it.src.failed = true
	}
	return false
}

func (it *iterator) Record() weave.Record { return it.current }
func (it *iterator) Err() error           { return it.err }
func (it *iterator) Close() error         { return it.file.Close() }
