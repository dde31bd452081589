// Package jsonsrc reads a single JSON document (an array of objects, or a
// single object treated as a one-record source) into weave.Record values.
package jsonsrc

import (
	"encoding/json"
	"os"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/wlog"
)

// Source reads location as a JSON document. Non-object elements of a
// top-level array are skipped by default, for compatibility with the
// original implementation's behavior, and each skip is logged at debug
// level (spec §9 Design Notes, Open Questions); the "strict"
// config option (spec §6: config is handed intact to the source builder)
// turns a non-object element into a hard failure instead.
type Source struct {
	path   string
	logger wlog.Logger
	strict bool
	failed bool
}

// New builds a JSON source rooted at path. A nil logger discards debug
// notices.
func New(path string, logger wlog.Logger) *Source {
	if logger == nil {
		logger = wlog.Noop{}
	}
	return &Source{path: path, logger: logger}
}

// NewBuilder adapts New to source.Builder for registration. opts is this
// source type's opaque config.Config.OptionsFor("json") map (nil if
// unconfigured); only the "strict" bool key is recognized. The filter
// literal is accepted but unused — this source has no filter semantics.
func NewBuilder(logger wlog.Logger, opts map[string]interface{}) source.Builder {
	strict, _ := opts["strict"].(bool)
	return func(location, _ string) (source.Source, error) {
		s := New(location, logger)
		s.strict = strict
		return s, nil
	}
}

func (s *Source) Success() bool { return !s.failed }

// Batch reads and decodes the whole document eagerly.
func (s *Source) Batch() ([]weave.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.failed = true
		return nil, err
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(data, &asArray); err == nil {
		return s.decodeElements(asArray)
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(data, &asObject); err != nil {
		s.failed = true
		return nil, err
	}
	return []weave.Record{weave.Record(asObject)}, nil
}

func (s *Source) decodeElements(elements []json.RawMessage) ([]weave.Record, error) {
	out := make([]weave.Record, 0, len(elements))
	for i, raw := range elements {
		var obj map[string]interface{}
		if err := json.Unmarshal(raw, &obj); err != nil {
			if s.strict {
				s.failed = true
				return nil, err
			}
			s.logger.Debugf("jsonsrc: skipping non-object element at index %d: %v", i, err)
			continue
		}
		out = append(out, weave.Record(obj))
	}
	return out, nil
}
