// Package csvsrc reads a CSV file (first row as header) as a weave
// source.Source, using encoding/csv since no example in the retrieved pack
// carries a non-stdlib CSV reader worth adopting (see DESIGN.md).
package csvsrc

import (
	"encoding/csv"
	"os"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/source"
)

// Source reads location as CSV, mapping each data row to a Record keyed by
// the header row.
type Source struct {
	path      string
	delimiter rune // 0 means encoding/csv's default ','
	failed    bool
}

// New builds a CSV source rooted at path.
func New(path string) *Source { return &Source{path: path} }

// NewBuilder adapts New to source.Builder for registration. opts is this
// source type's opaque config.Config.OptionsFor("csv") map (nil if
// unconfigured); only the single-character "delimiter" string key is
// recognized, overriding encoding/csv's default comma.
func NewBuilder(opts map[string]interface{}) source.Builder {
	var delimiter rune
	if d, ok := opts["delimiter"].(string); ok && len(d) > 0 {
		delimiter = []rune(d)[0]
	}
	return func(location, _ string) (source.Source, error) {
		s := New(location)
		s.delimiter = delimiter
		return s, nil
	}
}

func (s *Source) Success() bool { return !s.failed }

// Batch reads and parses the whole file eagerly.
func (s *Source) Batch() ([]weave.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		s.failed = true
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if s.delimiter != 0 {
		r.Comma = s.delimiter
	}
	rows, err := r.ReadAll()
	if err != nil {
		s.failed = true
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	out := make([]weave.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(weave.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
