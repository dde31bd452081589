// Package pipeline provides the fluent Query Builder API (spec §4.7):
// Seed/PivotTo/JoinTo construct a chain of stage.Stage values, converting
// each relation.Relation to DNF as it is added.
package pipeline

import (
	"fmt"
	"os"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/relation"
	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/stage"
	"github.com/wbrown/weaveq/wlog"
)

// Builder accumulates stages for later execution.
type Builder struct {
	stages  []*stage.Stage
	handler stage.ResultHandler
	logger  wlog.Logger
}

// Seed starts a pipeline with a SEED stage; src's records are passed
// through unconditionally (spec §4.7, Glossary).
func Seed(src source.Source) *Builder {
	return &Builder{stages: []*stage.Stage{{Kind: stage.SEED, Source: src}}}
}

// PivotTo appends a PIVOT stage, filtering src's records by rel against the
// previous stage's output. The previous stage's NextConditions is updated
// to rel's DNF (spec §4.7).
func (b *Builder) PivotTo(src source.Source, rel *relation.Relation) *Builder {
	dnf := relation.ToDNF(rel)
	b.linkPrev(dnf)
	b.stages = append(b.stages, &stage.Stage{
		Kind:       stage.PIVOT,
		Source:     src,
		Conditions: dnf,
	})
	return b
}

// JoinOption configures a JoinTo call.
type JoinOption func(*stage.JoinOptions)

// WithFieldName overrides the default joined-field name ("joined_data").
func WithFieldName(name string) JoinOption {
	return func(o *stage.JoinOptions) { o.FieldName = name }
}

// AsArray appends every match into a list instead of keeping only the first.
func AsArray() JoinOption {
	return func(o *stage.JoinOptions) { o.AsArray = true }
}

// ExcludeEmpty drops records whose join produced zero matches.
func ExcludeEmpty() JoinOption {
	return func(o *stage.JoinOptions) { o.ExcludeEmpty = true }
}

// JoinTo appends a JOIN stage, enriching matching src records with the
// previous stage's matches under a named field (spec §4.7, §4.5).
func (b *Builder) JoinTo(src source.Source, rel *relation.Relation, opts ...JoinOption) *Builder {
	dnf := relation.ToDNF(rel)
	b.linkPrev(dnf)
	jo := &stage.JoinOptions{}
	for _, opt := range opts {
		opt(jo)
	}
	b.stages = append(b.stages, &stage.Stage{
		Kind:       stage.JOIN,
		Source:     src,
		Conditions: dnf,
		JoinOpts:   jo,
	})
	return b
}

// Limit caps the number of records the most recently added stage emits
// (SUPPLEMENT, SPEC_FULL.md §4).
func (b *Builder) Limit(n int) *Builder {
	if len(b.stages) == 0 {
		return b
	}
	b.stages[len(b.stages)-1].Limit = &n
	return b
}

// Distinct de-duplicates the most recently added stage's output by deep
// record equality before handoff (SUPPLEMENT, SPEC_FULL.md §4).
func (b *Builder) Distinct() *Builder {
	if len(b.stages) == 0 {
		return b
	}
	b.stages[len(b.stages)-1].Distinct = true
	return b
}

// ResultHandler sets the terminal handler; if none is set by Execute time,
// each record is written to stdout as one text line.
func (b *Builder) ResultHandler(h stage.ResultHandler) *Builder {
	b.handler = h
	return b
}

// Logger sets the logging capability passed to the executor (default
// wlog.Noop).
func (b *Builder) Logger(l wlog.Logger) *Builder {
	b.logger = l
	return b
}

// Execute compiles the builder's stages into a stage.Executor and runs it.
// stream selects batch vs stream source consumption (spec §4.7, §5).
func (b *Builder) Execute(stream bool) error {
	handler := b.handler
	if handler == nil {
		handler = newLineHandler()
	}
	return stage.NewExecutor(b.stages, handler, b.logger, stream).Execute()
}

func (b *Builder) linkPrev(dnf relation.Conjunctions) {
	if len(b.stages) == 0 {
		return
	}
	b.stages[len(b.stages)-1].NextConditions = dnf
}

// lineHandler is the default ResultHandler: it serializes each record as a
// text line and writes it to stdout (spec §6 default), also keeping the
// lines it wrote.
type lineHandler struct {
	lines []string
	ok    bool
}

func newLineHandler() *lineHandler { return &lineHandler{ok: true} }

func (h *lineHandler) Emit(rec weave.Record) error {
	line := formatRecordLine(rec)
	h.lines = append(h.lines, line)
	_, err := fmt.Fprintln(os.Stdout, line)
	return err
}

func (h *lineHandler) Success() bool { return h.ok }

func formatRecordLine(rec weave.Record) string {
	out := "{"
	first := true
	for k, v := range rec {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s: %v", k, v)
	}
	return out + "}"
}
