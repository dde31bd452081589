// Package resulthandler provides stage.ResultHandler implementations: the
// default text-line handler (spec §6), a list-collecting handler for tests
// and embedding, and a table handler for terminal output, grounded on the
// teacher's datalog/executor/table_formatter.go.
package resulthandler

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/weaveq"
)

// Collecting accumulates every emitted record into a slice, in emission
// order — the shape spec §8's end-to-end scenarios assume ("terminal
// handler collects a list").
type Collecting struct {
	Records []weave.Record
	ok      bool
}

// NewCollecting builds a Collecting handler.
func NewCollecting() *Collecting { return &Collecting{ok: true} }

func (c *Collecting) Emit(rec weave.Record) error {
	c.Records = append(c.Records, rec)
	return nil
}

func (c *Collecting) Success() bool { return c.ok }

// Fail marks the handler as failed; Executor.Execute will then report
// failure from Success() per spec §4.6 step 5.
func (c *Collecting) Fail() { c.ok = false }

// TextLine serializes every record as one text line to w (spec §6 default
// handler), sorting keys for deterministic output.
type TextLine struct {
	w  io.Writer
	ok bool
}

// NewTextLine builds a TextLine handler writing to w.
func NewTextLine(w io.Writer) *TextLine { return &TextLine{w: w, ok: true} }

func (h *TextLine) Emit(rec weave.Record) error {
	_, err := fmt.Fprintln(h.w, formatLine(rec))
	return err
}

func (h *TextLine) Success() bool { return h.ok }

func formatLine(rec weave.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, rec[k]))
	}
	return strings.Join(parts, " ")
}

// Table renders every emitted record as a row in a terminal table, column
// set taken from the first record seen, adapting
// datalog/executor/table_formatter.go's TableFormatter to weave.Record
// rather than fixed-arity Datalog tuples, with optional color highlighting
// of the header row (mirroring datalog/annotations/relation_renderer.go).
type Table struct {
	w        io.Writer
	useColor bool
	columns  []string
	rows     [][]string
	ok       bool
}

// NewTable builds a Table handler writing to w; useColor highlights the
// header when the destination is a color-capable terminal.
func NewTable(w io.Writer, useColor bool) *Table {
	return &Table{w: w, useColor: useColor, ok: true}
}

func (t *Table) Emit(rec weave.Record) error {
	if t.columns == nil {
		t.columns = make([]string, 0, len(rec))
		for k := range rec {
			t.columns = append(t.columns, k)
		}
		sort.Strings(t.columns)
	}
	row := make([]string, len(t.columns))
	for i, c := range t.columns {
		row[i] = fmt.Sprintf("%v", rec[c])
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table) Success() bool { return t.ok }

// Flush renders the accumulated rows as a table. Call once after the
// pipeline finishes executing.
func (t *Table) Flush() {
	if len(t.columns) == 0 {
		fmt.Fprintln(t.w, "_no rows_")
		return
	}
	alignment := make([]tw.Align, len(t.columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(t.w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	header := t.columns
	if t.useColor {
		bold := color.New(color.Bold).SprintFunc()
		colored := make([]string, len(header))
		for i, h := range header {
			colored[i] = bold(h)
		}
		header = colored
	}
	table.Header(header)
	for _, row := range t.rows {
		table.Append(row)
	}
	table.Render()
}
