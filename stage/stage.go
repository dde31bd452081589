// Package stage sequences a weave pipeline's SEED/PIVOT/JOIN stages (spec
// §3 Stage, §4.6 Stage Executor): it obtains records from each stage's
// source, builds the per-stage index the next stage needs, runs the match
// & filter engine for non-SEED stages, and manages buffer lifetimes so at
// most two stage buffers are ever live at once.
package stage

import (
	"reflect"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/index"
	"github.com/wbrown/weaveq/match"
	"github.com/wbrown/weaveq/relation"
	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/werrors"
	"github.com/wbrown/weaveq/wlog"
)

// Kind identifies a stage's role in the pipeline (spec §3, Glossary).
type Kind int

const (
	SEED Kind = iota
	PIVOT
	JOIN
)

func (k Kind) String() string {
	switch k {
	case SEED:
		return "SEED"
	case PIVOT:
		return "PIVOT"
	case JOIN:
		return "JOIN"
	default:
		return "UNKNOWN"
	}
}

// JoinOptions configures a JOIN stage's enrichment behavior (spec §3, §4.5).
type JoinOptions struct {
	FieldName    string // default "joined_data" (spec §9)
	AsArray      bool
	ExcludeEmpty bool
}

// DefaultJoinFieldName is the field a JOIN stage attaches matches under
// when JoinOptions.FieldName is empty (spec §4.5, §9).
const DefaultJoinFieldName = "joined_data"

// Stage is one element of the pipeline (spec §3).
type Stage struct {
	Kind       Kind
	Source     source.Source
	Conditions relation.Conjunctions // nil for SEED
	JoinOpts   *JoinOptions          // only set for JOIN stages

	// NextConditions is the forward reference to the successor's filter
	// conditions — what this stage's Index will be keyed on (spec §3).
	// Unset on the last stage.
	NextConditions relation.Conjunctions

	// Limit caps the number of records this stage emits (SUPPLEMENT §4 of
	// SPEC_FULL.md, grounded on jiggleq/query.py's "#limit"); nil means
	// unbounded.
	Limit *int
	// Distinct de-duplicates this stage's output by deep record equality
	// before handoff to the next stage (SUPPLEMENT, grounded on
	// jiggleq/relations.py).
	Distinct bool
}

// ResultHandler receives every record the terminal stage emits (spec §6).
type ResultHandler interface {
	Emit(rec weave.Record) error
	Success() bool
}

// Executor sequences a pipeline's stages (spec §4.6).
type Executor struct {
	Stages  []*Stage
	Handler ResultHandler
	Logger  wlog.Logger
	// Stream selects the executor's source-consumption mode; both modes
	// must yield identical results (spec §4.6 step 1, §5).
	Stream bool
}

// NewExecutor builds an Executor. A nil logger defaults to wlog.Noop.
func NewExecutor(stages []*Stage, handler ResultHandler, logger wlog.Logger, stream bool) *Executor {
	if logger == nil {
		logger = wlog.Noop{}
	}
	return &Executor{Stages: stages, Handler: handler, Logger: logger, Stream: stream}
}

// Execute runs the pipeline end to end (spec §4.6). Any per-stage failure
// aborts the pipeline after releasing already-open resources (fail-soft,
// spec §4.6, §5).
func (e *Executor) Execute() error {
	var prevIndex *index.Index

	for i, st := range e.Stages {
		records, err := drain(st.Source, e.Stream)
		if err != nil {
			return werrors.DataSourceError("stage source failed", err)
		}
		if !st.Source.Success() {
			return werrors.DataSourceError("stage source reported failure", nil)
		}

		isLast := i == len(e.Stages)-1

		var nextIndex *index.Index
		if !isLast {
			nextIndex = index.New(st.NextConditions)
		}

		var sink match.Emit
		if isLast {
			sink = func(rec weave.Record) error {
				return e.Handler.Emit(rec)
			}
		} else {
			sink = func(rec weave.Record) error {
				nextIndex.Insert(rec)
				return nil
			}
		}

		// gateEmit enforces Limit/Distinct on the records actually handed to
		// sink, so the real sink (the result handler or the next stage's
		// index) only ever sees the capped, deduplicated set (SUPPLEMENT §4
		// of SPEC_FULL.md; stage.go's emit path is the sole enforcement
		// point — no post-hoc trimming of an already-emitted buffer).
		emit := gateEmit(st, sink)

		switch st.Kind {
		case SEED:
			err = e.runSeed(records, emit)
		case PIVOT:
			err = e.runPivot(records, st, prevIndex, emit)
		case JOIN:
			err = e.runJoin(records, st, prevIndex, emit)
		}
		if err != nil {
			return err
		}

		if isLast {
			if !e.Handler.Success() {
				return werrors.DataSourceError("result handler reported failure", nil)
			}
			prevIndex = nil
			continue
		}

		// Only the just-built index (for stage i+1 to consume) and the
		// in-flight records slice for stage i+1 stay live; stage i's raw
		// records are eligible for collection once this loop iteration
		// ends (spec §3 lifecycles, §4.6 step 4).
		prevIndex = nextIndex
	}
	return nil
}

// gateEmit wraps sink so Limit/Distinct are enforced against what sink
// actually receives, not against a copy trimmed after the fact (spec §4
// SUPPLEMENT: "enforced in the Stage Executor's emit path").
func gateEmit(st *Stage, sink match.Emit) match.Emit {
	if !st.Distinct && st.Limit == nil {
		return sink
	}
	var seen []weave.Record
	count := 0
	return func(rec weave.Record) error {
		if st.Limit != nil && count >= *st.Limit {
			return nil
		}
		if st.Distinct {
			for _, s := range seen {
				if recordsEqual(rec, s) {
					return nil
				}
			}
			seen = append(seen, rec)
		}
		count++
		return sink(rec)
	}
}

func (e *Executor) runSeed(records []weave.Record, emit match.Emit) error {
	for _, rec := range records {
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runPivot(records []weave.Record, st *Stage, prevIndex *index.Index, emit match.Emit) error {
	return match.Process(records, st.Conditions, prevIndex, nil, false, emit)
}

func (e *Executor) runJoin(records []weave.Record, st *Stage, prevIndex *index.Index, emit match.Emit) error {
	opts := st.JoinOpts
	if opts == nil {
		opts = &JoinOptions{}
	}
	fieldName := opts.FieldName
	if fieldName == "" {
		fieldName = DefaultJoinFieldName
	}

	cb := func(rec weave.Record, m weave.Record) {
		attachJoinMatch(rec, m, fieldName, opts.AsArray, e.Logger)
	}
	return match.Process(records, st.Conditions, prevIndex, cb, opts.ExcludeEmpty, emit)
}

// attachJoinMatch implements the join callback of spec §4.5.
func attachJoinMatch(rec weave.Record, m weave.Record, fieldName string, asArray bool, logger wlog.Logger) {
	if asArray {
		existing, present := rec[fieldName]
		if !present {
			rec[fieldName] = []weave.Value{m}
			return
		}
		if list, ok := existing.([]weave.Value); ok {
			rec[fieldName] = append(list, m)
			return
		}
		logger.Warnf("join field %q already present and not a list; leaving unchanged", fieldName)
		return
	}
	if _, present := rec[fieldName]; !present {
		rec[fieldName] = m
		return
	}
	logger.Warnf("join field %q already present; first match wins, leaving unchanged", fieldName)
}

// drain obtains records from src in batch or stream mode (spec §4.6 step
// 1); both modes must yield identical results.
func drain(src source.Source, stream bool) ([]weave.Record, error) {
	if stream {
		if ss, ok := src.(source.StreamSource); ok {
			it, err := ss.Stream()
			if err != nil {
				return nil, err
			}
			defer it.Close()
			var out []weave.Record
			for it.Next() {
				out = append(out, it.Record())
			}
			if err := it.Err(); err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	if bs, ok := src.(source.BatchSource); ok {
		return bs.Batch()
	}
	if ss, ok := src.(source.StreamSource); ok {
		it, err := ss.Stream()
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
	return nil, werrors.DataSourceError("source implements neither Batch nor Stream", nil)
}

// recordsEqual implements SUPPLEMENT "#distinct"'s deep-equality check
// (§4 of SPEC_FULL.md), used by gateEmit to dedupe a stage's emitted
// output.
func recordsEqual(a, b weave.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		// Nested maps and slices are not comparable with ==, so compare
		// them structurally.
		lk, rk := reflect.ValueOf(v).Kind(), reflect.ValueOf(bv).Kind()
		if lk == reflect.Map || lk == reflect.Slice || rk == reflect.Map || rk == reflect.Slice {
			if !reflect.DeepEqual(v, bv) {
				return false
			}
			continue
		}
		if !weave.CompareValues(v, bv) {
			return false
		}
	}
	return true
}
