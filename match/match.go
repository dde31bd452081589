// Package match implements the match & filter engine (spec §4.4): for each
// right-hand record produced by a stage's source, it consults the previous
// stage's index to decide whether the record passes (pivot mode) or to
// discover left-hand matches to attach (join mode).
package match

import (
	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/index"
	"github.com/wbrown/weaveq/relation"
)

// JoinCallback is invoked once per discovered left-hand match m for a
// right-hand record (spec §4.4 join mode, §4.5).
type JoinCallback func(rec weave.Record, m weave.Record)

// Emit receives a record that passed filtering, in source order.
type Emit func(rec weave.Record) error

// Process runs the match & filter algorithm over records against
// prevIndex, keyed on filterConditions, and calls emit for every record
// that passes. If onJoinMatch is non-nil the engine runs in join mode
// (spec §4.4 "Join mode"), and excludeEmpty controls whether a join
// group needs at least one fired callback to count as satisfied; in pivot
// mode (onJoinMatch == nil) excludeEmpty is ignored.
//
// Ordering: records are processed in the order given (source order);
// within a record, groups are evaluated in DNF order, and within a group,
// conditions in stored order; join callbacks fire in index-discovery order.
func Process(records []weave.Record, filterConditions relation.Conjunctions, prevIndex *index.Index, onJoinMatch JoinCallback, excludeEmpty bool, emit Emit) error {
	for _, rec := range records {
		passed, err := evaluate(rec, filterConditions, prevIndex, onJoinMatch, excludeEmpty)
		if err != nil {
			return err
		}
		if passed {
			if err := emit(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// evaluate decides whether rec passes, running join callbacks along the way
// when onJoinMatch is set.
func evaluate(rec weave.Record, conditions relation.Conjunctions, prevIndex *index.Index, onJoinMatch JoinCallback, excludeEmpty bool) (bool, error) {
	if len(conditions) == 0 {
		// Zero groups: unconditional pass (spec §4.4 step 3).
		return true, nil
	}
	for gi, group := range conditions {
		satisfied, err := evaluateGroup(rec, gi, group, prevIndex, onJoinMatch, excludeEmpty)
		if err != nil {
			return false, err
		}
		if satisfied {
			// Once satisfied, do not evaluate remaining groups (spec §4.4
			// join mode: "Once satisfied, do not evaluate remaining
			// groups").
			return true, nil
		}
	}
	return false, nil
}

// evaluateGroup evaluates a single DNF group against rec.
func evaluateGroup(rec weave.Record, gi int, group relation.Group, prevIndex *index.Index, onJoinMatch JoinCallback, excludeEmpty bool) (bool, error) {
	var eqValues []weave.Value
	var neConds []neCond
	for _, cond := range group {
		// Resolve applies the right field's proxy.
		fval, ok := cond.RightField.Resolve(rec)
		if !ok {
			// Missing field disqualifies this group, not the record
			// (spec §4.4 step 1a, §7: per-record accessor failures are
			// not errors).
			return false, nil
		}
		if cond.Op == relation.EQ {
			eqValues = append(eqValues, fval)
		} else {
			neConds = append(neConds, neCond{index: len(neConds), value: fval})
		}
	}

	if onJoinMatch == nil {
		return evaluatePivotGroup(gi, eqValues, neConds, prevIndex), nil
	}
	return evaluateJoinGroup(rec, gi, eqValues, neConds, prevIndex, onJoinMatch, excludeEmpty), nil
}

type neCond struct {
	index int
	value weave.Value
}

// evaluatePivotGroup implements spec §4.4 pivot mode: a group is satisfied
// iff (no NE conditions, or none of them match) AND (no EQ conditions, or
// at least one EQ match).
func evaluatePivotGroup(gi int, eqValues []weave.Value, neConds []neCond, prevIndex *index.Index) bool {
	if len(neConds) > 0 {
		for _, nc := range neConds {
			if len(prevIndex.NELookup(gi, nc.index, nc.value)) > 0 {
				// NE short-circuit: a single match disqualifies.
				return false
			}
		}
	}
	if len(eqValues) > 0 {
		if len(prevIndex.EQLookup(gi, eqValues)) == 0 {
			return false
		}
	}
	return true
}

// evaluateJoinGroup implements spec §4.4 join mode: computes the match set
// M for the group (EQ-only, NE-only via set-complement, or EQ+NE), fires
// onJoinMatch for each member, and reports whether the group is satisfied:
// unconditionally if excludeEmpty is false, or only if at least one
// callback fired if excludeEmpty is true (spec §4.4: "A group is satisfied
// if (exclude_empty = false) or (exclude_empty = true and at least one
// callback fired)").
func evaluateJoinGroup(rec weave.Record, gi int, eqValues []weave.Value, neConds []neCond, prevIndex *index.Index, onJoinMatch JoinCallback, excludeEmpty bool) bool {
	matches, fired := matchSet(gi, eqValues, neConds, prevIndex)
	for _, m := range matches {
		onJoinMatch(rec, m)
	}
	if excludeEmpty {
		return fired
	}
	return true
}

// matchSet computes M for a group per spec §4.4 step 2's three cases, and
// reports whether it is non-empty (fired) so callers without
// exclude_empty=true still know a group's vanilla satisfaction.
func matchSet(gi int, eqValues []weave.Value, neConds []neCond, prevIndex *index.Index) ([]weave.Record, bool) {
	hasEQ := len(eqValues) > 0
	hasNE := len(neConds) > 0

	switch {
	case hasEQ && !hasNE:
		m := prevIndex.EQLookup(gi, eqValues)
		return m, len(m) > 0
	case hasNE && !hasEQ:
		population := prevIndex.NEPopulation(gi)
		excluded := identitySet(nil)
		for _, nc := range neConds {
			excluded.addAll(prevIndex.NELookup(gi, nc.index, nc.value))
		}
		var out []weave.Record
		for _, r := range population {
			if !excluded.has(r) {
				out = append(out, r)
			}
		}
		out = dedupeByIdentity(out)
		return out, len(out) > 0
	case hasEQ && hasNE:
		eqMatches := prevIndex.EQLookup(gi, eqValues)
		excluded := identitySet(nil)
		for _, nc := range neConds {
			excluded.addAll(prevIndex.NELookup(gi, nc.index, nc.value))
		}
		var out []weave.Record
		for _, r := range eqMatches {
			if !excluded.has(r) {
				out = append(out, r)
			}
		}
		return out, len(out) > 0
	default:
		// No conditions at all in this group: vacuously satisfied, no
		// matches to report.
		return nil, true
	}
}
