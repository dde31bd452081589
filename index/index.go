// Package index implements the per-stage equality/inequality hash index
// (spec §3, §4.3) that the match & filter engine (package match) consults
// when a later stage filters or joins against an earlier stage's records.
package index

import (
	"fmt"

	"github.com/wbrown/weaveq"
	"github.com/wbrown/weaveq/relation"
)

// key is a single (condition index within its kind, proxied value) pair
// used both as an EQ tuple element and as an NE key.
type key struct {
	condIndex int
	value     weave.Value
}

// tupleKey is the lookup key for eq_map: the ordered tuple of EQ keys for
// one group, turned into a comparable string so it can key a Go map (the
// proxied values are not guaranteed to be hashable types like maps/slices,
// so we render them rather than relying on interface{} equality for the
// composite key — same concern the teacher's tuple_key.go addresses for
// composite relation keys).
type tupleKey string

func tuple(keys []key) tupleKey {
	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("%d:%v|", k.condIndex, k.value)
	}
	return tupleKey(s)
}

func neKeyString(k key) tupleKey {
	return tuple([]key{k})
}

// groupIndex holds the EQ and NE multimaps for one conjunction group.
type groupIndex struct {
	eqMap map[tupleKey][]weave.Record
	neMap map[tupleKey][]weave.Record
	// neAll is the flat union of every record ever inserted into any of
	// this group's neMap buckets, needed for NE-only join set-complement
	// (spec §4.4: "M = union of prev_index.ne_map[gi] values minus
	// ne_matches").
	neAll []weave.Record
}

// Index is the previous stage's per-group hash index that the next stage's
// match & filter engine consults (spec §3 Index, §4.3).
type Index struct {
	conditions relation.Conjunctions
	groups     []*groupIndex
	succeeded  bool
}

// New builds an empty Index keyed on the given DNF conditions — typically
// the *next* stage's filter conditions (spec §4.6 step 2).
func New(conditions relation.Conjunctions) *Index {
	groups := make([]*groupIndex, len(conditions))
	for i := range groups {
		groups[i] = &groupIndex{eqMap: map[tupleKey][]weave.Record{}, neMap: map[tupleKey][]weave.Record{}}
	}
	return &Index{conditions: conditions, groups: groups}
}

// Insert indexes rec into every group whose fields it satisfies (spec
// §4.3). A record is inserted into group g's index only if every field
// group g references exists on rec (invariant a); insertion is at-most-
// once per record per group, but a record may be indexed under several
// groups independently.
func (idx *Index) Insert(rec weave.Record) {
	for gi, group := range idx.conditions {
		var eqKeys []key
		var neKeys []key
		satisfied := true
		for _, cond := range group {
			raw, ok := cond.LeftField.Resolve(rec)
			if !ok {
				satisfied = false
				break
			}
			// condIndex is the position within its own kind (EQ or NE),
			// not within the group as a whole — this is what lets the
			// match engine's fkey (also ci-within-kind, spec §4.4) align
			// with the key built here for the same group.
			if cond.Op == relation.EQ {
				eqKeys = append(eqKeys, key{condIndex: len(eqKeys), value: raw})
			} else {
				neKeys = append(neKeys, key{condIndex: len(neKeys), value: raw})
			}
		}
		if !satisfied {
			continue
		}
		idx.succeeded = true
		gidx := idx.groups[gi]
		if len(eqKeys) > 0 {
			tk := tuple(eqKeys)
			gidx.eqMap[tk] = append(gidx.eqMap[tk], rec)
		}
		for _, k := range neKeys {
			nk := neKeyString(k)
			gidx.neMap[nk] = append(gidx.neMap[nk], rec)
			gidx.neAll = append(gidx.neAll, rec)
		}
	}
}

// Succeeded reports whether at least one record was possibly-related on
// some group (spec §4.3).
func (idx *Index) Succeeded() bool { return idx.succeeded }

// Conditions returns the DNF this index is keyed on.
func (idx *Index) Conditions() relation.Conjunctions { return idx.conditions }

// EQLookup returns the records matching the EQ tuple of group gi for the
// given ordered EQ key values (one per EQ condition in the group, in
// order). Returns nil if there is no match.
func (idx *Index) EQLookup(gi int, eqValues []weave.Value) []weave.Record {
	if gi < 0 || gi >= len(idx.groups) {
		return nil
	}
	keys := make([]key, len(eqValues))
	for i, v := range eqValues {
		keys[i] = key{condIndex: i, value: v}
	}
	return idx.groups[gi].eqMap[tuple(keys)]
}

// NELookup returns the records whose NE-indexed field equals the given
// value for condition ci of group gi.
func (idx *Index) NELookup(gi, ci int, value weave.Value) []weave.Record {
	if gi < 0 || gi >= len(idx.groups) {
		return nil
	}
	return idx.groups[gi].neMap[neKeyString(key{condIndex: ci, value: value})]
}

// NEPopulation returns every record indexed under any NE key of group gi —
// the population set-complement for NE-only joins is drawn from (spec
// §4.4).
func (idx *Index) NEPopulation(gi int) []weave.Record {
	if gi < 0 || gi >= len(idx.groups) {
		return nil
	}
	return idx.groups[gi].neAll
}
