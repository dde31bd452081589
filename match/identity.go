package match

import (
	"reflect"

	"github.com/wbrown/weaveq"
)

// identitySet tracks weave.Record membership by reference identity (map
// header pointer), not value equality — spec §4.4: "Set-complement
// semantics use record identity ..., not value equality."
type identitySetT struct {
	seen map[uintptr]bool
}

func identitySet(initial []weave.Record) *identitySetT {
	s := &identitySetT{seen: make(map[uintptr]bool, len(initial))}
	s.addAll(initial)
	return s
}

func recordPtr(rec weave.Record) uintptr {
	if rec == nil {
		return 0
	}
	return reflect.ValueOf(rec).Pointer()
}

func (s *identitySetT) add(rec weave.Record) {
	s.seen[recordPtr(rec)] = true
}

func (s *identitySetT) addAll(recs []weave.Record) {
	for _, r := range recs {
		s.add(r)
	}
}

func (s *identitySetT) has(rec weave.Record) bool {
	return s.seen[recordPtr(rec)]
}

// dedupeByIdentity removes repeated references while preserving first-seen
// order.
func dedupeByIdentity(recs []weave.Record) []weave.Record {
	seen := make(map[uintptr]bool, len(recs))
	out := make([]weave.Record, 0, len(recs))
	for _, r := range recs {
		p := recordPtr(r)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, r)
	}
	return out
}
