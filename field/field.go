// Package field resolves named, possibly dotted-path fields against
// weave.Record values and applies proxy transforms before comparison.
package field

import (
	"reflect"
	"strings"
	"sync"

	"github.com/wbrown/weaveq"
)

// Proxy transforms a raw field value into the value used for equality and
// inequality comparisons. Proxies must be pure and deterministic.
type Proxy func(name string, raw weave.Value) weave.Value

// Identity is the default proxy: it returns the raw value unchanged.
func Identity(_ string, raw weave.Value) weave.Value { return raw }

// F is a field reference: a dotted path plus the proxy applied to whatever
// is resolved at that path.
type F struct {
	Name  string
	Proxy Proxy
}

// New builds a field reference. A nil proxy defaults to Identity.
func New(name string, proxy Proxy) F {
	if proxy == nil {
		proxy = Identity
	}
	return F{Name: name, Proxy: proxy}
}

// Resolve looks the field up on rec and applies its proxy. ok is false if
// any path segment is missing or traverses a non-map value.
func (f F) Resolve(rec weave.Record) (weave.Value, bool) {
	raw, ok := Value(rec, f.Name)
	if !ok {
		return nil, false
	}
	return f.Proxy(f.Name, raw), true
}

// Exists reports whether the dotted path resolves to something in rec.
func Exists(rec weave.Record, path string) bool {
	_, ok := Value(rec, path)
	return ok
}

// Value walks a dotted path ("a.b.c") through nested map-shaped records and
// returns the leaf value. A missing key, or an intermediate segment that is
// not itself map-shaped, yields ok == false ("missing"), never a panic.
func Value(rec weave.Record, path string) (weave.Value, bool) {
	if rec == nil {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var cur weave.Value = rec
	for _, seg := range segments {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, present := m[seg]
		if !present {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func asMap(v weave.Value) (map[string]weave.Value, bool) {
	switch m := v.(type) {
	case weave.Record:
		return map[string]weave.Value(m), true
	case map[string]weave.Value:
		return m, true
	case map[string]interface{}:
		out := make(map[string]weave.Value, len(m))
		for k, vv := range m {
			out[k] = vv
		}
		return out, true
	default:
		return nil, false
	}
}

// Accessor is a reusable, memoizing resolver for a single dotted path; each
// call supplies the record, and the cache holds the last record resolved.
// Correctness must never depend on the cache
// being warm: ClearCache simply forces the next Value/Exists call to
// re-resolve from the record, matching spec §4.2's "the underlying record
// may mutate" contract.
type Accessor struct {
	path string

	mu     sync.Mutex
	rec    weave.Record
	cached weave.Value
	hasVal bool
	warm   bool
}

// NewAccessor builds an Accessor bound to a dotted path, reusable across
// many records via Value/Exists (each call supplies its own record).
func NewAccessor(path string) *Accessor {
	return &Accessor{path: path}
}

// Value resolves the accessor's path against rec, using the cache only when
// the last resolved record is still rec (identity, not deep equality).
func (a *Accessor) Value(rec weave.Record) (weave.Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.warm && sameRecord(a.rec, rec) {
		return a.cached, a.hasVal
	}
	v, ok := Value(rec, a.path)
	a.rec, a.cached, a.hasVal, a.warm = rec, v, ok, true
	return v, ok
}

// Exists reports whether the accessor's path resolves against rec.
func (a *Accessor) Exists(rec weave.Record) bool {
	_, ok := a.Value(rec)
	return ok
}

// ClearCache drops any memoized resolution, forcing the next call to
// re-walk the record.
func (a *Accessor) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.warm = false
	a.cached = nil
	a.hasVal = false
	a.rec = nil
}

func sameRecord(a, b weave.Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
