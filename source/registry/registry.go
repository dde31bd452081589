// Package registry replaces dynamic discovery of source types by
// reflection (spec §9 Design Notes) with an explicit {ident -> factory}
// map populated at program start, matching the teacher's preference for
// small explicit constructor tables over runtime type scanning.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wbrown/weaveq/source"
	"github.com/wbrown/weaveq/werrors"
)

// Registry resolves a "TYPE:LOCATION" URI (spec §6) to a concrete source.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]source.Builder
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{factories: map[string]source.Builder{}}
}

// Register adds a factory for a source type (case-insensitive).
func (r *Registry) Register(sourceType string, factory source.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(sourceType)] = factory
}

// Build parses "TYPE:LOCATION" (first ':' delimits, type case-insensitive,
// spec §6) and dispatches to the registered factory, passing filter
// through opaquely. Unknown types fail with werrors.DataSourceBuildError,
// listing known types sorted for a stable message.
func (r *Registry) Build(uri string, filter string) (source.Source, error) {
	sourceType, location, ok := splitURI(uri)
	if !ok {
		return nil, werrors.DataSourceBuildError(fmt.Sprintf("malformed source URI %q: expected TYPE:LOCATION", uri), nil)
	}
	r.mu.RLock()
	factory, found := r.factories[strings.ToLower(sourceType)]
	known := r.knownTypesLocked()
	r.mu.RUnlock()
	if !found {
		return nil, werrors.DataSourceBuildError(
			fmt.Sprintf("unknown source type %q; known types: %s", sourceType, strings.Join(known, ", ")), nil)
	}
	src, err := factory(location, filter)
	if err != nil {
		return nil, werrors.DataSourceBuildError(fmt.Sprintf("building %q source", sourceType), err)
	}
	return src, nil
}

func (r *Registry) knownTypesLocked() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func splitURI(uri string) (sourceType, location string, ok bool) {
	idx := strings.IndexByte(uri, ':')
	if idx < 0 {
		return "", "", false
	}
	return uri[:idx], uri[idx+1:], true
}
