package registry

import (
	"sort"
	"sync"

	"github.com/appsworld/machex/pkg/objc/encoding"
)

// StructureRegistry maps a struct/union tag to its parsed composite type
// and the set of other tags it directly depends on (for members that are
// themselves, or point to, another tagged composite). Emission order is
// the topological order (Kahn's algorithm, spec.md §4.6): dependencies
// are declared before dependents, and a cycle is broken by emitting a
// forward declaration for the cycle's lexicographically smallest member.
type StructureRegistry struct {
	mu      sync.Mutex
	structs map[string]*encoding.Type
	deps    map[string]map[string]bool
}

// NewStructureRegistry returns an empty registry.
func NewStructureRegistry() *StructureRegistry {
	return &StructureRegistry{
		structs: make(map[string]*encoding.Type),
		deps:    make(map[string]map[string]bool),
	}
}

// Known reports whether tag has been registered with a full (non-forward)
// definition. Implements encoding.KnownStructResolver.
func (r *StructureRegistry) Known(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.structs[tag]
	return ok && t.Members != nil
}

// Register records t under its tag. A later registration with a full
// member list replaces an earlier forward-only registration; a
// forward-only registration never overwrites a full one.
func (r *StructureRegistry) Register(t *encoding.Type) {
	if t == nil || t.Tag == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.structs[t.Tag]; ok && existing.Members != nil && t.Members == nil {
		return
	}
	r.structs[t.Tag] = t
	if _, ok := r.deps[t.Tag]; !ok {
		r.deps[t.Tag] = make(map[string]bool)
	}
	for _, m := range t.Members {
		collectDeps(m, r.deps[t.Tag])
	}
}

func collectDeps(t *encoding.Type, into map[string]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case encoding.KindStruct, encoding.KindUnion:
		if t.Tag != "" {
			into[t.Tag] = true
		}
		for _, m := range t.Members {
			collectDeps(m, into)
		}
	case encoding.KindPointer:
		if t.Pointee != nil && (t.Pointee.Kind == encoding.KindStruct || t.Pointee.Kind == encoding.KindUnion) {
			// a pointer-to-struct does not require the member struct's
			// full definition to precede it textually (a forward
			// declaration suffices), so it is not a topological dependency.
			return
		}
		collectDeps(t.Pointee, into)
	case encoding.KindArray:
		collectDeps(t.ArrayOf, into)
	}
}

// Ordered returns every registered tag's composite Type in topological
// order (dependencies first). Cycle members that cannot be strictly
// ordered are broken by emitting the cycle's lexicographically smallest
// tag as a forward declaration, then proceeding.
func (r *StructureRegistry) Ordered() []*encoding.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]string, 0, len(r.structs))
	for tag := range r.structs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	indeg := make(map[string]int, len(tags))
	for _, tag := range tags {
		indeg[tag] = 0
	}
	for tag, ds := range r.deps {
		for dep := range ds {
			if _, ok := indeg[dep]; ok {
				indeg[tag]++
			}
		}
	}

	var ready []string
	for _, tag := range tags {
		if indeg[tag] == 0 {
			ready = append(ready, tag)
		}
	}
	sort.Strings(ready)

	var order []string
	emitted := make(map[string]bool)
	remaining := len(tags)

	for remaining > 0 {
		if len(ready) == 0 {
			// cycle: pick the smallest un-emitted tag and force it out
			// as a forward declaration, then recompute readiness.
			var pick string
			for _, tag := range tags {
				if !emitted[tag] {
					pick = tag
					break
				}
			}
			order = append(order, pick)
			emitted[pick] = true
			remaining--
			for tag, ds := range r.deps {
				if emitted[tag] {
					continue
				}
				if ds[pick] {
					indeg[tag]--
					if indeg[tag] == 0 {
						ready = append(ready, tag)
					}
				}
			}
			sort.Strings(ready)
			continue
		}
		sort.Strings(ready)
		tag := ready[0]
		ready = ready[1:]
		if emitted[tag] {
			continue
		}
		order = append(order, tag)
		emitted[tag] = true
		remaining--
		for other, ds := range r.deps {
			if emitted[other] {
				continue
			}
			if ds[tag] {
				indeg[other]--
				if indeg[other] == 0 {
					ready = append(ready, other)
				}
			}
		}
	}

	result := make([]*encoding.Type, 0, len(order))
	for _, tag := range order {
		result = append(result, r.structs[tag])
	}
	return result
}
