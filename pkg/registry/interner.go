// Package registry holds the cross-referencing state that the ObjC and
// Swift processors populate during a run and the visitor pipeline
// queries during emission: the structure registry (forward declarations
// resolved to full definitions, topologically ordered), the
// method-signature registry (selector -> class/protocol methods, used to
// enhance bare block encodings), a content-addressed string interner,
// and the type-encoding/method-encoding parse caches (spec.md §4.6/§4.9).
//
// Every registry here is owned by a single Context per run
// (spec.md §9 "Global state -> scoped context"); there is no
// process-wide mutable state.
package registry

import "sync"

// StringInterner deduplicates strings read from the binary's string
// table: distinct offsets with identical contents share one allocation.
// Safe for concurrent use; last writer wins on a race since the value is
// content-determined.
type StringInterner struct {
	mu    sync.Mutex
	table map[string]*internedString
}

type internedString struct {
	s   string
	refs int
}

// NewStringInterner returns an empty interner.
func NewStringInterner() *StringInterner {
	return &StringInterner{table: make(map[string]*internedString)}
}

// Intern returns the canonical copy of s, incrementing its reference count.
func (si *StringInterner) Intern(s string) string {
	si.mu.Lock()
	defer si.mu.Unlock()
	if e, ok := si.table[s]; ok {
		e.refs++
		return e.s
	}
	si.table[s] = &internedString{s: s, refs: 1}
	return s
}

// Len reports the number of distinct strings currently interned.
func (si *StringInterner) Len() int {
	si.mu.Lock()
	defer si.mu.Unlock()
	return len(si.table)
}

// RefCount reports how many times s has been interned, 0 if never seen.
func (si *StringInterner) RefCount(s string) int {
	si.mu.Lock()
	defer si.mu.Unlock()
	if e, ok := si.table[s]; ok {
		return e.refs
	}
	return 0
}
