package registry

import (
	"sync"

	"github.com/appsworld/machex/pkg/objc/encoding"
)

// MethodSource distinguishes a class method from a protocol method for
// ambiguous-selector resolution (protocol sources outrank class sources,
// spec.md §3 "Method-signature registry").
type MethodSource int

const (
	SourceClass MethodSource = iota
	SourceProtocol
)

// MethodEntry is one (source, signature) pairing registered for a selector.
type MethodEntry struct {
	Source    MethodSource
	Signature *encoding.MethodSignature
}

// MethodSignatureRegistry maps a selector to every signature registered
// for it across the binary's classes and protocols. It is consulted when
// a block type-encoding is bare (`@?` with no embedded signature): the
// selector the block argument belongs to is looked up here, preferring a
// protocol-sourced signature over a class-sourced one.
type MethodSignatureRegistry struct {
	mu      sync.Mutex
	entries map[string][]MethodEntry
}

// NewMethodSignatureRegistry returns an empty registry.
func NewMethodSignatureRegistry() *MethodSignatureRegistry {
	return &MethodSignatureRegistry{entries: make(map[string][]MethodEntry)}
}

// Register records sig for selector under source.
func (r *MethodSignatureRegistry) Register(selector string, source MethodSource, sig *encoding.MethodSignature) {
	if sig == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[selector] = append(r.entries[selector], MethodEntry{Source: source, Signature: sig})
}

// Lookup returns the best signature for selector: a protocol-sourced
// entry if any exists, else the first class-sourced entry, else nil.
func (r *MethodSignatureRegistry) Lookup(selector string) *encoding.MethodSignature {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.entries[selector]
	if !ok || len(entries) == 0 {
		return nil
	}
	var classFallback *encoding.MethodSignature
	for _, e := range entries {
		if e.Source == SourceProtocol {
			return e.Signature
		}
		if classFallback == nil {
			classFallback = e.Signature
		}
	}
	return classFallback
}
