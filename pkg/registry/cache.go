package registry

import (
	"sync"

	"github.com/appsworld/machex/pkg/objc/encoding"
)

// TypeCache memoizes ParseType results keyed by the raw encoding string,
// shared across a processing run (spec.md §4.6 "Caches").
type TypeCache struct {
	mu    sync.Mutex
	types map[string]*encoding.Type
}

func NewTypeCache() *TypeCache {
	return &TypeCache{types: make(map[string]*encoding.Type)}
}

// Parse returns the cached AST for raw, parsing and caching it on first
// request. Concurrent callers racing on the same key both parse; the
// last write wins, which is safe because the result is content-determined.
func (c *TypeCache) Parse(raw string) (*encoding.Type, error) {
	c.mu.Lock()
	if t, ok := c.types[raw]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	t, _, err := encoding.ParseType(raw)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.types[raw] = t
	c.mu.Unlock()
	return t, nil
}

// MethodCache memoizes ParseMethodEncoding results keyed by the raw
// method-encoding string.
type MethodCache struct {
	mu   sync.Mutex
	sigs map[string]*encoding.MethodSignature
}

func NewMethodCache() *MethodCache {
	return &MethodCache{sigs: make(map[string]*encoding.MethodSignature)}
}

func (c *MethodCache) Parse(raw string) (*encoding.MethodSignature, error) {
	c.mu.Lock()
	if s, ok := c.sigs[raw]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := encoding.ParseMethodEncoding(raw)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.sigs[raw] = s
	c.mu.Unlock()
	return s, nil
}

// DemangleCache memoizes Swift demangled names keyed by the raw mangled
// string, shared across the Swift processor's concurrent type resolution.
type DemangleCache struct {
	mu    sync.Mutex
	names map[string]string
}

func NewDemangleCache() *DemangleCache {
	return &DemangleCache{names: make(map[string]string)}
}

func (c *DemangleCache) Get(mangled string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.names[mangled]
	return s, ok
}

func (c *DemangleCache) Put(mangled, demangled string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[mangled] = demangled
}

// Context bundles every registry a single processing run needs. A new
// run gets a new Context; nothing here is process-wide (spec.md §9
// "Global state -> scoped context").
type Context struct {
	Structures *StructureRegistry
	Methods    *MethodSignatureRegistry
	Strings    *StringInterner
	Types      *TypeCache
	MethodEnc  *MethodCache
	Demangle   *DemangleCache
}

// NewContext returns a fresh, empty Context.
func NewContext() *Context {
	return &Context{
		Structures: NewStructureRegistry(),
		Methods:    NewMethodSignatureRegistry(),
		Strings:    NewStringInterner(),
		Types:      NewTypeCache(),
		MethodEnc:  NewMethodCache(),
		Demangle:   NewDemangleCache(),
	}
}
