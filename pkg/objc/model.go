// Package objc turns the root package's raw ObjC-2 accessors (GetObjCClasses,
// GetObjCProtocols, GetObjCCategories, ...) into the processed model
// spec.md §6 calls process_objc: a Model keyed for emission, with
// addresses resolved through the chained-fixup imports where the
// teacher's raw accessors only expose a bind name string.
//
// Grounded on the teacher's objc.go; the addition here is the explicit
// Processor/Model split spec.md §4.4/§9 calls for, plus the parallel
// per-class/per-protocol loading spec.md §4.9 requires (the teacher
// loads classes and protocols sequentially in a single goroutine).
package objc

import (
	"sort"

	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/registry"
	"github.com/appsworld/machex/types/objc"
)

// Diagnostic is a recoverable per-record error (spec.md §7 kind 2):
// attached to the owning entity rather than aborting the run.
type Diagnostic struct {
	Entity  string // e.g. "class MyClass", "category MyClass(Foo)"
	Message string
}

// Method is the processed form of an ObjC method: selector, parsed
// type signature, and optional implementation address.
type Method struct {
	Selector    string
	RawEncoding string
	Signature   *encoding.MethodSignature
	ImpAddr     uint64
	HasImpAddr  bool
	FromSmall   bool // originated from a small (relative-pointer) method list
}

// Ivar is the processed form of an ObjC instance variable.
type Ivar struct {
	Name        string
	RawEncoding string
	Type        *encoding.Type
	Offset      uint32

	// SwiftFieldType is set when this ivar backs a Swift stored property
	// on a class with both ObjC and Swift metadata (spec.md §4.5 "Field/
	// ivar binding"): the demangled Swift field type name, so a sink can
	// annotate the ivar's declaration with it without reaching into the
	// Swift model directly.
	SwiftFieldType string
}

// Property is the processed form of an ObjC property.
type Property struct {
	Name  string
	Attrs *encoding.Property
}

// Class is the processed form of an ObjC class (spec.md §3 "ObjC class").
type Class struct {
	Name    string
	Address uint64

	SuperclassName     string
	SuperclassExternal bool // true if resolved via a chained-fixup bind

	ClassMethods    []Method
	InstanceMethods []Method
	Properties      []Property
	Ivars           []Ivar
	AdoptedProtocols []string

	SwiftConformances []string
	IsSwift           bool
	IsExported        bool
	IsNonLazy         bool

	Diagnostics []Diagnostic
}

// Category is the processed form of an ObjC category.
type Category struct {
	Name               string
	Address            uint64
	ClassName          string
	ClassIsExternal    bool
	ClassMethods       []Method
	InstanceMethods    []Method
	Properties         []Property
	AdoptedProtocols   []string
	Diagnostics        []Diagnostic
}

// Protocol is the processed form of an ObjC protocol.
type Protocol struct {
	Name                    string
	Address                 uint64
	InheritedProtocols      []string
	ClassMethods            []Method
	InstanceMethods         []Method
	OptionalClassMethods    []Method
	OptionalInstanceMethods []Method
	Properties              []Property
	OptionalProperties      []Property
	Diagnostics             []Diagnostic
}

// Model is the complete processed ObjC-2 metadata for one Mach-O slice.
type Model struct {
	Classes    []*Class
	Categories []*Category
	Protocols  []*Protocol

	CFStrings []CFString

	// SwiftABIVersion is the Swift runtime version embedded in
	// __objc_imageinfo's flags word, decoded the way the ObjC runtime
	// itself does it (empty if the image carries no Swift metadata).
	SwiftABIVersion string

	Diagnostics []Diagnostic
}

// CFString is a __cfstring constant-pool entry (supplemented feature,
// SPEC_FULL.md §4).
type CFString struct {
	Address uint64
	Value   string
}

// The sort*ByAddress helpers order classes/categories/protocols for deterministic
// emission once parallel loading's completion order is discarded
// (spec.md §4.9 "Ordering guarantees").
func sortClassesByAddress(cs []*Class)       { sort.Slice(cs, func(i, j int) bool { return cs[i].Address < cs[j].Address }) }
func sortCategoriesByAddress(cs []*Category) { sort.Slice(cs, func(i, j int) bool { return cs[i].Address < cs[j].Address }) }
func sortProtocolsByAddress(ps []*Protocol)  { sort.Slice(ps, func(i, j int) bool { return ps[i].Address < ps[j].Address }) }

func rawMethod(name, types string, imp uint64, hasImp bool, mc *registry.MethodCache, small bool) Method {
	sig, _ := mc.Parse(types)
	return Method{Selector: name, RawEncoding: types, Signature: sig, ImpAddr: imp, HasImpAddr: hasImp, FromSmall: small}
}

func convertMethods(in []objc.Method, mc *registry.MethodCache, structs *registry.StructureRegistry) []Method {
	out := make([]Method, 0, len(in))
	for _, m := range in {
		mm := rawMethod(m.Name, m.Types, m.ImpVMAddr, m.ImpVMAddr != 0, mc, false)
		if mm.Signature != nil && structs != nil {
			registerStructsIn(mm.Signature.ReturnType, structs)
			for _, a := range mm.Signature.Args {
				registerStructsIn(a.Type, structs)
			}
		}
		out = append(out, mm)
	}
	return out
}

func convertIvars(in []objc.Ivar, tc *registry.TypeCache, structs *registry.StructureRegistry) []Ivar {
	out := make([]Ivar, 0, len(in))
	for _, iv := range in {
		t, _ := tc.Parse(iv.Type)
		registerStructsIn(t, structs)
		out = append(out, Ivar{Name: iv.Name, RawEncoding: iv.Type, Type: t, Offset: iv.Offset})
	}
	return out
}

func convertProperties(in []objc.Property, structs *registry.StructureRegistry) []Property {
	out := make([]Property, 0, len(in))
	for _, p := range in {
		attrs, _ := encoding.ParsePropertyAttributes(p.EncodedAttributes)
		if attrs != nil {
			registerStructsIn(attrs.Type, structs)
		}
		out = append(out, Property{Name: p.Name, Attrs: attrs})
	}
	return out
}

// registerStructsIn walks a parsed type's tree and registers every struct/
// union node it finds in the shared structure registry (spec.md §4.6
// "Structure registry"), so CDStructures.h-style emission has something
// to topologically order regardless of which member first introduced a
// given tag.
func registerStructsIn(t *encoding.Type, structs *registry.StructureRegistry) {
	if t == nil || structs == nil {
		return
	}
	switch t.Kind {
	case encoding.KindStruct, encoding.KindUnion:
		structs.Register(t)
		for _, m := range t.Members {
			registerStructsIn(m, structs)
		}
	case encoding.KindPointer:
		registerStructsIn(t.Pointee, structs)
	case encoding.KindArray:
		registerStructsIn(t.ArrayOf, structs)
	case encoding.KindBlock:
		if t.Signature != nil {
			registerStructsIn(t.Signature.ReturnType, structs)
			for _, a := range t.Signature.Args {
				registerStructsIn(a.Type, structs)
			}
		}
	}
}

func protocolNames(in []objc.Protocol) []string {
	var out []string
	for _, p := range in {
		out = append(out, p.Name)
	}
	return out
}
