// Package swiftmeta turns the raw __swift5_* metadata sections into a
// processed Model: nominal types with resolved names and parent chains,
// field records bound against their owning type's ObjC ivars where the
// type is a Swift class, and protocol conformances resolved to a
// (protocol name, type name) pair.
//
// Grounded on the teacher's swift.go section-walking pattern (relative
// offset arrays over __swift5_types/__swift5_protos/__swift5_proto,
// headered record arrays over __swift5_fieldmd) and the wire layouts in
// types/swift/types, types/swift/fields and types/swift/protocols. The
// teacher's own GetSwiftTypes/GetSwiftFields never attach the resolved
// name/parent/field strings they compute to anything returned to the
// caller (they're only ever fmt.Printf'd); this package does the
// resolution and actually keeps the result.
package swiftmeta

import "github.com/appsworld/machex/pkg/objc/encoding"

// Kind mirrors types/swift/types.CDKind for the processed model so callers
// don't need the wire-layout package.
type Kind uint8

const (
	KindModule Kind = iota
	KindExtension
	KindAnonymous
	KindProtocol
	KindOpaqueType
	KindClass
	KindStruct
	KindEnum
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindExtension:
		return "extension"
	case KindAnonymous:
		return "anonymous"
	case KindProtocol:
		return "protocol"
	case KindOpaqueType:
		return "opaque_type"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Field is a processed field record: a stored property for a struct/class,
// a payload case for an enum.
type Field struct {
	Name               string
	MangledTypeName    string
	DemangledTypeName  string
	IsIndirectCase     bool
	IsWeak             bool
	IsVar              bool
	BoundIvarType      *encoding.Type // set when bound to an ObjC ivar encoding, spec.md §4.5 "field/ivar binding"
	BoundIvarRaw       string
}

// Type is a processed Swift nominal type (class, struct, enum, protocol,
// or module/extension/anonymous context).
type Type struct {
	Address     uint64
	Kind        Kind
	Name        string
	ParentName  string // resolved parent context name, empty for top-level
	ModuleName  string // innermost module this type's context chain resolves to

	IsGeneric       bool
	GenericParams   []string // synthesized T, U, V... per spec.md §4.5 "Generic parameter naming"
	SuperclassName  string   // class only

	Fields []Field

	// ObjCClassName is set when this Swift type's fields were bound
	// against an ObjC class of the same name (an `@objc` or NSObject
	// subclass emitted with both ObjC and Swift metadata).
	ObjCClassName string

	Diagnostics []string
}

func (t *Type) QualifiedName() string {
	if t.ModuleName == "" {
		return t.Name
	}
	return t.ModuleName + "." + t.Name
}

// Conformance is a processed protocol-conformance record: some concrete
// type conforms to some protocol, per __swift5_proto.
type Conformance struct {
	ProtocolName string
	TypeName     string // empty if the conforming type is an ObjC class resolved only by name
	IsObjCClass  bool
}

// Model is the complete processed Swift metadata for one Mach-O slice.
type Model struct {
	Types        []*Type
	Conformances []*Conformance
	Diagnostics  []string
}
