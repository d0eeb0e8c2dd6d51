// Package encoding implements the lexer, parser, and formatter for
// Objective-C runtime type-encoding strings (spec.md §4.6): primitives,
// pointers, arrays, structs, unions, bitfields, blocks, and qualified ids.
//
// It is grounded on the teacher repo's types/objc/type_encoding.go, which
// decodes the same grammar with ad hoc string slicing; this package
// replaces that with a real AST so the structure and method-signature
// registries (pkg/registry) have something to key topological order and
// block-signature cross-referencing on.
package encoding

// Kind discriminates the parsed Type variants.
type Kind int

const (
	KindPrimitive Kind = iota
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindBitfield
	KindBlock
	KindID
	KindClass
	KindSelector
	KindUnknown
)

// Type is the parsed AST node for one Objective-C type-encoding term.
type Type struct {
	Kind Kind

	// KindPrimitive
	PrimCode byte // e.g. 'i', 'f', 'v' ...

	// KindUnknown
	UnknownCode byte

	// KindPointer
	Pointee *Type

	// KindArray
	ArrayLen int
	ArrayOf  *Type

	// KindStruct / KindUnion
	Tag     string
	Members []*Type // nil if this is a forward reference (no '=' body)

	// KindBitfield
	BitWidth int

	// KindBlock
	Signature *MethodSignature // nil for a bare @? with no embedded signature

	// KindID
	Protocols []string // id<P1, P2>
}

// MethodSignature is the parsed form of a full method type-encoding
// string such as "@28@0:8@16i24": a return type plus one entry per
// argument (self and _cmd included at indices 0 and 1).
type MethodSignature struct {
	ReturnType *Type
	Args       []Arg
}

// Arg is one parsed method argument: its type and the stack-frame offset
// the encoding annotated it with (not meaningful beyond round-tripping).
type Arg struct {
	Type       *Type
	StackWidth int
}

// Role is the emission context passed to Format; the same AST renders
// differently as a property type vs. a method argument vs. a struct
// member (spec.md §4.6 "Formatter contract").
type Role int

const (
	RoleTopLevel Role = iota
	RoleIvar
	RoleMethodReturn
	RoleMethodArg
	RoleStructMember
	RoleProperty
)
