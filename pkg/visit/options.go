// Package visit implements the pull-based visitor pipeline that walks a
// processed ObjC/Swift model and drives one of several output sinks
// (spec.md §4.9, §6, §9 "dynamic dispatch over visitor sinks").
package visit

// DemangleStyle controls how Swift names are rendered, orthogonal to sink.
type DemangleStyle int

const (
	DemangleSwift DemangleStyle = iota // module-qualified
	DemangleObjC                       // module stripped
	DemangleNone                       // raw mangled string
)

// MethodStyle selects the rendering grammar text sinks use for methods.
type MethodStyle int

const (
	MethodStyleObjC MethodStyle = iota
	MethodStyleSwift
)

// OutputStyle selects the text sink's overall declaration grammar.
type OutputStyle int

const (
	OutputObjC OutputStyle = iota
	OutputSwift
)

// SortOrder controls cross-entity emission order (spec.md §5 "Ordering").
type SortOrder int

const (
	SortSourceOrder        SortOrder = iota // as discovered / by address
	SortAlphabetic
	SortByInheritance
)

// Options is the closed set of configuration recognized by the visitor
// (spec.md §6 "Configuration options").
type Options struct {
	ShowMethodAddresses bool
	ShowIvarOffsets     bool
	ShowRawTypes        bool
	ShowStructures      bool
	ShowProtocols       bool

	HideClasses    bool
	HideProtocols  bool
	HideStructures bool
	HideSwift      bool

	Sort SortOrder

	Arch string

	DemangleStyle DemangleStyle
	MethodStyle   MethodStyle
	OutputStyle   OutputStyle
}

// DefaultOptions returns the visitor's baseline configuration: everything
// shown, source-order emission, ObjC-flavored rendering.
func DefaultOptions() Options {
	return Options{
		ShowStructures: true,
		ShowProtocols:  true,
		Sort:           SortSourceOrder,
		DemangleStyle:  DemangleSwift,
		MethodStyle:    MethodStyleObjC,
		OutputStyle:    OutputObjC,
	}
}
