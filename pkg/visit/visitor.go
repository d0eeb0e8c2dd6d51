package visit

import (
	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/swiftmeta"
)

// EntityKind disambiguates which kind of container a Visit* call's Owner
// belongs to, since protocols, classes and categories share a selector/
// property/ivar namespace at the Go type level but not at the ABI level.
type EntityKind int

const (
	EntityProtocol EntityKind = iota
	EntityClass
	EntityCategory
)

// EntityRef names the container a member (method, property, ivar) belongs
// to. Passed alongside every member Visit* call so a sink can build its
// per-entity output without the walker needing to expose nested begin/end
// pairs per class — per spec.md §9 "no shared base-class state", each
// sink owns whatever buffering it needs keyed by EntityRef itself.
type EntityRef struct {
	Kind EntityKind
	Name string
	// Category is set only when Kind == EntityCategory: the class the
	// category extends (spec.md's "@interface Class (Name)").
	Category string
}

// DocumentInfo is passed to Begin, giving a sink enough context to emit
// a generator/header block without reaching back into the model.
type DocumentInfo struct {
	GeneratorName    string
	GeneratorVersion string
	ModuleName       string
	Platform         string
	Timestamp        string // RFC 3339; set by the caller, never computed here

	// SwiftABIVersion is derived from the model's __objc_imageinfo flags
	// (pkg/objc.Model.SwiftABIVersion) and overwritten by pipeline.Emit
	// regardless of what the caller passes in; it is not meant to be set
	// by hand.
	SwiftABIVersion string
}

// Visitor is the capability set a concrete sink implements (spec.md §9
// "Dynamic dispatch over visitor sinks"). No shared base-class state: each
// sink keeps whatever buffers it needs privately.
type Visitor interface {
	Begin(doc DocumentInfo)
	End()

	VisitProtocol(p *objc.Protocol)
	VisitClass(c *objc.Class)
	VisitCategory(cat *objc.Category)

	VisitMethod(owner EntityRef, m *objc.Method, isClassMethod, optional bool)
	VisitProperty(owner EntityRef, p *objc.Property, optional bool)
	VisitIvar(owner EntityRef, iv *objc.Ivar)

	BeginOptional(owner EntityRef)
	EndOptional(owner EntityRef)

	// EndEntity closes the block opened by VisitProtocol/VisitClass/
	// VisitCategory, once every member call for that entity has been made
	// (spec.md §6 "@end" terminates every block).
	EndEntity(owner EntityRef)

	// VisitStructure is called once per structure in the registry's
	// topological order, ahead of any class/protocol callbacks, when
	// Options.ShowStructures is set (spec.md §6 "CDStructures.h").
	VisitStructure(t *encoding.Type)

	// VisitCFStrings is called once, before any protocol/class/category
	// callback, with every __cfstring constant-pool entry the model
	// carries (SPEC_FULL.md §4 "supplemented features"). Sinks that don't
	// surface constant strings may no-op.
	VisitCFStrings(strs []objc.CFString)

	// VisitSwiftType is called once per processed Swift nominal type
	// (spec.md §4.5 "Swift metadata"), after every ObjC entity has been
	// walked, when Options.HideSwift is unset and the model carries a
	// Swift component. Sinks with no Swift-specific rendering may no-op.
	VisitSwiftType(t *swiftmeta.Type)

	// VisitSwiftConformance is called once per processed protocol-
	// conformance record, after all VisitSwiftType calls.
	VisitSwiftConformance(c *swiftmeta.Conformance)
}
