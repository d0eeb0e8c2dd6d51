// Package symbolgraph implements the DocC-style symbol-graph sink
// (spec.md §6 sink 4): metadata.formatVersion, module info, a flat
// symbols[] array keyed by USR-scheme precise identifiers, and a
// relationships[] array recording inheritance/conformance/membership.
package symbolgraph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/swiftmeta"
	"github.com/appsworld/machex/pkg/visit"
)

type formatVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

type metadata struct {
	FormatVersion formatVersion `json:"formatVersion"`
	Generator     string        `json:"generator"`
}

type moduleInfo struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type identifier struct {
	Precise string `json:"precise"`
}

type names struct {
	Title string `json:"title"`
}

type symbol struct {
	Kind       string     `json:"kind"`
	Identifier identifier `json:"identifier"`
	Names      names      `json:"names"`
}

type relationshipKind string

const (
	relInheritsFrom            relationshipKind = "inheritsFrom"
	relConformsTo              relationshipKind = "conformsTo"
	relMemberOf                relationshipKind = "memberOf"
	relRequirementOf           relationshipKind = "requirementOf"
	relOptionalRequirementOf   relationshipKind = "optionalRequirementOf"
)

type relationship struct {
	Kind   relationshipKind `json:"kind"`
	Source string           `json:"source"`
	Target string           `json:"target"`
}

type document struct {
	Metadata      metadata       `json:"metadata"`
	Module        moduleInfo     `json:"module"`
	Symbols       []symbol       `json:"symbols"`
	Relationships []relationship `json:"relationships"`
}

// Sink accumulates symbols/relationships as the walk proceeds and marshals
// the finished graph to W on End.
type Sink struct {
	W       io.Writer
	Options visit.Options

	doc        document
	currentUSR string
	// currentIsProtocol distinguishes "protocol" from "class" for the owner of
	// the current block, since member USRs and requirementOf vs. memberOf
	// depend on it.
	currentIsProtocol bool
}

// New returns a Sink ready to be passed to visit.Walk.
func New(w io.Writer, opts visit.Options) *Sink {
	return &Sink{W: w, Options: opts}
}

func (s *Sink) Begin(doc visit.DocumentInfo) {
	s.doc = document{
		Metadata: metadata{
			FormatVersion: formatVersion{Major: 0, Minor: 6, Patch: 0},
			Generator:     doc.GeneratorName + " " + doc.GeneratorVersion,
		},
		Module: moduleInfo{Name: doc.ModuleName, Platform: doc.Platform},
	}
}

func (s *Sink) End() {
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	_ = enc.Encode(s.doc)
}

func (s *Sink) VisitStructure(t *encoding.Type) {}

func (s *Sink) VisitCFStrings(strs []objc.CFString) {
	for _, cs := range strs {
		usr := fmt.Sprintf("c:cfstring@0x%x", cs.Address)
		s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "cfstring", Identifier: identifier{Precise: usr}, Names: names{Title: cs.Value}})
	}
}

func classUSR(name string) string     { return fmt.Sprintf("c:objc(cs)%s", name) }
func protocolUSR(name string) string  { return fmt.Sprintf("c:objc(pl)%s", name) }
func swiftTypeUSR(name string) string { return fmt.Sprintf("s:%s", name) }

func (s *Sink) VisitProtocol(p *objc.Protocol) {
	usr := protocolUSR(p.Name)
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "protocol", Identifier: identifier{Precise: usr}, Names: names{Title: p.Name}})
	for _, inherited := range p.InheritedProtocols {
		s.doc.Relationships = append(s.doc.Relationships, relationship{
			Kind: relConformsTo, Source: usr, Target: protocolUSR(inherited),
		})
	}
	s.currentUSR = usr
	s.currentIsProtocol = true
}

func (s *Sink) VisitClass(c *objc.Class) {
	usr := classUSR(c.Name)
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "class", Identifier: identifier{Precise: usr}, Names: names{Title: c.Name}})
	if c.SuperclassName != "" {
		s.doc.Relationships = append(s.doc.Relationships, relationship{
			Kind: relInheritsFrom, Source: usr, Target: classUSR(c.SuperclassName),
		})
	}
	for _, proto := range c.AdoptedProtocols {
		s.doc.Relationships = append(s.doc.Relationships, relationship{
			Kind: relConformsTo, Source: usr, Target: protocolUSR(proto),
		})
	}
	s.currentUSR = usr
	s.currentIsProtocol = false
}

func (s *Sink) VisitCategory(cat *objc.Category) {
	usr := classUSR(cat.ClassName)
	for _, proto := range cat.AdoptedProtocols {
		s.doc.Relationships = append(s.doc.Relationships, relationship{
			Kind: relConformsTo, Source: usr, Target: protocolUSR(proto),
		})
	}
	s.currentUSR = usr
	s.currentIsProtocol = false
}

func (s *Sink) VisitIvar(owner visit.EntityRef, iv *objc.Ivar) {
	usr := fmt.Sprintf("%s(ivar)%s", s.currentUSR, iv.Name)
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "ivar", Identifier: identifier{Precise: usr}, Names: names{Title: iv.Name}})
	s.doc.Relationships = append(s.doc.Relationships, relationship{Kind: relMemberOf, Source: usr, Target: s.currentUSR})
}

func (s *Sink) VisitProperty(owner visit.EntityRef, p *objc.Property, optional bool) {
	usr := fmt.Sprintf("%s(py)%s", s.currentUSR, p.Name)
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "property", Identifier: identifier{Precise: usr}, Names: names{Title: p.Name}})
	s.addMembership(usr, optional)
}

func (s *Sink) VisitMethod(owner visit.EntityRef, m *objc.Method, isClassMethod, optional bool) {
	selKind := "im"
	kind := "method"
	if isClassMethod {
		selKind = "cm"
		kind = "typeMethod"
	}
	usr := fmt.Sprintf("%s(%s)%s", s.currentUSR, selKind, m.Selector)
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: kind, Identifier: identifier{Precise: usr}, Names: names{Title: m.Selector}})
	s.addMembership(usr, optional)
}

func (s *Sink) addMembership(usr string, optional bool) {
	kind := relMemberOf
	if s.currentIsProtocol {
		kind = relRequirementOf
		if optional {
			kind = relOptionalRequirementOf
		}
	}
	s.doc.Relationships = append(s.doc.Relationships, relationship{Kind: kind, Source: usr, Target: s.currentUSR})
}

// VisitSwiftType adds a symbol (and, for classes, an inheritance
// relationship) for a processed Swift nominal type, mirroring the ObjC
// class/protocol handling above under the "s:" USR scheme DocC uses for
// Swift symbols.
func (s *Sink) VisitSwiftType(t *swiftmeta.Type) {
	usr := swiftTypeUSR(t.QualifiedName())
	s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: t.Kind.String(), Identifier: identifier{Precise: usr}, Names: names{Title: t.Name}})
	if t.SuperclassName != "" {
		s.doc.Relationships = append(s.doc.Relationships, relationship{
			Kind: relInheritsFrom, Source: usr, Target: swiftTypeUSR(t.SuperclassName),
		})
	}
	for _, f := range t.Fields {
		fieldUSR := fmt.Sprintf("%s.%s", usr, f.Name)
		s.doc.Symbols = append(s.doc.Symbols, symbol{Kind: "var", Identifier: identifier{Precise: fieldUSR}, Names: names{Title: f.Name}})
		s.doc.Relationships = append(s.doc.Relationships, relationship{Kind: relMemberOf, Source: fieldUSR, Target: usr})
	}
}

func (s *Sink) VisitSwiftConformance(c *swiftmeta.Conformance) {
	if c.TypeName == "" {
		return
	}
	target := protocolUSR(c.ProtocolName)
	source := swiftTypeUSR(c.TypeName)
	if c.IsObjCClass {
		source = classUSR(c.TypeName)
	}
	s.doc.Relationships = append(s.doc.Relationships, relationship{Kind: relConformsTo, Source: source, Target: target})
}

func (s *Sink) BeginOptional(owner visit.EntityRef) {}
func (s *Sink) EndOptional(owner visit.EntityRef)   {}
func (s *Sink) EndEntity(owner visit.EntityRef)     { s.currentUSR = ""; s.currentIsProtocol = false }
