// Package jsonsink implements the structured-JSON sink (spec.md §6 sink 3):
// one object with protocols/classes/categories arrays, methods carrying
// selector/typeEncoding/address, ivars carrying name/typeEncoding/offset.
package jsonsink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/swiftmeta"
	"github.com/appsworld/machex/pkg/visit"
)

type generatorInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Timestamp       string `json:"timestamp"`
	SwiftABIVersion string `json:"swiftABIVersion,omitempty"`
}

type cfStringJSON struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

type swiftFieldJSON struct {
	Name              string `json:"name"`
	MangledTypeName   string `json:"mangledTypeName,omitempty"`
	DemangledTypeName string `json:"demangledTypeName,omitempty"`
	BoundIvarType     string `json:"boundIvarType,omitempty"`
}

type swiftTypeJSON struct {
	Name           string           `json:"name"`
	Kind           string           `json:"kind"`
	ModuleName     string           `json:"moduleName,omitempty"`
	SuperclassName string           `json:"superclassName,omitempty"`
	ObjCClassName  string           `json:"objcClassName,omitempty"`
	IsGeneric      bool             `json:"isGeneric,omitempty"`
	GenericParams  []string         `json:"genericParams,omitempty"`
	Fields         []swiftFieldJSON `json:"fields,omitempty"`
}

type swiftConformanceJSON struct {
	ProtocolName string `json:"protocolName"`
	TypeName     string `json:"typeName,omitempty"`
	IsObjCClass  bool   `json:"isObjCClass,omitempty"`
}

type methodJSON struct {
	Selector     string `json:"selector"`
	TypeEncoding string `json:"typeEncoding"`
	Address      string `json:"address,omitempty"`
}

type ivarJSON struct {
	Name         string `json:"name"`
	TypeEncoding string `json:"typeEncoding"`
	Offset       string `json:"offset"`
}

type propertyJSON struct {
	Name       string `json:"name"`
	Attributes string `json:"attributes"`
}

type entityJSON struct {
	Name                    string         `json:"name"`
	MangledName             string         `json:"mangledName,omitempty"`
	Superclass              string         `json:"superclass,omitempty"`
	Category                string         `json:"category,omitempty"`
	AdoptedProtocols        []string       `json:"adoptedProtocols,omitempty"`
	InheritedProtocols      []string       `json:"inheritedProtocols,omitempty"`
	ClassMethods            []methodJSON   `json:"classMethods"`
	InstanceMethods         []methodJSON   `json:"instanceMethods"`
	OptionalClassMethods    []methodJSON   `json:"optionalClassMethods,omitempty"`
	OptionalInstanceMethods []methodJSON   `json:"optionalInstanceMethods,omitempty"`
	Properties              []propertyJSON `json:"properties"`
	OptionalProperties      []propertyJSON `json:"optionalProperties,omitempty"`
	InstanceVariables       []ivarJSON     `json:"instanceVariables"`
	Diagnostics             []string       `json:"diagnostics,omitempty"`
	IsNonLazy               bool           `json:"isNonLazy,omitempty"`
}

type document struct {
	SchemaVersion     string                 `json:"schemaVersion"`
	Generator         generatorInfo          `json:"generator"`
	Protocols         []*entityJSON          `json:"protocols"`
	Classes           []*entityJSON          `json:"classes"`
	Categories        []*entityJSON          `json:"categories"`
	CFStrings         []cfStringJSON         `json:"cfStrings,omitempty"`
	SwiftTypes        []swiftTypeJSON        `json:"swiftTypes,omitempty"`
	SwiftConformances []swiftConformanceJSON `json:"swiftConformances,omitempty"`
}

// Sink accumulates the walked model in memory and marshals it to W on End.
type Sink struct {
	W       io.Writer
	Options visit.Options

	doc     document
	current *entityJSON
}

// New returns a Sink ready to be passed to visit.Walk.
func New(w io.Writer, opts visit.Options) *Sink {
	return &Sink{W: w, Options: opts}
}

func (s *Sink) Begin(doc visit.DocumentInfo) {
	s.doc = document{
		SchemaVersion: "1.0",
		Generator: generatorInfo{
			Name:            doc.GeneratorName,
			Version:         doc.GeneratorVersion,
			Timestamp:       doc.Timestamp,
			SwiftABIVersion: doc.SwiftABIVersion,
		},
	}
}

func (s *Sink) VisitCFStrings(strs []objc.CFString) {
	for _, cs := range strs {
		s.doc.CFStrings = append(s.doc.CFStrings, cfStringJSON{
			Address: fmt.Sprintf("0x%x", cs.Address),
			Value:   cs.Value,
		})
	}
}

func (s *Sink) End() {
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	_ = enc.Encode(s.doc)
}

func (s *Sink) VisitStructure(t *encoding.Type) {}

func (s *Sink) VisitProtocol(p *objc.Protocol) {
	e := &entityJSON{Name: p.Name, InheritedProtocols: p.InheritedProtocols}
	s.doc.Protocols = append(s.doc.Protocols, e)
	s.current = e
}

func (s *Sink) VisitClass(c *objc.Class) {
	e := &entityJSON{
		Name:             c.Name,
		Superclass:       c.SuperclassName,
		AdoptedProtocols: c.AdoptedProtocols,
		IsNonLazy:        c.IsNonLazy,
	}
	for _, d := range c.Diagnostics {
		e.Diagnostics = append(e.Diagnostics, d.Message)
	}
	s.doc.Classes = append(s.doc.Classes, e)
	s.current = e
}

func (s *Sink) VisitCategory(cat *objc.Category) {
	e := &entityJSON{
		Name:             cat.ClassName,
		Category:         cat.Name,
		AdoptedProtocols: cat.AdoptedProtocols,
	}
	s.doc.Categories = append(s.doc.Categories, e)
	s.current = e
}

func (s *Sink) VisitIvar(owner visit.EntityRef, iv *objc.Ivar) {
	if s.current == nil {
		return
	}
	s.current.InstanceVariables = append(s.current.InstanceVariables, ivarJSON{
		Name:         iv.Name,
		TypeEncoding: iv.RawEncoding,
		Offset:       fmt.Sprintf("0x%x", iv.Offset),
	})
}

func (s *Sink) VisitProperty(owner visit.EntityRef, p *objc.Property, optional bool) {
	if s.current == nil {
		return
	}
	pj := propertyJSON{Name: p.Name}
	if p.Attrs != nil {
		pj.Attributes = p.Attrs.RawType
	}
	if optional {
		s.current.OptionalProperties = append(s.current.OptionalProperties, pj)
		return
	}
	s.current.Properties = append(s.current.Properties, pj)
}

func (s *Sink) VisitMethod(owner visit.EntityRef, m *objc.Method, isClassMethod, optional bool) {
	if s.current == nil {
		return
	}
	mj := methodJSON{Selector: m.Selector, TypeEncoding: m.RawEncoding}
	if m.HasImpAddr {
		mj.Address = fmt.Sprintf("0x%x", m.ImpAddr)
	}
	switch {
	case isClassMethod && optional:
		s.current.OptionalClassMethods = append(s.current.OptionalClassMethods, mj)
	case isClassMethod:
		s.current.ClassMethods = append(s.current.ClassMethods, mj)
	case optional:
		s.current.OptionalInstanceMethods = append(s.current.OptionalInstanceMethods, mj)
	default:
		s.current.InstanceMethods = append(s.current.InstanceMethods, mj)
	}
}

func (s *Sink) VisitSwiftType(t *swiftmeta.Type) {
	tj := swiftTypeJSON{
		Name:           t.Name,
		Kind:           t.Kind.String(),
		ModuleName:     t.ModuleName,
		SuperclassName: t.SuperclassName,
		ObjCClassName:  t.ObjCClassName,
		IsGeneric:      t.IsGeneric,
		GenericParams:  t.GenericParams,
	}
	for _, f := range t.Fields {
		fj := swiftFieldJSON{
			Name:              f.Name,
			MangledTypeName:   f.MangledTypeName,
			DemangledTypeName: f.DemangledTypeName,
		}
		if f.BoundIvarType != nil {
			fj.BoundIvarType = f.BoundIvarRaw
		}
		tj.Fields = append(tj.Fields, fj)
	}
	s.doc.SwiftTypes = append(s.doc.SwiftTypes, tj)
}

func (s *Sink) VisitSwiftConformance(c *swiftmeta.Conformance) {
	s.doc.SwiftConformances = append(s.doc.SwiftConformances, swiftConformanceJSON{
		ProtocolName: c.ProtocolName,
		TypeName:     c.TypeName,
		IsObjCClass:  c.IsObjCClass,
	})
}

func (s *Sink) BeginOptional(owner visit.EntityRef) {}
func (s *Sink) EndOptional(owner visit.EntityRef)   {}
func (s *Sink) EndEntity(owner visit.EntityRef)     { s.current = nil }
