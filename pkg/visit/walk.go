package visit

import (
	"sort"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/registry"
	"github.com/appsworld/machex/pkg/swiftmeta"
)

// Model is everything a visitor walk needs: the processed ObjC model, the
// processed Swift model, plus the shared structure registry built up while
// parsing the former (spec.md §6 "visit(model, sink, options)").
type Model struct {
	ObjC       *objc.Model
	Swift      *swiftmeta.Model
	Structures *registry.StructureRegistry
}

// Walk drives v over m in the declaration order spec.md §5/§6 specifies:
// structures, then protocols, then classes, then categories; within a
// class/category/protocol: ivars, properties, class methods, instance
// methods; protocol optionals last, bracketed by BeginOptional/EndOptional.
func Walk(m *Model, v Visitor, doc DocumentInfo, opts Options) {
	v.Begin(doc)
	defer v.End()

	if m.ObjC != nil {
		v.VisitCFStrings(m.ObjC.CFStrings)
	}

	if opts.ShowStructures && !opts.HideStructures && m.Structures != nil {
		for _, t := range m.Structures.Ordered() {
			v.VisitStructure(t)
		}
	}

	if opts.ShowProtocols && !opts.HideProtocols {
		for _, p := range orderProtocols(m.ObjC.Protocols, opts.Sort) {
			walkProtocol(v, p)
		}
	}

	if !opts.HideClasses {
		for _, c := range orderClasses(m.ObjC.Classes, opts.Sort) {
			walkClass(v, c)
		}
		for _, cat := range orderCategories(m.ObjC.Categories, opts.Sort) {
			walkCategory(v, cat)
		}
	}

	if !opts.HideSwift && m.Swift != nil {
		for _, t := range m.Swift.Types {
			v.VisitSwiftType(t)
		}
		for _, c := range m.Swift.Conformances {
			v.VisitSwiftConformance(c)
		}
	}
}

func walkProtocol(v Visitor, p *objc.Protocol) {
	v.VisitProtocol(p)
	ref := EntityRef{Kind: EntityProtocol, Name: p.Name}
	for _, prop := range p.Properties {
		v.VisitProperty(ref, &prop, false)
	}
	for _, m := range p.ClassMethods {
		v.VisitMethod(ref, &m, true, false)
	}
	for _, m := range p.InstanceMethods {
		v.VisitMethod(ref, &m, false, false)
	}
	if len(p.OptionalClassMethods)+len(p.OptionalInstanceMethods)+len(p.OptionalProperties) > 0 {
		v.BeginOptional(ref)
		for _, prop := range p.OptionalProperties {
			v.VisitProperty(ref, &prop, true)
		}
		for _, m := range p.OptionalClassMethods {
			v.VisitMethod(ref, &m, true, true)
		}
		for _, m := range p.OptionalInstanceMethods {
			v.VisitMethod(ref, &m, false, true)
		}
		v.EndOptional(ref)
	}
	v.EndEntity(ref)
}

func walkClass(v Visitor, c *objc.Class) {
	v.VisitClass(c)
	ref := EntityRef{Kind: EntityClass, Name: c.Name}
	for _, iv := range c.Ivars {
		v.VisitIvar(ref, &iv)
	}
	for _, prop := range c.Properties {
		v.VisitProperty(ref, &prop, false)
	}
	for _, m := range c.ClassMethods {
		v.VisitMethod(ref, &m, true, false)
	}
	for _, m := range c.InstanceMethods {
		v.VisitMethod(ref, &m, false, false)
	}
	v.EndEntity(ref)
}

func walkCategory(v Visitor, cat *objc.Category) {
	v.VisitCategory(cat)
	ref := EntityRef{Kind: EntityCategory, Name: cat.ClassName, Category: cat.Name}
	for _, prop := range cat.Properties {
		v.VisitProperty(ref, &prop, false)
	}
	for _, m := range cat.ClassMethods {
		v.VisitMethod(ref, &m, true, false)
	}
	for _, m := range cat.InstanceMethods {
		v.VisitMethod(ref, &m, false, false)
	}
	v.EndEntity(ref)
}

func orderProtocols(in []*objc.Protocol, sortOrder SortOrder) []*objc.Protocol {
	out := append([]*objc.Protocol(nil), in...)
	if sortOrder == SortAlphabetic {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

func orderClasses(in []*objc.Class, sortOrder SortOrder) []*objc.Class {
	out := append([]*objc.Class(nil), in...)
	switch sortOrder {
	case SortAlphabetic:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortByInheritance:
		out = topoSortByInheritance(out)
	}
	return out
}

func orderCategories(in []*objc.Category, sortOrder SortOrder) []*objc.Category {
	out := append([]*objc.Category(nil), in...)
	if sortOrder == SortAlphabetic {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

// topoSortByInheritance orders classes so a superclass is always emitted
// before its subclasses; classes whose superclass is external or absent
// are treated as roots. Ties broken by address to keep the ordering
// deterministic (spec.md §8 invariant 8).
func topoSortByInheritance(in []*objc.Class) []*objc.Class {
	byName := make(map[string]*objc.Class, len(in))
	for _, c := range in {
		byName[c.Name] = c
	}
	depth := make(map[string]int, len(in))
	var depthOf func(name string, seen map[string]bool) int
	depthOf = func(name string, seen map[string]bool) int {
		if d, ok := depth[name]; ok {
			return d
		}
		c, ok := byName[name]
		if !ok || c.SuperclassName == "" || seen[name] {
			depth[name] = 0
			return 0
		}
		seen[name] = true
		d := depthOf(c.SuperclassName, seen) + 1
		depth[name] = d
		return d
	}
	for _, c := range in {
		depthOf(c.Name, map[string]bool{})
	}
	out := append([]*objc.Class(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := depth[out[i].Name], depth[out[j].Name]
		if di != dj {
			return di < dj
		}
		return out[i].Address < out[j].Address
	})
	return out
}
