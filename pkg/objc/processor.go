package objc

import (
	"fmt"
	"strings"

	"github.com/appsworld/machex/pkg/registry"
	mobjc "github.com/appsworld/machex/types/objc"
	"golang.org/x/sync/errgroup"
)

// Source is the subset of *machex.File the processor needs. Declaring it
// as an interface (rather than importing the root package directly)
// keeps pkg/objc independent of machex's concrete type, matching
// spec.md §6's process_objc(MachO) -> ObjcModel boundary.
type Source interface {
	HasObjC() bool
	GetObjCClasses() ([]*mobjc.Class, error)
	GetObjCNonLazyClasses() ([]*mobjc.Class, error)
	GetObjCCategories() ([]mobjc.Category, error)
	GetObjCProtocols() ([]mobjc.Protocol, error)
	GetCFStrings() ([]mobjc.CFString, error)
	GetObjCImageInfo() (*mobjc.ImageInfo, error)
}

// Processor walks a Mach-O slice's ObjC-2 metadata and produces a Model.
// Per-class and per-protocol conversion runs in parallel (spec.md §4.9);
// results are merged and sorted by address before being returned so that
// task-completion order never leaks into the output (spec.md §4.9
// "Ordering guarantees").
type Processor struct {
	Source Source
	Ctx    *registry.Context
}

// NewProcessor returns a Processor sharing the given registry Context;
// pass a fresh registry.NewContext() per run.
func NewProcessor(src Source, ctx *registry.Context) *Processor {
	return &Processor{Source: src, Ctx: ctx}
}

// Process builds the full ObjC Model. Returns an error only for the
// fatal case of a corrupt __objc_classlist itself (spec.md §4.4 "Failure
// semantics"); malformed individual entities are recorded as diagnostics
// on the Model and on their owning entity instead of aborting the run.
func (p *Processor) Process() (*Model, error) {
	m := &Model{}
	if !p.Source.HasObjC() {
		return m, nil
	}

	nonLazy, err := p.Source.GetObjCNonLazyClasses()
	if err != nil {
		// non-fatal: absence of a non-lazy list does not invalidate the run
		nonLazy = nil
	}
	nonLazySet := make(map[uint64]bool, len(nonLazy))
	for _, c := range nonLazy {
		nonLazySet[c.ClassPtr] = true
	}

	rawClasses, err := p.Source.GetObjCClasses()
	if err != nil {
		return nil, fmt.Errorf("objc: corrupt __objc_classlist: %w", err)
	}

	classes := make([]*Class, len(rawClasses))
	var g errgroup.Group
	for i, rc := range rawClasses {
		i, rc := i, rc
		g.Go(func() error {
			classes[i] = p.convertClass(rc, nonLazySet[rc.ClassPtr])
			return nil
		})
	}
	_ = g.Wait() // per-class conversion never returns an error; failures become Diagnostics

	rawProtocols, err := p.Source.GetObjCProtocols()
	if err != nil {
		rawProtocols = nil
		m.Diagnostics = append(m.Diagnostics, Diagnostic{Entity: "protocols", Message: err.Error()})
	}
	protocols := make([]*Protocol, len(rawProtocols))
	var g2 errgroup.Group
	for i, rp := range rawProtocols {
		i, rp := i, rp
		g2.Go(func() error {
			protocols[i] = p.convertProtocol(rp)
			return nil
		})
	}
	_ = g2.Wait()

	rawCategories, err := p.Source.GetObjCCategories()
	if err != nil {
		rawCategories = nil
		m.Diagnostics = append(m.Diagnostics, Diagnostic{Entity: "categories", Message: err.Error()})
	}
	categories := make([]*Category, len(rawCategories))
	for i, rc := range rawCategories {
		categories[i] = p.convertCategory(rc)
	}

	if cfstrings, err := p.Source.GetCFStrings(); err == nil {
		for _, cs := range cfstrings {
			m.CFStrings = append(m.CFStrings, CFString{Address: cs.Address, Value: cs.Name})
		}
	}

	if info, err := p.Source.GetObjCImageInfo(); err == nil {
		if v := info.Flags.SwiftVersion(); v != "not swift" {
			m.SwiftABIVersion = v
		}
	}

	m.Classes = classes
	m.Categories = categories
	m.Protocols = protocols
	sortClassesByAddress(m.Classes)
	sortCategoriesByAddress(m.Categories)
	sortProtocolsByAddress(m.Protocols)

	p.registerMethodSignatures(m)
	return m, nil
}

func (p *Processor) convertClass(rc *mobjc.Class, isNonLazy bool) *Class {
	c := &Class{
		Name:              rc.Name,
		Address:           rc.ClassPtr,
		SuperclassName:    rc.SuperClass,
		ClassMethods:      convertMethods(rc.ClassMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		InstanceMethods:   convertMethods(rc.InstanceMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		Properties:        convertProperties(rc.Props, p.Ctx.Structures),
		Ivars:             convertIvars(rc.Ivars, p.Ctx.Types, p.Ctx.Structures),
		AdoptedProtocols:  protocolNames(rc.Protocols),
		IsSwift:           rc.IsSwiftLegacy || rc.IsSwiftStable,
		IsExported:        !rc.ReadOnlyData.Flags.IsHidden(),
		IsNonLazy:         isNonLazy,
	}
	if rc.SuperClass == "<ROOT>" || rc.SuperClass == "<META>" {
		c.SuperclassName = ""
	} else if rc.SuperClass != "" && rc.SuperClassPtr == 0 {
		// Resolved via a chained-fixup bind (spec.md §4.4 "External class
		// resolution"): no in-binary class record backs this name.
		c.SuperclassName = stripClassSymbolPrefix(rc.SuperClass)
		c.SuperclassExternal = true
	}
	return c
}

func (p *Processor) convertCategory(rc mobjc.Category) *Category {
	cat := &Category{
		Name:             rc.Name,
		Address:          rc.VMAddr,
		ClassMethods:     convertMethods(rc.ClassMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		InstanceMethods:  convertMethods(rc.InstanceMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		Properties:       convertProperties(rc.Properties, p.Ctx.Structures),
		AdoptedProtocols: protocolNames(rc.Protocols),
	}
	if rc.Class != nil {
		cat.ClassName = rc.Class.Name
		cat.ClassIsExternal = rc.Class.ClassPtr == 0
	}
	return cat
}

func (p *Processor) convertProtocol(rp mobjc.Protocol) *Protocol {
	var inherited []string
	for _, sub := range rp.Prots {
		inherited = append(inherited, sub.Name)
	}
	return &Protocol{
		Name:                    rp.Name,
		Address:                 rp.Ptr,
		InheritedProtocols:      inherited,
		ClassMethods:            convertMethods(rp.ClassMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		InstanceMethods:         convertMethods(rp.InstanceMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		OptionalClassMethods:    convertMethods(rp.OptionalClassMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		OptionalInstanceMethods: convertMethods(rp.OptionalInstanceMethods, p.Ctx.MethodEnc, p.Ctx.Structures),
		Properties:              convertProperties(rp.InstanceProperties, p.Ctx.Structures),
	}
}

// registerMethodSignatures populates the shared method-signature registry
// so bare @? block encodings can later be enhanced by selector lookup
// (spec.md §4.6), protocol sources taking priority over class sources.
func (p *Processor) registerMethodSignatures(m *Model) {
	for _, c := range m.Classes {
		for _, meth := range append(append([]Method{}, c.ClassMethods...), c.InstanceMethods...) {
			p.Ctx.Methods.Register(meth.Selector, registry.SourceClass, meth.Signature)
		}
	}
	for _, proto := range m.Protocols {
		all := append(append(append(append([]Method{}, proto.ClassMethods...), proto.InstanceMethods...), proto.OptionalClassMethods...), proto.OptionalInstanceMethods...)
		for _, meth := range all {
			p.Ctx.Methods.Register(meth.Selector, registry.SourceProtocol, meth.Signature)
		}
	}
}

// stripClassSymbolPrefix strips the "_OBJC_CLASS_$_" prefix a chained-fixup
// bind name carries for an externally-referenced ObjC class symbol
// (spec.md §4.4 "External class resolution").
func stripClassSymbolPrefix(name string) string {
	return strings.TrimPrefix(name, "_OBJC_CLASS_$_")
}
