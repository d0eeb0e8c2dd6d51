package visit

import (
	"fmt"
	"testing"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/registry"
	"github.com/appsworld/machex/pkg/swiftmeta"
)

// recordingVisitor logs every call it receives, in order, as a short tag
// string -- enough to assert on ordering without comparing full rendered
// text.
type recordingVisitor struct {
	calls []string
}

func (r *recordingVisitor) Begin(doc DocumentInfo) { r.calls = append(r.calls, "begin") }
func (r *recordingVisitor) End()                   { r.calls = append(r.calls, "end") }
func (r *recordingVisitor) VisitProtocol(p *objc.Protocol) {
	r.calls = append(r.calls, "protocol:"+p.Name)
}
func (r *recordingVisitor) VisitClass(c *objc.Class) { r.calls = append(r.calls, "class:"+c.Name) }
func (r *recordingVisitor) VisitCategory(cat *objc.Category) {
	r.calls = append(r.calls, "category:"+cat.Name)
}
func (r *recordingVisitor) VisitMethod(owner EntityRef, m *objc.Method, isClassMethod, optional bool) {
	r.calls = append(r.calls, "method:"+m.Selector)
}
func (r *recordingVisitor) VisitProperty(owner EntityRef, p *objc.Property, optional bool) {
	r.calls = append(r.calls, "property:"+p.Name)
}
func (r *recordingVisitor) VisitIvar(owner EntityRef, iv *objc.Ivar) {
	r.calls = append(r.calls, "ivar:"+iv.Name)
}
func (r *recordingVisitor) BeginOptional(owner EntityRef) { r.calls = append(r.calls, "begin-optional") }
func (r *recordingVisitor) EndOptional(owner EntityRef)   { r.calls = append(r.calls, "end-optional") }
func (r *recordingVisitor) EndEntity(owner EntityRef)     { r.calls = append(r.calls, "end-entity") }
func (r *recordingVisitor) VisitStructure(t *encoding.Type) {
	r.calls = append(r.calls, "struct:"+t.Tag)
}
func (r *recordingVisitor) VisitCFStrings(strs []objc.CFString) {
	r.calls = append(r.calls, fmt.Sprintf("cfstrings:%d", len(strs)))
}
func (r *recordingVisitor) VisitSwiftType(t *swiftmeta.Type) {
	r.calls = append(r.calls, "swifttype:"+t.Name)
}
func (r *recordingVisitor) VisitSwiftConformance(c *swiftmeta.Conformance) {
	r.calls = append(r.calls, "swiftconformance:"+c.ProtocolName)
}

func TestWalkOrdersStructuresProtocolsClassesCategories(t *testing.T) {
	structs := registry.NewStructureRegistry()
	typ, _, err := encoding.ParseType("{CGPoint=dd}")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	structs.Register(typ)

	m := &Model{
		ObjC: &objc.Model{
			Protocols: []*objc.Protocol{{Name: "Copying"}},
			Classes:   []*objc.Class{{Name: "Widget"}},
			Categories: []*objc.Category{{Name: "Extras", ClassName: "Widget"}},
		},
		Structures: structs,
	}
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, DefaultOptions())

	want := []string{
		"begin",
		"cfstrings:0",
		"struct:CGPoint",
		"protocol:Copying", "end-entity",
		"class:Widget", "end-entity",
		"category:Extras", "end-entity",
		"end",
	}
	if len(v.calls) != len(want) {
		t.Fatalf("got %d calls %v, want %d %v", len(v.calls), v.calls, len(want), want)
	}
	for i := range want {
		if v.calls[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q (full: %v)", i, v.calls[i], want[i], v.calls)
		}
	}
}

func TestWalkProtocolOptionalsBracketed(t *testing.T) {
	m := &Model{
		ObjC: &objc.Model{
			Protocols: []*objc.Protocol{{
				Name:                 "Delegate",
				InstanceMethods:      []objc.Method{{Selector: "required"}},
				OptionalInstanceMethods: []objc.Method{{Selector: "optional"}},
			}},
		},
	}
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, DefaultOptions())

	want := []string{
		"begin",
		"cfstrings:0",
		"protocol:Delegate",
		"method:required",
		"begin-optional",
		"method:optional",
		"end-optional",
		"end-entity",
		"end",
	}
	if len(v.calls) != len(want) {
		t.Fatalf("got %v, want %v", v.calls, want)
	}
	for i := range want {
		if v.calls[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, v.calls[i], want[i])
		}
	}
}

func TestWalkHideClassesSuppressesClassesAndCategories(t *testing.T) {
	m := &Model{
		ObjC: &objc.Model{
			Classes:    []*objc.Class{{Name: "Widget"}},
			Categories: []*objc.Category{{Name: "Extras", ClassName: "Widget"}},
		},
	}
	opts := DefaultOptions()
	opts.HideClasses = true
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, opts)

	for _, c := range v.calls {
		if c == "class:Widget" || c == "category:Extras" {
			t.Errorf("HideClasses should suppress classes/categories, got %v", v.calls)
		}
	}
}

func TestWalkSortAlphabeticOrdersClassesByName(t *testing.T) {
	m := &Model{
		ObjC: &objc.Model{
			Classes: []*objc.Class{{Name: "Zebra"}, {Name: "Alpha"}},
		},
	}
	opts := DefaultOptions()
	opts.Sort = SortAlphabetic
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, opts)

	var order []string
	for _, c := range v.calls {
		if len(c) > 6 && c[:6] == "class:" {
			order = append(order, c[6:])
		}
	}
	if len(order) != 2 || order[0] != "Alpha" || order[1] != "Zebra" {
		t.Errorf("class order = %v, want [Alpha Zebra]", order)
	}
}

func TestWalkSortByInheritancePutsSuperclassFirst(t *testing.T) {
	m := &Model{
		ObjC: &objc.Model{
			Classes: []*objc.Class{
				{Name: "Derived", Address: 0x10, SuperclassName: "Base"},
				{Name: "Base", Address: 0x20},
			},
		},
	}
	opts := DefaultOptions()
	opts.Sort = SortByInheritance
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, opts)

	var order []string
	for _, c := range v.calls {
		if len(c) > 6 && c[:6] == "class:" {
			order = append(order, c[6:])
		}
	}
	if len(order) != 2 || order[0] != "Base" || order[1] != "Derived" {
		t.Errorf("class order = %v, want [Base Derived] (superclass first despite a lower address)", order)
	}
}

func TestWalkWalksSwiftTypesAndConformancesAfterObjC(t *testing.T) {
	m := &Model{
		ObjC: &objc.Model{Classes: []*objc.Class{{Name: "Widget"}}},
		Swift: &swiftmeta.Model{
			Types:        []*swiftmeta.Type{{Name: "Point", Kind: swiftmeta.KindStruct}},
			Conformances: []*swiftmeta.Conformance{{ProtocolName: "Codable", TypeName: "Point"}},
		},
	}
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, DefaultOptions())

	want := []string{
		"begin", "cfstrings:0",
		"class:Widget", "end-entity",
		"swifttype:Point",
		"swiftconformance:Codable",
		"end",
	}
	if len(v.calls) != len(want) {
		t.Fatalf("got %v, want %v", v.calls, want)
	}
	for i := range want {
		if v.calls[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, v.calls[i], want[i])
		}
	}
}

func TestWalkHideSwiftSuppressesSwiftTypes(t *testing.T) {
	m := &Model{
		ObjC:  &objc.Model{},
		Swift: &swiftmeta.Model{Types: []*swiftmeta.Type{{Name: "Point", Kind: swiftmeta.KindStruct}}},
	}
	opts := DefaultOptions()
	opts.HideSwift = true
	v := &recordingVisitor{}
	Walk(m, v, DocumentInfo{}, opts)

	for _, c := range v.calls {
		if c == "swifttype:Point" {
			t.Errorf("HideSwift should suppress Swift types, got %v", v.calls)
		}
	}
}
