package objc

import (
	"errors"
	"testing"

	"github.com/appsworld/machex/pkg/registry"
	mobjc "github.com/appsworld/machex/types/objc"
)

type fakeSource struct {
	hasObjC    bool
	classes    []*mobjc.Class
	nonLazy    []*mobjc.Class
	categories []mobjc.Category
	protocols  []mobjc.Protocol
	cfstrings  []mobjc.CFString

	classesErr    error
	categoriesErr error
	protocolsErr  error
}

func (f *fakeSource) HasObjC() bool { return f.hasObjC }
func (f *fakeSource) GetObjCClasses() ([]*mobjc.Class, error) {
	return f.classes, f.classesErr
}
func (f *fakeSource) GetObjCNonLazyClasses() ([]*mobjc.Class, error) { return f.nonLazy, nil }
func (f *fakeSource) GetObjCCategories() ([]mobjc.Category, error) {
	return f.categories, f.categoriesErr
}
func (f *fakeSource) GetObjCProtocols() ([]mobjc.Protocol, error) { return f.protocols, f.protocolsErr }
func (f *fakeSource) GetCFStrings() ([]mobjc.CFString, error)    { return f.cfstrings, nil }
func (f *fakeSource) GetObjCImageInfo() (*mobjc.ImageInfo, error) {
	return nil, errors.New("no __objc_imageinfo")
}

func TestProcessorNoObjC(t *testing.T) {
	p := NewProcessor(&fakeSource{hasObjC: false}, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(m.Classes) != 0 || len(m.Protocols) != 0 || len(m.Categories) != 0 {
		t.Errorf("expected an empty model, got %+v", m)
	}
}

func TestProcessorCorruptClasslistIsFatal(t *testing.T) {
	p := NewProcessor(&fakeSource{hasObjC: true, classesErr: errors.New("truncated __objc_classlist")}, registry.NewContext())
	if _, err := p.Process(); err == nil {
		t.Fatalf("expected an error for a corrupt class list")
	}
}

func TestProcessorSortsByAddressRegardlessOfInputOrder(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{
			{Name: "Zebra", ClassPtr: 0x300},
			{Name: "Alpha", ClassPtr: 0x100},
			{Name: "Mid", ClassPtr: 0x200},
		},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(m.Classes) != 3 {
		t.Fatalf("got %d classes, want 3", len(m.Classes))
	}
	want := []string{"Alpha", "Mid", "Zebra"}
	for i, c := range m.Classes {
		if c.Name != want[i] {
			t.Errorf("Classes[%d] = %q, want %q", i, c.Name, want[i])
		}
	}
}

func TestProcessorNonLazyFlag(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{{Name: "Foo", ClassPtr: 0x10}, {Name: "Bar", ClassPtr: 0x20}},
		nonLazy: []*mobjc.Class{{Name: "Foo", ClassPtr: 0x10}},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, c := range m.Classes {
		want := c.Name == "Foo"
		if c.IsNonLazy != want {
			t.Errorf("class %s: IsNonLazy = %v, want %v", c.Name, c.IsNonLazy, want)
		}
	}
}

func TestProcessorRootAndMetaSuperclassCleared(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{
			{Name: "Root", ClassPtr: 0x10, SuperClass: "<ROOT>"},
			{Name: "Meta", ClassPtr: 0x20, SuperClass: "<META>"},
		},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, c := range m.Classes {
		if c.SuperclassName != "" {
			t.Errorf("class %s: SuperclassName = %q, want empty", c.Name, c.SuperclassName)
		}
		if c.SuperclassExternal {
			t.Errorf("class %s: SuperclassExternal should not be set for <ROOT>/<META>", c.Name)
		}
	}
}

func TestProcessorExternalSuperclassViaChainedBind(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{
			{Name: "MyView", ClassPtr: 0x10, SuperClass: "_OBJC_CLASS_$_UIView", SuperClassPtr: 0},
		},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	c := m.Classes[0]
	if !c.SuperclassExternal {
		t.Errorf("expected SuperclassExternal to be set")
	}
	if c.SuperclassName != "UIView" {
		t.Errorf("SuperclassName = %q, want UIView (prefix stripped)", c.SuperclassName)
	}
}

func TestProcessorInBinarySuperclassIsNotExternal(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{
			{Name: "Base", ClassPtr: 0x10},
			{Name: "Derived", ClassPtr: 0x20, SuperClass: "Base", SuperClassPtr: 0x10},
		},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	var derived *Class
	for _, c := range m.Classes {
		if c.Name == "Derived" {
			derived = c
		}
	}
	if derived == nil {
		t.Fatal("Derived class not found")
	}
	if derived.SuperclassExternal {
		t.Errorf("SuperclassExternal should be false when SuperClassPtr is set")
	}
	if derived.SuperclassName != "Base" {
		t.Errorf("SuperclassName = %q, want Base", derived.SuperclassName)
	}
}

func TestProcessorCategoryAttachesToClass(t *testing.T) {
	cls := &mobjc.Class{Name: "NSString", ClassPtr: 0x10}
	src := &fakeSource{
		hasObjC: true,
		categories: []mobjc.Category{
			{Name: "MyAdditions", VMAddr: 0x40, Class: cls},
		},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(m.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(m.Categories))
	}
	cat := m.Categories[0]
	if cat.ClassName != "NSString" {
		t.Errorf("ClassName = %q, want NSString", cat.ClassName)
	}
	if cat.ClassIsExternal {
		t.Errorf("ClassIsExternal should be false when Class.ClassPtr is non-zero")
	}
}

func TestProcessorCategoryOnExternalClass(t *testing.T) {
	cls := &mobjc.Class{Name: "NSObject", ClassPtr: 0}
	src := &fakeSource{
		hasObjC:    true,
		categories: []mobjc.Category{{Name: "Ext", VMAddr: 0x40, Class: cls}},
	}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !m.Categories[0].ClassIsExternal {
		t.Errorf("expected ClassIsExternal when the category's class has no in-binary record")
	}
}

func TestProcessorDiagnosticOnProtocolError(t *testing.T) {
	src := &fakeSource{hasObjC: true, protocolsErr: errors.New("bad __objc_protolist")}
	p := NewProcessor(src, registry.NewContext())
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v (protocol errors are recoverable)", err)
	}
	if len(m.Diagnostics) == 0 {
		t.Errorf("expected a diagnostic recording the protocol-list error")
	}
}

func TestProcessorMethodSignatureRegistryPrefersProtocol(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{{
			Name: "Foo", ClassPtr: 0x10,
			InstanceMethods: []mobjc.Method{{Name: "run", Types: "v16@0:8"}},
		}},
		protocols: []mobjc.Protocol{{
			Name: "Runnable", Ptr: 0x50,
			InstanceMethods: []mobjc.Method{{Name: "run", Types: "i16@0:8"}},
		}},
	}
	ctx := registry.NewContext()
	p := NewProcessor(src, ctx)
	if _, err := p.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	sig := ctx.Methods.Lookup("run")
	if sig == nil {
		t.Fatal("expected a registered signature for \"run\"")
	}
	if sig.ReturnType.PrimCode != 'i' {
		t.Errorf("Lookup(run) should prefer the protocol-sourced ('i') signature, got PrimCode %q", sig.ReturnType.PrimCode)
	}
}

func TestProcessorStructuresRegisteredFromIvars(t *testing.T) {
	src := &fakeSource{
		hasObjC: true,
		classes: []*mobjc.Class{{
			Name: "Shape", ClassPtr: 0x10,
			Ivars: []mobjc.Ivar{{Name: "_origin", Type: "{CGPoint=dd}"}},
		}},
	}
	ctx := registry.NewContext()
	p := NewProcessor(src, ctx)
	if _, err := p.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !ctx.Structures.Known("CGPoint") {
		t.Errorf("expected CGPoint to be registered from the ivar's encoding")
	}
}
