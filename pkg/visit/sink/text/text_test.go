package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/visit"
)

func mustMethod(t *testing.T, selector, enc string) *objc.Method {
	t.Helper()
	sig, err := encoding.ParseMethodEncoding(enc)
	if err != nil {
		t.Fatalf("ParseMethodEncoding(%q): %v", enc, err)
	}
	return &objc.Method{Selector: selector, RawEncoding: enc, Signature: sig}
}

func TestVisitMethodDoSomethingWithValue(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, nil, visit.DefaultOptions())
	m := mustMethod(t, "doSomething:withValue:", "@28@0:8@16i24")

	s.VisitMethod(visit.EntityRef{}, m, false, false)

	got := strings.TrimSpace(buf.String())
	want := "- (id)doSomething:(id)arg0 withValue:(int)arg1;"
	if got != want {
		t.Errorf("VisitMethod output = %q, want %q", got, want)
	}
}

func TestVisitMethodClassMethodUsesPlusPrefix(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, nil, visit.DefaultOptions())
	m := mustMethod(t, "sharedInstance", "@16@0:8")

	s.VisitMethod(visit.EntityRef{}, m, true, false)

	got := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(got, "+ ") {
		t.Errorf("class method output = %q, want a leading '+'", got)
	}
}

func TestVisitPropertyFormatsObjCAttributes(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, nil, visit.DefaultOptions())
	attrs, err := encoding.ParsePropertyAttributes(`T@"NSString",C,N,V_name`)
	if err != nil {
		t.Fatalf("ParsePropertyAttributes: %v", err)
	}
	p := &objc.Property{Name: "name", Attrs: attrs}

	s.VisitProperty(visit.EntityRef{}, p, false)

	got := strings.TrimSpace(buf.String())
	want := "@property(copy, nonatomic) NSString *name;"
	if got != want {
		t.Errorf("VisitProperty output = %q, want %q", got, want)
	}
}

func TestVisitClassClosesIvarBodyBeforeFirstMethod(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, nil, visit.DefaultOptions())
	c := &objc.Class{Name: "Widget", Ivars: []objc.Ivar{{Name: "_x", Type: &encoding.Type{Kind: encoding.KindPrimitive, PrimCode: 'i'}}}}

	s.VisitClass(c)
	s.VisitIvar(visit.EntityRef{}, &c.Ivars[0])
	s.VisitMethod(visit.EntityRef{}, mustMethod(t, "reset", "v16@0:8"), false, false)

	out := buf.String()
	ivarIdx := strings.Index(out, "_x")
	closeIdx := strings.Index(out, "}")
	methodIdx := strings.Index(out, "reset")
	if !(ivarIdx < closeIdx && closeIdx < methodIdx) {
		t.Errorf("expected ivar body to close before the method line, got:\n%s", out)
	}
}
