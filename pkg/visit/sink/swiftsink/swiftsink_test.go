package swiftsink

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

func TestSwiftFuncSignatureDoSomethingWithValue(t *testing.T) {
	m := mustMethod(t, "doSomething:withValue:", "@28@0:8@16i24")
	got := swiftFuncSignature(m)
	want := "doSomething(_ arg1: Any, withValue arg2: Int32) -> Any"
	if got != want {
		t.Errorf("swiftFuncSignature = %q, want %q", got, want)
	}
}

func TestSwiftFuncSignatureNoArgs(t *testing.T) {
	m := mustMethod(t, "length", "i16@0:8")
	got := swiftFuncSignature(m)
	want := "length() -> Int32"
	if got != want {
		t.Errorf("swiftFuncSignature = %q, want %q", got, want)
	}
}

func TestSwiftFuncSignatureVoidReturnOmitsArrow(t *testing.T) {
	m := mustMethod(t, "reset", "v16@0:8")
	got := swiftFuncSignature(m)
	want := "reset()"
	if got != want {
		t.Errorf("swiftFuncSignature = %q, want %q", got, want)
	}
}

func TestVisitMethodRendersOptionalAndStatic(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, nil, visit.DefaultOptions())
	m := mustMethod(t, "doSomething:withValue:", "@28@0:8@16i24")

	s.VisitMethod(visit.EntityRef{}, m, true, true)

	out := buf.String()
	if !strings.Contains(out, "@objc optional static func doSomething") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "withValue arg2: Int32") {
		t.Errorf("missing labeled arg in output: %q", out)
	}
}
