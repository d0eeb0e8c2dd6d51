package registry

import (
	"testing"

	"github.com/appsworld/machex/pkg/objc/encoding"
)

func TestMethodSignatureRegistryProtocolOutranksClass(t *testing.T) {
	r := NewMethodSignatureRegistry()
	classSig := mustSig(t, "v16@0:8")
	protoSig := mustSig(t, "i16@0:8")

	r.Register("run", SourceClass, classSig)
	r.Register("run", SourceProtocol, protoSig)

	got := r.Lookup("run")
	if got != protoSig {
		t.Errorf("Lookup should prefer the protocol-sourced signature")
	}
}

func TestMethodSignatureRegistryFallsBackToClass(t *testing.T) {
	r := NewMethodSignatureRegistry()
	classSig := mustSig(t, "v16@0:8")
	r.Register("run", SourceClass, classSig)

	if got := r.Lookup("run"); got != classSig {
		t.Errorf("Lookup should return the only registered (class) signature")
	}
}

func TestMethodSignatureRegistryUnknownSelector(t *testing.T) {
	r := NewMethodSignatureRegistry()
	if got := r.Lookup("missing"); got != nil {
		t.Errorf("Lookup(missing selector) = %v, want nil", got)
	}
}

func TestMethodSignatureRegistryIgnoresNilSignature(t *testing.T) {
	r := NewMethodSignatureRegistry()
	r.Register("run", SourceClass, nil)
	if got := r.Lookup("run"); got != nil {
		t.Errorf("Register(nil) should not create a lookup-able entry")
	}
}

func mustSig(t *testing.T, enc string) *encoding.MethodSignature {
	t.Helper()
	sig, err := encoding.ParseMethodEncoding(enc)
	if err != nil {
		t.Fatalf("ParseMethodEncoding(%q): %v", enc, err)
	}
	return sig
}
