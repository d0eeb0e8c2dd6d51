package registry

import (
	"testing"

	"github.com/appsworld/machex/pkg/objc/encoding"
)

func mustParse(t *testing.T, enc string) *encoding.Type {
	t.Helper()
	typ, _, err := encoding.ParseType(enc)
	if err != nil {
		t.Fatalf("ParseType(%q): %v", enc, err)
	}
	return typ
}

func TestStructureRegistryOrdersDependenciesFirst(t *testing.T) {
	r := NewStructureRegistry()
	// CGRect embeds two CGPoint-by-value members, so CGPoint must precede
	// it in emission order even though CGRect is registered first.
	r.Register(mustParse(t, "{CGRect={CGPoint=dd}{CGPoint=dd}}"))
	r.Register(mustParse(t, "{CGPoint=dd}"))

	order := r.Ordered()
	positions := make(map[string]int, len(order))
	for i, t := range order {
		positions[t.Tag] = i
	}
	if positions["CGPoint"] >= positions["CGRect"] {
		t.Errorf("expected CGPoint before CGRect, got order %v", tagsOf(order))
	}
}

func TestStructureRegistryPointerToStructIsNotADependency(t *testing.T) {
	r := NewStructureRegistry()
	// A pointer to a still-forward-declared struct shouldn't force that
	// struct to be emitted first -- a forward declaration suffices.
	r.Register(mustParse(t, "{Node=^{Node}i}"))

	order := r.Ordered()
	if len(order) != 1 || order[0].Tag != "Node" {
		t.Fatalf("expected a single self-referential Node entry, got %v", tagsOf(order))
	}
}

func TestStructureRegistryForwardDeclarationUpgradedToFull(t *testing.T) {
	r := NewStructureRegistry()
	r.Register(&encoding.Type{Kind: encoding.KindStruct, Tag: "Opaque"}) // forward only
	if r.Known("Opaque") {
		t.Fatalf("forward-only registration should not be Known")
	}
	r.Register(mustParse(t, "{Opaque=i}"))
	if !r.Known("Opaque") {
		t.Fatalf("full registration should be Known")
	}
}

func TestStructureRegistryForwardDeclarationDoesNotDowngradeFull(t *testing.T) {
	r := NewStructureRegistry()
	r.Register(mustParse(t, "{Opaque=i}"))
	r.Register(&encoding.Type{Kind: encoding.KindStruct, Tag: "Opaque"}) // forward only, later
	if !r.Known("Opaque") {
		t.Fatalf("a later forward-only registration must not erase a full one")
	}
}

func TestStructureRegistryBreaksCycles(t *testing.T) {
	r := NewStructureRegistry()
	// A <-> B cycle through struct-by-value members (contrived, but
	// Ordered() must still terminate and emit every tag exactly once).
	r.Register(&encoding.Type{
		Kind: encoding.KindStruct, Tag: "A",
		Members: []*encoding.Type{{Kind: encoding.KindStruct, Tag: "B", Members: []*encoding.Type{{Kind: encoding.KindPrimitive, PrimCode: 'i'}}}},
	})
	r.Register(&encoding.Type{
		Kind: encoding.KindStruct, Tag: "B",
		Members: []*encoding.Type{{Kind: encoding.KindStruct, Tag: "A", Members: []*encoding.Type{{Kind: encoding.KindPrimitive, PrimCode: 'i'}}}},
	})

	order := r.Ordered()
	if len(order) != 2 {
		t.Fatalf("expected both cycle members emitted exactly once, got %v", tagsOf(order))
	}
}

func tagsOf(ts []*encoding.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Tag
	}
	return out
}
