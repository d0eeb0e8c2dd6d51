package registry

import "testing"

func TestStringInternerDedupesAndCountsRefs(t *testing.T) {
	si := NewStringInterner()
	a := si.Intern("NSString")
	b := si.Intern("NSString")
	si.Intern("NSArray")

	if a != b {
		t.Errorf("interned copies of the same string should be equal")
	}
	if got := si.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := si.RefCount("NSString"); got != 2 {
		t.Errorf("RefCount(NSString) = %d, want 2", got)
	}
	if got := si.RefCount("never seen"); got != 0 {
		t.Errorf("RefCount(never seen) = %d, want 0", got)
	}
}
