package registry

import "testing"

func TestTypeCacheMemoizes(t *testing.T) {
	c := NewTypeCache()
	a, err := c.Parse("i")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := c.Parse("i")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a != b {
		t.Errorf("second Parse of the same raw string should return the cached pointer")
	}
}

func TestTypeCacheInvalidEncoding(t *testing.T) {
	c := NewTypeCache()
	if _, err := c.Parse("{unterminated"); err == nil {
		t.Errorf("expected an error for an unterminated struct encoding")
	}
}

func TestMethodCacheMemoizes(t *testing.T) {
	c := NewMethodCache()
	a, err := c.Parse("v16@0:8")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := c.Parse("v16@0:8")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a != b {
		t.Errorf("second Parse of the same raw string should return the cached pointer")
	}
}

func TestDemangleCache(t *testing.T) {
	c := NewDemangleCache()
	if _, ok := c.Get("$s"); ok {
		t.Fatalf("empty cache should miss")
	}
	c.Put("$s", "Swift")
	got, ok := c.Get("$s")
	if !ok || got != "Swift" {
		t.Errorf("Get after Put = (%q, %v), want (\"Swift\", true)", got, ok)
	}
}

func TestNewContextIsFreshEachCall(t *testing.T) {
	a := NewContext()
	b := NewContext()
	if a.Structures == b.Structures || a.Methods == b.Methods {
		t.Errorf("NewContext should not share registries across calls")
	}
}
