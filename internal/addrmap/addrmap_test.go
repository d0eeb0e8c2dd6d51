package addrmap

import "testing"

func TestTranslateWithinSection(t *testing.T) {
	idx := Build([]Entry{
		{VMAddr: 0x1000, VMSize: 0x100, FileOff: 0x500, SectIdx: 0},
		{VMAddr: 0x2000, VMSize: 0x50, FileOff: 0x900, SectIdx: 1},
	})

	off, ok := idx.Translate(0x1010)
	if !ok || off != 0x510 {
		t.Errorf("Translate(0x1010) = (%#x, %v), want (0x510, true)", off, ok)
	}
}

func TestTranslateOutsideAnySection(t *testing.T) {
	idx := Build([]Entry{{VMAddr: 0x1000, VMSize: 0x100, FileOff: 0x500, SectIdx: 0}})

	if _, ok := idx.Translate(0x3000); ok {
		t.Errorf("Translate(0x3000) reported a hit for an address outside every section")
	}
}

func TestTranslateReusesLastHit(t *testing.T) {
	idx := Build([]Entry{
		{VMAddr: 0x1000, VMSize: 0x100, FileOff: 0x500, SectIdx: 0},
		{VMAddr: 0x2000, VMSize: 0x100, FileOff: 0x900, SectIdx: 1},
	})

	if _, ok := idx.Translate(0x1050); !ok {
		t.Fatalf("first Translate missed")
	}
	off, ok := idx.Translate(0x1060)
	if !ok || off != 0x560 {
		t.Errorf("Translate(0x1060) via last-hit cache = (%#x, %v), want (0x560, true)", off, ok)
	}
}

func TestSectionLookup(t *testing.T) {
	idx := Build([]Entry{
		{VMAddr: 0x1000, VMSize: 0x100, FileOff: 0x500, SectIdx: 3},
		{VMAddr: 0x2000, VMSize: 0x100, FileOff: 0x900, SectIdx: 7},
	})

	sect, ok := idx.Section(0x2050)
	if !ok || sect != 7 {
		t.Errorf("Section(0x2050) = (%d, %v), want (7, true)", sect, ok)
	}
}

func TestZeroSizedSectionNeverMatches(t *testing.T) {
	idx := Build([]Entry{{VMAddr: 0x1000, VMSize: 0, FileOff: 0x500, SectIdx: 0}})

	if _, ok := idx.Translate(0x1000); ok {
		t.Errorf("Translate matched a zero-sized section's own address")
	}
}
