// Package addrmap implements the address->file-offset translator spec'd
// for repeated lookups during ObjC/Swift processing: a sorted index over
// every section's VM range, queried by binary search, with a one-entry
// last-hit cache for the common case of translating a run of addresses
// that fall in the same section (e.g. walking a method list).
//
// The root File type's GetOffset/GetVMAddress do a simple linear scan
// over segments, which is fine for occasional calls; the ObjC and Swift
// processors translate thousands of addresses per binary and use this
// index instead.
package addrmap

import "sort"

// Entry is one section's VM range mapped to its file offset.
type Entry struct {
	VMAddr   uint64
	VMSize   uint64
	FileOff  uint64
	SectIdx  int
}

// Index is a sorted, binary-searchable address translator.
type Index struct {
	entries []Entry
	lastHit int // index into entries, -1 if none
}

// Build constructs an Index from a set of (vmAddr, vmSize, fileOff)
// section ranges. Zero-sized sections are kept (they still occupy an
// address, trivially) but never match a query since no address lies in
// [addr, addr).
func Build(entries []Entry) *Index {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VMAddr < sorted[j].VMAddr })
	return &Index{entries: sorted, lastHit: -1}
}

// Translate returns the file offset for a VM address and whether any
// indexed section covers it. It never clamps out-of-range addresses.
func (idx *Index) Translate(addr uint64) (uint64, bool) {
	if idx.lastHit >= 0 {
		e := idx.entries[idx.lastHit]
		if addr >= e.VMAddr && addr < e.VMAddr+e.VMSize {
			return e.FileOff + (addr - e.VMAddr), true
		}
	}
	n := len(idx.entries)
	// last entry whose VMAddr <= addr
	i := sort.Search(n, func(i int) bool { return idx.entries[i].VMAddr > addr }) - 1
	if i < 0 || i >= n {
		return 0, false
	}
	e := idx.entries[i]
	if addr < e.VMAddr || addr >= e.VMAddr+e.VMSize {
		return 0, false
	}
	idx.lastHit = i
	return e.FileOff + (addr - e.VMAddr), true
}

// Section returns the section index covering addr, if any.
func (idx *Index) Section(addr uint64) (int, bool) {
	n := len(idx.entries)
	i := sort.Search(n, func(i int) bool { return idx.entries[i].VMAddr > addr }) - 1
	if i < 0 || i >= n {
		return 0, false
	}
	e := idx.entries[i]
	if addr < e.VMAddr || addr >= e.VMAddr+e.VMSize {
		return 0, false
	}
	return e.SectIdx, true
}
