package swiftmeta

import (
	"encoding/binary"
	"testing"

	"github.com/appsworld/machex/pkg/registry"
)

// fakeSource is a minimal in-memory Source backed by a single flat buffer,
// addressed the same way the real container addresses file offsets.
type fakeSource struct {
	buf        []byte
	typesOff   uint64
	typesLen   int
	hasSwift   bool
}

func (f *fakeSource) HasSwift() bool           { return f.hasSwift }
func (f *fakeSource) Order() binary.ByteOrder  { return binary.LittleEndian }

func (f *fakeSource) SwiftSectionData(name string) ([]byte, uint64, bool) {
	if name != "__swift5_types" {
		return nil, 0, false
	}
	return f.buf[f.typesOff : f.typesOff+uint64(f.typesLen)], f.typesOff, true
}

func (f *fakeSource) ReadCStringAt(offset int64) (string, error) {
	end := offset
	for end < int64(len(f.buf)) && f.buf[end] != 0 {
		end++
	}
	return string(f.buf[offset:end]), nil
}

func (f *fakeSource) ReadBytesAt(offset int64, n int) ([]byte, error) {
	return f.buf[offset : offset+int64(n)], nil
}

func (f *fakeSource) ReadPointerAt(offset int64, size int) (uint64, error) { return 0, nil }
func (f *fakeSource) OffsetForVMAddr(vmaddr uint64) (uint64, error)        { return vmaddr, nil }
func (f *fakeSource) IsChainedRebase(pointer uint64) (uint64, bool)        { return 0, false }
func (f *fakeSource) ResolveChainedBind(pointer uint64) (string, bool, error) {
	return "", false, nil
}

// buildSingleStructFixture lays out: a 1-entry relative-offset array at
// offset 0, a 20-byte TypeDescriptor right after it, and the type's name
// as a NUL-terminated string after that. Returns the finished buffer and
// the section's length in bytes.
func buildSingleStructFixture(name string) ([]byte, int) {
	const arrayOff = 0
	const descOff = 4
	nameOff := int64(descOff) + sizeOfTypeDescriptor

	buf := make([]byte, int(nameOff)+len(name)+1)

	relToDesc := int32(descOff - arrayOff)
	binary.LittleEndian.PutUint32(buf[arrayOff:], uint32(relToDesc))

	// Flags: kind=17 (struct), not generic.
	binary.LittleEndian.PutUint32(buf[descOff:], 17)
	// Parent: none.
	binary.LittleEndian.PutUint32(buf[descOff+4:], 0)
	// Name: relative to offset of the Name field itself (descOff+8).
	nameFieldOff := int64(descOff) + 8
	binary.LittleEndian.PutUint32(buf[descOff+8:], uint32(int32(nameOff-nameFieldOff)))
	// AccessFunction: none.
	binary.LittleEndian.PutUint32(buf[descOff+12:], 0)
	// FieldDescriptor: none.
	binary.LittleEndian.PutUint32(buf[descOff+16:], 0)

	copy(buf[nameOff:], name)

	return buf, 4
}

func TestProcessorResolvesStructName(t *testing.T) {
	buf, secLen := buildSingleStructFixture("MyStruct")
	src := &fakeSource{buf: buf, typesOff: 0, typesLen: secLen, hasSwift: true}

	p := NewProcessor(src, registry.NewContext(), nil)
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(m.Types) != 1 {
		t.Fatalf("got %d types, want 1", len(m.Types))
	}
	got := m.Types[0]
	if got.Kind != KindStruct {
		t.Errorf("Kind = %v, want %v", got.Kind, KindStruct)
	}
	if got.Name != "MyStruct" {
		t.Errorf("Name = %q, want %q", got.Name, "MyStruct")
	}
	if got.IsGeneric {
		t.Errorf("IsGeneric = true, want false")
	}
}

func TestProcessorNoSwiftSections(t *testing.T) {
	src := &fakeSource{hasSwift: false}
	p := NewProcessor(src, registry.NewContext(), nil)
	m, err := p.Process()
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(m.Types) != 0 || len(m.Conformances) != 0 {
		t.Errorf("expected empty model when no Swift metadata present, got %+v", m)
	}
}

func TestSynthesizeGenericParams(t *testing.T) {
	p := &Processor{seen: make(map[int64]*Type)}
	letters := []string{"T", "U", "V"}
	// Generic header sits at typeDescOff + sizeOfTypeDescriptor + trailer
	// (8 bytes for a struct) = offset 28; NumParams is its 3rd field (uint16 at byte 8).
	const headerOff = sizeOfTypeDescriptor + 8
	buf := make([]byte, headerOff+16)
	binary.LittleEndian.PutUint16(buf[headerOff+8:], 3)
	p.Source = &fakeSource{buf: buf, typesOff: 0}
	got := p.synthesizeGenericParams(0, KindStruct)
	if len(got) != len(letters) {
		t.Fatalf("got %v, want %v", got, letters)
	}
	for i, l := range letters {
		if got[i] != l {
			t.Errorf("param %d = %q, want %q", i, got[i], l)
		}
	}
}
