package swiftmeta

import (
	"encoding/binary"
	"fmt"

	"github.com/appsworld/machex/internal/cursor"
	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/registry"
)

// Source is the subset of *machex.File the processor needs for raw section
// bytes, cross-reference string lookups and chained-fixup resolution.
// Kept as a local interface (rather than importing the root package's
// concrete type) for the same reason pkg/objc does: it keeps this package
// independent of the container's internals.
type Source interface {
	HasSwift() bool
	Order() binary.ByteOrder
	SwiftSectionData(name string) (data []byte, fileOffset uint64, ok bool)
	ReadCStringAt(offset int64) (string, error)
	ReadBytesAt(offset int64, n int) ([]byte, error)
	ReadPointerAt(offset int64, size int) (uint64, error)
	OffsetForVMAddr(vmaddr uint64) (uint64, error)
	IsChainedRebase(pointer uint64) (uint64, bool)
	ResolveChainedBind(pointer uint64) (string, bool, error)
}

const sizeOfTypeDescriptor = 20 // Flags(4) Parent(4) Name(4) AccessFunction(4) FieldDescriptor(4)

// descFlags mirrors types/swift/types.TypeDescFlag without importing that
// subpackage's wire struct, since this processor reads descriptors field
// by field through a Cursor rather than via binary.Read onto the struct.
type descFlags uint32

func (f descFlags) kind() Kind {
	switch f & 0x1F {
	case 0:
		return KindModule
	case 1:
		return KindExtension
	case 2:
		return KindAnonymous
	case 3:
		return KindProtocol
	case 4:
		return KindOpaqueType
	case 16:
		return KindClass
	case 17:
		return KindStruct
	case 18:
		return KindEnum
	default:
		return KindUnknown
	}
}
func (f descFlags) isGeneric() bool { return f&0x80 != 0 }

// Processor walks a Mach-O slice's __swift5_* sections and produces a Model.
type Processor struct {
	Source Source
	Ctx    *registry.Context

	// ObjC is consulted to bind Swift field records against ObjC ivars
	// for classes that carry both kinds of metadata (spec.md §4.5
	// "Field/ivar binding"). May be nil if no ObjC model is available.
	ObjC *objc.Model

	seen map[int64]*Type // guards against parent-chain cycles
}

func NewProcessor(src Source, ctx *registry.Context, objcModel *objc.Model) *Processor {
	return &Processor{Source: src, Ctx: ctx, ObjC: objcModel, seen: make(map[int64]*Type)}
}

// Process builds the full Swift metadata Model.
func (p *Processor) Process() (*Model, error) {
	m := &Model{}
	if !p.Source.HasSwift() {
		return m, nil
	}

	types, err := p.walkTypes()
	if err != nil {
		m.Diagnostics = append(m.Diagnostics, fmt.Sprintf("types: %v", err))
	}
	m.Types = types

	conf, err := p.walkConformances()
	if err != nil {
		m.Diagnostics = append(m.Diagnostics, fmt.Sprintf("conformances: %v", err))
	}
	m.Conformances = conf

	p.bindObjCFields(m)
	return m, nil
}

// relOffsetArray reads a section as an array of 32-bit relative offsets
// and returns the absolute target file offset for each entry (spec.md §4.5
// "Relative offset arrays"; grounded on the teacher's GetSwiftTypes /
// GetSwiftProtocols relOffsets loop).
func (p *Processor) relOffsetArray(section string) ([]int64, error) {
	dat, fileOff, ok := p.Source.SwiftSectionData(section)
	if !ok {
		return nil, nil
	}
	bo := p.Source.Order()
	c := cursor.New(dat)
	var out []int64
	idx := 0
	for c.Remaining() >= 4 {
		entryOff := int64(fileOff) + int64(idx*4)
		rel, err := c.ReadU32(bo)
		if err != nil {
			return out, err
		}
		out = append(out, entryOff+int64(int32(rel)))
		idx++
	}
	return out, nil
}

func (p *Processor) walkTypes() ([]*Type, error) {
	offsets, err := p.relOffsetArray("__swift5_types")
	if err != nil {
		return nil, err
	}
	out := make([]*Type, 0, len(offsets))
	for _, off := range offsets {
		t, err := p.readTypeDescriptor(off)
		if err != nil {
			out = append(out, &Type{Address: uint64(off), Kind: KindUnknown, Diagnostics: []string{err.Error()}})
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *Processor) readTypeDescriptor(off int64) (*Type, error) {
	if t, ok := p.seen[off]; ok {
		return t, nil
	}

	raw, err := p.Source.ReadBytesAt(off, sizeOfTypeDescriptor)
	if err != nil {
		return nil, err
	}
	bo := p.Source.Order()
	c := cursor.New(raw)
	flagsRaw, _ := c.ReadU32(bo)
	flags := descFlags(flagsRaw)
	parentRel, _ := c.ReadU32(bo)
	nameRel, _ := c.ReadU32(bo)
	_, _ = c.ReadU32(bo) // access function, unused here
	fieldDescRel, _ := c.ReadU32(bo)

	t := &Type{Address: uint64(off), Kind: flags.kind(), IsGeneric: flags.isGeneric()}
	p.seen[off] = t

	if int32(nameRel) != 0 {
		if name, err := p.Source.ReadCStringAt(off + 8 + int64(int32(nameRel))); err == nil {
			t.Name = name
		}
	}
	if int32(parentRel) != 0 {
		if parentType, err := p.readTypeDescriptor(off + 4 + int64(int32(parentRel))); err == nil {
			if parentType.Kind == KindModule {
				t.ModuleName = parentType.Name
			} else {
				t.ParentName = parentType.Name
				t.ModuleName = parentType.ModuleName
			}
		}
	}

	if t.Kind == KindClass {
		if super, err := p.readClassSuperclass(off); err == nil {
			t.SuperclassName = super
		}
	}

	if int32(fieldDescRel) != 0 {
		fields, err := p.readFieldDescriptor(off + 16 + int64(int32(fieldDescRel)))
		if err == nil {
			t.Fields = fields
		} else {
			t.Diagnostics = append(t.Diagnostics, fmt.Sprintf("fields: %v", err))
		}
	}

	if t.IsGeneric {
		t.GenericParams = p.synthesizeGenericParams(off, t.Kind)
	}

	return t, nil
}

// kindTrailerSize is the size, in bytes, of the kind-specific fields that
// sit between the common TypeDescriptor header and a generic type's
// TargetTypeGenericContextDescriptorHeader.
func kindTrailerSize(k Kind) (int64, bool) {
	switch k {
	case KindStruct:
		return 8, true // NumFields, FieldOffsetVectorOffset
	case KindEnum:
		return 8, true // NumPayloadCasesAndPayloadSizeOffset, NumEmptyCases
	case KindClass:
		return 24, true // SuperclassType + 4x uint32
	default:
		return 0, false
	}
}

// readClassSuperclass reads the SuperclassType relative pointer that
// immediately follows the common TypeDescriptor header for a class
// descriptor, resolving it to a demangled name when it is a mangled
// type reference rather than a context descriptor.
func (p *Processor) readClassSuperclass(off int64) (string, error) {
	raw, err := p.Source.ReadBytesAt(off+sizeOfTypeDescriptor, 4)
	if err != nil {
		return "", err
	}
	rel := int32(p.Source.Order().Uint32(raw))
	if rel == 0 {
		return "", nil
	}
	name, _, err := p.resolveMangledNameAt(off + sizeOfTypeDescriptor + int64(rel))
	return name, err
}

// synthesizeGenericParams assigns placeholder names T, U, V, ... (then
// T1, U1, V1, ... once the alphabet is exhausted) to a generic type's
// parameters, matching the Swift compiler's own convention for types
// compiled without reflection metadata naming them explicitly
// (spec.md §4.5 "Generic parameter naming").
func (p *Processor) synthesizeGenericParams(typeDescOff int64, kind Kind) []string {
	trailer, ok := kindTrailerSize(kind)
	if !ok {
		return nil
	}
	raw, err := p.Source.ReadBytesAt(typeDescOff+sizeOfTypeDescriptor+trailer, 16)
	if err != nil {
		return nil
	}
	bo := p.Source.Order()
	// TargetTypeGenericContextDescriptorHeader: InstantiationCache(4)
	// DefaultInstantiationPattern(4) then Base.NumParams(2) ...
	numParams := bo.Uint16(raw[8:10])
	const letters = "TUVWXYZABCDEFGHIJKLMNOPQRS"
	out := make([]string, 0, numParams)
	for i := 0; i < int(numParams); i++ {
		round := i / len(letters)
		letter := string(letters[i%len(letters)])
		if round == 0 {
			out = append(out, letter)
		} else {
			out = append(out, fmt.Sprintf("%s%d", letter, round))
		}
	}
	return out
}
