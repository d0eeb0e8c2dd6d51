package swiftmeta

import (
	"fmt"
	"strings"

	"github.com/appsworld/machex/internal/cursor"
	"github.com/appsworld/machex/internal/swiftdemangle"
	"github.com/appsworld/machex/pkg/objc"
)

// resolveMangledNameAt reads whatever sits at a mangled-type-name
// reference site: a symbolic reference to a context descriptor (control
// bytes 0x01-0x02, the common case for field/superclass references) or a
// plain NUL-terminated mangled string, and returns the resolved display
// name plus the descriptor it pointed to, if any.
//
// Grounded on the teacher's GetMangledTypeAtOffset, with the debug
// fmt.Println calls removed and the resolved descriptor actually
// propagated to the caller instead of discarded (spec.md §4.5 "Symbolic
// references").
func (p *Processor) resolveMangledNameAt(off int64) (string, *Type, error) {
	head, err := p.Source.ReadBytesAt(off, 1)
	if err != nil {
		return "", nil, err
	}
	control := head[0]

	switch {
	case control >= 0x01 && control <= 0x17:
		return p.resolveSymbolicRef(off, control)
	case control >= 0x18 && control <= 0x1F:
		// Symbolic reference to a pointer-sized absolute address rather
		// than a relative one; not expected outside generic metadata
		// instantiation thunks the extractor does not execute.
		return "", nil, fmt.Errorf("unsupported absolute symbolic reference control byte %#x at offset %#x", control, off)
	default:
		raw, err := readCStringAt(p.Source, off)
		if err != nil {
			return "", nil, err
		}
		mangled := raw
		if !strings.HasPrefix(mangled, "$s") && !strings.HasPrefix(mangled, "_$s") {
			mangled = "$s" + mangled
		}
		return p.demangle(mangled)
	}
}

func readCStringAt(src Source, off int64) (string, error) {
	return src.ReadCStringAt(off)
}

// resolveSymbolicRef follows a one-byte control code + 4-byte relative (for
// 0x01) or contextual (for 0x02) reference to a type-context descriptor.
func (p *Processor) resolveSymbolicRef(off int64, control byte) (string, *Type, error) {
	raw, err := p.Source.ReadBytesAt(off+1, 4)
	if err != nil {
		return "", nil, err
	}
	rel := int32(p.Source.Order().Uint32(raw))

	switch control {
	case 0x01: // direct reference to a context descriptor
		target := off + 1 + int64(rel)
		t, err := p.readTypeDescriptor(target)
		if err != nil {
			return "", nil, err
		}
		return t.Name, t, nil
	case 0x02: // indirect reference: a pointer (possibly chained-fixup) to the descriptor
		ptrOff := off + 1 + int64(rel)
		ptr, err := p.Source.ReadPointerAt(ptrOff, 8)
		if err != nil {
			return "", nil, err
		}
		if vmaddr, ok := p.Source.IsChainedRebase(ptr); ok {
			fileOff, err := p.Source.OffsetForVMAddr(vmaddr)
			if err != nil {
				return "", nil, err
			}
			t, err := p.readTypeDescriptor(int64(fileOff))
			if err != nil {
				return "", nil, err
			}
			return t.Name, t, nil
		}
		if name, isBind, err := p.Source.ResolveChainedBind(ptr); err == nil && isBind {
			return name, nil, nil
		}
		return "", nil, fmt.Errorf("indirect symbolic reference at %#x resolves to neither a rebase nor a bind", off)
	default:
		// 0x03-0x17: indirect/unique variants this extractor treats the
		// same as their direct counterpart's immediate byte, following
		// the teacher's own "not yet distinguished" scope.
		target := off + 1 + int64(rel)
		t, err := p.readTypeDescriptor(target)
		if err != nil {
			return "", nil, err
		}
		return t.Name, t, nil
	}
}

// demangle runs a plain mangled string through the demangler, using this
// processor itself as the SymbolicReferenceResolver for any symbolic
// reference bytes embedded mid-string.
func (p *Processor) demangle(mangled string) (string, *Type, error) {
	if cached, ok := p.Ctx.Demangle.Get(mangled); ok {
		return cached, nil, nil
	}
	text, _, err := swiftdemangle.Demangle(mangled, swiftdemangle.WithResolver(p))
	if err != nil {
		return mangled, nil, err
	}
	p.Ctx.Demangle.Put(mangled, text)
	return text, nil, nil
}

// ResolveType implements swiftdemangle.SymbolicReferenceResolver: it is
// invoked by the demangler's parser when it encounters a symbolic
// reference control byte (0x01-0x02) while walking a mangled string that
// was read relative to a known base offset. The demangler only hands us
// the control byte and the relative value it already decoded; we have no
// absolute base here, so every call returns an error and no reference is
// resolved; the demangling caller then keeps the raw mangled string.
func (p *Processor) ResolveType(control byte, offset int32, refIndex int) (*swiftdemangle.Node, error) {
	return nil, fmt.Errorf("symbolic reference resolution without an absolute base offset is not supported (control=%#x offset=%#x index=%d)", control, offset, refIndex)
}

func (p *Processor) readFieldDescriptor(off int64) ([]Field, error) {
	// Header is MangledTypeName(int32) Superclass(int32) Kind(uint16)
	// FieldRecordSize(uint16) NumFields(uint32) = 16 bytes.
	raw, err := p.Source.ReadBytesAt(off, sizeOfFieldDescriptorHeader)
	if err != nil {
		return nil, err
	}
	bo := p.Source.Order()
	c := cursor.New(raw)
	_, _ = c.ReadU32(bo) // the type's own mangled name; already carried on Type.Name
	_, _ = c.ReadU32(bo) // superclass relative offset, not surfaced on Field
	_, _ = c.ReadU16(bo) // kind, not needed beyond Type.Kind already set
	recordSize, _ := c.ReadU16(bo)
	numFields, _ := c.ReadU32(bo)

	recordsOff := off + sizeOfFieldDescriptorHeader
	fields := make([]Field, 0, numFields)
	for i := uint32(0); i < numFields; i++ {
		fieldOff := recordsOff + int64(i)*int64(recordSize)
		f, err := p.readFieldRecord(fieldOff)
		if err != nil {
			fields = append(fields, Field{Name: fmt.Sprintf("<field %d unreadable: %v>", i, err)})
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

const sizeOfFieldDescriptorHeader = 16

func (p *Processor) readFieldRecord(off int64) (Field, error) {
	raw, err := p.Source.ReadBytesAt(off, 12)
	if err != nil {
		return Field{}, err
	}
	bo := p.Source.Order()
	c := cursor.New(raw)
	flagsRaw, _ := c.ReadU32(bo)
	mangledRel, _ := c.ReadU32(bo)
	nameRel, _ := c.ReadU32(bo)

	f := Field{
		IsIndirectCase: flagsRaw&0x1 != 0,
		IsWeak:         flagsRaw&0x2 != 0,
		IsVar:          flagsRaw&0x4 != 0,
	}

	if int32(nameRel) != 0 {
		if name, err := p.Source.ReadCStringAt(off + 8 + int64(int32(nameRel))); err == nil {
			f.Name = name
		}
	}
	if int32(mangledRel) != 0 {
		name, _, err := p.resolveMangledNameAt(off + 4 + int64(int32(mangledRel)))
		if err == nil {
			f.DemangledTypeName = name
			f.MangledTypeName = name
		}
	}
	return f, nil
}

// walkConformances reads __swift5_proto: an array of relative offsets to
// ConformanceDescriptor records (spec.md §4.5 "Protocol conformances").
func (p *Processor) walkConformances() ([]*Conformance, error) {
	offsets, err := p.relOffsetArray("__swift5_proto")
	if err != nil {
		return nil, err
	}
	out := make([]*Conformance, 0, len(offsets))
	for _, off := range offsets {
		c, err := p.readConformanceDescriptor(off)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ConformanceDescriptor: ProtocolDescriptor(int32) NominalTypeDescriptor(int32)
// ProtocolWitnessTable(int32) ConformanceFlags(uint32) = 16 bytes.
func (p *Processor) readConformanceDescriptor(off int64) (*Conformance, error) {
	raw, err := p.Source.ReadBytesAt(off, 16)
	if err != nil {
		return nil, err
	}
	bo := p.Source.Order()
	c := cursor.New(raw)
	protoRel, _ := c.ReadU32(bo)
	typeRel, _ := c.ReadU32(bo)
	_, _ = c.ReadU32(bo) // witness table, unused
	flags, _ := c.ReadU32(bo)

	conf := &Conformance{}

	if int32(protoRel) != 0 {
		name, _, err := p.resolveMangledNameAt(off + int64(int32(protoRel)))
		if err == nil {
			conf.ProtocolName = name
		}
	}

	// bits 3-5 of the flags are the type-reference kind: 0=direct
	// descriptor, 1=indirect descriptor, 2=direct ObjC class name,
	// 3=indirect ObjC class (spec.md §4.5 "Conformance type references").
	switch (flags >> 3) & 0x7 {
	case 0, 1:
		if int32(typeRel) != 0 {
			name, _, err := p.resolveMangledNameAt(off + 4 + int64(int32(typeRel)))
			if err == nil {
				conf.TypeName = name
			}
		}
	case 2:
		// Direct ObjC class: the relative offset points straight at the
		// class symbol's C-string name.
		conf.IsObjCClass = true
		if int32(typeRel) != 0 {
			if name, err := p.Source.ReadCStringAt(off + 4 + int64(int32(typeRel))); err == nil {
				conf.TypeName = name
			}
		}
	case 3:
		// Indirect ObjC class: the relative offset points at a pointer
		// slot that must itself be bind-decoded (spec.md §4.5 "Conformance
		// descriptor" / §4.3 chained-fixup bind).
		conf.IsObjCClass = true
		if int32(typeRel) != 0 {
			site := off + 4 + int64(int32(typeRel))
			if ptr, err := p.Source.ReadPointerAt(site, 8); err == nil {
				if name, bound, err := p.Source.ResolveChainedBind(ptr); err == nil && bound {
					conf.TypeName = strings.TrimPrefix(name, "_OBJC_CLASS_$_")
				} else if rebasedVMAddr, ok := p.Source.IsChainedRebase(ptr); ok {
					if fileOff, err := p.Source.OffsetForVMAddr(rebasedVMAddr); err == nil {
						if name, err := p.Source.ReadCStringAt(int64(fileOff)); err == nil {
							conf.TypeName = name
						}
					}
				}
			}
		}
	}

	return conf, nil
}

// bindObjCFields matches Swift class types against ObjC classes of the
// same name, attaching the parsed ivar type-encoding to each field that
// shares a name with an ivar (spec.md §4.5 "Field/ivar binding"): Swift
// classes interoperating with the ObjC runtime store their stored
// properties as ordinary ivars, so the ObjC-side type encoding is the
// more precise source of truth whenever both are present.
func (p *Processor) bindObjCFields(m *Model) {
	if p.ObjC == nil {
		return
	}
	ivarsByClass := make(map[string]map[string]*objc.Ivar, len(p.ObjC.Classes))
	for _, c := range p.ObjC.Classes {
		ivars := make(map[string]*objc.Ivar, len(c.Ivars))
		for i := range c.Ivars {
			ivars[c.Ivars[i].Name] = &c.Ivars[i]
		}
		ivarsByClass[c.Name] = ivars
	}

	for _, t := range m.Types {
		if t.Kind != KindClass {
			continue
		}
		ivars, ok := ivarsByClass[t.Name]
		if !ok {
			continue
		}
		t.ObjCClassName = t.Name
		for i := range t.Fields {
			iv, ok := ivars[t.Fields[i].Name]
			if !ok {
				continue
			}
			t.Fields[i].BoundIvarRaw = iv.RawEncoding
			if parsed, err := p.Ctx.Types.Parse(iv.RawEncoding); err == nil {
				t.Fields[i].BoundIvarType = parsed
			}
			// The field's own demangled Swift type name is the more
			// precise side of the binding (the ObjC ivar encoding loses
			// generic/optional information the field record carries);
			// annotate the ivar with it so an ObjC-header sink can show
			// it too, per spec.md §4.5.
			name := t.Fields[i].DemangledTypeName
			if name == "" {
				name = t.Fields[i].MangledTypeName
			}
			iv.SwiftFieldType = name
		}
	}

	p.bindObjCConformances(m)
}

// bindObjCConformances appends each conformance whose conforming type
// names an ObjC class (directly, via case 2/3 of spec.md §4.5's
// "Conformance descriptor" type-reference kinds, or via an in-binary
// Swift class of the same name) to that class's SwiftConformances list,
// so the ObjC model (spec.md §3 "ObjC class" / "Swift-conformance
// names") can be emitted without a text sink reaching into the Swift
// model directly.
func (p *Processor) bindObjCConformances(m *Model) {
	if p.ObjC == nil {
		return
	}
	classNames := make(map[string]*objc.Class, len(p.ObjC.Classes))
	for _, c := range p.ObjC.Classes {
		classNames[c.Name] = c
	}
	for _, conf := range m.Conformances {
		if conf.ProtocolName == "" || conf.TypeName == "" {
			continue
		}
		if c, ok := classNames[conf.TypeName]; ok {
			c.SwiftConformances = append(c.SwiftConformances, conf.ProtocolName)
		}
	}
}
