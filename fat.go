package machex

// Universal ("fat") binary support: a big-endian arch table followed by
// one ordinary Mach-O image per architecture (spec.md §4.2 "Fat
// handling"). The teacher's own test suite (file_test.go/macho_test.go)
// already exercises NewFatFile/FatFile/FatArch — this file is what makes
// those symbols real instead of undefined.

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/appsworld/machex/types"
)

// FatArch is one architecture slice of a universal binary: the raw
// arch-table entry (spec.md §3 "Architecture slice") plus the fully
// parsed *File for that slice. Embedding *File promotes FileTOC and every
// File method (UUID, DWARF, GetObjCClasses, ...) so a FatArch can be used
// wherever a *File is expected once selected.
type FatArch struct {
	*File

	CPUType    types.CPU
	CPUSubtype types.CPUSubtype
	Offset     uint64
	Size       uint64
	Align      uint32
}

// Arch returns the (cputype, cpusubtype) pair identifying this slice.
func (fa *FatArch) Arch() types.Arch {
	return types.Arch{CPU: fa.CPUType, Sub: fa.CPUSubtype}
}

// FatFile is a parsed universal (fat) Mach-O binary: a magic plus an
// ordered list of per-architecture slices (spec.md §3 "Architecture
// slice", §4.2 "Fat handling").
type FatFile struct {
	Magic  types.Magic
	Arches []FatArch

	closer io.Closer
}

// Close releases the FatFile's underlying file/mapping, if it owns one.
func (ff *FatFile) Close() error {
	var err error
	if ff.closer != nil {
		err = ff.closer.Close()
		ff.closer = nil
	}
	return err
}

// fatArchHeaderSize32/64 are the sizes of one arch-table entry for the
// 32-bit-offset (FAT_MAGIC) and 64-bit-offset (FAT_MAGIC_64) variants.
const (
	fatArchHeaderSize32 = 5 * 4     // cputype,cpusubtype,offset,size,align (all u32)
	fatArchHeaderSize64 = 4*4 + 8*2 // cputype,cpusubtype,align,reserved (u32) + offset,size (u64)
)

// OpenFat opens the named file using os.Open and parses it as a universal
// binary.
func OpenFat(name string) (*FatFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ff, err := NewFatFile(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	ff.closer = f
	return ff, nil
}

// OpenFatMapped memory-maps the named file read-only and parses it as a
// universal binary. The mapping is released on Close.
func OpenFatMapped(name string) (*FatFile, error) {
	osf, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(osf, mmap.RDONLY, 0)
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("failed to mmap %q: %v", name, err)
	}
	ff, err := NewFatFile(&sliceReaderAt{data})
	if err != nil {
		data.Unmap()
		osf.Close()
		return nil, err
	}
	ff.closer = &mmapCloser{data: data, f: osf}
	return ff, nil
}

// sliceReaderAt adapts a byte slice (an mmap.MMap) to io.ReaderAt without
// copying, the same shape OpenMapped uses for a thin file.
type sliceReaderAt struct{ b []byte }

func (s *sliceReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// NewFatFile parses a universal-binary arch table beginning at position 0
// in r and fully parses each listed architecture's Mach-O image (spec.md
// §4.2 "Fat handling": "Fat headers are always big-endian... The arch
// table... is parsed without materializing slices" — here the per-arch
// File IS materialized eagerly since every SPEC_FULL.md consumer needs a
// parsed slice, not just its table entry).
func NewFatFile(r io.ReaderAt) (*FatFile, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, &Error{Kind: ErrDataTooSmall, Context: "fat header", Err: err}
	}
	magic := types.Magic(binary.BigEndian.Uint32(hdr[0:4]))
	if magic != types.MagicFat && magic != types.MagicFat64 {
		return nil, &Error{Kind: ErrInvalidMagic, Context: fmt.Sprintf("%#x", uint32(magic))}
	}
	nArch := binary.BigEndian.Uint32(hdr[4:8])

	ff := &FatFile{Magic: magic}
	entrySize := fatArchHeaderSize32
	if magic == types.MagicFat64 {
		entrySize = fatArchHeaderSize64
	}

	off := int64(8)
	for i := uint32(0); i < nArch; i++ {
		buf := make([]byte, entrySize)
		if _, err := r.ReadAt(buf, off); err != nil {
			return nil, &Error{Kind: ErrDataTooSmall, Context: fmt.Sprintf("fat arch entry %d", i), Err: err}
		}
		off += int64(entrySize)

		var fa FatArch
		if magic == types.MagicFat64 {
			fa.CPUType = types.CPU(binary.BigEndian.Uint32(buf[0:4]))
			fa.CPUSubtype = types.CPUSubtype(binary.BigEndian.Uint32(buf[4:8]))
			fa.Offset = binary.BigEndian.Uint64(buf[8:16])
			fa.Size = binary.BigEndian.Uint64(buf[16:24])
			fa.Align = binary.BigEndian.Uint32(buf[24:28])
		} else {
			fa.CPUType = types.CPU(binary.BigEndian.Uint32(buf[0:4]))
			fa.CPUSubtype = types.CPUSubtype(binary.BigEndian.Uint32(buf[4:8]))
			fa.Offset = uint64(binary.BigEndian.Uint32(buf[8:12]))
			fa.Size = uint64(binary.BigEndian.Uint32(buf[12:16]))
			fa.Align = binary.BigEndian.Uint32(buf[16:20])
		}

		sr := io.NewSectionReader(r, int64(fa.Offset), int64(fa.Size))
		slice, err := NewFile(sr)
		if err != nil {
			return nil, fmt.Errorf("fat arch %d (%s): %w", i, fa.Arch().Name(), err)
		}
		fa.File = slice
		ff.Arches = append(ff.Arches, fa)
	}
	return ff, nil
}

// Architectures returns the (cputype, cpusubtype) pair for every slice in
// the universal binary, in on-disk order (spec.md §6
// "Binary.architectures() -> [Arch]").
func (ff *FatFile) Architectures() []types.Arch {
	out := make([]types.Arch, len(ff.Arches))
	for i, fa := range ff.Arches {
		out[i] = fa.Arch()
	}
	return out
}

// Slice returns the parsed *File for the slice whose arch exactly matches
// target (spec.md §6 "Binary.slice_for(Arch) -> MachO").
func (ff *FatFile) Slice(target types.Arch) (*File, error) {
	for i := range ff.Arches {
		if ff.Arches[i].Arch().Matches(target) {
			return ff.Arches[i].File, nil
		}
	}
	return nil, &Error{Kind: ErrArchitectureNotFound, Context: target.Name()}
}

// BestMatch picks the slice closest to target when no exact match exists,
// per spec.md §4.2's priority: target+64-bit, target+32-bit, any+64-bit,
// any+32-bit, first (spec.md §8 scenario 2).
func (ff *FatFile) BestMatch(target types.Arch) (*FatArch, error) {
	if len(ff.Arches) == 0 {
		return nil, &Error{Kind: ErrArchitectureNotFound, Context: target.Name()}
	}
	var exact64, exact32, any64, any32 *FatArch
	for i := range ff.Arches {
		fa := &ff.Arches[i]
		is64 := fa.Arch().Is64()
		if fa.Arch().Matches(target) {
			if is64 {
				if exact64 == nil {
					exact64 = fa
				}
			} else if exact32 == nil {
				exact32 = fa
			}
		}
		if is64 {
			if any64 == nil {
				any64 = fa
			}
		} else if any32 == nil {
			any32 = fa
		}
	}
	switch {
	case exact64 != nil:
		return exact64, nil
	case exact32 != nil:
		return exact32, nil
	case any64 != nil:
		return any64, nil
	case any32 != nil:
		return any32, nil
	default:
		return &ff.Arches[0], nil
	}
}
