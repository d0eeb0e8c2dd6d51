package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/appsworld/machex/pkg/visit"
	mobjc "github.com/appsworld/machex/types/objc"
)

// fakeSource implements pipeline.Source with no ObjC or Swift content,
// exercising the early-return paths of both sub-processors.
type fakeSource struct{}

func (fakeSource) HasObjC() bool                                      { return false }
func (fakeSource) GetObjCClasses() ([]*mobjc.Class, error)            { return nil, nil }
func (fakeSource) GetObjCNonLazyClasses() ([]*mobjc.Class, error)     { return nil, nil }
func (fakeSource) GetObjCCategories() ([]mobjc.Category, error)       { return nil, nil }
func (fakeSource) GetObjCProtocols() ([]mobjc.Protocol, error)        { return nil, nil }
func (fakeSource) GetCFStrings() ([]mobjc.CFString, error)            { return nil, nil }
func (fakeSource) GetObjCImageInfo() (*mobjc.ImageInfo, error) {
	return nil, errors.New("no __objc_imageinfo")
}
func (fakeSource) HasSwift() bool                                       { return false }
func (fakeSource) Order() binary.ByteOrder                              { return binary.LittleEndian }
func (fakeSource) SwiftSectionData(name string) ([]byte, uint64, bool)  { return nil, 0, false }
func (fakeSource) ReadCStringAt(offset int64) (string, error)           { return "", nil }
func (fakeSource) ReadBytesAt(offset int64, n int) ([]byte, error)      { return nil, nil }
func (fakeSource) ReadPointerAt(offset int64, size int) (uint64, error) { return 0, nil }
func (fakeSource) OffsetForVMAddr(vmaddr uint64) (uint64, error)        { return 0, nil }
func (fakeSource) IsChainedRebase(pointer uint64) (uint64, bool)        { return 0, false }
func (fakeSource) ResolveChainedBind(pointer uint64) (string, bool, error) {
	return "", false, nil
}

func TestProcessEmptySourceProducesEmptyModel(t *testing.T) {
	result, err := Process(fakeSource{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.ObjC.Classes) != 0 || len(result.ObjC.Protocols) != 0 {
		t.Errorf("expected an empty ObjC model, got %+v", result.ObjC)
	}
	if result.Swift == nil {
		t.Fatalf("expected a non-nil (empty) Swift model")
	}
}

func TestEmitEachFormatWritesNonEmptyOutput(t *testing.T) {
	result, err := Process(fakeSource{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	doc := visit.DocumentInfo{GeneratorName: "test", GeneratorVersion: "0.0", ModuleName: "Sample"}
	opts := visit.DefaultOptions()

	for _, format := range []Format{FormatText, FormatSwift, FormatJSON, FormatSymbolGraph} {
		var buf bytes.Buffer
		if err := Emit(&buf, result, doc, opts, format); err != nil {
			t.Errorf("Emit(format=%d): %v", format, err)
			continue
		}
		if buf.Len() == 0 {
			t.Errorf("Emit(format=%d) wrote no output", format)
		}
	}
}

func TestEmitUnknownFormatErrors(t *testing.T) {
	result, err := Process(fakeSource{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	var buf bytes.Buffer
	if err := Emit(&buf, result, visit.DocumentInfo{}, visit.DefaultOptions(), Format(99)); err == nil {
		t.Errorf("expected an error for an unknown output format")
	}
}
