// Package dwarfbridge cross-references DWARF debug info (when the binary
// carries it, i.e. isn't stripped) against the processed Swift model,
// replacing synthesized generic-parameter names (T, U, V, ... per
// spec.md §4.5 "Generic parameter names") with the real source-level
// names a debug build's DW_TAG_template_type_parameter children carry.
//
// Grounded on the teacher's own File.DWARF() accessor (file.go, backed by
// github.com/blacktop/go-dwarf per SPEC_FULL.md §3) paired against
// pkg/swiftmeta's processed Type list; the pairing pattern is the same
// shape as pkg/swiftmeta.bindObjCFields binding Swift field records
// against ObjC ivars by name, applied here to DWARF type DIEs instead.
package dwarfbridge

import (
	dwarf "github.com/blacktop/go-dwarf"

	"github.com/appsworld/machex/pkg/swiftmeta"
)

// Annotate walks d's top-level compile units looking for struct/class
// type DIEs whose name matches a processed Swift type, and replaces that
// type's synthesized GenericParams with the DWARF-reported template
// parameter names when the counts agree. Binaries without DWARF (the
// common case for shipped Swift binaries) leave the model untouched;
// d == nil is a no-op, not an error, since DWARF is advisory annotation,
// not a required input (spec.md §4.5 generic parameter naming already
// has a synthesized fallback).
func Annotate(d *dwarf.Data, model *swiftmeta.Model) {
	if d == nil || model == nil {
		return
	}
	byName := make(map[string]*swiftmeta.Type, len(model.Types))
	for _, t := range model.Types {
		if t.IsGeneric {
			byName[t.Name] = t
			byName[t.QualifiedName()] = t
		}
	}
	if len(byName) == 0 {
		return
	}

	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil || entry == nil {
			break
		}
		if entry.Tag != dwarf.TagStructType && entry.Tag != dwarf.TagClassType {
			continue
		}
		name, _ := entry.Val(dwarf.AttrName).(string)
		target, ok := byName[name]
		if !ok || !entry.Children {
			continue
		}
		params := readTemplateParams(r)
		if len(params) > 0 && len(params) == len(target.GenericParams) {
			target.GenericParams = params
		}
	}
}

// readTemplateParams consumes the children of the entry r.Next() just
// returned, collecting DW_TAG_template_type_parameter names in order,
// and leaves r positioned after the children (dwarf.Reader.Next already
// returns nested children as a flat sequence terminated by a null entry;
// this mirrors the Children-walk idiom go-dwarf/debug-dwarf callers use).
func readTemplateParams(r *dwarf.Reader) []string {
	var params []string
	for {
		child, err := r.Next()
		if err != nil || child == nil {
			return params
		}
		if child.Tag == 0 {
			// null entry: end of this DIE's children
			return params
		}
		if child.Tag == dwarf.TagTemplateTypeParameter {
			if n, ok := child.Val(dwarf.AttrName).(string); ok && n != "" {
				params = append(params, n)
			}
		}
		if child.Children {
			// nested children we don't care about; skip them so the
			// outer loop doesn't misattribute them as our own siblings
			r.SkipChildren()
		}
	}
}
