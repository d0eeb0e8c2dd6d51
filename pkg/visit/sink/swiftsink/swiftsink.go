// Package swiftsink implements the Swift-interface sink: spec.md §6 sink 2,
// rendering the same ObjC-interop model as @objc public class/protocol/
// extension declarations with Swift method signatures, the way a header
// reconstructed for Swift callers would read.
package swiftsink

import (
	"fmt"
	"io"
	"strings"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/swiftmeta"
	"github.com/appsworld/machex/pkg/visit"
)

// Sink writes Swift-flavored interface declarations to W.
type Sink struct {
	W         io.Writer
	Formatter *encoding.Formatter
	Options   visit.Options
}

// New returns a Sink ready to be passed to visit.Walk.
func New(w io.Writer, structs encoding.KnownStructResolver, opts visit.Options) *Sink {
	return &Sink{W: w, Formatter: &encoding.Formatter{Structs: structs}, Options: opts}
}

func (s *Sink) Begin(doc visit.DocumentInfo) {
	fmt.Fprintf(s.W, "// Generated by %s %s\n", doc.GeneratorName, doc.GeneratorVersion)
	if doc.ModuleName != "" {
		fmt.Fprintf(s.W, "import %s\n", doc.ModuleName)
	}
	fmt.Fprintln(s.W)
}

func (s *Sink) End() {}

func (s *Sink) VisitStructure(t *encoding.Type) {
	fmt.Fprintf(s.W, "// struct %s %s\n", t.Tag, s.Formatter.Format(t, encoding.RoleTopLevel, ""))
}

func (s *Sink) VisitCFStrings(strs []objc.CFString) {}

func (s *Sink) VisitProtocol(p *objc.Protocol) {
	header := "@objc public protocol " + p.Name
	if len(p.InheritedProtocols) > 0 {
		header += ": " + strings.Join(p.InheritedProtocols, ", ")
	}
	fmt.Fprintln(s.W)
	fmt.Fprintln(s.W, header+" {")
}

func (s *Sink) VisitClass(c *objc.Class) {
	fmt.Fprintln(s.W)
	header := "@objc public class " + c.Name
	var inherits []string
	if c.SuperclassName != "" {
		inherits = append(inherits, c.SuperclassName)
	}
	inherits = append(inherits, c.AdoptedProtocols...)
	if len(inherits) > 0 {
		header += ": " + strings.Join(inherits, ", ")
	}
	fmt.Fprintln(s.W, header+" {")
}

func (s *Sink) VisitCategory(cat *objc.Category) {
	fmt.Fprintln(s.W)
	fmt.Fprintf(s.W, "@objc public extension %s {\n", cat.ClassName)
}

func (s *Sink) VisitIvar(owner visit.EntityRef, iv *objc.Ivar) {
	fmt.Fprintf(s.W, "    // ivar %s: %s\n", iv.Name, s.Formatter.Format(iv.Type, encoding.RoleIvar, ""))
}

func (s *Sink) VisitProperty(owner visit.EntityRef, p *objc.Property, optional bool) {
	typeStr := "Any"
	if p.Attrs != nil && p.Attrs.Type != nil {
		typeStr = s.Formatter.Format(p.Attrs.Type, encoding.RoleProperty, "")
	}
	qualifier := "var"
	if p.Attrs != nil && p.Attrs.Flags.ReadOnly {
		qualifier = "let"
	}
	prefix := "@objc"
	if optional {
		prefix = "@objc optional"
	}
	fmt.Fprintf(s.W, "    %s %s %s: %s\n", prefix, qualifier, p.Name, typeStr)
}

func (s *Sink) VisitMethod(owner visit.EntityRef, m *objc.Method, isClassMethod, optional bool) {
	static := ""
	if isClassMethod {
		static = "static "
	}
	prefix := "optional "
	if !optional {
		prefix = ""
	}
	fmt.Fprintf(s.W, "    @objc %s%sfunc %s\n", prefix, static, swiftFuncSignature(m))
}

// swiftTypeName maps an argument/return encoding to the Swift type name an
// Obj-C importer would give it (spec.md §8 scenario 4: 'i' -> "Int32"). Types
// this sink can't confidently map (structs, blocks, qualified ids, ...) fall
// back to "Any" rather than guessing.
func swiftTypeName(t *encoding.Type) string {
	if t == nil {
		return "Any"
	}
	switch t.Kind {
	case encoding.KindPrimitive:
		switch t.PrimCode {
		case 'c':
			return "Int8"
		case 'C':
			return "UInt8"
		case 's':
			return "Int16"
		case 'S':
			return "UInt16"
		case 'i':
			return "Int32"
		case 'I':
			return "UInt32"
		case 'l', 'q':
			return "Int"
		case 'L', 'Q':
			return "UInt"
		case 'f':
			return "Float"
		case 'd':
			return "Double"
		case 'B':
			return "Bool"
		case 'v':
			return "Void"
		case '*':
			return "UnsafeMutablePointer<Int8>?"
		default:
			return "Any"
		}
	case encoding.KindClass:
		return "AnyClass"
	case encoding.KindSelector:
		return "Selector"
	default:
		return "Any"
	}
}

// swiftKeyword returns the declaration keyword for a processed Swift type's
// kind, collapsing the container kinds (module/extension/anonymous/opaque)
// this sink has nothing to render a body for.
func swiftKeyword(k swiftmeta.Kind) string {
	switch k {
	case swiftmeta.KindClass:
		return "class"
	case swiftmeta.KindStruct:
		return "struct"
	case swiftmeta.KindEnum:
		return "enum"
	case swiftmeta.KindProtocol:
		return "protocol"
	default:
		return ""
	}
}

// VisitSwiftType renders a native Swift type declaration (as opposed to
// the @objc-bridged classes VisitClass renders), spec.md §4.5 "Swift
// metadata" / §6 sink 2.
func (s *Sink) VisitSwiftType(t *swiftmeta.Type) {
	kw := swiftKeyword(t.Kind)
	if kw == "" {
		return
	}
	fmt.Fprintln(s.W)
	header := "public " + kw + " " + t.Name
	if t.IsGeneric && len(t.GenericParams) > 0 {
		header += "<" + strings.Join(t.GenericParams, ", ") + ">"
	}
	if t.SuperclassName != "" {
		header += ": " + t.SuperclassName
	}
	fmt.Fprintln(s.W, header+" {")
	for _, f := range t.Fields {
		typ := "Any"
		switch {
		case f.BoundIvarType != nil:
			typ = swiftTypeName(f.BoundIvarType)
		case f.DemangledTypeName != "":
			typ = f.DemangledTypeName
		}
		qualifier := "var"
		if !f.IsVar {
			qualifier = "let"
		}
		fmt.Fprintf(s.W, "    public %s %s: %s\n", qualifier, f.Name, typ)
	}
	fmt.Fprintln(s.W, "}")
}

// VisitSwiftConformance renders a conformance record as a same-type
// extension, the idiomatic way class-dump-for-Swift tools surface a
// conformance that carries no members of its own.
func (s *Sink) VisitSwiftConformance(c *swiftmeta.Conformance) {
	if c.TypeName == "" {
		return
	}
	fmt.Fprintf(s.W, "extension %s: %s {}\n", c.TypeName, c.ProtocolName)
}

func (s *Sink) BeginOptional(owner visit.EntityRef) {
	fmt.Fprintln(s.W, "    // MARK: optional requirements")
}

func (s *Sink) EndOptional(owner visit.EntityRef) {}

func (s *Sink) EndEntity(owner visit.EntityRef) {
	fmt.Fprintln(s.W, "}")
}

// swiftFuncSignature renders an ObjC selector as a Swift-ish func header,
// e.g. "doSomething:withValue:" with encoding "@28@0:8@16i24" ->
// "doSomething(_ arg1: Any, withValue arg2: Int32) -> Any" (spec.md §8
// scenario 4). The base selector component names the function and its own
// (first) argument is unlabeled, matching the ObjC-to-Swift import rule;
// every later colon component becomes that argument's label.
func swiftFuncSignature(m *objc.Method) string {
	var argTypes []*encoding.Type
	var retType *encoding.Type
	if m.Signature != nil {
		retType = m.Signature.ReturnType
		for i, a := range m.Signature.Args {
			if i < 2 {
				continue // self, _cmd
			}
			argTypes = append(argTypes, a.Type)
		}
	}
	argType := func(i int) string {
		if i < len(argTypes) {
			return swiftTypeName(argTypes[i])
		}
		return "Any"
	}
	ret := ""
	if retType == nil || retType.Kind != encoding.KindPrimitive || retType.PrimCode != 'v' {
		ret = " -> " + swiftTypeName(retType)
	}

	if !strings.Contains(m.Selector, ":") {
		return m.Selector + "()" + ret
	}
	parts := strings.Split(m.Selector, ":")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	name := parts[0]
	labels := parts[1:]

	params := make([]string, 0, len(labels)+1)
	params = append(params, fmt.Sprintf("_ arg1: %s", argType(0)))
	for i, l := range labels {
		params = append(params, fmt.Sprintf("%s arg%d: %s", l, i+2, argType(i+1)))
	}
	return name + "(" + strings.Join(params, ", ") + ")" + ret
}
