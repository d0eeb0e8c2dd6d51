// Package text implements the Objective-C header sink: spec.md §6 sink 1,
// rendering @protocol/@interface/@end blocks plus a CDStructures.h-style
// structure listing, in the teacher's class-dump-alike declaration order
// (ivars, properties, class methods, instance methods).
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/objc/encoding"
	"github.com/appsworld/machex/pkg/swiftmeta"
	"github.com/appsworld/machex/pkg/visit"
)

// Sink writes ObjC header-style declarations to W as the walker drives it.
type Sink struct {
	W         io.Writer
	Formatter *encoding.Formatter
	Options   visit.Options

	inOptional   bool
	classHasBody bool
	bodyClosed   bool
}

func (s *Sink) closeClassBodyIfNeeded() {
	if s.classHasBody && !s.bodyClosed {
		fmt.Fprintln(s.W, "}")
		s.bodyClosed = true
	}
}

// New returns a Sink ready to be passed to visit.Walk.
func New(w io.Writer, structs encoding.KnownStructResolver, opts visit.Options) *Sink {
	return &Sink{W: w, Formatter: &encoding.Formatter{Structs: structs}, Options: opts}
}

func (s *Sink) Begin(doc visit.DocumentInfo) {
	fmt.Fprintf(s.W, "//\n//     Generated by %s %s\n//\n", doc.GeneratorName, doc.GeneratorVersion)
	if doc.ModuleName != "" {
		fmt.Fprintf(s.W, "//     Module: %s\n", doc.ModuleName)
	}
	if doc.Platform != "" {
		fmt.Fprintf(s.W, "//     Platform: %s\n", doc.Platform)
	}
	fmt.Fprintln(s.W, "//")
	fmt.Fprintln(s.W)
}

func (s *Sink) End() {}

func (s *Sink) VisitStructure(t *encoding.Type) {
	fmt.Fprintln(s.W, s.Formatter.Format(t, encoding.RoleTopLevel, "")+";")
}

func (s *Sink) VisitCFStrings(strs []objc.CFString) {
	if len(strs) == 0 {
		return
	}
	fmt.Fprintln(s.W, "// __cfstring constants")
	for _, cs := range strs {
		fmt.Fprintf(s.W, "// 0x%x: %q\n", cs.Address, cs.Value)
	}
}

func (s *Sink) VisitProtocol(p *objc.Protocol) {
	header := "@protocol " + p.Name
	if len(p.InheritedProtocols) > 0 {
		header += " <" + strings.Join(p.InheritedProtocols, ", ") + ">"
	}
	fmt.Fprintln(s.W)
	fmt.Fprintln(s.W, header)
}

func (s *Sink) VisitClass(c *objc.Class) {
	fmt.Fprintln(s.W)
	header := "@interface " + c.Name
	if c.SuperclassName != "" {
		header += " : " + c.SuperclassName
	}
	if len(c.AdoptedProtocols) > 0 {
		header += " <" + strings.Join(c.AdoptedProtocols, ", ") + ">"
	}
	fmt.Fprintln(s.W, header)
	s.classHasBody = len(c.Ivars) > 0
	s.bodyClosed = false
	if s.classHasBody {
		fmt.Fprintln(s.W, "{")
	}
}

func (s *Sink) VisitCategory(cat *objc.Category) {
	fmt.Fprintln(s.W)
	header := fmt.Sprintf("@interface %s (%s)", cat.ClassName, cat.Name)
	if len(cat.AdoptedProtocols) > 0 {
		header += " <" + strings.Join(cat.AdoptedProtocols, ", ") + ">"
	}
	fmt.Fprintln(s.W, header)
}

func (s *Sink) VisitIvar(owner visit.EntityRef, iv *objc.Ivar) {
	decl := s.Formatter.Format(iv.Type, encoding.RoleIvar, iv.Name)
	var notes []string
	if s.Options.ShowIvarOffsets {
		notes = append(notes, fmt.Sprintf("0x%x", iv.Offset))
	}
	if iv.SwiftFieldType != "" {
		notes = append(notes, "Swift type: "+iv.SwiftFieldType)
	}
	if len(notes) == 0 {
		fmt.Fprintf(s.W, "\t%s;\n", decl)
		return
	}
	fmt.Fprintf(s.W, "\t%s;\t// %s\n", decl, strings.Join(notes, ", "))
}

func (s *Sink) VisitProperty(owner visit.EntityRef, p *objc.Property, optional bool) {
	s.closeClassBodyIfNeeded()
	if p.Attrs == nil {
		return
	}
	fmt.Fprintln(s.W, p.Attrs.FormatObjC(s.Formatter, p.Name))
}

func (s *Sink) VisitMethod(owner visit.EntityRef, m *objc.Method, isClassMethod, optional bool) {
	s.closeClassBodyIfNeeded()
	prefix := "-"
	if isClassMethod {
		prefix = "+"
	}
	decl := prefix + " " + formatMethodDecl(s.Formatter, m)
	if s.Options.ShowMethodAddresses && m.HasImpAddr {
		fmt.Fprintf(s.W, "%s;\t// 0x%x\n", decl, m.ImpAddr)
		return
	}
	fmt.Fprintf(s.W, "%s;\n", decl)
}

// VisitSwiftType renders a processed Swift nominal type as a comment block,
// since Swift declarations have no ObjC header grammar of their own; kept
// here (rather than suppressed) so an ObjC-header dump still surfaces that
// a binary carries Swift metadata at all (spec.md §4.5).
func (s *Sink) VisitSwiftType(t *swiftmeta.Type) {
	fmt.Fprintln(s.W)
	fmt.Fprintf(s.W, "// Swift %s %s\n", t.Kind, t.QualifiedName())
	if t.SuperclassName != "" {
		fmt.Fprintf(s.W, "//   : %s\n", t.SuperclassName)
	}
	for _, f := range t.Fields {
		typ := f.DemangledTypeName
		if typ == "" {
			typ = f.MangledTypeName
		}
		fmt.Fprintf(s.W, "//   var %s: %s\n", f.Name, typ)
	}
}

func (s *Sink) VisitSwiftConformance(c *swiftmeta.Conformance) {
	fmt.Fprintf(s.W, "// %s: %s\n", c.TypeName, c.ProtocolName)
}

func (s *Sink) BeginOptional(owner visit.EntityRef) {
	s.inOptional = true
	fmt.Fprintln(s.W, "@optional")
}

func (s *Sink) EndOptional(owner visit.EntityRef) {
	s.inOptional = false
}

func (s *Sink) EndEntity(owner visit.EntityRef) {
	s.closeClassBodyIfNeeded()
	fmt.Fprintln(s.W, "@end")
}

// formatMethodDecl renders "(ReturnType)selWithArg:(ArgType)name ..." by
// zipping the selector's colon-separated parts against the signature's
// argument types (args[0]/args[1] are the implicit self/_cmd slots).
func formatMethodDecl(f *encoding.Formatter, m *objc.Method) string {
	ret := "id"
	var argTypes []string
	if m.Signature != nil {
		ret = f.Format(m.Signature.ReturnType, encoding.RoleMethodReturn, "")
		for i, a := range m.Signature.Args {
			if i < 2 {
				continue
			}
			argTypes = append(argTypes, f.Format(a.Type, encoding.RoleMethodArg, ""))
		}
	}
	ret = "(" + ret + ")"

	if !strings.Contains(m.Selector, ":") {
		return ret + m.Selector
	}

	parts := strings.Split(m.Selector, ":")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	var b strings.Builder
	b.WriteString(ret)
	for i, part := range parts {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(part)
		b.WriteString(":")
		if i < len(argTypes) {
			b.WriteString("(" + argTypes[i] + ")")
			b.WriteString(fmt.Sprintf("arg%d", i))
		} else {
			b.WriteString("(id)")
			b.WriteString(fmt.Sprintf("arg%d", i))
		}
	}
	return b.String()
}
