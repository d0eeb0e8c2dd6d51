package encoding

import (
	"fmt"
	"strings"
)

var primNames = map[byte]string{
	'c': "char", 'C': "unsigned char",
	's': "short", 'S': "unsigned short",
	'i': "int", 'I': "unsigned int",
	'l': "long", 'L': "unsigned long",
	'q': "long long", 'Q': "unsigned long long",
	'f': "float", 'd': "double",
	'B': "BOOL", 'v': "void",
	'*': "char *",
}

// KnownStructResolver reports whether a struct/union tag has been
// registered with a full member definition (see registry.StructureRegistry),
// which determines whether Format renders "TagName *" or "struct TagName *".
type KnownStructResolver interface {
	Known(tag string) bool
}

// Formatter renders a parsed Type as Objective-C source text for a given
// emission role (spec.md §4.6 "Formatter contract").
type Formatter struct {
	Structs KnownStructResolver
}

// Format renders t for the given role. name is substituted for ivar,
// property, struct-member, and method-arg roles that need a declarator
// name embedded inside the type (arrays, pointers-to-function, blocks).
func (f *Formatter) Format(t *Type, role Role, name string) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindPrimitive:
		return declare(primNames[t.PrimCode], name)
	case KindUnknown:
		return declare(fmt.Sprintf("/* unknown type 0x%02x */ void", t.UnknownCode), name)
	case KindSelector:
		return declare("SEL", name)
	case KindClass:
		return declare("Class", name)
	case KindID:
		return declare(f.formatID(t), name)
	case KindPointer:
		return f.formatPointer(t, name)
	case KindArray:
		return fmt.Sprintf("%s %s[%d]", f.Format(t.ArrayOf, RoleStructMember, ""), orSelf(name), t.ArrayLen)
	case KindStruct:
		return declare(f.formatComposite("struct", t), name)
	case KindUnion:
		return declare(f.formatComposite("union", t), name)
	case KindBitfield:
		if name == "" {
			return fmt.Sprintf("unsigned int : %d", t.BitWidth)
		}
		return fmt.Sprintf("unsigned int %s : %d", name, t.BitWidth)
	case KindBlock:
		return f.formatBlock(t, name)
	default:
		return declare("void", name)
	}
}

func orSelf(name string) string { return name }

func declare(typeStr, name string) string {
	if name == "" {
		return typeStr
	}
	if strings.HasSuffix(typeStr, "*") {
		return typeStr + name
	}
	return typeStr + " " + name
}

func (f *Formatter) formatID(t *Type) string {
	if len(t.Protocols) == 0 {
		return "id"
	}
	// A single bare name with no following comma-list is a class name
	// (e.g. @"NSString"); a list came from @"<P1,P2>" or "Cls<P1,P2>".
	if len(t.Protocols) == 1 && !strings.Contains(t.Protocols[0], "<") {
		return t.Protocols[0] + " *"
	}
	return "id<" + strings.Join(t.Protocols, ", ") + ">"
}

func (f *Formatter) formatPointer(t *Type, name string) string {
	switch t.Pointee.Kind {
	case KindPrimitive:
		if t.Pointee.PrimCode == 'c' {
			return declare("char *", name)
		}
	case KindStruct:
		known := f.Structs != nil && f.Structs.Known(t.Pointee.Tag)
		prefix := "struct "
		if known {
			prefix = ""
		}
		tag := t.Pointee.Tag
		if tag == "" {
			tag = "?"
		}
		return declare(prefix+tag+" *", name)
	}
	inner := f.Format(t.Pointee, RoleTopLevel, "")
	if strings.HasSuffix(inner, "*") {
		return declare(inner+"*", name)
	}
	return declare(inner+" *", name)
}

func (f *Formatter) formatComposite(keyword string, t *Type) string {
	tag := t.Tag
	if tag == "" {
		tag = "?"
	}
	if t.Members == nil {
		return fmt.Sprintf("%s %s", keyword, tag)
	}
	var members []string
	for i, m := range t.Members {
		members = append(members, f.Format(m, RoleStructMember, fmt.Sprintf("field%d", i))+";")
	}
	return fmt.Sprintf("%s %s { %s }", keyword, tag, strings.Join(members, " "))
}

func (f *Formatter) formatBlock(t *Type, name string) string {
	decl := name
	if decl == "" {
		decl = ""
	}
	if t.Signature == nil {
		return declare("id /* block */", decl)
	}
	ret := f.Format(t.Signature.ReturnType, RoleMethodReturn, "")
	var args []string
	for i, a := range t.Signature.Args {
		if i < 2 {
			continue // skip implicit self/_cmd slots carried by block encodings
		}
		args = append(args, f.Format(a.Type, RoleMethodArg, ""))
	}
	if len(args) == 0 {
		args = []string{"void"}
	}
	return fmt.Sprintf("%s (^%s)(%s)", ret, decl, strings.Join(args, ", "))
}
