package encoding

import "testing"

type staticStructs map[string]bool

func (s staticStructs) Known(tag string) bool { return s[tag] }

func TestFormatObjCRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		enc  string
		role Role
		want string
	}{
		{name: "int", enc: "i", role: RoleIvar, want: "int"},
		{name: "bool", enc: "B", role: RoleIvar, want: "BOOL"},
		{name: "plain id", enc: "@", role: RoleIvar, want: "id"},
		{name: "class-named id", enc: `@"NSString"`, role: RoleIvar, want: "NSString *"},
		{name: "protocol-qualified id", enc: `@"<NSCopying>"`, role: RoleIvar, want: "id<NSCopying>"},
		{name: "selector", enc: ":", role: RoleIvar, want: "SEL"},
		{name: "class", enc: "#", role: RoleIvar, want: "Class"},
		{name: "c string", enc: "*", role: RoleIvar, want: "char *"},
	}
	f := &Formatter{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			typ, rest, err := ParseType(tc.enc)
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tc.enc, err)
			}
			if rest != "" {
				t.Fatalf("ParseType(%q) left unparsed suffix %q", tc.enc, rest)
			}
			got := f.Format(typ, tc.role, "")
			if got != tc.want {
				t.Errorf("Format(%q) = %q, want %q", tc.enc, got, tc.want)
			}
		})
	}
}

func TestFormatPointerToKnownStruct(t *testing.T) {
	typ, _, err := ParseType(`^{CGRect}`)
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	f := &Formatter{Structs: staticStructs{"CGRect": true}}
	if got, want := f.Format(typ, RoleIvar, ""), "CGRect *"; got != want {
		t.Errorf("known struct pointer = %q, want %q", got, want)
	}

	f2 := &Formatter{Structs: staticStructs{}}
	if got, want := f2.Format(typ, RoleIvar, ""), "struct CGRect *"; got != want {
		t.Errorf("unknown struct pointer = %q, want %q", got, want)
	}
}

func TestFormatStructWithMembers(t *testing.T) {
	typ, _, err := ParseType(`{CGPoint=dd}`)
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	f := &Formatter{}
	got := f.Format(typ, RoleTopLevel, "")
	want := "struct CGPoint { double field0; double field1; }"
	if got != want {
		t.Errorf("Format(struct) = %q, want %q", got, want)
	}
}

func TestFormatMethodEncodingDoSomethingWithValue(t *testing.T) {
	sig, err := ParseMethodEncoding("@28@0:8@16i24")
	if err != nil {
		t.Fatalf("ParseMethodEncoding: %v", err)
	}
	f := &Formatter{}
	if got, want := f.Format(sig.ReturnType, RoleMethodReturn, ""), "id"; got != want {
		t.Errorf("return type = %q, want %q", got, want)
	}
	if len(sig.Args) != 4 {
		t.Fatalf("got %d args, want 4 (self, _cmd, arg1, arg2)", len(sig.Args))
	}
	if got, want := f.Format(sig.Args[2].Type, RoleMethodArg, ""), "id"; got != want {
		t.Errorf("arg1 type = %q, want %q", got, want)
	}
	if got, want := f.Format(sig.Args[3].Type, RoleMethodArg, ""), "int"; got != want {
		t.Errorf("arg2 type = %q, want %q", got, want)
	}
}

func TestFormatBlockSignature(t *testing.T) {
	typ, _, err := ParseType(`@?<v@:i>`)
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if typ.Kind != KindBlock || typ.Signature == nil {
		t.Fatalf("expected parsed block signature, got %+v", typ)
	}
	f := &Formatter{}
	got := f.Format(typ, RoleIvar, "callback")
	want := "void (^callback)(int)"
	if got != want {
		t.Errorf("Format(block) = %q, want %q", got, want)
	}
}

func TestFormatBareBlockNoSignature(t *testing.T) {
	typ, _, err := ParseType(`@?`)
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	f := &Formatter{}
	got := f.Format(typ, RoleIvar, "handler")
	if got != "id /* block */ handler" {
		t.Errorf("Format(bare block) = %q", got)
	}
}

func TestParsePropertyAttributes(t *testing.T) {
	p, err := ParsePropertyAttributes(`T@"NSString",C,N,V_name`)
	if err != nil {
		t.Fatalf("ParsePropertyAttributes: %v", err)
	}
	if p.RawType != `@"NSString"` {
		t.Errorf("RawType = %q", p.RawType)
	}
	if !p.Flags.Copy || !p.Flags.NonAtomic {
		t.Errorf("flags = %+v, want copy+nonatomic", p.Flags)
	}
	if p.Flags.ReadOnly {
		t.Errorf("unexpected readonly flag")
	}
	if p.Flags.BackingIvar != "_name" {
		t.Errorf("BackingIvar = %q, want _name", p.Flags.BackingIvar)
	}

	f := &Formatter{}
	got := p.FormatObjC(f, "name")
	want := "@property(copy, nonatomic) NSString *name;"
	if got != want {
		t.Errorf("FormatObjC = %q, want %q", got, want)
	}
}

func TestParsePropertyAttributesDuplicateKey(t *testing.T) {
	p, err := ParsePropertyAttributes("T@,N,N")
	if err != nil {
		t.Fatalf("ParsePropertyAttributes: %v", err)
	}
	if len(p.Duplicate) != 1 || p.Duplicate[0] != 'N' {
		t.Errorf("Duplicate = %v, want [N]", p.Duplicate)
	}
	if !p.Flags.NonAtomic {
		t.Errorf("first occurrence of N should still set the flag")
	}
}
