package encoding

import "strings"

// PropertyFlags is the parsed flag set from a property attribute string
// (spec.md §4.7).
type PropertyFlags struct {
	ReadOnly    bool
	Copy        bool
	Retain      bool // '&'
	Weak        bool
	NonAtomic   bool
	Dynamic     bool
	GCEligible  bool
	Getter      string
	Setter      string
	BackingIvar string
}

// Property is the parsed form of a property's raw attribute string
// (e.g. `T@"NSString",C,N,V_name`): a canonical type plus flags.
type Property struct {
	Type        *Type
	RawType     string
	Flags       PropertyFlags
	Duplicate   []byte // recoverable-error marker: keys seen more than once
}

// ParsePropertyAttributes parses a comma-separated attribute string.
// Duplicate keys are a recoverable error: first occurrence wins and the
// duplicate is recorded rather than causing a failure (spec.md §4.7).
func ParsePropertyAttributes(attrs string) (*Property, error) {
	p := &Property{}
	seen := map[byte]bool{}
	for _, tok := range strings.Split(attrs, ",") {
		if tok == "" {
			continue
		}
		key := tok[0]
		payload := tok[1:]
		if seen[key] {
			p.Duplicate = append(p.Duplicate, key)
			continue
		}
		seen[key] = true
		switch key {
		case 'T':
			p.RawType = payload
			if t, _, err := ParseType(payload); err == nil {
				p.Type = t
			}
		case 'R':
			p.Flags.ReadOnly = true
		case 'C':
			p.Flags.Copy = true
		case '&':
			p.Flags.Retain = true
		case 'W':
			p.Flags.Weak = true
		case 'N':
			p.Flags.NonAtomic = true
		case 'G':
			p.Flags.Getter = payload
		case 'S':
			p.Flags.Setter = payload
		case 'D':
			p.Flags.Dynamic = true
		case 'P':
			p.Flags.GCEligible = true
		case 'V':
			p.Flags.BackingIvar = payload
		}
	}
	return p, nil
}

// FormatObjC renders the property's storage qualifiers + type + name as
// they appear in an @property declaration, e.g.
// "@property(copy, nonatomic) NSString *name;".
func (p *Property) FormatObjC(f *Formatter, name string) string {
	var quals []string
	if p.Flags.ReadOnly {
		quals = append(quals, "readonly")
	}
	if p.Flags.Copy {
		quals = append(quals, "copy")
	} else if p.Flags.Retain {
		quals = append(quals, "strong")
	} else if p.Flags.Weak {
		quals = append(quals, "weak")
	}
	if p.Flags.NonAtomic {
		quals = append(quals, "nonatomic")
	}
	if p.Flags.Getter != "" {
		quals = append(quals, "getter="+p.Flags.Getter)
	}
	if p.Flags.Setter != "" {
		quals = append(quals, "setter="+p.Flags.Setter)
	}
	typeStr := f.Format(p.Type, RoleProperty, name)
	qualStr := ""
	if len(quals) > 0 {
		qualStr = "(" + strings.Join(quals, ", ") + ") "
	}
	return "@property" + qualStr + typeStr + ";"
}
