package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// parser is a recursive-descent parser over an encoded-type string.
type parser struct {
	s   string
	pos int
}

func newParser(s string) *parser {
	return &parser{s: s}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *parser) next() (byte, bool) {
	b, ok := p.peek()
	if ok {
		p.pos++
	}
	return b, ok
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

// skipQualifiers consumes leading type-qualifier characters
// (r, n, N, o, O, R, V, A, j, !, +) that may precede a type.
func (p *parser) skipQualifiers() {
	for {
		b, ok := p.peek()
		if !ok {
			return
		}
		switch b {
		case 'r', 'n', 'N', 'o', 'O', 'R', 'V', 'A', 'j', '+':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) readDigits() string {
	start := p.pos
	for {
		b, ok := p.peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) readUntil(stop byte) string {
	start := p.pos
	for {
		b, ok := p.peek()
		if !ok || b == stop {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// ParseType parses one encoded type term starting at the current
// position and returns it along with the remaining unparsed suffix.
func ParseType(s string) (*Type, string, error) {
	p := newParser(s)
	t, err := p.parseOne()
	if err != nil {
		return nil, "", err
	}
	return t, p.s[p.pos:], nil
}

func (p *parser) parseOne() (*Type, error) {
	p.skipQualifiers()
	b, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("encoding: unexpected end of input")
	}
	switch b {
	case '^':
		inner, err := p.parseOne()
		if err != nil {
			return nil, fmt.Errorf("encoding: pointer target: %w", err)
		}
		return &Type{Kind: KindPointer, Pointee: inner}, nil
	case '[':
		digits := p.readDigits()
		n, _ := strconv.Atoi(digits)
		inner, err := p.parseOne()
		if err != nil {
			return nil, fmt.Errorf("encoding: array element: %w", err)
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindArray, ArrayLen: n, ArrayOf: inner}, nil
	case '{':
		return p.parseComposite(KindStruct, '}')
	case '(':
		return p.parseComposite(KindUnion, ')')
	case 'b':
		digits := p.readDigits()
		n, _ := strconv.Atoi(digits)
		return &Type{Kind: KindBitfield, BitWidth: n}, nil
	case '@':
		return p.parseID()
	case '#':
		return &Type{Kind: KindClass}, nil
	case ':':
		return &Type{Kind: KindSelector}, nil
	case 'c', 'C', 's', 'S', 'i', 'I', 'l', 'L', 'q', 'Q', 'f', 'd', 'B', 'v', '*':
		return &Type{Kind: KindPrimitive, PrimCode: b}, nil
	default:
		return &Type{Kind: KindUnknown, UnknownCode: b}, nil
	}
}

func (p *parser) parseID() (*Type, error) {
	// "@?" introduces a block; "@?<sig>" embeds its signature.
	if nb, ok := p.peek(); ok && nb == '?' {
		p.pos++
		t := &Type{Kind: KindBlock}
		if nb2, ok := p.peek(); ok && nb2 == '<' {
			p.pos++
			sigStr := p.readUntil('>')
			if err := p.expect('>'); err != nil {
				return nil, err
			}
			sig, err := ParseMethodEncoding(sigStr)
			if err == nil {
				t.Signature = sig
			}
		}
		return t, nil
	}
	if nb, ok := p.peek(); ok && nb == '"' {
		p.pos++
		body := p.readUntil('"')
		if err := p.expect('"'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindID, Protocols: parseProtocolRefs(body)}, nil
	}
	return &Type{Kind: KindID}, nil
}

// parseProtocolRefs splits a quoted id body like `NSObject<NSCopying,NSCoding>`
// into a class-name-or-protocol-list; the class-name-only case yields a
// single-element slice for the formatter to special-case.
func parseProtocolRefs(body string) []string {
	if body == "" {
		return nil
	}
	if idx := strings.IndexByte(body, '<'); idx >= 0 {
		inner := strings.TrimSuffix(body[idx+1:], ">")
		parts := strings.Split(inner, ",")
		return parts
	}
	return []string{body}
}

func (p *parser) parseComposite(kind Kind, closer byte) (*Type, error) {
	tag := p.readUntilAny('=', closer)
	t := &Type{Kind: kind, Tag: tag}
	if b, ok := p.peek(); ok && b == '=' {
		p.pos++
		for {
			if b, ok := p.peek(); ok && b == closer {
				break
			}
			if p.eof() {
				return nil, fmt.Errorf("encoding: unterminated %s %q", kindName(kind), tag)
			}
			m, err := p.parseOne()
			if err != nil {
				return nil, fmt.Errorf("encoding: member of %s %q: %w", kindName(kind), tag, err)
			}
			t.Members = append(t.Members, m)
		}
	}
	if err := p.expect(closer); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) readUntilAny(stops ...byte) string {
	start := p.pos
	for {
		b, ok := p.peek()
		if !ok {
			break
		}
		for _, s := range stops {
			if b == s {
				return p.s[start:p.pos]
			}
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) expect(b byte) error {
	got, ok := p.next()
	if !ok || got != b {
		return fmt.Errorf("encoding: expected %q at position %d", b, p.pos)
	}
	return nil
}

func kindName(k Kind) string {
	if k == KindStruct {
		return "struct"
	}
	return "union"
}

// ParseMethodEncoding parses a full method type-encoding string such as
// "@28@0:8@16i24": return type followed by (type, stack-offset) pairs,
// the first two of which are conventionally self (@) and _cmd (:).
func ParseMethodEncoding(s string) (*MethodSignature, error) {
	p := newParser(s)
	ret, err := p.parseOne()
	if err != nil {
		return nil, fmt.Errorf("encoding: return type: %w", err)
	}
	p.readDigits() // overall stack frame size after the return type
	sig := &MethodSignature{ReturnType: ret}
	for !p.eof() {
		argType, err := p.parseOne()
		if err != nil {
			return nil, fmt.Errorf("encoding: argument %d: %w", len(sig.Args), err)
		}
		digits := p.readDigits()
		n, _ := strconv.Atoi(digits)
		sig.Args = append(sig.Args, Arg{Type: argType, StackWidth: n})
	}
	return sig, nil
}
