// Package cursor implements a bounds-checked sequential byte reader.
// The Swift metadata processor (pkg/swiftmeta) reads through a Cursor
// rather than calling binary.Read against a raw io.ReaderAt, so that a
// truncated or hostile binary surfaces a typed error instead of a panic
// or a short read silently treated as zero bytes. The load-command and
// ObjC readers in the root package do not use it; they call binary.Read.
package cursor

import "encoding/binary"

// Cursor is a bounds-checked sequential reader over an in-memory buffer.
// It does not own the buffer; callers slice a []byte (typically a
// section's or segment's backing bytes) and hand it to New.
type Cursor struct {
	buf []byte
	pos int64
}

// New wraps buf for sequential, bounds-checked reads starting at offset 0.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len reports the size of the underlying buffer.
func (c *Cursor) Len() int64 { return int64(len(c.buf)) }

// Pos reports the current read position.
func (c *Cursor) Pos() int64 { return c.pos }

// Remaining reports the number of unread bytes.
func (c *Cursor) Remaining() int64 { return int64(len(c.buf)) - c.pos }

// Seek repositions the cursor to an absolute offset.
func (c *Cursor) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(c.buf)) {
		return &OffsetOutOfBounds{Offset: offset, Size: int64(len(c.buf))}
	}
	c.pos = offset
	return nil
}

// Advance moves the cursor forward by n bytes (n may be negative).
func (c *Cursor) Advance(n int64) error {
	return c.Seek(c.pos + n)
}

func (c *Cursor) take(n int64) ([]byte, error) {
	if n < 0 || c.pos+n > int64(len(c.buf)) {
		return nil, &ReadOutOfBounds{Offset: c.pos, Length: n, Size: int64(len(c.buf))}
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes returns the next n bytes as a slice into the cursor's
// backing buffer (not a copy); callers must copy if they retain it
// beyond the buffer's lifetime.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(int64(n))
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a uint16 under the given byte order.
func (c *Cursor) ReadU16(bo binary.ByteOrder) (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return bo.Uint16(b), nil
}

// ReadU32 reads a uint32 under the given byte order.
func (c *Cursor) ReadU32(bo binary.ByteOrder) (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return bo.Uint32(b), nil
}

// ReadU64 reads a uint64 under the given byte order.
func (c *Cursor) ReadU64(bo binary.ByteOrder) (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return bo.Uint64(b), nil
}

// ReadFixedString reads an n-byte ASCII/UTF-8 field, NUL-trimmed, as
// Mach-O uses for segment and section names. Non-ASCII bytes are
// rejected rather than silently passed through, matching spec.md's
// InvalidEncoding error for read_fixed_string.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	start := c.pos
	b, err := c.take(int64(n))
	if err != nil {
		return "", err
	}
	end := 0
	for end < len(b) && b[end] != 0 {
		if b[end] > 0x7f {
			return "", &InvalidEncoding{Offset: start, Reason: "non-ASCII byte in fixed-width name field"}
		}
		end++
	}
	return string(b[:end]), nil
}

// ReadCString reads a NUL-terminated string starting at the cursor.
func (c *Cursor) ReadCString() (string, error) {
	start := c.pos
	for i := c.pos; i < int64(len(c.buf)); i++ {
		if c.buf[i] == 0 {
			s := string(c.buf[c.pos:i])
			c.pos = i + 1
			return s, nil
		}
	}
	return "", &InvalidCString{Offset: start}
}

// ReadULEB128 decodes an unsigned LEB128 value: 7-bit groups, continuation
// bit 7. Fails with Leb128TooLarge once the accumulated shift would
// exceed 64 bits.
func (c *Cursor) ReadULEB128() (uint64, error) {
	start := c.pos
	var result uint64
	var shift uint
	for {
		b, err := c.ReadByte()
		if err != nil {
			return 0, &Leb128Malformed{Offset: start}
		}
		if shift >= 64 {
			return 0, &Leb128TooLarge{Offset: start}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift == 63 && b&0x7f > 1 {
				return 0, &Leb128TooLarge{Offset: start}
			}
			return result, nil
		}
		shift += 7
	}
}

// ReadSLEB128 decodes a signed LEB128 value, sign-extending when bit 6 of
// the final byte is set.
func (c *Cursor) ReadSLEB128() (int64, error) {
	start := c.pos
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = c.ReadByte()
		if err != nil {
			return 0, &Leb128Malformed{Offset: start}
		}
		if shift >= 64 {
			return 0, &Leb128TooLarge{Offset: start}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && (b&0x40) != 0 {
		result |= -1 << shift
	}
	return result, nil
}
