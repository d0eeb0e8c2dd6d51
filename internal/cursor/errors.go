package cursor

import "fmt"

// OffsetOutOfBounds is returned by Seek when the requested offset does
// not fall within the underlying buffer.
type OffsetOutOfBounds struct {
	Offset int64
	Size   int64
}

func (e *OffsetOutOfBounds) Error() string {
	return fmt.Sprintf("offset %#x out of bounds (size %#x)", e.Offset, e.Size)
}

// ReadOutOfBounds is returned when a fixed-length read would run past
// the end of the underlying buffer.
type ReadOutOfBounds struct {
	Offset int64
	Length int64
	Size   int64
}

func (e *ReadOutOfBounds) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %#x out of bounds (size %#x)", e.Length, e.Offset, e.Size)
}

// InvalidCString is returned when read_c_string runs off the end of the
// buffer without finding a NUL terminator.
type InvalidCString struct {
	Offset int64
}

func (e *InvalidCString) Error() string {
	return fmt.Sprintf("unterminated c-string at offset %#x", e.Offset)
}

// InvalidEncoding is returned by read_fixed_string when the requested
// byte span cannot be decoded under the given encoding (only ASCII/UTF-8
// fixed strings are supported; Mach-O segment/section names are ASCII).
type InvalidEncoding struct {
	Offset int64
	Reason string
}

func (e *InvalidEncoding) Error() string {
	return fmt.Sprintf("invalid encoding at offset %#x: %s", e.Offset, e.Reason)
}

// Leb128Malformed is returned when a LEB128 sequence runs off the end of
// the buffer before its continuation bit clears.
type Leb128Malformed struct {
	Offset int64
}

func (e *Leb128Malformed) Error() string {
	return fmt.Sprintf("malformed leb128 at offset %#x", e.Offset)
}

// Leb128TooLarge is returned when a LEB128 sequence would require more
// than 64 bits to represent.
type Leb128TooLarge struct {
	Offset int64
}

func (e *Leb128TooLarge) Error() string {
	return fmt.Sprintf("leb128 at offset %#x exceeds 64 bits", e.Offset)
}
