// Package pseudoop implements the assembler directives that emit data or
// change assembler state rather than encoding a CPU instruction
// (spec.md §3's directive list).
package pseudoop

import (
	"fmt"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/value"
)

// ArgKind distinguishes the two shapes a directive argument can take:
// a plain Expression or a `?` Query that supplies no value. The parser
// does not build Arg values; it records `.align`'s `?` fill as
// ast.Statement.AlignFillIsQuery, and Align pads that case with zeros.
type ArgKind int

const (
	ArgExpression ArgKind = iota
	ArgQuery
)

// Arg is one directive argument.
type Arg struct {
	Kind ArgKind
	Expr ast.Expr // nil when Kind == ArgQuery
}

// EmitWidth is the element width `.byte`/`.word`/`.dword`/`.long` emit.
type EmitWidth int

const (
	Width1 EmitWidth = 1
	Width2 EmitWidth = 2
	Width3 EmitWidth = 3
	Width4 EmitWidth = 4
)

// EmitList renders a `.byte`/`.word`/`.dword`/`.long` expression list to
// bytes in little-endian order, erroring on any element that does not
// yet fit the declared width (a later pass may still resolve it).
func EmitList(width EmitWidth, exprs []ast.Expr) ([]byte, error) {
	out := make([]byte, 0, len(exprs)*int(width))
	for _, ex := range exprs {
		v := ex.Value()
		if v.IsUndefined() {
			return nil, errUndefined
		}
		if !value.FitsWidth(v, int(width)) {
			return nil, fmt.Errorf("value %d does not fit in %d byte(s)", v, width)
		}
		for i := 0; i < int(width); i++ {
			out = append(out, byte(int64(v)>>(8*i)))
		}
	}
	return out, nil
}

var errUndefined = fmt.Errorf("operand value is not yet defined")

// IsUndefinedOperand reports whether err is the "needs another pass"
// sentinel.
func IsUndefinedOperand(err error) bool { return err == errUndefined }

// Fill renders `.fill count, value` (value defaults to 0 if omitted).
func Fill(count ast.Expr, fillValue ast.Expr) ([]byte, error) {
	n := count.Value()
	if n.IsUndefined() {
		return nil, errUndefined
	}
	if n < 0 {
		return nil, fmt.Errorf(".fill count must not be negative")
	}
	var b byte
	if fillValue != nil {
		v := fillValue.Value()
		if v.IsUndefined() {
			return nil, errUndefined
		}
		b = byte(v)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out, nil
}

// Align pads from pc up to the next multiple of boundary, using fillByte;
// a nil fillByte (the `?` Query fill) pads with zero bytes.
func Align(pc value.Value, boundary int, fillByte *byte) []byte {
	if boundary <= 0 {
		return nil
	}
	rem := int64(pc) % int64(boundary)
	if rem == 0 {
		return nil
	}
	n := int64(boundary) - rem
	out := make([]byte, n)
	if fillByte != nil {
		for i := range out {
			out[i] = *fillByte
		}
	}
	return out
}

// Binary reads the whole (or sliced) contents of a `.binary` file
// through the shared cache, per spec.md §3.
func Binary(cache *source.BinaryCache, path string, start, length int64) ([]byte, error) {
	data, err := cache.Read(path)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > int64(len(data)) {
		return nil, fmt.Errorf(".binary start offset %d out of range for %q (%d bytes)", start, path, len(data))
	}
	end := int64(len(data))
	if length >= 0 {
		end = start + length
		if end > int64(len(data)) {
			return nil, fmt.Errorf(".binary slice [%d:%d] out of range for %q (%d bytes)", start, end, path, len(data))
		}
	}
	return data[start:end], nil
}

// StringForm is which `.string`-family directive produced a literal.
type StringForm int

const (
	PlainString   StringForm = iota // .string: raw bytes, no terminator
	CString                         // .cstring: NUL-terminated
	LString                         // .lstring: each byte shifted left one bit, bit 0 of the final byte set
	NString                         // .nstring: high bit of final byte set
	PString                         // .pstring: 8-bit length prefix (Pascal string)
)

// EncodeString renders s (already stringified/escaped by the lexer) per
// the given directive form.
func EncodeString(form StringForm, s []byte) ([]byte, error) {
	switch form {
	case PlainString:
		return s, nil
	case CString:
		return append(append([]byte{}, s...), 0), nil
	case LString:
		if len(s) == 0 {
			return nil, fmt.Errorf(".lstring requires at least one byte")
		}
		out := append([]byte{}, s...)
		for i, b := range out {
			if b&0x80 != 0 {
				return nil, fmt.Errorf(".lstring byte %d has the high bit set", i)
			}
			out[i] = b << 1
		}
		out[len(out)-1] |= 1
		return out, nil
	case NString:
		if len(s) == 0 {
			return nil, fmt.Errorf(".nstring requires at least one byte")
		}
		out := append([]byte{}, s...)
		for i, b := range out {
			if b&0x80 != 0 {
				return nil, fmt.Errorf(".nstring byte %d has the high bit set", i)
			}
		}
		out[len(out)-1] |= 0x80
		return out, nil
	case PString:
		if len(s) > 0xFF {
			return nil, fmt.Errorf(".pstring argument too long (%d bytes)", len(s))
		}
		out := make([]byte, 0, len(s)+1)
		out = append(out, byte(len(s)))
		return append(out, s...), nil
	}
	return nil, fmt.Errorf("unknown string directive form")
}
