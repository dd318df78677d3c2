// Package output renders an assemble.Result's byte buffer into one of the
// two file formats spec.md §6 names: a raw flat binary, or a Commodore
// "PRG"-style image with a two-byte little-endian load address prefix.
package output

import (
	"fmt"

	"github.com/xyproto/asm6502/internal/value"
)

// Format selects the output file encoding.
type Format int

const (
	Flat Format = iota
	CBM
)

// ParseFormat maps the CLI's -f/--format value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "flat":
		return Flat, nil
	case "cbm":
		return CBM, nil
	default:
		return 0, fmt.Errorf("unknown output format %q (want flat or cbm)", s)
	}
}

// Encode prepends the format's header (none for flat, a 2-byte load address
// for cbm) to bytes, which is assumed to already start at origin with no
// leading padding.
func Encode(format Format, origin value.Value, bytes []byte) []byte {
	if format == Flat {
		return bytes
	}
	out := make([]byte, 2+len(bytes))
	out[0] = byte(origin)
	out[1] = byte(origin >> 8)
	copy(out[2:], bytes)
	return out
}
