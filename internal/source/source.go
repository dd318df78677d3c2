// Package source owns the text and binary inputs an assembly run reads:
// normalized source lines and a cache of binary-file blobs.
package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/asm6502/internal/value"
)

// File is a source file split into logical lines with CR/CRLF rewritten
// to LF, as spec.md §3 requires.
type File struct {
	Name  string // display name, e.g. as given on the command line or in .include
	Lines []string
}

// Load reads path and splits it into normalized lines (no trailing
// newline on any line).
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(path, raw), nil
}

// FromBytes builds a File from raw bytes already in memory (used for
// stdin input and for tests).
func FromBytes(name string, raw []byte) *File {
	normalized := strings.ReplaceAll(string(raw), "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	// A trailing newline produces one spurious empty final line; drop it
	// unless the file is entirely empty.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &File{Name: name, Lines: lines}
}

// Line returns the 1-based source line, or "" if out of range.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.Lines) {
		return ""
	}
	return f.Lines[n-1]
}

// MaxBinarySize bounds a cached .binary blob, per spec.md §3.
const MaxBinarySize = value.Uint24Max

// BinaryCache is an append-only, read-once-per-path cache of binary file
// contents, shared for the lifetime of one assembly run so that repeated
// `.binary` directives (including the same file read again on a later
// pass) never re-touch the filesystem.
type BinaryCache struct {
	files map[string][]byte
}

// NewBinaryCache returns an empty cache.
func NewBinaryCache() *BinaryCache {
	return &BinaryCache{files: make(map[string][]byte)}
}

// Read returns the bytes of path, reading and caching them on first use.
func (c *BinaryCache) Read(path string) ([]byte, error) {
	if b, ok := c.files[path]; ok {
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) > MaxBinarySize {
		return nil, fmt.Errorf("binary file %q exceeds maximum size of %d bytes", path, MaxBinarySize)
	}
	c.files[path] = b
	return b, nil
}
