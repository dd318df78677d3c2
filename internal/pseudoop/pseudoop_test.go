package pseudoop

import (
	"bytes"
	"testing"

	"github.com/xyproto/asm6502/internal/ast"
)

func TestEmitListWordsLittleEndian(t *testing.T) {
	exprs := []ast.Expr{ast.NewLiteral(0x1234), ast.NewLiteral(0xABCD)}
	got, err := EmitList(Width2, exprs)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x34, 0x12, 0xCD, 0xAB}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestFillRepeatsValue(t *testing.T) {
	got, err := Fill(ast.NewLiteral(4), ast.NewLiteral(0xFF))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestAlignPadsToBoundary(t *testing.T) {
	got := Align(ast.NewLiteral(0x8003).Value(), 4, nil)
	if len(got) != 1 {
		t.Fatalf("Align from 0x8003 to 4 = %d bytes, want 1", len(got))
	}
}

func TestAlignAlreadyAligned(t *testing.T) {
	got := Align(ast.NewLiteral(0x8000).Value(), 4, nil)
	if len(got) != 0 {
		t.Fatalf("Align from 0x8000 to 4 = %d bytes, want 0", len(got))
	}
}

func TestEncodeStringForms(t *testing.T) {
	s := []byte("HI")
	c, _ := EncodeString(CString, s)
	if !bytes.Equal(c, []byte{'H', 'I', 0}) {
		t.Fatalf("cstring = % X", c)
	}
	p, _ := EncodeString(PString, s)
	if !bytes.Equal(p, []byte{2, 'H', 'I'}) {
		t.Fatalf("pstring = % X", p)
	}
	n, _ := EncodeString(NString, s)
	if !bytes.Equal(n, []byte{'H', 'I' | 0x80}) {
		t.Fatalf("nstring = % X", n)
	}
}

func TestLStringShiftsBytesAndSetsLowBit(t *testing.T) {
	l, err := EncodeString(LString, []byte("HI"))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{'H' << 1, ('I' << 1) | 1}
	if !bytes.Equal(l, want) {
		t.Fatalf("lstring = % X, want % X", l, want)
	}
}

func TestLStringRejectsHighBitSet(t *testing.T) {
	if _, err := EncodeString(LString, []byte{0x80}); err == nil {
		t.Fatal("expected error for a byte with the high bit set")
	}
}

func TestNStringRejectsHighBitSet(t *testing.T) {
	if _, err := EncodeString(NString, []byte{0x80}); err == nil {
		t.Fatal("expected error for a byte with the high bit set")
	}
}
