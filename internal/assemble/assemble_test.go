package assemble

import (
	"bytes"
	"testing"

	"github.com/xyproto/asm6502/internal/anon"
	"github.com/xyproto/asm6502/internal/encoder"
	"github.com/xyproto/asm6502/internal/eval"
	"github.com/xyproto/asm6502/internal/lexer"
	"github.com/xyproto/asm6502/internal/macro"
	"github.com/xyproto/asm6502/internal/parser"
	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/symtab"
	"github.com/xyproto/asm6502/internal/value"
)

func assembleSrc(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	file := source.FromBytes("test.s", []byte(src))
	reserved := lexer.NewReservedWords(false)
	lx := lexer.New(file, reserved)
	ctx := eval.NewContext(symtab.New(false), anon.New())
	p := parser.New(lx, ctx, macro.New())
	stmts, errs := p.ParseProgram()
	for _, e := range errs {
		t.Fatalf("unexpected parse error: %v", e)
	}
	res, err := Run(stmts, ctx, source.NewBinaryCache(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestStraightLineProgram(t *testing.T) {
	res := assembleSrc(t, "LDA #$10\nSTA $20\nRTS\n", Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0xA9, 0x10, 0x85, 0x20, 0x60}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
	if res.Passes != 1 {
		t.Fatalf("expected single pass for a program with no forward references, got %d", res.Passes)
	}
}

func TestForwardReferenceNeedsASecondPass(t *testing.T) {
	src := "START: JMP DONE\nDONE: RTS\n"
	res := assembleSrc(t, src, Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0x4C, 0x03, 0x80, 0x60}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
	if res.Passes < 2 {
		t.Fatalf("expected a forward JMP target to require at least 2 passes, got %d", res.Passes)
	}
}

func TestForwardBranchShrinksAcrossPasses(t *testing.T) {
	// BNE to a nearby forward label must settle on the 2-byte relative
	// form, not get stuck at a larger estimate from an early pass.
	src := "LOOP: BNE DONE\nDONE: RTS\n"
	res := assembleSrc(t, src, Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0xD0, 0x00, 0x60}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestAssignmentDefinesSymbol(t *testing.T) {
	res := assembleSrc(t, "COUNT = $05\nLDX #COUNT\n", Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0xA2, 0x05}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestByteAndWordDirectives(t *testing.T) {
	res := assembleSrc(t, ".byte $01, $02\n.word $1234\n", Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0x01, 0x02, 0x34, 0x12}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestAlignPadsOutput(t *testing.T) {
	res := assembleSrc(t, ".byte $01\n.align 4\n.byte $02\n", Options{CPU: encoder.NMOS, Origin: 0x8001})
	want := []byte{0x01, 0x00, 0x00, 0x02}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestStringifyEmitsDecimalDigits(t *testing.T) {
	res := assembleSrc(t, ".stringify 1, 255\n", Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte("1255")
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X (%q), want % X (%q)", res.Bytes, res.Bytes, want, want)
	}
}

func TestProffSuppressesListingLines(t *testing.T) {
	src := ".pron\nLDA #$01\n.proff\nLDA #$02\n.pron\nLDA #$03\n"
	res := assembleSrc(t, src, Options{CPU: encoder.NMOS, Origin: 0x8000})
	var listed int
	for _, l := range res.Lines {
		if l.Listed {
			listed++
		}
	}
	if listed != 2 {
		t.Fatalf("expected 2 listed lines (one suppressed by .proff), got %d", listed)
	}
}

func TestUnderscoreLocalLabelsScopeToEnclosingLabel(t *testing.T) {
	src := "FIRST:\n_loop: LDA #$01\nBNE _loop\nSECOND:\n_loop: LDA #$02\nBNE _loop\n"
	res := assembleSrc(t, src, Options{CPU: encoder.NMOS, Origin: 0x8000})
	want := []byte{0xA9, 0x01, 0xD0, 0xFC, 0xA9, 0x02, 0xD0, 0xFC}
	if !bytes.Equal(res.Bytes, want) {
		t.Fatalf("got % X, want % X", res.Bytes, want)
	}
}

func TestAnonymousLabelsResolveForwardAndBackward(t *testing.T) {
	src := "-\nLDA #$01\nBNE -\nBNE +\nRTS\n+\n"
	res := assembleSrc(t, src, Options{CPU: encoder.NMOS, Origin: 0x8000})
	if value.Value(len(res.Bytes)) == value.Undefined {
		t.Fatal("unreachable")
	}
	if len(res.Bytes) != 7 {
		t.Fatalf("got %d bytes, want 7: % X", len(res.Bytes), res.Bytes)
	}
}

func TestTooManyPassesErrors(t *testing.T) {
	// A self-referential assignment can never converge.
	src := "COUNT = COUNT + 1\n"
	if _, err := assembleSrc2(src, Options{CPU: encoder.NMOS, Origin: 0x8000}); err == nil {
		t.Fatal("expected non-convergence error")
	}
}

func TestRegisterSizeDirectiveWarnsOnNonW65816(t *testing.T) {
	res := assembleSrc(t, ".m16\nNOP\n", Options{CPU: encoder.NMOS, Origin: 0x8000})
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1 warning", res.Warnings)
	}
}

func TestRegisterSizeDirectiveAppliesOnW65816(t *testing.T) {
	res := assembleSrc(t, ".m16\nNOP\n", Options{CPU: encoder.W65816, Origin: 0x8000})
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none on 65816", res.Warnings)
	}
}

func TestDirectPageDirectiveErrorsOnNonW65816(t *testing.T) {
	if _, err := assembleSrc2(".dp $20\nNOP\n", Options{CPU: encoder.NMOS, Origin: 0x8000}); err == nil {
		t.Fatal("expected an error for .dp on a non-65816 CPU")
	}
}

func assembleSrc2(src string, opts Options) (*Result, error) {
	file := source.FromBytes("test.s", []byte(src))
	reserved := lexer.NewReservedWords(false)
	lx := lexer.New(file, reserved)
	ctx := eval.NewContext(symtab.New(false), anon.New())
	p := parser.New(lx, ctx, macro.New())
	stmts, errs := p.ParseProgram()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return Run(stmts, ctx, source.NewBinaryCache(), opts)
}
