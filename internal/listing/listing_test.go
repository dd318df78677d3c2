package listing

import (
	"strings"
	"testing"
	"time"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/value"
)

func TestFormatOperandAddressingModes(t *testing.T) {
	lit := func(n int64) ast.Expr { return ast.NewLiteral(value.Value(n)) }
	cases := []struct {
		name         string
		mnemonic     string
		op           *ast.Operand
		operandBytes int
		want         string
	}{
		{"implied", "RTS", ast.NewOperand(ast.NoOperand, ast.WidthInferred), 0, "rts"},
		{"accumulator", "ASL", ast.NewOperand(ast.Accumulator, ast.WidthInferred), 0, "asl a"},
		{"immediate", "LDA", ast.NewOperand(ast.Immediate, ast.WidthInferred, lit(0x10)), 1, "lda #$10"},
		{"zeropage", "STA", ast.NewOperand(ast.Direct, ast.WidthInferred, lit(0x20)), 1, "sta $20"},
		{"absolute", "JMP", ast.NewOperand(ast.Direct, ast.WidthInferred, lit(0x1234)), 2, "jmp $1234"},
		{"indexed-x", "LDA", ast.NewOperand(ast.IndexX, ast.WidthInferred, lit(0x20)), 1, "lda $20,x"},
		{"indirect-y", "LDA", ast.NewOperand(ast.IndirectY, ast.WidthInferred, lit(0x20)), 1, "lda ($20),y"},
		{"indirect-long", "LDA", ast.NewOperand(ast.IndirectLong, ast.WidthInferred, lit(0x20)), 1, "lda [$20]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FormatOperand(c.mnemonic, c.op, c.operandBytes)
			if got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestBuilderRespectsVisibilityToggle(t *testing.T) {
	b := NewBuilder()
	b.Add(Entry{Kind: KindInstruction, PC: 0x8000, Bytes: []byte{0x60}, Operand: "rts", SourceLine: "RTS"})
	b.SetVisible(false)
	b.Add(Entry{Kind: KindInstruction, PC: 0x8001, Bytes: []byte{0x60}, Operand: "rts", SourceLine: "RTS"})
	b.SetVisible(true)
	b.Add(Entry{Kind: KindInstruction, PC: 0x8002, Bytes: []byte{0x60}, Operand: "rts", SourceLine: "RTS"})

	out := b.Render("test.s", "tiny6502 test.s", time.Unix(0, 0))
	if strings.Count(out, "rts") != 2 {
		t.Fatalf("expected 2 listed rts lines (suppressed one skipped), got output:\n%s", out)
	}
	if !strings.Contains(out, "8000") || strings.Contains(out, "8001") || !strings.Contains(out, "8002") {
		t.Fatalf("expected 8000 and 8002 present, 8001 suppressed, got:\n%s", out)
	}
}

func TestRenderHeaderLines(t *testing.T) {
	b := NewBuilder()
	out := b.Render("main.s", "tiny6502 -o a.out main.s", time.Unix(0, 0))
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 header lines, got %d", len(lines))
	}
	for i := 0; i < 3; i++ {
		if !strings.HasPrefix(lines[i], ";;") {
			t.Fatalf("header line %d does not start with ;;: %q", i, lines[i])
		}
	}
}

func TestLabelReportFormatsEntries(t *testing.T) {
	out := LabelReport([]Symbol{
		{Name: "START", Value: 0x8000},
		{Name: "COUNT", Value: 5},
	})
	if !strings.Contains(out, "SYMBOL") || !strings.Contains(out, "VALUE") {
		t.Fatalf("expected header row, got:\n%s", out)
	}
	if !strings.Contains(out, "START") || !strings.Contains(out, "$8000") || !strings.Contains(out, "(32768)") {
		t.Fatalf("expected START row with hex and decimal value, got:\n%s", out)
	}
	if !strings.Contains(out, "COUNT") || !strings.Contains(out, "$5") || !strings.Contains(out, "(5)") {
		t.Fatalf("expected COUNT row, got:\n%s", out)
	}
}

func TestDataDirectiveWrapsEveryEightBytes(t *testing.T) {
	b := NewBuilder()
	bytes := make([]byte, 10)
	for i := range bytes {
		bytes[i] = byte(i)
	}
	b.Add(Entry{Kind: KindPseudoOp, PC: 0x8000, Bytes: bytes, Operand: ".byte ...", SourceLine: ".byte 0,1,2,3,4,5,6,7,8,9"})
	out := b.Render("test.s", "tiny6502 test.s", time.Unix(0, 0))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// 3 header lines + 2 data rows (8 bytes, then 2 bytes)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
}
