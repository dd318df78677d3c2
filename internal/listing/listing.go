// Package listing renders the disassembly listing and symbol table report
// spec.md §6 describes. It works from the already-assembled statements and
// their final-pass bytes rather than re-disassembling the output buffer;
// operands are shown as their resolved hex values, and the verbatim source
// line is printed beside them.
package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/value"
)

// Kind is the per-line marker spec.md §6 puts at column 0.
type Kind byte

const (
	KindInstruction Kind = '.'
	KindPseudoOp    Kind = '>'
	KindAssignment  Kind = '='
	KindUnassembled Kind = '-'
)

// Entry is one listed source line.
type Entry struct {
	Kind       Kind
	PC         value.Value
	Bytes      []byte
	Operand    string // formatted mnemonic/operand text, already lowercase
	SourceLine string
}

// Builder accumulates listing entries, honoring .pron/.proff visibility.
type Builder struct {
	entries []Entry
	visible bool
}

// NewBuilder starts a builder with listing output enabled, matching the
// original's default of listing everything unless .proff suppresses it.
func NewBuilder() *Builder {
	return &Builder{visible: true}
}

// SetVisible implements .pron (true) / .proff (false).
func (b *Builder) SetVisible(v bool) { b.visible = v }

// Add records one entry if the listing is currently visible.
func (b *Builder) Add(e Entry) {
	if !b.visible {
		return
	}
	b.entries = append(b.entries, e)
}

// Render produces the full .lst file contents: three ";;" header comment
// lines (source path, UTC timestamp, original CLI invocation) followed by
// one row per recorded entry, wrapping data bytes every 8 per continuation
// line.
func (b *Builder) Render(sourcePath, cliInvocation string, generatedAt time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ";; %s\n", sourcePath)
	fmt.Fprintf(&sb, ";; %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, ";; %s\n", cliInvocation)
	for _, e := range b.entries {
		writeEntry(&sb, e)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, e Entry) {
	rows := chunk(e.Bytes, 8)
	if len(rows) == 0 {
		rows = [][]byte{nil}
	}
	first := formatRow(e.Kind, e.PC, rows[0], e.Operand, e.SourceLine)
	sb.WriteString(first)
	sb.WriteByte('\n')
	for _, row := range rows[1:] {
		sb.WriteString(formatRow(e.Kind, e.PC, row, "", ""))
		sb.WriteByte('\n')
	}
}

// formatRow lays out one fixed-column line: marker at 0, 4-digit hex PC at
// 1-4, up to 8 space-separated hex byte pairs from 6, mnemonic/operand from
// 30, then the verbatim source line from 47.
func formatRow(kind Kind, pc value.Value, bytes []byte, operand, sourceLine string) string {
	var b strings.Builder
	b.WriteByte(byte(kind))
	fmt.Fprintf(&b, "%04X ", uint32(pc)&0xFFFF)
	for i := 0; i < 8; i++ {
		if i < len(bytes) {
			fmt.Fprintf(&b, "%02X ", bytes[i])
		} else {
			b.WriteString("   ")
		}
	}
	pad(&b, 30)
	b.WriteString(operand)
	pad(&b, 47)
	b.WriteString(sourceLine)
	return b.String()
}

func pad(b *strings.Builder, col int) {
	for b.Len() < col {
		b.WriteByte(' ')
	}
}

func chunk(b []byte, size int) [][]byte {
	if len(b) == 0 {
		return nil
	}
	var out [][]byte
	for len(b) > size {
		out = append(out, b[:size])
		b = b[size:]
	}
	return append(out, b)
}

// FormatOperand renders a resolved instruction operand the way the
// original's 26 printf-style disassembly templates would (spec.md §4.4):
// hex digit width is driven by how many operand bytes the encoder actually
// produced, not by the expression's nominal width.
func FormatOperand(mnemonic string, op *ast.Operand, operandBytes int) string {
	m := strings.ToLower(mnemonic)
	if op == nil || op.Form == ast.NoOperand {
		return m
	}

	width := hexDigits(operandBytes)
	val := func(i int) int64 {
		if i >= len(op.Exprs) {
			return 0
		}
		return int64(op.Exprs[i].Value())
	}
	hex := func(i int, w int) string { return fmt.Sprintf("$%0*x", w, val(i)) }

	switch op.Form {
	case ast.Accumulator:
		return m + " a"
	case ast.Immediate:
		return m + " #" + hex(0, width)
	case ast.Direct:
		return m + " " + hex(0, width)
	case ast.DirectY:
		return m + " " + hex(0, width) + ",y"
	case ast.IndexX:
		return m + " " + hex(0, width) + ",x"
	case ast.IndexY:
		return m + " " + hex(0, width) + ",y"
	case ast.IndexS:
		return m + " " + hex(0, width) + ",s"
	case ast.Indirect:
		return m + " (" + hex(0, width) + ")"
	case ast.IndirectX:
		return m + " (" + hex(0, width) + ",x)"
	case ast.IndirectY:
		return m + " (" + hex(0, width) + "),y"
	case ast.IndirectS:
		return m + " (" + hex(0, width) + ",s),y"
	case ast.IndirectLong:
		return m + " [" + hex(0, width) + "]"
	case ast.IndirectLongY:
		return m + " [" + hex(0, width) + "],y"
	case ast.TwoOperands:
		return fmt.Sprintf("%s %s,%s", m, hex(0, 2), hex(1, 2))
	case ast.BitZP:
		return fmt.Sprintf("%s %d,%s", m, val(0), hex(1, 2))
	case ast.BitOffsZP:
		return fmt.Sprintf("%s %d,%s,%s", m, val(0), hex(1, 2), hex(2, width))
	case ast.ExpressionList:
		parts := make([]string, len(op.Exprs))
		for i := range op.Exprs {
			parts[i] = hex(i, width)
		}
		return m + " " + strings.Join(parts, ",")
	}
	return m
}

func hexDigits(operandBytes int) int {
	switch operandBytes {
	case 1:
		return 2
	case 2:
		return 4
	case 3:
		return 6
	default:
		return 2
	}
}

// Symbol is one row of the label report.
type Symbol struct {
	Name  string
	Value value.Value
}

// LabelReport renders the boxed symbol table spec.md §6 shows, sorted by
// the caller-provided order (the assembler sorts by name before calling).
func LabelReport(symbols []Symbol) string {
	var sb strings.Builder
	rule := strings.Repeat(";", 77)
	sb.WriteString(rule + "\n")
	sb.WriteString(";;" + strings.Repeat(" ", 73) + ";;\n")
	sb.WriteString(";; SYMBOL                         VALUE                                    ;;\n")
	sb.WriteString(";;" + strings.Repeat(" ", 73) + ";;\n")
	sb.WriteString(rule + "\n")
	for _, s := range symbols {
		fmt.Fprintf(&sb, "%-32s= $%x ;(%d)\n", s.Name, uint64(int64(s.Value)), int64(s.Value))
	}
	return sb.String()
}
