package encoder

import (
	"fmt"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/value"
)

// Encoder turns one instruction statement into bytes for a fixed CPU
// variant, resolving the operand's syntactic Form plus its resolved
// value size down to a concrete Mode (spec.md §5).
type Encoder struct {
	CPU   CPU
	table *Table
}

// New builds an Encoder for cpu.
func New(cpu CPU) *Encoder {
	return &Encoder{CPU: cpu, table: Build(cpu)}
}

// Supports reports whether mnemonic exists on this encoder's CPU variant.
func (e *Encoder) Supports(mnemonic string) bool { return e.table.Supports(mnemonic) }

// Flags carries the 65816 register-width state that affects Immediate
// operand size; ignored on the other three variants.
type Flags struct {
	Accum16 bool // m=0 (16-bit A)
	Index16 bool // x=0 (16-bit X/Y)
}

// Encode assembles one instruction. pc is the address of the
// instruction's first byte, needed for relative-branch displacement
// calculation. dpBase is the 65816 direct-page register's current
// value, needed to decide whether a Direct-form operand still fits in
// zero page (direct-page-relative addressing truncates to the low byte
// rather than the absolute address, spec.md §5.6).
func (e *Encoder) Encode(mnemonic string, op *ast.Operand, pc value.Value, dpBase value.Value, flags Flags) ([]byte, error) {
	if !e.table.Supports(mnemonic) {
		return nil, fmt.Errorf("%s is not available on the %s instruction set", mnemonic, e.CPU)
	}

	switch op.Form {
	case ast.NoOperand:
		if _, ok := e.table.Lookup(mnemonic, Implied); ok {
			return e.encodeFixed(mnemonic, Implied)
		}
		return e.encodeFixed(mnemonic, Sig)
	case ast.Accumulator:
		return e.encodeFixed(mnemonic, Accum)
	case ast.Immediate:
		return e.encodeImmediate(mnemonic, op, flags)
	case ast.Direct:
		return e.encodeDirect(mnemonic, op, pc, dpBase)
	case ast.DirectY:
		return e.encodeSized(mnemonic, op, ZPY, AbsY)
	case ast.IndexX:
		return e.encodeSized(mnemonic, op, ZPX, AbsX)
	case ast.IndexY:
		return e.encodeSized(mnemonic, op, ZPY, AbsY)
	case ast.IndexS:
		return e.encodeFixedOperand(mnemonic, StackRel, op.Exprs[0])
	case ast.Indirect:
		return e.encodeSized(mnemonic, op, ZPInd, AbsInd)
	case ast.IndirectX:
		return e.encodeSized(mnemonic, op, IndX, AbsIndX)
	case ast.IndirectY:
		return e.encodeFixedOperand(mnemonic, IndY, op.Exprs[0])
	case ast.IndirectS:
		return e.encodeFixedOperand(mnemonic, StackRelIndY, op.Exprs[0])
	case ast.IndirectLong:
		return e.encodeFixedOperand(mnemonic, IndLong, op.Exprs[0])
	case ast.IndirectLongY:
		return e.encodeFixedOperand(mnemonic, IndLongY, op.Exprs[0])
	case ast.TwoOperands:
		return e.encodeBlockMove(mnemonic, op)
	case ast.BitZP:
		return e.encodeBitZP(mnemonic, op)
	case ast.BitOffsZP:
		return e.encodeBitOffsZP(mnemonic, op, pc)
	}
	return nil, fmt.Errorf("%s: unsupported operand form", mnemonic)
}

func (e *Encoder) encodeFixed(mnemonic string, mode Mode) ([]byte, error) {
	op, ok := e.table.Lookup(mnemonic, mode)
	if !ok {
		return nil, fmt.Errorf("%s does not support %s addressing", mnemonic, modeName(mode))
	}
	if mnemonic == "BRK" || mode == Sig {
		return []byte{op, 0x00}, nil
	}
	return []byte{op}, nil
}

func (e *Encoder) encodeFixedOperand(mnemonic string, mode Mode, ex ast.Expr) ([]byte, error) {
	op, ok := e.table.Lookup(mnemonic, mode)
	if !ok {
		return nil, fmt.Errorf("%s does not support %s addressing", mnemonic, modeName(mode))
	}
	v := ex.Value()
	if v.IsUndefined() {
		return nil, errUndefined
	}
	switch mode {
	case ZPInd, IndX, IndY, StackRel, StackRelIndY, IndLong, IndLongY:
		return []byte{op, byte(value.LowByte(v))}, nil
	}
	return []byte{op, byte(value.LowByte(v)), byte(value.MiddleByte(v))}, nil
}

var errUndefined = fmt.Errorf("operand value is not yet defined")

// IsUndefinedOperand reports whether err is the sentinel Encode returns
// when an operand could not be folded on this pass (another pass needed).
func IsUndefinedOperand(err error) bool { return err == errUndefined }

func (e *Encoder) encodeImmediate(mnemonic string, op *ast.Operand, flags Flags) ([]byte, error) {
	if code, ok := e.table.Lookup(mnemonic, Sig); ok {
		v := op.Exprs[0].Value()
		if v.IsUndefined() {
			return nil, errUndefined
		}
		return []byte{code, byte(value.LowByte(v))}, nil
	}
	code, ok := e.table.Lookup(mnemonic, Imm)
	if !ok {
		return nil, fmt.Errorf("%s does not support immediate addressing", mnemonic)
	}
	v := op.Exprs[0].Value()
	if v.IsUndefined() {
		return nil, errUndefined
	}
	wide := flags.Accum16
	if isIndexMnemonic(mnemonic) {
		wide = flags.Index16
	}
	if op.Width == ast.Width16 {
		wide = true
	}
	if op.Width == ast.Width8 {
		wide = false
	}
	if wide {
		return []byte{code, byte(value.LowByte(v)), byte(value.MiddleByte(v))}, nil
	}
	return []byte{code, byte(value.LowByte(v))}, nil
}

func isIndexMnemonic(m string) bool {
	switch m {
	case "LDX", "LDY", "CPX", "CPY":
		return true
	}
	return false
}

// encodeDirect picks ZP vs Abs vs AbsLong for a plain expr operand,
// promoting a branch mnemonic to Rel automatically, and otherwise
// inferring size from the resolved value the same way spec.md §4.3's
// size_of law does, with a direct-page-relative override for the 65816.
func (e *Encoder) encodeDirect(mnemonic string, op *ast.Operand, pc, dpBase value.Value) ([]byte, error) {
	if relOp, ok := e.table.Lookup(mnemonic, Rel); ok {
		return encodeRelative(relOp, op.Exprs[0], pc)
	}
	if relOp, ok := e.table.Lookup(mnemonic, RelLong); ok {
		return encodeRelativeLong(relOp, op.Exprs[0], pc)
	}

	v := op.Exprs[0].Value()
	if v.IsUndefined() {
		return nil, errUndefined
	}

	forceWidth := op.Width
	if _, hasZP := e.table.Lookup(mnemonic, ZP); hasZP && fitsDirectPage(v, dpBase) && forceWidth != ast.Width16 && forceWidth != ast.Width24 {
		code, _ := e.table.Lookup(mnemonic, ZP)
		return []byte{code, byte(value.LowByte(value.Value(int64(v) - int64(dpBase))))}, nil
	}
	if code, ok := e.table.Lookup(mnemonic, Abs); ok && (forceWidth != ast.Width24) {
		return []byte{code, byte(value.LowByte(v)), byte(value.MiddleByte(v))}, nil
	}
	if code, ok := e.table.Lookup(mnemonic, AbsLong); ok {
		return []byte{code, byte(value.LowByte(v)), byte(value.MiddleByte(v)), byte(value.BankByte(v))}, nil
	}
	return nil, fmt.Errorf("%s: no addressing mode fits this operand", mnemonic)
}

func fitsDirectPage(v, dpBase value.Value) bool {
	rel := value.Value(int64(v) - int64(dpBase))
	return value.FitsWidth(rel, 1)
}

func (e *Encoder) encodeSized(mnemonic string, op *ast.Operand, small, large Mode) ([]byte, error) {
	v := op.Exprs[0].Value()
	if v.IsUndefined() {
		return nil, errUndefined
	}
	if code, ok := e.table.Lookup(mnemonic, small); ok && fitsZeroPage(v) && op.Width != ast.Width16 {
		if modeOperandBytes(small) == 1 {
			return []byte{code, byte(value.LowByte(v))}, nil
		}
	}
	if code, ok := e.table.Lookup(mnemonic, large); ok {
		return []byte{code, byte(value.LowByte(v)), byte(value.MiddleByte(v))}, nil
	}
	if code, ok := e.table.Lookup(mnemonic, small); ok {
		return []byte{code, byte(value.LowByte(v))}, nil
	}
	return nil, fmt.Errorf("%s: no addressing mode fits this operand", mnemonic)
}

func modeOperandBytes(m Mode) int {
	switch m {
	case ZP, ZPX, ZPY, ZPInd, IndX, IndY:
		return 1
	}
	return 2
}

func fitsZeroPage(v value.Value) bool { return value.FitsWidth(v, 1) }

func encodeRelative(opcode byte, ex ast.Expr, pc value.Value) ([]byte, error) {
	target := ex.Value()
	if target.IsUndefined() {
		return nil, errUndefined
	}
	disp := int64(target) - (int64(pc) + 2)
	if disp < -128 || disp > 127 {
		return nil, fmt.Errorf("branch target out of range (%d bytes)", disp)
	}
	return []byte{opcode, byte(int8(disp))}, nil
}

func encodeRelativeLong(opcode byte, ex ast.Expr, pc value.Value) ([]byte, error) {
	target := ex.Value()
	if target.IsUndefined() {
		return nil, errUndefined
	}
	disp := int64(target) - (int64(pc) + 3)
	if disp < -32768 || disp > 32767 {
		return nil, fmt.Errorf("long branch target out of range (%d bytes)", disp)
	}
	v := value.Value(disp)
	return []byte{opcode, byte(value.LowByte(v)), byte(value.MiddleByte(v))}, nil
}

func (e *Encoder) encodeBlockMove(mnemonic string, op *ast.Operand) ([]byte, error) {
	code, ok := e.table.Lookup(mnemonic, BlockMove)
	if !ok {
		return nil, fmt.Errorf("%s does not support bank-move addressing", mnemonic)
	}
	src, dst := op.Exprs[0].Value(), op.Exprs[1].Value()
	if src.IsUndefined() || dst.IsUndefined() {
		return nil, errUndefined
	}
	return []byte{code, byte(src & 0xFF), byte(dst & 0xFF)}, nil
}

func (e *Encoder) encodeBitZP(mnemonic string, op *ast.Operand) ([]byte, error) {
	bit := op.Exprs[0].Value()
	zp := op.Exprs[1].Value()
	if bit.IsUndefined() || zp.IsUndefined() {
		return nil, errUndefined
	}
	if bit < 0 || bit > 7 {
		return nil, fmt.Errorf("%s: bit number must be 0-7", mnemonic)
	}
	var base byte
	switch mnemonic {
	case "RMB":
		base = rmbBase
	case "SMB":
		base = smbBase
	default:
		return nil, fmt.Errorf("%s: not a bit-zeropage instruction", mnemonic)
	}
	code := base + byte(bit)*0x10
	return []byte{code, byte(value.LowByte(zp))}, nil
}

func (e *Encoder) encodeBitOffsZP(mnemonic string, op *ast.Operand, pc value.Value) ([]byte, error) {
	bit := op.Exprs[0].Value()
	zp := op.Exprs[1].Value()
	rel := op.Exprs[2].Value()
	if bit.IsUndefined() || zp.IsUndefined() || rel.IsUndefined() {
		return nil, errUndefined
	}
	if bit < 0 || bit > 7 {
		return nil, fmt.Errorf("%s: bit number must be 0-7", mnemonic)
	}
	var base byte
	switch mnemonic {
	case "BBR":
		base = bbrBase
	case "BBS":
		base = bbsBase
	default:
		return nil, fmt.Errorf("%s: not a bit-branch instruction", mnemonic)
	}
	code := base + byte(bit)*0x10
	disp := int64(rel) - (int64(pc) + 3)
	if disp < -128 || disp > 127 {
		return nil, fmt.Errorf("branch target out of range (%d bytes)", disp)
	}
	return []byte{code, byte(value.LowByte(zp)), byte(int8(disp))}, nil
}

// candidateModes lists the addressing modes a given operand syntax
// could possibly narrow to, used by MaxOperandSize to bound an
// instruction's length before its operand value is known.
func candidateModes(form ast.OperandForm) []Mode {
	switch form {
	case ast.NoOperand:
		return []Mode{Implied, Sig}
	case ast.Accumulator:
		return []Mode{Accum}
	case ast.Immediate:
		return []Mode{Imm, Sig}
	case ast.Direct:
		return []Mode{Rel, RelLong, ZP, Abs, AbsLong}
	case ast.DirectY, ast.IndexY:
		return []Mode{ZPY, AbsY}
	case ast.IndexX:
		return []Mode{ZPX, AbsX}
	case ast.IndexS:
		return []Mode{StackRel}
	case ast.Indirect:
		return []Mode{ZPInd, AbsInd}
	case ast.IndirectX:
		return []Mode{IndX, AbsIndX}
	case ast.IndirectY:
		return []Mode{IndY}
	case ast.IndirectS:
		return []Mode{StackRelIndY}
	case ast.IndirectLong:
		return []Mode{IndLong}
	case ast.IndirectLongY:
		return []Mode{IndLongY}
	case ast.TwoOperands:
		return []Mode{BlockMove}
	case ast.BitZP:
		return []Mode{ZPBit}
	case ast.BitOffsZP:
		return []Mode{ZPBitRel}
	}
	return nil
}

// MaxOperandSize bounds an instruction's encoded length without needing
// its operand's value, so the pass driver can advance the program
// counter on a pass where a forward reference is still Undefined. It
// always picks the largest size a matching mode could produce, which
// keeps later passes (where the real size may turn out smaller) safe:
// PC estimates only ever shrink pass over pass, never grow.
func (e *Encoder) MaxOperandSize(mnemonic string, form ast.OperandForm, wideImm bool) (int, error) {
	best := -1
	for _, m := range candidateModes(form) {
		if _, ok := e.table.Lookup(mnemonic, m); ok {
			if sz := m.Size(wideImm); sz > best {
				best = sz
			}
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%s: no addressing mode matches this operand shape", mnemonic)
	}
	return best, nil
}

func modeName(m Mode) string {
	names := map[Mode]string{
		Implied: "implied", Accum: "accumulator", Imm: "immediate",
		ZP: "zero-page", ZPX: "zero-page,x", ZPY: "zero-page,y",
		ZPInd: "(zero-page)", Abs: "absolute", AbsX: "absolute,x", AbsY: "absolute,y",
		AbsInd: "(absolute)", AbsIndX: "(absolute,x)", IndX: "(zp,x)", IndY: "(zp),y",
		Rel: "relative", RelLong: "relative-long", AbsLong: "absolute-long",
		AbsLongX: "absolute-long,x", IndLong: "[zp]", IndLongY: "[zp],y",
		StackRel: "sr,s", StackRelIndY: "(sr,s),y", BlockMove: "src,dest",
		ZPBit: "bit,zp", ZPBitRel: "bit,zp,rel", Sig: "signature byte",
	}
	if s, ok := names[m]; ok {
		return s
	}
	return "unknown"
}
