// Package assemble drives the fixed-point multi-pass assembly spec.md
// §4.8 describes: it walks the statements the parser already built once,
// re-encoding and re-placing them pass after pass until every operand
// resolves or the pass budget runs out.
package assemble

import (
	"fmt"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/encoder"
	"github.com/xyproto/asm6502/internal/eval"
	"github.com/xyproto/asm6502/internal/pseudoop"
	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/value"
)

// MaxPasses bounds the fixed-point loop; exceeding it without converging
// is a hard error (spec.md §4.8).
const MaxPasses = 4

// Options configures one assembly run.
type Options struct {
	CPU    encoder.CPU
	Origin value.Value // starting program counter
}

// Line is one statement's placement and encoded bytes from the final
// pass, used to build the listing (spec.md §6).
type Line struct {
	Stmt   *ast.Statement
	PC     value.Value
	Bytes  []byte
	Listed bool // false while a .proff/.pron pair has suppressed this statement
}

// Result is a finished assembly.
type Result struct {
	Bytes    []byte
	Origin   value.Value
	Lines    []Line
	Passes   int
	Warnings []string
}

// Assembler holds the mutable state one pass walks and updates:
// register-width flags, the relocate-origin delta, and the direct-page
// base the 65816 direct-page-relative addressing mode needs.
type assembler struct {
	ctx     *eval.Context
	enc     *encoder.Encoder
	binCache *source.BinaryCache

	accum16, index16 bool
	dpBase           value.Value
	relocateDelta    value.Value // logicalPC - physicalPC while a .relocate is active
	relocating       bool
	listing          bool // .pron/.proff: whether statements are currently listed

	warnings []string

	out    []byte
	origin value.Value
	lines  []Line
	needsAnotherPass bool

	// prevPCs holds every statement's PC from the previous pass, indexed
	// by stmt.Index. Forward references resolve against whatever a label
	// was assigned on the PRIOR pass (symtab values persist across
	// passes rather than resetting), so an operand can encode cleanly
	// with a stale address and never trip the Undefined-operand signal.
	// Comparing each statement's PC pass over pass is what actually
	// detects non-convergence: spec.md §3's "a changed value forces
	// another pass" rule, applied to layout rather than just symbols.
	prevPCs []value.Value
	curPCs  []value.Value
}

// Run assembles stmts to completion, iterating passes until no operand
// is left Undefined or MaxPasses is exceeded.
func Run(stmts []*ast.Statement, ctx *eval.Context, binCache *source.BinaryCache, opts Options) (*Result, error) {
	a := &assembler{
		ctx:      ctx,
		enc:      encoder.New(opts.CPU),
		binCache: binCache,
		origin:   opts.Origin,
	}

	var lastErr error
	for pass := 1; pass <= MaxPasses; pass++ {
		ctx.Symbols.SetCurrentPass(pass) // 1-based: CURRENT_PASS == 1 during the first pass
		a.out = a.out[:0]
		a.lines = a.lines[:0]
		a.accum16, a.index16 = false, false
		a.dpBase = 0
		a.relocating = false
		a.relocateDelta = 0
		a.listing = true
		a.warnings = a.warnings[:0]
		a.needsAnotherPass = false
		lastErr = nil
		ctx.Anon.Reset()
		a.curPCs = make([]value.Value, len(stmts))

		physicalPC := opts.Origin
		for _, stmt := range stmts {
			logicalPC := physicalPC + a.relocateDelta
			ctx.SetPC(logicalPC)
			a.curPCs[stmt.Index] = logicalPC

			if stmt.Label != "" {
				if err := a.defineLabel(stmt, logicalPC); err != nil {
					lastErr = err
				}
			}

			bytes, consumed, err := a.execute(stmt, physicalPC, logicalPC)
			if err != nil {
				lastErr = fmt.Errorf("%s:%d: %v", stmt.File, stmt.Line, err)
				continue
			}
			if len(bytes) > 0 {
				a.emit(physicalPC, bytes)
				a.lines = append(a.lines, Line{Stmt: stmt, PC: logicalPC, Bytes: bytes, Listed: a.listing})
			} else if consumed > 0 {
				a.lines = append(a.lines, Line{Stmt: stmt, PC: logicalPC, Listed: a.listing})
			}
			physicalPC += value.Value(consumed)
		}

		// Pass 1 has nothing to compare against yet: it can only signal
		// "another pass needed" through an actual Undefined operand. From
		// pass 2 onward, a forward reference can resolve cleanly against
		// a stale value left over from the previous pass without ever
		// tripping that signal, so layout stability across the last two
		// passes is also required before declaring convergence.
		stable := !a.needsAnotherPass && (pass == 1 || samePCs(a.prevPCs, a.curPCs))
		if stable {
			if lastErr != nil {
				return nil, lastErr
			}
			return &Result{Bytes: a.out, Origin: opts.Origin, Lines: a.lines, Passes: pass, Warnings: a.warnings}, nil
		}
		a.prevPCs = a.curPCs
	}
	if lastErr != nil {
		return nil, fmt.Errorf("assembly did not converge after %d passes: %v", MaxPasses, lastErr)
	}
	return nil, fmt.Errorf("assembly did not converge after %d passes", MaxPasses)
}

func samePCs(prev, cur []value.Value) bool {
	if len(prev) != len(cur) {
		return false
	}
	for i := range cur {
		if prev[i] != cur[i] {
			return false
		}
	}
	return true
}

// emit writes bytes at physicalPC, translated to an offset from the
// assembly's origin so output never carries leading padding up to
// whatever address the program happens to be organized at.
func (a *assembler) emit(physicalPC value.Value, bytes []byte) {
	offset := int(physicalPC - a.origin)
	end := offset + len(bytes)
	if end > len(a.out) {
		grown := make([]byte, end)
		copy(grown, a.out)
		a.out = grown
	}
	copy(a.out[offset:end], bytes)
}

func (a *assembler) defineLabel(stmt *ast.Statement, pc value.Value) error {
	a.ctx.Symbols.SetScope(stmt.Label)
	switch stmt.Label[0] {
	case '+':
		a.ctx.Anon.Define(stmt.Index, pc, true)
		return nil
	case '-':
		a.ctx.Anon.Define(stmt.Index, pc, false)
		return nil
	}
	return a.ctx.Symbols.Define(stmt.Label, pc)
}

// execute dispatches one statement, returning the bytes it contributes
// (if any) and how many bytes of PC space it consumes (which can exceed
// len(bytes) for nothing, and is only ever estimated-high, never
// estimated-low, when an operand is still Undefined).
func (a *assembler) execute(stmt *ast.Statement, physicalPC, logicalPC value.Value) ([]byte, int, error) {
	switch {
	case stmt.AssignName != "":
		v := ast.Refold(stmt.AssignExpr, a.ctx)
		if v.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		return nil, 0, a.ctx.Symbols.Define(stmt.AssignName, v)
	case stmt.Mnemonic != "":
		return a.executeInstruction(stmt, logicalPC)
	case stmt.Directive != "":
		return a.executeDirective(stmt, logicalPC)
	}
	return nil, 0, nil
}

func (a *assembler) executeInstruction(stmt *ast.Statement, pc value.Value) ([]byte, int, error) {
	for _, e := range stmt.Operand.Exprs {
		ast.Refold(e, a.ctx)
	}
	flags := encoder.Flags{Accum16: a.accum16, Index16: a.index16}
	bytes, err := a.enc.Encode(stmt.Mnemonic, stmt.Operand, pc, a.dpBase, flags)
	if err == nil {
		return bytes, len(bytes), nil
	}
	if !encoder.IsUndefinedOperand(err) {
		return nil, 0, err
	}
	a.needsAnotherPass = true
	size, sizeErr := a.enc.MaxOperandSize(stmt.Mnemonic, stmt.Operand.Form, a.accum16 || a.index16)
	if sizeErr != nil {
		return nil, 0, sizeErr
	}
	return nil, size, nil
}

func (a *assembler) executeDirective(stmt *ast.Statement, pc value.Value) ([]byte, int, error) {
	var exprs []ast.Expr
	if stmt.Operand != nil {
		exprs = stmt.Operand.Exprs
	}
	for _, e := range exprs {
		ast.Refold(e, a.ctx)
	}

	switch stmt.Directive {
	case ".BYTE":
		return a.emitList(pseudoop.Width1, exprs)
	case ".WORD":
		return a.emitList(pseudoop.Width2, exprs)
	case ".LONG":
		return a.emitList(pseudoop.Width3, exprs)
	case ".DWORD":
		return a.emitList(pseudoop.Width4, exprs)
	case ".STRING":
		return a.emitString(pseudoop.PlainString, exprs)
	case ".CSTRING":
		return a.emitString(pseudoop.CString, exprs)
	case ".LSTRING":
		return a.emitString(pseudoop.LString, exprs)
	case ".NSTRING":
		return a.emitString(pseudoop.NString, exprs)
	case ".PSTRING":
		return a.emitString(pseudoop.PString, exprs)
	case ".FILL":
		var fill ast.Expr
		if len(exprs) > 1 {
			fill = exprs[1]
		}
		var count ast.Expr
		if len(exprs) > 0 {
			count = exprs[0]
		}
		b, err := pseudoop.Fill(count, fill)
		return checkUndefined(b, err, a)
	case ".ALIGN":
		boundary := exprs[0].Value()
		if boundary.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		var fillByte *byte
		if !stmt.AlignFillIsQuery && len(exprs) > 1 {
			v := exprs[1].Value()
			if v.IsUndefined() {
				a.needsAnotherPass = true
				return nil, 0, nil
			}
			b := byte(v)
			fillByte = &b
		} else if !stmt.AlignFillIsQuery {
			var zero byte
			fillByte = &zero
		}
		b := pseudoop.Align(pc, int(boundary), fillByte)
		return b, len(b), nil
	case ".BINARY":
		start, length := int64(0), int64(-1)
		if len(exprs) > 0 {
			v := exprs[0].Value()
			if v.IsUndefined() {
				a.needsAnotherPass = true
				return nil, 0, nil
			}
			start = int64(v)
		}
		if len(exprs) > 1 {
			v := exprs[1].Value()
			if v.IsUndefined() {
				a.needsAnotherPass = true
				return nil, 0, nil
			}
			length = int64(v)
		}
		b, err := pseudoop.Binary(a.binCache, stmt.BinaryPath, start, length)
		if err != nil {
			return nil, 0, err
		}
		return b, len(b), nil
	case ".RELOCATE":
		target := exprs[0].Value()
		if target.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		a.relocating = true
		a.relocateDelta = target - pc + a.relocateDelta
		return nil, 0, nil
	case ".ENDRELOCATE":
		a.relocating = false
		a.relocateDelta = 0
		return nil, 0, nil
	case ".DP":
		// .dp sets the direct-page register; 65816 only (spec.md §4.5,
		// §7's "invalid pseudo-op for CPU"), per set_page in
		// _examples/original_source/src/pseudo_op.c:290-312, which errors
		// outright rather than warning, since direct-page addressing
		// doesn't exist on the other CPU variants at all.
		if a.enc.CPU != encoder.W65816 {
			return nil, 0, fmt.Errorf(".dp is a 65816-only pseudo-op, invalid for %s", a.enc.CPU)
		}
		v := exprs[0].Value()
		if v.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		a.dpBase = v
		return nil, 0, nil
	case ".M8":
		return nil, 0, a.setRegisterSize(stmt, func() { a.accum16 = false })
	case ".M16":
		return nil, 0, a.setRegisterSize(stmt, func() { a.accum16 = true })
	case ".X8":
		return nil, 0, a.setRegisterSize(stmt, func() { a.index16 = false })
	case ".X16":
		return nil, 0, a.setRegisterSize(stmt, func() { a.index16 = true })
	case ".MX8":
		return nil, 0, a.setRegisterSize(stmt, func() { a.accum16, a.index16 = false, false })
	case ".MX16":
		return nil, 0, a.setRegisterSize(stmt, func() { a.accum16, a.index16 = true, true })
	case ".PRON":
		a.listing = true
		return nil, 0, nil
	case ".PROFF":
		a.listing = false
		return nil, 0, nil
	case ".END":
		// Marks end of source; the parser already stops reading statements
		// at this point, so there is nothing left for the executor to do.
		return nil, 0, nil
	case ".STRINGIFY":
		return a.emitStringify(exprs)
	}
	return nil, 0, fmt.Errorf("unhandled directive %s", stmt.Directive)
}

func (a *assembler) emitList(width pseudoop.EmitWidth, exprs []ast.Expr) ([]byte, int, error) {
	b, err := pseudoop.EmitList(width, exprs)
	return checkUndefinedSized(b, len(exprs)*int(width), err, a)
}

func (a *assembler) emitString(form pseudoop.StringForm, exprs []ast.Expr) ([]byte, int, error) {
	raw := make([]byte, 0, len(exprs))
	for _, e := range exprs {
		v := e.Value()
		if v.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		raw = append(raw, byte(v))
	}
	b, err := pseudoop.EncodeString(form, raw)
	if err != nil {
		return nil, 0, err
	}
	return b, len(b), nil
}

// setRegisterSize applies a `.m8`/`.m16`/`.x8`/`.x16`/`.mx8`/`.mx16`
// register-width change, gated on the 65816 the same way
// set_register_sizes is in
// _examples/original_source/src/pseudo_op.c:314-345: on any other CPU
// these directives only warn and leave register-width state untouched,
// since plain NMOS/65C02/NMOS-illegal encoding never consults
// accum16/index16 in the first place.
func (a *assembler) setRegisterSize(stmt *ast.Statement, apply func()) error {
	if a.enc.CPU != encoder.W65816 {
		a.warnings = append(a.warnings, fmt.Sprintf("%s:%d: %s is a 65816-only pseudo-op, ignored for %s",
			stmt.File, stmt.Line, stmt.Directive, a.enc.CPU))
		return nil
	}
	apply()
	return nil
}

// emitStringify implements .stringify: each expression's decimal ASCII
// digits are emitted as bytes, back to back (spec.md §4.5).
func (a *assembler) emitStringify(exprs []ast.Expr) ([]byte, int, error) {
	var out []byte
	for _, e := range exprs {
		v := e.Value()
		if v.IsUndefined() {
			a.needsAnotherPass = true
			return nil, 0, nil
		}
		out = append(out, []byte(fmt.Sprintf("%d", int64(v)))...)
	}
	return out, len(out), nil
}

func checkUndefined(b []byte, err error, a *assembler) ([]byte, int, error) {
	if err == nil {
		return b, len(b), nil
	}
	if pseudoop.IsUndefinedOperand(err) {
		a.needsAnotherPass = true
		return nil, 0, nil
	}
	return nil, 0, err
}

func checkUndefinedSized(b []byte, size int, err error, a *assembler) ([]byte, int, error) {
	if err == nil {
		return b, len(b), nil
	}
	if pseudoop.IsUndefinedOperand(err) {
		a.needsAnotherPass = true
		return nil, size, nil
	}
	return nil, 0, err
}
