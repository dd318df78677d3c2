package ast

import (
	"testing"

	"github.com/xyproto/asm6502/internal/value"
)

type fakeResolver struct {
	syms map[string]value.Value
	pc   value.Value
}

func (f *fakeResolver) Resolve(name string) (value.Value, bool) {
	v, ok := f.syms[name]
	return v, ok
}
func (f *fakeResolver) CurrentPC() value.Value { return f.pc }

func (f *fakeResolver) ResolveAnon(fromStmt, count int, forward bool) (value.Value, bool) {
	return value.Undefined, false
}

func TestConstantFoldingAtConstruction(t *testing.T) {
	r := &fakeResolver{syms: map[string]value.Value{}}
	lit2 := NewLiteral(2)
	lit3 := NewLiteral(3)
	sum := NewBinary(Add, lit2, lit3)
	if sum.Value() != 5 {
		t.Fatalf("2+3 = %d, want 5", sum.Value())
	}
	_ = r
}

func TestForwardReferenceUndefinedUntilRefold(t *testing.T) {
	r := &fakeResolver{syms: map[string]value.Value{}}
	ident := NewIdent("LABEL", r)
	if !ident.Value().IsUndefined() {
		t.Fatalf("expected LABEL to be undefined before definition")
	}
	expr := NewBinary(Add, ident, NewLiteral(1))
	if !expr.Value().IsUndefined() {
		t.Fatalf("expected LABEL+1 to be undefined")
	}

	r.syms["LABEL"] = 10
	got := Refold(expr, r)
	if got != 11 {
		t.Fatalf("after refold LABEL+1 = %d, want 11", got)
	}
}

func TestShortCircuitLogicalOperators(t *testing.T) {
	r := &fakeResolver{syms: map[string]value.Value{}}
	undef := NewIdent("UNDEF", r)

	and := NewBinary(LogAnd, NewLiteral(0), undef)
	if and.Value() != 0 {
		t.Fatalf("0 && undef = %v, want 0 (short-circuit)", and.Value())
	}

	or := NewBinary(LogOr, NewLiteral(1), undef)
	if or.Value() != 1 {
		t.Fatalf("1 || undef = %v, want 1 (short-circuit)", or.Value())
	}
}

func TestTernary(t *testing.T) {
	r := &fakeResolver{}
	tern := NewTernary(NewLiteral(1), NewLiteral(42), NewLiteral(7))
	if tern.Value() != 42 {
		t.Fatalf("true ? 42 : 7 = %d, want 42", tern.Value())
	}
	_ = r
}

func TestCurrentPCIdent(t *testing.T) {
	r := &fakeResolver{syms: map[string]value.Value{}, pc: 0xC000}
	star := NewIdent("*", r)
	if star.Value() != 0xC000 {
		t.Fatalf("* = %d, want 0xC000", star.Value())
	}
}

func TestFcnCallAlwaysUndefined(t *testing.T) {
	call := NewFcnCall("SIN", []Expr{NewLiteral(1)})
	if !call.Value().IsUndefined() {
		t.Fatalf("function-call syntax must evaluate to Undefined")
	}
}

func TestByteExtractionUnaryOps(t *testing.T) {
	v := NewLiteral(value.Value(0x123456))
	low := NewUnary(LowByteOf, v)
	mid := NewUnary(HighByteOf, v)
	bank := NewUnary(BankByteOf, v)
	if low.Value() != 0x56 || mid.Value() != 0x34 || bank.Value() != 0x12 {
		t.Fatalf("byte extraction got low=%x mid=%x bank=%x", low.Value(), mid.Value(), bank.Value())
	}
}
