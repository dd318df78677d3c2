// Package eval ties the symbol table, anonymous-label table, and the
// assembler's current program counter together into the ast.Resolver an
// expression tree needs to fold and refold itself, and drives the
// multi-pass refolding spec.md §4.8 requires.
package eval

import (
	"github.com/xyproto/asm6502/internal/anon"
	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/symtab"
	"github.com/xyproto/asm6502/internal/value"
)

// Context is the live binding environment an expression resolves
// against: the symbol table, the anonymous-label table, and a PC cell
// the executor updates as it walks statements.
type Context struct {
	Symbols *symtab.Table
	Anon    *anon.Table
	pc      value.Value
}

var _ ast.Resolver = (*Context)(nil)

// NewContext builds a Context over existing symbol/anon tables.
func NewContext(symbols *symtab.Table, anonTab *anon.Table) *Context {
	return &Context{Symbols: symbols, Anon: anonTab}
}

// SetPC updates the program counter `*` resolves to.
func (c *Context) SetPC(pc value.Value) { c.pc = pc }

func (c *Context) CurrentPC() value.Value { return c.pc }

func (c *Context) Resolve(name string) (value.Value, bool) {
	return c.Symbols.Resolve(name)
}

func (c *Context) ResolveAnon(fromStmt, count int, forward bool) (value.Value, bool) {
	if forward {
		return c.Anon.ResolveForward(fromStmt, count)
	}
	return c.Anon.ResolveBackward(fromStmt, count)
}

// RefoldAll re-evaluates every expression in exprs against c, used after
// a pass discovers new symbol definitions so forward references that
// were Undefined can resolve (spec.md §4.8). It reports whether any
// expression is still Undefined, which signals the driver that another
// pass is required.
func RefoldAll(c *Context, exprs []ast.Expr) (stillUndefined bool) {
	for _, e := range exprs {
		if ast.Refold(e, c).IsUndefined() {
			stillUndefined = true
		}
	}
	return stillUndefined
}
