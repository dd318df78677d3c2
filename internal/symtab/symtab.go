// Package symtab is the assembler's symbol table: a case-configurable
// name-to-value map built on strtab, seeded with the built-in read-only
// symbols spec.md §4.4 defines, plus the underscore-prefixed local-label
// scoping rule.
package symtab

import (
	"math"
	"strings"

	"github.com/xyproto/asm6502/internal/strtab"
	"github.com/xyproto/asm6502/internal/value"
)

// Table is the symbol table for one assembly run.
type Table struct {
	user    *strtab.Table[value.Value]
	builtin *strtab.Table[value.Value]
	scope   string // current non-local label, for underscore-prefixed locals
}

// New builds an empty symbol table seeded with built-ins.
func New(caseSensitive bool) *Table {
	t := &Table{
		user:    strtab.New[value.Value](256, caseSensitive),
		builtin: strtab.New[value.Value](32, caseSensitive),
	}
	t.builtin.Set("TRUE", 1)
	t.builtin.Set("FALSE", 0)
	t.builtin.Set("MATH_E", value.Value(math.Float64bits(math.E)))
	t.builtin.Set("MATH_PI", value.Value(math.Float64bits(math.Pi)))
	t.builtin.Set("MATH_TAU", value.Value(math.Float64bits(2*math.Pi)))
	t.builtin.Set("INT8_MIN", value.Int8Min)
	t.builtin.Set("INT8_MAX", value.Int8Max)
	t.builtin.Set("UINT8_MAX", value.Uint8Max)
	t.builtin.Set("INT16_MIN", value.Int16Min)
	t.builtin.Set("INT16_MAX", value.Int16Max)
	t.builtin.Set("UINT16_MAX", value.Uint16Max)
	t.builtin.Set("INT24_MIN", value.Int24Min)
	t.builtin.Set("INT24_MAX", value.Int24Max)
	t.builtin.Set("UINT24_MAX", value.Uint24Max)
	t.builtin.Set("INT32_MIN", value.Int32Min)
	t.builtin.Set("INT32_MAX", value.Int32Max)
	t.builtin.Set("UINT32_MAX", value.Uint32Max)
	t.builtin.Set("CURRENT_PASS", 0)
	return t
}

// SetCurrentPass updates the CURRENT_PASS built-in. The driver calls this
// with a 1-based pass number before running each pass, so source code
// sees CURRENT_PASS == 1 during the first pass, matching the original
// tiny6502 C implementation's user-visible numbering (SPEC_FULL.md §13).
func (t *Table) SetCurrentPass(n int) {
	t.builtin.Set("CURRENT_PASS", value.Value(n))
}

// qualify applies the underscore-local scoping rule: a name starting
// with '_' is rewritten to "<scope>_<name>" so that identical local
// labels under different enclosing labels don't collide.
func (t *Table) qualify(name string) string {
	if strings.HasPrefix(name, "_") && t.scope != "" {
		return t.scope + name
	}
	return name
}

// SetScope records the most recent non-local label, establishing the
// scope subsequent underscore-prefixed locals qualify against.
func (t *Table) SetScope(label string) {
	if !strings.HasPrefix(label, "_") {
		t.scope = label
	}
}

// Define stores name = v. Built-in symbols cannot be redefined.
func (t *Table) Define(name string, v value.Value) error {
	qn := t.qualify(name)
	if _, ok := t.builtin.Get(qn); ok {
		return &RedefinedBuiltinError{Name: name}
	}
	t.user.Set(qn, v)
	return nil
}

// Resolve looks up name, checking user symbols before built-ins so a
// built-in name can still be shadowed by... actually built-ins are
// immutable, but user-defined names are tried first since they are the
// common case.
func (t *Table) Resolve(name string) (value.Value, bool) {
	qn := t.qualify(name)
	if v, ok := t.user.Get(qn); ok {
		return v, true
	}
	return t.builtin.Get(name)
}

// Len returns the number of user-defined symbols (excluding built-ins),
// for the label report (spec.md §6).
func (t *Table) Len() int { return t.user.Len() }

// Each calls fn for every user-defined symbol.
func (t *Table) Each(fn func(name string, v value.Value)) {
	t.user.Each(fn)
}

// RedefinedBuiltinError reports an attempt to assign a reserved built-in
// symbol name.
type RedefinedBuiltinError struct {
	Name string
}

func (e *RedefinedBuiltinError) Error() string {
	return "cannot redefine built-in symbol " + e.Name
}
