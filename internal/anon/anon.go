// Package anon resolves anonymous labels (runs of `+` or `-`) against
// the three parallel ordered lists spec.md §4.5 describes: every
// anonymous label in source order, the forward-only subsequence, and the
// backward-only subsequence.
package anon

import "github.com/xyproto/asm6502/internal/value"

// Entry is one anonymous label definition site.
type Entry struct {
	StatementIndex int
	PC             value.Value
}

// Table accumulates anonymous label definitions across a pass and
// answers "the Nth forward/backward label from here" queries.
type Table struct {
	all      []Entry
	forward  []Entry // labels spelled with '+'
	backward []Entry // labels spelled with '-'
}

// New returns an empty table.
func New() *Table { return &Table{} }

// Reset clears all recorded definitions, called at the start of each
// assembly pass (spec.md §4.8: anonymous labels are rebuilt every pass
// since PCs can shift).
func (t *Table) Reset() {
	t.all = t.all[:0]
	t.forward = t.forward[:0]
	t.backward = t.backward[:0]
}

// Define records a label definition. isForward distinguishes '+' from
// '-' since both share the "all" ordering but are queried separately.
func (t *Table) Define(stmtIdx int, pc value.Value, isForward bool) {
	e := Entry{StatementIndex: stmtIdx, PC: pc}
	t.all = append(t.all, e)
	if isForward {
		t.forward = append(t.forward, e)
	} else {
		t.backward = append(t.backward, e)
	}
}

// ResolveForward returns the PC of the count'th '+' label (1-based) that
// is defined after fromStmt, i.e. the target of a reference spelled with
// count '+' characters.
func (t *Table) ResolveForward(fromStmt, count int) (value.Value, bool) {
	n := 0
	for _, e := range t.forward {
		if e.StatementIndex <= fromStmt {
			continue
		}
		n++
		if n == count {
			return e.PC, true
		}
	}
	return value.Undefined, false
}

// ResolveBackward returns the PC of the count'th '-' label (1-based)
// counting backward from the nearest one at or before fromStmt.
func (t *Table) ResolveBackward(fromStmt, count int) (value.Value, bool) {
	n := 0
	for i := len(t.backward) - 1; i >= 0; i-- {
		e := t.backward[i]
		if e.StatementIndex > fromStmt {
			continue
		}
		n++
		if n == count {
			return e.PC, true
		}
	}
	return value.Undefined, false
}
