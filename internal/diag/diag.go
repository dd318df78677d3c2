// Package diag renders assembler diagnostics the way spec.md §7
// describes: a severity-tagged message, the offending source line with a
// caret under the column, and a provenance preamble when the token came
// from a macro expansion or an `.include`.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/asm6502/internal/token"
)

// Severity distinguishes a recoverable error from a fatal one that
// aborts the run immediately (spec.md §7).
type Severity int

const (
	Error Severity = iota
	Warning
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal error"
	default:
		return "error"
	}
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Tok      token.Token
	Line     string // the full source line text, for caret rendering
}

// MaxErrors caps the error count before the run aborts with a final
// "too many errors" diagnostic (spec.md §7).
const MaxErrors = 1000

// Sink collects diagnostics for one assembly run and renders them.
type Sink struct {
	out      io.Writer
	color    bool
	errors   []Diagnostic
	warnings []Diagnostic
	capped   bool
}

// NewSink creates a sink writing to out. color enables ANSI coloring of
// the severity tag and caret.
func NewSink(out io.Writer, color bool) *Sink {
	return &Sink{out: out, color: color}
}

// Report records and immediately prints one diagnostic. Once MaxErrors
// error-severity diagnostics have been reported, further errors are
// discarded and a single "too many errors" notice is emitted instead.
func (s *Sink) Report(d Diagnostic) {
	switch d.Severity {
	case Warning:
		s.warnings = append(s.warnings, d)
	default:
		if len(s.errors) >= MaxErrors {
			if !s.capped {
				s.capped = true
				fmt.Fprintln(s.out, "too many errors, aborting")
			}
			return
		}
		s.errors = append(s.errors, d)
	}
	s.print(d)
}

func (s *Sink) print(d Diagnostic) {
	tag := d.Severity.String()
	if s.color {
		switch d.Severity {
		case Warning:
			tag = "\x1b[35m" + tag + "\x1b[0m"
		default:
			tag = "\x1b[31m" + tag + "\x1b[0m"
		}
	}
	loc := fmt.Sprintf("%s:%d:%d", d.Tok.File, d.Tok.Line, d.Tok.Col)
	fmt.Fprintf(s.out, "%s: %s: %s\n", loc, tag, d.Message)

	for _, preamble := range provenance(d.Tok) {
		fmt.Fprintf(s.out, "  %s\n", preamble)
	}

	if d.Line != "" {
		fmt.Fprintf(s.out, "  %s\n", d.Line)
		caret := strings.Repeat(" ", max(0, d.Tok.Col-1)) + "^"
		if s.color {
			caret = "\x1b[32m" + caret + "\x1b[0m"
		}
		fmt.Fprintf(s.out, "  %s\n", caret)
	}
}

// provenance renders the "expanded from macro FOO" / "included from
// bar.s:N" chain for a token, innermost first.
func provenance(t token.Token) []string {
	var lines []string
	if t.ExpandedFromMacro != nil {
		lines = append(lines, fmt.Sprintf("in expansion of macro .%s, defined at line %d",
			t.ExpandedFromMacro.Name, t.ExpandedFromMacro.Line))
	}
	if t.IncludedFrom != nil {
		lines = append(lines, fmt.Sprintf("included from %s:%d", t.IncludedFrom.File, t.IncludedFrom.Line))
	}
	return lines
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ErrorCount returns the number of error/fatal diagnostics reported so far.
func (s *Sink) ErrorCount() int { return len(s.errors) }

// WarningCount returns the number of warnings reported so far.
func (s *Sink) WarningCount() int { return len(s.warnings) }

// HasErrors reports whether any error/fatal diagnostic was reported.
func (s *Sink) HasErrors() bool { return len(s.errors) > 0 }
