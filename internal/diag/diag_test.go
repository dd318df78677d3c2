package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xyproto/asm6502/internal/token"
)

func TestReportRendersCaret(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)
	tok := token.New(token.IDENT, "FOO", "test.s", 3, 5)
	s.Report(Diagnostic{Severity: Error, Message: "undefined symbol FOO", Tok: tok, Line: "  lda FOO"})

	out := buf.String()
	if !strings.Contains(out, "test.s:3:5") {
		t.Fatalf("missing location in output: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret in output: %q", out)
	}
	if s.ErrorCount() != 1 {
		t.Fatalf("ErrorCount() = %d, want 1", s.ErrorCount())
	}
}

func TestTooManyErrorsCaps(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)
	tok := token.New(token.IDENT, "X", "test.s", 1, 1)
	for i := 0; i < MaxErrors+5; i++ {
		s.Report(Diagnostic{Severity: Error, Message: "bad", Tok: tok})
	}
	if s.ErrorCount() != MaxErrors {
		t.Fatalf("ErrorCount() = %d, want %d", s.ErrorCount(), MaxErrors)
	}
	if !strings.Contains(buf.String(), "too many errors") {
		t.Fatal("expected too-many-errors notice")
	}
}

func TestWarningsDoNotCountAsErrors(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, false)
	tok := token.New(token.IDENT, "X", "test.s", 1, 1)
	s.Report(Diagnostic{Severity: Warning, Message: "shadowed", Tok: tok})
	if s.HasErrors() {
		t.Fatal("warning should not count as an error")
	}
	if s.WarningCount() != 1 {
		t.Fatalf("WarningCount() = %d, want 1", s.WarningCount())
	}
}
