package macro

import (
	"testing"

	"github.com/xyproto/asm6502/internal/token"
)

func TestExpandSubstitutesNamedAndNumberedArgs(t *testing.T) {
	tab := New()
	def := &Def{
		Name:   "PUSHBOTH",
		Params: []string{"FIRST", "SECOND"},
		Body: []token.Token{
			token.New(token.MNEMONIC, "LDA", "m.s", 1, 1),
			token.New(token.MACROSUBSTITUTION, `\FIRST`, "m.s", 1, 5),
			token.New(token.MNEMONIC, "LDX", "m.s", 2, 1),
			token.New(token.NUMBEREDSUBSTITUTION, `\2`, "m.s", 2, 5),
		},
		DefLine: 1,
	}
	tab.Define(def)

	relex := func(s string) []token.Token {
		return []token.Token{token.New(token.HEXLITERAL, s, "<arg>", 1, 1)}
	}
	out, err := tab.Expand(def, []string{"$10", "$20"}, 10, relex)
	if err != nil {
		t.Fatal(err)
	}
	if out[1].Text != "$10" || out[1].Kind != token.HEXLITERAL {
		t.Fatalf("named substitution = %v %q", out[1].Kind, out[1].Text)
	}
	if out[3].Text != "$20" {
		t.Fatalf("numbered substitution = %q, want $20", out[3].Text)
	}
	for _, tok := range out {
		if tok.ExpandedFromMacro == nil || tok.ExpandedFromMacro.Name != "PUSHBOTH" {
			t.Fatalf("missing macro provenance on %v", tok)
		}
	}
}

func TestRecursiveExpansionRejected(t *testing.T) {
	tab := New()
	var def *Def
	def = &Def{
		Name: "LOOP",
		Body: []token.Token{
			token.New(token.MACRO_NAME, "LOOP", "m.s", 1, 1),
		},
		DefLine: 1,
	}
	tab.Define(def)

	def.expanding = true
	_, err := tab.Expand(def, nil, 1, func(s string) []token.Token { return nil })
	if err == nil {
		t.Fatal("expected recursive expansion error")
	}
}

func TestSplitArgsRespectsParens(t *testing.T) {
	got := SplitArgs("$10, (foo, bar), $20")
	want := []string{"$10", "(foo, bar)", "$20"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitArgsRespectsBraces(t *testing.T) {
	got := SplitArgs("$10, {foo, bar}, $20")
	want := []string{"$10", "{foo, bar}", "$20"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitArgsEmpty(t *testing.T) {
	got := SplitArgs("")
	if len(got) != 0 {
		t.Fatalf("SplitArgs(\"\") = %v, want empty", got)
	}
}
