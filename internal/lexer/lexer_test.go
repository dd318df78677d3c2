package lexer

import (
	"testing"

	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/token"
)

func tokens(t *testing.T, src string, caseSensitive bool) []token.Token {
	t.Helper()
	f := source.FromBytes("t.s", []byte(src))
	l := New(f, NewReservedWords(caseSensitive))
	var got []token.Token
	for {
		tok := l.NextToken()
		got = append(got, tok)
		if tok.Kind == token.EOF {
			return got
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	k := make([]token.Kind, len(toks))
	for i, tok := range toks {
		k[i] = tok.Kind
	}
	return k
}

func TestMnemonicAndRegister(t *testing.T) {
	toks := tokens(t, "lda #$10,x", false)
	if toks[0].Kind != token.MNEMONIC || toks[0].Text != "LDA" {
		t.Fatalf("got %v %q, want MNEMONIC LDA", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.HASH {
		t.Fatalf("got %v, want HASH", toks[1].Kind)
	}
	if toks[2].Kind != token.HEXLITERAL || toks[2].Text != "$10" {
		t.Fatalf("got %v %q, want HEXLITERAL $10", toks[2].Kind, toks[2].Text)
	}
	if toks[4].Kind != token.REGISTER || toks[4].Text != "X" {
		t.Fatalf("got %v %q, want REGISTER X", toks[4].Kind, toks[4].Text)
	}
}

func TestPercentDisambiguation(t *testing.T) {
	toks := tokens(t, "lda %0101", false)
	if toks[1].Kind != token.BINLITERAL {
		t.Fatalf("got %v, want BINLITERAL", toks[1].Kind)
	}
	toks = tokens(t, "10 % 2", false)
	if toks[1].Kind != token.PERCENT {
		t.Fatalf("got %v, want PERCENT", toks[1].Kind)
	}
}

// TestPercentAfterExpressionIsModuloEvenBeforeZeroOrOne guards the
// token-context half of the disambiguation: `%` directly after an
// identifier must be modulo even when `0`/`1` follows, since a binary
// literal can never directly follow an expression-terminating token.
func TestPercentAfterExpressionIsModuloEvenBeforeZeroOrOne(t *testing.T) {
	toks := tokens(t, "n%10", false)
	if toks[0].Kind != token.IDENT || toks[0].Text != "n" {
		t.Fatalf("tok0 = %v %q, want IDENT n", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.PERCENT {
		t.Fatalf("tok1 = %v, want PERCENT", toks[1].Kind)
	}
	if toks[2].Kind != token.DECLITERAL || toks[2].Text != "10" {
		t.Fatalf("tok2 = %v %q, want DECLITERAL 10", toks[2].Kind, toks[2].Text)
	}
}

func TestAnonymousLabelCoalescing(t *testing.T) {
	toks := tokens(t, "+++ jmp --", false)
	if toks[0].Kind != token.MULTIPLUS || toks[0].Text != "+++" {
		t.Fatalf("got %v %q, want MULTIPLUS +++", toks[0].Kind, toks[0].Text)
	}
	if toks[2].Kind != token.MULTIHYPHEN || toks[2].Text != "--" {
		t.Fatalf("got %v %q, want MULTIHYPHEN --", toks[2].Kind, toks[2].Text)
	}
}

func TestAngleBracketLongestMatch(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"<", token.LANGLE},
		{">", token.RANGLE},
		{"<=", token.LTE},
		{">=", token.GTE},
		{"<<", token.LSHIFT},
		{">>", token.RSHIFT},
		{">>>", token.ARSHIFT},
		{"<=>", token.SPACESHIP},
	}
	for _, c := range cases {
		toks := tokens(t, c.src, false)
		if toks[0].Kind != c.kind {
			t.Errorf("%q: got %v, want %v", c.src, toks[0].Kind, c.kind)
		}
	}
}

func TestDirectiveWord(t *testing.T) {
	toks := tokens(t, ".byte $01, $02", false)
	if toks[0].Kind != token.DIRECTIVE || toks[0].Text != ".BYTE" {
		t.Fatalf("got %v %q, want DIRECTIVE .BYTE", toks[0].Kind, toks[0].Text)
	}
}

func TestStringAndCharEscapes(t *testing.T) {
	toks := tokens(t, `"a\nb" '\x41'`, false)
	if toks[0].Kind != token.STRINGLITERAL || toks[0].Text != "a\nb" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.CHARLITERAL || toks[1].Text != "A" {
		t.Fatalf("got %v %q, want CHARLITERAL A", toks[1].Kind, toks[1].Text)
	}
}

func TestBackslashSubstitutions(t *testing.T) {
	toks := tokens(t, `\name \1`, false)
	if toks[0].Kind != token.MACROSUBSTITUTION || toks[0].Text != `\name` {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.NUMBEREDSUBSTITUTION || toks[1].Text != `\1` {
		t.Fatalf("got %v %q", toks[1].Kind, toks[1].Text)
	}
}

func TestLineCommentsAndBlockComments(t *testing.T) {
	toks := tokens(t, "lda #1 ; comment\n/* block\nspanning */ sta $00", false)
	k := kinds(toks)
	want := []token.Kind{
		token.MNEMONIC, token.HASH, token.DECLITERAL, token.NEWLINE,
		token.MNEMONIC, token.HEXLITERAL, token.NEWLINE, token.EOF,
	}
	if len(k) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(k), k, len(want), want)
	}
	for i := range want {
		if k[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, k[i], want[i])
		}
	}
}

func TestIncludeSplicesAndResumes(t *testing.T) {
	root := source.FromBytes("root.s", []byte("lda #1\n.include \"inc.s\"\nsta $00\n"))
	inc := source.FromBytes("inc.s", []byte("nop\n"))
	l := New(root, NewReservedWords(false))

	// Consume up through the .include directive's own tokens manually,
	// then splice inc.s in place, as the parser would on seeing .include.
	var seen []token.Token
	for {
		tok := l.NextToken()
		seen = append(seen, tok)
		if tok.Kind == token.DIRECTIVE && tok.Text == ".INCLUDE" {
			break
		}
	}
	// consume the string literal and the rest of that line
	seen = append(seen, l.NextToken()) // STRINGLITERAL
	seen = append(seen, l.NextToken()) // NEWLINE

	l.Include(inc, 2)
	for {
		tok := l.NextToken()
		seen = append(seen, tok)
		if tok.Kind == token.MNEMONIC && tok.Text == "STA" {
			break
		}
	}
	if seen[len(seen)-1].File != "root.s" {
		t.Fatalf("expected to resume in root.s, got %s", seen[len(seen)-1].File)
	}
}

func TestIncludeAndProcessIsolatesTokens(t *testing.T) {
	root := source.FromBytes("root.s", []byte("lda #1\nsta $00\n"))
	inc := source.FromBytes("inc.s", []byte("nop\nnop\n"))
	l := New(root, NewReservedWords(false))

	toks := l.IncludeAndProcess(inc, 1)
	for _, tok := range toks {
		if tok.File != "inc.s" {
			t.Fatalf("IncludeAndProcess leaked a token from %s", tok.File)
		}
	}
	next := l.NextToken()
	if next.Text != "LDA" {
		t.Fatalf("expected root.s to resume at LDA, got %v %q", next.Kind, next.Text)
	}
}
