// Package lexer turns a source file into a token stream, maintaining a
// stack of included files and a reserved-word table that the parser
// mutates at runtime when it finalizes macro definitions.
package lexer

import (
	"strings"

	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/strtab"
	"github.com/xyproto/asm6502/internal/token"
)

type frame struct {
	file        *source.File
	lineIdx     int // 0-based
	col         int // 0-based byte offset within the current line
	includeSite *token.IncludeSite
}

// Lexer consumes a stack of source.File buffers and produces token.Token
// values on demand.
type Lexer struct {
	frames   []*frame
	Reserved *strtab.Table[reservedEntry]
	lastKind token.Kind
}

// New starts a lexer over the root file with the given reserved-word set.
func New(root *source.File, reserved *strtab.Table[reservedEntry]) *Lexer {
	return &Lexer{
		frames:   []*frame{{file: root}},
		Reserved: reserved,
		lastKind: token.NEWLINE,
	}
}

func (l *Lexer) top() *frame { return l.frames[len(l.frames)-1] }

// LexSnippet tokenizes text in isolation using reserved for word
// promotion, with no trailing NEWLINE/EOF in the result. The macro
// expander uses this to turn a substituted argument's raw text back
// into real tokens (a hex literal, a register, a parenthesized
// expression, whatever the caller actually wrote) instead of treating
// it as an opaque string (spec.md §4.6).
func LexSnippet(text string, reserved *strtab.Table[reservedEntry]) []token.Token {
	l := New(source.FromBytes("<macro-arg>", []byte(text)), reserved)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF || tok.Kind == token.NEWLINE {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

// CaseSensitive reports whether the lexer's keyword matching is case
// sensitive, exposed so the parser can build matching hashes for macro
// argument names (spec.md §4.1).
func (l *Lexer) CaseSensitive() bool { return l.Reserved.CaseSensitive() }

// Include pushes file onto the include stack; the current position is
// saved and resumed once file is exhausted. line is the 1-based line of
// the `.include` directive in the including file, used for diagnostics.
func (l *Lexer) Include(file *source.File, line int) {
	site := &token.IncludeSite{File: l.top().file.Name, Line: line}
	l.frames = append(l.frames, &frame{file: file, includeSite: site})
}

// IncludeAndProcess drives lexing of file to completion and returns every
// token produced, without letting the caller's position bleed into the
// parent source (spec.md §4.1/§4.6: used to inline-substitute an
// `.include` encountered during macro expansion).
func (l *Lexer) IncludeAndProcess(file *source.File, line int) []token.Token {
	depth := len(l.frames)
	l.Include(file, line)
	var toks []token.Token
	for len(l.frames) > depth {
		toks = append(toks, l.NextToken())
	}
	return toks
}

// ActiveFile reports whether name is anywhere on the current include
// stack, used to reject recursive `.include` (spec.md §4.2).
func (l *Lexer) ActiveFile(name string) bool {
	for _, f := range l.frames {
		if f.file.Name == name {
			return true
		}
	}
	return false
}

// NextToken returns the next token, or an EOF token once the root file is
// exhausted. Reaching the end of an included (non-root) file yields one
// terminating NEWLINE attributed to that file, then transparently resumes
// the parent.
func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	l.lastKind = tok.Kind
	return tok
}

func (l *Lexer) nextToken() token.Token {
	for {
		f := l.top()
		if f.lineIdx >= len(f.file.Lines) {
			if len(l.frames) > 1 {
				l.frames = l.frames[:len(l.frames)-1]
				return token.New(token.NEWLINE, "", f.file.Name, f.lineIdx+1, 1)
			}
			return token.New(token.EOF, "", f.file.Name, f.lineIdx+1, 1)
		}

		line := f.file.Lines[f.lineIdx]
		if f.col >= len(line) {
			lineNo := f.lineIdx + 1
			f.lineIdx++
			f.col = 0
			return token.New(token.NEWLINE, "", f.file.Name, lineNo, len(line)+1)
		}

		ch := line[f.col]

		if ch == ' ' || ch == '\t' {
			f.col++
			continue
		}
		if ch == ';' {
			f.col = len(line)
			continue
		}
		if ch == '/' && f.col+1 < len(line) && line[f.col+1] == '/' {
			f.col = len(line)
			continue
		}
		if ch == '/' && f.col+1 < len(line) && line[f.col+1] == '*' {
			l.skipBlockComment(f)
			continue
		}

		return l.lexOne(f)
	}
}

// skipBlockComment advances past a /* ... */ comment, which may span
// multiple lines of the current frame.
func (l *Lexer) skipBlockComment(f *frame) {
	f.col += 2
	for {
		if f.lineIdx >= len(f.file.Lines) {
			return
		}
		line := f.file.Lines[f.lineIdx]
		for f.col < len(line) {
			if line[f.col] == '*' && f.col+1 < len(line) && line[f.col+1] == '/' {
				f.col += 2
				return
			}
			f.col++
		}
		f.lineIdx++
		f.col = 0
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) lexOne(f *frame) token.Token {
	line := f.file.Lines[f.lineIdx]
	lineNo := f.lineIdx + 1
	startCol := f.col + 1
	ch := line[f.col]

	mk := func(kind token.Kind, text string) token.Token {
		t := token.New(kind, text, f.file.Name, lineNo, startCol)
		t.IncludedFrom = f.includeSite
		return t
	}

	switch {
	case ch == '$':
		return l.lexRadixLiteral(f, mk, token.HEXLITERAL, isHexBody)
	case ch == '%' && l.percentStartsBinary(f):
		return l.lexRadixLiteral(f, mk, token.BINLITERAL, isBinBody)
	case isDigit(ch):
		return l.lexDecimal(f, mk)
	case ch == '"':
		return l.lexString(f, mk)
	case ch == '\'':
		return l.lexChar(f, mk)
	case ch == '+':
		return l.lexRun(f, mk, '+', token.MULTIPLUS, token.PLUS)
	case ch == '-':
		return l.lexRun(f, mk, '-', token.MULTIHYPHEN, token.HYPHEN)
	case ch == '\\':
		return l.lexBackslash(f, mk)
	case ch == '.':
		return l.lexDotOrDirective(f, mk)
	case isIdentStart(ch):
		return l.lexIdent(f, mk)
	}

	return l.lexPunct(f, mk)
}

// percentStartsBinary decides whether a `%` begins a binary literal
// (followed by 0/1) or is the modulo operator, per spec.md §4.1: `%`
// immediately following an expression-terminating token (an identifier,
// a literal, a register, or a closing `)`/`]`) is always modulo, even
// when `0` or `1` follows — `n%10` must lex as IDENT, PERCENT,
// DECLITERAL, not IDENT, BINLITERAL(2).
func (l *Lexer) percentStartsBinary(f *frame) bool {
	if isExprTerminating(l.lastKind) {
		return false
	}
	line := f.file.Lines[f.lineIdx]
	if f.col+1 >= len(line) {
		return false
	}
	next := line[f.col+1]
	return next == '0' || next == '1'
}

func isExprTerminating(k token.Kind) bool {
	switch k {
	case token.IDENT, token.HEXLITERAL, token.BINLITERAL, token.DECLITERAL,
		token.CHARLITERAL, token.STRINGLITERAL, token.RPAREN, token.RSQUARE,
		token.REGISTER:
		return true
	}
	return false
}

func isHexBody(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') || ch == '_'
}

func isBinBody(ch byte) bool { return ch == '0' || ch == '1' || ch == '_' }

func (l *Lexer) lexRadixLiteral(f *frame, mk func(token.Kind, string) token.Token, kind token.Kind, body func(byte) bool) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	f.col++ // skip $ or %
	for f.col < len(line) && body(line[f.col]) {
		f.col++
	}
	return mk(kind, line[start:f.col])
}

func (l *Lexer) lexDecimal(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	for f.col < len(line) && (isDigit(line[f.col]) || line[f.col] == '_') {
		f.col++
	}
	return mk(token.DECLITERAL, line[start:f.col])
}

func (l *Lexer) lexString(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	f.col++ // skip opening quote
	var b strings.Builder
	for f.col < len(line) && line[f.col] != '"' {
		if line[f.col] == '\\' && f.col+1 < len(line) {
			esc, n := decodeEscape(line[f.col:])
			b.WriteString(esc)
			f.col += n
			continue
		}
		b.WriteByte(line[f.col])
		f.col++
	}
	if f.col >= len(line) {
		return mk(token.UNRECOGNIZED, `"`+b.String())
	}
	f.col++ // skip closing quote
	return mk(token.STRINGLITERAL, b.String())
}

func (l *Lexer) lexChar(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	f.col++ // skip opening quote
	var b strings.Builder
	for f.col < len(line) && line[f.col] != '\'' {
		if line[f.col] == '\\' && f.col+1 < len(line) {
			esc, n := decodeEscape(line[f.col:])
			b.WriteString(esc)
			f.col += n
			continue
		}
		b.WriteByte(line[f.col])
		f.col++
	}
	if f.col >= len(line) {
		return mk(token.UNRECOGNIZED, `'`+b.String())
	}
	f.col++
	return mk(token.CHARLITERAL, b.String())
}

// decodeEscape decodes one backslash escape starting at s[0]=='\\' and
// returns its replacement text plus the number of input bytes consumed.
func decodeEscape(s string) (string, int) {
	if len(s) < 2 {
		return "\\", 1
	}
	switch s[1] {
	case '\\':
		return "\\", 2
	case '\'':
		return "'", 2
	case '"':
		return "\"", 2
	case 'b':
		return "\b", 2
	case 'f':
		return "\f", 2
	case 'n':
		return "\n", 2
	case 'r':
		return "\r", 2
	case 't':
		return "\t", 2
	case 'v':
		return "\v", 2
	case 'x':
		n := 0
		i := 2
		for i < len(s) && i < 4 && isHexDigit(s[i]) {
			n = n*16 + hexVal(s[i])
			i++
		}
		return string(rune(n)), i
	case 'u':
		return decodeFixedHexEscape(s, 4)
	case 'U':
		return decodeFixedHexEscape(s, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := 0
		i := 1
		for i < len(s) && i < 4 && s[i] >= '0' && s[i] <= '7' {
			n = n*8 + int(s[i]-'0')
			i++
		}
		return string(rune(n)), i
	default:
		return string(s[1]), 2
	}
}

func decodeFixedHexEscape(s string, digits int) (string, int) {
	n := 0
	i := 2
	got := 0
	for i < len(s) && got < digits && isHexDigit(s[i]) {
		n = n*16 + hexVal(s[i])
		i++
		got++
	}
	return string(rune(n)), i
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexVal(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

func (l *Lexer) lexRun(f *frame, mk func(token.Kind, string) token.Token, ch byte, multi, single token.Kind) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	for f.col < len(line) && line[f.col] == ch {
		f.col++
	}
	text := line[start:f.col]
	if len(text) > 1 {
		return mk(multi, text)
	}
	return mk(single, text)
}

func (l *Lexer) lexBackslash(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	f.col++
	if f.col < len(line) && isDigit(line[f.col]) {
		for f.col < len(line) && isDigit(line[f.col]) {
			f.col++
		}
		return mk(token.NUMBEREDSUBSTITUTION, line[start:f.col])
	}
	if f.col < len(line) && isIdentStart(line[f.col]) {
		for f.col < len(line) && isIdentCont(line[f.col]) {
			f.col++
		}
		return mk(token.MACROSUBSTITUTION, line[start:f.col])
	}
	return mk(token.UNRECOGNIZED, line[start:f.col])
}

func (l *Lexer) lexIdent(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	for f.col < len(line) && isIdentCont(line[f.col]) {
		f.col++
	}
	text := line[start:f.col]

	if entry, ok := l.Reserved.Get(text); ok {
		return mk(entry.kind, entry.canonical)
	}
	return mk(token.IDENT, text)
}

// lexDotOrDirective handles a leading '.'. If followed by identifier
// characters that spell a known directive it is promoted to DIRECTIVE (or
// MACRO_NAME, once a matching `.macro` has been defined); otherwise the
// '.' is returned alone, e.g. for a future member-access use.
func (l *Lexer) lexDotOrDirective(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	start := f.col
	f.col++
	for f.col < len(line) && isIdentCont(line[f.col]) {
		f.col++
	}
	word := line[start:f.col]
	if len(word) > 1 {
		if entry, ok := l.Reserved.Get(word); ok {
			return mk(entry.kind, entry.canonical)
		}
	}
	f.col = start + 1
	return mk(token.DOT, ".")
}

func (l *Lexer) lexPunct(f *frame, mk func(token.Kind, string) token.Token) token.Token {
	line := f.file.Lines[f.lineIdx]
	rest := line[f.col:]

	two := func(a, b byte, kind token.Kind) (token.Token, bool) {
		if len(rest) >= 2 && rest[0] == a && rest[1] == b {
			f.col += 2
			return mk(kind, rest[:2]), true
		}
		return token.Token{}, false
	}
	three := func(a, b, c byte, kind token.Kind) (token.Token, bool) {
		if len(rest) >= 3 && rest[0] == a && rest[1] == b && rest[2] == c {
			f.col += 3
			return mk(kind, rest[:3]), true
		}
		return token.Token{}, false
	}

	// Longest match first: three-character operators before two, two
	// before one.
	if t, ok := three('<', '=', '>', token.SPACESHIP); ok {
		return t
	}
	if t, ok := three('>', '>', '>', token.ARSHIFT); ok {
		return t
	}
	for _, c := range []struct {
		a, b byte
		kind token.Kind
	}{
		{'<', '<', token.LSHIFT}, {'>', '>', token.RSHIFT},
		{'<', '=', token.LTE}, {'>', '=', token.GTE},
		{'=', '=', token.DOUBLEEQUAL}, {'!', '=', token.BANGEQUAL},
		{'&', '&', token.DOUBLEAMPERSAND}, {'|', '|', token.DOUBLEPIPE},
		{'^', '^', token.DOUBLECARET},
	} {
		if t, ok := two(c.a, c.b, c.kind); ok {
			return t
		}
	}

	single := func(ch byte, kind token.Kind) (token.Token, bool) {
		if len(rest) >= 1 && rest[0] == ch {
			f.col++
			return mk(kind, string(ch)), true
		}
		return token.Token{}, false
	}

	kinds := []struct {
		ch   byte
		kind token.Kind
	}{
		{':', token.COLON}, {',', token.COMMA},
		{'(', token.LPAREN}, {')', token.RPAREN},
		{'[', token.LSQUARE}, {']', token.RSQUARE},
		{'{', token.LCURLY}, {'}', token.RCURLY},
		{'#', token.HASH}, {'.', token.DOT}, {'*', token.ASTERISK},
		{'/', token.SOLIDUS}, {'%', token.PERCENT},
		{'<', token.LANGLE}, {'>', token.RANGLE},
		{'&', token.AMPERSAND}, {'^', token.CARET}, {'|', token.PIPE},
		{'?', token.QUERY}, {'=', token.EQUAL}, {'!', token.BANG}, {'~', token.TILDE},
	}
	for _, k := range kinds {
		if t, ok := single(k.ch, k.kind); ok {
			return t
		}
	}

	f.col++
	return mk(token.UNRECOGNIZED, string(rest[0]))
}

