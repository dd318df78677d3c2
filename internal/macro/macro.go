// Package macro stores `.macro`/`.endmacro` bodies and expands an
// invocation's token stream by substituting `\name` and `\N` markers for
// the matching argument (spec.md §4.6).
package macro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/asm6502/internal/token"
)

// Def is one macro definition: its formal parameter names (in order)
// and its body as an unexpanded token stream.
type Def struct {
	Name      string
	Params    []string
	Body      []token.Token
	DefLine   int
	expanding bool // reentrancy guard against a macro invoking itself
}

// Table stores macro definitions by name.
type Table struct {
	byName map[string]*Def
}

// New returns an empty macro table.
func New() *Table { return &Table{byName: map[string]*Def{}} }

// Define registers a macro. Redefining a name overwrites the prior body,
// matching the reserved-word table's promotion of the name to
// MACRO_NAME, which remains in effect for the whole remaining file.
func (t *Table) Define(d *Def) { t.byName[strings.ToUpper(d.Name)] = d }

// Lookup finds a macro by name.
func (t *Table) Lookup(name string) (*Def, bool) {
	d, ok := t.byName[strings.ToUpper(name)]
	return d, ok
}

// ErrRecursiveExpansion reports a macro invoking itself, directly or
// through another macro, which spec.md §4.6 forbids (macros do not
// recurse; there is no call stack to unwind them with).
type ErrRecursiveExpansion struct{ Name string }

func (e *ErrRecursiveExpansion) Error() string {
	return fmt.Sprintf("macro %s cannot expand itself (directly or indirectly)", e.Name)
}

// Expand substitutes args into def's body, returning a fresh token slice
// with every ExpandedFromMacro provenance field set to def's origin.
// args[i] is the raw, not-yet-lexed text of the i'th call argument;
// relex turns one argument's text back into real tokens (its caller
// supplies this since only the lexer knows the active reserved-word
// table) so a substituted argument keeps its own lexical identity (a
// hex literal stays a hex literal, a register stays a register) rather
// than being flattened into one string token.
func (t *Table) Expand(def *Def, args []string, invokeLine int, relex func(text string) []token.Token) ([]token.Token, error) {
	if def.expanding {
		return nil, &ErrRecursiveExpansion{Name: def.Name}
	}
	def.expanding = true
	defer func() { def.expanding = false }()

	origin := &token.MacroOrigin{Name: def.Name, Line: def.DefLine}
	out := make([]token.Token, 0, len(def.Body))
	for _, tok := range def.Body {
		switch tok.Kind {
		case token.NUMBEREDSUBSTITUTION:
			idx, err := strconv.Atoi(strings.TrimPrefix(tok.Text, `\`))
			if err != nil || idx < 1 || idx > len(args) {
				return nil, fmt.Errorf("macro %s: %s does not name a supplied argument", def.Name, tok.Text)
			}
			out = append(out, tagAll(relex(args[idx-1]), origin)...)
			continue
		case token.MACROSUBSTITUTION:
			name := strings.TrimPrefix(tok.Text, `\`)
			pos := paramIndex(def.Params, name)
			if pos < 0 {
				return nil, fmt.Errorf("macro %s: %s does not name a parameter", def.Name, tok.Text)
			}
			if pos >= len(args) {
				return nil, fmt.Errorf("macro %s: missing argument for %s", def.Name, tok.Text)
			}
			out = append(out, tagAll(relex(args[pos]), origin)...)
			continue
		}
		expanded := tok
		expanded.ExpandedFromMacro = origin
		out = append(out, expanded)
	}
	return out, nil
}

func tagAll(toks []token.Token, origin *token.MacroOrigin) []token.Token {
	for i := range toks {
		toks[i].ExpandedFromMacro = origin
	}
	return toks
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if strings.EqualFold(p, name) {
			return i
		}
	}
	return -1
}

// SplitArgs splits a raw invocation argument list on top-level commas
// (commas nested inside `()`/`[]`/`{}` do not split, spec.md §4.6),
// trimming whitespace from each piece.
func SplitArgs(raw string) []string {
	var args []string
	depth := 0
	start := 0
	for i, r := range raw {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(raw[start:]); tail != "" || len(args) > 0 {
		args = append(args, tail)
	}
	return args
}
