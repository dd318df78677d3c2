package lexer

import (
	"strings"

	"github.com/xyproto/asm6502/internal/strtab"
	"github.com/xyproto/asm6502/internal/token"
)

// reservedEntry is what the reserved-word table maps an identifier
// spelling to: the token kind it promotes to, plus the canonical
// (upper-cased) spelling used by the parser/encoder for dispatch.
type reservedEntry struct {
	kind      token.Kind
	canonical string
}

// directives is the fixed set of dot-directives from spec.md §3.
var directives = []string{
	".include", ".macro", ".endmacro", ".end",
	".m8", ".m16", ".mx8", ".mx16", ".x8", ".x16",
	".align", ".binary", ".byte", ".word", ".dword", ".long", ".fill",
	".stringify", ".relocate", ".endrelocate", ".dp", ".pron", ".proff",
	".string", ".cstring", ".lstring", ".nstring", ".pstring",
}

// mnemonicsNMOS is the base NMOS 6502 instruction set.
var mnemonicsNMOS = []string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

// mnemonicsIllegal is the NMOS undocumented-opcode set.
var mnemonicsIllegal = []string{
	"ANC", "ALR", "ARR", "AXS", "LAX", "SAX", "DCP", "ISC", "RLA", "RRA",
	"SLO", "SRE", "KIL", "JAM", "LAS", "SHA", "SHX", "SHY", "TAS", "XAA", "TOP", "DOP",
}

// mnemonics65C02 are the instructions the 65C02 adds to NMOS.
var mnemonics65C02 = []string{
	"BBR", "BBS", "BRA", "RMB", "SMB", "STZ", "TRB", "TSB", "WAI",
	"PHX", "PHY", "PLX", "PLY",
}

// mnemonics65816 are the instructions the 65816 adds on top of 65C02.
var mnemonics65816 = []string{
	"BRL", "COP", "JML", "JSL", "MVN", "MVP", "PEA", "PEI", "PER",
	"PHB", "PHD", "PHK", "PLB", "PLD", "REP", "RTL", "SEP", "STP",
	"TCD", "TCS", "TDC", "TSC", "TXY", "TYX", "WDM", "XBA", "XCE",
}

var registers = []string{"A", "X", "Y", "S"}

// NewReservedWords builds the reserved-word table for a CPU variant.
// Case folding is applied by the table itself; canonical spellings are
// always upper-case so the parser and encoder never re-normalize.
func NewReservedWords(caseSensitive bool) *strtab.Table[reservedEntry] {
	t := strtab.New[reservedEntry](256, caseSensitive)
	add := func(words []string, kind token.Kind) {
		for _, w := range words {
			t.Set(w, reservedEntry{kind: kind, canonical: strings.ToUpper(w)})
		}
	}
	add(directives, token.DIRECTIVE)
	add(mnemonicsNMOS, token.MNEMONIC)
	add(mnemonicsIllegal, token.MNEMONIC)
	add(mnemonics65C02, token.MNEMONIC)
	add(mnemonics65816, token.MNEMONIC)
	add(registers, token.REGISTER)
	return t
}

// DefineMacro adds name (with its leading dot already present) to the
// reserved-word table as a MACRO_NAME, per spec.md §4.2's macro
// definition rule.
func DefineMacro(t *strtab.Table[reservedEntry], name string) {
	t.Set(name, reservedEntry{kind: token.MACRO_NAME, canonical: strings.ToUpper(name)})
}

// IsMacroName reports whether name is currently bound to MACRO_NAME.
func IsMacroName(t *strtab.Table[reservedEntry], name string) bool {
	e, ok := t.Get(name)
	return ok && e.kind == token.MACRO_NAME
}
