package encoder

// nmosBase is every documented NMOS 6502 opcode, grounded on the
// opsym/addressing-mode table shape of beevik/go6502's instructions.go.
var nmosBase = map[string][]opEntry{
	"ADC": {{Imm, 0x69}, {ZP, 0x65}, {ZPX, 0x75}, {Abs, 0x6D}, {AbsX, 0x7D}, {AbsY, 0x79}, {IndX, 0x61}, {IndY, 0x71}},
	"AND": {{Imm, 0x29}, {ZP, 0x25}, {ZPX, 0x35}, {Abs, 0x2D}, {AbsX, 0x3D}, {AbsY, 0x39}, {IndX, 0x21}, {IndY, 0x31}},
	"ASL": {{Accum, 0x0A}, {ZP, 0x06}, {ZPX, 0x16}, {Abs, 0x0E}, {AbsX, 0x1E}},
	"BCC": {{Rel, 0x90}},
	"BCS": {{Rel, 0xB0}},
	"BEQ": {{Rel, 0xF0}},
	"BIT": {{ZP, 0x24}, {Abs, 0x2C}},
	"BMI": {{Rel, 0x30}},
	"BNE": {{Rel, 0xD0}},
	"BPL": {{Rel, 0x10}},
	"BRK": {{Sig, 0x00}},
	"BVC": {{Rel, 0x50}},
	"BVS": {{Rel, 0x70}},
	"CLC": {{Implied, 0x18}},
	"CLD": {{Implied, 0xD8}},
	"CLI": {{Implied, 0x58}},
	"CLV": {{Implied, 0xB8}},
	"CMP": {{Imm, 0xC9}, {ZP, 0xC5}, {ZPX, 0xD5}, {Abs, 0xCD}, {AbsX, 0xDD}, {AbsY, 0xD9}, {IndX, 0xC1}, {IndY, 0xD1}},
	"CPX": {{Imm, 0xE0}, {ZP, 0xE4}, {Abs, 0xEC}},
	"CPY": {{Imm, 0xC0}, {ZP, 0xC4}, {Abs, 0xCC}},
	"DEC": {{ZP, 0xC6}, {ZPX, 0xD6}, {Abs, 0xCE}, {AbsX, 0xDE}},
	"DEX": {{Implied, 0xCA}},
	"DEY": {{Implied, 0x88}},
	"EOR": {{Imm, 0x49}, {ZP, 0x45}, {ZPX, 0x55}, {Abs, 0x4D}, {AbsX, 0x5D}, {AbsY, 0x59}, {IndX, 0x41}, {IndY, 0x51}},
	"INC": {{ZP, 0xE6}, {ZPX, 0xF6}, {Abs, 0xEE}, {AbsX, 0xFE}},
	"INX": {{Implied, 0xE8}},
	"INY": {{Implied, 0xC8}},
	"JMP": {{Abs, 0x4C}, {AbsInd, 0x6C}},
	"JSR": {{Abs, 0x20}},
	"LDA": {{Imm, 0xA9}, {ZP, 0xA5}, {ZPX, 0xB5}, {Abs, 0xAD}, {AbsX, 0xBD}, {AbsY, 0xB9}, {IndX, 0xA1}, {IndY, 0xB1}},
	"LDX": {{Imm, 0xA2}, {ZP, 0xA6}, {ZPY, 0xB6}, {Abs, 0xAE}, {AbsY, 0xBE}},
	"LDY": {{Imm, 0xA0}, {ZP, 0xA4}, {ZPX, 0xB4}, {Abs, 0xAC}, {AbsX, 0xBC}},
	"LSR": {{Accum, 0x4A}, {ZP, 0x46}, {ZPX, 0x56}, {Abs, 0x4E}, {AbsX, 0x5E}},
	"NOP": {{Implied, 0xEA}},
	"ORA": {{Imm, 0x09}, {ZP, 0x05}, {ZPX, 0x15}, {Abs, 0x0D}, {AbsX, 0x1D}, {AbsY, 0x19}, {IndX, 0x01}, {IndY, 0x11}},
	"PHA": {{Implied, 0x48}},
	"PHP": {{Implied, 0x08}},
	"PLA": {{Implied, 0x68}},
	"PLP": {{Implied, 0x28}},
	"ROL": {{Accum, 0x2A}, {ZP, 0x26}, {ZPX, 0x36}, {Abs, 0x2E}, {AbsX, 0x3E}},
	"ROR": {{Accum, 0x6A}, {ZP, 0x66}, {ZPX, 0x76}, {Abs, 0x6E}, {AbsX, 0x7E}},
	"RTI": {{Implied, 0x40}},
	"RTS": {{Implied, 0x60}},
	"SBC": {{Imm, 0xE9}, {ZP, 0xE5}, {ZPX, 0xF5}, {Abs, 0xED}, {AbsX, 0xFD}, {AbsY, 0xF9}, {IndX, 0xE1}, {IndY, 0xF1}},
	"SEC": {{Implied, 0x38}},
	"SED": {{Implied, 0xF8}},
	"SEI": {{Implied, 0x78}},
	"STA": {{ZP, 0x85}, {ZPX, 0x95}, {Abs, 0x8D}, {AbsX, 0x9D}, {AbsY, 0x99}, {IndX, 0x81}, {IndY, 0x91}},
	"STX": {{ZP, 0x86}, {ZPY, 0x96}, {Abs, 0x8E}},
	"STY": {{ZP, 0x84}, {ZPX, 0x94}, {Abs, 0x8C}},
	"TAX": {{Implied, 0xAA}},
	"TAY": {{Implied, 0xA8}},
	"TSX": {{Implied, 0xBA}},
	"TXA": {{Implied, 0x8A}},
	"TXS": {{Implied, 0x9A}},
	"TYA": {{Implied, 0x98}},
}

// nmosIllegal is a grounded, representative set of the NMOS undocumented
// opcodes, covering each illegal mnemonic's primary addressing forms.
// Exotic/unstable forms (e.g. every SHA/SHX/SHY/TAS addressing
// combination, or the half-dozen alternate KIL/JAM encodings) are left
// out — see DESIGN.md's internal/encoder entry for the scope note.
var nmosIllegal = map[string][]opEntry{
	"ANC": {{Imm, 0x0B}},
	"ALR": {{Imm, 0x4B}},
	"ARR": {{Imm, 0x6B}},
	"AXS": {{Imm, 0xCB}},
	"LAX": {{ZP, 0xA7}, {ZPY, 0xB7}, {Abs, 0xAF}, {AbsY, 0xBF}, {IndX, 0xA3}, {IndY, 0xB3}},
	"SAX": {{ZP, 0x87}, {ZPY, 0x97}, {Abs, 0x8F}, {IndX, 0x83}},
	"DCP": {{ZP, 0xC7}, {ZPX, 0xD7}, {Abs, 0xCF}, {AbsX, 0xDF}, {AbsY, 0xDB}, {IndX, 0xC3}, {IndY, 0xD3}},
	"ISC": {{ZP, 0xE7}, {ZPX, 0xF7}, {Abs, 0xEF}, {AbsX, 0xFF}, {AbsY, 0xFB}, {IndX, 0xE3}, {IndY, 0xF3}},
	"RLA": {{ZP, 0x27}, {ZPX, 0x37}, {Abs, 0x2F}, {AbsX, 0x3F}, {AbsY, 0x3B}, {IndX, 0x23}, {IndY, 0x33}},
	"RRA": {{ZP, 0x67}, {ZPX, 0x77}, {Abs, 0x6F}, {AbsX, 0x7F}, {AbsY, 0x7B}, {IndX, 0x63}, {IndY, 0x73}},
	"SLO": {{ZP, 0x07}, {ZPX, 0x17}, {Abs, 0x0F}, {AbsX, 0x1F}, {AbsY, 0x1B}, {IndX, 0x03}, {IndY, 0x13}},
	"SRE": {{ZP, 0x47}, {ZPX, 0x57}, {Abs, 0x4F}, {AbsX, 0x5F}, {AbsY, 0x5B}, {IndX, 0x43}, {IndY, 0x53}},
	"KIL": {{Implied, 0x02}},
	"JAM": {{Implied, 0x12}},
	"LAS": {{AbsY, 0xBB}},
	"SHA": {{AbsY, 0x9F}, {IndY, 0x93}},
	"SHX": {{AbsY, 0x9E}},
	"SHY": {{AbsX, 0x9C}},
	"TAS": {{AbsY, 0x9B}},
	"XAA": {{Imm, 0x8B}},
	"TOP": {{Abs, 0x0C}, {AbsX, 0x1C}},
	"DOP": {{Imm, 0x80}, {ZP, 0x04}, {ZPX, 0x14}},
}
