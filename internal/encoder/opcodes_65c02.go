package encoder

// c02Additions are the new mnemonics the 65C02 adds over NMOS.
var c02Additions = map[string][]opEntry{
	"BRA": {{Rel, 0x80}},
	"PHX": {{Implied, 0xDA}},
	"PHY": {{Implied, 0x5A}},
	"PLX": {{Implied, 0xFA}},
	"PLY": {{Implied, 0x7A}},
	"STZ": {{ZP, 0x64}, {ZPX, 0x74}, {Abs, 0x9C}, {AbsX, 0x9E}},
	"TRB": {{ZP, 0x14}, {Abs, 0x1C}},
	"TSB": {{ZP, 0x04}, {Abs, 0x0C}},
	"WAI": {{Implied, 0xCB}},

	// RMB0-7/SMB0-7/BBR0-7/BBS0-7 collapse to one generic mnemonic per
	// spec.md, taking the bit number as the operand's leading expression.
	// The entries here hold the bit-0 opcode; the encoder computes the
	// real opcode as base+bit*0x10 (see encodeBitZP/encodeBitOffsZP in
	// encode.go and the rmbBase/smbBase/bbrBase/bbsBase constants below).
	"RMB": {{ZPBit, rmbBase}},
	"SMB": {{ZPBit, smbBase}},
	"BBR": {{ZPBitRel, bbrBase}},
	"BBS": {{ZPBitRel, bbsBase}},
}

// c02ExistingModeAdditions are new addressing modes the 65C02 adds to
// mnemonics that already exist on NMOS.
var c02ExistingModeAdditions = map[string][]opEntry{
	"ADC": {{ZPInd, 0x72}},
	"AND": {{ZPInd, 0x32}},
	"CMP": {{ZPInd, 0xD2}},
	"EOR": {{ZPInd, 0x52}},
	"LDA": {{ZPInd, 0xB2}},
	"ORA": {{ZPInd, 0x12}},
	"SBC": {{ZPInd, 0xF2}},
	"STA": {{ZPInd, 0x92}},
	"INC": {{Accum, 0x1A}},
	"DEC": {{Accum, 0x3A}},
	"JMP": {{AbsIndX, 0x7C}},
	"BIT": {{Imm, 0x89}, {ZPX, 0x34}, {AbsX, 0x3C}},
}

// rmbBase/smbBase/bbrBase/bbsBase are the RMB/SMB/BBR/BBS opcodes for
// bit 0; opcode = base + bit*0x10.
const (
	rmbBase byte = 0x07
	smbBase byte = 0x87
	bbrBase byte = 0x0F
	bbsBase byte = 0x8F
)
