package encoder

// w65816Additions are the new mnemonics the 65816 adds over 65C02.
var w65816Additions = map[string][]opEntry{
	"BRL": {{RelLong, 0x82}},
	"COP": {{Sig, 0x02}},
	"JML": {{AbsLong, 0x5C}, {IndLong, 0xDC}},
	"JSL": {{AbsLong, 0x22}},
	"MVN": {{BlockMove, 0x54}},
	"MVP": {{BlockMove, 0x44}},
	"PEA": {{Abs, 0xF4}},
	"PEI": {{ZPInd, 0xD4}},
	"PER": {{RelLong, 0x62}},
	"PHB": {{Implied, 0x8B}},
	"PHD": {{Implied, 0x0B}},
	"PHK": {{Implied, 0x4B}},
	"PLB": {{Implied, 0xAB}},
	"PLD": {{Implied, 0x2B}},
	"REP": {{Sig, 0xC2}},
	"RTL": {{Implied, 0x6B}},
	"SEP": {{Sig, 0xE2}},
	"STP": {{Implied, 0xDB}},
	"TCD": {{Implied, 0x5B}},
	"TCS": {{Implied, 0x1B}},
	"TDC": {{Implied, 0x7B}},
	"TSC": {{Implied, 0x3B}},
	"TXY": {{Implied, 0x9B}},
	"TYX": {{Implied, 0xBB}},
	"WDM": {{Sig, 0x42}},
	"XBA": {{Implied, 0xEB}},
	"XCE": {{Implied, 0xFB}},
}

// w65816ExistingModeAdditions layers the 24-bit long-addressing and
// stack-relative modes onto the ALU mnemonics that already exist, per
// the W65C816S opcode matrix.
var w65816ExistingModeAdditions = map[string][]opEntry{
	"ADC": {{AbsLong, 0x6F}, {AbsLongX, 0x7F}, {IndLong, 0x67}, {IndLongY, 0x77}, {StackRel, 0x63}, {StackRelIndY, 0x73}},
	"AND": {{AbsLong, 0x2F}, {AbsLongX, 0x3F}, {IndLong, 0x27}, {IndLongY, 0x37}, {StackRel, 0x23}, {StackRelIndY, 0x33}},
	"CMP": {{AbsLong, 0xCF}, {AbsLongX, 0xDF}, {IndLong, 0xC7}, {IndLongY, 0xD7}, {StackRel, 0xC3}, {StackRelIndY, 0xD3}},
	"EOR": {{AbsLong, 0x4F}, {AbsLongX, 0x5F}, {IndLong, 0x47}, {IndLongY, 0x57}, {StackRel, 0x43}, {StackRelIndY, 0x53}},
	"LDA": {{AbsLong, 0xAF}, {AbsLongX, 0xBF}, {IndLong, 0xA7}, {IndLongY, 0xB7}, {StackRel, 0xA3}, {StackRelIndY, 0xB3}},
	"ORA": {{AbsLong, 0x0F}, {AbsLongX, 0x1F}, {IndLong, 0x07}, {IndLongY, 0x17}, {StackRel, 0x03}, {StackRelIndY, 0x13}},
	"SBC": {{AbsLong, 0xEF}, {AbsLongX, 0xFF}, {IndLong, 0xE7}, {IndLongY, 0xF7}, {StackRel, 0xE3}, {StackRelIndY, 0xF3}},
	"STA": {{AbsLong, 0x8F}, {AbsLongX, 0x9F}, {IndLong, 0x87}, {IndLongY, 0x97}, {StackRel, 0x83}, {StackRelIndY, 0x93}},
}
