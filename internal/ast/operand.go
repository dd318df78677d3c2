package ast

// OperandForm is the syntactic shape of an instruction's operand, before
// the encoder narrows it to a concrete addressing mode (spec.md §5).
type OperandForm int

const (
	NoOperand   OperandForm = iota
	Accumulator             // A
	Immediate               // #expr
	Direct                  // expr            (zero-page or absolute, size-inferred)
	DirectY                 // expr,y
	IndexX                  // expr,x
	IndexY                  // expr,y          (distinct from DirectY for STX/LDX-shaped forms)
	IndexS                  // expr,s          (65816 stack-relative)
	Indirect                // (expr)
	IndirectX               // (expr,x)
	IndirectY               // (expr),y
	IndirectS               // (expr,s),y      (65816 stack-relative indirect indexed)
	IndirectLong            // [expr]          (65816)
	IndirectLongY           // [expr],y        (65816)
	TwoOperands             // expr,expr       (MVN/MVP bank-to-bank move)
	BitZP                   // bit#,expr       (RMB/SMB)
	BitOffsZP               // bit#,expr,rel   (BBR/BBS)
	ExpressionList          // expr[,expr...]  (.byte/.word/etc pseudo-op data)
)

// BitWidth is an explicit size override written on an operand, e.g. the
// `[8]`/`[16]`/`[24]` bracket prefix (spec.md §4.2) that forces an
// addressing mode's operand width instead of relying on size inference.
type BitWidth int

const (
	WidthInferred BitWidth = iota
	Width8
	Width16
	Width24
)

// Operand is an instruction's argument list in its as-parsed form. The
// encoder is the only consumer that interprets Form together with the
// target CPU variant to pick a concrete opcode.
type Operand struct {
	Form  OperandForm
	Exprs []Expr // one entry for most forms, two for TwoOperands/BitZP/BitOffsZP
	Width BitWidth
}

func NewOperand(form OperandForm, width BitWidth, exprs ...Expr) *Operand {
	return &Operand{Form: form, Exprs: exprs, Width: width}
}
