package parser

import (
	"fmt"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/eval"
	"github.com/xyproto/asm6502/internal/lexer"
	"github.com/xyproto/asm6502/internal/macro"
	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/token"
	"github.com/xyproto/asm6502/internal/value"
)

// Parser turns one lexer's token stream into ast.Statement values,
// folding expressions against ctx as each one is built.
type Parser struct {
	lex       *lexer.Lexer
	ctx       *eval.Context
	macros    *macro.Table
	cur       token.Token
	stmtIndex int

	pendingTokens []token.Token // macro-expansion/include splice buffer, consumed before the lexer
}

// New builds a parser reading from lex, folding expressions against ctx,
// and recording/expanding macros in macros.
func New(lex *lexer.Lexer, ctx *eval.Context, macros *macro.Table) *Parser {
	p := &Parser{lex: lex, ctx: ctx, macros: macros}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if n := len(p.pendingTokens); n > 0 {
		p.cur = p.pendingTokens[0]
		p.pendingTokens = p.pendingTokens[1:]
		return
	}
	p.cur = p.lex.NextToken()
}

func (p *Parser) expect(k token.Kind) error {
	if p.cur.Kind != k {
		return p.errorf("expected %s, got %s", k, p.cur.Kind)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Tok: p.cur, Msg: fmt.Sprintf(format, args...)}
}

// ParseError is a syntax error located at a specific token.
type ParseError struct {
	Tok token.Token
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Tok.File, e.Tok.Line, e.Tok.Col, e.Msg)
}

func (p *Parser) atEndOfStatement() bool { return p.cur.IsEndOfStatement() }

// skipToEndOfStatement resyncs after an error, per spec.md §4.2's error
// recovery rule (skip to the next NEWLINE/COLON/EOF).
func (p *Parser) skipToEndOfStatement() {
	for !p.atEndOfStatement() {
		p.advance()
	}
}

// ParseProgram parses every statement until EOF, collecting errors
// rather than stopping at the first one (spec.md §4.2).
func (p *Parser) ParseProgram() ([]*ast.Statement, []error) {
	var stmts []*ast.Statement
	var errs []error
	for p.cur.Kind != token.EOF {
		if p.cur.Kind == token.NEWLINE {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			errs = append(errs, err)
			p.skipToEndOfStatement()
		} else if stmt != nil {
			stmts = append(stmts, stmt)
			p.stmtIndex++
			if stmt.Directive == ".END" {
				break
			}
		}
		if p.cur.Kind == token.COLON || p.cur.Kind == token.NEWLINE {
			p.advance()
		}
	}
	return stmts, errs
}

// parseStatement parses one logical line: an optional label, then at
// most one of {mnemonic+operand, directive, macro invocation,
// assignment}.
func (p *Parser) parseStatement() (*ast.Statement, error) {
	stmt := &ast.Statement{Index: p.stmtIndex, File: p.cur.File, Line: p.cur.Line}

	if p.cur.Kind == token.MULTIPLUS || p.cur.Kind == token.MULTIHYPHEN {
		stmt.Label = p.cur.Text
		stmt.LabelLine = p.cur.Line
		p.advance()
	} else if p.cur.Kind == token.IDENT {
		name := p.cur.Text
		nameLine := p.cur.Line
		p.advance()
		switch p.cur.Kind {
		case token.COLON:
			stmt.Label = name
			stmt.LabelLine = nameLine
			p.advance()
		case token.EQUAL:
			p.advance()
			expr, err := p.parseExpr()
			if err != nil {
				return stmt, err
			}
			stmt.AssignName = name
			stmt.AssignExpr = expr
			return stmt, nil
		default:
			// Not a label or assignment: name was actually this
			// statement's own column-0 label (the original assembler
			// allows a label with no trailing colon). p.cur is already
			// positioned at whatever follows it.
			stmt.Label = name
			stmt.LabelLine = nameLine
		}
	}

	return p.finishStatementAfterLabel(stmt)
}

// finishStatementAfterLabel parses the mnemonic/directive/macro body
// that may follow a label on the same line, or stands alone.
func (p *Parser) finishStatementAfterLabel(stmt *ast.Statement) (*ast.Statement, error) {
	if stmt.Label != "" {
		p.ctx.Symbols.SetScope(stmt.Label)
	}

	switch p.cur.Kind {
	case token.NEWLINE, token.COLON, token.EOF:
		return stmt, nil
	case token.MNEMONIC:
		mnem := p.cur.Text
		p.advance()
		op, err := p.parseOperand(mnem)
		if err != nil {
			return stmt, err
		}
		stmt.Mnemonic = mnem
		stmt.Operand = op
		return stmt, nil
	case token.DIRECTIVE:
		return p.parseDirective(stmt)
	case token.MACRO_NAME:
		if err := p.expandMacroInvocation(); err != nil {
			return stmt, err
		}
		if stmt.Label == "" {
			return nil, nil
		}
		return stmt, nil
	}
	return stmt, p.errorf("expected a label, mnemonic, directive, or macro invocation, got %s", p.cur.Kind)
}

// expandMacroInvocation expands a macro invocation in place: it looks
// up the definition, substitutes the call's arguments into the body,
// and splices the resulting tokens so the statement loop parses them
// as ordinary statements next (spec.md §4.6). The invocation line
// itself produces no statement of its own beyond any label already
// attached to it.
func (p *Parser) expandMacroInvocation() error {
	name := p.cur.Text
	invokeLine := p.cur.Line
	p.advance()
	args, err := p.parseMacroArgs()
	if err != nil {
		return err
	}
	def, ok := p.macros.Lookup(name)
	if !ok {
		return p.errorf("unknown macro %s", name)
	}
	expanded, err := p.macros.Expand(def, args, invokeLine, func(s string) []token.Token {
		return lexer.LexSnippet(s, p.lex.Reserved)
	})
	if err != nil {
		return err
	}
	after := p.cur
	spliced := make([]token.Token, 0, len(expanded)+1+len(p.pendingTokens))
	spliced = append(spliced, expanded...)
	spliced = append(spliced, after)
	spliced = append(spliced, p.pendingTokens...)
	p.pendingTokens = spliced
	p.advance()
	return nil
}

// parseMacroArgs collects the raw text of a macro invocation's
// comma-separated argument list up to end of statement; each argument
// is later re-lexed at expansion time.
func (p *Parser) parseMacroArgs() ([]string, error) {
	var args []string
	var cur []token.Token
	depth := 0
	for !p.atEndOfStatement() {
		switch p.cur.Kind {
		case token.LPAREN, token.LSQUARE:
			depth++
		case token.RPAREN, token.RSQUARE:
			depth--
		case token.COMMA:
			if depth == 0 {
				args = append(args, renderTokens(cur))
				cur = nil
				p.advance()
				continue
			}
		}
		cur = append(cur, p.cur)
		p.advance()
	}
	if len(cur) > 0 || len(args) > 0 {
		args = append(args, renderTokens(cur))
	}
	return args, nil
}

// parseOperand reads the operand syntax following a mnemonic and
// classifies it into an ast.OperandForm (spec.md §5). A handful of
// mnemonics take shapes no other instruction does (RMB/SMB's bit,zp;
// BBR/BBS's bit,zp,rel; MVN/MVP's bank,bank); those are recognized by
// mnemonic name since the grammar alone is ambiguous with a plain
// two-expression list.
func (p *Parser) parseOperand(mnemonic string) (*ast.Operand, error) {
	if p.atEndOfStatement() {
		return ast.NewOperand(ast.NoOperand, ast.WidthInferred), nil
	}

	// A leading `[...]` is ambiguous with the bracket-wrapped DIRECT/
	// DIRECT_Y operand form (`[e]`, `[e],y`, spec.md §3): parse the
	// bracketed expression first, then peek past the `]`. End-of-statement
	// or a comma means the bracket WAS the real operand; anything else
	// means it was a `[8|16|24]` bit-width modifier for the operand that
	// follows (spec.md §4.2), grounded on the original parser's two-phase
	// disambiguation (parser.c's parse_operand).
	width := ast.WidthInferred
	if p.cur.Kind == token.LSQUARE {
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RSQUARE); err != nil {
			return nil, err
		}
		if p.atEndOfStatement() {
			return ast.NewOperand(ast.IndirectLong, ast.WidthInferred, inner), nil
		}
		if p.cur.Kind == token.COMMA {
			p.advance()
			if err := p.expectRegister("Y"); err != nil {
				return nil, err
			}
			return ast.NewOperand(ast.IndirectLongY, ast.WidthInferred, inner), nil
		}
		w, err := bitWidthFromLiteral(inner)
		if err != nil {
			return nil, p.errorf("%s", err)
		}
		width = w
	}

	if p.cur.Kind == token.REGISTER && p.cur.Text == "A" {
		// "A" alone (not the start of a larger expression) means the
		// accumulator addressing mode, e.g. `ASL A`.
		if width != ast.WidthInferred {
			return nil, p.errorf("invalid use of bit-width modifier before accumulator operand")
		}
		p.advance()
		if p.atEndOfStatement() {
			return ast.NewOperand(ast.Accumulator, ast.WidthInferred), nil
		}
		return nil, p.errorf("unexpected %s after accumulator operand", p.cur.Kind)
	}

	if p.cur.Kind == token.HASH {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind == token.COMMA {
			return nil, p.errorf("immediate operand cannot be indexed")
		}
		return ast.NewOperand(ast.Immediate, width, expr), nil
	}

	if p.cur.Kind == token.LSQUARE {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RSQUARE); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.COMMA {
			p.advance()
			if err := p.expectRegister("Y"); err != nil {
				return nil, err
			}
			return ast.NewOperand(ast.IndirectLongY, width, expr), nil
		}
		return ast.NewOperand(ast.IndirectLong, width, expr), nil
	}

	if p.cur.Kind == token.LPAREN {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		switch p.cur.Kind {
		case token.COMMA:
			p.advance()
			if p.cur.Kind == token.REGISTER && p.cur.Text == "S" {
				p.advance()
				if err := p.expect(token.RPAREN); err != nil {
					return nil, err
				}
				if err := p.expect(token.COMMA); err != nil {
					return nil, err
				}
				if err := p.expectRegister("Y"); err != nil {
					return nil, err
				}
				return ast.NewOperand(ast.IndirectS, width, expr), nil
			}
			if err := p.expectRegister("X"); err != nil {
				return nil, err
			}
			if err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return ast.NewOperand(ast.IndirectX, width, expr), nil
		case token.RPAREN:
			p.advance()
			if p.cur.Kind == token.COMMA {
				p.advance()
				if err := p.expectRegister("Y"); err != nil {
					return nil, err
				}
				return ast.NewOperand(ast.IndirectY, width, expr), nil
			}
			return ast.NewOperand(ast.Indirect, width, expr), nil
		}
		return nil, p.errorf("expected ',' or ')' in indirect operand, got %s", p.cur.Kind)
	}

	switch mnemonic {
	case "RMB", "SMB":
		bit, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		zp, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewOperand(ast.BitZP, ast.WidthInferred, bit, zp), nil
	case "BBR", "BBS":
		bit, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		zp, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		rel, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewOperand(ast.BitOffsZP, ast.WidthInferred, bit, zp, rel), nil
	case "MVN", "MVP":
		src, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		dst, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewOperand(ast.TwoOperands, ast.WidthInferred, src, dst), nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.COMMA {
		return ast.NewOperand(ast.Direct, width, expr), nil
	}
	p.advance()
	switch {
	case p.cur.Kind == token.REGISTER && p.cur.Text == "X":
		p.advance()
		return ast.NewOperand(ast.IndexX, width, expr), nil
	case p.cur.Kind == token.REGISTER && p.cur.Text == "Y":
		p.advance()
		return ast.NewOperand(ast.IndexY, width, expr), nil
	case p.cur.Kind == token.REGISTER && p.cur.Text == "S":
		p.advance()
		return ast.NewOperand(ast.IndexS, width, expr), nil
	}
	return nil, p.errorf("expected index register after ',', got %s", p.cur.Kind)
}

// bitWidthFromLiteral validates a `[N]` bit-width modifier's bracketed
// expression: it must be a constant literal equal to 8, 16, or 24
// (spec.md §4.2).
func bitWidthFromLiteral(e ast.Expr) (ast.BitWidth, error) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return ast.WidthInferred, fmt.Errorf("invalid bit-width specifier argument")
	}
	switch int64(lit.Value()) {
	case 8:
		return ast.Width8, nil
	case 16:
		return ast.Width16, nil
	case 24:
		return ast.Width24, nil
	}
	return ast.WidthInferred, fmt.Errorf("invalid bit-width specifier argument")
}

func (p *Parser) expectRegister(name string) error {
	if p.cur.Kind != token.REGISTER || p.cur.Text != name {
		return p.errorf("expected register %s, got %s %q", name, p.cur.Kind, p.cur.Text)
	}
	p.advance()
	return nil
}

// parseDirective parses one `.directive` statement: an expression list
// for the data pseudo-ops, or directive-specific syntax for the rest
// (spec.md §4.5-§4.7).
func (p *Parser) parseDirective(stmt *ast.Statement) (*ast.Statement, error) {
	name := p.cur.Text
	p.advance()
	stmt.Directive = name

	switch name {
	case ".INCLUDE", ".MACRO":
		// Neither leaves a statement of its own: the included tokens or
		// the recorded macro body stand in its place.
		stmt.Directive = ""
		var err error
		if name == ".INCLUDE" {
			err = p.parseInclude()
		} else {
			err = p.parseMacroDef()
		}
		if err != nil || stmt.Label != "" {
			return stmt, err
		}
		return nil, nil
	case ".ENDMACRO":
		return stmt, p.errorf(".endmacro without a matching .macro")
	case ".ALIGN":
		boundary, err := p.parseExpr()
		if err != nil {
			return stmt, err
		}
		exprs := []ast.Expr{boundary}
		if p.cur.Kind == token.COMMA {
			p.advance()
			if p.cur.Kind == token.QUERY {
				p.advance()
				stmt.AlignFillIsQuery = true
			} else {
				fill, err := p.parseExpr()
				if err != nil {
					return stmt, err
				}
				exprs = append(exprs, fill)
			}
		}
		stmt.Operand = ast.NewOperand(ast.ExpressionList, ast.WidthInferred, exprs...)
		return stmt, nil
	case ".BINARY":
		if p.cur.Kind != token.STRINGLITERAL {
			return stmt, p.errorf("expected a quoted path after .binary, got %s", p.cur.Kind)
		}
		stmt.BinaryPath = p.cur.Text
		p.advance()
		var exprs []ast.Expr
		for p.cur.Kind == token.COMMA {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return stmt, err
			}
			exprs = append(exprs, e)
		}
		stmt.Operand = ast.NewOperand(ast.ExpressionList, ast.WidthInferred, exprs...)
		return stmt, nil
	case ".BYTE", ".WORD", ".DWORD", ".LONG", ".FILL",
		".STRING", ".CSTRING", ".LSTRING", ".NSTRING", ".PSTRING":
		exprs, err := p.parseDirectiveArgs()
		if err != nil {
			return stmt, err
		}
		stmt.Operand = ast.NewOperand(ast.ExpressionList, ast.WidthInferred, exprs...)
		return stmt, nil
	case ".END",
		".M8", ".M16", ".MX8", ".MX16", ".X8", ".X16",
		".RELOCATE", ".ENDRELOCATE", ".DP", ".PRON", ".PROFF", ".STRINGIFY":
		// These carry either a single string/expression argument or none;
		// the assembler driver (internal/assemble) interprets Operand's
		// expression list together with Directive's name.
		if p.atEndOfStatement() {
			return stmt, nil
		}
		exprs, err := p.parseDirectiveArgs()
		if err != nil {
			return stmt, err
		}
		stmt.Operand = ast.NewOperand(ast.ExpressionList, ast.WidthInferred, exprs...)
		return stmt, nil
	}
	return stmt, p.errorf("unknown directive %s", name)
}

// parseDirectiveArgs reads a comma-separated expression list. A bare
// string literal (`.string "HELLO"`) expands to one literal expression
// per byte, so the same ExpressionList shape serves both data
// pseudo-ops and the string-family ones.
func (p *Parser) parseDirectiveArgs() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		if p.cur.Kind == token.STRINGLITERAL {
			for _, b := range []byte(p.cur.Text) {
				exprs = append(exprs, ast.NewLiteral(value.Value(b)))
			}
			p.advance()
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return exprs, nil
}

// parseInclude reads `.include "path"`, loads the file, rejects a
// recursive include (a file already active on the include stack), and
// splices the included file's tokens in place so the statement loop
// continues inside it before resuming the rest of this file (spec.md
// §4.4).
func (p *Parser) parseInclude() error {
	if p.cur.Kind != token.STRINGLITERAL {
		return p.errorf("expected a quoted path after .include, got %s", p.cur.Kind)
	}
	path := p.cur.Text
	line := p.cur.Line
	p.advance()
	after := p.cur

	if p.lex.ActiveFile(path) {
		return p.errorf("%s is already being included (recursive .include)", path)
	}
	file, err := source.Load(path)
	if err != nil {
		return p.errorf("cannot read included file %s: %v", path, err)
	}
	spliced := p.lex.IncludeAndProcess(file, line)
	p.pendingTokens = append(append(spliced, after), p.pendingTokens...)
	p.advance()
	return nil
}

// parseMacroDef reads `.macro NAME param, param ... .endmacro`,
// registering the body as an unexpanded token stream and promoting
// NAME to MACRO_NAME in the lexer's reserved-word table so later
// invocations are recognized (spec.md §4.6).
func (p *Parser) parseMacroDef() error {
	if p.cur.Kind != token.IDENT {
		return p.errorf("expected a macro name after .macro, got %s", p.cur.Kind)
	}
	name := p.cur.Text
	defLine := p.cur.Line
	p.advance()

	var params []string
	for !p.atEndOfStatement() {
		if p.cur.Kind != token.IDENT {
			return p.errorf("expected a parameter name, got %s", p.cur.Kind)
		}
		params = append(params, p.cur.Text)
		p.advance()
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if !p.atEndOfStatement() {
		return p.errorf("unexpected %s after macro parameter list", p.cur.Kind)
	}
	p.advance() // consume the NEWLINE ending the .macro line

	var body []token.Token
	for {
		if p.cur.Kind == token.EOF {
			return p.errorf("unterminated .macro %s: missing .endmacro", name)
		}
		if p.cur.Kind == token.DIRECTIVE && p.cur.Text == ".ENDMACRO" {
			p.advance()
			break
		}
		body = append(body, p.cur)
		p.advance()
	}

	p.macros.Define(&macro.Def{Name: name, Params: params, Body: body, DefLine: defLine})
	lexer.DefineMacro(p.lex.Reserved, name)
	return nil
}

func renderTokens(toks []token.Token) string {
	s := ""
	for i, t := range toks {
		if i > 0 {
			s += " "
		}
		s += t.Text
	}
	return s
}
