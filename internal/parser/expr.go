// Package parser is the recursive-descent parser: it turns a lexer's
// token stream into ast.Statement values, building expression trees
// against a live eval.Context so each node's value is folded as soon as
// it is constructed (spec.md §4.2-§4.3).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/asm6502/internal/ast"
	"github.com/xyproto/asm6502/internal/token"
	"github.com/xyproto/asm6502/internal/value"
)

// parseExpr parses a full expression, including the ternary operator at
// the lowest precedence.
func (p *Parser) parseExpr() (ast.Expr, error) {
	cond, err := p.parseLogOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.QUERY {
		return cond, nil
	}
	p.advance()
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewTernary(cond, then, els), nil
}

type binLevel struct {
	kinds []token.Kind
	ops   []ast.BinOp
	next  func(*Parser) (ast.Expr, error)
}

func (p *Parser) parseLogOr() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.DOUBLEPIPE}, []ast.BinOp{ast.LogOr}, (*Parser).parseLogXor)
}
func (p *Parser) parseLogXor() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.DOUBLECARET}, []ast.BinOp{ast.LogXor}, (*Parser).parseLogAnd)
}
func (p *Parser) parseLogAnd() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.DOUBLEAMPERSAND}, []ast.BinOp{ast.LogAnd}, (*Parser).parseBitOr)
}
func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.PIPE}, []ast.BinOp{ast.BitOr}, (*Parser).parseBitXor)
}
func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.CARET}, []ast.BinOp{ast.BitXor}, (*Parser).parseBitAnd)
}
func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Kind{token.AMPERSAND}, []ast.BinOp{ast.BitAnd}, (*Parser).parseEquality)
}
func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(
		[]token.Kind{token.DOUBLEEQUAL, token.BANGEQUAL},
		[]ast.BinOp{ast.Eq, ast.Neq},
		(*Parser).parseRelational)
}
func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinaryLevel(
		[]token.Kind{token.LANGLE, token.RANGLE, token.LTE, token.GTE, token.SPACESHIP},
		[]ast.BinOp{ast.Lt, ast.Gt, ast.Lte, ast.Gte, ast.Cmp3},
		(*Parser).parseShift)
}
func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel(
		[]token.Kind{token.LSHIFT, token.RSHIFT, token.ARSHIFT},
		[]ast.BinOp{ast.Shl, ast.Shr, ast.Ashr},
		(*Parser).parseAdditive)
}
func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(
		[]token.Kind{token.PLUS, token.HYPHEN},
		[]ast.BinOp{ast.Add, ast.Sub},
		(*Parser).parseMultiplicative)
}
func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(
		[]token.Kind{token.ASTERISK, token.SOLIDUS, token.PERCENT},
		[]ast.BinOp{ast.Mul, ast.Div, ast.Mod},
		(*Parser).parseUnary)
}

func (p *Parser) parseBinaryLevel(kinds []token.Kind, ops []ast.BinOp, next func(*Parser) (ast.Expr, error)) (ast.Expr, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		matched := -1
		for i, k := range kinds {
			if p.cur.Kind == k {
				matched = i
				break
			}
		}
		if matched < 0 {
			return left, nil
		}
		p.advance()
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(ops[matched], left, right)
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur.Kind {
	case token.HYPHEN:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Neg, x), nil
	case token.PLUS:
		p.advance()
		return p.parseUnary()
	case token.BANG:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Not, x), nil
	case token.TILDE:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.BitNot, x), nil
	case token.LANGLE:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.LowByteOf, x), nil
	case token.RANGLE:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.HighByteOf, x), nil
	case token.CARET:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.BankByteOf, x), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	switch tok.Kind {
	case token.HEXLITERAL:
		v, err := parseHex(tok.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		p.advance()
		return ast.NewLiteral(v), nil
	case token.BINLITERAL:
		v, err := parseBin(tok.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		p.advance()
		return ast.NewLiteral(v), nil
	case token.DECLITERAL:
		v, err := parseDec(tok.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		p.advance()
		return ast.NewLiteral(v), nil
	case token.CHARLITERAL:
		p.advance()
		r := []rune(tok.Text)
		if len(r) == 0 {
			return ast.NewLiteral(0), nil
		}
		return ast.NewLiteral(value.Value(r[0])), nil
	case token.STRINGLITERAL:
		p.advance()
		// A bare string in expression position folds to the value of its
		// first byte, matching the original assembler's "one-character
		// string used as a numeric literal" allowance.
		if len(tok.Text) == 0 {
			return ast.NewLiteral(0), nil
		}
		return ast.NewLiteral(value.Value(tok.Text[0])), nil
	case token.ASTERISK:
		p.advance()
		return ast.NewIdent("*", p.ctx), nil
	case token.MULTIPLUS:
		p.advance()
		return ast.NewAnonRef(p.stmtIndex, len(tok.Text), true, p.ctx), nil
	case token.MULTIHYPHEN:
		p.advance()
		return ast.NewAnonRef(p.stmtIndex, len(tok.Text), false, p.ctx), nil
	case token.IDENT, token.REGISTER:
		name := tok.Text
		p.advance()
		if p.cur.Kind == token.LPAREN {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return ast.NewFcnCall(name, args), nil
		}
		return ast.NewIdent(name, p.ctx), nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errorf("unexpected token %s in expression", tok.Kind)
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.cur.Kind == token.RPAREN {
		p.advance()
		return args, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func parseHex(text string) (value.Value, error) {
	digits := strings.ReplaceAll(strings.TrimPrefix(text, "$"), "_", "")
	n, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex literal %q", text)
	}
	return value.Value(n), nil
}

func parseBin(text string) (value.Value, error) {
	digits := strings.ReplaceAll(strings.TrimPrefix(text, "%"), "_", "")
	n, err := strconv.ParseInt(digits, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid binary literal %q", text)
	}
	return value.Value(n), nil
}

func parseDec(text string) (value.Value, error) {
	digits := strings.ReplaceAll(text, "_", "")
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal literal %q", text)
	}
	return value.Value(n), nil
}
