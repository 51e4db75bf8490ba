// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"hasselc/cerr"
)

// Parser is a recursive-descent parser over a one-token lookahead stream,
// the same shape as falcon's: consume() advances, peekNext() peeks.
type Parser struct {
	lexer *Lexer

	token  TokenKind
	lexeme string
	offset int

	hasNext      bool
	nextToken    TokenKind
	nextLexeme   string
	nextOffset   int

	errors []string
}

func NewParser(source string) *Parser {
	p := &Parser{lexer: NewLexer(source)}
	p.consume()
	return p
}

func (p *Parser) consume() {
	if p.hasNext {
		p.token, p.lexeme, p.offset = p.nextToken, p.nextLexeme, p.nextOffset
		p.hasNext = false
		return
	}
	p.token, p.lexeme, p.offset = p.lexer.NextToken()
}

func (p *Parser) peekNext() TokenKind {
	if !p.hasNext {
		p.nextToken, p.nextLexeme, p.nextOffset = p.lexer.NextToken()
		p.hasNext = true
	}
	return p.nextToken
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("%d: %s", p.offset, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(tk TokenKind, what string) {
	if p.token != tk {
		p.errorf("expected %s, got %s", what, p.token)
		return
	}
	p.consume()
}

// ParseProgram parses a full Hassel source file. It returns a ParseError
// (the only error kind with no single SrcTag) aggregating every recovered
// diagnostic, or nil on success.
func ParseProgram(source string) (*Program, error) {
	p := NewParser(source)
	prog := &Program{}
	for p.token != TK_EOF {
		stmt := p.parseTopLevelStmt()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		} else if len(p.errors) > 0 {
			// avoid infinite loop on unrecoverable token
			p.consume()
		}
	}
	if len(p.errors) > 0 {
		return nil, &cerr.ParseError{Messages: p.errors}
	}
	return prog, nil
}

func (p *Parser) parseTopLevelStmt() Stmt {
	switch p.token {
	case KW_ORG:
		return p.parseOrg()
	case KW_CONST:
		return p.parseConst()
	case KW_REGISTER:
		return p.parseRegister()
	case KW_DEF:
		return p.parseFunc()
	case TK_IDENT:
		return p.parseIdentLedStmt()
	default:
		p.errorf("unexpected token %s at top level", p.token)
		return nil
	}
}

func (p *Parser) parseStmt() Stmt {
	switch p.token {
	case KW_IF:
		return p.parseIf()
	case KW_WHILE:
		return p.parseWhile()
	case KW_RETURN:
		return p.parseReturn()
	case KW_BREAK:
		return p.parseBreak()
	case KW_GOTO:
		return p.parseGoto()
	case KW_ASM:
		return p.parseInlineAsm()
	case KW_CONST:
		return p.parseConst()
	case TK_IDENT:
		return p.parseIdentLedStmt()
	default:
		p.errorf("unexpected token %s in statement", p.token)
		return nil
	}
}

func (p *Parser) parseBlockUntil(terminators ...TokenKind) []Stmt {
	var stmts []Stmt
	for !containsTok(terminators, p.token) && p.token != TK_EOF {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		} else {
			p.consume()
		}
	}
	return stmts
}

func containsTok(ts []TokenKind, t TokenKind) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func (p *Parser) parseOrg() Stmt {
	off := p.offset
	p.consume() // org
	addr := p.parseIntLiteral()
	p.expect(TK_SEMICOLON, ";")
	return &OrgStmt{base: base{off}, Addr: addr}
}

func (p *Parser) parseConst() Stmt {
	off := p.offset
	p.consume() // const
	name := p.lexeme
	p.expect(TK_IDENT, "identifier")
	p.expect(TK_COLON, ":")
	ty := p.parseType()
	p.expect(TK_ASSIGN, "=")
	init := p.parseExpr()
	p.expect(TK_SEMICOLON, ";")
	return &ConstDecl{base: base{off}, Name: name, Type: ty, Init: init}
}

func (p *Parser) parseRegister() Stmt {
	off := p.offset
	p.consume() // register
	name := p.lexeme
	p.expect(TK_IDENT, "identifier")
	p.expect(TK_COLON, ":")
	ty := p.parseType()
	p.expect(TK_AT, "@")
	addr := p.parseIntLiteral()
	p.expect(TK_SEMICOLON, ";")
	return &RegisterDecl{base: base{off}, Name: name, Type: ty, Addr: addr}
}

func (p *Parser) parseFunc() Stmt {
	off := p.offset
	p.consume() // def
	name := p.lexeme
	p.expect(TK_IDENT, "identifier")
	p.expect(TK_LPAREN, "(")
	var params []ParamDecl
	for p.token != TK_RPAREN && p.token != TK_EOF {
		pname := p.lexeme
		p.expect(TK_IDENT, "identifier")
		p.expect(TK_COLON, ":")
		pty := p.parseType()
		params = append(params, ParamDecl{Name: pname, Type: pty})
		if p.token == TK_COMMA {
			p.consume()
		}
	}
	p.expect(TK_RPAREN, ")")
	var ret *TypeExpr
	if p.token == TK_COLON {
		p.consume()
		ret = p.parseType()
	}
	body := p.parseBlockUntil(KW_END)
	p.expect(KW_END, "end")
	return &FuncDecl{base: base{off}, Name: name, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseIf() Stmt {
	off := p.offset
	p.consume() // if
	cond := p.parseExpr()
	then := p.parseBlockUntil(KW_ELSE, KW_END)
	var els []Stmt
	if p.token == KW_ELSE {
		p.consume()
		els = p.parseBlockUntil(KW_END)
	}
	p.expect(KW_END, "end")
	return &IfStmt{base: base{off}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() Stmt {
	off := p.offset
	p.consume() // while
	cond := p.parseExpr()
	body := p.parseBlockUntil(KW_END)
	p.expect(KW_END, "end")
	return &WhileStmt{base: base{off}, Cond: cond, Body: body}
}

func (p *Parser) parseReturn() Stmt {
	off := p.offset
	p.consume() // return
	var val Expr
	if p.token != TK_SEMICOLON {
		val = p.parseExpr()
	}
	p.expect(TK_SEMICOLON, ";")
	return &ReturnStmt{base: base{off}, Value: val}
}

func (p *Parser) parseBreak() Stmt {
	off := p.offset
	p.consume()
	p.expect(TK_SEMICOLON, ";")
	return &BreakStmt{base: base{off}}
}

func (p *Parser) parseGoto() Stmt {
	off := p.offset
	p.consume()
	name := p.lexeme
	p.expect(TK_IDENT, "identifier")
	p.expect(TK_SEMICOLON, ";")
	return &GoToStmt{base: base{off}, Target: name}
}

// parseInlineAsm collects the lexemes of the tokens between the braces and
// joins them with single spaces; the text is built from the lexer's token
// stream, not copied from the source. Downstream stages pass it through
// opaquely.
func (p *Parser) parseInlineAsm() Stmt {
	off := p.offset
	p.consume() // asm
	p.expect(TK_LBRACE, "{")
	var lines []string
	for p.token != TK_RBRACE && p.token != TK_EOF {
		lines = append(lines, p.lexeme)
		p.consume()
	}
	p.expect(TK_RBRACE, "}")
	return &InlineAsmStmt{base: base{off}, Text: strings.Join(lines, " ")}
}

// parseIdentLedStmt disambiguates the four statement forms that start with
// an identifier: array/variable declaration (`name:`), a call statement
// (`name(`), an index assignment (`name[`), or a plain assignment
// (`name =`).
func (p *Parser) parseIdentLedStmt() Stmt {
	off := p.offset
	name := p.lexeme
	p.expect(TK_IDENT, "identifier")

	switch p.token {
	case TK_COLON:
		p.consume()
		if p.token == TK_LBRACKET {
			return p.parseArrayDeclTail(off, name)
		}
		return p.parseVarDeclTail(off, name)
	case TK_LPAREN:
		call := p.parseCallTail(off, name)
		p.expect(TK_SEMICOLON, ";")
		return &CallStmt{base: base{off}, Call: call}
	case TK_LBRACKET:
		target := p.parseIndexTail(off, &Ident{base: base{off}, Name: name})
		p.expect(TK_ASSIGN, "=")
		val := p.parseExpr()
		p.expect(TK_SEMICOLON, ";")
		return &AssignStmt{base: base{off}, Target: target, Value: val}
	case TK_ASSIGN:
		p.consume()
		val := p.parseExpr()
		p.expect(TK_SEMICOLON, ";")
		return &AssignStmt{base: base{off}, Target: &Ident{base: base{off}, Name: name}, Value: val}
	default:
		p.errorf("unexpected token %s after identifier '%s'", p.token, name)
		return nil
	}
}

func (p *Parser) parseArrayDeclTail(off int, name string) Stmt {
	p.expect(TK_LBRACKET, "[")
	elem := p.parseType()
	p.expect(TK_SEMICOLON, ";")
	count := p.parseIntLiteral()
	p.expect(TK_RBRACKET, "]")
	p.expect(TK_AT, "@")
	addr := p.parseIntLiteral()
	p.expect(TK_SEMICOLON, ";")
	return &ArrayDecl{base: base{off}, Name: name, ElemType: elem, Count: count, Addr: addr}
}

func (p *Parser) parseVarDeclTail(off int, name string) Stmt {
	ty := p.parseType()
	var init Expr
	if p.token == TK_ASSIGN {
		p.consume()
		init = p.parseExpr()
	}
	p.expect(TK_SEMICOLON, ";")
	return &VarDecl{base: base{off}, Name: name, Type: ty, Init: init}
}

func (p *Parser) parseCallTail(off int, name string) *CallExpr {
	p.expect(TK_LPAREN, "(")
	var args []Expr
	for p.token != TK_RPAREN && p.token != TK_EOF {
		args = append(args, p.parseExpr())
		if p.token == TK_COMMA {
			p.consume()
		}
	}
	p.expect(TK_RPAREN, ")")
	return &CallExpr{base: base{off}, Name: name, Args: args}
}

func (p *Parser) parseIndexTail(off int, arr Expr) Expr {
	p.expect(TK_LBRACKET, "[")
	idx := p.parseExpr()
	p.expect(TK_RBRACKET, "]")
	return &IndexExpr{base: base{off}, Array: arr, Index: idx}
}

func (p *Parser) parseType() *TypeExpr {
	if p.token == TK_AMP {
		p.consume()
		return PointerType(p.parseType())
	}
	name := p.lexeme
	p.expect(TK_IDENT, "type name")
	return NamedType(name)
}

func (p *Parser) parseIntLiteral() int64 {
	if p.token != LIT_INT {
		p.errorf("expected integer literal, got %s", p.token)
		return 0
	}
	lex := p.lexeme
	p.consume()
	base := 10
	if strings.HasPrefix(lex, "0x") || strings.HasPrefix(lex, "0X") {
		base = 16
		lex = lex[2:]
	}
	v, err := strconv.ParseInt(lex, base, 64)
	if err != nil {
		p.errorf("invalid integer literal: %s", err)
		return 0
	}
	return v
}

// Expression grammar, lowest to highest precedence:
//
//	expr       := additive (cmpOp additive)?
//	additive   := primary (('+' | '-') primary)*
//
// Only the operators the LLIR generator (component E) knows how to lower
// are accepted: '+'/'-' arithmetic, and the six comparisons.
func (p *Parser) parseExpr() Expr {
	left := p.parseAdditive()
	if isCmpOp(p.token) {
		off := p.offset
		op := p.token
		p.consume()
		right := p.parseAdditive()
		return &BinaryExpr{base: base{off}, Op: op, Left: left, Right: right}
	}
	return left
}

func isCmpOp(tk TokenKind) bool {
	switch tk {
	case TK_EQ, TK_NE, TK_LT, TK_LE, TK_GT, TK_GE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parsePrimary()
	for p.token == TK_PLUS || p.token == TK_MINUS {
		off := p.offset
		op := p.token
		p.consume()
		right := p.parsePrimary()
		left = &BinaryExpr{base: base{off}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrimary() Expr {
	off := p.offset
	switch p.token {
	case LIT_INT:
		v := p.parseIntLiteral()
		return &IntLit{base: base{off}, Value: v}
	case TK_LPAREN:
		p.consume()
		e := p.parseExpr()
		p.expect(TK_RPAREN, ")")
		return e
	case TK_IDENT:
		name := p.lexeme
		p.consume()
		switch p.token {
		case TK_LPAREN:
			return p.parseCallTail(off, name)
		case TK_LBRACKET:
			return p.parseIndexTail(off, &Ident{base: base{off}, Name: name})
		default:
			return &Ident{base: base{off}, Name: name}
		}
	default:
		p.errorf("unexpected token %s in expression", p.token)
		return &IntLit{base: base{off}, Value: 0}
	}
}
