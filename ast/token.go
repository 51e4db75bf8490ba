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

type TokenKind int

const (
	TK_EOF TokenKind = iota
	TK_INVALID
	TK_IDENT
	LIT_INT
	LIT_STR

	KW_ORG
	KW_CONST
	KW_REGISTER
	KW_DEF
	KW_END
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_RETURN
	KW_BREAK
	KW_GOTO
	KW_ASM

	TK_LPAREN
	TK_RPAREN
	TK_LBRACE
	TK_RBRACE
	TK_LBRACKET
	TK_RBRACKET
	TK_COLON
	TK_SEMICOLON
	TK_COMMA
	TK_ASSIGN
	TK_AT
	TK_AMP

	TK_PLUS
	TK_MINUS
	TK_EQ
	TK_NE
	TK_LT
	TK_LE
	TK_GT
	TK_GE
)

var Keywords = map[string]TokenKind{
	"org":      KW_ORG,
	"const":    KW_CONST,
	"register": KW_REGISTER,
	"def":      KW_DEF,
	"end":      KW_END,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"return":   KW_RETURN,
	"break":    KW_BREAK,
	"goto":     KW_GOTO,
	"asm":      KW_ASM,
}

func (k TokenKind) String() string {
	switch k {
	case TK_EOF:
		return "EOF"
	case TK_IDENT:
		return "IDENT"
	case LIT_INT:
		return "INT"
	case LIT_STR:
		return "STRING"
	default:
		for name, tk := range Keywords {
			if tk == k {
				return name
			}
		}
		return "token"
	}
}
