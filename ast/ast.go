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

// Package ast holds Hassel's untyped syntax tree plus the lexer and parser
// that build it. This layer is an external collaborator to the compiler
// core (the typed IR builder is the first stage that belongs to the core)
// but is included so the pipeline can be exercised end to end from source
// text.
package ast

import "hasselc/types"

// TypeExpr is a not-yet-resolved type written in source: a base type name
// or a pointer to another TypeExpr.
type TypeExpr struct {
	Pointee *TypeExpr
	Name    string // "u8", "u16", "bool", "void"; empty if Pointee != nil
}

func NamedType(name string) *TypeExpr { return &TypeExpr{Name: name} }
func PointerType(to *TypeExpr) *TypeExpr { return &TypeExpr{Pointee: to} }

// Resolve converts a TypeExpr into a types.BaseType.
func (t *TypeExpr) Resolve() (types.BaseType, bool) {
	if t.Pointee != nil {
		inner, ok := t.Pointee.Resolve()
		if !ok {
			return types.BaseType{}, false
		}
		return types.TPointer(inner), true
	}
	switch t.Name {
	case "u8":
		return types.TU8, true
	case "u16":
		return types.TU16, true
	case "bool":
		return types.TBool, true
	case "void":
		return types.TVoid, true
	default:
		return types.BaseType{}, false
	}
}

// Node is implemented by every AST statement and expression; Pos reports
// the byte offset the node's leading token began at.
type Node interface {
	Pos() int
}

type base struct{ Offset int }

func (b base) Pos() int { return b.Offset }

// Expr is any AST expression.
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal; its value is not yet bounds-checked or
// typed against a destination.
type IntLit struct {
	base
	Value int64
}

// Ident references a named symbol: a variable, constant, or function.
type Ident struct {
	base
	Name string
}

// BinaryExpr covers both arithmetic (+, -) and comparison (==, !=, <, <=,
// >, >=) operators; the IR builder dispatches on Op.
type BinaryExpr struct {
	base
	Op          TokenKind
	Left, Right Expr
}

// IndexExpr is array indexing: Array[Index].
type IndexExpr struct {
	base
	Array Expr
	Index Expr
}

// CallExpr is a function call used as an expression (its value is the
// callee's return value).
type CallExpr struct {
	base
	Name string
	Args []Expr
}

func (*IntLit) exprNode()     {}
func (*Ident) exprNode()      {}
func (*BinaryExpr) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}

// Stmt is any AST statement.
type Stmt interface {
	Node
	stmtNode()
}

// OrgStmt is the `org ADDR;` directive that pins the next declaration's
// location.
type OrgStmt struct {
	base
	Addr int64
}

// ConstDecl declares a compile-time constant: `const NAME: TYPE = expr;`.
type ConstDecl struct {
	base
	Name string
	Type *TypeExpr
	Init Expr
}

// RegisterDecl declares a memory-mapped variable with no initializer:
// `register NAME: TYPE @ ADDR;`.
type RegisterDecl struct {
	base
	Name string
	Type *TypeExpr
	Addr int64
}

// ArrayDecl declares a fixed-size, address-pinned array:
// `NAME: [TYPE; N] @ ADDR;`.
type ArrayDecl struct {
	base
	Name     string
	ElemType *TypeExpr
	Count    int64
	Addr     int64
}

// VarDecl declares a local (frame-allocated) variable, optionally with an
// initializer: `NAME: TYPE [= expr];`.
type VarDecl struct {
	base
	Name string
	Type *TypeExpr
	Init Expr // nil if no initializer
}

// ParamDecl is one function parameter: `NAME: TYPE`.
type ParamDecl struct {
	Name string
	Type *TypeExpr
}

// FuncDecl declares a function: `def NAME(params): RETTYPE stmt* end`.
type FuncDecl struct {
	base
	Name       string
	Params     []ParamDecl
	ReturnType *TypeExpr // nil means void
	Body       []Stmt
}

// AssignStmt is `target = expr;`, where target is an Ident or IndexExpr.
type AssignStmt struct {
	base
	Target Expr
	Value  Expr
}

// CallStmt is a function call used as a statement, discarding any return
// value.
type CallStmt struct {
	base
	Call *CallExpr
}

// IfStmt is `if cond stmt* [else stmt*] end`.
type IfStmt struct {
	base
	Cond   Expr
	Then   []Stmt
	Else   []Stmt // nil if no else clause
}

// WhileStmt is `while cond stmt* end`.
type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	base
	Value Expr // nil for a bare `return;`
}

// BreakStmt is `break;`, valid only inside a WhileStmt's body.
type BreakStmt struct {
	base
}

// GoToStmt is `goto NAME;`, jumping to a named block.
type GoToStmt struct {
	base
	Target string
}

// InlineAsmStmt is `asm { ... }`, passed through opaquely to code
// generation.
type InlineAsmStmt struct {
	base
	Text string
}

func (*OrgStmt) stmtNode()       {}
func (*ConstDecl) stmtNode()     {}
func (*RegisterDecl) stmtNode()  {}
func (*ArrayDecl) stmtNode()     {}
func (*VarDecl) stmtNode()       {}
func (*FuncDecl) stmtNode()      {}
func (*AssignStmt) stmtNode()    {}
func (*CallStmt) stmtNode()      {}
func (*IfStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()    {}
func (*BreakStmt) stmtNode()     {}
func (*GoToStmt) stmtNode()      {}
func (*InlineAsmStmt) stmtNode() {}

// Program is the root of the parsed syntax tree: a flat list of top-level
// statements, exactly as the IR builder's anonymous top-level block
// expects to walk them.
type Program struct {
	Stmts []Stmt
}
