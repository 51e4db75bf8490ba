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
package typedir

import (
	"hasselc/ast"
	"hasselc/cerr"
	"hasselc/srctag"
	"hasselc/symtab"
	"hasselc/types"
)

// Builder performs the single top-down walk of the AST (component C),
// resolving symbol refs and producing typed-IR Blocks whose expression
// type slots are still open; the Checker (component D) fills them in.
//
// Functions must be declared before any call that references them: the
// walk is single-pass, so there is no forward-declaration step.
type Builder struct {
	gen    *symtab.HandleGenerator
	global *symtab.DefaultTable
	blocks []*Block
	loopDepth int
}

func NewBuilder() *Builder {
	gen := symtab.NewHandleGenerator()
	return &Builder{
		gen:    gen,
		global: symtab.NewDefaultTable(gen),
	}
}

// Build walks prog and returns the completed list of blocks: the anonymous
// top-level block first, then one block per declared function in
// declaration order.
func Build(prog *ast.Program) ([]*Block, symtab.Table, error) {
	b := NewBuilder()
	name, ref := b.global.NewBlockName()
	top := &Block{Name: name, Ref: ref, Table: b.global, Anonymous: true}
	b.blocks = append(b.blocks, top)

	for _, s := range prog.Stmts {
		if err := b.buildTopLevel(s, top); err != nil {
			return nil, nil, err
		}
	}
	return b.blocks, b.global, nil
}

func tag(n ast.Node) srctag.Tag { return srctag.New(n.Pos()) }

func (b *Builder) buildTopLevel(s ast.Stmt, cur *Block) error {
	switch st := s.(type) {
	case *ast.OrgStmt:
		if st.Addr < 0x200 || st.Addr > 0xFFFF {
			return &cerr.OrgOutOfRange{Tag: tag(st)}
		}
		cur.Location = symtab.NewGlobal(uint16(st.Addr))
		cur.HasLoc = true
		return nil

	case *ast.ConstDecl:
		return b.buildConst(st, cur.Table)

	case *ast.RegisterDecl:
		return b.buildRegister(st, cur.Table)

	case *ast.ArrayDecl:
		return b.buildArray(st, cur.Table)

	case *ast.FuncDecl:
		return b.buildFunc(st, cur)

	case *ast.VarDecl:
		stmt, err := b.buildVarDecl(st, cur.Table)
		if err != nil {
			return err
		}
		if stmt != nil {
			cur.Body = append(cur.Body, stmt)
		}
		return nil

	default:
		stmt, err := b.buildStmt(s, cur.Table)
		if err != nil {
			return err
		}
		cur.Body = append(cur.Body, stmt)
		return nil
	}
}

func (b *Builder) buildConst(st *ast.ConstDecl, table symtab.Table) error {
	ty, ok := st.Type.Resolve()
	if !ok {
		return &cerr.TypeError{Tag: tag(st), Expected: "known type", Actual: "unknown"}
	}
	if ty.Kind() == types.Void {
		return &cerr.ConstCantBeVoid{Tag: tag(st)}
	}
	val, err := foldConst(st.Init, ty, table)
	if err != nil {
		return err
	}
	if _, err := table.InsertConstant(st.Name, val); err != nil {
		return &cerr.DuplicateSymbol{Tag: tag(st), Name: st.Name}
	}
	return nil
}

func (b *Builder) buildRegister(st *ast.RegisterDecl, table symtab.Table) error {
	ty, ok := st.Type.Resolve()
	if !ok {
		return &cerr.TypeError{Tag: tag(st), Expected: "known type", Actual: "unknown"}
	}
	if st.Addr < 0 || st.Addr > 0xFFFF {
		return &cerr.OutOfBounds{Tag: tag(st), Value: int32(st.Addr), Min: 0, Max: 0xFFFF}
	}
	loc := symtab.NewGlobal(uint16(st.Addr))
	if _, err := table.InsertVariable(st.Name, ty, loc); err != nil {
		return &cerr.DuplicateSymbol{Tag: tag(st), Name: st.Name}
	}
	return nil
}

func (b *Builder) buildArray(st *ast.ArrayDecl, table symtab.Table) error {
	if st.Addr < 0 || st.Addr > 0xFFFF {
		return &cerr.OutOfBounds{Tag: tag(st), Value: int32(st.Addr), Min: 0, Max: 0xFFFF}
	}
	// Arrays are modeled as a Pointer(U8) variable pinned at a fixed
	// address; Count is purely informational bookkeeping for the caller's
	// memory layout, since BaseType has no dedicated array variant.
	loc := symtab.NewGlobal(uint16(st.Addr))
	if _, err := table.InsertVariable(st.Name, types.TPointer(types.TU8), loc); err != nil {
		return &cerr.DuplicateSymbol{Tag: tag(st), Name: st.Name}
	}
	return nil
}

func (b *Builder) buildVarDecl(st *ast.VarDecl, table symtab.Table) (Statement, error) {
	ty, ok := st.Type.Resolve()
	if !ok {
		return nil, &cerr.TypeError{Tag: tag(st), Expected: "known type", Actual: "unknown"}
	}
	off := table.NextFrameOffset(ty.Size())
	ref, err := table.InsertVariable(st.Name, ty, symtab.NewFrameOffset(off))
	if err != nil {
		return nil, &cerr.DuplicateSymbol{Tag: tag(st), Name: st.Name}
	}
	if st.Init == nil {
		return nil, nil
	}
	rhs, err := b.buildExpr(st.Init, table)
	if err != nil {
		return nil, err
	}
	lhs := &SymbolExpr{exprBase: exprBase{SrcTag: tag(st)}, Ref: ref}
	return &AssignStmt{stmtBase: stmtBase{tag(st)}, Left: lhs, Right: rhs, ValueType: ty}, nil
}

func (b *Builder) buildFunc(st *ast.FuncDecl, top *Block) error {
	var loc symtab.Location
	hasLoc := false
	if top.Anonymous && len(top.Body) == 0 && top.HasLoc {
		loc = top.Location
		hasLoc = true
		top.HasLoc = false
	}

	retType := types.TVoid
	if st.ReturnType != nil {
		rt, ok := st.ReturnType.Resolve()
		if !ok {
			return &cerr.TypeError{Tag: tag(st), Expected: "known type", Actual: "unknown"}
		}
		retType = rt
	}

	childTable := symtab.NewParentedTable(b.gen, top.Table)
	var params []symtab.Param
	for _, p := range st.Params {
		pty, ok := p.Type.Resolve()
		if !ok {
			return &cerr.TypeError{Tag: tag(st), Expected: "known type", Actual: "unknown"}
		}
		off := childTable.NextFrameOffset(pty.Size())
		if _, err := childTable.InsertVariable(p.Name, pty, symtab.NewFrameOffset(off)); err != nil {
			return &cerr.DuplicateSymbol{Tag: tag(st), Name: p.Name}
		}
		params = append(params, symtab.Param{Name: p.Name, Type: pty})
	}

	meta := &symtab.FunctionMetadata{Params: params, ReturnType: retType}
	ref, err := top.Table.InsertFunction(st.Name, meta)
	if err != nil {
		return &cerr.DuplicateSymbol{Tag: tag(st), Name: st.Name}
	}

	fnBlock := &Block{Name: st.Name, Ref: ref, Table: childTable, Func: meta, Location: loc, HasLoc: hasLoc}
	for _, s := range st.Body {
		stmt, err := b.buildStmt(s, childTable)
		if err != nil {
			return err
		}
		fnBlock.Body = append(fnBlock.Body, stmt)
	}
	meta.FrameSize = childTable.FrameSize()
	b.blocks = append(b.blocks, fnBlock)
	return nil
}

func (b *Builder) buildStmt(s ast.Stmt, table symtab.Table) (Statement, error) {
	switch st := s.(type) {
	case *ast.VarDecl:
		stmt, err := b.buildVarDecl(st, table)
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			return &CallStmt{stmtBase: stmtBase{tag(st)}, Call: nil}, nil
		}
		return stmt, nil

	case *ast.ConstDecl:
		if err := b.buildConst(st, table); err != nil {
			return nil, err
		}
		return &CallStmt{stmtBase: stmtBase{tag(st)}, Call: nil}, nil

	case *ast.AssignStmt:
		return b.buildAssign(st, table)

	case *ast.CallStmt:
		call, err := b.buildCallExpr(st.Call, table)
		if err != nil {
			return nil, err
		}
		return &CallStmt{stmtBase: stmtBase{tag(st)}, Call: call}, nil

	case *ast.IfStmt:
		cond, err := b.buildExpr(st.Cond, table)
		if err != nil {
			return nil, err
		}
		whenTrue, err := b.buildStmts(st.Then, table)
		if err != nil {
			return nil, err
		}
		whenFalse, err := b.buildStmts(st.Else, table)
		if err != nil {
			return nil, err
		}
		return &ConditionalStmt{stmtBase: stmtBase{tag(st)}, Cond: cond, WhenTrue: whenTrue, WhenFalse: whenFalse}, nil

	case *ast.WhileStmt:
		cond, err := b.buildExpr(st.Cond, table)
		if err != nil {
			return nil, err
		}
		b.loopDepth++
		body, err := b.buildStmts(st.Body, table)
		b.loopDepth--
		if err != nil {
			return nil, err
		}
		return &WhileLoopStmt{stmtBase: stmtBase{tag(st)}, Cond: cond, Body: body}, nil

	case *ast.ReturnStmt:
		if st.Value == nil {
			return &ReturnStmt{stmtBase: stmtBase{tag(st)}}, nil
		}
		val, err := b.buildExpr(st.Value, table)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{stmtBase: stmtBase{tag(st)}, Value: val}, nil

	case *ast.BreakStmt:
		if b.loopDepth == 0 {
			return nil, &cerr.Unsupported{Tag: tag(st), Detail: "break outside of a loop"}
		}
		return &BreakStmt{stmtBase: stmtBase{tag(st)}}, nil

	case *ast.GoToStmt:
		return &GoToStmt{stmtBase: stmtBase{tag(st)}, Name: st.Target}, nil

	case *ast.InlineAsmStmt:
		return &InlineAsmStmt{stmtBase: stmtBase{tag(st)}, Text: st.Text}, nil

	default:
		return nil, &cerr.Unsupported{Tag: tag(s), Detail: "unrecognized statement"}
	}
}

func (b *Builder) buildStmts(stmts []ast.Stmt, table symtab.Table) ([]Statement, error) {
	var out []Statement
	for _, s := range stmts {
		st, err := b.buildStmt(s, table)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (b *Builder) buildAssign(st *ast.AssignStmt, table symtab.Table) (Statement, error) {
	lhs, err := b.buildLValue(st.Target, table)
	if err != nil {
		return nil, err
	}
	rhs, err := b.buildExpr(st.Value, table)
	if err != nil {
		return nil, err
	}
	return &AssignStmt{stmtBase: stmtBase{tag(st)}, Left: lhs, Right: rhs, ValueType: lhs.ExprType()}, nil
}

func (b *Builder) buildLValue(e ast.Expr, table symtab.Table) (Expr, error) {
	switch ex := e.(type) {
	case *ast.Ident:
		sym, ok := table.FindByName(ex.Name)
		if !ok || sym.Kind != symtab.SymVariable {
			return nil, &cerr.SymbolNotFound{Tag: tag(ex), Name: ex.Name}
		}
		se := &SymbolExpr{exprBase: exprBase{SrcTag: tag(ex)}, Ref: sym.Ref}
		se.setType(sym.VarType)
		return se, nil
	case *ast.IndexExpr:
		arr, err := b.buildExpr(ex.Array, table)
		if err != nil {
			return nil, err
		}
		idx, err := b.buildExpr(ex.Index, table)
		if err != nil {
			return nil, err
		}
		ai := &ArrayIndexExpr{exprBase: exprBase{SrcTag: tag(ex)}, Array: arr, Index: idx}
		if arr.ExprType().Kind() == types.Pointer {
			ai.setType(arr.ExprType().Pointee())
		}
		return ai, nil
	default:
		return nil, &cerr.InvalidLeftValue{Tag: tag(e)}
	}
}

func (b *Builder) buildExpr(e ast.Expr, table symtab.Table) (Expr, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		return &NumberExpr{exprBase: exprBase{SrcTag: tag(ex)}, Value: types.NewUnresolvedInt(int32(ex.Value))}, nil

	case *ast.Ident:
		sym, ok := table.FindByName(ex.Name)
		if !ok {
			return nil, &cerr.SymbolNotFound{Tag: tag(ex), Name: ex.Name}
		}
		switch sym.Kind {
		case symtab.SymVariable:
			se := &SymbolExpr{exprBase: exprBase{SrcTag: tag(ex)}, Ref: sym.Ref}
			se.setType(sym.VarType)
			return se, nil
		case symtab.SymConstant:
			ne := &NumberExpr{exprBase: exprBase{SrcTag: tag(ex)}, Value: sym.Constant}
			ne.setType(sym.Constant.Type())
			return ne, nil
		default:
			return nil, &cerr.SymbolNotFound{Tag: tag(ex), Name: ex.Name}
		}

	case *ast.BinaryExpr:
		left, err := b.buildExpr(ex.Left, table)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(ex.Right, table)
		if err != nil {
			return nil, err
		}
		op, err := translateOp(ex.Op)
		if err != nil {
			return nil, err
		}
		return &BinaryOpExpr{exprBase: exprBase{SrcTag: tag(ex)}, Op: op, Left: left, Right: right}, nil

	case *ast.IndexExpr:
		arr, err := b.buildExpr(ex.Array, table)
		if err != nil {
			return nil, err
		}
		idx, err := b.buildExpr(ex.Index, table)
		if err != nil {
			return nil, err
		}
		ai := &ArrayIndexExpr{exprBase: exprBase{SrcTag: tag(ex)}, Array: arr, Index: idx}
		if arr.ExprType().Kind() == types.Pointer {
			ai.setType(arr.ExprType().Pointee())
		}
		return ai, nil

	case *ast.CallExpr:
		return b.buildCallExpr(ex, table)

	default:
		return nil, &cerr.Unsupported{Tag: tag(e), Detail: "unrecognized expression"}
	}
}

func (b *Builder) buildCallExpr(ex *ast.CallExpr, table symtab.Table) (*CallExpr, error) {
	sym, ok := table.FindByName(ex.Name)
	if !ok || sym.Kind != symtab.SymFunction {
		return nil, &cerr.SymbolNotFound{Tag: tag(ex), Name: ex.Name}
	}
	if len(ex.Args) != len(sym.Func.Params) {
		return nil, &cerr.ExpectedNArgumentsGotM{Tag: tag(ex), Name: ex.Name, Expected: len(sym.Func.Params), Actual: len(ex.Args)}
	}
	var args []Expr
	for _, a := range ex.Args {
		ae, err := b.buildExpr(a, table)
		if err != nil {
			return nil, err
		}
		args = append(args, ae)
	}
	call := &CallExpr{exprBase: exprBase{SrcTag: tag(ex)}, Function: sym.Ref, Args: args}
	call.setType(sym.Func.ReturnType)
	return call, nil
}

func translateOp(tk ast.TokenKind) (BinOp, error) {
	switch tk {
	case ast.TK_PLUS:
		return OpAdd, nil
	case ast.TK_MINUS:
		return OpSub, nil
	case ast.TK_EQ:
		return OpEq, nil
	case ast.TK_NE:
		return OpNe, nil
	case ast.TK_LT:
		return OpLt, nil
	case ast.TK_LE:
		return OpLe, nil
	case ast.TK_GT:
		return OpGt, nil
	case ast.TK_GE:
		return OpGe, nil
	default:
		return 0, &cerr.Unsupported{Detail: "unsupported operator"}
	}
}
