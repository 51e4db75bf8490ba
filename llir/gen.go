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
package llir

import (
	"hasselc/cerr"
	"hasselc/srctag"
	"hasselc/symtab"
	"hasselc/typedir"
	"hasselc/types"
	"hasselc/utils"
)

// genCtx carries per-function generation state: the run builder writing
// into the current FrameBlock, the function's own symbol table for
// resolving refs and minting temporaries, and the map from a function's
// symbol ref to its already-generated FrameBlock — populated in
// declaration order, since the builder requires callees to be declared
// (and therefore fully generated) before any caller that references them.
type genCtx struct {
	rb          *RunBuilder
	table       symtab.Table
	frame       *FrameBlock
	framesByRef map[types.SymbolRef]*FrameBlock
	loopAfter   []string
}

// Generate lowers every typed-IR block into an LLIR FrameBlock. Function
// blocks are lowered in declaration order — callees before callers, since a
// call site needs the callee's finalized FrameSize and Ref — and the
// anonymous top-level block, which may call any of them, after all of them.
// The returned frames keep the order of blocks.
func Generate(blocks []*typedir.Block) ([]*FrameBlock, error) {
	frames := make([]*FrameBlock, len(blocks))
	framesByRef := make(map[types.SymbolRef]*FrameBlock)

	order := make([]int, 0, len(blocks))
	for _, anonymous := range []bool{false, true} {
		for i, b := range blocks {
			if b.Anonymous == anonymous {
				order = append(order, i)
			}
		}
	}
	for _, i := range order {
		b := blocks[i]
		frame := &FrameBlock{Name: b.Name, Ref: b.Ref}
		if b.HasLoc {
			frame.HasLoc = true
			frame.Location = b.Location.Addr
		}
		ctx := &genCtx{table: b.Table, frame: frame, framesByRef: framesByRef}
		ctx.rb = NewRunBuilder(frame, b.Table)

		if err := ctx.genStmts(b.Body); err != nil {
			return nil, err
		}
		frame.FrameSize = b.Table.FrameSize()
		if b.Func != nil {
			b.Func.FrameSize = frame.FrameSize
		}
		frames[i] = frame
		framesByRef[b.Ref] = frame
	}
	return frames, nil
}

func (c *genCtx) temp(ty types.BaseType) Location {
	ref := c.table.CreateTemporary(ty)
	sym, ok := c.table.FindByRef(ref)
	if !ok || sym.VarLoc.Kind != symtab.FrameOffset {
		utils.ShouldNotReachHere()
	}
	return FrameOffset(c.frame, sym.VarLoc.Offset)
}

func (c *genCtx) locationOf(sym symtab.Symbol) Location {
	switch sym.VarLoc.Kind {
	case symtab.Global:
		return Global(sym.VarLoc.Addr)
	case symtab.FrameOffset:
		return FrameOffset(c.frame, sym.VarLoc.Offset)
	default:
		utils.ShouldNotReachHere()
		return Location{}
	}
}

func (c *genCtx) genStmts(stmts []typedir.Statement) error {
	for _, s := range stmts {
		if err := c.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *genCtx) genStmt(s typedir.Statement) error {
	switch st := s.(type) {
	case *typedir.AssignStmt:
		return c.genAssign(st)
	case *typedir.CallStmt:
		if st.Call == nil {
			return nil
		}
		_, err := c.genCall(st.Call)
		return err
	case *typedir.ConditionalStmt:
		return c.genConditional(st)
	case *typedir.WhileLoopStmt:
		return c.genWhileLoop(st)
	case *typedir.ReturnStmt:
		return c.genReturn(st)
	case *typedir.GoToStmt:
		sym, ok := c.table.FindByName(st.Name)
		if !ok {
			return &cerr.SymbolNotFound{Tag: st.SrcTag, Name: st.Name}
		}
		c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: sym.Name})
		return nil
	case *typedir.BreakStmt:
		if len(c.loopAfter) == 0 {
			return &cerr.Unsupported{Tag: st.SrcTag, Detail: "break outside of a loop"}
		}
		target := c.loopAfter[len(c.loopAfter)-1]
		c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: target})
		return nil
	case *typedir.InlineAsmStmt:
		c.rb.Append(Statement{Kind: StInlineAsm, Tag: st.SrcTag, AsmText: st.Text})
		return nil
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func (c *genCtx) genAssign(st *typedir.AssignStmt) error {
	dest, err := c.genLValue(st.Left)
	if err != nil {
		return err
	}
	rhs, err := c.genExprValue(st.Right)
	if err != nil {
		return err
	}
	if st.ValueType.Size() == 1 {
		c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: rhs, CopyDest: dest})
		return nil
	}
	c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: rhs.HighByte(), CopyDest: highByteLoc(dest)})
	c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: rhs.LowByte(), CopyDest: lowByteLoc(dest)})
	return nil
}

func (c *genCtx) genLValue(e typedir.Expr) (Location, error) {
	switch ex := e.(type) {
	case *typedir.SymbolExpr:
		sym, ok := c.table.FindByRef(ex.Ref)
		if !ok {
			return Location{}, &cerr.SymbolNotFound{Tag: ex.SrcTag}
		}
		return c.locationOf(sym), nil
	case *typedir.ArrayIndexExpr:
		return c.genArrayIndexLocation(ex)
	default:
		return Location{}, &cerr.InvalidLeftValue{Tag: e.Tag()}
	}
}

// genArrayIndexLocation implements the array-index lowering rule: a
// global array indexes directly via GlobalIndexed; a local pointer
// variable is first copied into a fresh U16 address temporary, has the
// index added in, and the result addresses memory indirectly.
func (c *genCtx) genArrayIndexLocation(ex *typedir.ArrayIndexExpr) (Location, error) {
	idxVal, err := c.genExprValue(ex.Index)
	if err != nil {
		return Location{}, err
	}
	if sym, ok := ex.Array.(*typedir.SymbolExpr); ok {
		arraySym, found := c.table.FindByRef(sym.Ref)
		if !found {
			return Location{}, &cerr.SymbolNotFound{Tag: sym.SrcTag}
		}
		if arraySym.VarLoc.Kind == symtab.Global {
			return GlobalIndexed(arraySym.VarLoc.Addr, idxVal), nil
		}
	}
	baseVal, err := c.genExprValue(ex.Array)
	if err != nil {
		return Location{}, err
	}
	addrTemp := c.temp(types.TU16)
	c.rb.Append(Statement{Kind: StCopy, Tag: ex.SrcTag, CopySrc: baseVal.HighByte(), CopyDest: highByteLoc(addrTemp)})
	c.rb.Append(Statement{Kind: StCopy, Tag: ex.SrcTag, CopySrc: baseVal.LowByte(), CopyDest: lowByteLoc(addrTemp)})
	c.emitAdd(c.rb.CurrentIndex(), StAdd, Memory(types.TU16, addrTemp, ""), c.widenU8To16(idxVal), addrTemp, ex.SrcTag)
	return FrameOffsetIndirect(c.frame, addrTemp.Offset), nil
}

func (c *genCtx) genExprValue(e typedir.Expr) (Value, error) {
	switch ex := e.(type) {
	case *typedir.NumberExpr:
		return c.genNumber(ex)
	case *typedir.SymbolExpr:
		sym, ok := c.table.FindByRef(ex.Ref)
		if !ok {
			return Value{}, &cerr.SymbolNotFound{Tag: ex.SrcTag}
		}
		return Memory(ex.Type, c.locationOf(sym), sym.Name), nil
	case *typedir.BinaryOpExpr:
		if ex.Op.IsComparison() {
			return c.genComparison(ex)
		}
		return c.genArith(ex)
	case *typedir.CallExpr:
		return c.genCall(ex)
	case *typedir.ArrayIndexExpr:
		loc, err := c.genArrayIndexLocation(ex)
		if err != nil {
			return Value{}, err
		}
		return Memory(ex.Type, loc, ""), nil
	default:
		utils.ShouldNotReachHere()
		return Value{}, nil
	}
}

func (c *genCtx) genNumber(ex *typedir.NumberExpr) (Value, error) {
	switch ex.Value.Kind() {
	case types.ValU8:
		return Immediate(types.TU8, uint16(ex.Value.U8Value())), nil
	case types.ValU16:
		return Immediate(types.TU16, ex.Value.U16Value()), nil
	case types.ArrayU8:
		addr, resolved := ex.Value.ArrayAddr()
		if resolved {
			return Immediate(types.TPointer(types.TU8), addr), nil
		}
		return Value{Kind: ValMemory, Type: types.TPointer(types.TU8), Loc: UnresolvedGlobal(ex.Value.ArraySymbol())}, nil
	default:
		utils.ShouldNotReachHere()
		return Value{}, nil
	}
}

// genArith implements the add/subtract lowering rule: a U8 destination
// emits a single op; a U16 destination widens any U8 operand and emits
// two ops, low byte first (preparing carry) then high byte (consuming
// it).
func (c *genCtx) genArith(ex *typedir.BinaryOpExpr) (Value, error) {
	destType := ex.ExprType()
	leftVal, err := c.genExprValue(ex.Left)
	if err != nil {
		return Value{}, err
	}
	rightVal, err := c.genExprValue(ex.Right)
	if err != nil {
		return Value{}, err
	}
	kind := StAdd
	if ex.Op == typedir.OpSub {
		kind = StSubtract
	}
	if destType.Size() == 2 {
		leftVal = c.widenU8To16(leftVal)
		rightVal = c.widenU8To16(rightVal)
	}
	destLoc := c.temp(destType)
	c.emitAdd(c.rb.CurrentIndex(), kind, leftVal, rightVal, destLoc, ex.SrcTag)
	return Memory(destType, destLoc, ""), nil
}

// emitAdd appends the Add/Subtract statement(s) computing left `kind`
// right into dest, into the run block at index idx, splitting into a
// carry-chained low/high byte pair when the operands are 16-bit.
func (c *genCtx) emitAdd(idx int, kind StmtKind, left, right Value, dest Location, tag srctag.Tag) {
	origCur := c.rb.CurrentIndex()
	c.rb.SetCurrent(idx)
	if left.Type.Size() == 1 && right.Type.Size() == 1 {
		carry := ClearCarry
		if kind == StSubtract {
			carry = SetCarry
		}
		c.rb.Append(Statement{Kind: kind, Tag: tag, BinOp: BinaryOpData{Left: left, Right: right, Dest: dest, Carry: carry}})
		c.rb.SetCurrent(origCur)
		return
	}
	lowCarry := ClearCarry
	if kind == StSubtract {
		lowCarry = SetCarry
	}
	c.rb.Append(Statement{Kind: kind, Tag: tag, BinOp: BinaryOpData{
		Left: left.LowByte(), Right: right.LowByte(), Dest: lowByteLoc(dest), Carry: lowCarry,
	}})
	c.rb.Append(Statement{Kind: kind, Tag: tag, BinOp: BinaryOpData{
		Left: left.HighByte(), Right: right.HighByte(), Dest: highByteLoc(dest), Carry: DontCare,
	}})
	c.rb.SetCurrent(origCur)
}

// widenU8To16 synthesizes a U16 value from a U8 one: zero in the high
// byte, the original value in the low byte. Already-16-bit values pass
// through unchanged.
func (c *genCtx) widenU8To16(v Value) Value {
	if v.Type.Size() != 1 {
		return v
	}
	t := c.temp(types.TU16)
	c.rb.Append(Statement{Kind: StCopy, CopySrc: Immediate(types.TU8, 0), CopyDest: highByteLoc(t)})
	c.rb.Append(Statement{Kind: StCopy, CopySrc: v, CopyDest: lowByteLoc(t)})
	return Memory(types.TU16, t, "")
}

// cmpParams returns the truth table entry for a comparison operator: which
// status flag decides it, whether operands must be swapped first, and
// whether the flag being set means the comparison is true.
//
//	<   carry, no swap, clear means true
//	>   carry, swap,    clear means true
//	<=  carry, swap,    set means true
//	>=  carry, no swap, set means true
//	==  zero,  no swap, set means true
//	!=  zero,  no swap, clear means true
func cmpParams(op typedir.BinOp) (flag CompareFlag, swap bool, flagTrue bool) {
	switch op {
	case typedir.OpLt:
		return FlagCarry, false, false
	case typedir.OpGt:
		return FlagCarry, true, false
	case typedir.OpLe:
		return FlagCarry, true, true
	case typedir.OpGe:
		return FlagCarry, false, true
	case typedir.OpEq:
		return FlagZero, false, true
	case typedir.OpNe:
		return FlagZero, false, false
	default:
		utils.ShouldNotReachHere()
		return
	}
}

// genComparison lowers a comparison into a compare/true/false/after block
// network and materializes the U8 0/1 result in a temporary, for use as an
// ordinary expression value.
func (c *genCtx) genComparison(ex *typedir.BinaryOpExpr) (Value, error) {
	leftVal, err := c.genExprValue(ex.Left)
	if err != nil {
		return Value{}, err
	}
	rightVal, err := c.genExprValue(ex.Right)
	if err != nil {
		return Value{}, err
	}
	size := leftVal.Type.Size()
	if rightVal.Type.Size() > size {
		size = rightVal.Type.Size()
	}

	dest := c.temp(types.TU8)
	origIdx := c.rb.CurrentIndex()
	trueIdx, trueBlk := c.rb.NewBlock()
	falseIdx, falseBlk := c.rb.NewBlock()
	afterIdx, afterBlk := c.rb.NewBlock()

	if size == 2 {
		leftVal = c.widenU8To16(leftVal)
		rightVal = c.widenU8To16(rightVal)
		c.emitU16Compare(origIdx, leftVal, rightVal, ex.Op, trueBlk.Name, falseBlk.Name)
	} else {
		c.emitU8Compare(origIdx, leftVal, rightVal, ex.Op, trueBlk.Name, falseBlk.Name)
	}

	c.rb.SetCurrent(trueIdx)
	c.rb.Append(Statement{Kind: StCopy, Tag: ex.SrcTag, CopySrc: Immediate(types.TU8, 1), CopyDest: dest})
	c.rb.Append(Statement{Kind: StGoTo, Tag: ex.SrcTag, BranchLabel: afterBlk.Name})

	c.rb.SetCurrent(falseIdx)
	c.rb.Append(Statement{Kind: StCopy, Tag: ex.SrcTag, CopySrc: Immediate(types.TU8, 0), CopyDest: dest})
	c.rb.Append(Statement{Kind: StGoTo, Tag: ex.SrcTag, BranchLabel: afterBlk.Name})

	c.rb.SetCurrent(afterIdx)
	return Memory(types.TU8, dest, ""), nil
}

// genCondBranch lowers a boolean-valued expression directly into a branch
// to one of two labels, skipping the U8-materialization genComparison
// would otherwise need when the expression only ever feeds a branch
// (Conditional and WhileLoop conditions).
func (c *genCtx) genCondBranch(cond typedir.Expr, trueLabel, falseLabel string) error {
	if bin, ok := cond.(*typedir.BinaryOpExpr); ok && bin.Op.IsComparison() {
		l, err := c.genExprValue(bin.Left)
		if err != nil {
			return err
		}
		r, err := c.genExprValue(bin.Right)
		if err != nil {
			return err
		}
		size := l.Type.Size()
		if r.Type.Size() > size {
			size = r.Type.Size()
		}
		if size == 2 {
			l = c.widenU8To16(l)
			r = c.widenU8To16(r)
			c.emitU16Compare(c.rb.CurrentIndex(), l, r, bin.Op, trueLabel, falseLabel)
		} else {
			c.emitU8Compare(c.rb.CurrentIndex(), l, r, bin.Op, trueLabel, falseLabel)
		}
		return nil
	}
	v, err := c.genExprValue(cond)
	if err != nil {
		return err
	}
	c.rb.Append(Statement{Kind: StBranchIfZero, Tag: cond.Tag(), BranchValue: v, BranchLabel: falseLabel})
	c.rb.Append(Statement{Kind: StGoTo, Tag: cond.Tag(), BranchLabel: trueLabel})
	return nil
}

func (c *genCtx) emitU8Compare(idx int, l, r Value, op typedir.BinOp, trueLabel, falseLabel string) {
	flag, swap, flagTrue := cmpParams(op)
	if swap {
		l, r = r, l
	}
	setLabel, clearLabel := trueLabel, falseLabel
	if !flagTrue {
		setLabel, clearLabel = falseLabel, trueLabel
	}
	c.rb.SetCurrent(idx)
	c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: l, CompareRight: r, CompareFlag: flag, BranchSet: setLabel, BranchClear: clearLabel})
}

// emitU16Compare lowers a 16-bit comparison into the two-stage network: a
// high-byte test first, falling through to a low-byte test when the high
// bytes don't already decide the outcome, in the same run block — no flag
// state is assumed to survive across block boundaries, since the code
// generator re-emits a fresh CMP for every CompareBranch independently.
func (c *genCtx) emitU16Compare(idx int, l, r Value, op typedir.BinOp, trueLabel, falseLabel string) {
	if op == typedir.OpEq || op == typedir.OpNe {
		highClear, lowSet, lowClear := falseLabel, trueLabel, falseLabel
		if op == typedir.OpNe {
			highClear, lowSet, lowClear = trueLabel, falseLabel, trueLabel
		}
		c.rb.SetCurrent(idx)
		c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: l.HighByte(), CompareRight: r.HighByte(), CompareFlag: FlagZero, BranchClear: highClear})
		c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: l.LowByte(), CompareRight: r.LowByte(), CompareFlag: FlagZero, BranchSet: lowSet, BranchClear: lowClear})
		return
	}

	_, swap, flagTrue := cmpParams(op) // flag is always FlagCarry for magnitude comparisons
	ll, rr := l, r
	if swap {
		ll, rr = rr, ll
	}
	setLabel, clearLabel := trueLabel, falseLabel
	if !flagTrue {
		setLabel, clearLabel = falseLabel, trueLabel
	}

	highDecideIdx, highDecideBlk := c.rb.NewBlock()
	c.rb.SetCurrent(idx)
	c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: ll.HighByte(), CompareRight: rr.HighByte(), CompareFlag: FlagZero, BranchClear: highDecideBlk.Name})
	c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: ll.LowByte(), CompareRight: rr.LowByte(), CompareFlag: FlagCarry, BranchSet: setLabel, BranchClear: clearLabel})

	c.rb.SetCurrent(highDecideIdx)
	c.rb.Append(Statement{Kind: StCompareBranch, CompareLeft: ll.HighByte(), CompareRight: rr.HighByte(), CompareFlag: FlagCarry, BranchSet: setLabel, BranchClear: clearLabel})
}

func (c *genCtx) genConditional(st *typedir.ConditionalStmt) error {
	origIdx := c.rb.CurrentIndex()
	thenIdx, thenBlk := c.rb.NewBlock()
	elseIdx, elseBlk := c.rb.NewBlock()
	afterIdx, afterBlk := c.rb.NewBlock()

	c.rb.SetCurrent(origIdx)
	if err := c.genCondBranch(st.Cond, thenBlk.Name, elseBlk.Name); err != nil {
		return err
	}

	c.rb.SetCurrent(thenIdx)
	if err := c.genStmts(st.WhenTrue); err != nil {
		return err
	}
	c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: afterBlk.Name})

	c.rb.SetCurrent(elseIdx)
	if err := c.genStmts(st.WhenFalse); err != nil {
		return err
	}
	c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: afterBlk.Name})

	c.rb.SetCurrent(afterIdx)
	return nil
}

func (c *genCtx) genWhileLoop(st *typedir.WhileLoopStmt) error {
	origIdx := c.rb.CurrentIndex()
	condIdx, condBlk := c.rb.NewBlock()
	bodyIdx, bodyBlk := c.rb.NewBlock()
	afterIdx, afterBlk := c.rb.NewBlock()

	c.rb.SetCurrent(origIdx)
	c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: condBlk.Name})

	c.rb.SetCurrent(condIdx)
	if err := c.genCondBranch(st.Cond, bodyBlk.Name, afterBlk.Name); err != nil {
		return err
	}

	c.rb.SetCurrent(bodyIdx)
	c.loopAfter = append(c.loopAfter, afterBlk.Name)
	err := c.genStmts(st.Body)
	c.loopAfter = c.loopAfter[:len(c.loopAfter)-1]
	if err != nil {
		return err
	}
	c.rb.Append(Statement{Kind: StGoTo, Tag: st.SrcTag, BranchLabel: condBlk.Name})

	c.rb.SetCurrent(afterIdx)
	return nil
}

func paramOffset(meta *symtab.FunctionMetadata, idx int) int8 {
	off := 0
	for i := 0; i < idx; i++ {
		off += meta.Params[i].Type.Size()
	}
	return int8(off)
}

// genCall lowers a call: resolve every argument against the caller's
// current (un-bumped) frame, bump the data-stack pointer by the callee's
// frame size, write each argument into the callee's own frame, jump to
// the callee, then pop the data-stack pointer back. The result, if any,
// reads from the fixed return-value slot.
func (c *genCtx) genCall(call *typedir.CallExpr) (Value, error) {
	sym, ok := c.table.FindByRef(call.Function)
	if !ok || sym.Func == nil {
		return Value{}, &cerr.SymbolNotFound{Tag: call.SrcTag}
	}
	calleeFrame, ok := c.framesByRef[call.Function]
	if !ok {
		utils.ShouldNotReachHere()
	}
	utils.Assert(len(call.Args) == len(sym.Func.Params), "call to %s passes %d args, want %d", sym.Name, len(call.Args), len(sym.Func.Params))

	argVals := make([]Value, len(call.Args))
	for i, argExpr := range call.Args {
		argVal, err := c.genExprValue(argExpr)
		if err != nil {
			return Value{}, err
		}
		argVals[i] = offsetCall(argVal, c.frame, calleeFrame)
	}

	c.rb.Append(Statement{Kind: StAddToDataStackPointer, Tag: call.SrcTag, SPOffset: SPOffset(calleeFrame.FrameSize)})

	for i, argVal := range argVals {
		param := sym.Func.Params[i]
		destLoc := FrameOffset(calleeFrame, paramOffset(sym.Func, i))
		if param.Type.Size() == 1 {
			c.rb.Append(Statement{Kind: StCopy, Tag: call.SrcTag, CopySrc: argVal, CopyDest: destLoc})
		} else {
			c.rb.Append(Statement{Kind: StCopy, Tag: call.SrcTag, CopySrc: argVal.HighByte(), CopyDest: highByteLoc(destLoc)})
			c.rb.Append(Statement{Kind: StCopy, Tag: call.SrcTag, CopySrc: argVal.LowByte(), CopyDest: lowByteLoc(destLoc)})
		}
	}

	c.rb.Append(Statement{Kind: StJumpRoutine, Tag: call.SrcTag, CallTarget: UnresolvedBlock(calleeFrame.Ref)})
	c.rb.Append(Statement{Kind: StAddToDataStackPointer, Tag: call.SrcTag, SPOffset: SPOffset(-calleeFrame.FrameSize)})

	if sym.Func.ReturnType.Kind() == types.Void {
		return Value{}, nil
	}
	return Memory(sym.Func.ReturnType, ReturnSlot, sym.Name+"#ret"), nil
}

// offsetCall rewrites a value read from the caller's own frame so it still
// resolves to the right absolute address once X addresses the data-stack
// pointer bumped for the callee's reserved space. Globals, immediates, and
// locations already relative to another frame pass through unchanged.
func offsetCall(v Value, caller, callee *FrameBlock) Value {
	if v.Kind != ValMemory || v.Loc.Kind != LocFrameOffset || v.Loc.Frame != caller {
		return v
	}
	return Value{Kind: ValMemory, Type: v.Type, Loc: FrameOffsetBeforeCall(caller, callee, v.Loc.Offset), DebugName: v.DebugName}
}

// ReturnSlot is the globally reserved return-value location every call
// writes into before returning and reads from at the call site.
var ReturnSlot = Global(0x0001)

func (c *genCtx) genReturn(st *typedir.ReturnStmt) error {
	if st.Value == nil {
		c.rb.Append(Statement{Kind: StReturn, Tag: st.SrcTag})
		return nil
	}
	v, err := c.genExprValue(st.Value)
	if err != nil {
		return err
	}
	if st.ValueType.Size() == 1 {
		c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: v, CopyDest: ReturnSlot})
	} else {
		c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: v.HighByte(), CopyDest: highByteLoc(ReturnSlot)})
		c.rb.Append(Statement{Kind: StCopy, Tag: st.SrcTag, CopySrc: v.LowByte(), CopyDest: lowByteLoc(ReturnSlot)})
	}
	c.rb.Append(Statement{Kind: StReturn, Tag: st.SrcTag})
	return nil
}
