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

// Package llir is the register-less, stack-frame-addressed low-level IR
// (components E and F): the generator lowers typed IR into straight-line
// run blocks, and the optimizer fuses op-then-copy pairs to the same
// fixpoint either pass would reach alone.
package llir

import (
	"fmt"

	"hasselc/srctag"
	"hasselc/types"
)

// LocationKind discriminates Location's variants.
type LocationKind int

const (
	LocDataStackOffset LocationKind = iota
	LocFrameOffset
	LocFrameOffsetIndirect
	LocFrameOffsetBeforeCall
	LocGlobal
	LocGlobalIndexed
	LocUnresolvedGlobal
	LocUnresolvedGlobalIndexed
	LocUnresolvedGlobalLowByte
	LocUnresolvedGlobalHighByte
	LocUnresolvedBlock
)

// Location is where an LLIR Value lives or a Statement targets.
type Location struct {
	Kind LocationKind

	Offset int8 // DataStackOffset, FrameOffset*

	Frame        *FrameBlock // FrameOffset, FrameOffsetIndirect
	OriginalFrame *FrameBlock // FrameOffsetBeforeCall: the frame the offset is relative to
	CallingFrame  *FrameBlock // FrameOffsetBeforeCall: the frame being called into

	Addr uint16 // Global, GlobalIndexed
	// Index is a pointer (not a value) to break the Location<->Value
	// structural cycle: Value itself embeds a Location.
	Index *Value // GlobalIndexed, UnresolvedGlobalIndexed (an index Value, usually a register-sized read)

	Symbol types.SymbolRef // UnresolvedGlobal*, UnresolvedBlock
}

func DataStackOffset(off int8) Location {
	return Location{Kind: LocDataStackOffset, Offset: off}
}

func FrameOffset(frame *FrameBlock, off int8) Location {
	return Location{Kind: LocFrameOffset, Frame: frame, Offset: off}
}

func FrameOffsetIndirect(frame *FrameBlock, off int8) Location {
	return Location{Kind: LocFrameOffsetIndirect, Frame: frame, Offset: off}
}

func FrameOffsetBeforeCall(original, calling *FrameBlock, off int8) Location {
	return Location{Kind: LocFrameOffsetBeforeCall, OriginalFrame: original, CallingFrame: calling, Offset: off}
}

func Global(addr uint16) Location {
	return Location{Kind: LocGlobal, Addr: addr}
}

func GlobalIndexed(addr uint16, index Value) Location {
	return Location{Kind: LocGlobalIndexed, Addr: addr, Index: &index}
}

func UnresolvedGlobal(sym types.SymbolRef) Location {
	return Location{Kind: LocUnresolvedGlobal, Symbol: sym}
}

func UnresolvedGlobalIndexed(sym types.SymbolRef, index Value) Location {
	return Location{Kind: LocUnresolvedGlobalIndexed, Symbol: sym, Index: &index}
}

func UnresolvedGlobalLowByte(sym types.SymbolRef) Location {
	return Location{Kind: LocUnresolvedGlobalLowByte, Symbol: sym}
}

func UnresolvedGlobalHighByte(sym types.SymbolRef) Location {
	return Location{Kind: LocUnresolvedGlobalHighByte, Symbol: sym}
}

func UnresolvedBlock(sym types.SymbolRef) Location {
	return Location{Kind: LocUnresolvedBlock, Symbol: sym}
}

func (l Location) Equal(o Location) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case LocDataStackOffset:
		return l.Offset == o.Offset
	case LocFrameOffset, LocFrameOffsetIndirect:
		return l.Frame == o.Frame && l.Offset == o.Offset
	case LocFrameOffsetBeforeCall:
		return l.OriginalFrame == o.OriginalFrame && l.CallingFrame == o.CallingFrame && l.Offset == o.Offset
	case LocGlobal:
		return l.Addr == o.Addr
	case LocGlobalIndexed:
		return l.Addr == o.Addr && l.Index.Equal(*o.Index)
	case LocUnresolvedGlobal, LocUnresolvedGlobalLowByte, LocUnresolvedGlobalHighByte, LocUnresolvedBlock:
		return l.Symbol == o.Symbol
	case LocUnresolvedGlobalIndexed:
		return l.Symbol == o.Symbol && l.Index.Equal(*o.Index)
	default:
		return false
	}
}

func (l Location) String() string {
	switch l.Kind {
	case LocDataStackOffset:
		return fmt.Sprintf("dsp+%d", l.Offset)
	case LocFrameOffset:
		return fmt.Sprintf("frame[%s]+%d", l.Frame.Name, l.Offset)
	case LocFrameOffsetIndirect:
		return fmt.Sprintf("*frame[%s]+%d", l.Frame.Name, l.Offset)
	case LocFrameOffsetBeforeCall:
		return fmt.Sprintf("frame[%s]+%d (before call into %s)", l.OriginalFrame.Name, l.Offset, l.CallingFrame.Name)
	case LocGlobal:
		return fmt.Sprintf("$%04X", l.Addr)
	case LocGlobalIndexed:
		return fmt.Sprintf("$%04X[%s]", l.Addr, l.Index.String())
	case LocUnresolvedGlobal:
		return fmt.Sprintf("sym(%d)", l.Symbol)
	case LocUnresolvedGlobalIndexed:
		return fmt.Sprintf("sym(%d)[%s]", l.Symbol, l.Index.String())
	case LocUnresolvedGlobalLowByte:
		return fmt.Sprintf("<sym(%d)", l.Symbol)
	case LocUnresolvedGlobalHighByte:
		return fmt.Sprintf(">sym(%d)", l.Symbol)
	case LocUnresolvedBlock:
		return fmt.Sprintf("block(%d)", l.Symbol)
	default:
		return "<invalid location>"
	}
}

// ValueKind discriminates Value's variants.
type ValueKind int

const (
	ValImmediate ValueKind = iota
	ValMemory
)

// Value is an LLIR operand: either an immediate constant of a known type,
// or a memory read at a Location.
type Value struct {
	Kind      ValueKind
	Type      types.BaseType
	Immediate uint16
	Loc       Location
	DebugName string
}

func Immediate(ty types.BaseType, v uint16) Value {
	return Value{Kind: ValImmediate, Type: ty, Immediate: v}
}

func Memory(ty types.BaseType, loc Location, debugName string) Value {
	return Value{Kind: ValMemory, Type: ty, Loc: loc, DebugName: debugName}
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || !v.Type.Equal(o.Type) {
		return false
	}
	if v.Kind == ValImmediate {
		return v.Immediate == o.Immediate
	}
	return v.Loc.Equal(o.Loc)
}

func (v Value) String() string {
	if v.Kind == ValImmediate {
		return fmt.Sprintf("#%d", v.Immediate)
	}
	if v.DebugName != "" {
		return fmt.Sprintf("%s(%s)", v.DebugName, v.Loc)
	}
	return v.Loc.String()
}

// HighByte and LowByte decompose a 16-bit value into its two 8-bit halves
// in little-endian layout; only valid for U16/Pointer-typed values.
func (v Value) HighByte() Value {
	if v.Kind == ValImmediate {
		return Immediate(types.TU8, (v.Immediate>>8)&0xFF)
	}
	return Value{Kind: ValMemory, Type: types.TU8, Loc: highByteLoc(v.Loc), DebugName: v.DebugName}
}

func (v Value) LowByte() Value {
	if v.Kind == ValImmediate {
		return Immediate(types.TU8, v.Immediate&0xFF)
	}
	return Value{Kind: ValMemory, Type: types.TU8, Loc: lowByteLoc(v.Loc), DebugName: v.DebugName}
}

func highByteLoc(l Location) Location {
	switch l.Kind {
	case LocFrameOffset:
		return FrameOffset(l.Frame, l.Offset+1)
	case LocFrameOffsetIndirect:
		return FrameOffsetIndirect(l.Frame, l.Offset+1)
	case LocFrameOffsetBeforeCall:
		return FrameOffsetBeforeCall(l.OriginalFrame, l.CallingFrame, l.Offset+1)
	case LocGlobal:
		return Global(l.Addr + 1)
	case LocUnresolvedGlobal:
		return UnresolvedGlobalHighByte(l.Symbol)
	case LocDataStackOffset:
		return DataStackOffset(l.Offset + 1)
	default:
		return l
	}
}

func lowByteLoc(l Location) Location {
	switch l.Kind {
	case LocUnresolvedGlobal:
		return UnresolvedGlobalLowByte(l.Symbol)
	default:
		return l
	}
}

// CarryMode encodes whether an Add/Subtract must first prepare carry (CLC
// before ADC, SEC before SBC) or is a continuation consuming carry left
// behind by a prior low-byte operation.
type CarryMode int

const (
	ClearCarry CarryMode = iota
	SetCarry
	DontCare
)

// CompareFlag selects which status flag a CompareBranch tests.
type CompareFlag int

const (
	FlagZero CompareFlag = iota
	FlagCarry
)

// BinaryOpData is the payload shared by Add/Subtract/Compare* statements.
type BinaryOpData struct {
	Left, Right Value
	Dest        Location
	Carry       CarryMode
}

// SPOffset is a signed byte added to the data-stack pointer to push or pop
// a frame.
type SPOffset int8

// StmtKind discriminates Statement's variants.
type StmtKind int

const (
	StAdd StmtKind = iota
	StSubtract
	StCompareEq
	StCompareNotEq
	StCompareLt
	StCompareGte
	StAddToDataStackPointer
	StBranchIfZero
	StCompareBranch
	StCopy
	StGoTo
	StInlineAsm
	StJumpRoutine
	StReturn
)

// Statement is one LLIR instruction inside a RunBlock.
type Statement struct {
	Kind StmtKind
	Tag  srctag.Tag

	BinOp BinaryOpData // Add, Subtract, Compare*

	SPOffset SPOffset // AddToDataStackPointer

	BranchValue Value  // BranchIfZero
	BranchLabel string // BranchIfZero, GoTo

	CompareLeft, CompareRight Value        // CompareBranch
	CompareFlag               CompareFlag  // CompareBranch
	BranchSet, BranchClear    string       // CompareBranch: target labels ("" if absent)

	CopySrc  Value    // Copy
	CopyDest Location // Copy

	AsmText string // InlineAsm

	CallTarget Location // JumpRoutine
}

// IsBranch reports whether the statement is a control transfer
// (BranchIfZero, GoTo, JumpRoutine or Return). The LLIR optimizer does not
// split run blocks at these statements; it scans each run block whole.
func (s Statement) IsBranch() bool {
	switch s.Kind {
	case StBranchIfZero, StGoTo, StJumpRoutine, StReturn:
		return true
	default:
		return false
	}
}

func (s Statement) String() string {
	switch s.Kind {
	case StAdd:
		return fmt.Sprintf("add %s, %s -> %s", s.BinOp.Left, s.BinOp.Right, s.BinOp.Dest)
	case StSubtract:
		return fmt.Sprintf("sub %s, %s -> %s", s.BinOp.Left, s.BinOp.Right, s.BinOp.Dest)
	case StCompareEq, StCompareNotEq, StCompareLt, StCompareGte:
		return fmt.Sprintf("cmp(%d) %s, %s -> %s", s.Kind, s.BinOp.Left, s.BinOp.Right, s.BinOp.Dest)
	case StAddToDataStackPointer:
		return fmt.Sprintf("dsp += %d", s.SPOffset)
	case StBranchIfZero:
		return fmt.Sprintf("bz %s -> %s", s.BranchValue, s.BranchLabel)
	case StCompareBranch:
		return fmt.Sprintf("cmpbr %s, %s set=%s clear=%s", s.CompareLeft, s.CompareRight, s.BranchSet, s.BranchClear)
	case StCopy:
		return fmt.Sprintf("copy %s -> %s", s.CopySrc, s.CopyDest)
	case StGoTo:
		return fmt.Sprintf("goto %s", s.BranchLabel)
	case StInlineAsm:
		return "asm " + s.AsmText
	case StJumpRoutine:
		return fmt.Sprintf("jsr %s", s.CallTarget)
	case StReturn:
		return "ret"
	default:
		return "<invalid statement>"
	}
}

// RunBlock is a straight-line sequence of Statements terminated by an
// implicit fall-through, or explicitly by a branch statement.
type RunBlock struct {
	Name string
	Ref  types.SymbolRef
	Body []Statement
}

// FrameBlock is one function's compiled unit: its run blocks plus its
// frame size (sum of parameter and local temporary sizes).
type FrameBlock struct {
	Name      string
	Ref       types.SymbolRef
	HasLoc    bool
	Location  uint16
	Runs      []*RunBlock
	FrameSize int
}
