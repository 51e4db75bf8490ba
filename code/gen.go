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
package code

import (
	"strings"

	"hasselc/llir"
	"hasselc/srctag"
	"hasselc/types"
	"hasselc/utils"
)

// NameResolver maps a symbol reference to the name it should render under
// in emitted assembly (an unresolved global, array, or block target).
type NameResolver func(types.SymbolRef) string

// Generate lowers every LLIR FrameBlock into a CodeBlock of concrete 6502
// instructions, driving one Allocator per frame (component H). source is
// the original program text, used to annotate each statement with the
// line of Hassel that produced it.
func Generate(frames []*llir.FrameBlock, names NameResolver, source string) []*CodeBlock {
	blocks := make([]*CodeBlock, 0, len(frames))
	for _, frame := range frames {
		blocks = append(blocks, genFrame(frame, names, source))
	}
	return blocks
}

type genCtx struct {
	alloc   *Allocator
	code    []Code
	names   NameResolver
	source  string
	lastTag srctag.Tag
	haveTag bool
}

func genFrame(frame *llir.FrameBlock, names NameResolver, source string) *CodeBlock {
	c := &genCtx{alloc: NewAllocator(), names: names, source: source}
	for i, run := range frame.Runs {
		// The entry run block is labeled with the block's own declared
		// name, so call sites (which target the frame's Ref) resolve to
		// its first instruction; later run blocks keep their synthetic
		// names as branch targets.
		label := run.Name
		if i == 0 {
			label = frame.Name
		}
		c.code = append(c.code, Code{Label: label})
		for _, st := range run.Body {
			c.emitComment(st)
			c.genStmt(st)
		}
	}
	return &CodeBlock{Name: frame.Name, Ref: frame.Ref, HasLoc: frame.HasLoc, Location: frame.Location, Codes: c.code}
}

// sourceLine returns the trimmed line of source containing tag's offset,
// or "" for a synthetic (unknown) tag.
func sourceLine(source string, tag srctag.Tag) string {
	if !tag.IsKnown() || tag.Offset > len(source) {
		return ""
	}
	start := strings.LastIndexByte(source[:tag.Offset], '\n') + 1
	rest := source[tag.Offset:]
	end := strings.IndexByte(rest, '\n')
	if end == -1 {
		return strings.TrimSpace(source[start:])
	}
	return strings.TrimSpace(source[start : tag.Offset+end])
}

// emitComment appends the original source line, once per distinct SrcTag,
// followed by the LLIR statement's own debug print — every statement gets
// the second comment, only a tag change gets the first.
func (c *genCtx) emitComment(st llir.Statement) {
	if !c.haveTag || st.Tag != c.lastTag {
		if line := sourceLine(c.source, st.Tag); line != "" {
			c.code = append(c.code, comment(line))
		}
		c.lastTag = st.Tag
		c.haveTag = true
	}
	c.code = append(c.code, comment(st.String()))
}

func (c *genCtx) genStmt(st llir.Statement) {
	switch st.Kind {
	case llir.StAdd, llir.StSubtract:
		c.genAddSub(st)
	case llir.StCompareEq, llir.StCompareNotEq, llir.StCompareLt, llir.StCompareGte:
		c.genCompareValue(st)
	case llir.StAddToDataStackPointer:
		c.genAddToDSP(st)
	case llir.StBranchIfZero:
		c.genBranchIfZero(st)
	case llir.StCompareBranch:
		c.genCompareBranch(st)
	case llir.StCopy:
		c.genCopy(st)
	case llir.StGoTo:
		c.genGoTo(st)
	case llir.StInlineAsm:
		c.genInlineAsm(st)
	case llir.StJumpRoutine:
		c.genJumpRoutine(st)
	case llir.StReturn:
		c.genReturn()
	default:
		utils.ShouldNotReachHere()
	}
}

// frameSize reads a frame's finalized size as a signed byte offset basis.
func frameSize(f *llir.FrameBlock) int8 { return int8(f.FrameSize) }

// paramFor translates an LLIR Location into a concrete 6502 Parameter,
// loading an index value into Y first for the indexed-global variants.
func (c *genCtx) paramFor(loc llir.Location) Parameter {
	switch loc.Kind {
	case llir.LocDataStackOffset:
		return ZeroPageX(loc.Offset)
	case llir.LocFrameOffset:
		return ZeroPageX(loc.Offset - frameSize(loc.Frame))
	case llir.LocFrameOffsetIndirect:
		return IndirectX(loc.Offset - frameSize(loc.Frame))
	case llir.LocFrameOffsetBeforeCall:
		return ZeroPageX(loc.Offset - frameSize(loc.CallingFrame) - frameSize(loc.OriginalFrame))
	case llir.LocGlobal:
		if loc.Addr < 0x100 {
			return ZeroPage(loc.Addr)
		}
		return Absolute(loc.Addr)
	case llir.LocGlobalIndexed:
		c.loadIndexIntoY(*loc.Index)
		if loc.Addr < 0x100 {
			return ZeroPageY(loc.Addr)
		}
		return AbsoluteY(loc.Addr)
	case llir.LocUnresolvedGlobal:
		return Symbol(c.names(loc.Symbol))
	case llir.LocUnresolvedGlobalIndexed:
		c.loadIndexIntoY(*loc.Index)
		return SymbolY(c.names(loc.Symbol))
	case llir.LocUnresolvedGlobalLowByte:
		return ImmLow(c.names(loc.Symbol))
	case llir.LocUnresolvedGlobalHighByte:
		return ImmHigh(c.names(loc.Symbol))
	case llir.LocUnresolvedBlock:
		return Symbol(c.names(loc.Symbol))
	default:
		utils.ShouldNotReachHere()
		return Parameter{}
	}
}

func (c *genCtx) loadIndexIntoY(idx llir.Value) {
	c.alloc.Load(&c.code, RegY, c.paramForValue(idx))
}

func (c *genCtx) paramForValue(v llir.Value) Parameter {
	if v.Kind == llir.ValImmediate {
		return Imm(uint8(v.Immediate))
	}
	return c.paramFor(v.Loc)
}

func (c *genCtx) genAddSub(st llir.Statement) {
	c.alloc.Load(&c.code, RegA, c.paramForValue(st.BinOp.Left))
	rightParam := c.paramForValue(st.BinOp.Right)
	clear := st.BinOp.Carry == llir.ClearCarry
	set := st.BinOp.Carry == llir.SetCarry
	if st.Kind == llir.StAdd {
		c.alloc.Add(&c.code, rightParam, clear, set)
	} else {
		c.alloc.Subtract(&c.code, rightParam, clear, set)
	}
	c.alloc.SaveLater(RegA, c.paramFor(st.BinOp.Dest))
}

// compareValueFlag returns which status flag a dedicated compare-to-value
// statement reads and whether the raw flag-set reading must be inverted to
// get "true" — the same truth table genComparison's block network uses,
// specialized to the four kinds this single-instruction form supports.
func compareValueFlag(kind llir.StmtKind) (flag llir.CompareFlag, invert bool) {
	switch kind {
	case llir.StCompareEq:
		return llir.FlagZero, false
	case llir.StCompareNotEq:
		return llir.FlagZero, true
	case llir.StCompareLt:
		return llir.FlagCarry, true
	case llir.StCompareGte:
		return llir.FlagCarry, false
	default:
		utils.ShouldNotReachHere()
		return
	}
}

func (c *genCtx) genCompareValue(st llir.Statement) {
	c.alloc.Load(&c.code, RegA, c.paramForValue(st.BinOp.Left))
	c.code = append(c.code, insn("CMP", c.paramForValue(st.BinOp.Right)))
	flag, invert := compareValueFlag(st.Kind)
	c.alloc.LoadStatusIntoAccum(&c.code)
	mask := uint8(0x01)
	if flag == llir.FlagZero {
		mask = 0x02
	}
	c.code = append(c.code, insn("AND", Imm(mask)))
	if invert {
		c.code = append(c.code, insn("EOR", Imm(mask)))
	}
	if flag == llir.FlagZero {
		c.code = append(c.code, impliedInsn("CLC"), impliedInsn("ROR"))
	}
	c.alloc.SaveLater(RegA, c.paramFor(st.BinOp.Dest))
}

func (c *genCtx) genCompareBranch(st llir.Statement) {
	c.alloc.Load(&c.code, RegA, c.paramForValue(st.CompareLeft))
	c.code = append(c.code, insn("CMP", c.paramForValue(st.CompareRight)))
	setMnemonic, clearMnemonic := "BEQ", "BNE"
	if st.CompareFlag == llir.FlagCarry {
		setMnemonic, clearMnemonic = "BCS", "BCC"
	}
	if st.BranchSet != "" {
		c.code = append(c.code, insn(setMnemonic, Relative(st.BranchSet)))
	}
	if st.BranchClear != "" {
		c.code = append(c.code, insn(clearMnemonic, Relative(st.BranchClear)))
	}
}

func (c *genCtx) genAddToDSP(st llir.Statement) {
	c.alloc.LoadDSP(&c.code, RegA)
	off := int8(st.SPOffset)
	if off >= 0 {
		c.alloc.Add(&c.code, Imm(uint8(off)), true, false)
	} else {
		c.alloc.Subtract(&c.code, Imm(uint8(utils.Abs(int(off)))), false, true)
	}
	c.alloc.SaveDSPLater(RegA)
	c.alloc.LoadDSP(&c.code, RegX)
}

func (c *genCtx) genBranchIfZero(st llir.Statement) {
	c.alloc.SaveAllNow(&c.code)
	c.alloc.Load(&c.code, RegA, c.paramForValue(st.BranchValue))
	c.code = append(c.code, insn("BEQ", Relative(st.BranchLabel)))
}

func (c *genCtx) genCopy(st llir.Statement) {
	c.alloc.Load(&c.code, RegA, c.paramForValue(st.CopySrc))
	c.alloc.SaveLater(RegA, c.paramFor(st.CopyDest))
}

func (c *genCtx) genGoTo(st llir.Statement) {
	c.alloc.SaveAllAndReset(&c.code)
	c.code = append(c.code, insn("JMP", Relative(st.BranchLabel)))
}

func (c *genCtx) genJumpRoutine(st llir.Statement) {
	c.alloc.SaveAllAndReset(&c.code)
	c.code = append(c.code, insn("JSR", c.paramFor(st.CallTarget)))
}

func (c *genCtx) genReturn() {
	c.alloc.SaveAllAndReset(&c.code)
	c.code = append(c.code, impliedInsn("RTS"))
}

// genInlineAsm resets the allocator's view of register state on both sides
// of an opaque asm block, since its contents may clobber anything.
func (c *genCtx) genInlineAsm(st llir.Statement) {
	c.alloc.SaveAllAndReset(&c.code)
	for _, line := range strings.Split(st.AsmText, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			c.code = append(c.code, rawLine(trimmed))
		}
	}
	c.alloc.SaveAllAndReset(&c.code)
}
