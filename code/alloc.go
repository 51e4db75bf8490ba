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

import "hasselc/utils"

// Reg names the three 6502 registers the allocator models.
type Reg int

const (
	RegA Reg = iota
	RegX
	RegY
	regCount
)

func (r Reg) loadMnemonic() string {
	switch r {
	case RegA:
		return "LDA"
	case RegX:
		return "LDX"
	case RegY:
		return "LDY"
	default:
		utils.ShouldNotReachHere()
		return ""
	}
}

func (r Reg) storeMnemonic() string {
	switch r {
	case RegA:
		return "STA"
	case RegX:
		return "STX"
	case RegY:
		return "STY"
	default:
		utils.ShouldNotReachHere()
		return ""
	}
}

// DSPParam is the fixed zero-page parameter holding the data-stack
// pointer, per the memory map (0x0000).
var DSPParam = ZeroPage(0x0000)

// RegValueKind discriminates RegisterValue's variants.
type RegValueKind int

const (
	ValParam RegValueKind = iota
	ValIntermediate
)

// RegisterValue is a value a register is known to currently hold: either
// the contents of a named memory/immediate Parameter, or an unnamed
// freshly computed value distinguished only by a monotonic id.
type RegisterValue struct {
	Kind  RegValueKind
	Param Parameter
	ID    int
}

func paramValue(p Parameter) RegisterValue { return RegisterValue{Kind: ValParam, Param: p} }

// Allocator models the three 6502 registers as RegisterEquivalency sets
// plus per-register deferred-save stacks, implementing the primitives
// spec'd for the code generator to drive.
type Allocator struct {
	equiv    [regCount]*utils.Set[RegisterValue]
	deferred [regCount][]Parameter
	nextID   int
}

func NewAllocator() *Allocator {
	a := &Allocator{}
	for r := Reg(0); r < regCount; r++ {
		a.equiv[r] = utils.NewSet[RegisterValue]()
	}
	return a
}

func (a *Allocator) holds(r Reg, p Parameter) bool {
	found := false
	a.equiv[r].ForEach(func(v RegisterValue) {
		if v.Kind == ValParam && v.Param.Equal(p) {
			found = true
		}
	})
	return found
}

func (a *Allocator) regHoldingParam(p Parameter) (Reg, bool) {
	for r := Reg(0); r < regCount; r++ {
		if a.holds(r, p) {
			return r, true
		}
	}
	return 0, false
}

func (a *Allocator) resetEquiv(r Reg) {
	a.equiv[r] = utils.NewSet[RegisterValue]()
}

func (a *Allocator) setEquiv(r Reg, v RegisterValue) {
	a.resetEquiv(r)
	a.equiv[r].Add(v)
}

func (a *Allocator) freshIntermediate(r Reg) {
	id := a.nextID
	a.nextID++
	a.setEquiv(r, RegisterValue{Kind: ValIntermediate, ID: id})
}

// paramRequiresReg reports whether storing via p's addressing mode reads
// the given register at store time — ZeroPageX/IndirectX read X,
// ZeroPageY/AbsoluteY read Y.
func paramRequiresReg(p Parameter, r Reg) bool {
	switch r {
	case RegX:
		return p.Mode == ModeZeroPageX || p.Mode == ModeIndirectX
	case RegY:
		return p.Mode == ModeZeroPageY || p.Mode == ModeAbsoluteY
	default:
		return false
	}
}

// saveAsNecessary flushes any deferred save (on any register) whose
// addressing mode requires r before r is clobbered, then flushes r's own
// deferred saves — the spill discipline guaranteeing indexed addressing
// sees the right register contents at store time.
func (a *Allocator) saveAsNecessary(code *[]Code, r Reg) {
	for other := Reg(0); other < regCount; other++ {
		if other == r {
			continue
		}
		kept := a.deferred[other][:0]
		for _, p := range a.deferred[other] {
			if paramRequiresReg(p, r) {
				a.flushStore(code, other, p)
			} else {
				kept = append(kept, p)
			}
		}
		a.deferred[other] = kept
	}
	a.flushReg(code, r)
}

func (a *Allocator) flushStore(code *[]Code, r Reg, p Parameter) {
	*code = append(*code, insn(r.storeMnemonic(), p))
	a.equiv[r].Add(paramValue(p))
}

func (a *Allocator) flushReg(code *[]Code, r Reg) {
	for _, p := range a.deferred[r] {
		a.flushStore(code, r, p)
	}
	a.deferred[r] = nil
}

// Load emits LD{A,X,Y} param unless reg is already known to hold it.
func (a *Allocator) Load(code *[]Code, r Reg, param Parameter) {
	if a.holds(r, param) {
		return
	}
	a.saveAsNecessary(code, r)
	*code = append(*code, insn(r.loadMnemonic(), param))
	a.setEquiv(r, paramValue(param))
}

// SaveLater defers a store of reg into param and records the new
// equivalency immediately, so a later read of the same param is free.
func (a *Allocator) SaveLater(r Reg, param Parameter) {
	a.deferred[r] = append(a.deferred[r], param)
	a.equiv[r].Add(paramValue(param))
}

// SaveAllNow flushes every register's deferred saves.
func (a *Allocator) SaveAllNow(code *[]Code) {
	for r := Reg(0); r < regCount; r++ {
		a.flushReg(code, r)
	}
}

// SaveAllAndReset flushes every deferred save and clears all
// equivalencies, used across unconditional transfers (branches, calls,
// returns, and around opaque inline assembly).
func (a *Allocator) SaveAllAndReset(code *[]Code) {
	a.SaveAllNow(code)
	for r := Reg(0); r < regCount; r++ {
		a.resetEquiv(r)
	}
}

// Add emits CLC/SEC per prepareClear/prepareSet then ADC param into A, leaving A
// a fresh intermediate.
func (a *Allocator) Add(code *[]Code, param Parameter, prepareClear, prepareSet bool) {
	a.arith(code, "ADC", param, prepareClear, prepareSet)
}

func (a *Allocator) Subtract(code *[]Code, param Parameter, prepareClear, prepareSet bool) {
	a.arith(code, "SBC", param, prepareClear, prepareSet)
}

func (a *Allocator) arith(code *[]Code, mnemonic string, param Parameter, prepareClear, prepareSet bool) {
	a.saveAsNecessary(code, RegA)
	if prepareClear {
		*code = append(*code, impliedInsn("CLC"))
	} else if prepareSet {
		*code = append(*code, impliedInsn("SEC"))
	}
	*code = append(*code, insn(mnemonic, param))
	a.freshIntermediate(RegA)
}

// LoadStatusIntoAccum emits PHP;PLA, leaving A a fresh intermediate.
func (a *Allocator) LoadStatusIntoAccum(code *[]Code) {
	a.saveAsNecessary(code, RegA)
	*code = append(*code, impliedInsn("PHP"), impliedInsn("PLA"))
	a.freshIntermediate(RegA)
}

// LoadDSP loads the data-stack pointer into reg, reusing another
// register's contents via a transfer instruction when one already holds
// it instead of re-reading zero page.
func (a *Allocator) LoadDSP(code *[]Code, into Reg) {
	if a.holds(into, DSPParam) {
		return
	}
	if from, ok := a.regHoldingParam(DSPParam); ok {
		if mnem, ok := transferMnemonic(from, into); ok {
			a.saveAsNecessary(code, into)
			*code = append(*code, impliedInsn(mnem))
			a.setEquiv(into, paramValue(DSPParam))
			return
		}
	}
	a.Load(code, into, DSPParam)
}

func transferMnemonic(from, to Reg) (string, bool) {
	switch {
	case from == RegA && to == RegX:
		return "TAX", true
	case from == RegA && to == RegY:
		return "TAY", true
	case from == RegX && to == RegA:
		return "TXA", true
	case from == RegY && to == RegA:
		return "TYA", true
	default:
		return "", false
	}
}

// SaveDSPLater defers a store of from into the DSP slot.
func (a *Allocator) SaveDSPLater(from Reg) {
	a.SaveLater(from, DSPParam)
}
