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

// Package code is the 6502 machine-code block layer (components G, H, I):
// a register allocator modeling A/X/Y as equivalency sets, a code
// generator that drives it from LLIR, and a peephole pass over the
// resulting concrete instructions.
package code

import (
	"fmt"

	"hasselc/types"
)

// AddrMode is a 6502 addressing mode for a Parameter.
type AddrMode int

const (
	ModeImplied AddrMode = iota
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteY
	ModeIndirectX
	ModeRelative // branch target, always a label
	ModeSymbol   // unresolved label, for JMP/JSR
)

// Parameter is a concrete 6502 operand.
type Parameter struct {
	Mode AddrMode

	Value uint16 // ZeroPage/ZeroPageX/Absolute/IndirectX address, or Immediate's byte

	Label      string // Relative, Symbol, or an unresolved high/low-byte reference
	HighByteOf bool   // render as #>Label
	LowByteOf  bool   // render as #<Label
	YIndexed   bool   // ModeSymbol: render as "Label,Y" (unresolved array base indexed by Y)
}

func Implied() Parameter                    { return Parameter{Mode: ModeImplied} }
func Imm(v uint8) Parameter                 { return Parameter{Mode: ModeImmediate, Value: uint16(v)} }
func ImmHigh(label string) Parameter        { return Parameter{Mode: ModeImmediate, Label: label, HighByteOf: true} }
func ImmLow(label string) Parameter         { return Parameter{Mode: ModeImmediate, Label: label, LowByteOf: true} }
func ZeroPage(addr uint16) Parameter        { return Parameter{Mode: ModeZeroPage, Value: addr} }
func ZeroPageX(off int8) Parameter          { return Parameter{Mode: ModeZeroPageX, Value: uint16(uint8(off))} }
func ZeroPageY(addr uint16) Parameter       { return Parameter{Mode: ModeZeroPageY, Value: addr} }
func Absolute(addr uint16) Parameter        { return Parameter{Mode: ModeAbsolute, Value: addr} }
func AbsoluteY(addr uint16) Parameter       { return Parameter{Mode: ModeAbsoluteY, Value: addr} }
func IndirectX(off int8) Parameter          { return Parameter{Mode: ModeIndirectX, Value: uint16(uint8(off))} }
func Relative(label string) Parameter       { return Parameter{Mode: ModeRelative, Label: label} }
func Symbol(label string) Parameter         { return Parameter{Mode: ModeSymbol, Label: label} }
func SymbolY(label string) Parameter        { return Parameter{Mode: ModeSymbol, Label: label, YIndexed: true} }

func (p Parameter) Equal(o Parameter) bool {
	return p.Mode == o.Mode && p.Value == o.Value && p.Label == o.Label &&
		p.HighByteOf == o.HighByteOf && p.LowByteOf == o.LowByteOf && p.YIndexed == o.YIndexed
}

func (p Parameter) String() string {
	switch p.Mode {
	case ModeImplied:
		return ""
	case ModeImmediate:
		if p.HighByteOf {
			return "#>" + p.Label
		}
		if p.LowByteOf {
			return "#<" + p.Label
		}
		return fmt.Sprintf("#$%02X", p.Value)
	case ModeZeroPage:
		return fmt.Sprintf("$%02X", p.Value)
	case ModeZeroPageX:
		return fmt.Sprintf("$%02X,X", p.Value)
	case ModeZeroPageY:
		return fmt.Sprintf("$%02X,Y", p.Value)
	case ModeAbsolute:
		return fmt.Sprintf("$%04X", p.Value)
	case ModeAbsoluteY:
		return fmt.Sprintf("$%04X,Y", p.Value)
	case ModeIndirectX:
		return fmt.Sprintf("($%02X,X)", p.Value)
	case ModeRelative:
		return p.Label
	case ModeSymbol:
		if p.YIndexed {
			return p.Label + ",Y"
		}
		return p.Label
	default:
		return "<invalid parameter>"
	}
}

// Code is one emitted instruction, comment, label, or raw passthrough line.
type Code struct {
	Mnemonic string // empty for a comment-only or raw line
	Param    *Parameter
	Comment  string
	Label    string // a standalone "NAME:" line when set and Mnemonic is empty
	Raw      string // an inline-asm line emitted verbatim, untouched by the allocator
}

// CodeBlock is one function's (or the anonymous top-level's) emitted
// instruction stream.
type CodeBlock struct {
	Name     string
	Ref      types.SymbolRef
	HasLoc   bool
	Location uint16
	Codes    []Code
}

func comment(text string) Code { return Code{Comment: text} }

func insn(mnemonic string, param Parameter) Code {
	p := param
	return Code{Mnemonic: mnemonic, Param: &p}
}

func impliedInsn(mnemonic string) Code {
	return Code{Mnemonic: mnemonic}
}

func rawLine(text string) Code { return Code{Raw: text} }
