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

import "testing"

func TestOptimizeDropsRedundantReload(t *testing.T) {
	p := ZeroPage(0x10)
	b := &CodeBlock{Codes: []Code{
		insn("STA", p),
		comment("store x"),
		insn("LDA", p),
		impliedInsn("RTS"),
	}}
	Optimize([]*CodeBlock{b})
	if len(b.Codes) != 3 {
		t.Fatalf("Codes = %v, want 3 entries (LDA dropped)", mnemonics(b.Codes))
	}
	if b.Codes[0].Mnemonic != "STA" || b.Codes[2].Mnemonic != "RTS" {
		t.Fatalf("unexpected surviving instructions: %v", mnemonics(b.Codes))
	}
}

func TestOptimizeKeepsReloadOfDifferentParam(t *testing.T) {
	b := &CodeBlock{Codes: []Code{
		insn("STA", ZeroPage(0x10)),
		insn("LDA", ZeroPage(0x20)),
	}}
	Optimize([]*CodeBlock{b})
	if len(b.Codes) != 2 {
		t.Fatalf("Codes = %v, want both kept (different params)", mnemonics(b.Codes))
	}
}

func TestOptimizeNeverCrossesLabel(t *testing.T) {
	b := &CodeBlock{Codes: []Code{
		insn("STA", ZeroPage(0x10)),
		{Label: "loop"},
		insn("LDA", ZeroPage(0x10)),
	}}
	Optimize([]*CodeBlock{b})
	if len(b.Codes) != 3 {
		t.Fatalf("Codes = %v, want all 3 kept (label blocks fusion)", mnemonics(b.Codes))
	}
}

func TestOptimizeFixpointFusesChainedRedundancy(t *testing.T) {
	p := ZeroPage(0x10)
	b := &CodeBlock{Codes: []Code{
		insn("STA", p),
		insn("LDA", p),
		insn("LDA", p),
	}}
	Optimize([]*CodeBlock{b})
	if len(b.Codes) != 1 {
		t.Fatalf("Codes = %v, want just the STA surviving", mnemonics(b.Codes))
	}
}
