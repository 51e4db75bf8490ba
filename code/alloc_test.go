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

func mnemonics(codes []Code) []string {
	var out []string
	for _, c := range codes {
		if c.Mnemonic != "" {
			out = append(out, c.Mnemonic)
		}
	}
	return out
}

func TestLoadSkipsWhenAlreadyHeld(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	p := ZeroPage(0x10)
	a.Load(&codes, RegA, p)
	a.Load(&codes, RegA, p)
	if got := mnemonics(codes); len(got) != 1 || got[0] != "LDA" {
		t.Fatalf("mnemonics = %v, want single LDA", got)
	}
}

func TestSaveLaterIsFreeToReadBack(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	p := ZeroPage(0x20)
	a.SaveLater(RegA, p)
	a.Load(&codes, RegA, p)
	if len(codes) != 0 {
		t.Fatalf("expected no instructions before flush, got %v", mnemonics(codes))
	}
}

func TestSaveAsNecessaryFlushesXIndexedDependent(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	// X holds a deferred store into a ZeroPageX parameter: clobbering X
	// must flush that store first since the store's addressing mode reads X.
	a.SaveLater(RegX, ZeroPageX(4))
	a.Load(&codes, RegX, ZeroPage(0x30))
	got := mnemonics(codes)
	if len(got) != 2 || got[0] != "STX" || got[1] != "LDX" {
		t.Fatalf("mnemonics = %v, want [STX LDX]", got)
	}
}

func TestSaveAsNecessaryFlushesYIndexedDependent(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	a.SaveLater(RegY, ZeroPageY(4))
	a.Load(&codes, RegY, ZeroPage(0x30))
	got := mnemonics(codes)
	if len(got) != 2 || got[0] != "STY" || got[1] != "LDY" {
		t.Fatalf("mnemonics = %v, want [STY LDY]", got)
	}
}

func TestLoadDSPReusesTransferInsteadOfReload(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	a.Load(&codes, RegA, DSPParam)
	a.LoadDSP(&codes, RegX)
	got := mnemonics(codes)
	if len(got) != 2 || got[0] != "LDA" || got[1] != "TAX" {
		t.Fatalf("mnemonics = %v, want [LDA TAX]", got)
	}
}

func TestLoadDSPFallsBackWhenNoTransferExists(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	a.Load(&codes, RegX, DSPParam)
	a.LoadDSP(&codes, RegY)
	got := mnemonics(codes)
	if len(got) != 2 || got[0] != "LDX" || got[1] != "LDY" {
		t.Fatalf("mnemonics = %v, want [LDX LDY] (no X->Y transfer on 6502)", got)
	}
}

func TestArithLeavesFreshIntermediate(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	p := ZeroPage(0x40)
	a.Load(&codes, RegA, p)
	a.Add(&codes, Imm(1), true, false)
	// A no longer holds p's value, so reading p again must reload.
	a.Load(&codes, RegA, p)
	got := mnemonics(codes)
	want := []string{"LDA", "CLC", "ADC", "LDA"}
	if len(got) != len(want) {
		t.Fatalf("mnemonics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mnemonics = %v, want %v", got, want)
		}
	}
}

func TestSaveAllAndResetClearsEquivalencies(t *testing.T) {
	a := NewAllocator()
	var codes []Code
	p := ZeroPage(0x50)
	a.Load(&codes, RegA, p)
	a.SaveAllAndReset(&codes)
	codes = nil
	a.Load(&codes, RegA, p)
	if got := mnemonics(codes); len(got) != 1 || got[0] != "LDA" {
		t.Fatalf("mnemonics after reset = %v, want reload", got)
	}
}
