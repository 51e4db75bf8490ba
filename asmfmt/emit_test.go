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
package asmfmt

import (
	"strings"
	"testing"

	"hasselc/code"
)

func param(p code.Parameter) *code.Parameter { return &p }

func TestEmitLabelAndInstructions(t *testing.T) {
	blk := &code.CodeBlock{
		Name: "main",
		Codes: []code.Code{
			{Label: "main"},
			{Mnemonic: "lda", Param: param(code.Imm(1))},
			{Comment: "x = 1"},
			{Mnemonic: "rts"},
		},
	}
	got := Emit([]*code.CodeBlock{blk}, nil)
	want := "main:\n\tLDA\t#$01\n\t; x = 1\n\tRTS\n"
	if got != want {
		t.Fatalf("Emit() =\n%q\nwant\n%q", got, want)
	}
}

func TestEmitOrgDirectiveWhenLocated(t *testing.T) {
	blk := &code.CodeBlock{HasLoc: true, Location: 0x0801, Codes: nil}
	got := Emit([]*code.CodeBlock{blk}, nil)
	if !strings.HasPrefix(got, ".org $0801\n") {
		t.Fatalf("Emit() = %q, want .org directive prefix", got)
	}
}

func TestEmitRawInlineAsmPassesThrough(t *testing.T) {
	blk := &code.CodeBlock{Codes: []code.Code{{Raw: "NOP"}}}
	got := Emit([]*code.CodeBlock{blk}, nil)
	if got != "\tNOP\n" {
		t.Fatalf("Emit() = %q, want raw line passthrough", got)
	}
}

func TestEmitStringConstants(t *testing.T) {
	got := Emit(nil, []StringConst{{Name: "MSG", Text: "hi"}})
	want := "MSG:\t.byte \"hi\",0\n"
	if got != want {
		t.Fatalf("Emit() = %q, want %q", got, want)
	}
}
