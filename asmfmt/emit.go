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

// Package asmfmt is the textual assembly emitter (component J): it turns a
// compiled program's CodeBlocks into the tab-separated, UPPER-case 6502
// assembly text a downstream assembler consumes. Named for what it does,
// not to be confused with klauspost/asmfmt, which formats Go's own
// assembler dialect and has no use here.
package asmfmt

import (
	"fmt"
	"strings"

	"hasselc/code"
)

// StringConst is a global string-literal constant, rendered after every
// code block as a null-terminated byte array.
type StringConst struct {
	Name string
	Text string
}

// Emit renders every CodeBlock in order, followed by the program's string
// constants.
func Emit(blocks []*code.CodeBlock, strs []StringConst) string {
	var b strings.Builder
	for _, blk := range blocks {
		emitBlock(&b, blk)
	}
	for _, s := range strs {
		fmt.Fprintf(&b, "%s:\t.byte \"%s\",0\n", s.Name, s.Text)
	}
	return b.String()
}

func emitBlock(b *strings.Builder, blk *code.CodeBlock) {
	if blk.HasLoc {
		fmt.Fprintf(b, ".org $%04X\n", blk.Location)
	}
	for _, c := range blk.Codes {
		emitCode(b, c)
	}
}

func emitCode(b *strings.Builder, c code.Code) {
	switch {
	case c.Label != "":
		fmt.Fprintf(b, "%s:\n", c.Label)
	case c.Raw != "":
		fmt.Fprintf(b, "\t%s\n", c.Raw)
	case c.Comment != "":
		fmt.Fprintf(b, "\t; %s\n", c.Comment)
	case c.Param != nil:
		fmt.Fprintf(b, "\t%s\t%s\n", strings.ToUpper(c.Mnemonic), c.Param.String())
	default:
		fmt.Fprintf(b, "\t%s\n", strings.ToUpper(c.Mnemonic))
	}
}
