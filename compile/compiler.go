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

// Package compile wires the pipeline stages (ast -> typedir -> llir -> code
// -> asmfmt) into a single entry point, the way falcon/compile/compiler.go
// drives its own ssa -> codegen pipeline.
package compile

import (
	"fmt"
	"os"

	"hasselc/ast"
	"hasselc/asmfmt"
	"hasselc/cerr"
	"hasselc/code"
	"hasselc/llir"
	"hasselc/typedir"
	"hasselc/types"
	"hasselc/utils"
)

const DebugPrintTypedAst = true
const DebugPrintLLIR = true
const DebugPrintCode = true

// Options configures one compilation run. Runtime/VectorReset/VectorIRQ/
// VectorNMI are carried through unused by the pipeline itself today -- they
// describe the runtime image a downstream linker stitches the emitted
// assembly into -- and are kept on Options so the CLI surface matches
// spec.md's §6 without the orchestration layer needing to change shape once
// that stitching is implemented.
type Options struct {
	OptimizeLLIR bool
	OptimizeCode bool

	Runtime     string
	VectorReset string
	VectorIRQ   string
	VectorNMI   string

	Debug bool
}

// Output is the result of a successful compilation.
type Output struct {
	Assembly string
}

// Compile runs source through every pipeline stage and returns the emitted
// 6502 assembly text, or an error translatable via cerr.Translate.
func Compile(source string, opts Options) (*Output, error) {
	prog, err := ast.ParseProgram(source)
	if err != nil {
		return nil, err
	}

	blocks, table, err := typedir.Build(prog)
	if err != nil {
		return nil, err
	}
	if err := typedir.Check(blocks); err != nil {
		return nil, err
	}
	if opts.Debug && DebugPrintTypedAst {
		for _, b := range blocks {
			fmt.Fprintf(os.Stderr, "== typedir(%s) ==\n", b.Name)
		}
	}

	frames, err := llir.Generate(blocks)
	if err != nil {
		return nil, err
	}
	if opts.OptimizeLLIR {
		llir.Optimize(frames)
	}
	if opts.Debug && DebugPrintLLIR {
		for _, f := range frames {
			fmt.Fprintf(os.Stderr, "== llir(%s) ==\n", f.Name)
			for _, run := range f.Runs {
				for _, st := range run.Body {
					fmt.Fprintf(os.Stderr, "%s\n", st.String())
				}
			}
		}
	}

	names := func(ref types.SymbolRef) string {
		name, ok := table.NameOf(ref)
		if !ok {
			utils.Fatal("compile: no name registered for symbol ref %v", ref)
		}
		return name
	}

	cblocks := code.Generate(frames, names, source)
	if opts.OptimizeCode {
		code.Optimize(cblocks)
	}
	if opts.Debug && DebugPrintCode {
		fmt.Fprintf(os.Stderr, "%s\n", asmfmt.Emit(cblocks, nil))
	}

	return &Output{Assembly: asmfmt.Emit(cblocks, nil)}, nil
}

// CompileText translates a parse/check/codegen error into a row:col message
// against source, or "" when err is nil.
func CompileText(source string, err error) string {
	return cerr.Translate(source, err)
}
