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
package compile

import (
	"strings"
	"testing"
)

func TestCompileSimpleFunction(t *testing.T) {
	source := `
def add(a: u8, b: u8): u8
  return a + b;
end
`
	out, err := Compile(source, Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(out.Assembly, "add:") {
		t.Fatalf("Assembly missing entry label:\n%s", out.Assembly)
	}
	if !strings.Contains(out.Assembly, "RTS") {
		t.Fatalf("Assembly missing RTS:\n%s", out.Assembly)
	}
}

func TestCompileWithBothOptimizersEnabled(t *testing.T) {
	source := `
def identity(a: u8): u8
  return a;
end
`
	out, err := Compile(source, Options{OptimizeLLIR: true, OptimizeCode: true})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if out.Assembly == "" {
		t.Fatal("Compile() returned empty assembly")
	}
}

func TestCompileReportsParseErrorTranslatable(t *testing.T) {
	source := "def broken(\n"
	_, err := Compile(source, Options{})
	if err == nil {
		t.Fatal("Compile() err = nil, want parse error")
	}
	if msg := CompileText(source, err); msg == "" {
		t.Fatal("CompileText() = \"\", want a translated message")
	}
}

func TestCompileVoidFunctionReturnsWithoutCopy(t *testing.T) {
	source := `
def doNothing()
  return;
end
`
	out, err := Compile(source, Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(out.Assembly, "doNothing:") {
		t.Fatalf("Assembly missing entry label:\n%s", out.Assembly)
	}
	if strings.Contains(out.Assembly, "STA\t$01") {
		t.Fatalf("Assembly stores into the return slot for a bare return:\n%s", out.Assembly)
	}
}
