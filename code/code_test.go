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

func TestParameterStringForms(t *testing.T) {
	cases := []struct {
		p    Parameter
		want string
	}{
		{Imm(0x42), "#$42"},
		{ImmHigh("COUNT"), "#>COUNT"},
		{ImmLow("COUNT"), "#<COUNT"},
		{ZeroPage(0x10), "$10"},
		{ZeroPageX(-2), "$FE,X"},
		{ZeroPageY(0x05), "$05,Y"},
		{Absolute(0x1234), "$1234"},
		{AbsoluteY(0x1234), "$1234,Y"},
		{IndirectX(3), "($03,X)"},
		{Relative("loop_top"), "loop_top"},
		{Symbol("arr"), "arr"},
		{SymbolY("arr"), "arr,Y"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Errorf("%+v.String() = %q, want %q", c.p, got, c.want)
		}
	}
}

func TestParameterEqualConsidersYIndexed(t *testing.T) {
	a := Symbol("arr")
	b := SymbolY("arr")
	if a.Equal(b) {
		t.Fatal("Symbol(x).Equal(SymbolY(x)) = true, want false")
	}
}
