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
package srctag

import "testing"

func TestRowCol(t *testing.T) {
	source := "fn main() {\n  x = 1\n}\n"
	tag := New(14) // the 'x' on line 2
	row, col := tag.RowCol(source)
	if row != 2 || col != 3 {
		t.Fatalf("RowCol = %d:%d, want 2:3", row, col)
	}
}

func TestUnknownTag(t *testing.T) {
	if Unknown.IsKnown() {
		t.Fatal("Unknown.IsKnown() = true, want false")
	}
	if got := Unknown.String("anything"); got != "?:?" {
		t.Fatalf("Unknown.String() = %q, want \"?:?\"", got)
	}
}

func TestStringAtStartOfLine(t *testing.T) {
	source := "a\nb\nc"
	tag := New(2) // the 'b'
	if got := tag.String(source); got != "2:1" {
		t.Fatalf("String() = %q, want \"2:1\"", got)
	}
}

func TestRowColOffsetBeyondSource(t *testing.T) {
	source := "abc"
	tag := New(100)
	row, col := tag.RowCol(source)
	if row != 1 || col != len(source)+1 {
		t.Fatalf("RowCol = %d:%d, want 1:%d", row, col, len(source)+1)
	}
}
