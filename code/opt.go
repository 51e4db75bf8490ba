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

// Optimize runs the code peephole pass (component I) over every block to a
// fixpoint: an STA p immediately followed by an LDA of the same parameter
// is redundant — A already holds what was just stored — and the LDA is
// dropped. "Immediately" skips over comments but never crosses a label,
// since a label may be reached from another predecessor with A in any
// state.
func Optimize(blocks []*CodeBlock) {
	for _, b := range blocks {
		for fuseOnePass(b) {
		}
	}
}

func nextInsn(codes []Code, i int) (int, bool) {
	for j := i + 1; j < len(codes); j++ {
		c := codes[j]
		if c.Label != "" {
			return 0, false
		}
		if c.Mnemonic == "" && c.Raw == "" {
			continue
		}
		return j, true
	}
	return 0, false
}

func fuseOnePass(b *CodeBlock) bool {
	codes := b.Codes
	for i := 0; i < len(codes); i++ {
		st := codes[i]
		if st.Mnemonic != "STA" || st.Param == nil {
			continue
		}
		j, ok := nextInsn(codes, i)
		if !ok {
			continue
		}
		ld := codes[j]
		if ld.Mnemonic != "LDA" || ld.Param == nil || !ld.Param.Equal(*st.Param) {
			continue
		}
		next := make([]Code, 0, len(codes)-1)
		next = append(next, codes[:j]...)
		next = append(next, codes[j+1:]...)
		b.Codes = next
		return true
	}
	return false
}
