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
package llir

// Optimize runs the LLIR peephole pass (component F) over every frame to a
// fixpoint: an Add/Subtract storing into a temporary immediately followed
// by a Copy reading that same temporary into a final destination fuses
// into a single Add/Subtract targeting the final destination directly,
// provided the temporary is never read again afterwards in the same run
// block (a single-use store-then-copy pair).
func Optimize(frames []*FrameBlock) {
	for _, frame := range frames {
		for _, run := range frame.Runs {
			optimizeRun(run)
		}
	}
}

func optimizeRun(run *RunBlock) {
	for {
		if !fuseOnePass(run) {
			return
		}
	}
}

// fuseOnePass scans once for a fusible Add/Subtract-then-Copy pair and
// applies the first one found, reporting whether it changed anything —
// the caller loops this to a fixpoint since fusing can expose another
// fusible pair immediately behind it.
func fuseOnePass(run *RunBlock) bool {
	for i := 0; i+1 < len(run.Body); i++ {
		op := run.Body[i]
		if op.Kind != StAdd && op.Kind != StSubtract {
			continue
		}
		cp := run.Body[i+1]
		if cp.Kind != StCopy || cp.CopySrc.Kind != ValMemory || !cp.CopySrc.Loc.Equal(op.BinOp.Dest) {
			continue
		}
		if locationUsedAfter(run, i+2, op.BinOp.Dest) {
			continue
		}
		op.BinOp.Dest = cp.CopyDest
		run.Body[i] = op
		run.Body = append(run.Body[:i+1], run.Body[i+2:]...)
		return true
	}
	return false
}

// locationUsedAfter reports whether loc appears as an operand or
// destination in any statement in run from index start onward — the
// single-use precondition for fusing a store into its consumer.
func locationUsedAfter(run *RunBlock, start int, loc Location) bool {
	for i := start; i < len(run.Body); i++ {
		s := run.Body[i]
		switch s.Kind {
		case StAdd, StSubtract:
			if valueMentions(s.BinOp.Left, loc) || valueMentions(s.BinOp.Right, loc) || s.BinOp.Dest.Equal(loc) {
				return true
			}
		case StCompareBranch:
			if valueMentions(s.CompareLeft, loc) || valueMentions(s.CompareRight, loc) {
				return true
			}
		case StBranchIfZero:
			if valueMentions(s.BranchValue, loc) {
				return true
			}
		case StCopy:
			if valueMentions(s.CopySrc, loc) || s.CopyDest.Equal(loc) {
				return true
			}
		}
	}
	return false
}

func valueMentions(v Value, loc Location) bool {
	return v.Kind == ValMemory && v.Loc.Equal(loc)
}
