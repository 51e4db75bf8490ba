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

import "hasselc/symtab"

// RunBuilder owns one FrameBlock's run blocks and a cursor into the
// current one. Comparison and control-flow lowering pre-allocate several
// block handles with NewBlock before filling any of them, instead of
// suspending mid-emission — the source material's "coroutine-ish"
// comparison lowering implemented as plain pre-allocation.
type RunBuilder struct {
	frame *FrameBlock
	table symtab.Table
	cur   int
}

func NewRunBuilder(frame *FrameBlock, table symtab.Table) *RunBuilder {
	rb := &RunBuilder{frame: frame, table: table}
	rb.NewBlock()
	return rb
}

// NewBlock allocates a fresh named run block, makes it current, and
// returns both its index and the block itself.
func (rb *RunBuilder) NewBlock() (int, *RunBlock) {
	name, ref := rb.table.NewBlockName()
	blk := &RunBlock{Name: name, Ref: ref}
	rb.frame.Runs = append(rb.frame.Runs, blk)
	rb.cur = len(rb.frame.Runs) - 1
	return rb.cur, blk
}

func (rb *RunBuilder) CurrentIndex() int { return rb.cur }

func (rb *RunBuilder) Current() *RunBlock { return rb.frame.Runs[rb.cur] }

func (rb *RunBuilder) Block(i int) *RunBlock { return rb.frame.Runs[i] }

func (rb *RunBuilder) SetCurrent(i int) { rb.cur = i }

func (rb *RunBuilder) Append(s Statement) {
	cur := rb.Current()
	cur.Body = append(cur.Body, s)
}

// AppendBlocks splices pre-built blocks onto the frame without touching
// the cursor.
func (rb *RunBuilder) AppendBlocks(blocks []*RunBlock) {
	rb.frame.Runs = append(rb.frame.Runs, blocks...)
}
