package reflow

import (
	"fmt"
	"math"

	"github.com/tsawler/pageflow/model"
)

// flow is a private working copy of a snapshot in normal document flow:
// changing the top margin of one block moves it and every block after it.
type flow struct {
	blocks  []model.Block
	margins map[string]float64 // MarginTop as received, for patches
	index   map[string]int
}

func newFlow(blocks []model.Block) *flow {
	f := &flow{
		blocks:  model.CloneBlocks(blocks),
		margins: make(map[string]float64, len(blocks)),
		index:   make(map[string]int, len(blocks)),
	}
	if f.blocks == nil {
		f.blocks = make([]model.Block, 0)
	}
	for i, b := range f.blocks {
		if _, seen := f.index[b.ID]; !seen {
			f.index[b.ID] = i
			f.margins[b.ID] = b.MarginTop
		}
	}
	return f
}

func (f *flow) len() int {
	return len(f.blocks)
}

// indexOf returns the position of a block, or -1
func (f *flow) indexOf(id string) int {
	if i, ok := f.index[id]; ok {
		return i
	}
	return -1
}

// shift changes the top margin of block i by dy; block i and everything
// after it move by dy
func (f *flow) shift(i int, dy float64) {
	if i < 0 || i >= len(f.blocks) || dy == 0 {
		return
	}
	f.blocks[i].MarginTop += dy
	for j := i; j < len(f.blocks); j++ {
		f.blocks[j].Top += dy
	}
}

// patches returns the margin writes needed to turn the input blocks into
// this flow, in document order
func (f *flow) patches() []Patch {
	out := make([]Patch, 0)
	for i, b := range f.blocks {
		if f.index[b.ID] != i {
			continue
		}
		if orig := f.margins[b.ID]; math.Abs(orig-b.MarginTop) > 1e-9 {
			out = append(out, Patch{ID: b.ID, MarginTop: b.MarginTop})
		}
	}
	return out
}

// label names a block in trace output
func label(b model.Block) string {
	tag := b.Tag
	if tag == "" {
		tag = "block"
	}
	return fmt.Sprintf("%s#%s", tag, b.ID)
}
