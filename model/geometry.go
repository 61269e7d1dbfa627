package model

import "math"

// Block represents a measured, rectangular unit of document content.
// Top and Height describe the vertical extent including the block's own
// margins, in pixels, in a single coordinate space shared by all blocks of a
// snapshot.
type Block struct {
	ID           string  `json:"id"`
	Tag          string  `json:"tag,omitempty"`
	Top          float64 `json:"top"`
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`

	// Pinned blocks keep the spacing above them when reflow preserves
	// intentional spacing.
	Pinned bool `json:"pinned,omitempty"`
}

// Bottom returns the bottom edge Y coordinate
func (b Block) Bottom() float64 {
	return b.Top + b.Height
}

// Category classifies the block by its tag
func (b Block) Category() Category {
	return CategoryForTag(b.Tag)
}

// Atomic reports whether the block must not be cut by a page boundary
func (b Block) Atomic() bool {
	return b.Category() == CategoryAtomic
}

// Contains reports whether y lies strictly inside the block
func (b Block) Contains(y float64) bool {
	return b.Top < y && b.Bottom() > y
}

// Overlaps reports whether the vertical extents of two blocks intersect
func (b Block) Overlaps(other Block) bool {
	return b.Top < other.Bottom() && other.Top < b.Bottom()
}

// Shift returns a copy moved by dy. The move is realised through MarginTop,
// the only adjustable field; Top follows from it.
func (b Block) Shift(dy float64) Block {
	b.MarginTop += dy
	b.Top += dy
	return b
}

// IsValid returns true if the block has an identifier and a non-negative,
// finite extent
func (b Block) IsValid() bool {
	return b.ID != "" && b.Height >= 0 &&
		!math.IsNaN(b.Top) && !math.IsInf(b.Top, 0) &&
		!math.IsNaN(b.Height) && !math.IsInf(b.Height, 0)
}

// CloneBlocks returns a copy of blocks that can be modified without touching
// the caller's slice
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// IndexOf returns the position of the block with the given id, or -1
func IndexOf(blocks []Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// ContentHeight returns the bottom of the lowest block, or 0 for no blocks
func ContentHeight(blocks []Block) float64 {
	var h float64
	for _, b := range blocks {
		h = math.Max(h, b.Bottom())
	}
	return h
}
