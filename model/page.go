package model

// Page represents a fixed-height window into the content flow
type Page struct {
	Index           int     `json:"index"` // 0-indexed, contiguous
	StartY          float64 `json:"startY"`
	EndY            float64 `json:"endY"`
	Elements        []Block `json:"elements"` // Blocks whose top falls on this page
	UsedHeight      float64 `json:"usedHeight"`
	AvailableHeight float64 `json:"availableHeight"`
}

// NewPage creates an empty page covering [startY, startY+height)
func NewPage(index int, startY, height float64) Page {
	return Page{
		Index:           index,
		StartY:          startY,
		EndY:            startY + height,
		Elements:        make([]Block, 0),
		AvailableHeight: height,
	}
}

// Height returns the page height
func (p Page) Height() float64 {
	return p.EndY - p.StartY
}

// IsEmpty returns true if no block starts on the page
func (p Page) IsEmpty() bool {
	return len(p.Elements) == 0
}

// First returns the first block on the page
func (p Page) First() (Block, bool) {
	if len(p.Elements) == 0 {
		return Block{}, false
	}
	return p.Elements[0], true
}

// Last returns the last block on the page
func (p Page) Last() (Block, bool) {
	if len(p.Elements) == 0 {
		return Block{}, false
	}
	return p.Elements[len(p.Elements)-1], true
}

// Gap is a contiguous span of unused vertical space on one page
type Gap struct {
	PageIndex int     `json:"pageIndex"`
	Size      float64 `json:"gapSize"`

	// AfterID names the block the gap follows. It is empty for a gap at the
	// top of a page or for a page with no blocks at all.
	AfterID string `json:"afterElement,omitempty"`
}

// Anchored reports whether the gap follows a specific block
func (g Gap) Anchored() bool {
	return g.AfterID != ""
}
