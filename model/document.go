package model

import "strings"

// PixelsPerMillimetre converts millimetres to CSS pixels at 96 DPI
const PixelsPerMillimetre = 3.7795275591

// Snapshot is a realized geometry snapshot as delivered by the geometry
// oracle: every block measured against a completed layout pass.
type Snapshot struct {
	PageHeight float64 `json:"pageHeight"`
	Margin     float64 `json:"margin"`
	Blocks     []Block `json:"blocks"`
}

// NewSnapshot creates a snapshot with a copy of blocks
func NewSnapshot(pageHeight, margin float64, blocks []Block) *Snapshot {
	return &Snapshot{
		PageHeight: pageHeight,
		Margin:     margin,
		Blocks:     CloneBlocks(blocks),
	}
}

// Block returns the block with the given id
func (s *Snapshot) Block(id string) (Block, bool) {
	if i := IndexOf(s.Blocks, id); i >= 0 {
		return s.Blocks[i], true
	}
	return Block{}, false
}

// ContentHeight returns the height of the content flow
func (s *Snapshot) ContentHeight() float64 {
	return ContentHeight(s.Blocks)
}

// PaperSize describes a physical page in millimetres
type PaperSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	PaperA4     = PaperSize{Name: "a4", Width: 210, Height: 297}
	PaperLetter = PaperSize{Name: "letter", Width: 215.9, Height: 279.4}
	PaperLegal  = PaperSize{Name: "legal", Width: 215.9, Height: 355.6}
	PaperA3     = PaperSize{Name: "a3", Width: 297, Height: 420}
	PaperA5     = PaperSize{Name: "a5", Width: 148, Height: 210}
)

// DefaultMarginMM is the page margin of the print preview
const DefaultMarginMM = 10

// LookupPaperSize returns the paper size with the given name
func LookupPaperSize(name string) (PaperSize, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a4":
		return PaperA4, true
	case "letter":
		return PaperLetter, true
	case "legal":
		return PaperLegal, true
	case "a3":
		return PaperA3, true
	case "a5":
		return PaperA5, true
	}
	return PaperSize{}, false
}

// HeightPx returns the full paper height in pixels
func (p PaperSize) HeightPx() float64 {
	return p.Height * PixelsPerMillimetre
}

// ContentHeightPx returns the printable height in pixels once a margin of
// marginMM is taken from the top and the bottom
func (p PaperSize) ContentHeightPx(marginMM float64) float64 {
	return (p.Height - 2*marginMM) * PixelsPerMillimetre
}
